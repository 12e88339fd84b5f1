package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "gtfsstats",
	Short:        "Daily GTFS service statistics",
	Long:         "Computes daily trip and route stats from dated schedule snapshots",
	SilenceUsage: true,
}

func main() {
	// .env may carry store credentials and directory paths;
	// missing file is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
