package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/opentransit/gtfsstats"
	"github.com/opentransit/gtfsstats/model"
	"github.com/opentransit/gtfsstats/objstore"
)

var (
	bucketName   string
	storeDir     string
	feedDir      string
	outputDir    string
	tariffPath   string
	logDir       string
	keyPattern   string
	headwayStart string
	headwayEnd   string
	loopDistance float64
	forwardFill  bool
	maxFillGap   int
	futureDays   int
	deleteFeeds  bool
	retryDelays  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute stats for all dates lacking output",
	RunE:  runBatch,
}

func init() {
	runCmd.Flags().StringVar(&bucketName, "bucket", envDefault("GTFSSTATS_BUCKET", ""), "GCS bucket holding snapshots")
	runCmd.Flags().StringVar(&storeDir, "store-dir", envDefault("GTFSSTATS_STORE_DIR", ""), "local directory serving as snapshot store (instead of a bucket)")
	runCmd.Flags().StringVar(&feedDir, "feed-dir", envDefault("GTFSSTATS_FEED_DIR", "feeds"), "local snapshot cache directory")
	runCmd.Flags().StringVar(&outputDir, "output-dir", envDefault("GTFSSTATS_OUTPUT_DIR", "output"), "stats artifact directory")
	runCmd.Flags().StringVar(&tariffPath, "tariff", envDefault("GTFSSTATS_TARIFF", ""), "stop-to-zone tariff CSV")
	runCmd.Flags().StringVar(&logDir, "log-dir", envDefault("GTFSSTATS_LOG_DIR", ""), "directory for debug log files")
	runCmd.Flags().StringVar(&keyPattern, "pattern", "", "snapshot key pattern override")
	runCmd.Flags().StringVar(&headwayStart, "headway-start", "07:00:00", "headway window start")
	runCmd.Flags().StringVar(&headwayEnd, "headway-end", "19:00:00", "headway window end")
	runCmd.Flags().Float64Var(&loopDistance, "loop-distance", gtfsstats.DefaultLoopDistanceMeter, "loop detection threshold in meters")
	runCmd.Flags().BoolVar(&forwardFill, "forward-fill", false, "reuse snapshots for dates lacking their own")
	runCmd.Flags().IntVar(&maxFillGap, "max-fill-gap", gtfsstats.DefaultMaxFillGapDays, "max days a snapshot is forward-filled")
	runCmd.Flags().IntVar(&futureDays, "future-days", 0, "days past the newest snapshot to cover")
	runCmd.Flags().BoolVar(&deleteFeeds, "delete-downloaded", false, "delete snapshots downloaded this run after processing")
	runCmd.Flags().StringVar(&retryDelays, "retry-delays", "", "snapshot download backoff, comma-separated seconds (default 0,1,5,30,180,600,3600)")

	rootCmd.AddCommand(runCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	logger, err := buildLogger()
	if err != nil {
		return err
	}

	store, err := buildStore(cmd.Context())
	if err != nil {
		return err
	}

	batch := gtfsstats.NewBatch(store, feedDir, outputDir)
	batch.TariffPath = tariffPath
	batch.ForwardFill = forwardFill
	batch.MaxFillGapDays = maxFillGap
	batch.FutureDays = futureDays
	batch.DeleteSnapshots = deleteFeeds
	batch.LoopDistanceMeters = loopDistance
	batch.Logger = logger

	if keyPattern != "" {
		batch.KeyPattern, err = regexp.Compile(keyPattern)
		if err != nil {
			return fmt.Errorf("invalid pattern: %w", err)
		}
	}

	if batch.HeadwayStart, err = model.ParseTimeOfDay(headwayStart); err != nil {
		return fmt.Errorf("invalid headway-start: %w", err)
	}
	if batch.HeadwayEnd, err = model.ParseTimeOfDay(headwayEnd); err != nil {
		return fmt.Errorf("invalid headway-end: %w", err)
	}

	if retryDelays != "" {
		if batch.RetryDelays, err = parseRetryDelays(retryDelays); err != nil {
			return fmt.Errorf("invalid retry-delays: %w", err)
		}
	}

	logger.Info().Msg("starting batch run")
	return batch.Run(cmd.Context())
}

// parseRetryDelays reads a comma-separated list of whole seconds into
// a backoff ladder.
func parseRetryDelays(s string) ([]time.Duration, error) {
	delays := []time.Duration{}
	for _, part := range strings.Split(s, ",") {
		seconds, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", part, err)
		}
		if seconds < 0 {
			return nil, fmt.Errorf("negative delay %q", part)
		}
		delays = append(delays, time.Duration(seconds)*time.Second)
	}
	return delays, nil
}

func buildStore(ctx context.Context) (objstore.Store, error) {
	switch {
	case storeDir != "":
		return objstore.NewFilesystem(storeDir), nil
	case bucketName != "":
		return objstore.NewGCS(ctx, bucketName)
	default:
		return nil, fmt.Errorf("either --bucket or --store-dir is required")
	}
}

// buildLogger writes everything to a timestamped file when a log dir
// is configured, and errors to the console.
func buildLogger() (zerolog.Logger, error) {
	console := zerolog.ConsoleWriter{Out: os.Stderr}
	consoleErrors := &zerolog.FilteredLevelWriter{
		Writer: zerolog.LevelWriterAdapter{Writer: console},
		Level:  zerolog.ErrorLevel,
	}

	writers := []io.Writer{consoleErrors}

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return zerolog.Nop(), fmt.Errorf("creating log dir: %w", err)
		}
		name := fmt.Sprintf("gtfsstats_%s.log", time.Now().Format("20060102150405"))
		f, err := os.Create(filepath.Join(logDir, name))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("creating log file: %w", err)
		}
		writers = append(writers, f)
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger(), nil
}
