// Package artifact persists computed statistics as gzipped CSV tables
// and recovers the inventory of existing outputs. The persisted file
// is the cache: a (date, kind) pair with an artifact on disk is never
// recomputed.
package artifact

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gocarina/gocsv"

	"github.com/opentransit/gtfsstats/model"
)

type Kind string

const (
	KindTripStats  Kind = "trip_stats"
	KindRouteStats Kind = "route_stats"
)

const Extension = ".csv.gz"

var fileNameRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})_(trip_stats|route_stats)\.csv\.gz$`)

// An Entry identifies one persisted artifact.
type Entry struct {
	Date string // YYYY-MM-DD
	Kind Kind
}

// Path returns the artifact file path for a date and kind.
func Path(dir, date string, kind Kind) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s%s", date, kind, Extension))
}

// Exists reports whether the artifact is already persisted.
func Exists(dir, date string, kind Kind) bool {
	_, err := os.Stat(Path(dir, date, kind))
	return err == nil
}

// Scan recovers the (date, kind) inventory from artifact file names.
// A missing directory is an empty inventory.
func Scan(dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	entries := []Entry{}
	for _, file := range files {
		m := fileNameRe.FindStringSubmatch(file.Name())
		if m == nil {
			continue
		}
		entries = append(entries, Entry{Date: m[1], Kind: Kind(m[2])})
	}

	return entries, nil
}

// WriteTripStats persists the per-trip table for a date.
func WriteTripStats(dir, date string, stats []*model.TripStat) error {
	return writeCSV(Path(dir, date, KindTripStats), stats)
}

// ReadTripStats loads a persisted per-trip table.
func ReadTripStats(dir, date string) ([]*model.TripStat, error) {
	stats := []*model.TripStat{}
	if err := readCSV(Path(dir, date, KindTripStats), &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// WriteRouteStats persists the per-route table for a date.
func WriteRouteStats(dir, date string, stats []*model.RouteStat) error {
	return writeCSV(Path(dir, date, KindRouteStats), stats)
}

// ReadRouteStats loads a persisted per-route table.
func ReadRouteStats(dir, date string) ([]*model.RouteStat, error) {
	stats := []*model.RouteStat{}
	if err := readCSV(Path(dir, date, KindRouteStats), &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func writeCSV(path string, records interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	gz := gzip.NewWriter(f)
	if err := gocsv.Marshal(records, gz); err != nil {
		f.Close()
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	if err := gz.Close(); err != nil {
		f.Close()
		return fmt.Errorf("compressing %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	return nil
}

func readCSV(path string, records interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("decompressing %s: %w", path, err)
	}
	defer gz.Close()

	if err := gocsv.Unmarshal(gz, records); err != nil {
		return fmt.Errorf("unmarshaling %s: %w", path, err)
	}

	return nil
}
