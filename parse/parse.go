package parse

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/spkg/bom"

	"github.com/opentransit/gtfsstats/model"
)

// ParseSnapshot reads a zipped schedule snapshot into in-memory
// tables. The snapshot typically spans many service dates; use the
// feed package to window it to a single date.
func ParseSnapshot(buf []byte) (*model.Snapshot, error) {
	// These are the files we load from snapshots.
	file := map[string]io.ReadCloser{
		"agency.txt":         nil,
		"routes.txt":         nil,
		"stops.txt":          nil,
		"trips.txt":          nil,
		"stop_times.txt":     nil,
		"calendar.txt":       nil,
		"calendar_dates.txt": nil,
	}

	defer func() {
		for _, rc := range file {
			if rc != nil {
				rc.Close()
			}
		}
	}()

	r, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, fmt.Errorf("unzipping: %w", err)
	}

	for _, f := range r.File {
		// There should not be any subdirectories. But, some
		// agencies don't care.
		if f.FileInfo().IsDir() {
			continue
		}
		path := strings.Split(f.Name, "/")
		fName := path[len(path)-1]

		if _, found := file[fName]; !found {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", f.Name, err)
		}

		file[fName] = rc
	}

	if file["calendar.txt"] == nil && file["calendar_dates.txt"] == nil {
		return nil, fmt.Errorf("missing calendar.txt and calendar_dates.txt")
	}

	for _, required := range []string{"routes.txt", "stops.txt", "trips.txt", "stop_times.txt"} {
		if file[required] == nil {
			return nil, fmt.Errorf("missing %s", required)
		}
	}

	// LazyCSVReader required (at least) to survive sloppy use of
	// quotes. The BOM reader strips unicode BOMs if present.
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		return gocsv.LazyCSVReader(bom.NewReader(in))
	})

	snap := &model.Snapshot{}

	// agency.txt is optional; agency fields stay blank without it
	// (they are left-joined downstream).
	if file["agency.txt"] != nil {
		snap.Agencies, err = ParseAgencies(file["agency.txt"])
		if err != nil {
			return nil, fmt.Errorf("parsing agency.txt: %w", err)
		}
	}

	snap.Routes, err = ParseRoutes(file["routes.txt"])
	if err != nil {
		return nil, fmt.Errorf("parsing routes.txt: %w", err)
	}

	snap.Stops, err = ParseStops(file["stops.txt"])
	if err != nil {
		return nil, fmt.Errorf("parsing stops.txt: %w", err)
	}

	snap.Trips, err = ParseTrips(file["trips.txt"])
	if err != nil {
		return nil, fmt.Errorf("parsing trips.txt: %w", err)
	}

	snap.StopTimes, err = ParseStopTimes(file["stop_times.txt"])
	if err != nil {
		return nil, fmt.Errorf("parsing stop_times.txt: %w", err)
	}

	if file["calendar.txt"] != nil {
		snap.Calendars, err = ParseCalendar(file["calendar.txt"])
		if err != nil {
			return nil, fmt.Errorf("parsing calendar.txt: %w", err)
		}
	}

	if file["calendar_dates.txt"] != nil {
		snap.CalendarDates, err = ParseCalendarDates(file["calendar_dates.txt"])
		if err != nil {
			return nil, fmt.Errorf("parsing calendar_dates.txt: %w", err)
		}
	}

	return snap, nil
}
