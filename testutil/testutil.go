package testutil

// Helpers for building snapshot zips in tests.

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opentransit/gtfsstats/model"
	"github.com/opentransit/gtfsstats/parse"
)

// BuildZip zips up files given as name -> lines.
func BuildZip(t testing.TB, files map[string][]string) []byte {
	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for filename, content := range files {
		f, err := w.Create(filename)
		require.NoError(t, err)
		_, err = f.Write([]byte(strings.Join(content, "\n")))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return buf.Bytes()
}

// BuildSnapshot fills in missing required files with (mostly blank)
// dummy data, zips everything and parses it.
func BuildSnapshot(t testing.TB, files map[string][]string) *model.Snapshot {
	fillDefaults(files)

	snap, err := parse.ParseSnapshot(BuildZip(t, files))
	require.NoError(t, err)

	return snap
}

// BuildSnapshotZip is BuildSnapshot without the parsing, for callers
// feeding zips into an object store.
func BuildSnapshotZip(t testing.TB, files map[string][]string) []byte {
	fillDefaults(files)
	return BuildZip(t, files)
}

func fillDefaults(files map[string][]string) {
	if files["calendar.txt"] == nil && files["calendar_dates.txt"] == nil {
		files["calendar.txt"] = []string{"service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday"}
	}
	if files["routes.txt"] == nil {
		files["routes.txt"] = []string{"route_id,route_short_name"}
	}
	if files["trips.txt"] == nil {
		files["trips.txt"] = []string{"trip_id,route_id,service_id"}
	}
	if files["stops.txt"] == nil {
		files["stops.txt"] = []string{"stop_id,stop_name,stop_lat,stop_lon"}
	}
	if files["stop_times.txt"] == nil {
		files["stop_times.txt"] = []string{"trip_id,stop_id,stop_sequence,departure_time"}
	}
}
