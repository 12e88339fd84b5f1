package gtfsstats

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentransit/gtfsstats/artifact"
	"github.com/opentransit/gtfsstats/objstore"
	"github.com/opentransit/gtfsstats/testutil"
)

func snapshotZip(t *testing.T) []byte {
	return testutil.BuildSnapshotZip(t, map[string][]string{
		"agency.txt": {
			"agency_id,agency_name",
			"a1,Agency One",
		},
		"routes.txt": {
			"route_id,agency_id,route_short_name,route_long_name,route_type",
			"r1,a1,1,Route One,3",
		},
		"stops.txt": {
			"stop_id,stop_code,stop_name,stop_lat,stop_lon",
			"s1,100,First,32.05,34.75",
			"s2,200,Second,32.06,34.76",
			"s3,300,Third,32.07,34.77",
		},
		"trips.txt": {
			"trip_id,route_id,service_id,direction_id",
			"t1,r1,c1,0",
			"t2,r1,c1,1",
		},
		"stop_times.txt": {
			"trip_id,stop_id,stop_sequence,departure_time,shape_dist_traveled",
			"t1,s1,1,08:00:00,0",
			"t1,s2,2,08:10:00,5000",
			"t1,s3,3,08:30:00,12000",
			"t2,s3,1,10:00:00,0",
			"t2,s1,2,10:30:00,9000",
		},
		"calendar.txt": {
			"service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday",
			"c1,20240101,20241231,1,1,1,1,1,1,1",
		},
	})
}

func testBatch(t *testing.T, store objstore.Store) *Batch {
	b := NewBatch(store, t.TempDir(), t.TempDir())
	b.RetryDelays = []time.Duration{0, 0}
	return b
}

func TestRun(t *testing.T) {
	store := objstore.NewMemory(map[string][]byte{
		"2024-01-15.zip": snapshotZip(t),
	})
	b := testBatch(t, store)

	require.NoError(t, b.Run(context.Background()))

	tripStats, err := artifact.ReadTripStats(b.OutputDir, "2024-01-15")
	require.NoError(t, err)
	require.Len(t, tripStats, 2)
	assert.Equal(t, "t1", tripStats[0].TripID)
	assert.Equal(t, 3, tripStats[0].NumStops)
	assert.Equal(t, 8*3600.0, tripStats[0].StartTime)
	assert.Equal(t, 12000.0, tripStats[0].Distance)
	assert.Equal(t, 0.5, tripStats[0].Duration)
	assert.Equal(t, "2024-01-15", tripStats[0].Date)

	routeStats, err := artifact.ReadRouteStats(b.OutputDir, "2024-01-15")
	require.NoError(t, err)
	require.Len(t, routeStats, 1)
	assert.Equal(t, "r1", routeStats[0].RouteID)
	assert.Equal(t, 2, routeStats[0].NumTrips)
	assert.True(t, routeStats[0].IsBidirectional)
	assert.Equal(t, "2024-01-15", routeStats[0].Date)

	// The snapshot remains in the local cache.
	_, err = os.Stat(filepath.Join(b.FeedDir, "2024-01-15.zip"))
	assert.NoError(t, err)
}

func TestRunSkipsExistingOutput(t *testing.T) {
	store := objstore.NewMemory(map[string][]byte{
		"2024-01-15.zip": snapshotZip(t),
	})
	b := testBatch(t, store)

	ctx := context.Background()
	require.NoError(t, b.Run(ctx))
	require.Equal(t, []string{"2024-01-15.zip"}, store.Fetches)

	path := artifact.Path(b.OutputDir, "2024-01-15", artifact.KindRouteStats)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// Second run finds the output, fetches nothing and rewrites
	// nothing.
	require.NoError(t, b.Run(ctx))
	assert.Equal(t, []string{"2024-01-15.zip"}, store.Fetches)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRunReusesTripStats(t *testing.T) {
	store := objstore.NewMemory(map[string][]byte{
		"2024-01-15.zip": snapshotZip(t),
	})
	b := testBatch(t, store)

	ctx := context.Background()
	require.NoError(t, b.Run(ctx))

	// Remove the route stats; the next run must rebuild them from
	// the persisted trip stats without touching the store.
	require.NoError(t, os.Remove(artifact.Path(b.OutputDir, "2024-01-15", artifact.KindRouteStats)))
	store.Fetches = nil

	require.NoError(t, b.Run(ctx))
	assert.Empty(t, store.Fetches)

	routeStats, err := artifact.ReadRouteStats(b.OutputDir, "2024-01-15")
	require.NoError(t, err)
	require.Len(t, routeStats, 1)
	assert.Equal(t, 2, routeStats[0].NumTrips)
}

func TestRunRetriesFetch(t *testing.T) {
	store := objstore.NewMemory(map[string][]byte{
		"2024-01-15.zip": snapshotZip(t),
	})
	store.FailFetches = 2
	b := testBatch(t, store)

	require.NoError(t, b.Run(context.Background()))
	assert.Len(t, store.Fetches, 3)
	assert.True(t, artifact.Exists(b.OutputDir, "2024-01-15", artifact.KindRouteStats))
}

func TestRunContinuesPastFailedItem(t *testing.T) {
	store := objstore.NewMemory(map[string][]byte{
		"2024-01-15.zip": []byte("not a zip"),
		"2024-01-16.zip": snapshotZip(t),
	})
	b := testBatch(t, store)

	// The corrupt snapshot fails its own item; the run carries on.
	require.NoError(t, b.Run(context.Background()))

	assert.False(t, artifact.Exists(b.OutputDir, "2024-01-15", artifact.KindRouteStats))
	assert.True(t, artifact.Exists(b.OutputDir, "2024-01-16", artifact.KindRouteStats))
}

func TestRunRefetchesCorruptLocalSnapshot(t *testing.T) {
	store := objstore.NewMemory(map[string][]byte{
		"2024-01-15.zip": snapshotZip(t),
	})
	b := testBatch(t, store)

	require.NoError(t, os.MkdirAll(b.FeedDir, 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(b.FeedDir, "2024-01-15.zip"), []byte("truncated garbage"), 0644))

	require.NoError(t, b.Run(context.Background()))
	assert.Equal(t, []string{"2024-01-15.zip"}, store.Fetches)
	assert.True(t, artifact.Exists(b.OutputDir, "2024-01-15", artifact.KindRouteStats))
}

func TestRunForwardFill(t *testing.T) {
	store := objstore.NewMemory(map[string][]byte{
		"2024-01-15.zip": snapshotZip(t),
		"2024-01-18.zip": snapshotZip(t),
	})
	b := testBatch(t, store)
	b.ForwardFill = true

	require.NoError(t, b.Run(context.Background()))

	for _, date := range []string{"2024-01-15", "2024-01-16", "2024-01-17", "2024-01-18"} {
		assert.True(t, artifact.Exists(b.OutputDir, date, artifact.KindRouteStats), date)
	}
	assert.False(t, artifact.Exists(b.OutputDir, "2024-01-19", artifact.KindRouteStats))

	// Each snapshot is fetched once, no matter how many dates it
	// covers.
	assert.Equal(t, []string{"2024-01-15.zip", "2024-01-18.zip"}, store.Fetches)
}

func TestRunDeleteSnapshots(t *testing.T) {
	store := objstore.NewMemory(map[string][]byte{
		"2024-01-15.zip": snapshotZip(t),
		"2024-01-16.zip": snapshotZip(t),
	})
	b := testBatch(t, store)
	b.DeleteSnapshots = true

	// Pre-cached snapshots survive; downloaded ones are cleaned up.
	require.NoError(t, os.MkdirAll(b.FeedDir, 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(b.FeedDir, "2024-01-15.zip"), snapshotZip(t), 0644))

	require.NoError(t, b.Run(context.Background()))

	_, err := os.Stat(filepath.Join(b.FeedDir, "2024-01-15.zip"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(b.FeedDir, "2024-01-16.zip"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunIgnoresForeignObjects(t *testing.T) {
	store := objstore.NewMemory(map[string][]byte{
		"2024-01-15.zip": snapshotZip(t),
		"readme.txt":     []byte("hello"),
		"backup.tar.gz":  []byte("nope"),
	})
	b := testBatch(t, store)

	require.NoError(t, b.Run(context.Background()))
	assert.Equal(t, []string{"2024-01-15.zip"}, store.Fetches)
}

func TestRunEmptyStore(t *testing.T) {
	b := testBatch(t, objstore.NewMemory(nil))
	require.NoError(t, b.Run(context.Background()))

	entries, err := artifact.Scan(b.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
