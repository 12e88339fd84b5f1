// Package gtfsstats computes daily per-trip and per-route service
// statistics from dated schedule snapshots in an object store, and
// keeps them current as new snapshots arrive.
package gtfsstats

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/opentransit/gtfsstats/artifact"
	"github.com/opentransit/gtfsstats/feed"
	"github.com/opentransit/gtfsstats/geo"
	"github.com/opentransit/gtfsstats/model"
	"github.com/opentransit/gtfsstats/objstore"
	"github.com/opentransit/gtfsstats/parse"
	"github.com/opentransit/gtfsstats/retry"
	"github.com/opentransit/gtfsstats/schedule"
	"github.com/opentransit/gtfsstats/stats"
	"github.com/opentransit/gtfsstats/zones"
)

const (
	DefaultHeadwayStart      = 7 * 3600.0  // 07:00:00
	DefaultHeadwayEnd        = 19 * 3600.0 // 19:00:00
	DefaultLoopDistanceMeter = 400.0
	DefaultMaxFillGapDays    = 59
)

// Batch drives the whole pipeline: scheduling, retrieval, windowing,
// rollups and persistence. Work is strictly sequential: one snapshot
// at a time, one date at a time within a snapshot. One snapshot and
// its derived tables are resident at a time.
type Batch struct {
	// Store holds the dated snapshots.
	Store objstore.Store

	// FeedDir caches downloaded snapshots; checked before any fetch.
	FeedDir string

	// OutputDir receives the stats artifacts.
	OutputDir string

	// TariffPath points at the stop-to-zone table. Blank means no
	// zone data.
	TariffPath string

	// KeyPattern filters store listings down to snapshot objects.
	KeyPattern *regexp.Regexp

	HeadwayStart       float64 // seconds past midnight
	HeadwayEnd         float64
	LoopDistanceMeters float64

	ForwardFill    bool
	MaxFillGapDays int
	FutureDays     int

	// RetryDelays is the backoff ladder for snapshot retrieval.
	RetryDelays []time.Duration

	// DeleteSnapshots removes a downloaded snapshot once all its
	// scheduled dates are processed. Snapshots already cached
	// before the run are kept.
	DeleteSnapshots bool

	Logger zerolog.Logger

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewBatch returns a Batch with default configuration. Fields may be
// adjusted before calling Run.
func NewBatch(store objstore.Store, feedDir, outputDir string) *Batch {
	return &Batch{
		Store:              store,
		FeedDir:            feedDir,
		OutputDir:          outputDir,
		KeyPattern:         schedule.DefaultKeyPattern,
		HeadwayStart:       DefaultHeadwayStart,
		HeadwayEnd:         DefaultHeadwayEnd,
		LoopDistanceMeters: DefaultLoopDistanceMeter,
		MaxFillGapDays:     DefaultMaxFillGapDays,
		RetryDelays:        retry.DefaultDelays,
		Logger:             zerolog.Nop(),
	}
}

// itemError marks a failure scoped to a single work item. The run
// logs it and moves on; anything else aborts the run.
type itemError struct {
	error
}

func (e itemError) Unwrap() error {
	return e.error
}

func itemFailure(err error) error {
	if err == nil {
		return nil
	}
	return itemError{err}
}

// snapshotState holds the one snapshot resident during its work items.
type snapshotState struct {
	key        string
	snap       *model.Snapshot
	downloaded bool
}

// Run processes every (snapshot, date) pair still lacking output.
// Failures retrieving or reading a snapshot abort only the affected
// work item; any other error terminates the run. Already-persisted
// artifacts are never touched.
func (b *Batch) Run(ctx context.Context) error {
	if err := os.MkdirAll(b.FeedDir, 0755); err != nil {
		return fmt.Errorf("creating feed dir: %w", err)
	}
	if err := os.MkdirAll(b.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	items, err := b.plan(ctx)
	if err != nil {
		return err
	}
	b.Logger.Info().Msgf("found %d (snapshot, date) pairs lacking output", len(items))

	zoneLookup, err := zones.ParseFile(b.TariffPath)
	if err != nil {
		return fmt.Errorf("loading zones: %w", err)
	}

	state := &snapshotState{}
	for _, item := range items {
		if item.SnapshotKey != state.key {
			b.finishSnapshot(state)
			state = &snapshotState{key: item.SnapshotKey}
		}

		if err := b.processItem(ctx, item, state, zoneLookup); err != nil {
			var ie itemError
			if errors.As(err, &ie) {
				b.Logger.Error().Err(err).
					Str("snapshot", item.SnapshotKey).
					Str("date", item.DateString()).
					Msg("work item failed")
				continue
			}
			b.Logger.Error().Err(err).
				Str("snapshot", item.SnapshotKey).
				Str("date", item.DateString()).
				Msg("batch run failed")
			return err
		}
	}
	b.finishSnapshot(state)

	return nil
}

// plan lists the store and computes the work list of dates without
// persisted output.
func (b *Batch) plan(ctx context.Context) ([]schedule.WorkItem, error) {
	entries, err := artifact.Scan(b.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("scanning output dir: %w", err)
	}

	// A date counts as complete when its route stats exist; trip
	// stats alone still get their route stats computed.
	done := map[string]bool{}
	for _, entry := range entries {
		if entry.Kind == artifact.KindRouteStats {
			done[entry.Date] = true
		}
	}
	b.Logger.Info().Msgf("found %d output files in %s", len(entries), b.OutputDir)

	keys, err := b.Store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing store: %w", err)
	}
	valid := schedule.FilterKeys(keys, b.KeyPattern)
	b.Logger.Info().Msgf("found %d valid snapshots of %d objects in store", len(valid), len(keys))

	items, uncovered, err := schedule.Plan(valid, done, schedule.Options{
		ForwardFill: b.ForwardFill,
		MaxGapDays:  b.MaxFillGapDays,
		FutureDays:  b.FutureDays,
	})
	if err != nil {
		return nil, fmt.Errorf("planning work: %w", err)
	}

	if len(uncovered) > 0 {
		b.Logger.Warn().Msgf(
			"%d dates between %s and %s exceed the %d day fill gap and stay uncovered",
			len(uncovered),
			uncovered[0].Format(schedule.DateFormat),
			uncovered[len(uncovered)-1].Format(schedule.DateFormat),
			b.MaxFillGapDays,
		)
	}

	return items, nil
}

// processItem computes and persists trip and route stats for one
// (snapshot, date) pair. An existing trip stats artifact is reused
// instead of recomputed.
func (b *Batch) processItem(
	ctx context.Context,
	item schedule.WorkItem,
	state *snapshotState,
	zoneLookup zones.Lookup,
) error {

	date := item.DateString()

	var tripStats []*model.TripStat
	if artifact.Exists(b.OutputDir, date, artifact.KindTripStats) {
		b.Logger.Info().Msgf("found persisted trip stats for %s, reusing", date)
		var err error
		tripStats, err = artifact.ReadTripStats(b.OutputDir, date)
		if err != nil {
			return fmt.Errorf("reading trip stats for %s: %w", date, err)
		}
	} else {
		if err := b.ensureSnapshot(ctx, state); err != nil {
			return err
		}

		b.Logger.Info().Msgf("windowing snapshot %s to %s", state.key, date)
		daily := feed.ForDate(state.snap, item.Date)

		rows := stats.BuildTripRows(daily, zoneLookup)
		tripStats = stats.TripStats(rows, geo.NewStopIndex(daily.Stops), b.LoopDistanceMeters)
		for _, ts := range tripStats {
			ts.Date = date
		}

		b.Logger.Info().Msgf("writing %d trip stats for %s", len(tripStats), date)
		if err := artifact.WriteTripStats(b.OutputDir, date, tripStats); err != nil {
			return fmt.Errorf("writing trip stats for %s: %w", date, err)
		}
	}

	routeStats := stats.RouteStats(tripStats, stats.RouteOptions{
		HeadwayStart: b.HeadwayStart,
		HeadwayEnd:   b.HeadwayEnd,
	})
	for _, rs := range routeStats {
		rs.Date = date
	}

	b.Logger.Info().Msgf("writing %d route stats for %s", len(routeStats), date)
	if err := artifact.WriteRouteStats(b.OutputDir, date, routeStats); err != nil {
		return fmt.Errorf("writing route stats for %s: %w", date, err)
	}

	return nil
}

// ensureSnapshot makes sure state carries the parsed snapshot,
// fetching and caching it locally first if needed. A corrupt local
// file triggers exactly one forced re-fetch; failing again is fatal
// for the item.
func (b *Batch) ensureSnapshot(ctx context.Context, state *snapshotState) error {
	if state.snap != nil {
		return nil
	}

	path := filepath.Join(b.FeedDir, state.key)

	if _, err := os.Stat(path); err == nil {
		b.Logger.Info().Msgf("found snapshot %s in %s", state.key, b.FeedDir)
	} else {
		if err := b.fetchSnapshot(ctx, state.key, path); err != nil {
			return itemFailure(err)
		}
		state.downloaded = true
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading local snapshot %s: %w", state.key, err)
	}

	snap, err := parse.ParseSnapshot(buf)
	if err != nil {
		b.Logger.Error().Err(err).Msgf("bad local snapshot %s, forcing re-fetch", state.key)

		if err := b.fetchSnapshot(ctx, state.key, path); err != nil {
			return itemFailure(err)
		}
		state.downloaded = true

		buf, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading local snapshot %s: %w", state.key, err)
		}
		snap, err = parse.ParseSnapshot(buf)
		if err != nil {
			return itemFailure(fmt.Errorf("snapshot %s corrupt after re-fetch: %w", state.key, err))
		}
	}

	state.snap = snap
	return nil
}

// fetchSnapshot downloads one snapshot with bounded backoff retries
// and writes it into the local cache.
func (b *Batch) fetchSnapshot(ctx context.Context, key, path string) error {
	b.Logger.Info().Msgf("starting snapshot download with retries (key=%q, local path=%q)", key, path)

	executor := retry.Executor{
		Delays: b.RetryDelays,
		Report: func(msg string) {
			b.Logger.Error().Str("snapshot", key).Msg(msg)
		},
		Sleep: b.sleep,
	}

	var body []byte
	err := executor.Do(func() error {
		var err error
		body, err = b.Store.Fetch(ctx, key)
		return err
	})
	if err != nil {
		return fmt.Errorf("fetching %s: %w", key, err)
	}

	if err := os.WriteFile(path, body, 0644); err != nil {
		return fmt.Errorf("caching %s: %w", key, err)
	}

	b.Logger.Debug().Msgf("finished snapshot download (key=%q, local path=%q)", key, path)
	return nil
}

// finishSnapshot runs once all of a snapshot's scheduled dates are
// processed.
func (b *Batch) finishSnapshot(state *snapshotState) {
	if state.key == "" {
		return
	}

	if b.DeleteSnapshots && state.downloaded {
		path := filepath.Join(b.FeedDir, state.key)
		b.Logger.Info().Msgf("deleting snapshot file %q", path)
		if err := os.Remove(path); err != nil {
			b.Logger.Error().Err(err).Msgf("deleting snapshot file %q", path)
		}
	} else {
		b.Logger.Debug().Msgf("keeping snapshot file %q", state.key)
	}
}
