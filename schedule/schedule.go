// Package schedule decides which (snapshot, date) pairs still need
// statistics computed.
package schedule

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

const (
	DateFormat        = "2006-01-02"
	SnapshotKeySuffix = ".zip"
)

// DefaultKeyPattern matches snapshot object keys named YYYY-MM-DD.zip.
var DefaultKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\.zip$`)

// A WorkItem asks for stats of the service valid on Date, computed
// from the snapshot stored under SnapshotKey.
type WorkItem struct {
	SnapshotKey string
	Date        time.Time
}

func (w WorkItem) DateString() string {
	return w.Date.Format(DateFormat)
}

// Options control work-list computation.
type Options struct {
	// ForwardFill reuses a snapshot for dates lacking their own,
	// up to MaxGapDays past its nominal date, until a later
	// snapshot supersedes it.
	ForwardFill bool

	// MaxGapDays bounds forward fill. A true gap between
	// consecutive snapshots beyond this cap leaves the remainder
	// uncovered rather than erroring.
	MaxGapDays int

	// FutureDays extends coverage past the newest snapshot's
	// nominal date.
	FutureDays int
}

// ParseKey extracts the nominal date from a YYYY-MM-DD.zip key.
func ParseKey(key string) (time.Time, error) {
	name := strings.TrimSuffix(key, SnapshotKeySuffix)
	date, err := time.ParseInLocation(DateFormat, name, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing snapshot key %q: %w", key, err)
	}
	return date, nil
}

// Key names the snapshot object holding the schedule published on date.
func Key(date time.Time) string {
	return date.Format(DateFormat) + SnapshotKeySuffix
}

// FilterKeys keeps the keys matching the snapshot name pattern.
func FilterKeys(keys []string, pattern *regexp.Regexp) []string {
	valid := []string{}
	for _, key := range keys {
		if pattern.MatchString(key) {
			valid = append(valid, key)
		}
	}
	return valid
}

// ForwardFillPlan maps each snapshot key to the ordered dates it is
// the applicable snapshot for.
type ForwardFillPlan map[string][]time.Time

// ForwardFill assigns every date from the earliest nominal snapshot
// date through the latest plus futureDays to its applicable snapshot:
// the latest snapshot at-or-before the date, within maxGapDays. Later
// snapshots supersede earlier ones on overlap; dates beyond every
// snapshot's reach stay unassigned.
func ForwardFill(keys []string, maxGapDays, futureDays int) (ForwardFillPlan, []time.Time, error) {
	if len(keys) == 0 {
		return ForwardFillPlan{}, nil, nil
	}

	dates := make([]time.Time, 0, len(keys))
	for _, key := range keys {
		date, err := ParseKey(key)
		if err != nil {
			return nil, nil, err
		}
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	first := dates[0]
	last := dates[len(dates)-1].AddDate(0, 0, futureDays)

	// First pass: applicable snapshot per date.
	plan := ForwardFillPlan{}
	uncovered := []time.Time{}
	i := 0
	for date := first; !date.After(last); date = date.AddDate(0, 0, 1) {
		for i+1 < len(dates) && !dates[i+1].After(date) {
			i++
		}

		gap := int(date.Sub(dates[i]).Hours() / 24)
		if gap > maxGapDays {
			uncovered = append(uncovered, date)
			continue
		}

		// Second pass is the inversion: snapshot -> dates.
		key := Key(dates[i])
		plan[key] = append(plan[key], date)
	}

	return plan, uncovered, nil
}

// Plan computes the ordered work list: per snapshot, the dates it
// applies to that have no persisted output yet. done holds YYYY-MM-DD
// dates whose output already exists. Snapshots are processed in
// nominal-date order, dates ascending within each snapshot.
func Plan(keys []string, done map[string]bool, opts Options) ([]WorkItem, []time.Time, error) {
	var plan ForwardFillPlan
	var uncovered []time.Time

	if opts.ForwardFill {
		var err error
		plan, uncovered, err = ForwardFill(keys, opts.MaxGapDays, opts.FutureDays)
		if err != nil {
			return nil, nil, err
		}
	} else {
		// Direct mode: a snapshot is relevant only to its own
		// nominal date.
		plan = ForwardFillPlan{}
		for _, key := range keys {
			date, err := ParseKey(key)
			if err != nil {
				return nil, nil, err
			}
			plan[key] = []time.Time{date}
		}
	}

	sortedKeys := make([]string, 0, len(plan))
	for key := range plan {
		sortedKeys = append(sortedKeys, key)
	}
	sort.Strings(sortedKeys)

	items := []WorkItem{}
	for _, key := range sortedKeys {
		for _, date := range plan[key] {
			if done[date.Format(DateFormat)] {
				continue
			}
			items = append(items, WorkItem{SnapshotKey: key, Date: date})
		}
	}

	return items, uncovered, nil
}
