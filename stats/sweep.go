package stats

import "sort"

// Interval is a half-open [Start, End) period during which a trip is
// active, in seconds past midnight.
type Interval struct {
	Start float64
	End   float64
}

// ActiveTrips sweeps a set of intervals into a step function counting
// concurrently active trips. It returns parallel slices: event
// instants in ascending order, and the trip count holding from each
// instant until the next one (right-continuous).
func ActiveTrips(intervals []Interval) (times []float64, counts []int) {
	delta := map[float64]int{}
	for _, iv := range intervals {
		delta[iv.Start] += 1
		delta[iv.End] -= 1
	}

	times = make([]float64, 0, len(delta))
	for t := range delta {
		times = append(times, t)
	}
	sort.Float64s(times)

	counts = make([]int, len(times))
	active := 0
	for i, t := range times {
		active += delta[t]
		counts[i] = active
	}

	return times, counts
}
