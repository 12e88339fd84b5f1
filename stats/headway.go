package stats

import "sort"

// Headways computes min/max/mean gaps in minutes between consecutive
// trip starts within the closed window [windowStart, windowEnd]
// (seconds past midnight). Gaps are taken per direction and then
// pooled; a direction with fewer than two qualifying starts
// contributes none. ok is false when no gaps exist at all, in which
// case the three values are meaningless.
func Headways(startsByDirection map[int8][]float64, windowStart, windowEnd float64) (min, max, mean float64, ok bool) {
	gaps := []float64{}

	for _, direction := range []int8{0, 1} {
		starts := []float64{}
		for _, s := range startsByDirection[direction] {
			if s >= windowStart && s <= windowEnd {
				starts = append(starts, s)
			}
		}
		sort.Float64s(starts)

		for i := 1; i < len(starts); i++ {
			gaps = append(gaps, starts[i]-starts[i-1])
		}
	}

	if len(gaps) == 0 {
		return 0, 0, 0, false
	}

	min, max = gaps[0], gaps[0]
	sum := 0.0
	for _, g := range gaps {
		if g < min {
			min = g
		}
		if g > max {
			max = g
		}
		sum += g
	}

	const secondsPerMinute = 60
	return min / secondsPerMinute,
		max / secondsPerMinute,
		sum / float64(len(gaps)) / secondsPerMinute,
		true
}
