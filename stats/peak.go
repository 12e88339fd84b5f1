package stats

import "github.com/opentransit/gtfsstats/model"

// PeakWindow finds the first maximal-duration window during which the
// active-trip count sits at its global maximum. times and counts are
// the step function produced by ActiveTrips. A peak run ending at the
// final instant, or holding for a single instant, yields start == end.
func PeakWindow(times []float64, counts []int) (start, end float64, peak int) {
	if len(times) == 0 {
		return model.Undefined(), model.Undefined(), 0
	}

	peak = counts[0]
	for _, c := range counts[1:] {
		if c > peak {
			peak = c
		}
	}

	bestStart, bestEnd := -1, -1
	bestDuration := -1.0

	for i := 0; i < len(counts); {
		if counts[i] != peak {
			i++
			continue
		}

		// Contiguous run of instants at the peak count. The
		// count holds until the event following the run.
		j := i
		for j+1 < len(counts) && counts[j+1] == peak {
			j++
		}

		endIdx := j
		if j+1 < len(times) {
			endIdx = j + 1
		}

		duration := times[endIdx] - times[i]
		if duration > bestDuration {
			bestDuration = duration
			bestStart, bestEnd = i, endIdx
		}

		i = j + 1
	}

	return times[bestStart], times[bestEnd], peak
}
