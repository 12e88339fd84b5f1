package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeakWindow(t *testing.T) {
	for _, tc := range []struct {
		name      string
		intervals []Interval
		start     float64
		end       float64
		peak      int
	}{
		{
			"overlapping pair",
			[]Interval{{0, 10}, {5, 15}},
			5, 10, 2,
		},
		{
			"single trip",
			[]Interval{{100, 200}},
			100, 200, 1,
		},
		{
			"ties resolve to earliest run",
			// Max count 2 holds during [5,10] and again
			// during [20,25]; both 5 long.
			[]Interval{{0, 10}, {5, 15}, {18, 25}, {20, 30}},
			5, 10, 2,
		},
		{
			"longer later run wins",
			// Max count 2 holds during [5,10] and then
			// during [20,40].
			[]Interval{{0, 10}, {5, 15}, {18, 40}, {20, 45}},
			20, 40, 2,
		},
		{
			"run ending at final instant",
			// All counts equal 1 until the single event
			// closing everything; the run at max reaches
			// the final instant.
			[]Interval{{0, 10}},
			0, 10, 1,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			times, counts := ActiveTrips(tc.intervals)
			start, end, peak := PeakWindow(times, counts)
			assert.Equal(t, tc.start, start)
			assert.Equal(t, tc.end, end)
			assert.Equal(t, tc.peak, peak)
		})
	}
}

func TestPeakWindowSingleInstant(t *testing.T) {
	// A peak holding for zero duration at the last instant.
	start, end, peak := PeakWindow([]float64{0, 5}, []int{1, 2})
	assert.Equal(t, 5.0, start)
	assert.Equal(t, 5.0, end)
	assert.Equal(t, 2, peak)
}

func TestPeakWindowEmpty(t *testing.T) {
	start, end, peak := PeakWindow(nil, nil)
	assert.True(t, math.IsNaN(start))
	assert.True(t, math.IsNaN(end))
	assert.Equal(t, 0, peak)
}
