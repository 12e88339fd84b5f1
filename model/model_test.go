package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	for _, tc := range []struct {
		input   string
		seconds float64
	}{
		{"00:00:00", 0},
		{"08:10:30", 8*3600 + 10*60 + 30},
		{"8:10:30", 8*3600 + 10*60 + 30},
		{"23:59:59", 86399},
		// Next-day trips run past 24 hours.
		{"24:30:00", 24.5 * 3600},
		{"25:01:01", 25*3600 + 61},
		{" 08 : 10 : 30 ", 8*3600 + 10*60 + 30},
	} {
		seconds, err := ParseTimeOfDay(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.seconds, seconds, tc.input)
	}

	for _, input := range []string{
		"",
		"08:10",
		"08:10:30:00",
		"08:60:00",
		"08:00:60",
		"-1:00:00",
		"eight:10:30",
	} {
		_, err := ParseTimeOfDay(input)
		assert.Error(t, err, input)
	}
}

func TestUndefined(t *testing.T) {
	assert.False(t, Defined(Undefined()))
	assert.True(t, Defined(0))
	assert.True(t, Defined(-1.5))
}
