package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRetryDelays(t *testing.T) {
	delays, err := parseRetryDelays("0,1,5,30")
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{
		0, time.Second, 5 * time.Second, 30 * time.Second,
	}, delays)

	delays, err = parseRetryDelays(" 1 , 2 ")
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)

	delays, err = parseRetryDelays("0")
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{0}, delays)

	for _, input := range []string{"", "1,,2", "1,-5", "1,fast"} {
		_, err := parseRetryDelays(input)
		assert.Error(t, err, input)
	}
}
