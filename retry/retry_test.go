package retry

import (
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExecutor(delays []time.Duration, reports *[]string, slept *[]time.Duration) Executor {
	return Executor{
		Delays: delays,
		Report: func(msg string) {
			*reports = append(*reports, msg)
		},
		Sleep: func(d time.Duration) {
			*slept = append(*slept, d)
		},
	}
}

func TestDoSucceedsImmediately(t *testing.T) {
	reports := []string{}
	slept := []time.Duration{}
	e := testExecutor(DefaultDelays, &reports, &slept)

	calls := 0
	err := e.Do(func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, reports)
	assert.Empty(t, slept)
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	reports := []string{}
	slept := []time.Duration{}
	e := testExecutor([]time.Duration{time.Second, 5 * time.Second}, &reports, &slept)

	calls := 0
	err := e.Do(func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("attempt %d failed", calls)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second}, slept)
	require.Len(t, reports, 2)
	assert.Equal(t, "retryable failed: attempt 1 failed -- delaying for 1s", reports[0])
	assert.Equal(t, "retryable failed: attempt 2 failed -- delaying for 5s", reports[1])
}

func TestDoExhaustsDelays(t *testing.T) {
	reports := []string{}
	slept := []time.Duration{}
	e := testExecutor([]time.Duration{time.Second, 5 * time.Second}, &reports, &slept)

	calls := 0
	err := e.Do(func() error {
		calls++
		return fmt.Errorf("attempt %d failed", calls)
	})

	require.Error(t, err)
	// Delays plus one final attempt.
	assert.Equal(t, 3, calls)
	assert.Equal(t, "failed after 3 attempts: attempt 3 failed", err.Error())

	require.Len(t, reports, 3)
	assert.Equal(t,
		"retryable failed definitely: [1] attempt 1 failed; [2] attempt 2 failed; [3] attempt 3 failed",
		reports[2])
}

func TestDoNonRetryable(t *testing.T) {
	fatal := errors.New("no such bucket")
	reports := []string{}
	slept := []time.Duration{}
	e := testExecutor(DefaultDelays, &reports, &slept)
	e.Retryable = func(err error) bool { return err != fatal }

	calls := 0
	err := e.Do(func() error {
		calls++
		return fatal
	})

	assert.Equal(t, fatal, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, reports)
	assert.Empty(t, slept)
}

func TestDoNoDelaysStillAttemptsOnce(t *testing.T) {
	e := Executor{}

	calls := 0
	err := e.Do(func() error {
		calls++
		return errors.New("boom")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "failed after 1 attempts: boom", err.Error())
}

func TestNewUsesDefaultDelays(t *testing.T) {
	e := New(nil)
	assert.Equal(t, DefaultDelays, e.Delays)
	assert.Equal(t, time.Hour, DefaultDelays[len(DefaultDelays)-1])
}
