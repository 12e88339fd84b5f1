// Package retry runs operations under a bounded backoff policy.
package retry

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultDelays is the backoff ladder applied between attempts.
var DefaultDelays = []time.Duration{
	0,
	1 * time.Second,
	5 * time.Second,
	30 * time.Second,
	180 * time.Second,
	600 * time.Second,
	3600 * time.Second,
}

// Executor retries an operation with a fixed, ordered delay sequence.
// Attempts are strictly sequential; the caller blocks through every
// delay. After the sequence is exhausted one final attempt is made,
// and a final failure is always reported and returned, never
// swallowed.
type Executor struct {
	// Delays between attempts; len(Delays)+1 attempts total.
	Delays []time.Duration

	// Retryable decides whether a failure is worth another
	// attempt. Nil means every failure is retryable.
	Retryable func(error) bool

	// Report receives progress and failure text. Nil disables
	// reporting. The executor is agnostic to the sink.
	Report func(msg string)

	// Sleep is swappable for tests. Nil means time.Sleep.
	Sleep func(time.Duration)
}

// New returns an Executor with the default delay ladder.
func New(report func(msg string)) Executor {
	return Executor{
		Delays: DefaultDelays,
		Report: report,
	}
}

// Do runs op until it succeeds, fails unretryably, or exhausts all
// delays plus one final attempt. On exhaustion the complete ordered
// list of failures is reported once and the last error is returned.
func (e Executor) Do(op func() error) error {
	report := e.Report
	if report == nil {
		report = func(string) {}
	}
	sleep := e.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	failures := []error{}
	for _, delay := range e.Delays {
		err := op()
		if err == nil {
			return nil
		}
		if e.Retryable != nil && !e.Retryable(err) {
			return err
		}

		failures = append(failures, err)
		report(fmt.Sprintf("retryable failed: %v -- delaying for %s", err, delay))
		sleep(delay)
	}

	err := op()
	if err == nil {
		return nil
	}
	if e.Retryable != nil && !e.Retryable(err) {
		return err
	}

	failures = append(failures, err)
	report(fmt.Sprintf("retryable failed definitely: %s", formatFailures(failures)))

	return errors.Wrapf(err, "failed after %d attempts", len(failures))
}

func formatFailures(failures []error) string {
	msgs := make([]string, len(failures))
	for i, err := range failures {
		msgs[i] = fmt.Sprintf("[%d] %v", i+1, err)
	}
	return strings.Join(msgs, "; ")
}
