// internal/interact/retry.go
package interact

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy bounds a retried action.
type RetryPolicy struct {
	MaxAttempts int
	// Backoff is the pause before the second attempt.
	Backoff time.Duration
	// Multiplier grows the pause after each failure. Values <= 1 keep it constant.
	Multiplier float64
	// MaxBackoff caps the pause when Multiplier > 1. Zero means no cap.
	MaxBackoff time.Duration
}

// Outcome is the result of Retry.
type Outcome struct {
	// Attempts is how many times the action ran.
	Attempts int
	// MaxAttempts is the budget the retry ran with.
	MaxAttempts int
	// Err is nil on success, otherwise the error of the final attempt
	// (or the context error if the retry was cancelled between attempts).
	Err error
}

// Succeeded reports whether an attempt completed without error.
func (o Outcome) Succeeded() bool { return o.Err == nil }

// Exhausted reports whether every allowed attempt ran and failed.
func (o Outcome) Exhausted() bool { return o.Err != nil && o.Attempts >= o.MaxAttempts }

// ExhaustedError is returned when all attempts failed. It unwraps to the last
// attempt's error so callers can still match TimeoutError or InteractionError.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempt(s): %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// AsError converts the outcome into an error value: nil, *ExhaustedError, or the cancellation error.
func (o Outcome) AsError() error {
	switch {
	case o.Succeeded():
		return nil
	case o.Exhausted():
		return &ExhaustedError{Attempts: o.Attempts, Last: o.Err}
	default:
		return o.Err
	}
}

// Retry runs fn until it succeeds or MaxAttempts attempts have failed.
// Failures before the last attempt are absorbed; the last one is reported in the Outcome.
// attempt starts at 1.
func Retry(ctx context.Context, p RetryPolicy, fn func(ctx context.Context, attempt int) error) Outcome {
	limit := p.MaxAttempts
	if limit < 1 {
		limit = 1
	}
	out := Outcome{MaxAttempts: limit}
	pause := p.Backoff

	for attempt := 1; attempt <= limit; attempt++ {
		out.Attempts = attempt
		out.Err = fn(ctx, attempt)
		if out.Err == nil || attempt == limit {
			return out
		}

		if pause > 0 {
			if err := sleep(ctx, pause); err != nil {
				out.Err = err
				return out
			}
			pause = nextBackoff(pause, p)
		} else if err := ctx.Err(); err != nil {
			out.Err = err
			return out
		}
	}
	return out
}

func nextBackoff(cur time.Duration, p RetryPolicy) time.Duration {
	if p.Multiplier <= 1 {
		return cur
	}
	next := time.Duration(float64(cur) * p.Multiplier)
	if p.MaxBackoff > 0 && next > p.MaxBackoff {
		next = p.MaxBackoff
	}
	return next
}

// sleep blocks for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
