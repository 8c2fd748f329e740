// internal/browser/errors.go
package browser

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel values for errors.Is checks against the typed errors below.
var (
	ErrTimeout            = errors.New("wait condition not met before timeout")
	ErrInteraction        = errors.New("browser rejected the interaction")
	ErrSessionUnavailable = errors.New("browser session unavailable")
)

// TimeoutError reports that a wait condition did not hold within its budget.
// Callers may recover from it (retry, or treat the element as absent).
type TimeoutError struct {
	// Locator is the zero value for waits that are not about an element (URL waits).
	Locator   Locator
	Condition string
	Timeout   time.Duration
	Elapsed   time.Duration
	// Last is the most recent probe error seen while polling, if any.
	Last error
}

func (e *TimeoutError) Error() string {
	subject := e.Condition
	if e.Locator.Value != "" {
		subject = fmt.Sprintf("%s to be %s", e.Locator, e.Condition)
	}
	msg := fmt.Sprintf("timed out after %s waiting for %s (timeout %s)",
		e.Elapsed.Round(time.Millisecond), subject, e.Timeout)
	if e.Last != nil {
		msg += ": last probe error: " + e.Last.Error()
	}
	return msg
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

func (e *TimeoutError) Unwrap() error { return e.Last }

// InteractionError wraps a failure the browser raised while acting on an
// element: stale node, click intercepted, element detached and so on.
type InteractionError struct {
	Op      string
	Locator Locator
	Err     error
}

func (e *InteractionError) Error() string {
	return fmt.Sprintf("%s on %s failed: %v", e.Op, e.Locator, e.Err)
}

func (e *InteractionError) Is(target error) bool { return target == ErrInteraction }

func (e *InteractionError) Unwrap() error { return e.Err }

// SessionUnavailableError is fatal: the browser could not be started or is gone for good.
type SessionUnavailableError struct {
	Err error
}

func (e *SessionUnavailableError) Error() string {
	return fmt.Sprintf("browser session unavailable: %v", e.Err)
}

func (e *SessionUnavailableError) Is(target error) bool { return target == ErrSessionUnavailable }

func (e *SessionUnavailableError) Unwrap() error { return e.Err }
