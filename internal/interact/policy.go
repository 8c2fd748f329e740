// internal/interact/policy.go
package interact

import "time"

// Defaults mirror the suite's historical behaviour: a three second visibility
// budget and three click attempts.
const (
	DefaultTimeout      = 3 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
	DefaultMaxAttempts  = 3
)

// Policy holds the timing parameters shared by every helper call.
type Policy struct {
	// Timeout bounds each visibility/presence wait.
	Timeout time.Duration
	// PollInterval is the minimum spacing between two probes of the page.
	PollInterval time.Duration
	// MaxAttempts is the attempt budget ClickWithRetry callers usually pass.
	MaxAttempts int
	// Backoff is the pause between retry attempts; zero retries immediately.
	Backoff time.Duration
}

// DefaultPolicy returns the stock policy.
func DefaultPolicy() Policy {
	return Policy{
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
		MaxAttempts:  DefaultMaxAttempts,
	}
}

// normalized fills zero fields with defaults.
func (p Policy) normalized() Policy {
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	if p.PollInterval <= 0 {
		p.PollInterval = DefaultPollInterval
	}
	if p.MaxAttempts < 1 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Backoff < 0 {
		p.Backoff = 0
	}
	return p
}
