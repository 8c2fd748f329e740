// internal/browser/provider.go
package browser

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const closeGracePeriod = 10 * time.Second

// Provider owns at most one live browser session and hands it out on demand.
// It replaces a process-wide driver singleton: each test worker builds its own
// Provider, so parallel workers never share a browser.
type Provider struct {
	launcher Launcher
	logger   *zap.Logger

	mu      sync.Mutex
	current Driver
	// launches counts how many sessions this provider has created.
	launches int
}

// NewProvider creates a provider. No browser is started until the first Session call.
func NewProvider(launcher Launcher, logger *zap.Logger) *Provider {
	return &Provider{
		launcher: launcher,
		logger:   logger.Named("session_provider"),
	}
}

// Session returns the current session, launching a new one when there is none
// or when the existing one no longer reports an active identifier.
// A launch failure is returned as a *SessionUnavailableError.
func (p *Provider) Session(ctx context.Context) (Driver, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil {
		if p.current.ID() != "" {
			return p.current, nil
		}
		p.logger.Warn("Browser session lost its identifier, recreating.")
		p.discardLocked()
	}

	d, err := p.launcher.Launch(ctx)
	if err != nil {
		var unavailable *SessionUnavailableError
		if errors.As(err, &unavailable) {
			return nil, err
		}
		return nil, &SessionUnavailableError{Err: err}
	}
	if d == nil || d.ID() == "" {
		if d != nil {
			_ = d.Close(ctx)
		}
		return nil, &SessionUnavailableError{Err: errors.New("launcher returned a session without an identifier")}
	}

	p.current = d
	p.launches++
	p.logger.Info("Browser session started.", zap.String("session_id", d.ID()), zap.Int("launches", p.launches))
	return d, nil
}

// Close terminates the current session, if any, and forgets it so the next
// Session call starts a fresh browser. Calling Close with no session is a no-op.
func (p *Provider) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil
	}
	d := p.current
	p.current = nil

	p.logger.Info("Closing browser session.", zap.String("session_id", d.ID()))
	return d.Close(ctx)
}

// Launches reports how many sessions this provider has started.
func (p *Provider) Launches() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.launches
}

// discardLocked closes a dead session with a detached, bounded context. Errors are only logged:
// the session is already unusable.
func (p *Provider) discardLocked() {
	d := p.current
	p.current = nil

	ctx, cancel := context.WithTimeout(context.Background(), closeGracePeriod)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		p.logger.Debug("Error closing dead browser session.", zap.Error(err))
	}
}
