// File: internal/service/factory.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/saucecheck/internal/browser"
	"github.com/xkilldash9x/saucecheck/internal/browser/rodsession"
	"github.com/xkilldash9x/saucecheck/internal/browser/session"
	"github.com/xkilldash9x/saucecheck/internal/config"
	"github.com/xkilldash9x/saucecheck/internal/interact"
	"github.com/xkilldash9x/saucecheck/internal/pages"
	"github.com/xkilldash9x/saucecheck/internal/scenario"
)

// ComponentFactory builds the set of components a test run needs.
// This abstraction keeps the run command testable without a browser.
type ComponentFactory interface {
	Create(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*Components, error)
}

// LauncherBuilder picks a browser launcher for the configured backend.
type LauncherBuilder func(cfg config.BrowserConfig, logger *zap.Logger) (browser.Launcher, error)

// concreteFactory is the production implementation of the ComponentFactory.
type concreteFactory struct {
	newLauncher LauncherBuilder
}

// NewComponentFactory creates a factory that launches real browsers.
func NewComponentFactory() ComponentFactory {
	return &concreteFactory{newLauncher: NewLauncher}
}

// NewComponentFactoryWithLauncher creates a factory around a custom launcher builder.
func NewComponentFactoryWithLauncher(b LauncherBuilder) ComponentFactory {
	return &concreteFactory{newLauncher: b}
}

// NewLauncher translates the browser config into a launcher for its backend.
func NewLauncher(cfg config.BrowserConfig, logger *zap.Logger) (browser.Launcher, error) {
	switch cfg.Backend {
	case config.BackendChromedp, "":
		return session.NewLauncher(cfg, logger), nil
	case config.BackendRod:
		return rodsession.NewLauncher(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported browser backend %q", cfg.Backend)
	}
}

// PolicyFromConfig maps the wait settings onto the helper's timing policy.
func PolicyFromConfig(w config.WaitConfig) interact.Policy {
	return interact.Policy{
		Timeout:      w.Timeout,
		PollInterval: w.PollInterval,
		MaxAttempts:  w.MaxAttempts,
		Backoff:      w.Backoff,
	}
}

// Create wires config into a provider, helper, page objects and scenario env.
// No browser is started here; the first helper call launches one.
func (f *concreteFactory) Create(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*Components, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	launcher, err := f.newLauncher(cfg.Browser(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create browser launcher: %w", err)
	}
	logger.Debug("Browser launcher ready.", zap.String("backend", cfg.Browser().Backend), zap.Bool("headless", cfg.Browser().Headless))

	provider := browser.NewProvider(launcher, logger)
	helper := interact.New(provider, PolicyFromConfig(cfg.Wait()), logger)
	site := cfg.Site()
	p := pages.New(helper, site, cfg.Wait().PageTimeout, logger)

	return &Components{
		Config:   cfg,
		Provider: provider,
		Helper:   helper,
		Pages:    p,
		Env:      &scenario.Env{Pages: p, Site: site, Logger: logger},
		logger:   logger,
	}, nil
}
