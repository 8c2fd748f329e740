// File: internal/service/components.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/saucecheck/internal/browser"
	"github.com/xkilldash9x/saucecheck/internal/config"
	"github.com/xkilldash9x/saucecheck/internal/interact"
	"github.com/xkilldash9x/saucecheck/internal/pages"
	"github.com/xkilldash9x/saucecheck/internal/scenario"
)

const shutdownTimeout = 30 * time.Second

// Components holds everything a run needs and owns the browser's lifecycle.
type Components struct {
	Config   config.Interface
	Provider *browser.Provider
	Helper   *interact.Helper
	Pages    *pages.Pages
	Env      *scenario.Env

	logger *zap.Logger
}

// Run executes the named scenarios against this component set.
func (c *Components) Run(ctx context.Context, names ...string) ([]scenario.Result, error) {
	return scenario.Run(ctx, c.Env, names...)
}

// Shutdown closes the browser session. It uses its own timeout so it still
// completes when the run's context was cancelled.
func (c *Components) Shutdown() {
	logger := c.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("Beginning components shutdown sequence.")

	if c.Provider != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := c.Provider.Close(shutdownCtx); err != nil {
			logger.Warn("Error during browser session shutdown.", zap.Error(err))
		} else {
			logger.Debug("Browser session shut down.", zap.Int("launches", c.Provider.Launches()))
		}
	}

	logger.Info("All components shut down.")
}
