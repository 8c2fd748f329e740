// internal/browser/session/launcher.go
package session

import (
	"context"
	"fmt"
	"os"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/saucecheck/internal/browser"
	"github.com/xkilldash9x/saucecheck/internal/browser/chrome"
	"github.com/xkilldash9x/saucecheck/internal/config"
)

const defaultLaunchTimeout = 60 * time.Second

// Launcher starts Chrome through chromedp's exec allocator.
type Launcher struct {
	cfg    config.BrowserConfig
	logger *zap.Logger
}

var _ browser.Launcher = (*Launcher)(nil)

// NewLauncher creates a Launcher for cfg.
func NewLauncher(cfg config.BrowserConfig, logger *zap.Logger) *Launcher {
	return &Launcher{cfg: cfg, logger: logger.Named("chromedp")}
}

// AllocatorOptions translates the browser configuration into exec allocator options.
func AllocatorOptions(cfg config.BrowserConfig, userDataDir string) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{chromedp.UserDataDir(userDataDir)}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	for _, f := range chrome.Flags(cfg) {
		opts = append(opts, chromedp.Flag(f.Name, f.Value))
	}
	return opts
}

// Launch starts a browser with a fresh profile and returns its first tab.
// ctx bounds startup only; the browser lives until the returned session is closed.
func (l *Launcher) Launch(ctx context.Context) (browser.Driver, error) {
	profileDir, err := chrome.NewProfile("")
	if err != nil {
		return nil, err
	}

	// The allocator is rooted in Background so the browser outlives the
	// caller's context.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), AllocatorOptions(l.cfg, profileDir)...)

	sugar := l.logger.Sugar()
	tabOpts := []chromedp.ContextOption{chromedp.WithLogf(sugar.Debugf), chromedp.WithErrorf(sugar.Debugf)}
	if l.cfg.Debug {
		tabOpts = append(tabOpts, chromedp.WithDebugf(sugar.Debugf))
	}
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, tabOpts...)

	fail := func(err error) (browser.Driver, error) {
		cancelTab()
		cancelAlloc()
		_ = os.RemoveAll(profileDir)
		return nil, err
	}

	// The first Run starts the process. It must not carry a deadline, or the
	// browser would die with it, so startup is bounded from the outside.
	timeout := l.cfg.LaunchTimeout
	if timeout <= 0 {
		timeout = defaultLaunchTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	started := make(chan error, 1)
	go func() {
		started <- chromedp.Run(tabCtx)
	}()

	select {
	case err = <-started:
	case <-ctx.Done():
		cancelTab()
		<-started
		return fail(ctx.Err())
	case <-timer.C:
		cancelTab()
		<-started
		return fail(fmt.Errorf("browser did not start within %s", timeout))
	}
	if err != nil {
		return fail(fmt.Errorf("failed to start browser: %w", err))
	}

	s := newSession(tabCtx, cancelTab, cancelAlloc, profileDir, l.logger)

	if l.cfg.Maximize && !l.cfg.Headless {
		if err := s.runActions(ctx, maximize()); err != nil {
			s.logger.Debug("Could not maximize the browser window.", zap.Error(err))
		}
	}

	s.logger.Info("Browser session started.", zap.Bool("headless", l.cfg.Headless))
	return s, nil
}

// maximize puts the tab's window into the maximized state.
func maximize() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		windowID, _, err := cdpbrowser.GetWindowForTarget().Do(ctx)
		if err != nil {
			return err
		}
		return cdpbrowser.SetWindowBounds(windowID, &cdpbrowser.Bounds{WindowState: cdpbrowser.WindowStateMaximized}).Do(ctx)
	})
}
