// Package rodsession drives Chrome through go-rod. It is the alternate backend,
// selected with browser.backend: rod.
package rodsession

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/saucecheck/internal/browser"
	"github.com/xkilldash9x/saucecheck/internal/browser/chrome"
	"github.com/xkilldash9x/saucecheck/internal/config"
)

const (
	defaultLaunchTimeout = 60 * time.Second
	livenessTimeout      = 2 * time.Second
)

// Launcher starts Chrome with go-rod's launcher.
type Launcher struct {
	cfg    config.BrowserConfig
	logger *zap.Logger
}

var _ browser.Launcher = (*Launcher)(nil)

// NewLauncher creates a Launcher for cfg.
func NewLauncher(cfg config.BrowserConfig, logger *zap.Logger) *Launcher {
	return &Launcher{cfg: cfg, logger: logger.Named("rod")}
}

// NewChromeLauncher configures a go-rod launcher with the shared Chrome flags.
func NewChromeLauncher(cfg config.BrowserConfig, userDataDir string) *launcher.Launcher {
	l := launcher.New().
		Headless(false).
		Leakless(false).
		UserDataDir(userDataDir)
	if cfg.ExecPath != "" {
		l = l.Bin(cfg.ExecPath)
	}
	for _, f := range chrome.Flags(cfg) {
		name := flags.Flag(f.Name)
		switch v := f.Value.(type) {
		case bool:
			if v {
				l = l.Set(name)
			} else {
				l = l.Delete(name)
			}
		case string:
			l = l.Set(name, v)
		default:
			l = l.Set(name, fmt.Sprint(v))
		}
	}
	return l
}

// Launch starts a browser with a fresh profile and opens a blank page.
func (l *Launcher) Launch(ctx context.Context) (browser.Driver, error) {
	profileDir, err := chrome.NewProfile("")
	if err != nil {
		return nil, err
	}

	timeout := l.cfg.LaunchTimeout
	if timeout <= 0 {
		timeout = defaultLaunchTimeout
	}
	launchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chromeLauncher := NewChromeLauncher(l.cfg, profileDir).Context(launchCtx)
	controlURL, err := chromeLauncher.Launch()
	if err != nil {
		_ = os.RemoveAll(profileDir)
		return nil, fmt.Errorf("failed to launch Chrome: %w", err)
	}

	// Connect with the unbound browser: its event loop lives as long as the
	// connection, and the launcher context only bounds startup.
	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		chromeLauncher.Kill()
		_ = os.RemoveAll(profileDir)
		return nil, fmt.Errorf("failed to connect to Chrome: %w", err)
	}

	page, err := b.Context(launchCtx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = b.Close()
		chromeLauncher.Kill()
		_ = os.RemoveAll(profileDir)
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	page = page.Context(context.Background())

	id := uuid.New().String()
	s := &Session{
		id:         id,
		browser:    b,
		page:       page,
		launcher:   chromeLauncher,
		profileDir: profileDir,
		logger:     l.logger.With(zap.String("session_id", id)),
	}

	if l.cfg.Maximize && !l.cfg.Headless {
		if err := page.Context(launchCtx).SetWindow(&proto.BrowserBounds{WindowState: proto.BrowserWindowStateMaximized}); err != nil {
			s.logger.Debug("Could not maximize the browser window.", zap.Error(err))
		}
	}

	s.logger.Info("Browser session started.", zap.Bool("headless", l.cfg.Headless))
	return s, nil
}

// Session is one go-rod controlled page. It owns the browser process.
type Session struct {
	id         string
	browser    *rod.Browser
	page       *rod.Page
	launcher   *launcher.Launcher
	profileDir string
	logger     *zap.Logger

	mu     sync.Mutex
	closed bool
}

var _ browser.Driver = (*Session)(nil)

// ID returns the session identifier, or "" when the browser no longer answers.
func (s *Session) ID() string {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), livenessTimeout)
	defer cancel()
	if _, err := (proto.BrowserGetVersion{}).Call(s.browser.Context(ctx)); err != nil {
		return ""
	}
	return s.id
}

func (s *Session) p(ctx context.Context) *rod.Page { return s.page.Context(ctx) }

// eval evaluates a page-script expression and decodes its JSON value into res.
func (s *Session) eval(ctx context.Context, script string, res interface{}) error {
	obj, err := s.p(ctx).Eval("() => " + script)
	if err != nil {
		return err
	}
	return obj.Value.Unmarshal(res)
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	page := s.p(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed waiting for %s to load: %w", url, err)
	}
	return nil
}

func (s *Session) Reload(ctx context.Context) error {
	page := s.p(ctx)
	if err := page.Reload(); err != nil {
		return fmt.Errorf("failed to reload: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed waiting for reload: %w", err)
	}
	return nil
}

func (s *Session) URL(ctx context.Context) (string, error) {
	info, err := s.p(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return info.URL, nil
}

func (s *Session) Count(ctx context.Context, loc browser.Locator) (int, error) {
	var n int
	if err := s.eval(ctx, chrome.CountScript(loc), &n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", loc, err)
	}
	return n, nil
}

func (s *Session) Probe(ctx context.Context, loc browser.Locator) (browser.Probe, error) {
	var res chrome.ProbeResult
	if err := s.eval(ctx, chrome.ProbeScript(loc), &res); err != nil {
		return browser.Probe{}, fmt.Errorf("failed to probe %s: %w", loc, err)
	}
	return browser.Probe{Count: res.Count, Visible: res.Visible}, nil
}

// elements resolves loc without waiting.
func (s *Session) elements(ctx context.Context, loc browser.Locator) (rod.Elements, error) {
	if css, ok := loc.CSS(); ok {
		return s.p(ctx).Elements(css)
	}
	return s.p(ctx).ElementsX(loc.Value)
}

func (s *Session) Elements(ctx context.Context, loc browser.Locator) ([]browser.Element, error) {
	found, err := s.elements(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", loc, err)
	}
	elems := make([]browser.Element, 0, len(found))
	for _, el := range found {
		elems = append(elems, &element{el: el, loc: loc})
	}
	return elems, nil
}

func (s *Session) first(ctx context.Context, op string, loc browser.Locator) (*rod.Element, error) {
	found, err := s.elements(ctx, loc)
	if err != nil {
		return nil, &browser.InteractionError{Op: op, Locator: loc, Err: err}
	}
	if found.Empty() {
		return nil, &browser.InteractionError{Op: op, Locator: loc, Err: errors.New("no element matches")}
	}
	return found.First(), nil
}

func (s *Session) Click(ctx context.Context, loc browser.Locator) error {
	el, err := s.first(ctx, "click", loc)
	if err != nil {
		return err
	}
	if err := el.Context(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return &browser.InteractionError{Op: "click", Locator: loc, Err: err}
	}
	return nil
}

func (s *Session) JSClick(ctx context.Context, loc browser.Locator) error {
	var clicked bool
	if err := s.eval(ctx, chrome.ClickScript(loc), &clicked); err != nil {
		return &browser.InteractionError{Op: "js click", Locator: loc, Err: err}
	}
	if !clicked {
		return &browser.InteractionError{Op: "js click", Locator: loc, Err: errors.New("no element matches")}
	}
	return nil
}

func (s *Session) SendKeys(ctx context.Context, loc browser.Locator, text string) error {
	el, err := s.first(ctx, "type", loc)
	if err != nil {
		return err
	}
	if err := el.Context(ctx).Input(text); err != nil {
		return &browser.InteractionError{Op: "type", Locator: loc, Err: err}
	}
	return nil
}

func (s *Session) SelectByValue(ctx context.Context, loc browser.Locator, value string) error {
	var outcome string
	if err := s.eval(ctx, chrome.SelectScript(loc, value), &outcome); err != nil {
		return &browser.InteractionError{Op: "select", Locator: loc, Err: err}
	}
	if err := chrome.SelectError(outcome, value); err != nil {
		return &browser.InteractionError{Op: "select", Locator: loc, Err: err}
	}
	return nil
}

// Close closes the browser, killing the process when ctx expires first, and
// removes the profile directory.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.logger.Debug("Closing browser session.")

	var err error
	if cerr := s.browser.Context(ctx).Close(); cerr != nil {
		s.logger.Warn("Graceful browser shutdown failed, killing the process.", zap.Error(cerr))
		err = cerr
	}
	s.launcher.Kill()
	s.launcher.Cleanup()

	if rmErr := os.RemoveAll(s.profileDir); rmErr != nil {
		s.logger.Debug("Failed to remove profile directory.", zap.String("dir", s.profileDir), zap.Error(rmErr))
	}
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

type element struct {
	el  *rod.Element
	loc browser.Locator
}

func (e *element) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &browser.InteractionError{Op: op, Locator: e.loc, Err: err}
}

func (e *element) Text(ctx context.Context) (string, error) {
	text, err := e.el.Context(ctx).Text()
	return text, e.wrap("text", err)
}

func (e *element) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, e.wrap("attribute", err)
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *element) Visible(ctx context.Context) (bool, error) {
	v, err := e.el.Context(ctx).Visible()
	return v, e.wrap("visible", err)
}

func (e *element) Enabled(ctx context.Context) (bool, error) {
	disabled, err := e.el.Context(ctx).Disabled()
	return !disabled, e.wrap("enabled", err)
}

func (e *element) Click(ctx context.Context) error {
	return e.wrap("click", e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1))
}
