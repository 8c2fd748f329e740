// internal/browser/session/session.go
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/saucecheck/internal/browser"
	"github.com/xkilldash9x/saucecheck/internal/browser/chrome"
)

// Session is one chromedp-controlled Chrome tab. It owns the browser process
// and its throwaway profile directory.
type Session struct {
	id          string
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	profileDir  string
	logger      *zap.Logger

	mu     sync.Mutex
	closed bool
}

var _ browser.Driver = (*Session)(nil)

// ID returns the session identifier, or "" once the tab context is gone.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.ctx.Err() != nil {
		return ""
	}
	if c := chromedp.FromContext(s.ctx); c == nil || c.Target == nil {
		return ""
	}
	return s.id
}

// runActions executes chromedp actions bounded by both the session lifetime and ctx.
func (s *Session) runActions(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.runActions(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (s *Session) Reload(ctx context.Context) error {
	if err := s.runActions(ctx, chromedp.Reload()); err != nil {
		return fmt.Errorf("failed to reload: %w", err)
	}
	return nil
}

func (s *Session) URL(ctx context.Context) (string, error) {
	var u string
	if err := s.runActions(ctx, chromedp.Location(&u)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return u, nil
}

func (s *Session) Count(ctx context.Context, loc browser.Locator) (int, error) {
	var n int
	if err := s.runActions(ctx, chromedp.Evaluate(chrome.CountScript(loc), &n)); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", loc, err)
	}
	return n, nil
}

func (s *Session) Probe(ctx context.Context, loc browser.Locator) (browser.Probe, error) {
	var res chrome.ProbeResult
	if err := s.runActions(ctx, chromedp.Evaluate(chrome.ProbeScript(loc), &res)); err != nil {
		return browser.Probe{}, fmt.Errorf("failed to probe %s: %w", loc, err)
	}
	return browser.Probe{Count: res.Count, Visible: res.Visible}, nil
}

// nodes resolves loc without waiting. CSS-expressible locators use
// querySelectorAll; XPath goes through DOM.performSearch.
func (s *Session) nodes(ctx context.Context, loc browser.Locator) ([]*cdp.Node, error) {
	var nodes []*cdp.Node
	sel, by := loc.Value, chromedp.BySearch
	if css, ok := loc.CSS(); ok {
		sel, by = css, chromedp.ByQueryAll
	}
	if err := s.runActions(ctx, chromedp.Nodes(sel, &nodes, by, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (s *Session) Elements(ctx context.Context, loc browser.Locator) ([]browser.Element, error) {
	nodes, err := s.nodes(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", loc, err)
	}
	elems := make([]browser.Element, 0, len(nodes))
	for _, n := range nodes {
		elems = append(elems, &element{session: s, node: n, loc: loc})
	}
	return elems, nil
}

// first returns the first node matching loc or an InteractionError for op.
func (s *Session) first(ctx context.Context, op string, loc browser.Locator) (*cdp.Node, error) {
	nodes, err := s.nodes(ctx, loc)
	if err != nil {
		return nil, &browser.InteractionError{Op: op, Locator: loc, Err: err}
	}
	if len(nodes) == 0 {
		return nil, &browser.InteractionError{Op: op, Locator: loc, Err: errors.New("no element matches")}
	}
	return nodes[0], nil
}

func (s *Session) Click(ctx context.Context, loc browser.Locator) error {
	node, err := s.first(ctx, "click", loc)
	if err != nil {
		return err
	}
	if err := s.runActions(ctx, chromedp.MouseClickNode(node)); err != nil {
		return &browser.InteractionError{Op: "click", Locator: loc, Err: err}
	}
	return nil
}

func (s *Session) JSClick(ctx context.Context, loc browser.Locator) error {
	var clicked bool
	if err := s.runActions(ctx, chromedp.Evaluate(chrome.ClickScript(loc), &clicked)); err != nil {
		return &browser.InteractionError{Op: "js click", Locator: loc, Err: err}
	}
	if !clicked {
		return &browser.InteractionError{Op: "js click", Locator: loc, Err: errors.New("no element matches")}
	}
	return nil
}

func (s *Session) SendKeys(ctx context.Context, loc browser.Locator, text string) error {
	node, err := s.first(ctx, "type", loc)
	if err != nil {
		return err
	}
	if err := s.runActions(ctx, chromedp.SendKeys([]cdp.NodeID{node.NodeID}, text, chromedp.ByNodeID)); err != nil {
		return &browser.InteractionError{Op: "type", Locator: loc, Err: err}
	}
	return nil
}

func (s *Session) SelectByValue(ctx context.Context, loc browser.Locator, value string) error {
	var outcome string
	if err := s.runActions(ctx, chromedp.Evaluate(chrome.SelectScript(loc, value), &outcome)); err != nil {
		return &browser.InteractionError{Op: "select", Locator: loc, Err: err}
	}
	if err := chrome.SelectError(outcome, value); err != nil {
		return &browser.InteractionError{Op: "select", Locator: loc, Err: err}
	}
	return nil
}

// Close shuts the browser down gracefully, falling back to killing it when ctx
// expires first, and removes the profile directory.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.logger.Debug("Closing browser session.")

	done := make(chan error, 1)
	go func() {
		done <- chromedp.Cancel(s.ctx)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		s.logger.Warn("Graceful browser shutdown timed out, killing the process.")
		s.cancelTab()
		s.cancelAlloc()
		err = <-done
	}
	s.cancelTab()
	s.cancelAlloc()

	if rmErr := os.RemoveAll(s.profileDir); rmErr != nil {
		s.logger.Debug("Failed to remove profile directory.", zap.String("dir", s.profileDir), zap.Error(rmErr))
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

// element is a located DOM node. Methods run page script against the node, so
// none of them wait for visibility.
type element struct {
	session *Session
	node    *cdp.Node
	loc     browser.Locator
}

// call runs fn with the node bound to this. The node is resolved to a remote
// object for the call and released afterwards.
func (e *element) call(ctx context.Context, op, fn string, res interface{}, args ...interface{}) error {
	err := e.session.runActions(ctx, chromedp.ActionFunc(func(c context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(e.node.NodeID).Do(c)
		if err != nil {
			return fmt.Errorf("failed to resolve node: %w", err)
		}
		defer func() {
			_ = runtime.ReleaseObject(obj.ObjectID).Do(c)
		}()
		return chromedp.CallFunctionOn(fn, res, onObject(obj.ObjectID), args...).Do(c)
	}))
	if err != nil {
		return &browser.InteractionError{Op: op, Locator: e.loc, Err: err}
	}
	return nil
}

// onObject targets a Runtime.callFunctionOn call at a resolved remote object.
func onObject(id runtime.RemoteObjectID) func(*runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
	return func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
		return p.WithObjectID(id)
	}
}

func (e *element) Text(ctx context.Context) (string, error) {
	var text string
	err := e.call(ctx, "text", `function() { return this.innerText || this.textContent || ""; }`, &text)
	return text, err
}

func (e *element) Attribute(ctx context.Context, name string) (string, bool, error) {
	var res struct {
		OK    bool   `json:"ok"`
		Value string `json:"value"`
	}
	err := e.call(ctx, "attribute", `function(name) {
		return this.hasAttribute(name) ? {ok: true, value: this.getAttribute(name)} : {ok: false, value: ""};
	}`, &res, name)
	return res.Value, res.OK, err
}

func (e *element) Visible(ctx context.Context) (bool, error) {
	var visible bool
	err := e.call(ctx, "visible", "function() { return ("+chrome.VisibleFn+")(this); }", &visible)
	return visible, err
}

func (e *element) Enabled(ctx context.Context) (bool, error) {
	var enabled bool
	err := e.call(ctx, "enabled", `function() { return !this.disabled; }`, &enabled)
	return enabled, err
}

func (e *element) Click(ctx context.Context) error {
	if err := e.session.runActions(ctx, chromedp.MouseClickNode(e.node)); err != nil {
		return &browser.InteractionError{Op: "click", Locator: e.loc, Err: err}
	}
	return nil
}

func newSession(ctx context.Context, cancelTab, cancelAlloc context.CancelFunc, profileDir string, logger *zap.Logger) *Session {
	id := uuid.New().String()
	return &Session{
		id:          id,
		ctx:         ctx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		profileDir:  profileDir,
		logger:      logger.With(zap.String("session_id", id)),
	}
}
