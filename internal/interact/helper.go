// internal/interact/helper.go
package interact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/saucecheck/internal/browser"
)

// probeGrace bounds how long a probe started just before the deadline may run past it.
const probeGrace = 500 * time.Millisecond

// SessionSource hands out the session that helper calls act on.
// *browser.Provider implements it.
type SessionSource interface {
	Session(ctx context.Context) (browser.Driver, error)
}

// Helper is the wait/retry/interaction layer page objects are built on.
// Every element operation except IsPresent first waits for the element to be visible.
type Helper struct {
	source SessionSource
	policy Policy
	logger *zap.Logger
}

// New creates a Helper bound to one session source.
func New(source SessionSource, policy Policy, logger *zap.Logger) *Helper {
	return &Helper{
		source: source,
		policy: policy.normalized(),
		logger: logger.Named("interact"),
	}
}

// Policy returns the effective timing policy.
func (h *Helper) Policy() Policy { return h.policy }

// WaitForVisible waits up to the policy timeout for the first match of loc to be rendered visible.
func (h *Helper) WaitForVisible(ctx context.Context, loc browser.Locator) error {
	return h.WaitForVisibleWithin(ctx, loc, h.policy.Timeout)
}

// WaitForVisibleWithin is WaitForVisible with an explicit budget.
func (h *Helper) WaitForVisibleWithin(ctx context.Context, loc browser.Locator, timeout time.Duration) error {
	d, err := h.source.Session(ctx)
	if err != nil {
		return err
	}
	return h.waitForElement(ctx, d, loc, "visible", timeout, func(p browser.Probe) bool {
		return p.Count > 0 && p.Visible
	})
}

// WaitForPresent waits for at least one match to exist in the DOM, visible or not.
func (h *Helper) WaitForPresent(ctx context.Context, loc browser.Locator, timeout time.Duration) error {
	d, err := h.source.Session(ctx)
	if err != nil {
		return err
	}
	return h.waitForElement(ctx, d, loc, "present", timeout, func(p browser.Probe) bool {
		return p.Count > 0
	})
}

// WaitForURL waits for the current URL to contain substr.
func (h *Helper) WaitForURL(ctx context.Context, substr string, timeout time.Duration) error {
	d, err := h.source.Session(ctx)
	if err != nil {
		return err
	}
	condition := fmt.Sprintf("url to contain %q", substr)
	return h.poll(ctx, browser.Locator{}, condition, timeout, func(pctx context.Context) (bool, error) {
		u, err := d.URL(pctx)
		if err != nil {
			return false, err
		}
		return strings.Contains(u, substr), nil
	})
}

// WaitUntil polls fn until it reports true or timeout elapses. description names the
// condition in the resulting TimeoutError.
func (h *Helper) WaitUntil(ctx context.Context, description string, timeout time.Duration, fn func(ctx context.Context) (bool, error)) error {
	return h.poll(ctx, browser.Locator{}, description, timeout, fn)
}

// Click waits for loc to be visible and clicks the first match once. Click
// failures are returned as-is and never retried.
func (h *Helper) Click(ctx context.Context, loc browser.Locator) error {
	d, err := h.visible(ctx, loc)
	if err != nil {
		return err
	}
	h.logger.Debug("Clicking element.", zap.Stringer("locator", loc))
	return d.Click(ctx, loc)
}

// ClickWithRetry repeats the wait-and-click sequence up to maxAttempts times.
// Failures before the last attempt are swallowed. When every attempt fails the
// result is an *ExhaustedError wrapping the final failure.
func (h *Helper) ClickWithRetry(ctx context.Context, loc browser.Locator, maxAttempts int) error {
	out := h.ClickWithRetryOutcome(ctx, loc, maxAttempts)
	return out.AsError()
}

// ClickWithRetryOutcome is ClickWithRetry returning the full Outcome, including
// how many attempts it took.
func (h *Helper) ClickWithRetryOutcome(ctx context.Context, loc browser.Locator, maxAttempts int) Outcome {
	p := RetryPolicy{MaxAttempts: maxAttempts, Backoff: h.policy.Backoff}
	out := Retry(ctx, p, func(ctx context.Context, attempt int) error {
		err := h.Click(ctx, loc)
		if err != nil && attempt < p.MaxAttempts {
			h.logger.Debug("Click attempt failed, retrying.",
				zap.Stringer("locator", loc), zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	})
	if !out.Succeeded() {
		h.logger.Warn("Click failed on every attempt.",
			zap.Stringer("locator", loc), zap.Int("attempts", out.Attempts), zap.Error(out.Err))
	}
	return out
}

// JSClick waits for loc to be visible and clicks it from page script, which
// sidesteps overlays that intercept native clicks.
func (h *Helper) JSClick(ctx context.Context, loc browser.Locator) error {
	d, err := h.visible(ctx, loc)
	if err != nil {
		return err
	}
	return d.JSClick(ctx, loc)
}

// Type waits for loc to be visible and sends text to it.
func (h *Helper) Type(ctx context.Context, loc browser.Locator, text string) error {
	d, err := h.visible(ctx, loc)
	if err != nil {
		return err
	}
	return d.SendKeys(ctx, loc, text)
}

// SelectByValue waits for the <select> at loc and picks the option with the given value.
func (h *Helper) SelectByValue(ctx context.Context, loc browser.Locator, value string) error {
	d, err := h.visible(ctx, loc)
	if err != nil {
		return err
	}
	return d.SelectByValue(ctx, loc, value)
}

// GetText waits for loc and returns the trimmed visible text of the first match.
func (h *Helper) GetText(ctx context.Context, loc browser.Locator) (string, error) {
	d, err := h.visible(ctx, loc)
	if err != nil {
		return "", err
	}
	elems, err := d.Elements(ctx, loc)
	if err != nil {
		return "", err
	}
	if len(elems) == 0 {
		return "", &browser.InteractionError{Op: "text", Locator: loc, Err: errors.New("element disappeared after becoming visible")}
	}
	text, err := elems[0].Text(ctx)
	if err != nil {
		return "", &browser.InteractionError{Op: "text", Locator: loc, Err: err}
	}
	return strings.TrimSpace(text), nil
}

// GetElements waits until at least one match is visible and returns every
// match in document order. The visibility timeout propagates; callers that
// treat "none" as a valid answer must check for browser.ErrTimeout themselves.
func (h *Helper) GetElements(ctx context.Context, loc browser.Locator) ([]browser.Element, error) {
	d, err := h.visible(ctx, loc)
	if err != nil {
		return nil, err
	}
	return d.Elements(ctx, loc)
}

// GetTexts is GetElements followed by the trimmed text of each element.
func (h *Helper) GetTexts(ctx context.Context, loc browser.Locator) ([]string, error) {
	elems, err := h.GetElements(ctx, loc)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(elems))
	for i, el := range elems {
		t, err := el.Text(ctx)
		if err != nil {
			return nil, &browser.InteractionError{Op: fmt.Sprintf("text[%d]", i), Locator: loc, Err: err}
		}
		texts = append(texts, strings.TrimSpace(t))
	}
	return texts, nil
}

// IsPresent reports whether anything matches loc right now. It never waits,
// ignores visibility and never fails: any error is reported as false.
func (h *Helper) IsPresent(ctx context.Context, loc browser.Locator) bool {
	d, err := h.source.Session(ctx)
	if err != nil {
		h.logger.Debug("Presence check without a session.", zap.Stringer("locator", loc), zap.Error(err))
		return false
	}
	n, err := d.Count(ctx, loc)
	if err != nil {
		h.logger.Debug("Presence check failed, treating as absent.", zap.Stringer("locator", loc), zap.Error(err))
		return false
	}
	return n > 0
}

// Delay blocks for a fixed duration or until ctx is done. Prefer a condition wait.
func (h *Helper) Delay(ctx context.Context, d time.Duration) error {
	h.logger.Warn("Fixed delay used in place of a condition wait.", zap.Duration("duration", d))
	return sleep(ctx, d)
}

// Navigate loads url in the current session.
func (h *Helper) Navigate(ctx context.Context, url string) error {
	d, err := h.source.Session(ctx)
	if err != nil {
		return err
	}
	h.logger.Debug("Navigating.", zap.String("url", url))
	return d.Navigate(ctx, url)
}

// Reload reloads the current page.
func (h *Helper) Reload(ctx context.Context) error {
	d, err := h.source.Session(ctx)
	if err != nil {
		return err
	}
	return d.Reload(ctx)
}

// CurrentURL returns the URL of the current page.
func (h *Helper) CurrentURL(ctx context.Context) (string, error) {
	d, err := h.source.Session(ctx)
	if err != nil {
		return "", err
	}
	return d.URL(ctx)
}

// visible acquires the session and waits for loc to be visible on it.
func (h *Helper) visible(ctx context.Context, loc browser.Locator) (browser.Driver, error) {
	d, err := h.source.Session(ctx)
	if err != nil {
		return nil, err
	}
	err = h.waitForElement(ctx, d, loc, "visible", h.policy.Timeout, func(p browser.Probe) bool {
		return p.Count > 0 && p.Visible
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (h *Helper) waitForElement(ctx context.Context, d browser.Driver, loc browser.Locator, condition string, timeout time.Duration, ok func(browser.Probe) bool) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	return h.poll(ctx, loc, condition, timeout, func(pctx context.Context) (bool, error) {
		p, err := d.Probe(pctx, loc)
		if err != nil {
			return false, err
		}
		return ok(p), nil
	})
}

// poll runs check until it returns true or timeout elapses. Probe errors count as "not yet".
// The last check happens at or after the deadline, so a timeout is never reported early.
func (h *Helper) poll(ctx context.Context, loc browser.Locator, condition string, timeout time.Duration, check func(ctx context.Context) (bool, error)) error {
	start := time.Now()
	deadline := start.Add(timeout)

	limiter := rate.NewLimiter(rate.Every(h.policy.PollInterval), 1)
	limiter.Allow()

	var last error
	for {
		done, err := h.check(ctx, deadline, check)
		if err == nil && done {
			return nil
		}
		if err != nil {
			last = err
		}
		if ctx.Err() != nil {
			return fmt.Errorf("waiting for %s: %w", describe(loc, condition), ctx.Err())
		}
		if !time.Now().Before(deadline) {
			break
		}
		if err := pause(ctx, limiter, deadline); err != nil {
			return fmt.Errorf("waiting for %s: %w", describe(loc, condition), err)
		}
	}

	te := &browser.TimeoutError{
		Locator:   loc,
		Condition: condition,
		Timeout:   timeout,
		Elapsed:   time.Since(start),
		Last:      last,
	}
	h.logger.Debug("Wait timed out.", zap.Error(te))
	return te
}

func (h *Helper) check(ctx context.Context, deadline time.Time, check func(ctx context.Context) (bool, error)) (bool, error) {
	pctx, cancel := context.WithDeadline(ctx, deadline.Add(probeGrace))
	defer cancel()
	return check(pctx)
}

// pause waits for the next poll slot without overshooting the deadline.
func pause(ctx context.Context, limiter *rate.Limiter, deadline time.Time) error {
	r := limiter.Reserve()
	delay := r.Delay()
	if remaining := time.Until(deadline); remaining < delay {
		delay = remaining
	}
	if delay <= 0 {
		return ctx.Err()
	}
	return sleep(ctx, delay)
}

func describe(loc browser.Locator, condition string) string {
	if loc.Value == "" {
		return condition
	}
	return fmt.Sprintf("%s to be %s", loc, condition)
}
