// internal/browser/driver.go
package browser

import "context"

// Driver is a single live browser tab under automated control.
// Implementations live in the session (chromedp) and rodsession (go-rod) packages.
//
// Query methods never wait: they report what the page looks like right now.
// Waiting is the job of the interact package.
type Driver interface {
	// ID returns the active session identifier, or "" once the browser
	// process died or the session was closed.
	ID() string

	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	URL(ctx context.Context) (string, error)

	// Count returns how many elements currently match loc.
	Count(ctx context.Context, loc Locator) (int, error)
	// Probe reports the match count and whether the first match is visible.
	Probe(ctx context.Context, loc Locator) (Probe, error)
	// Elements returns every current match in document order.
	Elements(ctx context.Context, loc Locator) ([]Element, error)

	// Click issues a native click on the first match.
	Click(ctx context.Context, loc Locator) error
	// JSClick dispatches element.click() on the first match from page script.
	JSClick(ctx context.Context, loc Locator) error
	SendKeys(ctx context.Context, loc Locator, text string) error
	SelectByValue(ctx context.Context, loc Locator, value string) error

	Close(ctx context.Context) error
}

// Probe is the result of a single non-blocking look at a locator.
type Probe struct {
	Count   int
	Visible bool
}

// Element is a handle to a located DOM node. It goes stale when the page re-renders the node.
type Element interface {
	Text(ctx context.Context) (string, error)
	// Attribute returns the attribute value and whether it was set.
	Attribute(ctx context.Context, name string) (string, bool, error)
	Visible(ctx context.Context) (bool, error)
	Enabled(ctx context.Context) (bool, error)
	Click(ctx context.Context) error
}

// Launcher starts a new browser and returns its first tab.
type Launcher interface {
	Launch(ctx context.Context) (Driver, error)
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(ctx context.Context) (Driver, error)

func (f LauncherFunc) Launch(ctx context.Context) (Driver, error) { return f(ctx) }
