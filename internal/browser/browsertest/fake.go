// Package browsertest provides an in-memory browser.Driver for unit tests that
// exercise waiting and retry logic without starting Chrome.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/xkilldash9x/saucecheck/internal/browser"
)

// ErrClosed is returned by every FakeDriver method once Close was called.
var ErrClosed = errors.New("fake driver closed")

// FakeElement is one node on the fake page.
type FakeElement struct {
	Text     string
	Attrs    map[string]string
	Hidden   bool
	Disabled bool
}

// FakeDriver is a scripted page. Elements are keyed by Locator.String().
// All methods are safe for concurrent use.
type FakeDriver struct {
	mu       sync.Mutex
	id       string
	closed   bool
	url      string
	elements map[string][]*FakeElement

	// OnClick, when set, decides the outcome of each click. attempt counts
	// clicks on that locator starting at 1.
	OnClick func(loc browser.Locator, attempt int) error
	// OnProbe, when set, overrides the probe result derived from the elements map.
	OnProbe func(loc browser.Locator, n int) (browser.Probe, error)
	// OnCount, when set, overrides Count.
	OnCount func(loc browser.Locator) (int, error)
	// OnReload, when set, runs on every Reload.
	OnReload func() error
	// OnSelect, when set, runs after an option is recorded by SelectByValue.
	OnSelect func(loc browser.Locator, value string) error

	clicks   map[string]int
	probes   map[string]int
	typed    map[string]string
	selected map[string]string
	closes   int
}

// NewFakeDriver returns an empty page with a fresh session identifier.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{
		id:       uuid.NewString(),
		elements: make(map[string][]*FakeElement),
		clicks:   make(map[string]int),
		probes:   make(map[string]int),
		typed:    make(map[string]string),
		selected: make(map[string]string),
	}
}

// Set replaces the elements matching loc.
func (f *FakeDriver) Set(loc browser.Locator, elems ...*FakeElement) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.elements[loc.String()] = elems
}

// SetTexts is shorthand for visible elements with the given texts.
func (f *FakeDriver) SetTexts(loc browser.Locator, texts ...string) {
	elems := make([]*FakeElement, 0, len(texts))
	for _, t := range texts {
		elems = append(elems, &FakeElement{Text: t})
	}
	f.Set(loc, elems...)
}

// Kill simulates the browser process dying: the session loses its identifier.
func (f *FakeDriver) Kill() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.id = ""
}

// Clicks returns how many clicks were attempted on loc.
func (f *FakeDriver) Clicks(loc browser.Locator) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clicks[loc.String()]
}

// Probes returns how many times loc was probed.
func (f *FakeDriver) Probes(loc browser.Locator) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probes[loc.String()]
}

// Typed returns the text sent to loc.
func (f *FakeDriver) Typed(loc browser.Locator) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.typed[loc.String()]
}

// Selected returns the option value chosen on loc.
func (f *FakeDriver) Selected(loc browser.Locator) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selected[loc.String()]
}

// Closes returns how many times Close was called.
func (f *FakeDriver) Closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

func (f *FakeDriver) ID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ""
	}
	return f.id
}

func (f *FakeDriver) Navigate(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	f.url = url
	return nil
}

func (f *FakeDriver) Reload(context.Context) error {
	f.mu.Lock()
	closed := f.closed
	hook := f.OnReload
	f.mu.Unlock()

	if closed {
		return ErrClosed
	}
	if hook != nil {
		return hook()
	}
	return nil
}

func (f *FakeDriver) URL(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", ErrClosed
	}
	return f.url, nil
}

// SetURL moves the fake page to url without a navigation call.
func (f *FakeDriver) SetURL(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.url = url
}

func (f *FakeDriver) Count(_ context.Context, loc browser.Locator) (int, error) {
	f.mu.Lock()
	hook := f.OnCount
	closed := f.closed
	n := len(f.elements[loc.String()])
	f.mu.Unlock()

	if closed {
		return 0, ErrClosed
	}
	if hook != nil {
		return hook(loc)
	}
	return n, nil
}

func (f *FakeDriver) Probe(_ context.Context, loc browser.Locator) (browser.Probe, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return browser.Probe{}, ErrClosed
	}
	key := loc.String()
	f.probes[key]++
	n := f.probes[key]
	hook := f.OnProbe
	elems := f.elements[key]
	f.mu.Unlock()

	if hook != nil {
		return hook(loc, n)
	}
	p := browser.Probe{Count: len(elems)}
	if len(elems) > 0 {
		p.Visible = !elems[0].Hidden
	}
	return p, nil
}

func (f *FakeDriver) Elements(_ context.Context, loc browser.Locator) ([]browser.Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrClosed
	}
	elems := f.elements[loc.String()]
	out := make([]browser.Element, 0, len(elems))
	for _, e := range elems {
		out = append(out, &fakeElement{driver: f, loc: loc, el: e})
	}
	return out, nil
}

func (f *FakeDriver) Click(_ context.Context, loc browser.Locator) error {
	return f.click(loc)
}

func (f *FakeDriver) JSClick(_ context.Context, loc browser.Locator) error {
	return f.click(loc)
}

func (f *FakeDriver) click(loc browser.Locator) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	key := loc.String()
	f.clicks[key]++
	attempt := f.clicks[key]
	hook := f.OnClick
	n := len(f.elements[key])
	f.mu.Unlock()

	if hook != nil {
		if err := hook(loc, attempt); err != nil {
			return &browser.InteractionError{Op: "click", Locator: loc, Err: err}
		}
		return nil
	}
	if n == 0 {
		return &browser.InteractionError{Op: "click", Locator: loc, Err: fmt.Errorf("no element matches")}
	}
	return nil
}

func (f *FakeDriver) SendKeys(_ context.Context, loc browser.Locator, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	f.typed[loc.String()] += text
	return nil
}

func (f *FakeDriver) SelectByValue(_ context.Context, loc browser.Locator, value string) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	f.selected[loc.String()] = value
	hook := f.OnSelect
	f.mu.Unlock()

	if hook != nil {
		return hook(loc, value)
	}
	return nil
}

func (f *FakeDriver) Close(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	f.closed = true
	return nil
}

type fakeElement struct {
	driver *FakeDriver
	loc    browser.Locator
	el     *FakeElement
}

func (e *fakeElement) Text(context.Context) (string, error) {
	e.driver.mu.Lock()
	defer e.driver.mu.Unlock()
	if e.el.Hidden {
		return "", nil
	}
	return strings.TrimSpace(e.el.Text), nil
}

func (e *fakeElement) Attribute(_ context.Context, name string) (string, bool, error) {
	e.driver.mu.Lock()
	defer e.driver.mu.Unlock()
	v, ok := e.el.Attrs[name]
	return v, ok, nil
}

func (e *fakeElement) Visible(context.Context) (bool, error) {
	e.driver.mu.Lock()
	defer e.driver.mu.Unlock()
	return !e.el.Hidden, nil
}

func (e *fakeElement) Enabled(context.Context) (bool, error) {
	e.driver.mu.Lock()
	defer e.driver.mu.Unlock()
	return !e.el.Disabled, nil
}

func (e *fakeElement) Click(ctx context.Context) error {
	return e.driver.click(e.loc)
}
