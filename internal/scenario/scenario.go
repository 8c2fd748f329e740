// Package scenario holds the named storefront flows shared by the CLI and the
// end-to-end tests.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/saucecheck/internal/config"
	"github.com/xkilldash9x/saucecheck/internal/pages"
)

// ErrExpectation marks a flow that ran but observed the wrong thing.
var ErrExpectation = errors.New("expectation failed")

func expectf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrExpectation, fmt.Sprintf(format, args...))
}

// Env is what a scenario runs against.
type Env struct {
	Pages  *pages.Pages
	Site   config.SiteConfig
	Logger *zap.Logger
}

// Scenario is one named flow.
type Scenario struct {
	Name        string
	Description string
	Run         func(ctx context.Context, env *Env) error
}

// Result is the outcome of one scenario run.
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Passed reports whether the scenario succeeded.
func (r Result) Passed() bool { return r.Err == nil }

// UnknownScenarioError is returned by Run for names not in the registry.
type UnknownScenarioError struct {
	Names []string
}

func (e *UnknownScenarioError) Error() string {
	return fmt.Sprintf("unknown scenario(s): %v", e.Names)
}

// Registry lists every scenario in a stable order.
func Registry() []Scenario {
	return []Scenario{
		{Name: "login", Description: "valid credentials reach the product list", Run: loginValid},
		{Name: "login-invalid", Description: "a wrong password stays on the login page with an error", Run: loginInvalid},
		{Name: "catalog", Description: "six products, each with an image, a name, a price and an add-to-cart button", Run: catalog},
		{Name: "product-details", Description: "the details page matches the list entry", Run: productDetails},
		{Name: "cart-count", Description: "the cart badge follows adds and removes", Run: cartCount},
		{Name: "reset-app-state", Description: "resetting app state empties the cart across a reload", Run: resetAppState},
		{Name: "sort-name", Description: "name sorting orders the list both ways", Run: sortName},
		{Name: "sort-price", Description: "price sorting orders the list both ways", Run: sortPrice},
		{Name: "checkout-nav", Description: "checkout from the cart opens the information step", Run: checkoutNav},
	}
}

// Names returns the registered scenario names in registry order.
func Names() []string {
	reg := Registry()
	names := make([]string, 0, len(reg))
	for _, s := range reg {
		names = append(names, s.Name)
	}
	return names
}

// Lookup finds a scenario by name.
func Lookup(name string) (Scenario, bool) {
	for _, s := range Registry() {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

// Run runs the named scenarios in order, or all of them when names is empty.
// Every scenario runs even if an earlier one failed; app state is reset
// between flows. Unknown names fail the whole call before anything runs.
func Run(ctx context.Context, env *Env, names ...string) ([]Result, error) {
	selected, err := selectScenarios(names)
	if err != nil {
		return nil, err
	}
	logger := env.Logger.Named("scenario")

	results := make([]Result, 0, len(selected))
	for i, s := range selected {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if i > 0 {
			reset(ctx, env, logger)
		}

		start := time.Now()
		err := s.Run(ctx, env)
		r := Result{Name: s.Name, Err: err, Duration: time.Since(start)}
		results = append(results, r)

		if r.Passed() {
			logger.Info("Scenario passed.", zap.String("scenario", s.Name), zap.Duration("duration", r.Duration))
		} else {
			logger.Error("Scenario failed.", zap.String("scenario", s.Name), zap.Duration("duration", r.Duration), zap.Error(err))
		}
	}
	return results, nil
}

// Failed counts the failed results.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed() {
			n++
		}
	}
	return n
}

func selectScenarios(names []string) ([]Scenario, error) {
	if len(names) == 0 {
		return Registry(), nil
	}
	var (
		selected []Scenario
		unknown  []string
	)
	for _, name := range names {
		s, ok := Lookup(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		selected = append(selected, s)
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, &UnknownScenarioError{Names: slices.Compact(unknown)}
	}
	return selected, nil
}

// reset empties the cart and logs out so the next flow starts from the login page.
func reset(ctx context.Context, env *Env, logger *zap.Logger) {
	p := env.Pages.Products
	if !p.LoggedIn(ctx) {
		return
	}
	if err := p.ResetAppState(ctx); err != nil {
		logger.Warn("Failed to reset app state between scenarios.", zap.Error(err))
	}
	if err := p.Logout(ctx); err != nil {
		logger.Warn("Failed to log out between scenarios.", zap.Error(err))
	}
}

// loggedIn opens the login page and signs in with the configured user.
func loggedIn(ctx context.Context, env *Env) error {
	if err := env.Pages.Login.Open(ctx); err != nil {
		return err
	}
	if err := env.Pages.Login.LoginAsConfigured(ctx); err != nil {
		return fmt.Errorf("login as %q: %w", env.Site.Username, err)
	}
	return nil
}
