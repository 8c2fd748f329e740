// Package pages models the storefront as page objects. Each page holds its
// locators and composes interact.Helper calls; none of them talk to a browser directly.
package pages

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/saucecheck/internal/config"
	"github.com/xkilldash9x/saucecheck/internal/interact"
)

// DefaultPageTimeout bounds page transitions such as the post-login redirect.
const DefaultPageTimeout = 10 * time.Second

// Pages bundles every page object built on one helper.
type Pages struct {
	Login    *LoginPage
	Products *ProductsPage
	Details  *ProductDetailsPage
	Cart     *CartPage
	Checkout *CheckoutPage
}

// New builds the page objects for site. pageTimeout <= 0 uses DefaultPageTimeout.
func New(h *interact.Helper, site config.SiteConfig, pageTimeout time.Duration, logger *zap.Logger) *Pages {
	if pageTimeout <= 0 {
		pageTimeout = DefaultPageTimeout
	}
	base := Base{h: h, site: site, pageTimeout: pageTimeout, logger: logger.Named("pages")}
	return &Pages{
		Login:    &LoginPage{Base: base},
		Products: &ProductsPage{Base: base},
		Details:  &ProductDetailsPage{Base: base},
		Cart:     &CartPage{Base: base},
		Checkout: &CheckoutPage{Base: base},
	}
}

// Slug turns a product name into the suffix the storefront uses in button ids:
// "Sauce Labs Bike Light" -> "sauce-labs-bike-light".
func Slug(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

// ParsePrice parses a displayed price such as "$29.99".
func ParsePrice(text string) (float64, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimSpace(strings.TrimPrefix(s, "$"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", text, err)
	}
	return v, nil
}

// xpathLiteral quotes s for use inside an XPath expression.
func xpathLiteral(s string) string {
	switch {
	case !strings.Contains(s, `'`):
		return "'" + s + "'"
	case !strings.Contains(s, `"`):
		return `"` + s + `"`
	default:
		parts := strings.Split(s, `'`)
		return "concat('" + strings.Join(parts, `', "'", '`) + "')"
	}
}
