package pages

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/saucecheck/internal/browser"
	"github.com/xkilldash9x/saucecheck/internal/config"
	"github.com/xkilldash9x/saucecheck/internal/interact"
)

// Header and side menu, present on every page behind the login.
var (
	menuButton      = browser.ByID("react-burger-menu-btn")
	menuCloseButton = browser.ByID("react-burger-cross-btn")
	logoutLink      = browser.ByID("logout_sidebar_link")
	resetLink       = browser.ByID("reset_sidebar_link")
	allItemsLink    = browser.ByID("inventory_sidebar_link")
	cartLink        = browser.ByClass("shopping_cart_link")
	cartBadge       = browser.ByClass("shopping_cart_badge")
)

// Base holds what every page shares: the helper, the site and the header actions.
type Base struct {
	h           *interact.Helper
	site        config.SiteConfig
	pageTimeout time.Duration
	logger      *zap.Logger
}

// Helper exposes the underlying interaction helper.
func (b *Base) Helper() *interact.Helper { return b.h }

// waitForPage waits until the URL contains page.
func (b *Base) waitForPage(ctx context.Context, page string) error {
	return b.h.WaitForURL(ctx, page, b.pageTimeout)
}

// atPage reports whether the current URL contains page, without waiting.
func (b *Base) atPage(ctx context.Context, page string) bool {
	u, err := b.h.CurrentURL(ctx)
	if err != nil {
		b.logger.Debug("Could not read the current URL.", zap.Error(err))
		return false
	}
	return strings.Contains(u, page)
}

// LoggedIn reports whether the header menu is shown, without waiting.
func (b *Base) LoggedIn(ctx context.Context) bool {
	return b.h.IsPresent(ctx, menuButton)
}

// NavigateToCart opens the cart from the header icon.
func (b *Base) NavigateToCart(ctx context.Context) error {
	if err := b.h.Click(ctx, cartLink); err != nil {
		return fmt.Errorf("failed to open cart: %w", err)
	}
	return b.waitForPage(ctx, "cart.html")
}

// OpenMenu opens the side menu and waits for its links.
func (b *Base) OpenMenu(ctx context.Context) error {
	if err := b.h.Click(ctx, menuButton); err != nil {
		return fmt.Errorf("failed to open menu: %w", err)
	}
	return b.h.WaitForVisible(ctx, logoutLink)
}

// Logout signs out through the side menu and waits for the login form.
func (b *Base) Logout(ctx context.Context) error {
	if err := b.OpenMenu(ctx); err != nil {
		return err
	}
	if err := b.h.Click(ctx, logoutLink); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	return b.h.WaitForPresent(ctx, loginButton, b.pageTimeout)
}

// ResetAppState empties the cart through the side menu and closes the menu again.
func (b *Base) ResetAppState(ctx context.Context) error {
	if err := b.OpenMenu(ctx); err != nil {
		return err
	}
	if err := b.h.Click(ctx, resetLink); err != nil {
		return fmt.Errorf("failed to reset app state: %w", err)
	}
	return b.h.Click(ctx, menuCloseButton)
}

// Reload reloads the current page.
func (b *Base) Reload(ctx context.Context) error {
	return b.h.Reload(ctx)
}

// AllItems returns to the product list through the side menu.
func (b *Base) AllItems(ctx context.Context) error {
	if err := b.OpenMenu(ctx); err != nil {
		return err
	}
	if err := b.h.Click(ctx, allItemsLink); err != nil {
		return fmt.Errorf("failed to open all items: %w", err)
	}
	return b.waitForPage(ctx, "inventory.html")
}

// CartItemCount reads the header badge. The storefront removes the badge when
// the cart is empty, so an absent badge counts as 0.
func (b *Base) CartItemCount(ctx context.Context) (int, error) {
	if !b.h.IsPresent(ctx, cartBadge) {
		return 0, nil
	}
	text, err := b.h.GetText(ctx, cartBadge)
	if err != nil {
		if errors.Is(err, browser.ErrTimeout) {
			// Removed between the presence check and the read.
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read cart badge: %w", err)
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("cart badge shows %q: %w", text, err)
	}
	return n, nil
}

// WaitForCartCount waits until the badge shows want.
func (b *Base) WaitForCartCount(ctx context.Context, want int) error {
	desc := fmt.Sprintf("cart badge to show %d", want)
	return b.h.WaitUntil(ctx, desc, b.pageTimeout, func(ctx context.Context) (bool, error) {
		n, err := b.CartItemCount(ctx)
		return n == want, err
	})
}
