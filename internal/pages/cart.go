package pages

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/saucecheck/internal/browser"
)

// cartRemoveAttempts matches how often the cart retries a remove click.
const cartRemoveAttempts = 3

var (
	cartItems        = browser.ByClass("cart_item")
	cartItemNames    = browser.ByCSS(".cart_item .inventory_item_name")
	cartItemPrices   = browser.ByCSS(".cart_item .inventory_item_price")
	continueShopping = browser.ByID("continue-shopping")
	checkoutButton   = browser.ByID("checkout")
)

// CartPage lists what is in the cart.
type CartPage struct {
	Base
}

// Open loads the cart directly by URL.
func (p *CartPage) Open(ctx context.Context) error {
	if err := p.h.Navigate(ctx, p.site.URL("cart.html")); err != nil {
		return err
	}
	return p.waitForPage(ctx, "cart.html")
}

// IsAt reports whether the browser is on the cart page.
func (p *CartPage) IsAt(ctx context.Context) bool {
	return p.atPage(ctx, "cart.html")
}

// Items returns the cart rows. An empty cart waits out the helper timeout and
// yields an empty slice rather than an error.
func (p *CartPage) Items(ctx context.Context) ([]browser.Element, error) {
	elems, err := p.h.GetElements(ctx, cartItems)
	if errors.Is(err, browser.ErrTimeout) {
		return nil, nil
	}
	return elems, err
}

// ItemNames returns the names of the cart rows; empty for an empty cart.
func (p *CartPage) ItemNames(ctx context.Context) ([]string, error) {
	names, err := p.h.GetTexts(ctx, cartItemNames)
	if errors.Is(err, browser.ErrTimeout) {
		return nil, nil
	}
	return names, err
}

// ItemPrices returns the parsed prices of the cart rows; empty for an empty cart.
func (p *CartPage) ItemPrices(ctx context.Context) ([]float64, error) {
	texts, err := p.h.GetTexts(ctx, cartItemPrices)
	if errors.Is(err, browser.ErrTimeout) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	prices := make([]float64, 0, len(texts))
	for _, t := range texts {
		v, err := ParsePrice(t)
		if err != nil {
			return nil, err
		}
		prices = append(prices, v)
	}
	return prices, nil
}

// RemoveItem removes the named product. It reports false without clicking when
// the product has no remove button in the cart.
func (p *CartPage) RemoveItem(ctx context.Context, name string) (bool, error) {
	btn := browser.ByID("remove-" + Slug(name))
	if !p.h.IsPresent(ctx, btn) {
		p.logger.Info("Item not in cart, nothing to remove.", zap.String("item", name))
		return false, nil
	}
	if err := p.h.ClickWithRetry(ctx, btn, cartRemoveAttempts); err != nil {
		return false, fmt.Errorf("failed to remove %q from cart: %w", name, err)
	}
	return true, nil
}

// RemoveAllItems removes every row and waits for the cart to empty.
func (p *CartPage) RemoveAllItems(ctx context.Context) error {
	names, err := p.ItemNames(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, err := p.RemoveItem(ctx, name); err != nil {
			return err
		}
	}
	return p.h.WaitUntil(ctx, "cart to be empty", p.pageTimeout, func(ctx context.Context) (bool, error) {
		return !p.h.IsPresent(ctx, cartItems), nil
	})
}

// ContinueShopping returns to the inventory list.
func (p *CartPage) ContinueShopping(ctx context.Context) error {
	if err := p.h.Click(ctx, continueShopping); err != nil {
		return err
	}
	return p.waitForPage(ctx, "inventory.html")
}

// Checkout starts checkout and waits for the information step.
func (p *CartPage) Checkout(ctx context.Context) error {
	if err := p.h.Click(ctx, checkoutButton); err != nil {
		return fmt.Errorf("failed to start checkout: %w", err)
	}
	return p.waitForPage(ctx, "checkout-step-one.html")
}
