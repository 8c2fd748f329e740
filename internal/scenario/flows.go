package scenario

import (
	"context"
	"errors"
	"regexp"
	"slices"

	"github.com/xkilldash9x/saucecheck/internal/browser"
	"github.com/xkilldash9x/saucecheck/internal/pages"
)

// catalogSize is how many products the storefront lists.
const catalogSize = 6

var priceFormat = regexp.MustCompile(`^\$\d+\.\d{2}$`)

func loginValid(ctx context.Context, env *Env) error {
	if err := loggedIn(ctx, env); err != nil {
		return err
	}
	if !env.Pages.Products.IsAt(ctx) {
		return expectf("products page not shown after login")
	}
	return nil
}

func loginInvalid(ctx context.Context, env *Env) error {
	login := env.Pages.Login
	if err := login.Open(ctx); err != nil {
		return err
	}
	err := login.Login(ctx, env.Site.Username, "invalid_password")
	switch {
	case err == nil:
		return expectf("invalid password reached the inventory")
	case !errors.Is(err, browser.ErrTimeout):
		return err
	}
	msg, err := login.ErrorMessage(ctx)
	if err != nil {
		return expectf("no login error shown: %v", err)
	}
	if msg == "" {
		return expectf("login error banner is empty")
	}
	return nil
}

func catalog(ctx context.Context, env *Env) error {
	if err := loggedIn(ctx, env); err != nil {
		return err
	}
	p := env.Pages.Products

	imgs, err := p.ProductImages(ctx)
	if err != nil {
		return err
	}
	if len(imgs) != catalogSize {
		return expectf("%d product images, want %d", len(imgs), catalogSize)
	}

	names, err := p.ProductNames(ctx)
	if err != nil {
		return err
	}
	if len(names) != catalogSize {
		return expectf("%d product names, want %d", len(names), catalogSize)
	}
	for i, name := range names {
		if name == "" {
			return expectf("product %d has no name", i)
		}
	}

	prices, err := p.PriceTexts(ctx)
	if err != nil {
		return err
	}
	if len(prices) != catalogSize {
		return expectf("%d product prices, want %d", len(prices), catalogSize)
	}
	for _, price := range prices {
		if !priceFormat.MatchString(price) {
			return expectf("price %q is not formatted like $0.00", price)
		}
	}

	descs, err := p.ProductDescriptions(ctx)
	if err != nil {
		return err
	}
	for i, d := range descs {
		if d == "" {
			return expectf("product %d has no description", i)
		}
	}

	buttons, err := p.AddToCartButtons(ctx)
	if err != nil {
		return err
	}
	if len(buttons) != catalogSize {
		return expectf("%d add-to-cart buttons, want %d", len(buttons), catalogSize)
	}
	for i, btn := range buttons {
		visible, err := btn.Visible(ctx)
		if err != nil {
			return err
		}
		enabled, err := btn.Enabled(ctx)
		if err != nil {
			return err
		}
		if !visible || !enabled {
			return expectf("add-to-cart button %d: visible=%t enabled=%t", i, visible, enabled)
		}
	}
	return nil
}

func productDetails(ctx context.Context, env *Env) error {
	if err := loggedIn(ctx, env); err != nil {
		return err
	}
	p := env.Pages.Products
	name, err := p.FirstProductName(ctx)
	if err != nil {
		return err
	}
	price, err := p.FirstProductPrice(ctx)
	if err != nil {
		return err
	}
	if err := p.OpenProductDetails(ctx, name); err != nil {
		return err
	}

	d := env.Pages.Details
	gotName, err := d.Name(ctx)
	if err != nil {
		return err
	}
	gotPrice, err := d.Price(ctx)
	if err != nil {
		return err
	}
	if gotName != name || gotPrice != price {
		return expectf("details show %q at %.2f, list shows %q at %.2f", gotName, gotPrice, name, price)
	}
	return d.BackToProducts(ctx)
}

func cartCount(ctx context.Context, env *Env) error {
	if err := loggedIn(ctx, env); err != nil {
		return err
	}
	p := env.Pages.Products

	n, err := p.CartItemCount(ctx)
	if err != nil {
		return err
	}
	if n != 0 {
		return expectf("cart starts with %d item(s)", n)
	}

	name, err := p.FirstProductName(ctx)
	if err != nil {
		return err
	}
	if err := p.AddFirstProductToCart(ctx); err != nil {
		return err
	}
	if err := p.WaitForCartCount(ctx, 1); err != nil {
		return expectf("badge after one add: %v", err)
	}

	if err := p.NavigateToCart(ctx); err != nil {
		return err
	}
	cart := env.Pages.Cart
	names, err := cart.ItemNames(ctx)
	if err != nil {
		return err
	}
	if !slices.Equal(names, []string{name}) {
		return expectf("cart holds %q, want [%q]", names, name)
	}
	if _, err := cart.RemoveItem(ctx, name); err != nil {
		return err
	}
	if err := cart.WaitForCartCount(ctx, 0); err != nil {
		return expectf("badge after remove: %v", err)
	}
	return nil
}

// resetAppState fills the cart, resets through the side menu and checks that
// the empty cart survives a reload.
func resetAppState(ctx context.Context, env *Env) error {
	if err := loggedIn(ctx, env); err != nil {
		return err
	}
	p := env.Pages.Products

	names, err := p.ProductNames(ctx)
	if err != nil {
		return err
	}
	if len(names) < 2 {
		return expectf("%d product(s) listed, need 2", len(names))
	}
	for _, name := range names[:2] {
		if err := p.AddProductByName(ctx, name); err != nil {
			return err
		}
	}
	if err := p.WaitForCartCount(ctx, 2); err != nil {
		return expectf("badge after two adds: %v", err)
	}

	if err := p.ResetAppState(ctx); err != nil {
		return err
	}
	if err := p.Reload(ctx); err != nil {
		return err
	}
	if !p.IsAt(ctx) {
		return expectf("product list not shown after reload")
	}

	n, err := p.CartItemCount(ctx)
	if err != nil {
		return err
	}
	if n != 0 {
		return expectf("cart badge shows %d after reset and reload", n)
	}
	if p.HasRemoveButtons(ctx) {
		return expectf("remove buttons still shown after reset and reload")
	}
	return nil
}

func sortName(ctx context.Context, env *Env) error {
	return sortBoth(ctx, env, pages.SortNameAZ, pages.SortNameZA)
}

func sortPrice(ctx context.Context, env *Env) error {
	return sortBoth(ctx, env, pages.SortPriceLowHigh, pages.SortPriceHighLow)
}

func sortBoth(ctx context.Context, env *Env, opts ...pages.SortOption) error {
	if err := loggedIn(ctx, env); err != nil {
		return err
	}
	p := env.Pages.Products
	for _, opt := range opts {
		if err := p.SortBy(ctx, opt); err != nil {
			return err
		}
		ok, err := p.IsSortedBy(ctx, opt)
		if err != nil {
			return err
		}
		if !ok {
			return expectf("list is not sorted by %q", opt)
		}
	}
	return nil
}

func checkoutNav(ctx context.Context, env *Env) error {
	if err := loggedIn(ctx, env); err != nil {
		return err
	}
	p := env.Pages.Products
	if err := p.AddFirstProductToCart(ctx); err != nil {
		return err
	}
	if err := p.NavigateToCart(ctx); err != nil {
		return err
	}
	if err := env.Pages.Cart.Checkout(ctx); err != nil {
		return err
	}
	if !env.Pages.Checkout.IsAt(ctx) {
		return expectf("checkout information step not shown")
	}
	return nil
}
