package scenario

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/xkilldash9x/saucecheck/internal/browser"
	"github.com/xkilldash9x/saucecheck/internal/browser/browsertest"
	"github.com/xkilldash9x/saucecheck/internal/pages"
)

var (
	cartLink       = browser.ByClass("shopping_cart_link")
	cartBadge      = browser.ByClass("shopping_cart_badge")
	productImages  = browser.ByClass("inventory_item_img")
	productNames   = browser.ByClass("inventory_item_name")
	productPrices  = browser.ByClass("inventory_item_price")
	productDescs   = browser.ByClass("inventory_item_desc")
	sortDropdown   = browser.ByClass("product_sort_container")
	addButtons     = browser.ByXPath("//button[contains(@id,'add-to-cart')]")
	removeButtons  = browser.ByXPath("//button[contains(@id,'remove')]")
	cartItems      = browser.ByClass("cart_item")
	cartItemNames  = browser.ByCSS(".cart_item .inventory_item_name")
	cartItemPrices = browser.ByCSS(".cart_item .inventory_item_price")
	checkoutButton = browser.ByID("checkout")
)

type product struct {
	name  string
	price string
}

// inventory is the shop's default listing, already in name order.
var inventory = []product{
	{"Sauce Labs Backpack", "$29.99"},
	{"Sauce Labs Bike Light", "$9.99"},
	{"Sauce Labs Bolt T-Shirt", "$15.99"},
	{"Sauce Labs Fleece Jacket", "$49.99"},
	{"Sauce Labs Onesie", "$7.99"},
	{"Test.allTheThings() T-Shirt (Red)", "$15.99"},
}

// storefront scripts a FakeDriver to behave like the shop: login, side menu,
// cart badge, product buttons, sorting and reload. Like the live site, a reset
// empties the cart but leaves "Remove" buttons on screen until a reload.
type storefront struct {
	fake *browsertest.FakeDriver

	products    []product
	cart        []string
	removeShown map[string]bool
	loggedIn    bool
	loginFailed bool
	menuOpen    bool
	page        string

	// ignoreSort leaves the list in place when an option is picked.
	ignoreSort bool
	// keepCartOnReset makes "Reset App State" a no-op.
	keepCartOnReset bool
	// staleAfterReload keeps button states across a reload.
	staleAfterReload bool
	// decorate runs after every render to corrupt the page.
	decorate func(f *browsertest.FakeDriver)
}

func newStorefront(fake *browsertest.FakeDriver) *storefront {
	s := &storefront{
		fake:        fake,
		products:    slices.Clone(inventory),
		removeShown: make(map[string]bool),
	}
	fake.OnClick = func(loc browser.Locator, _ int) error {
		s.click(loc)
		s.render()
		return nil
	}
	fake.OnReload = func() error {
		if !s.staleAfterReload {
			s.syncButtons()
		}
		s.render()
		return nil
	}
	fake.OnSelect = func(_ browser.Locator, value string) error {
		if !s.ignoreSort {
			s.sort(pages.SortOption(value))
		}
		s.render()
		return nil
	}
	s.render()
	return s
}

func (s *storefront) click(loc browser.Locator) {
	switch {
	case loc == loginButton:
		if strings.HasSuffix(s.fake.Typed(passwordField), "secret_sauce") {
			s.loggedIn, s.loginFailed, s.page = true, false, "inventory.html"
			s.syncButtons()
			return
		}
		s.loginFailed = true
	case loc == menuButton:
		s.menuOpen = true
	case loc == closeMenu:
		s.menuOpen = false
	case loc == resetLink:
		if !s.keepCartOnReset {
			s.cart = nil
		}
	case loc == logoutLink:
		s.loggedIn, s.menuOpen, s.page = false, false, ""
		s.cart = nil
		s.syncButtons()
	case loc == cartLink:
		s.page = "cart.html"
	case loc == checkoutButton:
		s.page = "checkout-step-one.html"
	case loc == addButtons:
		for _, p := range s.products {
			if !s.removeShown[p.name] {
				s.add(p.name)
				return
			}
		}
	case loc.Strategy == browser.StrategyID && strings.HasPrefix(loc.Value, "add-to-cart-"):
		if name, ok := s.bySlug(strings.TrimPrefix(loc.Value, "add-to-cart-")); ok {
			s.add(name)
		}
	case loc.Strategy == browser.StrategyID && strings.HasPrefix(loc.Value, "remove-"):
		if name, ok := s.bySlug(strings.TrimPrefix(loc.Value, "remove-")); ok {
			s.cart = slices.DeleteFunc(s.cart, func(n string) bool { return n == name })
			s.removeShown[name] = false
		}
	}
}

func (s *storefront) add(name string) {
	if !slices.Contains(s.cart, name) {
		s.cart = append(s.cart, name)
	}
	s.removeShown[name] = true
}

func (s *storefront) bySlug(slug string) (string, bool) {
	for _, p := range s.products {
		if pages.Slug(p.name) == slug {
			return p.name, true
		}
	}
	return "", false
}

func (s *storefront) priceOf(name string) string {
	for _, p := range s.products {
		if p.name == name {
			return p.price
		}
	}
	return ""
}

func (s *storefront) syncButtons() {
	clear(s.removeShown)
	for _, name := range s.cart {
		s.removeShown[name] = true
	}
}

func (s *storefront) sort(opt pages.SortOption) {
	byName := func(a, b product) int { return strings.Compare(a.name, b.name) }
	byPrice := func(a, b product) int {
		pa, _ := pages.ParsePrice(a.price)
		pb, _ := pages.ParsePrice(b.price)
		return cmp.Compare(pa, pb)
	}
	switch opt {
	case pages.SortNameAZ:
		slices.SortStableFunc(s.products, byName)
	case pages.SortNameZA:
		slices.SortStableFunc(s.products, func(a, b product) int { return byName(b, a) })
	case pages.SortPriceLowHigh:
		slices.SortStableFunc(s.products, byPrice)
	case pages.SortPriceHighLow:
		slices.SortStableFunc(s.products, func(a, b product) int { return byPrice(b, a) })
	}
}

// render rebuilds the fake page from the shop state.
func (s *storefront) render() {
	f := s.fake
	for _, loc := range []browser.Locator{
		usernameField, passwordField, loginButton, loginError, title, menuButton,
		logoutLink, resetLink, closeMenu, cartLink, cartBadge, productImages,
		productNames, productPrices, productDescs, sortDropdown, addButtons,
		removeButtons, cartItems, cartItemNames, cartItemPrices, checkoutButton,
	} {
		f.Set(loc)
	}
	for _, p := range s.products {
		f.Set(browser.ByID("add-to-cart-" + pages.Slug(p.name)))
		f.Set(browser.ByID("remove-" + pages.Slug(p.name)))
	}

	if !s.loggedIn {
		f.SetURL(testBase)
		f.SetTexts(usernameField, "")
		f.SetTexts(passwordField, "")
		f.SetTexts(loginButton, "Login")
		if s.loginFailed {
			f.SetTexts(loginError, "Epic sadface: Username and password do not match any user in this service")
		}
		s.decorated()
		return
	}

	f.SetURL(testBase + s.page)
	f.SetTexts(menuButton, "Open Menu")
	f.SetTexts(cartLink, "")
	if len(s.cart) > 0 {
		f.SetTexts(cartBadge, strconv.Itoa(len(s.cart)))
	}
	if s.menuOpen {
		f.SetTexts(logoutLink, "Logout")
		f.SetTexts(resetLink, "Reset App State")
		f.SetTexts(closeMenu, "Close Menu")
	}

	switch s.page {
	case "inventory.html":
		f.SetTexts(title, "Products")
		f.SetTexts(sortDropdown, "Name (A to Z)")
		var names, prices, descs, adds, removes []string
		imgs := make([]*browsertest.FakeElement, 0, len(s.products))
		for _, p := range s.products {
			slug := pages.Slug(p.name)
			names = append(names, p.name)
			prices = append(prices, p.price)
			descs = append(descs, "About the "+p.name+".")
			imgs = append(imgs, &browsertest.FakeElement{Attrs: map[string]string{"src": "/img/" + slug + ".jpg"}})
			if s.removeShown[p.name] {
				removes = append(removes, "Remove")
				f.SetTexts(browser.ByID("remove-"+slug), "Remove")
			} else {
				adds = append(adds, "Add to cart")
				f.SetTexts(browser.ByID("add-to-cart-"+slug), "Add to cart")
			}
		}
		f.SetTexts(productNames, names...)
		f.SetTexts(productPrices, prices...)
		f.SetTexts(productDescs, descs...)
		f.Set(productImages, imgs...)
		f.SetTexts(addButtons, adds...)
		f.SetTexts(removeButtons, removes...)
	case "cart.html":
		f.SetTexts(title, "Your Cart")
		f.SetTexts(checkoutButton, "Checkout")
		var rows, names, prices []string
		for _, name := range s.cart {
			rows = append(rows, name)
			names = append(names, name)
			prices = append(prices, s.priceOf(name))
			f.SetTexts(browser.ByID("remove-"+pages.Slug(name)), "Remove")
		}
		f.SetTexts(cartItems, rows...)
		f.SetTexts(cartItemNames, names...)
		f.SetTexts(cartItemPrices, prices...)
		f.SetTexts(removeButtons, names...)
	case "checkout-step-one.html":
		f.SetTexts(title, "Checkout: Your Information")
	}
	s.decorated()
}

func (s *storefront) decorated() {
	if s.decorate != nil {
		s.decorate(s.fake)
	}
}
