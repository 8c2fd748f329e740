package pages

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/saucecheck/internal/browser"
)

// SortOption is a value of the product sort dropdown.
type SortOption string

const (
	SortNameAZ       SortOption = "az"
	SortNameZA       SortOption = "za"
	SortPriceLowHigh SortOption = "lohi"
	SortPriceHighLow SortOption = "hilo"
)

var (
	productsTitle       = browser.ByClass("title")
	productImages       = browser.ByClass("inventory_item_img")
	productNames        = browser.ByClass("inventory_item_name")
	productPrices       = browser.ByClass("inventory_item_price")
	productDescriptions = browser.ByClass("inventory_item_desc")
	sortDropdown        = browser.ByClass("product_sort_container")
	addToCartButtons    = browser.ByXPath("//button[contains(@id,'add-to-cart')]")
	removeButtons       = browser.ByXPath("//button[contains(@id,'remove')]")
)

// ProductsPage is the inventory list shown after login.
type ProductsPage struct {
	Base
}

// IsAt reports whether the "Products" title is shown. Failures read as false.
func (p *ProductsPage) IsAt(ctx context.Context) bool {
	title, err := p.h.GetText(ctx, productsTitle)
	if err != nil {
		p.logger.Debug("Products title not found.", zap.Error(err))
		return false
	}
	return title == "Products"
}

// ProductNames returns the product names in display order.
func (p *ProductsPage) ProductNames(ctx context.Context) ([]string, error) {
	return p.h.GetTexts(ctx, productNames)
}

// PriceTexts returns the prices as displayed, e.g. "$29.99".
func (p *ProductsPage) PriceTexts(ctx context.Context) ([]string, error) {
	return p.h.GetTexts(ctx, productPrices)
}

// ProductPrices returns the parsed prices in display order.
func (p *ProductsPage) ProductPrices(ctx context.Context) ([]float64, error) {
	texts, err := p.PriceTexts(ctx)
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

// ProductDescriptions returns the description of every product.
func (p *ProductsPage) ProductDescriptions(ctx context.Context) ([]string, error) {
	return p.h.GetTexts(ctx, productDescriptions)
}

// ProductImages returns the product <img> elements. The image class is also
// carried by each image's wrapper, so only elements with a src are kept.
func (p *ProductsPage) ProductImages(ctx context.Context) ([]browser.Element, error) {
	elems, err := p.h.GetElements(ctx, productImages)
	if err != nil {
		return nil, err
	}
	imgs := elems[:0:0]
	for _, el := range elems {
		src, ok, err := el.Attribute(ctx, "src")
		if err != nil {
			return nil, fmt.Errorf("failed to read image src: %w", err)
		}
		if ok && strings.TrimSpace(src) != "" {
			imgs = append(imgs, el)
		}
	}
	return imgs, nil
}

// AddToCartButtons returns every "Add to cart" button on the page.
func (p *ProductsPage) AddToCartButtons(ctx context.Context) ([]browser.Element, error) {
	return p.h.GetElements(ctx, addToCartButtons)
}

// HasRemoveButtons reports whether any product shows "Remove", without waiting.
func (p *ProductsPage) HasRemoveButtons(ctx context.Context) bool {
	return p.h.IsPresent(ctx, removeButtons)
}

// SortBy picks opt in the sort dropdown and waits for the list to render.
func (p *ProductsPage) SortBy(ctx context.Context, opt SortOption) error {
	if err := p.h.SelectByValue(ctx, sortDropdown, string(opt)); err != nil {
		return fmt.Errorf("failed to sort by %q: %w", opt, err)
	}
	return p.h.WaitForVisible(ctx, productNames)
}

// IsSortedByNameAZ reports whether the names are in non-decreasing order.
func (p *ProductsPage) IsSortedByNameAZ(ctx context.Context) (bool, error) {
	return p.IsSortedBy(ctx, SortNameAZ)
}

// IsSortedByPriceLowHigh reports whether the prices are in non-decreasing order.
func (p *ProductsPage) IsSortedByPriceLowHigh(ctx context.Context) (bool, error) {
	return p.IsSortedBy(ctx, SortPriceLowHigh)
}

// IsSortedBy reports whether the displayed list is ordered as opt requires.
func (p *ProductsPage) IsSortedBy(ctx context.Context, opt SortOption) (bool, error) {
	switch opt {
	case SortNameAZ, SortNameZA:
		names, err := p.ProductNames(ctx)
		if err != nil {
			return false, err
		}
		return isOrdered(names, opt == SortNameZA), nil
	case SortPriceLowHigh, SortPriceHighLow:
		prices, err := p.ProductPrices(ctx)
		if err != nil {
			return false, err
		}
		return isOrdered(prices, opt == SortPriceHighLow), nil
	default:
		return false, fmt.Errorf("unknown sort option %q", opt)
	}
}

func isOrdered[T cmp.Ordered](s []T, descending bool) bool {
	if descending {
		return slices.IsSortedFunc(s, func(a, b T) int { return cmp.Compare(b, a) })
	}
	return slices.IsSorted(s)
}

// AddFirstProductToCart clicks the first "Add to cart" button from page script
// and waits for a "Remove" button to appear.
func (p *ProductsPage) AddFirstProductToCart(ctx context.Context) error {
	if err := p.h.JSClick(ctx, addToCartButtons); err != nil {
		return fmt.Errorf("failed to add first product: %w", err)
	}
	return p.h.WaitForPresent(ctx, removeButtons, p.pageTimeout)
}

// AddProductByName adds the named product and waits for its button to flip to "Remove".
func (p *ProductsPage) AddProductByName(ctx context.Context, name string) error {
	slug := Slug(name)
	if err := p.h.ClickWithRetry(ctx, browser.ByID("add-to-cart-"+slug), p.h.Policy().MaxAttempts); err != nil {
		return fmt.Errorf("failed to add %q: %w", name, err)
	}
	return p.h.WaitForPresent(ctx, browser.ByID("remove-"+slug), p.pageTimeout)
}

// RemoveProductByName removes the named product from the cart via the list page.
func (p *ProductsPage) RemoveProductByName(ctx context.Context, name string) error {
	slug := Slug(name)
	if err := p.h.ClickWithRetry(ctx, browser.ByID("remove-"+slug), p.h.Policy().MaxAttempts); err != nil {
		return fmt.Errorf("failed to remove %q: %w", name, err)
	}
	return p.h.WaitForPresent(ctx, browser.ByID("add-to-cart-"+slug), p.pageTimeout)
}

// FirstProductName returns the name of the first listed product.
func (p *ProductsPage) FirstProductName(ctx context.Context) (string, error) {
	return p.h.GetText(ctx, productNames)
}

// FirstProductPrice returns the parsed price of the first listed product.
func (p *ProductsPage) FirstProductPrice(ctx context.Context) (float64, error) {
	text, err := p.h.GetText(ctx, productPrices)
	if err != nil {
		return 0, err
	}
	return ParsePrice(text)
}

// OpenProductDetails opens the details page of the named product.
func (p *ProductsPage) OpenProductDetails(ctx context.Context, name string) error {
	link := browser.ByXPath(fmt.Sprintf(
		"//div[contains(@class,'inventory_item_name') and normalize-space(.)=%s]", xpathLiteral(name)))
	if err := p.h.Click(ctx, link); err != nil {
		if errors.Is(err, browser.ErrTimeout) {
			return fmt.Errorf("product %q not listed: %w", name, err)
		}
		return err
	}
	return p.waitForPage(ctx, "inventory-item.html")
}
