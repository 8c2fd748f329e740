package pages

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/saucecheck/internal/browser"
)

var (
	detailsName        = browser.ByClass("inventory_details_name")
	detailsPrice       = browser.ByClass("inventory_details_price")
	detailsDescription = browser.ByClass("inventory_details_desc")
	detailsAddToCart   = browser.ByXPath("//div[contains(@class,'inventory_details')]//button[contains(@id,'add-to-cart')]")
	backToProducts     = browser.ByID("back-to-products")
)

// ProductDetailsPage shows a single product.
type ProductDetailsPage struct {
	Base
}

// IsAt reports whether the browser is on a product details page.
func (p *ProductDetailsPage) IsAt(ctx context.Context) bool {
	return p.atPage(ctx, "inventory-item.html")
}

func (p *ProductDetailsPage) Name(ctx context.Context) (string, error) {
	return p.h.GetText(ctx, detailsName)
}

func (p *ProductDetailsPage) Price(ctx context.Context) (float64, error) {
	text, err := p.h.GetText(ctx, detailsPrice)
	if err != nil {
		return 0, err
	}
	return ParsePrice(text)
}

func (p *ProductDetailsPage) Description(ctx context.Context) (string, error) {
	return p.h.GetText(ctx, detailsDescription)
}

// AddToCart adds the shown product.
func (p *ProductDetailsPage) AddToCart(ctx context.Context) error {
	if err := p.h.Click(ctx, detailsAddToCart); err != nil {
		return fmt.Errorf("failed to add product from details: %w", err)
	}
	return nil
}

// BackToProducts returns to the inventory list.
func (p *ProductDetailsPage) BackToProducts(ctx context.Context) error {
	if err := p.h.Click(ctx, backToProducts); err != nil {
		return err
	}
	return p.waitForPage(ctx, "inventory.html")
}
