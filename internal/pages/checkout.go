package pages

import (
	"context"

	"github.com/xkilldash9x/saucecheck/internal/browser"
)

var (
	firstNameField  = browser.ByID("first-name")
	lastNameField   = browser.ByID("last-name")
	postalCodeField = browser.ByID("postal-code")
	continueButton  = browser.ByID("continue")
	cancelButton    = browser.ByID("cancel")
	checkoutError   = browser.ByCSS(`h3[data-test="error"]`)
)

// CheckoutPage is the first checkout step, where buyer details are entered.
type CheckoutPage struct {
	Base
}

// IsAt reports whether the browser is on the information step.
func (p *CheckoutPage) IsAt(ctx context.Context) bool {
	return p.atPage(ctx, "checkout-step-one.html")
}

// FillInformation enters the buyer's details.
func (p *CheckoutPage) FillInformation(ctx context.Context, first, last, postalCode string) error {
	for _, f := range []struct {
		loc  browser.Locator
		text string
	}{
		{firstNameField, first},
		{lastNameField, last},
		{postalCodeField, postalCode},
	} {
		if err := p.h.Type(ctx, f.loc, f.text); err != nil {
			return err
		}
	}
	return nil
}

// Continue submits the information step and waits for the overview.
func (p *CheckoutPage) Continue(ctx context.Context) error {
	if err := p.h.Click(ctx, continueButton); err != nil {
		return err
	}
	return p.waitForPage(ctx, "checkout-step-two.html")
}

// Cancel abandons checkout and returns to the cart.
func (p *CheckoutPage) Cancel(ctx context.Context) error {
	if err := p.h.Click(ctx, cancelButton); err != nil {
		return err
	}
	return p.waitForPage(ctx, "cart.html")
}

// ErrorMessage returns the validation banner text.
func (p *CheckoutPage) ErrorMessage(ctx context.Context) (string, error) {
	return p.h.GetText(ctx, checkoutError)
}
