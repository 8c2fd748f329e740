package pages

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/saucecheck/internal/browser"
)

var (
	usernameField = browser.ByID("user-name")
	passwordField = browser.ByID("password")
	loginButton   = browser.ByID("login-button")
	loginError    = browser.ByCSS(`h3[data-test="error"]`)
)

// LoginPage is the storefront's landing page.
type LoginPage struct {
	Base
}

// Open loads the login page and waits for the form.
func (p *LoginPage) Open(ctx context.Context) error {
	if err := p.h.Navigate(ctx, p.site.URL("")); err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}
	return p.h.WaitForPresent(ctx, usernameField, p.pageTimeout)
}

// Login submits the credentials and waits to land on the inventory. A rejected
// login surfaces as a browser.TimeoutError on the URL wait.
func (p *LoginPage) Login(ctx context.Context, username, password string) error {
	if err := p.h.WaitForPresent(ctx, usernameField, p.pageTimeout); err != nil {
		return err
	}
	if err := p.h.Type(ctx, usernameField, username); err != nil {
		return err
	}
	if err := p.h.Type(ctx, passwordField, password); err != nil {
		return err
	}
	if err := p.h.Click(ctx, loginButton); err != nil {
		return err
	}
	p.logger.Debug("Login submitted.", zap.String("username", username))
	return p.waitForPage(ctx, "inventory.html")
}

// LoginAsConfigured logs in with the site's configured credentials.
func (p *LoginPage) LoginAsConfigured(ctx context.Context) error {
	return p.Login(ctx, p.site.Username, p.site.Password)
}

// ErrorMessage returns the text of the login error banner.
func (p *LoginPage) ErrorMessage(ctx context.Context) (string, error) {
	return p.h.GetText(ctx, loginError)
}

// HasError reports whether the error banner is shown, without waiting.
func (p *LoginPage) HasError(ctx context.Context) bool {
	return p.h.IsPresent(ctx, loginError)
}
