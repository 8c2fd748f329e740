// internal/browser/locator_test.go
package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocator_CSS(t *testing.T) {
	tests := []struct {
		name   string
		loc    Locator
		want   string
		wantOK bool
	}{
		{"id", ByID("user-name"), `[id="user-name"]`, true},
		{"css passthrough", ByCSS("#shopping_cart_container > a > span"), "#shopping_cart_container > a > span", true},
		{"class", ByClass("inventory_item_name"), ".inventory_item_name", true},
		{"class with special chars", ByClass("a.b"), `.a\.b`, true},
		{"class with leading digit", ByClass("1st-item"), `.\31 st-item`, true},
		{"class with digit after dash", ByClass("-2col"), `.-\32 col`, true},
		{"class with inner digits", ByClass("item_42"), ".item_42", true},
		{"lone dash class", ByClass("-"), `.\-`, true},
		{"id with quote", ByID(`we"ird`), `[id="we\"ird"]`, true},
		{"xpath has no css form", ByXPath("//button[contains(@id,'remove')]"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.loc.CSS()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocator_String(t *testing.T) {
	assert.Equal(t, "id:checkout", ByID("checkout").String())
	assert.Equal(t, "xpath://div", ByXPath("//div").String())
}

func TestLocator_Validate(t *testing.T) {
	assert.NoError(t, ByCSS(".cart_item").Validate())
	assert.Error(t, ByCSS("  ").Validate())
	assert.Error(t, Locator{Strategy: "link-text", Value: "Home"}.Validate())
}
