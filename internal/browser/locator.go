// internal/browser/locator.go
package browser

import (
	"fmt"
	"strings"
)

// Strategy names how a Locator finds elements on the current page.
type Strategy string

const (
	StrategyID    Strategy = "id"
	StrategyCSS   Strategy = "css"
	StrategyClass Strategy = "class"
	StrategyXPath Strategy = "xpath"
)

// Locator is an immutable description of how to find zero or more elements.
// It is a plain value; page objects hold them as fields and pass them around freely.
type Locator struct {
	Strategy Strategy
	Value    string
}

// ByID locates elements by their id attribute.
func ByID(id string) Locator { return Locator{Strategy: StrategyID, Value: id} }

// ByCSS locates elements with a CSS selector.
func ByCSS(selector string) Locator { return Locator{Strategy: StrategyCSS, Value: selector} }

// ByClass locates elements carrying a single class name.
func ByClass(name string) Locator { return Locator{Strategy: StrategyClass, Value: name} }

// ByXPath locates elements with an XPath expression.
func ByXPath(expr string) Locator { return Locator{Strategy: StrategyXPath, Value: expr} }

// String renders the locator as "strategy:value", which is what shows up in logs and errors.
func (l Locator) String() string {
	return fmt.Sprintf("%s:%s", l.Strategy, l.Value)
}

// CSS returns the CSS selector equivalent of the locator. XPath locators have
// no CSS form and report ok=false, so backends can switch to an XPath query.
func (l Locator) CSS() (selector string, ok bool) {
	switch l.Strategy {
	case StrategyCSS:
		return l.Value, true
	case StrategyID:
		return fmt.Sprintf(`[id="%s"]`, escapeAttr(l.Value)), true
	case StrategyClass:
		return "." + escapeIdent(l.Value), true
	default:
		return "", false
	}
}

// Validate reports whether the locator can be used for a query.
func (l Locator) Validate() error {
	if strings.TrimSpace(l.Value) == "" {
		return fmt.Errorf("locator %q has an empty value", l.Strategy)
	}
	switch l.Strategy {
	case StrategyID, StrategyCSS, StrategyClass, StrategyXPath:
		return nil
	default:
		return fmt.Errorf("unsupported locator strategy %q", l.Strategy)
	}
}

func escapeAttr(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// escapeIdent escapes characters that would end a CSS identifier early. A
// digit cannot start an identifier (or follow a leading "-"), so it is written
// as a code point escape.
func escapeIdent(s string) string {
	if s == "-" {
		return `\-`
	}
	var b strings.Builder
	for i, r := range s {
		isDigit := r >= '0' && r <= '9'
		switch {
		case isDigit && (i == 0 || i == 1 && s[0] == '-'):
			fmt.Fprintf(&b, `\%x `, r)
		case r == '-' || r == '_',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			isDigit,
			r > 0x7f:
			b.WriteRune(r)
		default:
			b.WriteRune('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
