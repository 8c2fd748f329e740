package chrome

import (
	"fmt"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/saucecheck/internal/browser"
)

// findFn resolves a locator to an array of elements in document order.
const findFn = `function(kind, sel) {
	if (kind === "xpath") {
		var r = document.evaluate(sel, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
		var out = [];
		for (var i = 0; i < r.snapshotLength; i++) { out.push(r.snapshotItem(i)); }
		return out;
	}
	return Array.prototype.slice.call(document.querySelectorAll(sel));
}`

// VisibleFn reports whether an element is rendered: it has a layout box and
// neither it nor an ancestor hides it.
const VisibleFn = `function(el) {
	if (!el || !el.isConnected) { return false; }
	var style = window.getComputedStyle(el);
	if (style.visibility === "hidden" || style.visibility === "collapse" || style.display === "none") { return false; }
	if (parseFloat(style.opacity) === 0) { return false; }
	return !!(el.offsetWidth || el.offsetHeight || el.getClientRects().length);
}`

// ProbeResult is what ProbeScript evaluates to.
type ProbeResult struct {
	Count   int  `json:"count"`
	Visible bool `json:"visible"`
}

// query returns the locator as the (kind, selector) pair findFn expects.
func query(loc browser.Locator) (kind, sel string) {
	if css, ok := loc.CSS(); ok {
		return "css", css
	}
	return "xpath", loc.Value
}

func invoke(loc browser.Locator, body string) string {
	kind, sel := query(loc)
	k, _ := json.MarshalToString(kind)
	s, _ := json.MarshalToString(sel)
	return fmt.Sprintf("(function() { var find = %s; var visible = %s; var els = find(%s, %s); %s })()",
		findFn, VisibleFn, k, s, body)
}

// CountScript evaluates to the number of elements matching loc.
func CountScript(loc browser.Locator) string {
	return invoke(loc, "return els.length;")
}

// ProbeScript evaluates to a ProbeResult for loc.
func ProbeScript(loc browser.Locator) string {
	return invoke(loc, "return {count: els.length, visible: els.length > 0 && visible(els[0])};")
}

// ClickScript calls click() on the first match and evaluates to whether one existed.
func ClickScript(loc browser.Locator) string {
	return invoke(loc, "if (els.length === 0) { return false; } els[0].click(); return true;")
}

// Select outcomes reported by SelectScript.
const (
	SelectOK        = "ok"
	SelectNoElement = "no-element"
	SelectNoOption  = "no-option"
)

// SelectScript picks the option with value on the first matching <select> and
// fires the input and change events frameworks listen for. It evaluates to one
// of the Select* outcomes.
func SelectScript(loc browser.Locator, value string) string {
	v, _ := json.MarshalToString(value)
	return invoke(loc, fmt.Sprintf(`if (els.length === 0) { return %q; }
	var el = els[0], want = %s, found = false;
	for (var i = 0; i < el.options.length; i++) { if (el.options[i].value === want) { found = true; } }
	if (!found) { return %q; }
	var setter = Object.getOwnPropertyDescriptor(HTMLSelectElement.prototype, "value").set;
	setter.call(el, want);
	el.dispatchEvent(new Event("input", {bubbles: true}));
	el.dispatchEvent(new Event("change", {bubbles: true}));
	return %q;`, SelectNoElement, v, SelectNoOption, SelectOK))
}

// SelectError converts a SelectScript outcome into an error.
func SelectError(outcome, value string) error {
	switch outcome {
	case SelectOK:
		return nil
	case SelectNoElement:
		return fmt.Errorf("no element matches")
	case SelectNoOption:
		return fmt.Errorf("no option with value %q", value)
	default:
		return fmt.Errorf("unexpected select outcome %q", outcome)
	}
}
