// Package e2e runs the scenarios against the live storefront. The tests only
// run with SAUCECHECK_E2E=1; settings come from SAUCECHECK_* variables, e.g.
// SAUCECHECK_BROWSER_HEADLESS=true or SAUCECHECK_SITE_BASE_URL.
package e2e
