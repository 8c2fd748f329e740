// Package sitetest serves an embedded clone of the storefront and builds
// browser-backed components against it, so page objects and scenarios can be
// tested without the public site.
package sitetest

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/semaphore"

	"github.com/xkilldash9x/saucecheck/internal/config"
	"github.com/xkilldash9x/saucecheck/internal/service"
)

// ChromeEnv names an explicit browser binary, checked before PATH.
const ChromeEnv = "SAUCECHECK_CHROME"

// MaxBrowsers caps how many browsers the tests of one package run at once.
const MaxBrowsers = 2

//go:embed site
var siteFiles embed.FS

var browsers = semaphore.NewWeighted(MaxBrowsers)

var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

// Handler serves the storefront clone.
func Handler() http.Handler {
	sub, err := fs.Sub(siteFiles, "site")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

// NewServer starts the storefront on a loopback port for the life of the test.
func NewServer(t testing.TB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(Handler())
	t.Cleanup(srv.Close)
	return srv
}

// FindChrome returns the browser binary to use, or "" when none is installed.
func FindChrome() string {
	if p := os.Getenv(ChromeEnv); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, name := range chromeCandidates {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}

// RequireChrome skips the test in -short mode or when no browser is installed.
func RequireChrome(t testing.TB) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	p := FindChrome()
	if p == "" {
		t.Skipf("no Chrome binary found (set %s or install Chrome)", ChromeEnv)
	}
	return p
}

// Config returns a headless configuration pointed at baseURL.
func Config(baseURL, backend, chromePath string) *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.SetBrowserBackend(backend)
	cfg.SetBrowserHeadless(true)
	cfg.SetSiteBaseURL(baseURL)
	cfg.BrowserCfg.ExecPath = chromePath
	cfg.BrowserCfg.NoSandbox = os.Geteuid() == 0
	cfg.BrowserCfg.Maximize = false
	cfg.WaitCfg.PageTimeout = 5 * time.Second
	return cfg
}

// NewComponents starts the storefront and returns components for backend.
// It blocks while MaxBrowsers other tests hold a browser.
func NewComponents(t testing.TB, backend string) *service.Components {
	t.Helper()
	chrome := RequireChrome(t)
	srv := NewServer(t)

	if err := browsers.Acquire(context.Background(), 1); err != nil {
		t.Fatalf("acquire browser slot: %v", err)
	}
	t.Cleanup(func() { browsers.Release(1) })

	cfg := Config(srv.URL+"/", backend, chrome)
	c, err := service.NewComponentFactory().Create(context.Background(), cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("create components: %v", err)
	}
	t.Cleanup(c.Shutdown)
	return c
}
