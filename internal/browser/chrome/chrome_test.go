package chrome

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/saucecheck/internal/browser"
	"github.com/xkilldash9x/saucecheck/internal/config"
)

func TestFlags(t *testing.T) {
	t.Run("credential and automation UI is suppressed", func(t *testing.T) {
		flags := Flags(config.BrowserConfig{})

		for _, name := range []string{"disable-save-password-bubble", "disable-infobars", "disable-notifications", "disable-popup-blocking"} {
			v, ok := Lookup(flags, name)
			assert.True(t, ok, name)
			assert.Equal(t, true, v, name)
		}
		v, _ := Lookup(flags, "enable-automation")
		assert.Equal(t, false, v)
		v, _ = Lookup(flags, "disable-blink-features")
		assert.Equal(t, "AutomationControlled", v)
		v, _ = Lookup(flags, "disable-features")
		assert.Contains(t, v, "PasswordLeakDetection")
	})

	t.Run("headless", func(t *testing.T) {
		v, _ := Lookup(Flags(config.BrowserConfig{Headless: true}), "headless")
		assert.Equal(t, "new", v)

		v, _ = Lookup(Flags(config.BrowserConfig{Headless: false}), "headless")
		assert.Equal(t, false, v)
	})

	t.Run("maximize and sandbox", func(t *testing.T) {
		flags := Flags(config.BrowserConfig{Maximize: true, NoSandbox: true})
		_, ok := Lookup(flags, "start-maximized")
		assert.True(t, ok)
		_, ok = Lookup(flags, "no-sandbox")
		assert.True(t, ok)

		_, ok = Lookup(Flags(config.BrowserConfig{}), "start-maximized")
		assert.False(t, ok)
	})

	t.Run("user args come last and win", func(t *testing.T) {
		flags := Flags(config.BrowserConfig{Headless: true, Args: []string{"--window-size=1280,800", "--lang=en-US", "mute-audio"}})

		v, _ := Lookup(flags, "window-size")
		assert.Equal(t, "1280,800", v)
		v, _ = Lookup(flags, "lang")
		assert.Equal(t, "en-US", v)
		v, _ = Lookup(flags, "mute-audio")
		assert.Equal(t, true, v)
	})
}

func TestParseArg(t *testing.T) {
	assert.Equal(t, Flag{Name: "user-agent", Value: "a=b"}, ParseArg("--user-agent=a=b"))
	assert.Equal(t, Flag{Name: "disable-gpu", Value: true}, ParseArg("disable-gpu"))
}

func TestNewProfile(t *testing.T) {
	dir, err := NewProfile(t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "Default", "Preferences"))
	require.NoError(t, err)

	var prefs map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &prefs))
	assert.Equal(t, false, prefs["credentials_enable_service"])

	profile, ok := prefs["profile"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, profile["password_manager_enabled"])
	assert.Equal(t, false, profile["password_manager_leak_detection"])
}

func TestScripts(t *testing.T) {
	t.Run("css locators use querySelectorAll", func(t *testing.T) {
		s := ProbeScript(browser.ByID("add-to-cart-sauce-labs-backpack"))
		assert.Contains(t, s, `"css"`)
		assert.Contains(t, s, `[id=\"add-to-cart-sauce-labs-backpack\"]`)
	})

	t.Run("xpath locators use document.evaluate", func(t *testing.T) {
		s := CountScript(browser.ByXPath(`//div[text()="Sauce Labs Onesie"]`))
		assert.Contains(t, s, `"xpath"`)
		assert.Contains(t, s, `//div[text()=\"Sauce Labs Onesie\"]`)
	})

	t.Run("select quotes the value", func(t *testing.T) {
		s := SelectScript(browser.ByClass("product_sort_container"), `lo"hi`)
		assert.Contains(t, s, `"lo\"hi"`)
	})
}

func TestSelectError(t *testing.T) {
	assert.NoError(t, SelectError(SelectOK, "az"))
	assert.EqualError(t, SelectError(SelectNoOption, "zz"), `no option with value "zz"`)
	assert.EqualError(t, SelectError(SelectNoElement, "az"), "no element matches")
	assert.Error(t, SelectError("", "az"))
}
