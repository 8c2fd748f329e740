package rodsession

import (
	"testing"

	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/saucecheck/internal/config"
)

func TestNewChromeLauncher(t *testing.T) {
	t.Run("shared flags are applied", func(t *testing.T) {
		l := NewChromeLauncher(config.BrowserConfig{Headless: true, NoSandbox: true}, t.TempDir())

		assert.True(t, l.Has("disable-save-password-bubble"))
		assert.True(t, l.Has(flags.NoSandbox))
		assert.Equal(t, "AutomationControlled", l.Get("disable-blink-features"))
		assert.Equal(t, "new", l.Get(flags.Headless))
		assert.False(t, l.Has("enable-automation"))
	})

	t.Run("user data dir and binary", func(t *testing.T) {
		dir := t.TempDir()
		l := NewChromeLauncher(config.BrowserConfig{ExecPath: "/opt/chrome/chrome"}, dir)

		assert.Equal(t, dir, l.Get(flags.UserDataDir))
		assert.Equal(t, "/opt/chrome/chrome", l.Get(flags.Bin))
	})

	t.Run("headed keeps no headless switch", func(t *testing.T) {
		l := NewChromeLauncher(config.BrowserConfig{Headless: false, Maximize: true}, t.TempDir())
		assert.False(t, l.Has(flags.Headless))
		assert.True(t, l.Has("start-maximized"))
	})
}
