// File: internal/config/config_test.go
package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "saucecheck", cfg.Logger().ServiceName)
	assert.Equal(t, BackendChromedp, cfg.Browser().Backend)
	assert.False(t, cfg.Browser().Headless)
	assert.True(t, cfg.Browser().Maximize)
	assert.Equal(t, 3*time.Second, cfg.Wait().Timeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Wait().PollInterval)
	assert.Equal(t, 3, cfg.Wait().MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.Wait().PageTimeout)
	assert.Equal(t, "https://www.saucedemo.com/", cfg.Site().BaseURL)
	assert.Equal(t, "standard_user", cfg.Site().Username)
	assert.NoError(t, cfg.Validate())
}

func TestSiteURL(t *testing.T) {
	tests := []struct {
		base, page, want string
	}{
		{"https://www.saucedemo.com/", "inventory.html", "https://www.saucedemo.com/inventory.html"},
		{"https://www.saucedemo.com", "/cart.html", "https://www.saucedemo.com/cart.html"},
		{"http://127.0.0.1:4242/", "", "http://127.0.0.1:4242/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SiteConfig{BaseURL: tt.base}.URL(tt.page))
	}
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	t.Run("Backend", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.SetBrowserBackend(BackendRod)
		assert.NoError(t, cfg.Validate())

		cfg.SetBrowserBackend("selenium")
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "browser.backend")
	})

	t.Run("Wait", func(t *testing.T) {
		valid := NewDefaultConfig().Wait()
		assert.NoError(t, valid.Validate())

		zeroTimeout := valid
		zeroTimeout.Timeout = 0
		assert.ErrorContains(t, zeroTimeout.Validate(), "timeout must be a positive duration")

		slowPoll := valid
		slowPoll.PollInterval = 5 * time.Second
		assert.ErrorContains(t, slowPoll.Validate(), "must not exceed timeout")

		noAttempts := valid
		noAttempts.MaxAttempts = 0
		assert.ErrorContains(t, noAttempts.Validate(), "max_attempts")

		negativeBackoff := valid
		negativeBackoff.Backoff = -time.Millisecond
		assert.ErrorContains(t, negativeBackoff.Validate(), "backoff")
	})

	t.Run("Site", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.SetSiteBaseURL("saucedemo.com")
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "site configuration invalid")

		cfg.SetSiteBaseURL("http://localhost:8080")
		cfg.SiteCfg.Username = ""
		assert.ErrorContains(t, cfg.Validate(), "username is required")
	})
}

// -- Viper Loading Tests --

func TestNewConfigFromViper(t *testing.T) {
	yamlConfig := []byte(`
logger:
  level: debug
browser:
  backend: rod
  headless: true
  args:
    - window-size=1280,800
wait:
  timeout: 5s
  poll_interval: 250ms
site:
  base_url: http://127.0.0.1:9000/
  username: problem_user
`)
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlConfig)))

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger().Level)
	assert.Equal(t, BackendRod, cfg.Browser().Backend)
	assert.True(t, cfg.Browser().Headless)
	assert.Equal(t, []string{"window-size=1280,800"}, cfg.Browser().Args)
	assert.Equal(t, 5*time.Second, cfg.Wait().Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Wait().PollInterval)
	assert.Equal(t, 3, cfg.Wait().MaxAttempts, "unset keys keep their defaults")
	assert.Equal(t, "problem_user", cfg.Site().Username)
}

func TestNewConfigFromViper_PasswordFromEnv(t *testing.T) {
	t.Setenv("SAUCECHECK_SITE_PASSWORD", "from-env")

	v := viper.New()
	SetDefaults(v)

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Site().Password)
}

func TestNewConfigFromViper_Invalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("wait.max_attempts", 0)

	_, err := NewConfigFromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestSearchPaths(t *testing.T) {
	paths := SearchPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, ".", paths[0])
	if len(paths) > 1 {
		assert.Contains(t, paths[1], ".saucecheck")
	}
}
