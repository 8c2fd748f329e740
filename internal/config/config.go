// File: internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Supported browser backends.
const (
	BackendChromedp = "chromedp"
	BackendRod      = "rod"
)

// EnvPrefix is the prefix viper uses for environment overrides (SAUCECHECK_SITE_BASE_URL, ...).
const EnvPrefix = "SAUCECHECK"

// Interface defines the contract for accessing application configuration.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Wait() WaitConfig
	Site() SiteConfig

	// Browser Setters
	SetBrowserHeadless(bool)
	SetBrowserBackend(string)

	// Site Setters
	SetSiteBaseURL(string)

	Validate() error
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	BrowserCfg BrowserConfig `mapstructure:"browser" yaml:"browser"`
	WaitCfg    WaitConfig    `mapstructure:"wait" yaml:"wait"`
	SiteCfg    SiteConfig    `mapstructure:"site" yaml:"site"`
}

var _ Interface = (*Config)(nil)

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig   { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig { return c.BrowserCfg }
func (c *Config) Wait() WaitConfig       { return c.WaitCfg }
func (c *Config) Site() SiteConfig       { return c.SiteCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBrowserHeadless(b bool)     { c.BrowserCfg.Headless = b }
func (c *Config) SetBrowserBackend(name string) { c.BrowserCfg.Backend = name }
func (c *Config) SetSiteBaseURL(u string)       { c.SiteCfg.BaseURL = u }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig controls how the browser under test is launched.
type BrowserConfig struct {
	// Backend selects the automation library: "chromedp" or "rod".
	Backend  string `mapstructure:"backend" yaml:"backend"`
	Headless bool   `mapstructure:"headless" yaml:"headless"`
	// ExecPath overrides browser discovery. Empty means let the backend find Chrome.
	ExecPath  string   `mapstructure:"exec_path" yaml:"exec_path"`
	NoSandbox bool     `mapstructure:"no_sandbox" yaml:"no_sandbox"`
	Args      []string `mapstructure:"args" yaml:"args"`
	// Maximize resizes the window to fill the screen once the tab is up.
	Maximize      bool          `mapstructure:"maximize" yaml:"maximize"`
	LaunchTimeout time.Duration `mapstructure:"launch_timeout" yaml:"launch_timeout"`
	Debug         bool          `mapstructure:"debug" yaml:"debug"`
}

// WaitConfig tunes the interaction helper.
type WaitConfig struct {
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	MaxAttempts  int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	Backoff      time.Duration `mapstructure:"backoff" yaml:"backoff"`
	// PageTimeout bounds page-level transitions such as the login redirect.
	PageTimeout time.Duration `mapstructure:"page_timeout" yaml:"page_timeout"`
}

// SiteConfig points the suite at a storefront and the account to use.
type SiteConfig struct {
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"-"`
}

// URL joins a page path onto the base URL ("inventory.html" -> "https://host/inventory.html").
func (s SiteConfig) URL(page string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/" + strings.TrimLeft(page, "/")
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "saucecheck")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.backend", BackendChromedp)
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.no_sandbox", false)
	v.SetDefault("browser.maximize", true)
	v.SetDefault("browser.launch_timeout", "60s")
	v.SetDefault("browser.debug", false)

	// -- Wait --
	v.SetDefault("wait.timeout", "3s")
	v.SetDefault("wait.poll_interval", "100ms")
	v.SetDefault("wait.max_attempts", 3)
	v.SetDefault("wait.backoff", "0s")
	v.SetDefault("wait.page_timeout", "10s")

	// -- Site --
	v.SetDefault("site.base_url", "https://www.saucedemo.com/")
	v.SetDefault("site.username", "standard_user")
	v.SetDefault("site.password", "secret_sauce")
}

// SearchPaths returns the directories searched for config.yaml: the working
// directory first, then ~/.saucecheck.
func SearchPaths() []string {
	paths := []string{"."}
	if dir, err := homedir.Expand("~/.saucecheck"); err == nil {
		paths = append(paths, filepath.Clean(dir))
	}
	return paths
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data
	_ = v.BindEnv("site.password", EnvPrefix+"_SITE_PASSWORD")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.SiteCfg.Password == "" {
		cfg.SiteCfg.Password = os.Getenv(EnvPrefix + "_SITE_PASSWORD")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	switch c.BrowserCfg.Backend {
	case BackendChromedp, BackendRod:
	default:
		return fmt.Errorf("browser.backend must be %q or %q, got %q", BackendChromedp, BackendRod, c.BrowserCfg.Backend)
	}
	if err := c.WaitCfg.Validate(); err != nil {
		return fmt.Errorf("wait configuration invalid: %w", err)
	}
	if err := c.SiteCfg.Validate(); err != nil {
		return fmt.Errorf("site configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the wait timings.
func (w *WaitConfig) Validate() error {
	if w.Timeout <= 0 {
		return fmt.Errorf("timeout must be a positive duration")
	}
	if w.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be a positive duration")
	}
	if w.PollInterval > w.Timeout {
		return fmt.Errorf("poll_interval (%s) must not exceed timeout (%s)", w.PollInterval, w.Timeout)
	}
	if w.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1")
	}
	if w.Backoff < 0 {
		return fmt.Errorf("backoff must not be negative")
	}
	if w.PageTimeout <= 0 {
		return fmt.Errorf("page_timeout must be a positive duration")
	}
	return nil
}

// Validate checks the storefront settings.
func (s *SiteConfig) Validate() error {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute http(s) URL, got %q", s.BaseURL)
	}
	if s.Username == "" {
		return fmt.Errorf("username is required")
	}
	return nil
}
