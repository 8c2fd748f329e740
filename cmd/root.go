// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/saucecheck/internal/config"
	"github.com/xkilldash9x/saucecheck/internal/observability"
	"github.com/xkilldash9x/saucecheck/internal/service"
)

// flagBindings maps command flags onto config keys so flags override the
// config file and environment.
var flagBindings = map[string]string{
	"headless": "browser.headless",
	"backend":  "browser.backend",
	"base-url": "site.base_url",
}

// rootOptions carries state shared by the root command and its children.
type rootOptions struct {
	cfgFile string
	cfg     *config.Config
	factory service.ComponentFactory
}

// NewRootCommand builds a fresh command tree. Each call has its own viper
// instance, so repeated executions never share flag or config state.
func NewRootCommand() *cobra.Command {
	return newRootCommand(service.NewComponentFactory())
}

func newRootCommand(factory service.ComponentFactory) *cobra.Command {
	opts := &rootOptions{factory: factory}

	rootCmd := &cobra.Command{
		Use:           "saucecheck",
		Short:         "saucecheck drives end-to-end UI checks against the Swag Labs storefront.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			if err := initializeConfig(cmd, v, opts.cfgFile); err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "saucecheck"})
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "saucecheck"})
				return err
			}
			opts.cfg = cfg

			observability.InitializeLogger(cfg.Logger())
			observability.GetLogger().Debug("Starting saucecheck", zap.String("version", Version))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file (default is ./config.yaml or ~/.saucecheck/config.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newListCmd())
	return rootCmd
}

// Execute runs the command tree with a signal-aware context.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			observability.GetLogger().Warn("Run aborted by signal.")
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return err
	}
	return nil
}

// initializeConfig reads the config file and environment into v and binds the
// executing command's flags.
func initializeConfig(cmd *cobra.Command, v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		for _, p := range config.SearchPaths() {
			v.AddConfigPath(p)
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagBindings[f.Name]
		if !ok || bindErr != nil {
			return
		}
		bindErr = v.BindPFlag(key, f)
	})
	return bindErr
}
