package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/saucecheck/internal/config"
	"github.com/xkilldash9x/saucecheck/internal/observability"
	"github.com/xkilldash9x/saucecheck/internal/scenario"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Runs the named scenarios, or all of them",
		Long: `Runs storefront scenarios in a single browser session and prints one line per scenario.
The command exits non-zero when any scenario fails. Use 'saucecheck list' to see the names.`,
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return scenario.Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.Component("run")
			cfg := opts.cfg

			logger.Info("Starting run",
				zap.Strings("scenarios", args),
				zap.String("backend", cfg.Browser().Backend),
				zap.Bool("headless", cfg.Browser().Headless),
				zap.String("base_url", cfg.Site().BaseURL),
			)

			components, err := opts.factory.Create(ctx, cfg, observability.GetLogger())
			if err != nil {
				return fmt.Errorf("failed to initialize components: %w", err)
			}
			defer components.Shutdown()

			results, err := components.Run(ctx, args...)
			printResults(cmd, results)
			if err != nil {
				return err
			}
			if failed := scenario.Failed(results); failed > 0 {
				return fmt.Errorf("%d of %d scenario(s) failed", failed, len(results))
			}
			return nil
		},
	}

	runCmd.Flags().Bool("headless", false, "run the browser without a window")
	runCmd.Flags().String("backend", config.BackendChromedp, "browser backend: chromedp or rod")
	runCmd.Flags().String("base-url", "", "storefront base URL (default from config)")
	return runCmd
}

func printResults(cmd *cobra.Command, results []scenario.Result) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, r := range results {
		status := "PASS"
		detail := ""
		if !r.Passed() {
			status = "FAIL"
			detail = r.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", status, r.Name, r.Duration.Round(time.Millisecond), detail)
	}
	w.Flush()
}
