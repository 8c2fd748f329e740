// File: cmd/saucecheck/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/saucecheck/cmd"
	"github.com/xkilldash9x/saucecheck/internal/observability"
)

func main() {
	// Cancel the run on SIGINT/SIGTERM so the browser is shut down cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()
	observability.Sync()
	if err != nil {
		os.Exit(1)
	}
}
