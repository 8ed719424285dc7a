// packforge - game content pack migration, consolidation and validation
// Source: https://github.com/grimdark-vtt/packforge

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/grimdark-vtt/packforge/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
