// Package main is the entry point for the flowhub command.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/flowhub/internal/adapters/driving/cli"
)

// Build information injected via ldflags at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetVersion(version)
	cli.SetBootstrap(wire)

	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
