package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/stridefix/internal/cli"
)

func main() {
	// Interrupting a generate run stops scheduling new fixtures.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
