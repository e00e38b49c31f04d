// Package main provides the entry point for the tsedit CLI tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/Sumatoshi-tech/tsedit/cmd/tsedit/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := commands.NewApp(afero.NewOsFs(), os.Stdout, os.Stderr)

	err := app.Command().ExecuteContext(ctx)

	closeErr := app.Close(context.Background())

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if closeErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", closeErr)
	}
}
