// Package main is the entry point of the ogdash CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/cli"
	"github.com/opengovern/frontend/pkg/version"
)

// Process exit codes.
const (
	exitOK          = 0
	exitError       = 1
	exitAuth        = 2
	exitInterrupted = 130
)

func run(ctx context.Context, args []string) error {
	root := cli.NewRootCmd(version.GetVersion())
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case errors.Is(err, api.ErrNoCredential), api.IsUnauthorized(err):
		return exitAuth
	default:
		return exitError
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}
