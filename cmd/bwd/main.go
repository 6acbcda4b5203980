// Package main is the entry point for the Backlog workflow dashboard.
// It loads configuration and hands off to the command tree.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/cli"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/config"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env files first, then environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.SetLevel(cfg.LogLevel)

	app := &cli.App{
		Config: cfg,
		IsTerminal: func() bool {
			return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		},
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	return cli.NewRootCmd(app).Execute()
}
