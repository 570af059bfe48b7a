// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the barline command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/barline"
	"github.com/matt-FFFFFF/barline/cmd/barline/check"
	"github.com/matt-FFFFFF/barline/cmd/barline/preview"
	"github.com/matt-FFFFFF/barline/cmd/barline/run"
	"github.com/matt-FFFFFF/barline/internal/ctxlog"
	"github.com/matt-FFFFFF/barline/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		check.CheckCmd,
		preview.PreviewCmd,
	},
	Flags:     run.Flags(),
	Before:    run.SetupLogging,
	Action:    run.Action,
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "barline",
	Description: `barline builds a single status line from the output of shell commands.
Each item in the configuration runs once, on a fixed interval, or continuously,
and the concatenated line is printed to standard output whenever it changes.`,
	Usage:     "barline --config ~/.config/barline/config.toml",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)
	defer signalbroker.Stop(sigCh)

	go signalbroker.Watch(ctx, sigCh, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", barline.Version, barline.Commit)

	err := rootCmd.Run(ctx, os.Args) // Err is handled by cli framework

	// A signal is the normal way to stop the status line.
	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Debug("command terminated by signal", "error", ctx.Err())

		if err == nil {
			return
		}
	}

	if err != nil {
		ctxlog.Logger(ctx).Debug("command execution failed", "error", err)
		os.Exit(1)
	}
}
