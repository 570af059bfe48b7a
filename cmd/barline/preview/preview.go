// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package preview contains the command that runs the status line inside a terminal UI.
package preview

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/matt-FFFFFF/barline/cmd/barline/run"
	"github.com/matt-FFFFFF/barline/internal/bar"
	"github.com/matt-FFFFFF/barline/internal/ctxlog"
	"github.com/matt-FFFFFF/barline/internal/line"
	"github.com/matt-FFFFFF/barline/internal/runner"
	"github.com/matt-FFFFFF/barline/internal/tui"
	"github.com/urfave/cli/v3"
)

const cliExitStr = ""

// PreviewCmd runs the configured items and shows their output in a terminal UI.
var PreviewCmd = &cli.Command{
	Name:  "preview",
	Usage: "Run the status line in an interactive view of every item",
	Description: `Run the configured items with the same engine as the status line and show,
for every item, its latest text and how many updates it has sent, together with
the composed line. Press q to quit.`,
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("Starting preview")

	cfg, err := run.LoadConfig(ctx, cmd)
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	buf := new(bytes.Buffer)
	// Log output is held back until the UI has restored the terminal.
	tuiCtx := ctxlog.NewForTUI(ctx, buf)

	r := tui.NewRunner(cfg.Items)

	opts := run.BarOptions(cmd, cfg,
		bar.WithOutput(io.Discard),
		bar.WithRunnerOptions(runner.WithStderr(buf)),
		bar.WithPrinterOptions(line.WithObserver(r.Observer())),
	)

	execErr := r.Run(tuiCtx, bar.New(cfg.Items, opts...).Run)

	buf.WriteTo(cmd.Root().ErrWriter) //nolint:errcheck // Write any buffered log output once the UI is gone

	if execErr != nil {
		logger.Error(fmt.Sprintf("Preview error: %s", execErr.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}
