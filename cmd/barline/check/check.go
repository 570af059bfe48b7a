// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package check contains the command that validates a configuration without running it.
package check

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/matt-FFFFFF/barline/cmd/barline/run"
	"github.com/matt-FFFFFF/barline/internal/config"
	"github.com/matt-FFFFFF/barline/internal/ctxlog"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

const cliExitStr = ""

// CheckCmd loads and validates the configuration and prints the resolved items.
var CheckCmd = &cli.Command{
	Name:  "check",
	Usage: "Validate the configuration and show the items it defines",
	Description: `Load the configuration exactly as the status line would, report every
problem found, and print the items in display order with their resolved shell
and execution policy. Nothing is executed.`,
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	cfg, err := run.LoadConfig(ctx, cmd)
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	if err := WriteTable(cmd.Root().Writer, cfg); err != nil {
		logger.Error(fmt.Sprintf("Failed to write results: %s", err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}

// WriteTable writes a summary of cfg to w.
func WriteTable(w io.Writer, cfg *config.Config) error {
	if _, err := fmt.Fprintf(w, "Configuration: %s\n\n", cfg.File); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)

	table.SetHeader([]string{"Position", "Item", "Policy", "Shell", "Command"})

	for _, it := range cfg.Items {
		table.Append([]string{strconv.Itoa(it.Position), it.Name, it.Policy.String(), it.Shell, it.Command})
	}

	table.Render()

	for _, name := range cfg.Skipped {
		if _, err := fmt.Fprintf(w, "skipped: %s is listed in order but has no configuration\n", name); err != nil {
			return err
		}
	}

	return nil
}
