// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run contains the flags shared by every barline command and the root
// action that runs the status line.
package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matt-FFFFFF/barline/internal/bar"
	"github.com/matt-FFFFFF/barline/internal/config"
	"github.com/matt-FFFFFF/barline/internal/ctxlog"
	"github.com/matt-FFFFFF/barline/internal/line"
	"github.com/matt-FFFFFF/barline/internal/runner"
	"github.com/urfave/cli/v3"
)

const (
	// ConfigFlag is the configuration file location flag.
	ConfigFlag = "config"
	// SettleFlag is the print coalescing delay flag.
	SettleFlag = "settle"
	// RestartDelayFlag is the streaming restart pause flag.
	RestartDelayFlag = "restart-delay"
	// LogFormatFlag selects the log output format.
	LogFormatFlag = "log-format"

	defaultRestartDelay = 10 * time.Millisecond
	cliExitStr          = ""
)

var (
	// ErrLoadConfig is returned when the configuration cannot be located or loaded.
	ErrLoadConfig = errors.New("failed to load configuration")
	// ErrNegativeDuration is returned when a duration flag is below zero.
	ErrNegativeDuration = errors.New("duration must not be negative")
)

// Flags returns the flags defined on the root command and inherited by every subcommand.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    ConfigFlag,
			Aliases: []string{"c", "config-file"},
			Usage: "Configuration file location. Supports Hashicorp's go-getter syntax for remote files. " +
				"Defaults to $XDG_CONFIG_HOME/barline/config.* then ~/.config/barline/config.*",
			Sources:   cli.EnvVars(config.EnvVar),
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.DurationFlag{
			Name:      SettleFlag,
			Usage:     "Pause before printing a changed line, so updates arriving together are printed once",
			Value:     line.DefaultSettleDelay,
			OnlyOnce:  true,
			Validator: nonNegative,
		},
		&cli.DurationFlag{
			Name:      RestartDelayFlag,
			Usage:     "Pause before restarting a streaming item whose command has exited",
			Value:     defaultRestartDelay,
			OnlyOnce:  true,
			Validator: nonNegative,
		},
		&cli.StringFlag{
			Name:     LogFormatFlag,
			Usage:    "Log format for standard error: pretty or json",
			Value:    ctxlog.FormatPretty,
			OnlyOnce: true,
		},
	}
}

func nonNegative(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeDuration, d)
	}

	return nil
}

// SetupLogging is a cli.BeforeFunc that puts the logger chosen by --log-format in the context.
func SetupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	logger, err := ctxlog.NewLogger(cmd.String(LogFormatFlag))
	if err != nil {
		return ctx, cli.Exit(err.Error(), 1)
	}

	return ctxlog.New(ctx, logger), nil
}

// LoadConfig locates and loads the configuration named by the command's flags.
func LoadConfig(ctx context.Context, cmd *cli.Command) (*config.Config, error) {
	path, err := config.Locate(ctx, cmd.String(ConfigFlag))
	if err != nil {
		return nil, errors.Join(ErrLoadConfig, err)
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, errors.Join(ErrLoadConfig, err)
	}

	return cfg, nil
}

// BarOptions returns the bar options derived from cfg and the command's flags.
// Further options can be appended by the caller.
func BarOptions(cmd *cli.Command, cfg *config.Config, extra ...bar.Option) []bar.Option {
	opts := []bar.Option{
		bar.WithDir(cfg.Dir),
		bar.WithRunnerOptions(runner.WithRestartDelay(cmd.Duration(RestartDelayFlag))),
		bar.WithPrinterOptions(line.WithSettleDelay(cmd.Duration(SettleFlag))),
	}

	return append(opts, extra...)
}

// Action runs the status line, writing lines to the command's writer.
func Action(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("Running status line")

	cfg, err := LoadConfig(ctx, cmd)
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	if len(cfg.Items) == 0 {
		logger.Warn("No runnable items found in the configuration", "file", cfg.File)
		return nil
	}

	b := bar.New(cfg.Items, BarOptions(cmd, cfg, bar.WithOutput(cmd.Root().Writer))...)
	if err := b.Run(ctx); err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}
