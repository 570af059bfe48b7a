// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	// LogLevelEnvVar selects the log level: DEBUG, INFO, WARN or ERROR.
	LogLevelEnvVar = "BARLINE_LOG_LEVEL"
	// FormatPretty renders human-readable, optionally coloured log lines.
	FormatPretty = "pretty"
	// FormatJSON renders one JSON object per log line.
	FormatJSON = "json"
)

// ErrUnknownFormat is returned by NewLogger for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown log format")

type loggerKey struct{}

// LevelVar is shared by every logger built by this package.
var LevelVar = &slog.LevelVar{}

// DefaultLogger writes pretty log lines to standard error.
// Standard output is reserved for the status line.
var DefaultLogger = slog.New(NewPrettyHandler(&slog.HandlerOptions{
	Level: LevelVar,
},
	WithAutoColour(),
	WithDestinationWriter(os.Stderr),
))

// JSONLogger writes JSON log lines to standard error.
var JSONLogger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
	Level: LevelVar,
}))

func init() {
	LevelVar.Set(logLevelFromEnv())
}

// New returns a copy of ctx carrying logger. A nil logger means DefaultLogger.
func New(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		logger = DefaultLogger
	}

	return context.WithValue(ctx, loggerKey{}, logger)
}

// NewLogger returns the shared logger for the named format.
func NewLogger(format string) (*slog.Logger, error) {
	switch strings.ToLower(format) {
	case "", FormatPretty:
		return DefaultLogger, nil
	case FormatJSON:
		return JSONLogger, nil
	default:
		return nil, errors.Join(ErrUnknownFormat, errors.New(format))
	}
}

// NewForTUI returns a context whose logger writes uncoloured lines to w, so log
// output does not corrupt a full-screen terminal UI.
func NewForTUI(ctx context.Context, w io.Writer) context.Context {
	return New(ctx, slog.New(NewPrettyHandler(&slog.HandlerOptions{
		Level: LevelVar,
	},
		WithDestinationWriter(w),
	)))
}

// Logger returns the logger from the context, or the default logger if not found.
func Logger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok || logger == nil {
		return DefaultLogger
	}

	return logger
}

// Info logs an info message with the given context.
func Info(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Info(msg, args...)
}

// Debug logs a debug message with the given context.
func Debug(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Debug(msg, args...)
}

// Warn logs a warning message with the given context.
func Warn(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Warn(msg, args...)
}

// Error logs an error message with the given context.
func Error(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Error(msg, args...)
}

// logLevelFromEnv reads LogLevelEnvVar. A status bar is mostly silent, so anything
// unset or unrecognised means WARN.
func logLevelFromEnv() slog.Level {
	switch strings.ToUpper(strings.TrimSpace(os.Getenv(LogLevelEnvVar))) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
