// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context.
//
// The default logger is a pretty console handler writing to standard error, because
// standard output carries the status line itself. The level is read from the
// BARLINE_LOG_LEVEL environment variable and defaults to WARN.
package ctxlog
