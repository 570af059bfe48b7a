// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides a Terminal User Interface (TUI) that previews a status
// line while it runs. It shows every item with its latest text and how often it
// has reported, plus the composed line exactly as it would be printed.
//
// The TUI receives its data as a line.Observer, so the engine it watches is the
// same one that drives the plain status line.
package tui
