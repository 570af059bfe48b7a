// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package line assembles the status line from per-position item output and writes it
// whenever it changes.
//
// A short settle delay between noticing a change and writing it lets updates from
// several items that arrive together end up in a single line instead of a flicker
// of partial ones.
package line
