// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package bar starts a status line: one runner per item, all feeding a single line
// printer through a shared update queue.
package bar
