// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color wraps strings in ANSI colour sequences for log output on a terminal.
// NO_COLOR and FORCE_COLOR are honoured when deciding whether colour is enabled.
package color
