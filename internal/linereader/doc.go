// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package linereader splits a byte stream into lines as it is read, so output of a
// long-running command can be acted on one line at a time.
package linereader
