// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runner executes the command of one status line item under its policy.
//
// Static items run once. Periodic items run to completion, then sleep for their
// interval, forever. Streaming items are read line by line and restarted after a
// short pause whenever they exit. Every observed output is handed to the item's
// Sender. Only a failure to start a command is an error; exit codes and standard
// error output are ignored.
package runner
