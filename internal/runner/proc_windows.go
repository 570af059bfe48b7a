// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build windows

package runner

import "os/exec"

// configureProcess keeps the exec.CommandContext default of killing the shell only.
func configureProcess(_ *exec.Cmd) {}
