// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shell resolves the shell an item command runs under and builds the
// argument vector that hands the command line to it.
package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/matt-FFFFFF/barline/internal/ctxlog"
)

const (
	// GOOSWindows is the string constant for Windows OS from the runtime package.
	GOOSWindows          = "windows"
	commandSwitchWindows = "/C"         // Command switch for Windows cmd.exe
	commandSwitchUnix    = "-c"         // Command switch for Unix-like shells
	winSystem32          = "System32"   // System32 is the directory where cmd.exe is located on Windows.
	cmdExe               = "cmd.exe"    // cmdExe is the name of the command interpreter executable on Windows.
	binSh                = "/bin/sh"    // Fallback shell for Unix-like systems.
	winSystemRootEnv     = "SystemRoot" // Environment variable for Windows system root directory.
	shellEnv             = "SHELL"
	pathSeparators       = `/\`
)

var (
	// ErrInvalidShell is returned when a shell override is blank or cannot be found.
	ErrInvalidShell = errors.New("invalid shell")
)

// LookPath is used to validate shell executables. It is a variable so tests can stub it.
var LookPath = exec.LookPath

// Resolve returns the shell executable to use. A non-empty override wins, then
// the SHELL environment variable, then the platform default.
// The chosen shell must be resolvable with LookPath.
func Resolve(ctx context.Context, override string) (string, error) {
	sh := override
	if sh == "" {
		sh = Default(ctx)
	} else if strings.TrimSpace(sh) == "" {
		return "", fmt.Errorf("%w: %q is blank", ErrInvalidShell, override)
	}

	if _, err := LookPath(sh); err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidShell, sh, err)
	}

	return sh, nil
}

// ResolveIn is Resolve with a relative override path, such as ./bin/sh, taken
// relative to dir instead of the current directory. Bare names still search PATH.
func ResolveIn(ctx context.Context, dir, override string) (string, error) {
	if dir != "" && !filepath.IsAbs(override) && strings.ContainsAny(override, pathSeparators) {
		override = filepath.Join(dir, override)
	}

	return Resolve(ctx, override)
}

// Default returns the shell inherited from the environment.
func Default(ctx context.Context) string {
	if runtime.GOOS == GOOSWindows {
		systemRoot := os.Getenv(winSystemRootEnv)
		if systemRoot == "" {
			systemRoot = `C:\Windows`
		}

		return fmt.Sprintf(`%s\%s\%s`, systemRoot, winSystem32, cmdExe)
	}

	if sh := os.Getenv(shellEnv); sh != "" {
		ctxlog.Debug(ctx, "using SHELL environment variable", "shell", sh)
		return sh
	}

	return binSh
}

// Args returns the arguments that run command under a shell, excluding the shell itself.
func Args(command string) []string {
	if runtime.GOOS == GOOSWindows {
		return []string{commandSwitchWindows, command}
	}

	return []string{commandSwitchUnix, command}
}
