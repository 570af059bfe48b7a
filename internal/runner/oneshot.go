// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/matt-FFFFFF/barline/internal/ctxlog"
	"github.com/matt-FFFFFF/barline/internal/linereader"
)

var (
	// ErrBufferOverflow is logged when a single run prints more than the output limit.
	ErrBufferOverflow = errors.New("output exceeds max size")
	// ErrFailedToReadBuffer is returned when the standard output pipe could not be read.
	ErrFailedToReadBuffer = errors.New("failed to read buffer")
)

// runOnce executes the command to completion and returns its standard output with
// the trailing line ending removed. The exit status is not inspected: whatever the
// command printed is the item's text.
func (r *Runner) runOnce(ctx context.Context) (string, error) {
	cmd := r.command(ctx)
	cmd.Stderr = r.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("%w: item %q: %w", ErrSpawn, r.spec.Name, err)
	}

	if err := r.start(ctx, cmd); err != nil {
		return "", err
	}

	out, readErr := readAllUpToMax(ctx, stdout, r.maxOutput)
	if errors.Is(readErr, ErrBufferOverflow) {
		// Keep the pipe drained so the command can finish.
		_, _ = io.Copy(io.Discard, stdout)
	}

	waitErr := cmd.Wait()

	switch {
	case ctx.Err() != nil:
		return "", ctx.Err()
	case readErr != nil && !errors.Is(readErr, ErrBufferOverflow):
		ctxlog.Debug(ctx, "reading output failed", "error", readErr)
	case waitErr != nil:
		ctxlog.Debug(ctx, "command exited with error", "error", waitErr, "exitCode", cmd.ProcessState.ExitCode())
	}

	return linereader.Trim(string(out)), nil
}

func readAllUpToMax(ctx context.Context, r io.Reader, maxBufferSize int64) ([]byte, error) {
	var buf bytes.Buffer

	n, err := io.CopyN(&buf, r, maxBufferSize+1)
	if err != nil && err != io.EOF {
		return buf.Bytes(), errors.Join(ErrFailedToReadBuffer, err)
	}

	if n > maxBufferSize {
		ctxlog.Debug(ctx,
			"output truncated",
			"bytesRead", n,
			"maxBytes", maxBufferSize,
		)

		return buf.Bytes()[:maxBufferSize], ErrBufferOverflow
	}

	return buf.Bytes(), nil
}
