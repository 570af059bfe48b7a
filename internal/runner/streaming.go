// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/barline/internal/ctxlog"
	"github.com/matt-FFFFFF/barline/internal/linereader"
)

// stream runs the command once and reports every line it prints until its
// standard output is closed.
func (r *Runner) stream(ctx context.Context) error {
	cmd := r.command(ctx)
	cmd.Stderr = r.streamStderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: item %q: %w", ErrSpawn, r.spec.Name, err)
	}

	if err := r.start(ctx, cmd); err != nil {
		return err
	}

	lr := linereader.New(stdout,
		func(line string) {
			r.sender.Send(line)
		},
		linereader.WithMaxLineLength(int(r.maxOutput)),
		linereader.WithTruncateHandler(func(limit int) {
			ctxlog.Debug(ctx, "output truncated", "item", r.spec.Name, "maxBytes", limit)
		}),
	)

	readErr := lr.Drain()
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return nil
	}

	ctxlog.Debug(ctx, "streaming command exited, restarting",
		"lines", lr.Lines(),
		"lastLine", lr.LastLine(),
		"truncatedLines", lr.Truncated(),
		"readError", readErr,
		"waitError", waitErr,
		"restartDelay", r.restartDelay,
	)

	return nil
}
