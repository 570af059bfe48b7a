// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/matt-FFFFFF/barline/internal/ctxlog"
	"github.com/matt-FFFFFF/barline/internal/item"
	"github.com/matt-FFFFFF/barline/internal/shell"
)

const (
	defaultMaxOutput    = 8 * 1024 * 1024 // 8MB
	defaultRestartDelay = 10 * time.Millisecond
)

var (
	// ErrSpawn is returned when an item command could not be started.
	ErrSpawn = errors.New("could not start process")
	// ErrUnknownPolicy is returned for a policy kind the runner does not implement.
	ErrUnknownPolicy = errors.New("unknown execution policy")
)

// Sender receives the output of one item. update.Sender implements it.
type Sender interface {
	Send(message string) bool
	Close()
}

// Runner executes the command of a single item according to its policy and
// reports every observed output to its Sender.
type Runner struct {
	spec         item.Spec
	sender       Sender
	restartDelay time.Duration
	maxOutput    int64
	stderr       io.Writer // Stderr for Static and Periodic runs; nil discards.
	streamStderr io.Writer // Stderr for Streaming runs.
	runs         atomic.Int64
}

// Option configures a Runner.
type Option func(r *Runner)

// WithRestartDelay sets the pause before a streaming command is restarted.
func WithRestartDelay(d time.Duration) Option {
	return func(r *Runner) {
		r.restartDelay = d
	}
}

// WithStderr sends the standard error of every policy to w.
func WithStderr(w io.Writer) Option {
	return func(r *Runner) {
		r.stderr = w
		r.streamStderr = w
	}
}

// WithMaxOutput bounds the captured output of a single Static or Periodic run,
// and the length of a single Streaming line.
func WithMaxOutput(n int64) Option {
	return func(r *Runner) {
		r.maxOutput = n
	}
}

// New creates a runner for spec that reports through sender.
// The runner owns sender and closes it when Run returns.
func New(spec item.Spec, sender Sender, opts ...Option) *Runner {
	r := &Runner{
		spec:         spec,
		sender:       sender,
		restartDelay: defaultRestartDelay,
		maxOutput:    defaultMaxOutput,
		streamStderr: os.Stderr,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Spec returns the item this runner executes.
func (r *Runner) Spec() item.Spec {
	return r.spec
}

// Runs returns how many times the command has been started.
func (r *Runner) Runs() int64 {
	return r.runs.Load()
}

// Run executes the item until its policy is exhausted or ctx is cancelled.
// Static items return after their single update; Periodic and Streaming items
// only return on cancellation or when a command cannot be started.
// Cancellation is not an error.
func (r *Runner) Run(ctx context.Context) error {
	defer r.sender.Close()

	ctx = ctxlog.New(ctx, ctxlog.Logger(ctx).With(
		"item", r.spec.Name,
		"position", r.spec.Position,
		"policy", r.spec.Policy.String(),
	))

	ctxlog.Debug(ctx, "runner started", "command", r.spec.Command, "shell", r.spec.Shell)

	var err error

	switch r.spec.Policy.Kind {
	case item.Static:
		err = r.runStatic(ctx)
	case item.Periodic:
		err = r.runPeriodic(ctx)
	case item.Streaming:
		err = r.runStreaming(ctx)
	default:
		err = fmt.Errorf("%w: %d", ErrUnknownPolicy, r.spec.Policy.Kind)
	}

	if ctx.Err() != nil {
		ctxlog.Debug(ctx, "runner stopped", "reason", ctx.Err())
		return nil
	}

	return err
}

func (r *Runner) runStatic(ctx context.Context) error {
	out, err := r.runOnce(ctx)
	if err != nil {
		return err
	}

	r.sender.Send(out)

	return nil
}

func (r *Runner) runPeriodic(ctx context.Context) error {
	for {
		out, err := r.runOnce(ctx)
		if err != nil {
			return err
		}

		r.sender.Send(out)

		if !sleep(ctx, r.spec.Policy.Interval) {
			return nil
		}
	}
}

func (r *Runner) runStreaming(ctx context.Context) error {
	for {
		if err := r.stream(ctx); err != nil {
			return err
		}

		if !sleep(ctx, r.restartDelay) {
			return nil
		}
	}
}

// command builds the process for one execution. Commands run in the process
// working directory, which the caller sets before any runner starts.
func (r *Runner) command(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, r.spec.Shell, shell.Args(r.spec.Command)...)
	configureProcess(cmd)

	return cmd
}

func (r *Runner) start(ctx context.Context, cmd *exec.Cmd) error {
	r.runs.Add(1)

	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		return fmt.Errorf("%w: item %q: %w", ErrSpawn, r.spec.Name, err)
	}

	ctxlog.Debug(ctx, "process started", "pid", cmd.Process.Pid)

	return nil
}

// sleep waits for d or until ctx is done. It reports whether the full wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
