// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package bar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matt-FFFFFF/barline/internal/ctxlog"
	"github.com/matt-FFFFFF/barline/internal/item"
	"github.com/matt-FFFFFF/barline/internal/line"
	"github.com/matt-FFFFFF/barline/internal/runner"
	"github.com/matt-FFFFFF/barline/internal/update"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrPositions is returned when item positions are not exactly 0..N-1.
	ErrPositions = errors.New("item positions must be a dense sequence starting at zero")
	// ErrChdir is returned when the working directory cannot be changed.
	ErrChdir = errors.New("failed to change working directory")
)

// Bar wires one runner per item to a shared queue and a single line printer.
type Bar struct {
	specs       []item.Spec
	dir         string
	out         io.Writer
	runnerOpts  []runner.Option
	printerOpts []line.Option
}

// Option configures a Bar.
type Option func(b *Bar)

// WithDir makes Run change the process working directory to dir before any
// command starts, so relative paths in commands resolve against it.
func WithDir(dir string) Option {
	return func(b *Bar) {
		b.dir = dir
	}
}

// WithOutput sets where status lines are written. The default is standard output.
func WithOutput(w io.Writer) Option {
	return func(b *Bar) {
		b.out = w
	}
}

// WithRunnerOptions applies opts to every runner.
func WithRunnerOptions(opts ...runner.Option) Option {
	return func(b *Bar) {
		b.runnerOpts = append(b.runnerOpts, opts...)
	}
}

// WithPrinterOptions applies opts to the line printer.
func WithPrinterOptions(opts ...line.Option) Option {
	return func(b *Bar) {
		b.printerOpts = append(b.printerOpts, opts...)
	}
}

// New creates a bar for specs. Positions must cover 0..len(specs)-1 exactly once.
func New(specs []item.Spec, opts ...Option) *Bar {
	b := &Bar{
		specs: specs,
		out:   os.Stdout,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Run starts every item and prints the line until all items have finished, a
// command cannot be started, or ctx is cancelled. Only the first fatal error is
// returned; cancellation of ctx is not an error.
func (b *Bar) Run(ctx context.Context) error {
	if err := checkPositions(b.specs); err != nil {
		return err
	}

	// The working directory is process-wide state. It is set here, once, before
	// any runner exists, and only read afterwards.
	if b.dir != "" {
		if err := os.Chdir(b.dir); err != nil {
			return errors.Join(ErrChdir, err)
		}

		ctxlog.Debug(ctx, "working directory set", "dir", b.dir)
	}

	q := update.NewQueue()

	runners := make([]*runner.Runner, len(b.specs))
	for i, s := range b.specs {
		runners[i] = runner.New(s, q.Sender(s.Position), b.runnerOpts...)
	}

	q.Seal()

	printer := line.NewPrinter(len(b.specs), b.out, b.printerOpts...)

	g, gctx := errgroup.WithContext(ctx)

	for _, r := range runners {
		r := r

		g.Go(func() error {
			err := r.Run(gctx)
			ctxlog.Debug(ctx, "item stopped", "item", r.Spec().Name, "runs", r.Runs(), "error", err)

			return err
		})
	}

	g.Go(func() error {
		return printer.Run(gctx, q)
	})

	ctxlog.Info(ctx, "bar started", "items", len(b.specs))

	err := g.Wait()
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}

	return err
}

func checkPositions(specs []item.Spec) error {
	seen := make([]bool, len(specs))

	for _, s := range specs {
		if s.Position < 0 || s.Position >= len(specs) {
			return fmt.Errorf("%w: item %q has position %d of %d", ErrPositions, s.Name, s.Position, len(specs))
		}

		if seen[s.Position] {
			return fmt.Errorf("%w: position %d is used twice", ErrPositions, s.Position)
		}

		seen[s.Position] = true
	}

	return nil
}
