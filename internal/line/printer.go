// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package line

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/matt-FFFFFF/barline/internal/ctxlog"
	"github.com/matt-FFFFFF/barline/internal/update"
)

// DefaultSettleDelay is the pause between noticing a changed line and printing it.
const DefaultSettleDelay = 5 * time.Millisecond

// ErrWrite is returned when the line cannot be written to the output.
var ErrWrite = errors.New("failed to write status line")

// Observer is told about every update the printer applies and every line it writes.
// Methods are called from the printer goroutine and must not block.
type Observer interface {
	Applied(u update.Update)
	Printed(line string)
}

// Printer owns the line state: the latest text of every position and the last
// line written. All of it is mutated only from the goroutine running Run.
type Printer struct {
	slots     []string
	last      string
	settle    time.Duration
	w         *bufio.Writer
	observers []Observer
	prints    int
}

// Option configures a Printer.
type Option func(p *Printer)

// WithSettleDelay sets the pause used to coalesce updates that arrive together.
// Zero prints every change immediately.
func WithSettleDelay(d time.Duration) Option {
	return func(p *Printer) {
		if d < 0 {
			d = 0
		}

		p.settle = d
	}
}

// WithObserver registers o to be told about applied updates and written lines.
func WithObserver(o Observer) Option {
	return func(p *Printer) {
		p.observers = append(p.observers, o)
	}
}

// NewPrinter creates a printer for n positions writing lines to w.
func NewPrinter(n int, w io.Writer, opts ...Option) *Printer {
	p := &Printer{
		slots:  make([]string, n),
		settle: DefaultSettleDelay,
		w:      bufio.NewWriter(w),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Line returns the concatenation of every slot in position order.
func (p *Printer) Line() string {
	return strings.Join(p.slots, "")
}

// Last returns the last line written.
func (p *Printer) Last() string {
	return p.last
}

// Prints returns how many lines have been written.
func (p *Printer) Prints() int {
	return p.prints
}

// Run consumes updates from src until every sender is gone, writing the line
// each time it changes. It returns nil at end of stream and ctx.Err() on cancellation.
func (p *Printer) Run(ctx context.Context, src update.Source) error {
	for {
		u, ok, err := src.Recv(ctx)
		if err != nil {
			return err
		}

		if !ok {
			ctxlog.Debug(ctx, "all items finished", "prints", p.prints)
			return nil
		}

		if !p.apply(ctx, u) {
			continue
		}

		if p.Line() == p.last {
			continue
		}

		if err := p.settleAndPrint(ctx, src); err != nil {
			return err
		}
	}
}

// settleAndPrint waits for the settle delay, folds in every update that arrived
// meanwhile, and writes the resulting line if it still differs from the last one.
func (p *Printer) settleAndPrint(ctx context.Context, src update.Source) error {
	if p.settle > 0 {
		t := time.NewTimer(p.settle)

		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}

	for {
		u, ok := src.TryRecv()
		if !ok {
			break
		}

		p.apply(ctx, u)
	}

	current := p.Line()
	if current == p.last {
		return nil
	}

	if err := p.write(current); err != nil {
		return err
	}

	for _, o := range p.observers {
		o.Printed(current)
	}

	return nil
}

// apply stores u in its slot. Updates for unknown positions are dropped.
func (p *Printer) apply(ctx context.Context, u update.Update) bool {
	if u.Position < 0 || u.Position >= len(p.slots) {
		ctxlog.Warn(ctx, "update for unknown position dropped", "position", u.Position, "slots", len(p.slots))
		return false
	}

	p.slots[u.Position] = u.Message

	for _, o := range p.observers {
		o.Applied(u)
	}

	return true
}

func (p *Printer) write(current string) error {
	p.last = current
	p.prints++

	if _, err := p.w.WriteString(current); err != nil {
		return errors.Join(ErrWrite, err)
	}

	if err := p.w.WriteByte('\n'); err != nil {
		return errors.Join(ErrWrite, err)
	}

	if err := p.w.Flush(); err != nil {
		return errors.Join(ErrWrite, err)
	}

	return nil
}
