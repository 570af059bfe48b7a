// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/barline/internal/item"
	"github.com/matt-FFFFFF/barline/internal/line"
	"github.com/matt-FFFFFF/barline/internal/update"
)

// Runner manages the TUI application and the engine it previews.
type Runner struct {
	model    *Model
	program  *tea.Program
	reporter *TUIReporter
	mutex    sync.Mutex
}

// TUIReporter implements line.Observer and forwards events to the TUI.
type TUIReporter struct {
	program *tea.Program
	closed  bool
	mutex   sync.RWMutex
}

var _ line.Observer = (*TUIReporter)(nil)

// NewTUIReporter creates a new TUI reporter.
func NewTUIReporter(program *tea.Program) *TUIReporter {
	return &TUIReporter{
		program: program,
	}
}

// Applied implements line.Observer.
func (tr *TUIReporter) Applied(u update.Update) {
	tr.send(UpdateMsg{Update: u, At: time.Now()})
}

// Printed implements line.Observer.
func (tr *TUIReporter) Printed(l string) {
	tr.send(PrintedMsg{Line: l})
}

func (tr *TUIReporter) send(msg tea.Msg) {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()

	if tr.closed || tr.program == nil {
		return
	}

	tr.program.Send(msg)
}

// Close stops forwarding events.
func (tr *TUIReporter) Close() {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()
	tr.closed = true
}

// NewRunner creates a new TUI runner for specs. The program uses the alternate
// screen; opts are applied after that and may override it.
func NewRunner(specs []item.Spec, opts ...tea.ProgramOption) *Runner {
	model := NewModel(specs)
	program := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)

	return &Runner{
		model:    model,
		program:  program,
		reporter: NewTUIReporter(program),
	}
}

// Observer returns the line.Observer that feeds this TUI.
func (r *Runner) Observer() line.Observer {
	return r.reporter
}

// Run starts the TUI and calls engine with a context that is cancelled when the
// user quits. When the engine stops first the TUI stays open, showing the final
// state, until the user quits. Cancelling ctx stops both.
func (r *Runner) Run(ctx context.Context, engine func(ctx context.Context) error) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	engineCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	engineDone := make(chan error, 1)

	go func() {
		engineDone <- engine(engineCtx)
	}()

	tuiDone := make(chan error, 1)

	go func() {
		_, err := r.program.Run()
		tuiDone <- err
	}()

	var engineErr, tuiErr error

	select {
	case engineErr = <-engineDone:
		// Engine stopped, keep the TUI up until the user leaves.
		r.program.Send(FinishedMsg{Err: engineErr})

		select {
		case tuiErr = <-tuiDone:
		case <-ctx.Done():
			r.program.Quit()
			tuiErr = <-tuiDone
		}

		r.reporter.Close()

	case tuiErr = <-tuiDone:
		// TUI exited first (user pressed 'q'), stop the engine.
		r.reporter.Close()
		cancel()

		engineErr = <-engineDone

	case <-ctx.Done():
		r.reporter.Close()
		r.program.Quit()
		cancel()

		engineErr = <-engineDone
		tuiErr = <-tuiDone
	}

	if errors.Is(engineErr, context.Canceled) {
		engineErr = nil
	}

	return errors.Join(engineErr, tuiErr)
}
