// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/barline/internal/item"
)

const (
	defaultWidth  = 80
	defaultHeight = 10
)

// ItemRow is the displayed state of one item.
type ItemRow struct {
	Name       string    // Item name from the configuration
	Policy     string    // Human readable execution policy
	Text       string    // Latest text reported by the item
	Updates    int       // Number of updates received
	LastUpdate time.Time // When the latest update was received
}

// Model represents the TUI application state. It is only mutated from the
// bubbletea event loop.
type Model struct {
	rows     []*ItemRow
	line     string // Last composed line that was printed
	prints   int
	started  time.Time
	width    int
	height   int
	quitting bool
	finished bool  // The engine has stopped
	err      error // Error the engine stopped with, if any

	viewport viewport.Model
	keys     KeyMap
	styles   *Styles
}

// KeyMap holds the key bindings the model reacts to. Scrolling keys are handled
// by the viewport.
type KeyMap struct {
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title   lipgloss.Style
	Line    lipgloss.Style
	Empty   lipgloss.Style
	Header  lipgloss.Style
	Name    lipgloss.Style
	Policy  lipgloss.Style
	Text    lipgloss.Style
	Stale   lipgloss.Style
	Success lipgloss.Style
	Failed  lipgloss.Style
	Help    lipgloss.Style
	Border  lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1),
		Line: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")),
		Empty: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("7")),
		Name: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")),
		Policy: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")),
		Stale: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginTop(1),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1),
	}
}

// NewModel creates a new TUI model with one row per spec, ordered by position.
func NewModel(specs []item.Spec) *Model {
	rows := make([]*ItemRow, len(specs))

	for _, s := range specs {
		if s.Position < 0 || s.Position >= len(rows) {
			continue
		}

		rows[s.Position] = &ItemRow{
			Name:   s.Name,
			Policy: s.Policy.String(),
		}
	}

	for i, r := range rows {
		if r == nil {
			rows[i] = &ItemRow{Name: "?"}
		}
	}

	return &Model{
		rows:     rows,
		started:  time.Now(),
		width:    defaultWidth,
		height:   defaultHeight,
		viewport: viewport.New(defaultWidth, defaultHeight),
		keys:     DefaultKeyMap(),
		styles:   NewStyles(),
	}
}

// Rows returns the current item rows in position order.
func (m *Model) Rows() []ItemRow {
	out := make([]ItemRow, len(m.rows))
	for i, r := range m.rows {
		out[i] = *r
	}

	return out
}

// Line returns the last printed line.
func (m *Model) Line() string {
	return m.line
}

// Prints returns how many lines have been printed.
func (m *Model) Prints() int {
	return m.prints
}

// Finished reports whether the engine has stopped, and the error it stopped with.
func (m *Model) Finished() (bool, error) {
	return m.finished, m.err
}

// getViewportHeight returns the available height for the item table.
func (m *Model) getViewportHeight() int {
	// Title (2 lines), the bordered line (3 lines), the border around the table (2 lines),
	// status (2 lines) and help (2 lines).
	reservedLines := 11
	if m.height <= reservedLines {
		return 1
	}

	return m.height - reservedLines
}

func (m *Model) updateViewportSize() {
	// Border and padding take two columns on each side.
	w := m.width - 4 //nolint:mnd
	if w < minViewportWidth {
		w = minViewportWidth
	}

	m.viewport.Width = w
	m.viewport.Height = m.getViewportHeight()
}
