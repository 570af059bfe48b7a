// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/barline/internal/update"
)

const (
	minStatusBarAvailableHeight = 10
	minViewportWidth            = 20
	nameColumnWidth             = 16
	policyColumnWidth           = 16
	countColumnWidth            = 8
	ellipsis                    = "…"
	updateAgeRounding           = time.Second
	refreshInterval             = time.Second
)

// UpdateMsg reports an update the line printer applied.
type UpdateMsg struct {
	Update update.Update
	At     time.Time
}

// PrintedMsg reports a line the printer wrote.
type PrintedMsg struct {
	Line string
}

// FinishedMsg indicates that the engine has stopped.
type FinishedMsg struct {
	Err error
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return tick()
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	m.viewport, cmd = m.viewport.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}

		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewportSize()

		return m, cmd

	case UpdateMsg:
		m.applyUpdate(msg)
		return m, cmd

	case PrintedMsg:
		m.line = msg.Line
		m.prints++

		return m, cmd

	case FinishedMsg:
		m.finished = true
		m.err = msg.Err

		return m, cmd

	case tickMsg:
		// Re-render so update ages stay current.
		return m, tea.Batch(cmd, tick())
	}

	return m, cmd
}

func (m *Model) applyUpdate(msg UpdateMsg) {
	pos := msg.Update.Position
	if pos < 0 || pos >= len(m.rows) {
		return
	}

	r := m.rows[pos]
	r.Text = msg.Update.Message
	r.Updates++
	r.LastUpdate = msg.At
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	m.viewport.SetContent(m.renderTable(time.Now()))

	var view strings.Builder

	view.WriteString(m.styles.Title.Render("barline preview"))
	view.WriteString("\n")

	line := m.styles.Line.Render(m.line)
	if m.line == "" {
		line = m.styles.Empty.Render("(nothing printed yet)")
	}

	view.WriteString(m.styles.Border.Render(line))
	view.WriteString("\n")
	view.WriteString(m.styles.Border.Render(m.viewport.View()))

	if m.height > minStatusBarAvailableHeight {
		view.WriteString("\n\n")
		view.WriteString(m.renderStatusBar(time.Now()))
		view.WriteString("\n")
		view.WriteString(m.styles.Help.Render("↑/↓ or j/k to scroll, " + m.keys.Quit.Help().Key + " to " + m.keys.Quit.Help().Desc))
	}

	return view.String()
}

// renderTable renders one row per item in position order.
func (m *Model) renderTable(now time.Time) string {
	var b strings.Builder

	b.WriteString(m.styles.Header.Render(fmt.Sprintf("%-3s %-*s %-*s %*s  %s",
		"#", nameColumnWidth, "item", policyColumnWidth, "policy", countColumnWidth, "updates", "text")))
	b.WriteString("\n")

	textWidth := m.viewport.Width - 3 - nameColumnWidth - policyColumnWidth - countColumnWidth - 5 //nolint:mnd // separators
	if textWidth < len(ellipsis) {
		textWidth = len(ellipsis)
	}

	for i, r := range m.rows {
		b.WriteString(fmt.Sprintf("%-3d ", i))
		b.WriteString(m.styles.Name.Render(pad(truncate(r.Name, nameColumnWidth), nameColumnWidth)))
		b.WriteString(" ")
		b.WriteString(m.styles.Policy.Render(pad(truncate(r.Policy, policyColumnWidth), policyColumnWidth)))
		b.WriteString(fmt.Sprintf(" %*d  ", countColumnWidth, r.Updates))

		switch {
		case r.Updates == 0:
			b.WriteString(m.styles.Stale.Render("waiting"))
		default:
			text := truncate(r.Text, textWidth)
			b.WriteString(m.styles.Text.Render(text))
			b.WriteString(m.styles.Stale.Render(fmt.Sprintf(" (%v ago)", now.Sub(r.LastUpdate).Round(updateAgeRounding))))
		}

		b.WriteString("\n")
	}

	return b.String()
}

func (m *Model) renderStatusBar(now time.Time) string {
	status := fmt.Sprintf("items: %d  lines printed: %d  running for %v",
		len(m.rows), m.prints, now.Sub(m.started).Round(updateAgeRounding))

	if !m.finished {
		return status
	}

	if m.err != nil {
		return status + "  " + m.styles.Failed.Render("stopped: "+m.err.Error())
	}

	return status + "  " + m.styles.Success.Render("all items finished")
}

// truncate shortens s to at most width runes, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}

	e := []rune(ellipsis)
	if width <= len(e) {
		return string(r[:width])
	}

	return string(r[:width-len(e)]) + ellipsis
}

func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}

	return s + strings.Repeat(" ", width-n)
}
