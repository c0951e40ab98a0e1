// Package tui implements the interactive preview of rendered rule files.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ohare93/rulegen/internal/rules"
)

// Entry is one rule file shown in the preview together with the action a
// write would take for it.
type Entry struct {
	File   rules.RuleFile
	Status string
}

type Model struct {
	title    string
	entries  []Entry
	contents []string

	cursor   int
	viewport viewport.Model
	keys     keyMap

	// UI state
	width    int
	height   int
	ready    bool
	accepted bool
	quitting bool
}

// NewModel builds a preview over entries. Every file is rendered up front
// so that a malformed header fails before the program starts.
func NewModel(title string, entries []Entry) (Model, error) {
	contents := make([]string, len(entries))
	for i, e := range entries {
		c, err := e.File.Content()
		if err != nil {
			return Model{}, fmt.Errorf("failed to render %s: %w", e.File.Path, err)
		}
		contents[i] = c
	}

	return Model{
		title:    title,
		entries:  entries,
		contents: contents,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}, nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Accepted reports whether the user chose to write the previewed rules.
func (m Model) Accepted() bool {
	return m.accepted
}

// Selected returns the path of the rule currently on screen.
func (m Model) Selected() string {
	if len(m.entries) == 0 {
		return ""
	}
	return m.entries[m.cursor].File.Path
}

// Preview runs the full-screen preview and reports whether the user
// accepted the rules.
func Preview(title string, entries []Entry) (bool, error) {
	model, err := NewModel(title, entries)
	if err != nil {
		return false, err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("failed to run preview: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return false, nil
	}
	return m.Accepted(), nil
}
