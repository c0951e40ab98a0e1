package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Lines taken by the title, tab bar, metadata and footer, plus the body border.
const chromeHeight = 7

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-4, 1)
		m.viewport.Height = max(msg.Height-chromeHeight, 1)
		if !m.ready {
			m.ready = true
			m.showCurrent()
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Accept):
			m.accepted = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Next):
			if len(m.entries) > 0 {
				m.cursor = (m.cursor + 1) % len(m.entries)
				m.showCurrent()
			}
			return m, nil

		case key.Matches(msg, m.keys.Prev):
			if len(m.entries) > 0 {
				m.cursor = (m.cursor - 1 + len(m.entries)) % len(m.entries)
				m.showCurrent()
			}
			return m, nil

		case key.Matches(msg, m.keys.Top):
			m.viewport.GotoTop()
			return m, nil

		case key.Matches(msg, m.keys.Bottom):
			m.viewport.GotoBottom()
			return m, nil

		case key.Matches(msg, m.keys.Down):
			m.viewport.LineDown(1)
			return m, nil

		case key.Matches(msg, m.keys.Up):
			m.viewport.LineUp(1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// showCurrent loads the selected rule into the viewport, scrolled to the top.
func (m *Model) showCurrent() {
	if len(m.contents) == 0 {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(m.contents[m.cursor])
	m.viewport.GotoTop()
}
