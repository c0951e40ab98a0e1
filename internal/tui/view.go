package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting || m.accepted {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	if len(m.entries) == 0 {
		b.WriteString("\nNo rules to preview.\n\n")
		b.WriteString(m.renderHelp())
		return b.String()
	}

	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderMeta())
	b.WriteString("\n")
	b.WriteString(bodyStyle.Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(m.entries))
	for i, e := range m.entries {
		label := strings.TrimSuffix(e.File.Path, ".mdc")
		if i == m.cursor {
			tabs[i] = activeTabStyle.Render(label)
		} else {
			tabs[i] = tabStyle.Render(label)
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if m.width > 0 {
		row = lipgloss.NewStyle().MaxWidth(m.width).Render(row)
	}
	return row
}

func (m Model) renderMeta() string {
	e := m.entries[m.cursor]

	scope := "always applied"
	if !e.File.Header.AlwaysApply {
		scope = "globs " + e.File.Header.Globs
	}

	status := e.Status
	if status == "" {
		status = "unchanged"
	}

	return fmt.Sprintf("%s  %s  %s",
		metaStyle.Render(e.File.Path),
		helpStyle.Render(scope),
		statusStyle(status).Render(status))
}

func (m Model) renderHelp() string {
	parts := make([]string, 0, len(m.keys.helpBindings())+1)
	for _, b := range m.keys.helpBindings() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	if len(m.entries) > 0 {
		parts = append(parts, messageStyle.Render(fmt.Sprintf("%d/%d", m.cursor+1, len(m.entries))))
	}
	return helpStyle.Render(strings.Join(parts, " | "))
}
