package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ohare93/rulegen/internal/rules"
)

// Consistent color scheme for write actions across commands
var (
	StyleCreate    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // Green - new file
	StyleUpdate    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // Yellow - rewritten
	StyleSkip      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // Red - left alone
	StyleRemove    = lipgloss.NewStyle().Foreground(lipgloss.Color("13")) // Magenta - deleted
	StyleUnchanged = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // Gray

	// UI elements
	StyleManager   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")) // Cyan
	StyleDim       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // Gray
	StyleHighlight = lipgloss.NewStyle().Bold(true)
	StyleWarning   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// GetActionStyle returns the style for a write action
func GetActionStyle(action rules.Action) lipgloss.Style {
	switch action {
	case rules.ActionCreate:
		return StyleCreate
	case rules.ActionUpdate:
		return StyleUpdate
	case rules.ActionSkip:
		return StyleSkip
	case rules.ActionRemove:
		return StyleRemove
	default:
		return StyleUnchanged
	}
}
