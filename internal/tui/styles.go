package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Base styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("6"))

	tabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("8"))

	activeTabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Background(lipgloss.Color("240")).
			Bold(true)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	bodyStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	// Status colors
	createColor    = lipgloss.Color("2")  // Green
	updateColor    = lipgloss.Color("3")  // Yellow
	skipColor      = lipgloss.Color("1")  // Red
	unchangedColor = lipgloss.Color("8")  // Gray
	removeColor    = lipgloss.Color("5")  // Magenta

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

// statusStyle returns the color used for a pending write action.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case "create":
		return lipgloss.NewStyle().Foreground(createColor)
	case "update":
		return lipgloss.NewStyle().Foreground(updateColor)
	case "skip":
		return lipgloss.NewStyle().Foreground(skipColor)
	case "remove":
		return lipgloss.NewStyle().Foreground(removeColor)
	default:
		return lipgloss.NewStyle().Foreground(unchangedColor)
	}
}
