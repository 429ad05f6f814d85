package ui

import "github.com/charmbracelet/lipgloss"

// Palette and shared styles for every view. Kept in one place so the views
// stay free of raw color codes.
var (
	colorAccent  = lipgloss.Color("#7D56F4")
	colorSubtle  = lipgloss.Color("241")
	colorError   = lipgloss.Color("#FF5F5F")
	colorSuccess = lipgloss.Color("#5FD787")
	colorTarget  = lipgloss.Color("#87D7FF")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginBottom(1)

	subtleStyle = lipgloss.NewStyle().Foreground(colorSubtle)

	errorStyle = lipgloss.NewStyle().Foreground(colorError)

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)

	focusedStyle = lipgloss.NewStyle().Foreground(colorAccent)

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1).
			Width(30)

	columnFocusStyle = columnStyle.
				BorderForeground(colorAccent)

	columnTargetStyle = columnStyle.
				BorderForeground(colorTarget)

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	draggingRowStyle = lipgloss.NewStyle().
				Foreground(colorTarget).
				Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorSubtle).
			MarginTop(1)
)
