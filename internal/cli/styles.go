package cli

import "github.com/charmbracelet/lipgloss"

// Styles for command output on a terminal. Change notices use the styles in
// package devenv.
var (
	StyleLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")) // Blue bold
	StyleKey   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))            // Cyan
	StyleDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))             // Gray
)
