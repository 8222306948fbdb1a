// Package ui renders svcwiki output for the terminal.
package ui

import "github.com/charmbracelet/lipgloss"

// This file centralizes the lipgloss styles used by the CLI.

var (
	// Headers
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF")).
			Background(lipgloss.Color("#7D56F4")). // Brand Color
			Bold(true).
			Padding(0, 1)

	tableBorderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("63")) // Purple-ish

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("212")).
				Bold(true).
				Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	// Maturity levels
	blockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)
	partialStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // Orange
	compliantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")). // Green
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// Header renders a section title.
func Header(s string) string {
	return headerStyle.Render(s)
}

// Muted renders secondary text.
func Muted(s string) string {
	return mutedStyle.Render(s)
}
