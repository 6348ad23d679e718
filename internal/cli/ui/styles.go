package ui

import "github.com/charmbracelet/lipgloss"

// Palette shared by the one-shot commands and the chat TUI
const (
	ColorAccent  = lipgloss.Color("86")  // Cyan
	ColorMuted   = lipgloss.Color("245") // Gray
	ColorUser    = lipgloss.Color("39")  // Blue
	ColorSuccess = lipgloss.Color("42")
	ColorError   = lipgloss.Color("196")
	ColorValue   = lipgloss.Color("229") // Yellow
	ColorPink    = lipgloss.Color("212")
)

// Styles defines all lipgloss styles used in the CLI
var Styles = struct {
	Bold       lipgloss.Style
	Muted      lipgloss.Style
	Accent     lipgloss.Style
	Value      lipgloss.Style
	Highlight  lipgloss.Style
	SuccessBox lipgloss.Style
	ErrorBox   lipgloss.Style
	Document   lipgloss.Style
	ErrorText  lipgloss.Style
}{
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorMuted),
	Accent:    lipgloss.NewStyle().Foreground(ColorAccent).Bold(true),
	Value:     lipgloss.NewStyle().Foreground(ColorValue),
	Highlight: lipgloss.NewStyle().Foreground(ColorPink).Bold(true),

	SuccessBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSuccess).
		Padding(0, 1).
		Width(60),

	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1).
		Width(60),

	Document: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorAccent).
		Padding(0, 1),

	ErrorText: lipgloss.NewStyle().Foreground(ColorError),
}
