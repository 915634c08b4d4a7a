package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette, readable on dark and light terminals
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Bold(true)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// Detection states
var (
	ErrorType = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Clean = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Suggestion = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	Command = lipgloss.NewStyle().
		Foreground(Secondary)
)

// Components
var (
	MeterFilled = lipgloss.NewStyle().
			Background(Secondary)

	MeterEmpty = lipgloss.NewStyle().
			Background(Border)

	MeterBelow = lipgloss.NewStyle().
			Background(Accent)

	MeterMark = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)
)
