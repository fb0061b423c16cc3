package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette — muted terminal tones, easy on the eyes for long drills
var (
	Primary   = lipgloss.Color("#7AA2F7") // Blue
	Secondary = lipgloss.Color("#9ECE6A") // Green
	Accent    = lipgloss.Color("#E0AF68") // Amber
	Success   = lipgloss.Color("#9ECE6A") // Green
	Error     = lipgloss.Color("#F7768E") // Red
	Text      = lipgloss.Color("#C0CAF5") // Light Blue-Grey
	TextDim   = lipgloss.Color("#565F89") // Dim Slate
	BgDark    = lipgloss.Color("#1A1B26") // Near Black
	BgCard    = lipgloss.Color("#24283B") // Dark Blue-Grey
	Border    = lipgloss.Color("#414868") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Header = lipgloss.NewStyle().
		Background(BgCard).
		Padding(0, 2)

	Footer = lipgloss.NewStyle().
		Background(BgCard).
		Padding(0, 2)

	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)
