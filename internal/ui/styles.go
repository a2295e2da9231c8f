package ui

import "github.com/charmbracelet/lipgloss"

// Color palette - using ANSI 256 colors for broad terminal support
var (
	ColorCyan    = lipgloss.Color("6")
	ColorYellow  = lipgloss.Color("3")
	ColorRed     = lipgloss.Color("1")
	ColorGreen   = lipgloss.Color("2")
	ColorBlue    = lipgloss.Color("4")
	ColorMagenta = lipgloss.Color("5")
	ColorGray    = lipgloss.Color("8")
	ColorWhite   = lipgloss.Color("15")
	ColorBlack   = lipgloss.Color("0")
)

// Text styles
var (
	// Timestamps in job summaries
	TimestampStyle = lipgloss.NewStyle().Foreground(ColorCyan)

	// Status messages ("Submitting search job...", "Loading metadata...")
	StatusStyle = lipgloss.NewStyle().Foreground(ColorGray).Italic(true)

	// Error messages
	ErrorStyle = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)

	// Warning messages
	WarningStyle = lipgloss.NewStyle().Foreground(ColorYellow)

	// Success messages
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorGreen)

	// Muted/secondary text
	MutedStyle = lipgloss.NewStyle().Foreground(ColorGray)

	// Labels (field names, headers)
	LabelStyle = lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)

	// Values (field values)
	ValueStyle = lipgloss.NewStyle().Foreground(ColorWhite)

	// Provenance tags in connection reports
	CacheStyle   = lipgloss.NewStyle().Foreground(ColorMagenta)
	NetworkStyle = lipgloss.NewStyle().Foreground(ColorBlue)
)

// Progress bar styles
var (
	ProgressFullStyle  = lipgloss.NewStyle().Foreground(ColorGreen)
	ProgressEmptyStyle = lipgloss.NewStyle().Foreground(ColorGray)
)

// Box styles for sections
var (
	SectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorCyan).
				MarginBottom(1)

	InfoBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	WarningBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorYellow).
			Padding(0, 1)

	ErrorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorRed).
			Padding(0, 1)
)
