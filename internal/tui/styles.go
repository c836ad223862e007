package tui

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	accentColor = lipgloss.Color("#0EA5E9") // Sky
	okColor     = lipgloss.Color("#22C55E") // Green
	mutedColor  = lipgloss.Color("#64748B") // Slate
	errorColor  = lipgloss.Color("#F43F5E") // Rose
	warnColor   = lipgloss.Color("#EAB308") // Yellow
)

// Styles
var (
	appStyle = lipgloss.NewStyle().Padding(1, 2)

	// Title bar
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0F172A")).
			Background(accentColor).
			Padding(0, 1)

	// Repository rows
	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1F5F9"))

	dimStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(1, 0, 0, 0)

	// Badges
	successBadge = lipgloss.NewStyle().
			Foreground(okColor).
			Bold(true)

	errorBadge = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	runningBadge = lipgloss.NewStyle().
			Foreground(warnColor).
			Bold(true)

	// Per-repository outcomes
	pushedStyle = lipgloss.NewStyle().
			Foreground(okColor)

	failedStyle = lipgloss.NewStyle().
			Foreground(errorColor)
)
