package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/stop/internal/model"
)

// Color constants for the dashboard palette.
var (
	colorGreen      = lipgloss.Color("#10b981")
	colorYellow     = lipgloss.Color("#f59e0b")
	colorRed        = lipgloss.Color("#ef4444")
	colorGray       = lipgloss.Color("#6b7280")
	colorBlue       = lipgloss.Color("#3b82f6")
	colorCyan       = lipgloss.Color("#06b6d4")
	colorPurple     = lipgloss.Color("#8b5cf6")
	colorOrange     = lipgloss.Color("#f97316")
	colorWhite      = lipgloss.Color("#f8fafc")
	colorDark       = lipgloss.Color("#1e293b")
	colorAlt        = lipgloss.Color("#0f172a")
	colorSelectedBg = lipgloss.Color("#334155")
)

// State styles, used for the refresh indicator in the header.
var (
	StyleStateReady    = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	StyleStateFetching = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	StyleStateDegraded = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	StyleStateIdle     = lipgloss.NewStyle().Foreground(colorGray)
)

// StyleHeader is the full-width dark header bar.
var StyleHeader = lipgloss.NewStyle().
	Background(colorDark).
	Foreground(colorWhite).
	Padding(0, 1)

// StyleOverviewCard is the card used by the home overview bar.
var StyleOverviewCard = lipgloss.NewStyle().
	Background(colorAlt).
	Foreground(colorWhite).
	Padding(0, 1).
	Margin(0).
	Align(lipgloss.Center)

// StyleSectionTitle labels a table or card group.
var StyleSectionTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

// Utility styles.
var (
	StyleError = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	StyleDim   = lipgloss.NewStyle().Foreground(colorGray)
)

// Named color styles for cell and card coloring.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(colorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(colorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(colorRed)
)

// StateStyle returns the header style for a refresh state.
func StateStyle(s model.ViewState) lipgloss.Style {
	switch s {
	case model.StateReady:
		return StyleStateReady
	case model.StateFetching:
		return StyleStateFetching
	case model.StateDegraded:
		return StyleStateDegraded
	default:
		return StyleStateIdle
	}
}
