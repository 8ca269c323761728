package tui

import "github.com/charmbracelet/lipgloss"

// Layout defaults used before the first WindowSizeMsg arrives.
const (
	defaultWidth  = 100
	defaultHeight = 30
	minHeight     = 5
	summaryHeight = 6
	borderPadding = 2
)

// Key bindings shared by the dashboards.
const (
	keyQuit  = "q"
	keyCtrlC = "ctrl+c"
	keyEnter = "enter"
	keyEsc   = "esc"
	keyLeft  = "left"
	keyRight = "right"
	keyH     = "h"
	keyL     = "l"
	keyG     = "g"
	keyR     = "r"
	keyT     = "t"
)

// Colors.
var (
	colorAccent   = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"}
	colorSubtle   = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	colorOK       = lipgloss.AdaptiveColor{Light: "#1E8A3E", Dark: "#3FD16B"}
	colorWarning  = lipgloss.AdaptiveColor{Light: "#B7791F", Dark: "#F6C453"}
	colorCritical = lipgloss.AdaptiveColor{Light: "#C53030", Dark: "#F56565"}
)

// Styles.
var (
	HeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	LabelStyle    = lipgloss.NewStyle().Foreground(colorSubtle)
	ValueStyle    = lipgloss.NewStyle().Bold(true)
	SubtleStyle   = lipgloss.NewStyle().Foreground(colorSubtle)
	InfoStyle     = lipgloss.NewStyle().Foreground(colorAccent)
	OKStyle       = lipgloss.NewStyle().Foreground(colorOK)
	WarningStyle  = lipgloss.NewStyle().Foreground(colorWarning)
	CriticalStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCritical)
	BoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1)

	TableHeaderStyle   = lipgloss.NewStyle().Bold(true).BorderBottom(true).BorderForeground(colorSubtle)
	TableSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
)

// PassRateStyle picks a style for a compliance pass rate in [0,1].
func PassRateStyle(rate float64) lipgloss.Style {
	switch {
	case rate >= 0.9: //nolint:mnd // Threshold.
		return OKStyle
	case rate >= 0.6: //nolint:mnd // Threshold.
		return WarningStyle
	default:
		return CriticalStyle
	}
}
