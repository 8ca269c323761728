package tui

import (
	"os"

	"golang.org/x/term"
)

// OutputMode selects how results are presented.
type OutputMode int

// Output modes.
const (
	// OutputModePlain writes unstyled text, for pipes and dumb terminals.
	OutputModePlain OutputMode = iota
	// OutputModeStyled writes lipgloss-styled text without interaction.
	OutputModeStyled
	// OutputModeInteractive runs a Bubble Tea program.
	OutputModeInteractive
)

func (m OutputMode) String() string {
	switch m {
	case OutputModePlain:
		return "plain"
	case OutputModeStyled:
		return "styled"
	case OutputModeInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// isTerminal is swapped in tests.
//
//nolint:gochecknoglobals // Test seam.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}

// DetectOutputMode picks the output mode for stdout. plain forces
// OutputModePlain; noInteractive caps the result at OutputModeStyled; NO_COLOR,
// TERM=dumb and CI degrade as well. forceColor keeps styling on a non-terminal.
func DetectOutputMode(forceColor, noInteractive, plain bool) OutputMode {
	if plain || os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return OutputModePlain
	}
	if !isTerminal() {
		if forceColor {
			return OutputModeStyled
		}
		return OutputModePlain
	}
	if noInteractive || os.Getenv("CI") != "" {
		return OutputModeStyled
	}
	return OutputModeInteractive
}

// TerminalWidth returns the width of stdout, or defaultWidth when unknown.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}
