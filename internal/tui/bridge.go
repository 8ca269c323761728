package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/opengovern/frontend/internal/fetch"
	"github.com/opengovern/frontend/internal/tui/detail"
)

// StateMsg carries one published hook state into a dashboard.
type StateMsg[R any] = detail.StateMsg[R]

// WaitForState returns a command delivering h's next state as a StateMsg.
// Models re-issue it after every StateMsg they receive.
func WaitForState[P, R any](h *fetch.Hook[P, R]) tea.Cmd {
	return detail.Watch(h)
}
