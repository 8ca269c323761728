package detail

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/opengovern/frontend/internal/fetch"
)

// StateMsg carries one published hook state into a Bubble Tea program.
// Closed is set once the hook has been torn down; no further Watch is needed.
type StateMsg[R any] struct {
	State  fetch.State[R]
	Closed bool
}

// Watch returns a command that blocks until h publishes its next state.
func Watch[P, R any](h *fetch.Hook[P, R]) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-h.Updates()
		return StateMsg[R]{State: st, Closed: !ok}
	}
}
