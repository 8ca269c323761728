package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opengovern/frontend/internal/fetch"
)

// Status is the lifecycle of a pane.
type Status int

// Pane statuses.
const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

// OpenFunc creates the hook backing a pane for its first payload.
type OpenFunc[P, R any] func(payload P) *fetch.Hook[P, R]

// RenderFunc renders a loaded response into the given width.
type RenderFunc[R any] func(resp R, width int) string

//nolint:gochecknoglobals // Pane styles.
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"})
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#C53030", Dark: "#F56565"})
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"})
)

// Model is a lazily loaded pane backed by one hook.
type Model[P, R any] struct {
	title   string
	open    OpenFunc[P, R]
	render  RenderFunc[R]
	hook    *fetch.Hook[P, R]
	state   fetch.State[R]
	spinner spinner.Model
	width   int
}

// New returns an idle pane. Nothing is fetched until Load.
func New[P, R any](title string, open OpenFunc[P, R], render RenderFunc[R]) *Model[P, R] {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &Model[P, R]{
		title:   title,
		open:    open,
		render:  render,
		spinner: sp,
		width:   80, //nolint:mnd // Default pane width.
	}
}

// Load shows payload in the pane. The first call creates the hook; later
// calls re-evaluate it, which only dispatches when payload changed.
func (m *Model[P, R]) Load(payload P) tea.Cmd {
	if m.hook == nil {
		m.hook = m.open(payload)
		m.state = m.hook.State()
		return tea.Batch(Watch(m.hook), m.spinner.Tick)
	}
	if m.hook.UpdatePayload(payload) {
		m.state = m.hook.State()
		return m.spinner.Tick
	}
	return nil
}

// SetTitle replaces the pane heading.
func (m *Model[P, R]) SetTitle(title string) {
	m.title = title
}

// SetWidth sets the render width.
func (m *Model[P, R]) SetWidth(width int) {
	if width > 0 {
		m.width = width
	}
}

// Update consumes hook states, spinner ticks, and the retry key.
func (m *Model[P, R]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case StateMsg[R]:
		if msg.Closed {
			return nil
		}
		m.state = msg.State
		return Watch(m.hook)
	case spinner.TickMsg:
		if m.Status() != StatusLoading {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	case tea.KeyMsg:
		if msg.String() == "r" && m.Status() == StatusFailed {
			m.hook.ExecuteNow()
			return m.spinner.Tick
		}
	}
	return nil
}

// Status reports what the pane is showing.
func (m *Model[P, R]) Status() Status {
	switch {
	case m.hook == nil:
		return StatusIdle
	case m.state.Error != nil:
		return StatusFailed
	case m.state.IsLoading:
		return StatusLoading
	case m.state.HasResponse():
		return StatusReady
	default:
		return StatusIdle
	}
}

// Response returns the loaded response, or nil.
func (m *Model[P, R]) Response() *R {
	return m.state.Response
}

// View renders the pane.
func (m *Model[P, R]) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	switch m.Status() {
	case StatusIdle:
		b.WriteString(hintStyle.Render("Nothing selected"))
	case StatusLoading:
		b.WriteString(m.spinner.View() + " Loading...")
	case StatusFailed:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.state.Error)))
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("Press 'r' to retry"))
	case StatusReady:
		b.WriteString(m.render(*m.state.Response, m.width))
	}
	return b.String()
}

// Close tears down the hook, if one was opened.
func (m *Model[P, R]) Close() {
	if m.hook != nil {
		m.hook.Close()
	}
}
