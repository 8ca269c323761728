package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// View renders the dashboard (Bubble Tea interface).
func (m SpendModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateLoading:
		return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.loading.View())
	case ViewStateError:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			CriticalStyle.Render(fmt.Sprintf("Error: %v", m.err)),
			SubtleStyle.Render("Press 'r' to retry, ←/→ to change the window, 'q' to quit"))
	case ViewStateList, ViewStateDetail:
		return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.table.View(), m.renderStatusBar())
	default:
		return ""
	}
}

func (m SpendModel) renderHeader() string {
	header := HeaderStyle.Render("SPEND BY CONNECTION") + "  " + LabelStyle.Render(m.window.Label())
	if m.refreshing && m.state == ViewStateList {
		header += "  " + InfoStyle.Render("refreshing...")
	}
	return header
}

func (m SpendModel) renderStatusBar() string {
	total := LabelStyle.Render("Total: ") + ValueStyle.Render(fmt.Sprintf("$%.2f", m.total))
	keys := SubtleStyle.Render(fmt.Sprintf(
		"%d connections | ←/→ window, 'g' granularity, 'r' refresh, 'q' quit", len(m.rows)))
	return total + "  " + keys
}
