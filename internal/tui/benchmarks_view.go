package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/opengovern/frontend/internal/api"
)

// View renders the dashboard (Bubble Tea interface).
func (m BenchmarksModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateLoading:
		return lipgloss.JoinVertical(lipgloss.Left, HeaderStyle.Render("COMPLIANCE BENCHMARKS"), m.loading.View())
	case ViewStateError:
		return lipgloss.JoinVertical(lipgloss.Left,
			HeaderStyle.Render("COMPLIANCE BENCHMARKS"),
			CriticalStyle.Render(fmt.Sprintf("Error: %v", m.err)),
			SubtleStyle.Render("Press 'r' to retry, 'q' to quit"))
	case ViewStateDetail:
		return m.renderDetail()
	case ViewStateList:
		return m.renderList()
	default:
		return ""
	}
}

func (m BenchmarksModel) renderList() string {
	header := HeaderStyle.Render("COMPLIANCE BENCHMARKS")
	if m.refreshing {
		header += "  " + InfoStyle.Render("refreshing...")
	}
	sections := []string{header, m.table.View()}
	if m.triggerStatus != "" {
		sections = append(sections, m.triggerStatus)
	}
	sections = append(sections, SubtleStyle.Render(fmt.Sprintf(
		"%d benchmarks | 'enter' controls, 't' trigger evaluation, 'r' refresh, 'q' quit", len(m.benchmarks))))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m BenchmarksModel) renderDetail() string {
	b := m.selected
	total := b.ControlsSeverityStatus.Total
	info := LabelStyle.Render("Pass rate: ") +
		PassRateStyle(b.PassRate()).Render(fmt.Sprintf("%.1f%%", b.PassRate()*100)) + //nolint:mnd // Percentage.
		LabelStyle.Render(fmt.Sprintf("  (%d/%d controls)", total.PassedCount, total.TotalCount))

	sections := []string{BoxStyle.Width(m.width - borderPadding).Render(m.controls.View()), info}
	if m.triggerStatus != "" {
		sections = append(sections, m.triggerStatus)
	}
	sections = append(sections, SubtleStyle.Render("↑/↓ scroll, 't' trigger evaluation, 'esc' back, 'q' quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderControlsHeader(resp api.ControlsSummaryResponse) string {
	failed := 0
	for _, c := range resp.Controls {
		if !c.Passed {
			failed++
		}
	}
	return LabelStyle.Render(fmt.Sprintf("%d controls, %d failing", len(resp.Controls), failed))
}

func renderControlRow(c api.ControlSummary, selected bool) string {
	status := OKStyle.Render("PASS")
	if !c.Passed {
		status = CriticalStyle.Render("FAIL")
	}
	title := c.Control.Title
	if title == "" {
		title = c.Control.ID
	}
	line := fmt.Sprintf("%s %-8s %-*s %d/%d resources failing",
		status, c.Control.Severity, maxNameLen, truncate(title), c.FailedResourcesCount, c.TotalResourcesCount)
	if selected {
		return TableSelectedStyle.Render("> " + line)
	}
	return "  " + line
}
