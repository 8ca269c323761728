package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/fetch"
	"github.com/opengovern/frontend/internal/hooks"
	"github.com/opengovern/frontend/internal/tui/detail"
	listview "github.com/opengovern/frontend/internal/tui/list"
)

const controlsListHeight = 15

// BenchmarksHooks are the data dependencies of the compliance dashboard.
type BenchmarksHooks struct {
	Summary *hooks.BenchmarksSummaryHook

	// Trigger must be built with auto-execute off; the dashboard only runs it
	// through ExecuteNowWith.
	Trigger *hooks.TriggerComplianceHook

	// Controls opens the controls hook the first time a benchmark is entered.
	Controls detail.OpenFunc[api.ControlsSummaryRequest, api.ControlsSummaryResponse]
}

// BenchmarksModel is the interactive compliance dashboard: a benchmark list
// whose detail view loads the benchmark's controls lazily.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type BenchmarksModel struct {
	ctx   context.Context
	hooks BenchmarksHooks

	state         ViewState
	benchmarks    []api.BenchmarkSummary
	selected      api.BenchmarkSummary
	refreshing    bool
	triggerStatus string
	err           error

	table        table.Model
	controls     *detail.Model[api.ControlsSummaryRequest, api.ControlsSummaryResponse]
	controlsList *listview.Model[api.ControlSummary]
	loading      *LoadingState
	width        int
	height       int
}

// NewBenchmarksModel returns the dashboard over h.
func NewBenchmarksModel(ctx context.Context, h BenchmarksHooks) BenchmarksModel {
	list := listview.New(nil, controlsListHeight, renderControlRow)
	m := BenchmarksModel{
		ctx:          ctx,
		hooks:        h,
		state:        ViewStateLoading,
		controlsList: list,
		loading:      NewLoadingState(),
		width:        defaultWidth,
		height:       defaultHeight,
	}
	m.controls = detail.New("Controls", h.Controls, func(resp api.ControlsSummaryResponse, _ int) string {
		return renderControlsHeader(resp) + "\n" + list.View()
	})
	m.loading.SetMessage("Loading benchmarks...")
	m.table = m.buildTable()
	return m
}

// Init starts the spinner and the state subscriptions.
func (m BenchmarksModel) Init() tea.Cmd {
	return tea.Batch(m.loading.Init(), WaitForState(m.hooks.Summary), WaitForState(m.hooks.Trigger))
}

// Refresh re-runs the benchmark summary. It is safe to call from any goroutine.
func (m BenchmarksModel) Refresh() {
	m.hooks.Summary.ExecuteNow()
}

// Close tears down every hook the dashboard owns.
func (m BenchmarksModel) Close() {
	m.hooks.Summary.Close()
	m.hooks.Trigger.Close()
	m.controls.Close()
}

// Update handles messages (Bubble Tea interface).
func (m BenchmarksModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.controls.SetWidth(msg.Width - borderPadding)
		m.controlsList.SetHeight(max(msg.Height-summaryHeight-2*borderPadding, minHeight))
		m.table = m.buildTable()
		return m, nil
	case StateMsg[api.BenchmarksSummaryResponse]:
		return m.handleSummary(msg)
	case StateMsg[api.TriggerResult]:
		return m.handleTrigger(msg)
	case StateMsg[api.ControlsSummaryResponse]:
		cmd := m.controls.Update(msg)
		if resp := m.controls.Response(); resp != nil {
			m.controlsList.SetItems(resp.Controls)
		}
		return m, cmd
	case spinner.TickMsg:
		return m, tea.Batch(m.loading.Update(msg), m.controls.Update(msg))
	case tea.KeyMsg:
		if m.state == ViewStateDetail {
			return m.handleDetailKey(msg)
		}
		return m.handleListKey(msg)
	}
	return m, nil
}

func (m BenchmarksModel) handleSummary(msg StateMsg[api.BenchmarksSummaryResponse]) (tea.Model, tea.Cmd) {
	if msg.Closed {
		return m, nil
	}
	st := msg.State
	cmds := []tea.Cmd{WaitForState(m.hooks.Summary)}

	switch {
	case st.Error != nil:
		m.err = st.Error
		m.refreshing = false
		if m.state != ViewStateDetail {
			m.state = ViewStateError
		}
	case st.IsLoading:
		m.refreshing = true
		if !st.HasResponse() && m.state == ViewStateError {
			m.state = ViewStateLoading
			cmds = append(cmds, m.loading.Init())
		}
	case st.HasResponse():
		m.benchmarks = st.Response.BenchmarkSummary
		m.err = nil
		m.refreshing = false
		if m.state != ViewStateDetail {
			m.state = ViewStateList
		}
		m.table = m.buildTable()
	}
	return m, tea.Batch(cmds...)
}

func (m BenchmarksModel) handleTrigger(msg StateMsg[api.TriggerResult]) (tea.Model, tea.Cmd) {
	if msg.Closed {
		return m, nil
	}
	st := msg.State
	switch {
	case st.Error != nil:
		m.triggerStatus = CriticalStyle.Render(fmt.Sprintf("Trigger failed: %v", st.Error))
	case st.IsLoading:
		m.triggerStatus = InfoStyle.Render("Triggering evaluation...")
	case st.HasResponse():
		m.triggerStatus = OKStyle.Render("Evaluation triggered")
	}
	return m, WaitForState(m.hooks.Trigger)
}

func (m BenchmarksModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit, keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyR:
		m.hooks.Summary.ExecuteNow()
		return m, nil
	case keyEnter:
		b, ok := m.cursorBenchmark()
		if !ok {
			return m, nil
		}
		m.selected = b
		m.state = ViewStateDetail
		m.controls.SetTitle("Controls of " + b.Title)
		m.controlsList.Select(0)
		return m, m.controls.Load(api.ControlsSummaryRequest{BenchmarkID: b.ID})
	case keyT:
		if b, ok := m.cursorBenchmark(); ok {
			m.trigger(b)
		}
		return m, nil
	}

	if m.state == ViewStateList {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m BenchmarksModel) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit, keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyEsc:
		m.state = ViewStateList
		if m.err != nil && len(m.benchmarks) == 0 {
			m.state = ViewStateError
		}
		return m, nil
	case keyT:
		m.trigger(m.selected)
		return m, nil
	case keyR:
		return m, m.controls.Update(msg)
	}
	m.controlsList.Update(msg)
	return m, nil
}

// trigger starts an evaluation of b without changing the trigger hook's baseline.
func (m *BenchmarksModel) trigger(b api.BenchmarkSummary) {
	base := m.hooks.Trigger.Baseline()
	m.hooks.Trigger.ExecuteNowWith(fetch.Descriptor[api.TriggerComplianceRequest]{
		Payload: api.TriggerComplianceRequest{BenchmarkIDs: []string{b.ID}},
		Options: base.Options,
	})
}

func (m BenchmarksModel) cursorBenchmark() (api.BenchmarkSummary, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.benchmarks) {
		return api.BenchmarkSummary{}, false
	}
	return m.benchmarks[i], true
}

func (m BenchmarksModel) buildTable() table.Model {
	columns := []table.Column{
		{Title: "Benchmark", Width: maxNameLen},
		{Title: "Connectors", Width: 14}, //nolint:mnd // Column width.
		{Title: "Pass rate", Width: 9},   //nolint:mnd // Column width.
		{Title: "Passed", Width: 9},      //nolint:mnd // Column width.
		{Title: "Last job", Width: 12},   //nolint:mnd // Column width.
	}

	rows := make([]table.Row, len(m.benchmarks))
	for i, b := range m.benchmarks {
		total := b.ControlsSeverityStatus.Total
		rows[i] = table.Row{
			truncate(b.Title),
			strings.Join(b.Connectors, ","),
			fmt.Sprintf("%.1f%%", b.PassRate()*100), //nolint:mnd // Percentage.
			fmt.Sprintf("%d/%d", total.PassedCount, total.TotalCount),
			b.LastJobStatus,
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-summaryHeight, minHeight)),
	)
	s := table.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	t.SetStyles(s)
	return t
}
