package tui

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/hooks"
	"github.com/opengovern/frontend/internal/logging"
)

const dateLayout = "2006-01-02"

// SpendWindow is the time range and bucket size the spend dashboard shows.
type SpendWindow struct {
	Start       time.Time
	End         time.Time
	Granularity string
}

// DefaultSpendWindow is the 30 days ending today, bucketed daily.
func DefaultSpendWindow(now time.Time) SpendWindow {
	end := now.UTC().Truncate(24 * time.Hour) //nolint:mnd // One day.
	return SpendWindow{
		Start:       end.AddDate(0, 0, -30), //nolint:mnd // Default window length.
		End:         end,
		Granularity: api.GranularityDaily,
	}
}

// Shift moves the window by steps window lengths; negative steps go back.
func (w SpendWindow) Shift(steps int) SpendWindow {
	d := w.End.Sub(w.Start) * time.Duration(steps)
	w.Start = w.Start.Add(d)
	w.End = w.End.Add(d)
	return w
}

// NextGranularity cycles daily → monthly → yearly → daily.
func (w SpendWindow) NextGranularity() SpendWindow {
	all := api.Granularities()
	i := slices.Index(all, w.Granularity)
	w.Granularity = all[(i+1)%len(all)]
	return w
}

// Request converts the window to a spend-table query by connection.
func (w SpendWindow) Request() api.SpendTableRequest {
	return api.SpendTableRequest{
		TimeRange:   api.TimeRange{StartTime: w.Start.Unix(), EndTime: w.End.Unix()},
		Granularity: w.Granularity,
		Dimension:   api.DimensionConnection,
	}
}

// Label renders the window for the header.
func (w SpendWindow) Label() string {
	return fmt.Sprintf("%s %s %s (%s)", w.Start.Format(dateLayout), IconArrowRight, w.End.Format(dateLayout), w.Granularity)
}

// SpendModel is the interactive spend-by-connection dashboard. Moving the
// window or changing granularity re-evaluates the hook; a response for an
// older window never replaces the current one.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type SpendModel struct {
	ctx    context.Context
	hook   *hooks.SpendTableHook
	window SpendWindow
	now    func() time.Time

	state      ViewState
	rows       []api.SpendTableRow
	total      float64
	refreshing bool
	err        error

	table   table.Model
	loading *LoadingState
	width   int
	height  int
}

// NewSpendModel returns a dashboard over hook, which must have been built for window.
func NewSpendModel(ctx context.Context, hook *hooks.SpendTableHook, window SpendWindow) SpendModel {
	m := SpendModel{
		ctx:     ctx,
		hook:    hook,
		window:  window,
		now:     time.Now,
		state:   ViewStateLoading,
		loading: NewLoadingState(),
		width:   defaultWidth,
		height:  defaultHeight,
	}
	m.loading.SetMessage("Loading spend...")
	m.table = m.buildTable()
	return m
}

// Init starts the spinner and the state subscription.
func (m SpendModel) Init() tea.Cmd {
	return tea.Batch(m.loading.Init(), WaitForState(m.hook))
}

// Refresh re-runs the current query. It is safe to call from any goroutine.
func (m SpendModel) Refresh() {
	m.hook.ExecuteNow()
}

// Window returns the displayed window.
func (m SpendModel) Window() SpendWindow {
	return m.window
}

// Update handles messages (Bubble Tea interface).
func (m SpendModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.buildTable()
		return m, nil
	case StateMsg[[]api.SpendTableRow]:
		return m.handleState(msg)
	case spinner.TickMsg:
		return m, m.loading.Update(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m SpendModel) handleState(msg StateMsg[[]api.SpendTableRow]) (tea.Model, tea.Cmd) {
	if msg.Closed {
		return m, nil
	}
	st := msg.State
	cmds := []tea.Cmd{WaitForState(m.hook)}

	switch {
	case st.Error != nil:
		logging.FromContext(m.ctx).Debug().Ctx(m.ctx).Err(st.Error).Msg("spend table failed")
		m.err = st.Error
		m.state = ViewStateError
		m.refreshing = false
	case st.IsLoading:
		m.refreshing = true
		if !st.HasResponse() && m.state != ViewStateLoading {
			m.state = ViewStateLoading
			cmds = append(cmds, m.loading.Init())
		}
	case st.HasResponse():
		m.setRows(*st.Response)
		m.err = nil
		m.refreshing = false
		m.state = ViewStateList
	}
	return m, tea.Batch(cmds...)
}

func (m *SpendModel) setRows(rows []api.SpendTableRow) {
	m.rows = slices.Clone(rows)
	slices.SortFunc(m.rows, func(a, b api.SpendTableRow) int {
		return cmp.Compare(b.Total(), a.Total())
	})
	m.total = 0
	for _, r := range m.rows {
		m.total += r.Total()
	}
	m.table = m.buildTable()
}

func (m SpendModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit, keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyLeft, keyH:
		return m.move(m.window.Shift(-1))
	case keyRight, keyL:
		next := m.window.Shift(1)
		if next.End.After(m.now()) {
			return m, nil
		}
		return m.move(next)
	case keyG:
		return m.move(m.window.NextGranularity())
	case keyR:
		m.hook.ExecuteNow()
		return m, nil
	}

	if m.state == ViewStateList {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

// move re-evaluates the hook with the window's request.
func (m SpendModel) move(w SpendWindow) (tea.Model, tea.Cmd) {
	m.window = w
	m.hook.UpdatePayload(w.Request())
	return m, nil
}

func (m SpendModel) buildTable() table.Model {
	columns := []table.Column{
		{Title: "Connection", Width: maxNameLen},
		{Title: "Connector", Width: 10}, //nolint:mnd // Column width.
		{Title: "Account", Width: 16},   //nolint:mnd // Column width.
		{Title: "Spend", Width: 14},     //nolint:mnd // Column width.
		{Title: "Share", Width: 7},      //nolint:mnd // Column width.
	}

	rows := make([]table.Row, len(m.rows))
	for i, r := range m.rows {
		share := "-"
		if m.total > 0 {
			share = fmt.Sprintf("%.1f%%", r.Total()/m.total*100) //nolint:mnd // Percentage.
		}
		name := r.DimensionName
		if name == "" {
			name = r.DimensionID
		}
		rows[i] = table.Row{truncate(name), r.Connector, r.AccountID, fmt.Sprintf("$%.2f", r.Total()), share}
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
