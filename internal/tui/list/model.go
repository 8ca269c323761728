package listview

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// RenderFunc renders one item. selected is true for the cursor row.
type RenderFunc[T any] func(item T, selected bool) string

// Model is a scrolling list of T.
type Model[T any] struct {
	items    []T
	render   RenderFunc[T]
	selected int
	offset   int
	height   int
}

// New returns a list showing height rows at a time.
func New[T any](items []T, height int, render RenderFunc[T]) *Model[T] {
	m := &Model[T]{render: render, height: max(height, 1)}
	m.SetItems(items)
	return m
}

// SetItems replaces the items, keeping the cursor in range.
func (m *Model[T]) SetItems(items []T) {
	m.items = items
	m.Select(m.selected)
}

// SetHeight changes the number of visible rows.
func (m *Model[T]) SetHeight(height int) {
	m.height = max(height, 1)
	m.scroll()
}

// Len returns the number of items.
func (m *Model[T]) Len() int {
	return len(m.items)
}

// Cursor returns the selected index.
func (m *Model[T]) Cursor() int {
	return m.selected
}

// Selected returns the item under the cursor, or nil for an empty list.
func (m *Model[T]) Selected() *T {
	if len(m.items) == 0 {
		return nil
	}
	return &m.items[m.selected]
}

// Select moves the cursor to index, clamped to the list.
func (m *Model[T]) Select(index int) {
	m.selected = min(max(index, 0), max(len(m.items)-1, 0))
	m.scroll()
}

// Update handles navigation keys and reports whether the cursor moved.
func (m *Model[T]) Update(msg tea.Msg) bool {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(m.items) == 0 {
		return false
	}
	before := m.selected
	switch key.String() {
	case "up", "k":
		m.Select(m.selected - 1)
	case "down", "j":
		m.Select(m.selected + 1)
	case "pgup":
		m.Select(m.selected - m.height)
	case "pgdown":
		m.Select(m.selected + m.height)
	case "home", "g":
		m.Select(0)
	case "end", "G":
		m.Select(len(m.items) - 1)
	}
	return m.selected != before
}

// scroll keeps the cursor inside the viewport.
func (m *Model[T]) scroll() {
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+m.height {
		m.offset = m.selected - m.height + 1
	}
	m.offset = min(m.offset, max(len(m.items)-m.height, 0))
}

// Visible returns the half-open range of rendered item indexes.
func (m *Model[T]) Visible() (int, int) {
	return m.offset, min(m.offset+m.height, len(m.items))
}

// View renders the visible rows.
func (m *Model[T]) View() string {
	from, to := m.Visible()
	lines := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		lines = append(lines, m.render(m.items[i], i == m.selected))
	}
	return strings.Join(lines, "\n")
}
