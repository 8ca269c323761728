package listview

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func render(item int, selected bool) string {
	if selected {
		return fmt.Sprintf("> %d", item)
	}
	return fmt.Sprintf("  %d", item)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestModel_Navigation(t *testing.T) {
	m := New(numbered(10), 3, render)

	assert.False(t, m.Update(key("up")), "already at top")
	assert.True(t, m.Update(key("down")))
	assert.True(t, m.Update(key("j")))
	assert.Equal(t, 2, m.Cursor())

	from, to := m.Visible()
	assert.Equal(t, 0, from)
	assert.Equal(t, 3, to)

	m.Update(key("down"))
	from, to = m.Visible()
	assert.Equal(t, 1, from, "viewport follows the cursor")
	assert.Equal(t, 4, to)

	m.Update(key("end"))
	assert.Equal(t, 9, m.Cursor())
	from, to = m.Visible()
	assert.Equal(t, 7, from)
	assert.Equal(t, 10, to)

	m.Update(key("pgdown"))
	assert.Equal(t, 9, m.Cursor(), "clamped at the end")

	m.Update(key("g"))
	assert.Equal(t, 0, m.Cursor())
}

func TestModel_View(t *testing.T) {
	m := New(numbered(5), 2, render)
	m.Update(key("down"))
	assert.Equal(t, "  0\n> 1", m.View())
}

func TestModel_EmptyAndSetItems(t *testing.T) {
	m := New[int](nil, 4, render)
	assert.Nil(t, m.Selected())
	assert.Empty(t, m.View())
	assert.False(t, m.Update(key("down")))

	m.SetItems(numbered(3))
	m.Select(10)
	require.NotNil(t, m.Selected())
	assert.Equal(t, 2, *m.Selected())

	m.SetItems(numbered(1))
	assert.Equal(t, 0, m.Cursor(), "cursor clamped when items shrink")
}
