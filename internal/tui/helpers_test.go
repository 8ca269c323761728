package tui

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/opengovern/frontend/internal/fetch"
	"github.com/opengovern/frontend/internal/workspace"
)

// fakeBackend answers calls with a configurable response and records payloads.
type fakeBackend[P, R any] struct {
	mu       sync.Mutex
	payloads []P
	resp     R
	err      error
}

func (b *fakeBackend[P, R]) call(_ context.Context, _ string, d fetch.Descriptor[P]) (R, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.payloads = append(b.payloads, d.Payload)
	if b.err != nil {
		var zero R
		return zero, b.err
	}
	return b.resp, nil
}

func (b *fakeBackend[P, R]) set(resp R, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resp, b.err = resp, err
}

func (b *fakeBackend[P, R]) calls() []P {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]P(nil), b.payloads...)
}

func (b *fakeBackend[P, R]) hook(payload P, opts ...fetch.Option) *fetch.Hook[P, R] {
	opts = append([]fetch.Option{fetch.WithAmbient(workspace.Static("main"))}, opts...)
	return fetch.New(b.call, fetch.Descriptor[P]{Payload: payload}, opts...)
}

// pump waits for h to settle and delivers its latest state to model.
func pump[P, R any](t *testing.T, model tea.Model, h *fetch.Hook[P, R]) tea.Model {
	t.Helper()
	h.Wait()
	msg := WaitForState(h)()
	_, ok := msg.(StateMsg[R])
	require.True(t, ok)
	updated, cmd := model.Update(msg)
	require.NotNil(t, cmd, "models keep watching their hooks")
	return updated
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
