package fetch_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/opengovern/frontend/internal/fetch"
)

type window struct {
	Start       int64
	End         int64
	Connectors  []string
	granularity string
}

func TestEqual(t *testing.T) {
	base := fetch.NewDescriptor(window{Start: 1, End: 2, Connectors: []string{"AWS"}, granularity: "daily"})

	tests := []struct {
		name  string
		other fetch.Descriptor[window]
		want  bool
	}{
		{
			name:  "identical values, distinct slices",
			other: fetch.NewDescriptor(window{Start: 1, End: 2, Connectors: []string{"AWS"}, granularity: "daily"}),
			want:  true,
		},
		{
			name:  "different end",
			other: base.WithPayload(window{Start: 1, End: 3, Connectors: []string{"AWS"}, granularity: "daily"}),
			want:  false,
		},
		{
			name:  "unexported field differs",
			other: base.WithPayload(window{Start: 1, End: 2, Connectors: []string{"AWS"}, granularity: "monthly"}),
			want:  false,
		},
		{
			name:  "timeout differs",
			other: base.WithTimeout(time.Second),
			want:  false,
		},
		{
			name:  "header added",
			other: base.WithHeader("X-Org", "acme"),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fetch.Equal(base, tt.other))
		})
	}
}

func TestEqual_NilAndEmptyCollections(t *testing.T) {
	a := fetch.NewDescriptor(window{Connectors: nil})
	b := fetch.NewDescriptor(window{Connectors: []string{}})
	b.Options.Headers = map[string]string{}

	assert.True(t, fetch.Equal(a, b))
}

func TestDescriptor_WithHeaderCopies(t *testing.T) {
	first := fetch.NewDescriptor(window{}).WithHeader("A", "1")
	second := first.WithHeader("B", "2")

	assert.Equal(t, map[string]string{"A": "1"}, first.Options.Headers)
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, second.Options.Headers)
}
