package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectOutputMode(t *testing.T) {
	tests := []struct {
		name          string
		terminal      bool
		env           map[string]string
		forceColor    bool
		noInteractive bool
		plain         bool
		want          OutputMode
	}{
		{name: "terminal", terminal: true, want: OutputModeInteractive},
		{name: "pipe", terminal: false, want: OutputModePlain},
		{name: "pipe with force color", terminal: false, forceColor: true, want: OutputModeStyled},
		{name: "plain flag", terminal: true, plain: true, want: OutputModePlain},
		{name: "no interactive", terminal: true, noInteractive: true, want: OutputModeStyled},
		{name: "NO_COLOR", terminal: true, env: map[string]string{"NO_COLOR": "1"}, want: OutputModePlain},
		{name: "dumb terminal", terminal: true, env: map[string]string{"TERM": "dumb"}, want: OutputModePlain},
		{name: "CI", terminal: true, env: map[string]string{"CI": "true"}, want: OutputModeStyled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "")
			t.Setenv("TERM", "xterm-256color")
			t.Setenv("CI", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			orig := isTerminal
			isTerminal = func() bool { return tt.terminal }
			t.Cleanup(func() { isTerminal = orig })

			assert.Equal(t, tt.want, DetectOutputMode(tt.forceColor, tt.noInteractive, tt.plain))
		})
	}
}

func TestOutputModeAndViewStateStrings(t *testing.T) {
	assert.Equal(t, "interactive", OutputModeInteractive.String())
	assert.Equal(t, "plain", OutputModePlain.String())
	assert.Equal(t, "detail", ViewStateDetail.String())
	assert.Equal(t, "unknown", ViewState(42).String())
}
