package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Maria", "Maria"},
		{"surrounding space", "  João  ", "João"},
		{"newlines collapse", "Ana\nClara\r", "Ana Clara"},
		{"blank", "   ", ""},
		{"long name truncated", strings.Repeat("a", 60), strings.Repeat("a", 40)},
		{"multibyte runes counted, not bytes", strings.Repeat("é", 45), strings.Repeat("é", 40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeName(tt.input))
		})
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "R$9,90", FormatPrice(990))
	assert.Equal(t, "R$15,90", FormatPrice(1590))
	assert.Equal(t, "R$1,05", FormatPrice(105))
	assert.Equal(t, "R$0,00", FormatPrice(0))
}

func TestInterpolate(t *testing.T) {
	state := NewSessionState("s1", "wf", "")
	state.Set(StateKeyUserName, "Pedro")

	got := Interpolate("Oi {name}, são {price}.", state, StateKeyUserName, 990)
	assert.Equal(t, "Oi Pedro, são R$9,90.", got)

	// Missing name resolves to an empty string, not the raw placeholder.
	empty := NewSessionState("s2", "wf", "")
	assert.Equal(t, "Oi ", Interpolate("Oi {name}", empty, StateKeyUserName, 0))

	// Text without placeholders passes through untouched.
	assert.Equal(t, "sem mudanças", Interpolate("sem mudanças", state, StateKeyUserName, 990))
}
