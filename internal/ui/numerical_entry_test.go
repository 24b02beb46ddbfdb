package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
)

func TestNumericalEntry_TypedRune(t *testing.T) {
	test.NewTempApp(t)
	entry := NewNumericalEntry()
	window := test.NewWindow(entry)
	defer window.Close()

	tests := []struct {
		name     string
		input    rune
		accepted bool
	}{
		{"Digit_Zero", '0', true},
		{"Digit_Nine", '9', true},
		{"Letter_a", 'a', false},
		{"Symbol_Dash", '-', false},
		{"Symbol_Space", ' ', false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry.SetText("")
			test.Type(entry, string(tt.input))

			if tt.accepted {
				assert.Equal(t, string(tt.input), entry.Text)
			} else {
				assert.Empty(t, entry.Text)
			}
		})
	}
}

func TestNumericalEntry_MaxDigits(t *testing.T) {
	test.NewTempApp(t)
	entry := NewNumericalEntry()
	window := test.NewWindow(entry)
	defer window.Close()

	test.Type(entry, "1808199")
	assert.Equal(t, "18081", entry.Text, "a port never needs more than five digits")

	entry.MaxDigits = 0
	test.Type(entry, "99")
	assert.Equal(t, "1808199", entry.Text)
}

func TestNumericalEntry_Paste(t *testing.T) {
	a := test.NewTempApp(t)
	entry := NewNumericalEntry()
	window := test.NewWindow(entry)
	defer window.Close()

	clip := a.Clipboard()
	clip.SetContent("port: 80-81")
	entry.TypedShortcut(&fyne.ShortcutPaste{Clipboard: clip})
	assert.Equal(t, "8081", entry.Text)
}

func TestNumericalEntry_Keyboard(t *testing.T) {
	assert.Equal(t, mobile.NumberKeyboard, NewNumericalEntry().Keyboard())
}

func TestNumericalEntry_DirectSetText(t *testing.T) {
	entry := NewNumericalEntry()

	// Direct setting bypasses TypedRune; validation happens separately.
	entry.SetText("abc")
	assert.Equal(t, "abc", entry.Text)
}
