package tui

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func TestKeyMap_Help(t *testing.T) {
	km := defaultKeyMap()

	short := km.ShortHelp()
	if len(short) == 0 {
		t.Fatal("Expected short help bindings")
	}

	var found bool
	for _, b := range short {
		if b.Help().Desc == "approve" {
			found = true
		}
	}
	if !found {
		t.Error("Expected short help to contain the approve action")
	}

	count := 0
	for _, col := range km.FullHelp() {
		count += len(col)
	}
	if count != 11 {
		t.Errorf("Expected every binding in full help, got %d", count)
	}
}

func TestKeyMap_Bindings(t *testing.T) {
	km := defaultKeyMap()

	tests := []struct {
		msg     tea.KeyMsg
		binding key.Binding
		name    string
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}, km.Up, "k"},
		{tea.KeyMsg{Type: tea.KeyUp}, km.Up, "up"},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}, km.Down, "j"},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}, km.Approve, "a"},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'A'}}, km.ApproveAll, "A"},
		{tea.KeyMsg{Type: tea.KeyEsc}, km.Quit, "esc"},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, km.Quit, "ctrl+c"},
		{tea.KeyMsg{Type: tea.KeyEnter}, km.Details, "enter"},
	}

	for _, tt := range tests {
		if !key.Matches(tt.msg, tt.binding) {
			t.Errorf("Expected %s to match its binding", tt.name)
		}
	}

	if key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}, km.Reject) {
		t.Error("a must not reject")
	}
}
