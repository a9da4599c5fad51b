package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/mx3c/internal/storage"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m model, keys ...string) model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(model)
	}
	return m
}

func testRuns() []storage.RunMetadata {
	return []storage.RunMetadata{
		{ID: "a_1", Name: "a", Driver: "min"},
		{ID: "b_2", Name: "b", Driver: "time", Warnings: []string{"w"}},
	}
}

func TestBrowserNavigation(t *testing.T) {
	var loaded string
	m := newModel(testRuns(), func(id string) (string, error) {
		loaded = id
		return "// header\nminimize()\n", nil
	})

	m = send(m, "down", "down", "enter")
	if loaded != "b_2" {
		t.Errorf("expected b_2 loaded, got %q", loaded)
	}
	if m.state != stateScript {
		t.Fatalf("expected script view")
	}
	if len(m.lines) != 2 {
		t.Errorf("expected 2 lines, got %d", len(m.lines))
	}
	if !strings.Contains(m.View(), "minimize()") {
		t.Error("script view missing content")
	}

	m = send(m, "j", "j", "esc")
	if m.state != stateList {
		t.Error("esc should return to the list")
	}
	if m.offset != 1 {
		t.Errorf("offset should stop at the last line, got %d", m.offset)
	}
	m = send(m, "up")
	if m.cursor != 0 {
		t.Errorf("expected cursor 0, got %d", m.cursor)
	}
}

func TestBrowserLoadError(t *testing.T) {
	m := newModel(testRuns(), func(string) (string, error) {
		return "", errors.New("gone")
	})
	m = send(m, "enter")
	if m.state != stateList {
		t.Error("failed load should stay on the list")
	}
	if !strings.Contains(m.View(), "gone") {
		t.Error("list view should show the error")
	}
}

func TestBrowserEmpty(t *testing.T) {
	m := newModel(nil, nil)
	m = send(m, "enter")
	if m.state != stateList {
		t.Error("enter on an empty list should do nothing")
	}
	if !strings.Contains(m.View(), "no stored runs") {
		t.Error("expected empty hint")
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Error("q should quit")
	}
}
