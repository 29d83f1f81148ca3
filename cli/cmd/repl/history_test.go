package repl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHistoryPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load(missing) error = %v", err)
	}

	for _, e := range []HistoryEntry{
		{Line: "Hello, {{name}}!", Mode: modeEval},
		{Line: "fields camel", Mode: modeCtrl},
		{Line: "  {{#each xs}}{{this}}{{/each}}  ", Mode: modeEval},
		{Line: "fields camel", Mode: modeCtrl}, // repeat of last, skipped
		{Line: "", Mode: modeEval},
	} {
		if _, err := h.WriteWithMode(e.Line, e.Mode); err != nil {
			t.Fatalf("WriteWithMode(%q) error = %v", e.Line, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	want := "E:Hello, {{name}}!\nC:fields camel\nE:{{#each xs}}{{this}}{{/each}}\n"
	if got := string(data); got != want {
		t.Errorf("history file = %q, want %q", got, want)
	}

	// An earlier duplicate moves to the end.
	if _, err := h.WriteWithMode("Hello, {{name}}!", modeEval); err != nil {
		t.Fatal(err)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	wantEntries := []HistoryEntry{
		{Line: "fields camel", Mode: modeCtrl},
		{Line: "{{#each xs}}{{this}}{{/each}}", Mode: modeEval},
		{Line: "Hello, {{name}}!", Mode: modeEval},
	}

	if diff := cmp.Diff(wantEntries, loaded.Entries()); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
}

func TestHistoryInMemory(t *testing.T) {
	h := NewHistory("")

	if _, err := h.WriteWithMode("{{a}}", modeEval); err != nil {
		t.Fatalf("WriteWithMode() error = %v", err)
	}

	if err := h.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if h.Len() != 1 {
		t.Errorf("Len() = %d, want 1", h.Len())
	}

	if _, err := h.GetEntry(1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("GetEntry(1) error = %v, want %v", err, ErrOutOfBounds)
	}

	if _, err := h.GetEntry(-1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("GetEntry(-1) error = %v, want %v", err, ErrOutOfBounds)
	}
}

func TestParseEntry(t *testing.T) {
	tests := []struct {
		line string
		want HistoryEntry
	}{
		{"E:{{x}}", HistoryEntry{Line: "{{x}}", Mode: modeEval}},
		{"C:quit", HistoryEntry{Line: "quit", Mode: modeCtrl}},
		{"{{x}}", HistoryEntry{Line: "{{x}}", Mode: modeEval}},
	}

	for _, tt := range tests {
		if got := parseEntry(tt.line); got != tt.want {
			t.Errorf("parseEntry(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
	}
}
