package repl

import (
	"context"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/hbs/log"
)

func testModel(t *testing.T) model {
	t.Helper()

	return newModel(context.Background(), settings{
		sink:    "w",
		runtime: "render",
	}, NewHistory(""), log.Make(io.Discard))
}

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"text", "hello", 5, "hello", 0, 5},
		{"after_open", "{{na", 4, "na", 2, 4},
		{"after_hash", "{{#ea", 5, "ea", 3, 5},
		{"after_slash", "{{/each", 7, "each", 3, 7},
		{"trimmed", "{{~#if", 6, "if", 4, 6},
		{"underscore", "{{#if_so", 8, "if_so", 3, 8},
		{"private", "{{@in", 5, "@in", 2, 5},
		{"path_segment", "{{user.na", 9, "na", 7, 9},
		{"block_param", "{{#each xs as |it", 17, "it", 15, 17},
		{"mid_word", "{{#each}}", 5, "each", 3, 7},
		{"empty_after_hash", "{{#", 3, "", 3, 3},
		{"cursor_past_end", "{{x", 10, "x", 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestContextOf(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  wordContext
	}{
		{"text", "hello", contextText},
		{"closed_marker", "{{a}} b", contextText},
		{"open", "{{#ea", contextHelper},
		{"close", "{{/ea", contextHelper},
		{"inverse", "{{^ea", contextHelper},
		{"trimmed_open", "{{~#ea", contextHelper},
		{"head", "{{na", contextHead},
		{"raw_head", "{{{na", contextHead},
		{"private", "{{@in", contextPrivate},
		{"private_arg", "{{#each xs}}{{lookup xs @in", contextPrivate},
		{"argument", "{{#each it", contextArg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, start, _ := wordBounds(tt.input, len(tt.input))

			if got := contextOf(tt.input, start); got != tt.want {
				t.Errorf("contextOf(%q, %d) = %d, want %d", tt.input, start, got, tt.want)
			}
		})
	}
}

func TestComputeMatches(t *testing.T) {
	tests := []struct {
		name  string
		mode  inputMode
		input string
		want  []string // must all be present
		none  bool
	}{
		{name: "helper", input: "{{#eac", want: []string{"each", "each_ref"}},
		{name: "close", input: "{{/wi", want: []string{"with", "with_ref"}},
		{name: "all_helpers", input: "{{#", want: []string{"if", "unless", "each"}},
		{name: "private", input: "{{@ind", want: []string{"@index"}},
		{name: "keyword", input: "{{el", want: []string{"else"}},
		{name: "plain_text", input: "each", none: true},
		{name: "empty_head", input: "{{", none: true},
		{name: "argument", input: "{{#each ite", none: true},
		{name: "command", mode: modeCtrl, input: "he", want: []string{"help", "helpers"}},
		{name: "command_arg", mode: modeCtrl, input: "fields ca", want: []string{"camel", "lower-camel"}},
		{name: "command_empty", mode: modeCtrl, input: "", none: true},
		{name: "command_no_arg", mode: modeCtrl, input: "root da", none: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel(t)
			m.mode = tt.mode
			m.input.SetValue(tt.input)
			m.input.SetCursor(len(tt.input))

			matches, _, end := m.computeMatches()

			if end != len(tt.input) {
				t.Errorf("computeMatches(%q) end = %d, want %d", tt.input, end, len(tt.input))
			}

			if tt.none {
				if len(matches) != 0 {
					t.Errorf("computeMatches(%q) = %v, want none", tt.input, matches)
				}

				return
			}

			var got []string
			for _, match := range matches {
				got = append(got, match.Str)
			}

			for _, w := range tt.want {
				if !slices.Contains(got, w) {
					t.Errorf("computeMatches(%q) = %v, missing %q", tt.input, got, w)
				}
			}
		})
	}
}

func TestCycle(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("{{#with")
	m.input.SetCursor(7)
	refreshMatches(&m, false)

	if len(m.matches) < 2 {
		t.Fatalf("matches = %v, want at least 2", m.matches)
	}

	first := m.matches[0].Str

	m = m.cycle(1)
	if !m.tabActive || m.input.Value() != "{{#"+first {
		t.Errorf("cycle(1) input = %q, active = %v", m.input.Value(), m.tabActive)
	}

	// Stepping back from the first candidate wraps to the last.
	m = m.cycle(-1)

	last := m.matches[len(m.matches)-1].Str
	if m.input.Value() != "{{#"+last {
		t.Errorf("cycle(-1) input = %q, want %q", m.input.Value(), "{{#"+last)
	}
}

func TestCycleSingle(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("{{#unl")
	m.input.SetCursor(6)
	refreshMatches(&m, false)

	m = m.cycle(1)

	if got := m.input.Value(); got != "{{#unless" {
		t.Errorf("cycle() input = %q, want %q", got, "{{#unless")
	}

	if m.tabActive || m.matches != nil {
		t.Errorf("cycle() left completion active: %v, %v", m.tabActive, m.matches)
	}
}

func TestRenderCandidateBar(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("{{#")
	m.input.SetCursor(3)
	refreshMatches(&m, false)

	full := renderCandidateBar(m.matches, -1, false, 1000)
	for _, name := range m.registry.Names() {
		if !strings.Contains(full, name) {
			t.Errorf("renderCandidateBar() = %q, missing %q", full, name)
		}
	}

	if narrow := renderCandidateBar(m.matches, -1, false, 12); !strings.HasSuffix(narrow, "...") {
		t.Errorf("renderCandidateBar(width 12) = %q, want ellipsis", narrow)
	}

	if got := renderCandidateBar(nil, 0, false, 80); got != "" {
		t.Errorf("renderCandidateBar(nil) = %q, want empty", got)
	}
}
