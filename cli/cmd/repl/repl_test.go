package repl

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/hbs/lang"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		settings settings
		src      string
		want     []string
	}{
		{
			name:     "escaped",
			settings: settings{sink: "w", runtime: "render"},
			src:      "Hello, {{name}}!",
			want: []string{
				`fmt.Fprintf(w, "Hello, %s!", render.HTML(name))`,
				"writes: 1  uses: HTML",
			},
		},
		{
			name:     "root_and_fields",
			settings: settings{root: "p", sink: "out", fields: lang.CaseCamel},
			src:      "{{{user.first_name}}}",
			want:     []string{`fmt.Fprintf(out, "%s", Plain(p.User.FirstName))`},
		},
		{
			name:     "no_output",
			settings: settings{sink: "w", runtime: "render"},
			src:      "{{! nothing }}",
			want:     []string{"(no output)", "writes: 0"},
		},
		{
			name:     "error",
			settings: settings{sink: "w", runtime: "render"},
			src:      "{{#loop xs}}{{/loop}}",
			want:     []string{"error: ", lang.ErrUnknownHelper.Error()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel(t)
			m.settings = tt.settings

			got := m.evaluate(tt.src)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("evaluate(%q) = %q, missing %q", tt.src, got, w)
				}
			}
		})
	}
}

func TestExecuteInput(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("{{title}}")

	m, cmd := m.executeInput()
	if cmd == nil {
		t.Fatal("executeInput() returned no command")
	}

	if m.last != "{{title}}" {
		t.Errorf("last = %q, want %q", m.last, "{{title}}")
	}

	if m.input.Value() != "" {
		t.Errorf("input = %q, want empty", m.input.Value())
	}

	if e, err := m.history.GetEntry(0); err != nil || e.Line != "{{title}}" || e.Mode != modeEval {
		t.Errorf("history[0] = %+v, %v", e, err)
	}

	m.input.SetValue("   ")

	if _, cmd := m.executeInput(); cmd != nil {
		t.Error("executeInput(blank) returned a command")
	}
}

func TestSettingCommands(t *testing.T) {
	tests := []struct {
		input string
		check func(settings) bool
		fail  bool
	}{
		{input: "root data", check: func(s settings) bool { return s.root == "data" }},
		{input: "root -", check: func(s settings) bool { return s.root == "" }},
		{input: "sink out", check: func(s settings) bool { return s.sink == "out" }},
		{input: "sink 1w", check: func(s settings) bool { return s.sink == "w" }, fail: true},
		{input: "runtime -", check: func(s settings) bool { return s.runtime == "" }},
		{input: "fields lower-camel", check: func(s settings) bool { return s.fields == lang.CaseLowerCamel }},
		{input: "fields pascal", check: func(s settings) bool { return s.fields == lang.CaseCamel }},
		{input: "fields bogus", check: func(s settings) bool { return s.fields == lang.CaseVerbatim }, fail: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m := testModel(t)
			parts := strings.Fields(tt.input)

			m, msg := m.setting(parts[0], parts[1:])
			if !tt.check(m.settings) {
				t.Errorf("setting(%q) settings = %+v", tt.input, m.settings)
			}

			if failed := strings.HasPrefix(msg, "invalid"); failed != tt.fail {
				t.Errorf("setting(%q) message = %q, want failure %v", tt.input, msg, tt.fail)
			}
		})
	}
}

func TestModeToggle(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("{{x}}")

	next, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if next.mode != modeCtrl || next.input.Value() != "" {
		t.Fatalf("Esc: mode = %d, input = %q", next.mode, next.input.Value())
	}

	next.input.SetValue("help")

	next, _ = next.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if next.mode != modeEval || next.input.Value() != "{{x}}" {
		t.Errorf("Esc: mode = %d, input = %q", next.mode, next.input.Value())
	}

	if next.ctrlText != "help" {
		t.Errorf("ctrlText = %q, want %q", next.ctrlText, "help")
	}
}

func TestHistoryNavigation(t *testing.T) {
	m := testModel(t)

	for _, e := range []HistoryEntry{
		{Line: "{{a}}", Mode: modeEval},
		{Line: "root p", Mode: modeCtrl},
		{Line: "{{b}}", Mode: modeEval},
	} {
		if _, err := m.history.WriteWithMode(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	m.historyIdx = m.history.Len()

	m = m.historyStep(-1, false)
	if m.input.Value() != "{{b}}" || m.mode != modeEval {
		t.Errorf("step 1: %q in mode %d", m.input.Value(), m.mode)
	}

	m = m.historyStep(-1, false)
	if m.input.Value() != "root p" || m.mode != modeCtrl {
		t.Errorf("step 2: %q in mode %d", m.input.Value(), m.mode)
	}

	m = m.historyStep(-1, true)
	if m.input.Value() != "root p" || m.historyIdx != 1 {
		t.Errorf("in-mode step past start: %q at %d", m.input.Value(), m.historyIdx)
	}

	m = m.switchToMode(modeEval)
	m = m.historyStep(-1, true)

	if m.input.Value() != "{{a}}" || m.historyIdx != 0 {
		t.Errorf("in-mode step: %q at %d", m.input.Value(), m.historyIdx)
	}

	m = m.historyStep(1, true)
	m = m.historyStep(1, true)

	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("step past end: %q at %d", m.input.Value(), m.historyIdx)
	}
}

func TestListHelpers(t *testing.T) {
	got := testModel(t).listHelpers()

	for _, want := range []string{"each_ref", "if_some", "lookup       lookup <seq> <index>"} {
		if !strings.Contains(got, want) {
			t.Errorf("listHelpers() missing %q:\n%s", want, got)
		}
	}
}
