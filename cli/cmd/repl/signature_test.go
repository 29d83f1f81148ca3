package repl

import (
	"testing"

	"github.com/ardnew/hbs/lang"
)

func TestDetectHelperCall(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		cursor int
		want   helperCall
	}{
		{"text", "hello", 5, helperCall{}},
		{"closed", "{{#each xs}}", 12, helperCall{}},
		{"name_incomplete", "{{#each", 7, helperCall{}},
		{"first_arg_empty", "{{#each ", 8, helperCall{name: "each", argIndex: 0, inCall: true}},
		{"first_arg", "{{#each ite", 11, helperCall{name: "each", argIndex: 0, inCall: true}},
		{"second_arg", "{{#each items ", 14, helperCall{name: "each", argIndex: 1, inCall: true}},
		{"as_clause", "{{#each items as |it", 20, helperCall{name: "each", argIndex: 1, inCall: true}},
		{"lookup", "{{lookup xs @ind", 16, helperCall{name: "lookup", argIndex: 1, inCall: true}},
		{"trimmed", "{{~#if ok", 9, helperCall{name: "if", argIndex: 0, inCall: true}},
		{"cursor_inside", "{{#if ok}} {{#each xs}}", 8, helperCall{name: "if", argIndex: 0, inCall: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectHelperCall(tt.input, tt.cursor); got != tt.want {
				t.Errorf("detectHelperCall(%q, %d) = %+v, want %+v",
					tt.input, tt.cursor, got, tt.want)
			}
		})
	}
}

func TestSignatureOf(t *testing.T) {
	reg := lang.Builtins().Register("upper", lang.Builtins()[lang.HelperWith])

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{lang.HelperEach, "each <seq> [as |name|]", true},
		{lang.HelperIf, "if <cond>", true},
		{lang.HelperLookup, "lookup <seq> <index>", true},
		{"upper", "upper <arg>", true},
		{"missing", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := signatureOf(reg, tt.name)
		if got.String() != tt.want || ok != tt.ok {
			t.Errorf("signatureOf(%q) = %q, %v, want %q, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRenderSignatureHint(t *testing.T) {
	sig, _ := signatureOf(lang.Builtins(), lang.HelperEach)

	// Styles render without escapes when output is not a terminal.
	if got, want := renderSignatureHint(sig, 0), "each <seq> [as |name|]"; got != want {
		t.Errorf("renderSignatureHint() = %q, want %q", got, want)
	}
}
