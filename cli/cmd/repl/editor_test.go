package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"testing"

	"github.com/ardnew/hbs/lang"
	"github.com/ardnew/hbs/log"
)

// testEditCommand returns an edit command whose editor leaves the file
// unchanged.
func testEditCommand(t *testing.T, src, answer string) (*editCommand, *bytes.Buffer) {
	t.Helper()

	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("no true command")
	}

	t.Setenv("EDITOR", "true")

	var stderr bytes.Buffer

	return &editCommand{
		src:      src,
		ctxFunc:  context.Background,
		compiler: lang.New(nil, lang.WithRuntime("")),
		logger:   log.Make(io.Discard),
		stdin:    strings.NewReader(answer),
		stdout:   io.Discard,
		stderr:   &stderr,
	}, &stderr
}

func TestEditCompiles(t *testing.T) {
	c, _ := testEditCommand(t, "<p>{{title}}</p>\n", "")

	if err := c.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !c.done || c.src != "<p>{{title}}</p>" {
		t.Errorf("Run() done = %v, src = %q", c.done, c.src)
	}

	if !strings.Contains(c.out.Code, "HTML(title)") {
		t.Errorf("Run() code = %q", c.out.Code)
	}
}

func TestEditCancelled(t *testing.T) {
	c, _ := testEditCommand(t, "  \n", "")

	if err := c.Run(); err != nil || c.done {
		t.Errorf("Run() = %v, done = %v, want nil, false", err, c.done)
	}
}

func TestEditDeclined(t *testing.T) {
	c, stderr := testEditCommand(t, "{{#if x}}", "n\n")

	if err := c.Run(); !errors.Is(err, ErrEditDeclined) {
		t.Errorf("Run() error = %v, want %v", err, ErrEditDeclined)
	}

	if !strings.Contains(stderr.String(), "compile error") {
		t.Errorf("stderr = %q, want compile error", stderr.String())
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"\n", true},
		{"y\n", true},
		{"No\n", false},
		{"n", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := confirm(strings.NewReader(tt.in)); got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
