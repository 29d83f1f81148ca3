package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestMakeDefaults(t *testing.T) {
	t.Parallel()

	l := Make(nil)

	if got := l.Level(); got != DefaultLevel {
		t.Errorf("Level() = %v, want %v", got, DefaultLevel)
	}

	if got := l.Format(); got != DefaultFormat {
		t.Errorf("Format() = %v, want %v", got, DefaultFormat)
	}

	// A nil writer discards.
	l.Error("nowhere")
}

func TestZeroLogger(t *testing.T) {
	t.Parallel()

	var l Logger

	l.Error("ignored")
	l.With(slog.Int("n", 1)).Info("ignored")

	if got := l.Level(); got != DefaultLevel {
		t.Errorf("Level() = %v, want %v", got, DefaultLevel)
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level Level
		log   func(Logger)
		want  bool
	}{
		{LevelInfo, func(l Logger) { l.Debug("m") }, false},
		{LevelInfo, func(l Logger) { l.Info("m") }, true},
		{LevelDebug, func(l Logger) { l.Trace("m") }, false},
		{LevelTrace, func(l Logger) { l.Trace("m") }, true},
		{LevelError, func(l Logger) { l.Warn("m") }, false},
		{LevelError, func(l Logger) { l.Error("m") }, true},
	}

	for _, tt := range tests {
		var buf bytes.Buffer

		tt.log(Make(&buf, WithLevel(tt.level)))

		if got := buf.Len() > 0; got != tt.want {
			t.Errorf("level %v: wrote = %v, want %v (%q)", tt.level, got, tt.want, buf.String())
		}
	}
}

func TestTimeLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		layout string
		want   string
	}{
		{"", ""},
		{"none", ""},
		{"RFC3339Nano", time.RFC3339Nano},
		{"kitchen", time.Kitchen},
		{"2006", "2006"},
	}

	for _, tt := range tests {
		if got := timeLayout(tt.layout); got != tt.want {
			t.Errorf("timeLayout(%q) = %q, want %q", tt.layout, got, tt.want)
		}
	}
}

func TestJSONRecord(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatJSON), WithTimeLayout("2006"), WithCaller(true))
	l.With(slog.String("pkg", "views")).Warn("stale", slog.Int("n", 2))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("json.Unmarshal(%q) error = %v", buf.String(), err)
	}

	for key, want := range map[string]any{
		"level": "warn",
		"msg":   "stale",
		"pkg":   "views",
		"n":     2.0,
		"time":  time.Now().Format("2006"),
	} {
		if rec[key] != want {
			t.Errorf("record[%q] = %v, want %v", key, rec[key], want)
		}
	}

	src, ok := rec["source"].(map[string]any)
	if !ok {
		t.Fatalf("record[source] = %v, want object", rec["source"])
	}

	if file, _ := src["file"].(string); !strings.HasSuffix(file, "log_test.go") {
		t.Errorf("source file = %q, want caller in log_test.go", file)
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer

	base := Make(&a, WithLevel(LevelError))
	wrapped := base.Wrap(WithOutput(&b), WithLevel(LevelDebug))

	wrapped.Debug("to b")
	base.Debug("dropped")

	if a.Len() != 0 {
		t.Errorf("base logger wrote %q", a.String())
	}

	if !strings.Contains(b.String(), "to b") {
		t.Errorf("wrapped logger wrote %q, want message", b.String())
	}

	if base.Level() != LevelError {
		t.Errorf("Wrap() changed base level to %v", base.Level())
	}
}

func TestPrettyText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := Make(&buf, WithPretty(true), WithTimeLayout("none"))
	l.With(slog.String("pkg", "views")).Info("compiled",
		slog.String("name", "two words"),
		slog.Group("out", slog.Int("writes", 3)),
	)

	// A bytes.Buffer is not a terminal, so no escape sequences are written.
	want := `info  compiled pkg=views name="two words" out.writes=3` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("pretty output = %q, want %q", got, want)
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{" JSON ", FormatJSON},
		{"text", FormatText},
		{"yaml", DefaultFormat},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	var names []string
	for n := range Formats() {
		names = append(names, n)
	}

	if got := strings.Join(names, ","); got != "text,json" {
		t.Errorf("Formats() = %q, want %q", got, "text,json")
	}
}

func TestLevelString(t *testing.T) {
	t.Parallel()

	var names []string
	for n := range Levels() {
		names = append(names, n)

		if got := ParseLevel(n).String(); got != n {
			t.Errorf("ParseLevel(%q).String() = %q", n, got)
		}
	}

	if got := strings.Join(names, ","); got != "trace,debug,info,warn,error" {
		t.Errorf("Levels() = %q", got)
	}
}
