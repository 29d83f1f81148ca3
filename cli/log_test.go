package cli

import (
	"testing"

	"github.com/ardnew/hbs/log"
)

// TestLogScan replaces the package logger and must not run in parallel.
func TestLogScan(t *testing.T) {
	orig := log.Default()
	t.Cleanup(func() { log.Config(log.WithLevel(orig.Level()), log.WithFormat(orig.Format())) })

	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			name: "separate values",
			args: []string{"compile", "--log-level", "debug", "--log-format", "json", "x.hbs"},
			want: logConfig{Level: "debug", Format: "json", Pretty: true},
		},
		{
			name: "assigned values",
			args: []string{"--log-level=warn", "--log-time-layout=none", "gen"},
			want: logConfig{Level: "warn", TimeLayout: "none", Pretty: true},
		},
		{
			name: "booleans",
			args: []string{"--no-log-pretty", "--log-caller"},
			want: logConfig{Caller: true},
		},
		{
			name: "assigned booleans",
			args: []string{"--log-pretty=false", "--no-log-caller=false"},
			want: logConfig{Caller: true},
		},
		{
			name: "unrelated flags",
			args: []string{"--force", "--logo", "-l"},
			want: logConfig{Pretty: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := logConfig{Pretty: true}
			f.scan(tt.args)

			if f != tt.want {
				t.Errorf("scan(%q) = %+v, want %+v", tt.args, f, tt.want)
			}
		})
	}

	if got := log.Default().Level(); got != log.LevelWarn {
		t.Errorf("log level after scan = %v, want %v", got, log.LevelWarn)
	}
}
