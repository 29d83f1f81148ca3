package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want config
	}{
		{"empty", "", config{}},
		{
			name: "flat",
			doc:  "log-level: debug\nlog_pretty: false\n",
			want: config{"log-level": "debug", "log-pretty": false},
		},
		{
			name: "nested",
			doc:  "log:\n  level: warn\n  time_layout: kitchen\npprof:\n  mode: cpu\n",
			want: config{"log-level": "warn", "log-time-layout": "kitchen", "pprof-mode": "cpu"},
		},
		{
			name: "numbers",
			doc:  "count: 3\nratio: 0.5\n",
			want: config{"count": "3", "ratio": "0.5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := resolve(strings.NewReader(tt.doc))
			if err != nil {
				t.Fatalf("resolve() error = %v", err)
			}

			if diff := cmp.Diff(tt.want, r); diff != "" {
				t.Errorf("resolve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveInvalid(t *testing.T) {
	t.Parallel()

	if _, err := resolve(strings.NewReader("log: [unterminated\n")); err == nil {
		t.Error("resolve() error = nil, want error")
	}
}

func TestResolveFlags(t *testing.T) {
	t.Parallel()

	var cli struct {
		Level string `default:"info"`
		Count int
		Name  string
	}

	parser, err := kong.New(&cli, kong.Configuration(resolve, "testdata/config.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"--name=cli"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cli.Level != "debug" || cli.Count != 7 || cli.Name != "cli" {
		t.Errorf("parsed = %+v, want level=debug count=7 name=cli", cli)
	}
}
