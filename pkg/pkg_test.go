package pkg

import (
	"os"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	t.Parallel()

	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("ReadFile(VERSION) error = %v", err)
	}

	if got, want := strings.TrimSpace(Version), strings.TrimSpace(string(buf)); got != want || got == "" {
		t.Errorf("Version = %q, want %q", got, want)
	}
}

func TestEnvPrefix(t *testing.T) {
	t.Parallel()

	if got, want := EnvPrefix(), "HBS"; got != want {
		t.Errorf("EnvPrefix() = %q, want %q", got, want)
	}
}

func TestAuthor(t *testing.T) {
	t.Parallel()

	for i, a := range Author {
		if a.Name == "" && a.Email == "" {
			t.Errorf("Author[%d] is empty", i)
		}
	}
}
