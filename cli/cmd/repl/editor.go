package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/hbs/lang"
	"github.com/ardnew/hbs/log"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand] for the edit-compile-retry loop.
// It writes the template to a temp file, opens the user's editor, and
// compiles the result. On a compile error the user is asked to re-edit.
type editCommand struct {
	src      string
	out      lang.Output
	done     bool
	ctxFunc  func() context.Context
	compiler *lang.Compiler
	logger   log.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

func (c *editCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the loop. It returns [ErrEditDeclined] if the user declines
// to re-edit a template that does not compile.
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp("", "hbs-repl-*.hbs")
	if err != nil {
		return err
	}

	path := f.Name()

	defer os.Remove(path)

	if err := f.Close(); err != nil {
		return err
	}

	content := c.src

	for {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		// An empty file cancels the edit.
		content = strings.TrimSuffix(string(data), "\n")
		if strings.TrimSpace(content) == "" {
			return nil
		}

		out, err := c.compiler.Compile(content)

		c.logger.TraceContext(ctx, "editor compile",
			slog.Int("length", len(content)),
			slog.Bool("ok", err == nil),
		)

		if err == nil {
			c.src, c.out, c.done = content, out, true

			return nil
		}

		fmt.Fprintf(c.stderr, "\ncompile error: %s\n", err)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		if !confirm(c.stdin) {
			return ErrEditDeclined
		}
	}
}

// confirm reads a yes/no answer from r. Anything but "n" or "no" is yes.
func confirm(r io.Reader) bool {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "n", "no":
		return false
	}

	return true
}

// runEditor runs $EDITOR, or vi, on path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	// EDITOR may carry arguments, such as "code --wait".
	args := strings.Fields(editor)

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
