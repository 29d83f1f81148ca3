package lang

import (
	"strconv"
	"strings"
)

// writeLine is a parsed write statement.
type writeLine struct {
	format string
	args   string // argument list with its leading ", ", or ""
}

// parseWrite parses line as a write statement to sink.
func parseWrite(line, sink string) (writeLine, bool) {
	prefix := writeCall + sink + ", "

	body, ok := strings.CutPrefix(line, prefix)
	if !ok {
		return writeLine{}, false
	}

	body, ok = strings.CutSuffix(body, writeReturn)
	if !ok {
		return writeLine{}, false
	}

	quoted, err := strconv.QuotedPrefix(body)
	if err != nil {
		return writeLine{}, false
	}

	format, err := strconv.Unquote(quoted)
	if err != nil {
		return writeLine{}, false
	}

	args := body[len(quoted):]
	if args != "" && !strings.HasPrefix(args, ", ") {
		return writeLine{}, false
	}

	return writeLine{format: format, args: args}, true
}

func (w writeLine) String(sink string) string {
	return writeCall + sink + ", " + strconv.Quote(w.format) + w.args + writeReturn
}

// Optimize merges each run of adjacent write statements to sink in code into
// a single write. Lines that are not writes are left unchanged. Optimize is
// idempotent.
func Optimize(code, sink string) string {
	var (
		b   strings.Builder
		run writeLine
		n   int // writes in run
	)

	b.Grow(len(code))

	emit := func() {
		if n > 0 {
			b.WriteString(run.String(sink))
		}

		run, n = writeLine{}, 0
	}

	for line := range strings.Lines(code) {
		w, ok := parseWrite(line, sink)
		if !ok {
			emit()
			b.WriteString(line)

			continue
		}

		run.format += w.format
		run.args += w.args
		n++
	}

	emit()

	return b.String()
}

// countWrites returns the number of write statements to sink in code.
func countWrites(code, sink string) int {
	n := 0

	for line := range strings.Lines(code) {
		if _, ok := parseWrite(line, sink); ok {
			n++
		}
	}

	return n
}
