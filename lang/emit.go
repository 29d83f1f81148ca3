package lang

import (
	"strconv"
	"strings"
)

// Write statement layout. Every write is emitted on a single line so that
// [Optimize] can recognize it without parsing Go.
const (
	writeCall   = "if _, err := fmt.Fprintf("
	writeReturn = "); err != nil { return err }\n"
)

// pendingWrite accumulates the literal text and values that will be emitted
// as one write statement.
type pendingWrite struct {
	format strings.Builder
	args   []string
}

func (p *pendingWrite) empty() bool {
	return p.format.Len() == 0 && len(p.args) == 0
}

func (p *pendingWrite) reset() {
	p.format.Reset()
	p.args = p.args[:0]
}

// literal queues text to be written verbatim.
func (s *state) literal(text string) {
	if text == "" {
		return
	}

	s.pending.format.WriteString(escapePercent(text))
}

// value queues the Go expression expr to be written, HTML-escaped or not.
func (s *state) value(expr string, html bool) {
	cp := CapPlain
	if html {
		cp = CapHTML
	}

	s.pending.format.WriteString("%s")
	s.pending.args = append(s.pending.args, s.capability(cp)+"("+expr+")")
}

// flush emits the queued write, if any.
func (s *state) flush() {
	if s.pending.empty() {
		return
	}

	s.out = append(s.out, writeStmt(s.sink, s.pending.format.String(), s.pending.args)...)
	s.pending.reset()
}

// write emits code after any queued write.
func (s *state) write(code string) {
	s.flush()
	s.out = append(s.out, code...)
}

// capability returns the qualified name of a runtime capability and records
// its use.
func (s *state) capability(name string) string {
	s.uses[name] = struct{}{}

	if s.runtime == "" {
		return name
	}

	return s.runtime + "." + name
}

func escapePercent(text string) string {
	return strings.ReplaceAll(text, "%", "%%")
}

// writeStmt formats a single-line write of format and args to sink.
func writeStmt(sink, format string, args []string) string {
	var b strings.Builder

	b.WriteString(writeCall)
	b.WriteString(sink)
	b.WriteString(", ")
	b.WriteString(strconv.Quote(format))

	for _, arg := range args {
		b.WriteString(", ")
		b.WriteString(arg)
	}

	b.WriteString(writeReturn)

	return b.String()
}
