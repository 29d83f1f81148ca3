package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// prettyHandler writes one colorized line per record. Colors are dropped
// when the output is not a terminal.
type prettyHandler struct {
	opts   *slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	style  prettyStyle
	prefix string
	attrs  string
}

type prettyStyle struct {
	key, str, num, flag, when lipgloss.Style
	level                     map[slog.Level]lipgloss.Style
}

func newPrettyStyle(r *lipgloss.Renderer) prettyStyle {
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return prettyStyle{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		flag: fg("5"),
		when: fg("4"),
		level: map[slog.Level]lipgloss.Style{
			slog.Level(LevelTrace): fg("4"),
			slog.LevelDebug:        fg("4"),
			slog.LevelInfo:         fg("2"),
			slog.LevelWarn:         fg("3").Bold(true),
			slog.LevelError:        fg("1").Bold(true),
		},
	}
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts:  opts,
		mu:    &sync.Mutex{},
		w:     w,
		style: newPrettyStyle(lipgloss.NewRenderer(w)),
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	if t := h.replace(slog.Time(slog.TimeKey, r.Time)); !r.Time.IsZero() && t.Key != "" {
		b.WriteString(h.style.when.Render(t.Value.String()))
		b.WriteByte(' ')
	}

	b.WriteString(h.levelStyle(r.Level).Render(fmt.Sprintf("%-5s", Level(r.Level))))
	b.WriteByte(' ')

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			b.WriteString(h.style.key.Render(src.File + ":" + strconv.Itoa(src.Line)))
			b.WriteByte(' ')
		}
	}

	b.WriteString(r.Message)
	b.WriteString(h.attrs)

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&b, h.prefix, a)

		return true
	})

	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := io.WriteString(h.w, b.String())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder

	for _, a := range attrs {
		h.writeAttr(&b, h.prefix, a)
	}

	c := *h
	c.attrs += b.String()

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix += name + "."

	return &c
}

func (h *prettyHandler) levelStyle(l slog.Level) lipgloss.Style {
	for _, k := range []slog.Level{
		slog.LevelError, slog.LevelWarn, slog.LevelInfo, slog.LevelDebug,
	} {
		if l >= k {
			return h.style.level[k]
		}
	}

	return h.style.level[slog.Level(LevelTrace)]
}

func (h *prettyHandler) replace(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(nil, a)
}

func (h *prettyHandler) writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, g := range a.Value.Group() {
			h.writeAttr(b, prefix, g)
		}

		return
	}

	b.WriteByte(' ')
	b.WriteString(h.style.key.Render(prefix + a.Key + "="))
	b.WriteString(h.value(a.Value))
}

func (h *prettyHandler) value(v slog.Value) string {
	switch v.Kind() {
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindDuration:
		return h.style.num.Render(v.String())
	case slog.KindBool:
		return h.style.flag.Render(v.String())
	case slog.KindTime:
		return h.style.when.Render(v.Time().Format(time.RFC3339))
	}

	s := v.String()
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		s = strconv.Quote(s)
	}

	return h.style.str.Render(s)
}
