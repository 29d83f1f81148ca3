package log

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// DefaultTimeLayout is the timestamp layout of a logger made without
// [WithTimeLayout].
const DefaultTimeLayout = time.RFC3339

// config is copied on every derivation; a Logger never shares a mutable
// config with another.
type config struct {
	output io.Writer
	layout string
	level  Level
	format Format
	caller bool
	pretty bool
}

// Option modifies the configuration of a [Logger].
type Option func(config) config

func makeConfig(w io.Writer, opts ...Option) config {
	return config{
		layout: DefaultTimeLayout,
		level:  DefaultLevel,
		format: DefaultFormat,
	}.apply(append([]Option{WithOutput(w)}, opts...)...)
}

func (c config) apply(opts ...Option) config {
	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	return c
}

// WithOutput sets the writer receiving log records.
// A nil writer discards all records.
func WithOutput(w io.Writer) Option {
	return func(c config) config {
		if w == nil {
			w = io.Discard
		}

		c.output = w

		return c
	}
}

// WithLevel sets the minimum level of records written.
func WithLevel(level Level) Option {
	return func(c config) config {
		c.level = level

		return c
	}
}

// WithFormat sets the record encoding.
func WithFormat(format Format) Option {
	return func(c config) config {
		c.format = format

		return c
	}
}

// WithTimeLayout sets the timestamp layout. Named layouts of package [time]
// such as "RFC3339Nano" or "Kitchen" are recognized regardless of case.
// An empty layout or "none" omits timestamps.
func WithTimeLayout(layout string) Option {
	return func(c config) config {
		c.layout = timeLayout(layout)

		return c
	}
}

// WithCaller sets whether records include the source location of the call.
func WithCaller(enable bool) Option {
	return func(c config) config {
		c.caller = enable

		return c
	}
}

// WithPretty sets whether text records are colorized for a terminal.
// It has no effect on [FormatJSON].
func WithPretty(enable bool) Option {
	return func(c config) config {
		c.pretty = enable

		return c
	}
}

var namedLayouts = map[string]string{
	"ansic":       time.ANSIC,
	"datetime":    time.DateTime,
	"kitchen":     time.Kitchen,
	"none":        "",
	"rfc1123":     time.RFC1123,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"rfc822":      time.RFC822,
	"stamp":       time.Stamp,
	"stampmicro":  time.StampMicro,
	"stampmilli":  time.StampMilli,
	"stampnano":   time.StampNano,
	"unixdate":    time.UnixDate,
}

func timeLayout(layout string) string {
	key := strings.ToLower(strings.TrimSpace(layout))
	if key == "" {
		return ""
	}

	if named, ok := namedLayouts[key]; ok {
		return named
	}

	return layout
}

func (c config) handlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		AddSource: c.caller,
		Level:     slog.Level(c.level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}

			switch a.Key {
			case slog.TimeKey:
				if c.layout == "" {
					return slog.Attr{}
				}

				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(c.layout))
				}

			case slog.LevelKey:
				if l, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(Level(l).String())
				}
			}

			return a
		},
	}
}

func (c config) handler() slog.Handler {
	opts := c.handlerOptions()

	switch {
	case c.format == FormatJSON:
		return slog.NewJSONHandler(c.output, opts)
	case c.pretty:
		return newPrettyHandler(c.output, opts)
	default:
		return slog.NewTextHandler(c.output, opts)
	}
}
