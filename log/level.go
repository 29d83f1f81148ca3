package log

import (
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Level is the severity of a log message.
type Level slog.Level

// Log levels. [LevelTrace] sits below slog's debug level.
const (
	LevelTrace = Level(slog.LevelDebug - 4)
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// DefaultLevel is the level of a logger made without [WithLevel].
const DefaultLevel = LevelInfo

var levelNames = []struct {
	level Level
	name  string
}{
	{LevelTrace, "trace"},
	{LevelDebug, "debug"},
	{LevelInfo, "info"},
	{LevelWarn, "warn"},
	{LevelError, "error"},
}

func (l Level) String() string {
	for _, n := range levelNames {
		if n.level == l {
			return n.name
		}
	}

	return strings.ToLower(slog.Level(l).String())
}

// Levels returns the names of all defined levels, least severe first.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, n := range levelNames {
			if !yield(n.name) {
				return
			}
		}
	}
}

// ParseLevel returns the level named s, ignoring case.
// Offsets such as "warn+2" are accepted as in [slog.Level.UnmarshalText].
// Unrecognized names return [DefaultLevel].
func ParseLevel(s string) Level {
	s = strings.TrimSpace(s)

	for _, n := range levelNames {
		if strings.EqualFold(n.name, s) {
			return n.level
		}
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// Format selects the encoding of log records.
type Format int

// Log formats.
const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is the format of a logger made without [WithFormat].
const DefaultFormat = FormatText

var formatNames = []string{
	FormatText: "text",
	FormatJSON: "json",
}

func (f Format) String() string {
	if int(f) >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}

	return "Format(" + strconv.Itoa(int(f)) + ")"
}

// Formats returns the names of all defined formats.
func Formats() iter.Seq[string] { return slices.Values(formatNames) }

// ParseFormat returns the format named s, ignoring case.
// Unrecognized names return [DefaultFormat].
func ParseFormat(s string) Format {
	i := slices.IndexFunc(formatNames, func(n string) bool {
		return strings.EqualFold(n, strings.TrimSpace(s))
	})
	if i < 0 {
		return DefaultFormat
	}

	return Format(i)
}
