// Package log wraps [log/slog] with a trace level, named time layouts, and a
// colorized text handler.
//
//	l := log.Make(os.Stderr, log.WithLevel(log.LevelDebug), log.WithPretty(true))
//	l.Debug("compiled", slog.String("template", "page"))
//
// A [Logger] is a value; [Logger.Wrap] and [Logger.With] return modified
// copies. The package-level functions log through [Default], which
// [Config] replaces atomically.
package log
