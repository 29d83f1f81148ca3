package log_test

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ardnew/hbs/log"
)

func ExampleMake() {
	l := log.Make(os.Stdout, log.WithTimeLayout("none"))
	l.Info("compiled", slog.String("template", "page"), slog.Int("writes", 3))
	l.Debug("hidden")
	// Output:
	// level=info msg=compiled template=page writes=3
}

func ExampleLogger_With() {
	l := log.Make(os.Stdout, log.WithTimeLayout("none"), log.WithFormat(log.FormatJSON))
	l = l.With(slog.String("package", "views"))
	l.Warn("stale output")
	// Output:
	// {"level":"warn","msg":"stale output","package":"views"}
}

func ExampleParseLevel() {
	for _, s := range []string{"TRACE", "warn", "info+2", "loud"} {
		fmt.Println(s, log.ParseLevel(s))
	}
	// Output:
	// TRACE trace
	// warn warn
	// info+2 info+2
	// loud info
}
