// Package profile starts runtime profiling with [github.com/pkg/profile].
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof ./cmd/hbs
//	hbs --pprof-mode cpu compile go page.hbs
//
// Without the tag, [Modes] is empty and [Profiler.Start] does nothing.
package profile
