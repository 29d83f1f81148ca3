// Package cli implements the hbs command line.
//
//	hbs compile go page.hbs            # print generated statements
//	hbs compile json --root p page.hbs # structured output
//	hbs gen views/hbs.yaml             # write the manifest's Go file
//	hbs repl                           # compile interactively
//
// Global flags configure logging (--log-level, --log-format,
// --log-time-layout, --log-caller, --log-pretty) and, when built with the
// pprof tag, profiling (--pprof-mode, --pprof-dir). Flag defaults are read
// from $XDG_CONFIG_HOME/hbs/config.yaml, written by "hbs init", and from
// HBS_* environment variables.
package cli
