package lang

import (
	"strings"

	"github.com/ardnew/hbs/log"
)

// FieldCase selects how path segments taken from a template are spelled in
// generated code.
type FieldCase int

const (
	CaseVerbatim   FieldCase = iota // verbatim
	CaseCamel                       // camel
	CaseLowerCamel                  // lower-camel
)

func (c FieldCase) String() string {
	switch c {
	case CaseCamel:
		return "camel"
	case CaseLowerCamel:
		return "lower-camel"
	default:
		return "verbatim"
	}
}

// ParseFieldCase parses the string form of a [FieldCase].
// Unrecognized strings yield [CaseVerbatim].
func ParseFieldCase(s string) FieldCase {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "camel", "pascal", "exported":
		return CaseCamel
	case "lower-camel", "lowercamel", "lower":
		return CaseLowerCamel
	default:
		return CaseVerbatim
	}
}

// Default option values.
const (
	DefaultSink    = "w"
	DefaultRuntime = "render"

	// RuntimeImport is the import path of the package providing the runtime
	// capabilities under [DefaultRuntime].
	RuntimeImport = "github.com/ardnew/hbs/render"
)

type config struct {
	logger  log.Logger
	root    string
	sink    string
	runtime string
	fields  FieldCase
}

// Option applies a configuration option to config.
type Option func(config) config

func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}

func makeConfig(opts ...Option) config {
	return apply(config{
		sink:    DefaultSink,
		runtime: DefaultRuntime,
	}, opts...)
}

// WithRoot sets the name of the object that paths at the template root are
// resolved against. With no root, root paths are emitted as free-standing
// identifiers.
func WithRoot(name string) Option {
	return func(c config) config {
		c.root = name

		return c
	}
}

// WithSink sets the identifier of the [io.Writer] used by generated writes.
func WithSink(name string) Option {
	return func(c config) config {
		if name != "" {
			c.sink = name
		}

		return c
	}
}

// WithRuntime sets the package qualifier of runtime capability calls.
// An empty qualifier emits unqualified calls.
func WithRuntime(qualifier string) Option {
	return func(c config) config {
		c.runtime = qualifier

		return c
	}
}

// WithFieldCase sets the spelling of template path segments.
func WithFieldCase(fc FieldCase) Option {
	return func(c config) config {
		c.fields = fc

		return c
	}
}

// WithLogger sets the logger receiving compile trace events.
func WithLogger(logger log.Logger) Option {
	return func(c config) config {
		c.logger = logger

		return c
	}
}
