package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/hbs/gen"
	"github.com/ardnew/hbs/lang"
	"github.com/ardnew/hbs/log"
)

// Compile compiles one template and prints the result.
type Compile struct {
	Go   CompileGo   `cmd:"" default:"withargs" help:"Print the generated Go statements (default)."`
	JSON CompileJSON `cmd:""                    help:"Print the compiled output as JSON."`
	YAML CompileYAML `cmd:""                    help:"Print the compiled output as YAML."`
	Scan Scan        `cmd:""                    help:"Print the markers and tokens of the template."`
}

// Template holds the flags shared by the compile subcommands.
type Template struct {
	Root    string `                     help:"Object that root paths resolve against."       short:"r"`
	Sink    string `default:"w"          help:"Name of the io.Writer receiving output."       short:"w"`
	Runtime string `default:"render"     help:"Qualifier of runtime capabilities, or empty."`
	Fields  string `default:"verbatim"   help:"Spelling of path segments."                              enum:"verbatim,camel,lower-camel"`

	Source string `arg:"" default:"-" help:"Template file or '-' for stdin." name:"source"`
}

// Options returns the compiler options selected by the flags.
func (t *Template) Options() []lang.Option {
	return []lang.Option{
		lang.WithRoot(t.Root),
		lang.WithSink(t.Sink),
		lang.WithRuntime(t.Runtime),
		lang.WithFieldCase(lang.ParseFieldCase(t.Fields)),
		lang.WithLogger(log.With(slog.String("source", t.Source))),
	}
}

func (t *Template) compile(ctx context.Context) (lang.Output, error) {
	src, err := gen.ReadSource(t.Source)
	if err != nil {
		return lang.Output{}, err
	}

	out, err := lang.Compile(src, t.Options()...)
	if err != nil {
		return out, lang.WrapError(err).With(slog.String("source", t.Source))
	}

	log.DebugContext(ctx, "template compiled",
		slog.String("source", t.Source),
		slog.Int("writes", out.Writes),
		slog.Any("uses", out.Uses),
	)

	return out, nil
}

// document is the structured form of a compiled template.
type document struct {
	Code    string   `json:"code"              yaml:"code"`
	Uses    []string `json:"uses,omitempty"    yaml:"uses,omitempty"`
	Imports []string `json:"imports,omitempty" yaml:"imports,omitempty"`
	Writes  int      `json:"writes"            yaml:"writes"`
}

func (t *Template) document(ctx context.Context) (document, error) {
	out, err := t.compile(ctx)
	if err != nil {
		return document{}, err
	}

	runtime := ""
	if t.Runtime == lang.DefaultRuntime {
		runtime = lang.RuntimeImport
	}

	return document{
		Code:    out.Code,
		Uses:    out.Uses,
		Imports: out.Imports(runtime),
		Writes:  out.Writes,
	}, nil
}

// CompileGo prints the generated Go statements.
type CompileGo struct {
	Template `embed:""`

	Imports bool `help:"Precede the statements with the import paths they need." short:"i"`
}

// Run executes the go command.
func (c *CompileGo) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer func(err *error) { cancel(*err) }(&err)

	if !c.Imports {
		out, err := c.compile(ctx)
		if err != nil {
			return err
		}

		_, err = io.WriteString(outputFrom(ctx), out.Code)

		return err
	}

	doc, err := c.document(ctx)
	if err != nil {
		return err
	}

	w := outputFrom(ctx)

	for _, p := range doc.Imports {
		if _, err := fmt.Fprintf(w, "import %q\n", p); err != nil {
			return err
		}
	}

	if len(doc.Imports) > 0 {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}

	_, err = io.WriteString(w, doc.Code)

	return err
}

// CompileJSON prints the compiled output as a JSON document.
type CompileJSON struct {
	Template `embed:""`

	Indent int `default:"2" help:"Indent width of the JSON output." short:"n"`
}

// Run executes the json command.
func (c *CompileJSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer func(err *error) { cancel(*err) }(&err)

	doc, err := c.document(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(outputFrom(ctx))
	enc.SetIndent("", strings.Repeat(" ", max(c.Indent, 0)))

	if err := enc.Encode(doc); err != nil {
		return ErrJSONMarshal.Wrap(err)
	}

	return nil
}

// CompileYAML prints the compiled output as a YAML document.
type CompileYAML struct {
	Template `embed:""`

	Indent int `default:"2" help:"Indent width of the YAML output." short:"n"`
}

// Run executes the yaml command.
func (c *CompileYAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer func(err *error) { cancel(*err) }(&err)

	doc, err := c.document(ctx)
	if err != nil {
		return err
	}

	data, err := yaml.MarshalWithOptions(doc,
		yaml.Indent(max(c.Indent, 1)),
		yaml.UseLiteralStyleIfMultiline(true),
	)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	_, err = outputFrom(ctx).Write(data)

	return err
}

// Scan prints each marker of a template with the tokens of its content.
type Scan struct {
	Source string `arg:"" default:"-" help:"Template file or '-' for stdin." name:"source"`
}

// Run executes the scan command.
func (s *Scan) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer func(err *error) { cancel(*err) }(&err)

	src, err := gen.ReadSource(s.Source)
	if err != nil {
		return err
	}

	return scanTemplate(outputFrom(ctx), src)
}

func scanTemplate(w io.Writer, src string) error {
	rest := src

	e, err := lang.FirstExpression(src)

	for ; e != nil && err == nil; e, err = e.Next() {
		if e.Prefix != "" {
			fmt.Fprintf(w, "%-8s %q\n", "text", e.Prefix)
		}

		fmt.Fprintf(w, "%-8s %q\n", e.Kind, e.Raw)

		if e.Kind != lang.KindComment && e.Kind != lang.KindLiteral {
			toks, err := lang.Tokens(e.Content)
			if err != nil {
				return err
			}

			for _, t := range toks {
				fmt.Fprintf(w, "  %-8s %q\n", t.Kind, t.Value)
			}
		}

		rest = e.Postfix
	}

	if err != nil {
		return err
	}

	if rest != "" {
		_, err = fmt.Fprintf(w, "%-8s %q\n", "text", rest)
	}

	return err
}
