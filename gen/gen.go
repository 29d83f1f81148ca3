package gen

import (
	"bytes"
	"context"
	"log/slog"
	"path"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/ardnew/hbs/lang"
	"github.com/ardnew/hbs/log"
)

// Header is the first line of every generated file.
const Header = "// Code generated by hbs. DO NOT EDIT."

// File is a generated Go source file.
type File struct {
	Path string
	Sum  string
	Data []byte
}

// Generate compiles every template of m into one formatted Go file.
func Generate(ctx context.Context, m *Manifest) (*File, error) {
	sum, err := m.Sum()
	if err != nil {
		return nil, err
	}

	var (
		body bytes.Buffer
		deps = map[string]struct{}{}
		qual = path.Base(m.RuntimeImport())
		opts = []lang.Option{
			lang.WithRuntime(qual),
			lang.WithFieldCase(lang.ParseFieldCase(m.Fields)),
			lang.WithLogger(log.With(slog.String("package", m.Package))),
		}
	)

	for _, t := range m.Templates {
		unit, err := generateUnit(&t, opts)
		if err != nil {
			return nil, err
		}

		for _, p := range unit.out.Imports(m.RuntimeImport()) {
			deps[p] = struct{}{}
		}

		for _, p := range unit.imports {
			deps[p] = struct{}{}
		}

		body.WriteString("\n")
		body.WriteString(unit.code)

		log.DebugContext(ctx, "template compiled",
			slog.String("template", t.Name),
			slog.Int("writes", unit.out.Writes),
			slog.Any("uses", unit.out.Uses),
		)
	}

	var src bytes.Buffer

	src.WriteString(Header + "\n")
	src.WriteString(sumPrefix + sum + "\n\n")
	src.WriteString("package " + m.Package + "\n")

	if len(deps) > 0 {
		list := make([]string, 0, len(deps))
		for p := range deps {
			list = append(list, p)
		}

		slices.Sort(list)

		src.WriteString("\nimport (\n")

		for _, p := range list {
			src.WriteString(strconv.Quote(p) + "\n")
		}

		src.WriteString(")\n")
	}

	src.Write(body.Bytes())

	out := m.OutputPath()

	data, err := imports.Process(out, src.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: !m.FixImports,
	})
	if err != nil {
		return nil, ErrFormat.Wrap(err).With(slog.String("output", out))
	}

	log.InfoContext(ctx, "generated",
		slog.String("output", out),
		slog.Int("templates", len(m.Templates)),
		slog.String("sum", sum),
	)

	return &File{Path: out, Sum: sum, Data: data}, nil
}

type unit struct {
	code    string
	imports []string
	out     lang.Output
}

func generateUnit(t *Template, opts []lang.Option) (unit, error) {
	if t.Type == "" {
		return signatureUnit(t, opts)
	}

	return methodUnit(t, opts)
}

// signatureUnit generates the function declared by the leading signature
// comment of the template.
func signatureUnit(t *Template, opts []lang.Option) (unit, error) {
	first, err := lang.FirstExpression(t.Source)
	if err != nil {
		return unit{}, ErrTemplate.Wrap(err).With(slog.String("template", t.Name))
	}

	if first == nil || first.Kind != lang.KindComment || strings.TrimSpace(first.Prefix) != "" {
		return unit{}, ErrSignature.With(slog.String("template", t.Name))
	}

	sig := strings.TrimSpace(first.Content)

	sink, ok := writerParam(sig)
	if !ok {
		return unit{}, ErrSignature.WithHead(sig).With(slog.String("template", t.Name))
	}

	out, err := lang.Compile(first.Postfix, append(opts, lang.WithSink(sink))...)
	if err != nil {
		return unit{}, ErrTemplate.Wrap(err).With(slog.String("template", t.Name))
	}

	deps := slices.Clone(t.Imports)
	if strings.Contains(sig, "io.Writer") {
		deps = append(deps, "io")
	}

	return unit{
		code:    sig + " {\n" + out.Code + "return nil\n}\n",
		imports: deps,
		out:     out,
	}, nil
}

// writerParam returns the name of the first parameter of the function
// signature sig.
func writerParam(sig string) (string, bool) {
	rest, ok := strings.CutPrefix(sig, "func")
	if !ok {
		return "", false
	}

	rest = strings.TrimSpace(rest)

	// Skip a method receiver.
	if strings.HasPrefix(rest, "(") {
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			return "", false
		}

		rest = rest[end+1:]
	}

	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return "", false
	}

	fields := strings.FieldsFunc(rest[open+1:], func(r rune) bool {
		return r == ' ' || r == '\t' || r == ',' || r == ')'
	})
	if len(fields) == 0 {
		return "", false
	}

	return fields[0], true
}

// methodUnit generates a method of the template's type and a String method
// rendering it.
func methodUnit(t *Template, opts []lang.Option) (unit, error) {
	recv, sink, method := t.receiver(), t.sink(), t.method()

	out, err := lang.Compile(t.Source,
		append(opts, lang.WithRoot(recv), lang.WithSink(sink))...)
	if err != nil {
		return unit{}, ErrTemplate.Wrap(err).With(slog.String("template", t.Name))
	}

	typ := t.Type
	if t.Pointer {
		typ = "*" + typ
	}

	head := "func (" + recv + " " + typ + ") "

	buf := "b"
	if recv == buf || sink == buf {
		buf = "buf"
	}

	var b strings.Builder

	b.WriteString("// " + method + " writes the " + t.Name + " template to " + sink + ".\n")
	b.WriteString(head + method + "(" + sink + " io.Writer) error {\n")
	b.WriteString(out.Code)
	b.WriteString("return nil\n}\n\n")
	b.WriteString("// String returns the rendered " + t.Name + " template.\n")
	b.WriteString(head + "String() string {\n")
	b.WriteString("var " + buf + " strings.Builder\n")
	b.WriteString("_ = " + recv + "." + method + "(&" + buf + ")\n")
	b.WriteString("return " + buf + ".String()\n}\n")

	return unit{
		code:    b.String(),
		imports: append(slices.Clone(t.Imports), "io", "strings"),
		out:     out,
	}, nil
}
