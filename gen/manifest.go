package gen

import (
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/hbs/lang"
)

// Default manifest values.
const (
	DefaultMethod = "Render"
	DefaultOutput = "hbs_gen.go"
)

// Template describes one generated function.
//
// With Type empty the template must begin with a comment holding the Go
// function signature to generate, e.g.
//
//	{{! func Page(w io.Writer, p *Page) error }}
//
// and paths resolve against the signature's parameters. With Type set, a
// method of Type is generated and paths resolve against its receiver.
type Template struct {
	// Name identifies the template in diagnostics. It defaults to the base
	// name of Path.
	Name string `yaml:"name,omitempty"`
	// Path is the template file, relative to the manifest.
	Path string `yaml:"path,omitempty"`
	// Source is the template text. It is read from Path if empty.
	Source string `yaml:"source,omitempty"`
	// Type is the receiver type of the generated method.
	Type string `yaml:"type,omitempty"`
	// Method is the name of the generated method.
	Method string `yaml:"method,omitempty"`
	// Receiver is the receiver name. It defaults to the lower-case initial
	// of Type.
	Receiver string `yaml:"receiver,omitempty"`
	// Pointer selects a pointer receiver.
	Pointer bool `yaml:"pointer,omitempty"`
	// Sink is the name of the io.Writer parameter of the method.
	Sink string `yaml:"sink,omitempty"`
	// Imports lists additional import paths used by the template.
	Imports []string `yaml:"imports,omitempty"`
}

// Manifest describes one generated Go file.
type Manifest struct {
	// Package is the package clause of the generated file.
	Package string `yaml:"package"`
	// Output is the generated file, relative to the manifest.
	Output string `yaml:"output,omitempty"`
	// Runtime is the import path of the runtime capability package.
	Runtime string `yaml:"runtime,omitempty"`
	// Fields is the spelling of template path segments: verbatim, camel or
	// lower-camel.
	Fields string `yaml:"fields,omitempty"`
	// FixImports resolves imports the templates reference but do not list.
	FixImports bool `yaml:"fix_imports,omitempty"`
	// Templates are generated in order.
	Templates []Template `yaml:"templates"`

	dir string
}

// LoadManifest reads a manifest from r. Relative paths in the manifest are
// resolved against dir.
func LoadManifest(r io.Reader, dir string) (*Manifest, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, ErrManifest.Wrap(err)
	}

	var m Manifest

	if err := yaml.UnmarshalWithOptions(data, &m, yaml.DisallowUnknownField()); err != nil {
		return nil, ErrManifest.Wrap(err)
	}

	m.dir = dir

	if err := m.validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// ReadManifest reads the manifest file at name.
func ReadManifest(name string) (*Manifest, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, ErrManifest.Wrap(err).With(slog.String("path", name))
	}
	defer f.Close()

	return LoadManifest(f, filepath.Dir(name))
}

// OutputPath returns the path of the generated file.
func (m *Manifest) OutputPath() string {
	out := m.Output
	if out == "" {
		out = DefaultOutput
	}

	if filepath.IsAbs(out) {
		return out
	}

	return filepath.Join(m.dir, out)
}

// RuntimeImport returns the import path of the runtime package.
func (m *Manifest) RuntimeImport() string {
	if m.Runtime == "" {
		return lang.RuntimeImport
	}

	return m.Runtime
}

func (m *Manifest) validate() error {
	if m.Package == "" {
		return ErrManifest.With(slog.String("field", "package"))
	}

	for i := range m.Templates {
		t := &m.Templates[i]

		if t.Path == "" && t.Source == "" {
			return ErrManifest.With(
				slog.Int("template", i),
				slog.String("field", "path"),
			)
		}

		if t.Name == "" {
			t.Name = strings.TrimSuffix(path.Base(filepath.ToSlash(t.Path)), path.Ext(t.Path))
		}

		if t.Name == "" || t.Name == "." {
			t.Name = t.Type
		}
	}

	return nil
}

// load reads the source of every template that has none.
func (m *Manifest) load() error {
	for i := range m.Templates {
		t := &m.Templates[i]
		if t.Source != "" {
			continue
		}

		name := t.Path
		if !filepath.IsAbs(name) {
			name = filepath.Join(m.dir, name)
		}

		src, err := readFile(name)
		if err != nil {
			return ErrTemplate.Wrap(err).With(slog.String("template", t.Name))
		}

		t.Source = string(src)
	}

	return nil
}

func (t *Template) receiver() string {
	if t.Receiver != "" {
		return t.Receiver
	}

	r, _ := utf8.DecodeRuneInString(strings.TrimLeft(t.Type, "*"))

	return string(unicode.ToLower(r))
}

func (t *Template) method() string {
	if t.Method != "" {
		return t.Method
	}

	return DefaultMethod
}

func (t *Template) sink() string {
	if t.Sink != "" {
		return t.Sink
	}

	return lang.DefaultSink
}
