package lang

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/ardnew/hbs/render"
)

// execHarness wraps generated code in a function writing to w, so the code
// can run under an interpreter against the compiled render package.
const execHarness = `package tmpl

import (
	"fmt"
	"io"
	"strings"

	"github.com/ardnew/hbs/render"
)

type User struct {
	Name  string
	Admin bool
}

type Data struct {
	Title  string
	Items  []string
	Users  []User
	Nick   *string
	Ok     bool
	Nums   []int
	Counts map[string]int
}

func execute(w io.Writer, d Data) error {
%s
	return nil
}

func Run(title string, items []string, ok bool, nick string) string {
	d := Data{
		Title:  title,
		Items:  items,
		Ok:     ok,
		Users:  []User{{Name: "ann", Admin: true}, {Name: "bob"}},
		Nums:   []int{10, 20},
		Counts: map[string]int{"a": 1},
	}
	if nick != "" {
		d.Nick = &nick
	}
	var b strings.Builder
	if err := execute(&b, d); err != nil {
		return err.Error()
	}
	return b.String()
}
`

// renderSymbols exposes the render package to the interpreter.
var renderSymbols = interp.Exports{
	"github.com/ardnew/hbs/render/render": {
		"Escaped": reflect.ValueOf((*render.Escaped)(nil)),
		"HTML":    reflect.ValueOf(render.HTML),
		"Lookup":  reflect.ValueOf(render.Lookup),
		"Plain":   reflect.ValueOf(render.Plain),
		"Text":    reflect.ValueOf((*render.Text)(nil)),
		"Truthy":  reflect.ValueOf(render.Truthy),
	},
}

type runFunc = func(title string, items []string, ok bool, nick string) string

func interpret(t *testing.T, src string) runFunc {
	t.Helper()

	out, err := Compile(src,
		WithRoot("d"),
		WithRuntime("render"),
		WithFieldCase(CaseCamel),
	)
	if err != nil {
		t.Fatalf("Compile(%q) error = %v", src, err)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		t.Fatalf("Use() error = %v", err)
	}

	if err := i.Use(renderSymbols); err != nil {
		t.Fatalf("Use(render) error = %v", err)
	}

	if _, err := i.Eval(fmt.Sprintf(execHarness, out.Code)); err != nil {
		t.Fatalf("Eval() error = %v\n%s", err, out.Code)
	}

	v, err := i.Eval("tmpl.Run")
	if err != nil {
		t.Fatalf("Eval(Run) error = %v", err)
	}

	return v.Interface().(runFunc)
}

func TestExecute(t *testing.T) {
	t.Parallel()

	type input struct {
		title string
		items []string
		ok    bool
		nick  string
	}

	tests := []struct {
		name string
		src  string
		in   input
		want string
	}{
		{
			name: "escaped value",
			src:  "<h1>{{title}}</h1>",
			in:   input{title: "a&b"},
			want: "<h1>a&amp;b</h1>",
		},
		{
			name: "raw value",
			src:  "{{{title}}}",
			in:   input{title: "<b>"},
			want: "<b>",
		},
		{
			name: "if true",
			src:  "{{#if ok}}yes{{else}}no{{/if}}",
			in:   input{ok: true},
			want: "yes",
		},
		{
			name: "if false",
			src:  "{{#if ok}}yes{{else}}no{{/if}}",
			want: "no",
		},
		{
			name: "unless truthy string",
			src:  "{{#unless title}}untitled{{/unless}}",
			in:   input{title: "x"},
			want: "",
		},
		{
			name: "each with index",
			src:  "{{#each items}}{{@index}}={{this}};{{else}}empty{{/each}}",
			in:   input{items: []string{"x", "y"}},
			want: "0=x;1=y;",
		},
		{
			name: "each empty",
			src:  "{{#each items}}{{@index}}={{this}};{{else}}empty{{/each}}",
			want: "empty",
		},
		{
			name: "some",
			src:  "{{#if_some nick}}@{{this}}{{else}}anon{{/if_some}}",
			in:   input{nick: "joe"},
			want: "@joe",
		},
		{
			name: "none",
			src:  "{{#if_some nick}}@{{this}}{{else}}anon{{/if_some}}",
			want: "anon",
		},
		{
			name: "named loop with parent",
			src:  "{{#each users as |u|}}{{#if u.admin}}*{{/if}}{{u.name}}@{{../title}} {{/each}}",
			in:   input{title: "T"},
			want: "*ann@T bob@T ",
		},
		{
			name: "loop by reference",
			src:  "{{#each_ref users}}{{name}};{{/each}}",
			want: "ann;bob;",
		},
		{
			name: "with",
			src:  "{{#with users}}{{#each this}}{{name}}{{/each}}{{/with}}",
			want: "annbob",
		},
		{
			name: "empty slice is falsy",
			src:  "{{#if items}}y{{else}}n{{/if}}",
			want: "n",
		},
		{
			name: "nil pointer renders empty",
			src:  "[{{nick}}]",
			want: "[]",
		},
		{
			name: "binding named like the counter",
			src:  "{{#each nums as |i|}}{{@index}}:{{i}},{{/each}}",
			want: "0:10,1:20,",
		},
		{
			name: "binding named like the else flag",
			src:  "{{#each items as |empty|}}{{empty}};{{else}}none{{/each}}",
			in:   input{items: []string{"x", "y"}},
			want: "x;y;",
		},
		{
			name: "binding named like the else flag without items",
			src:  "{{#each items as |empty|}}{{empty}};{{else}}none{{/each}}",
			want: "none",
		},
		{
			name: "binding named like the key",
			src:  "{{#each counts as |key|}}{{@key}}={{key}}{{/each}}",
			want: "a=1",
		},
		{
			name: "binding named like the optional",
			src:  "{{#if_some nick as |opt|}}{{opt}}{{/if_some}}",
			in:   input{nick: "joe"},
			want: "joe",
		},
		{
			name: "binding named like the reference sequence",
			src:  "{{#each_ref users as |seq|}}{{seq.name}}{{/each_ref}}",
			want: "annbob",
		},
		{
			name: "lookup slice",
			src:  "{{lookup items 1}}",
			in:   input{items: []string{"x", "y"}},
			want: "y",
		},
		{
			name: "lookup slice out of range",
			src:  "[{{lookup items 5}}]",
			in:   input{items: []string{"x"}},
			want: "[]",
		},
		{
			name: "lookup map",
			src:  `{{lookup counts "a"}}`,
			want: "1",
		},
		{
			name: "lookup map missing key",
			src:  `[{{lookup counts "z"}}]`,
			want: "[]",
		},
		{
			name: "lookup map in condition",
			src:  `{{#if (lookup counts "a")}}set{{/if}}`,
			want: "set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			run := interpret(t, tt.src)

			if got := run(tt.in.title, tt.in.items, tt.in.ok, tt.in.nick); got != tt.want {
				t.Errorf("Run(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}
