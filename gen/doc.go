// Package gen generates Go source files from templates listed in a YAML
// manifest.
//
//	package: views
//	output: views_gen.go
//	fields: camel
//	templates:
//	  - path: greet.hbs          # {{! func Greet(w io.Writer, name string) error }}...
//	  - path: page.hbs
//	    type: Page
//	    pointer: true
//
// Each generated file starts with a header marking it generated and a
// checksum of its inputs, so [Current] can tell whether regeneration is
// needed without compiling anything.
package gen
