// Package lang compiles Handlebars-style templates into Go statements.
//
// The output of [Compiler.Compile] is not a rendered document but a sequence
// of Go statements that, placed in a function returning error, write the
// rendered template to an [io.Writer] named by [WithSink]. All name
// resolution happens at compile time; the generated code only calls the
// small set of runtime capabilities listed in [Output.Uses].
//
// # Markers
//
//	{{path}}                  HTML-escaped value
//	{{{path}}}                raw value
//	{{#helper arg}}…{{/helper}} block
//	{{else}}                  else branch of the innermost block
//	{{! text}} {{!-- text --}} comment
//	{{{{tag}}}}…{{{{/tag}}}}  raw block, emitted verbatim
//	\{{path}}                 literal "{{path}}"
//
// A '~' just inside either delimiter trims adjacent whitespace from the
// surrounding literal text.
//
// # Values
//
// A value marker holds a path, a private variable (@index, @key, @value), a
// string or number literal, a parenthesized subexpression, or a call of a
// function path with arguments:
//
//	{{name}}  {{this.name}}  {{../title}}  {{@index}}
//	{{format date "2006-01-02"}}  {{lookup items @index}}
//
// # Blocks
//
// [Builtins] registers if, unless, if_some, if_some_ref, with, with_ref,
// each and each_ref. Each block pushes a scope whose binding is named by its
// depth, so nested blocks never shadow each other in generated code:
//
//	{{#each items as |item|}}{{item.name}}{{/each}}
//
// compiles to a loop over items binding item_1. Custom helpers are added with
// [Registry.Register] and implemented against [Factory], [Block] and
// [Context].
//
// # Errors
//
// Compilation stops at the first error. Every error derives from one of the
// package sentinels, such as [ErrUnknownHelper], and carries a short snippet
// of the offending source reported by [Error.Near].
package lang
