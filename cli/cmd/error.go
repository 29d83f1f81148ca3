package cmd

import "github.com/ardnew/hbs/lang"

// Command errors carry structured attributes like the compiler's errors.
var (
	ErrJSONMarshal = lang.NewError("marshal JSON")
	ErrYAMLMarshal = lang.NewError("marshal YAML")
	ErrWriteConfig = lang.NewError("write configuration file")
	ErrWriteOutput = lang.NewError("write generated file")
	ErrFileExists  = lang.NewError("file exists (use --force to overwrite)")
	ErrStale       = lang.NewError("generated file is out of date")
)
