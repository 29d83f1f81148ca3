package gen

import "github.com/ardnew/hbs/lang"

// Predefined errors.
var (
	ErrManifest  = lang.NewError("invalid manifest")
	ErrTemplate  = lang.NewError("invalid template")
	ErrSignature = lang.NewError("template must begin with a function signature comment")
	ErrFormat    = lang.NewError("failed to format generated code")
)
