package repl

import "github.com/ardnew/hbs/lang"

// Predefined errors.
var (
	ErrOutOfBounds  = lang.NewError("history index out of range")
	ErrEditDeclined = lang.NewError("edit declined")
)
