package lang

import (
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// snippetLen is the maximum number of characters of template source carried
// by an error for diagnostics.
const snippetLen = 32

// Predefined errors (sentinel values).
//
// Errors returned by the compiler derive from one of these and match it with
// [errors.Is].
var (
	ErrUnterminatedMarker = NewError("unterminated marker")
	ErrEmptyBlock         = NewError("empty block content")
	ErrUnknownHelper      = NewError("unknown helper")
	ErrMissingArgument    = NewError("missing required argument")
	ErrArity              = NewError("argument count mismatch")
	ErrUnresolvableScope  = NewError("unable to resolve scope")
	ErrMismatchedClose    = NewError("mismatched block close")
	ErrElseNotAllowed     = NewError("else not allowed here")
	ErrUnboundPrivate     = NewError("unbound private variable")
	ErrUnbalancedParen    = NewError("unbalanced parentheses")
	ErrUnterminatedString = NewError("unterminated string literal")
	ErrUnclosedBlock      = NewError("unclosed block")
)

// Error represents a template compilation error with an optional source
// snippet and structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	near  string
	err   error       // Wrapped error (for errors.Unwrap)
	base  *Error      // Sentinel this error derives from
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg> near `<near>`: <err>"
	//   2. "<msg>: <err>"
	//   3. "<msg>"
	//   4. "<err>"
	part := make([]string, 0, 2)

	if e.msg != "" {
		msg := e.msg
		if e.near != "" {
			msg += " near `" + e.near + "`"
		}

		part = append(part, msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || (e.base != nil && e.base == t)
}

// Near returns the source snippet attached to the error, if any.
func (e *Error) Near() string { return e.near }

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.near != "" {
		attrs = append(attrs, slog.String("near", e.near))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// derive copies e into a new Error rooted at the same sentinel.
func (e *Error) derive() *Error {
	base := e.base
	if base == nil {
		base = e
	}

	return &Error{
		msg:   e.msg,
		near:  e.near,
		err:   e.err,
		base:  base,
		attrs: e.attrs, // Share attrs
	}
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	d := e.derive()
	d.err = err

	return d
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	d := e.derive()
	d.attrs = newAttrs

	return d
}

// WithTail attaches the trailing characters of src as the error's snippet.
func (e *Error) WithTail(src string) *Error {
	d := e.derive()
	d.near = tail(src, snippetLen)

	return d
}

// WithHead attaches the leading characters of src as the error's snippet.
func (e *Error) WithHead(src string) *Error {
	d := e.derive()
	d.near = head(src, snippetLen)

	return d
}

// tail returns at most n trailing runes of s.
func tail(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	i := len(s)
	for ; n > 0 && i > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}

	return s[i:]
}

// head returns at most n leading runes of s.
func head(s string, n int) string {
	i := 0
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}

	return s[:i]
}
