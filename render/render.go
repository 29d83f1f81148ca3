// Package render provides the runtime capabilities called by code generated
// from templates by package lang.
//
// Generated code writes values with [fmt.Fprintf] and a "%s" verb; [Plain]
// and [HTML] return [fmt.Formatter] values so that rendering happens directly
// into the writer without intermediate strings.
package render

import (
	"fmt"
	"io"
	"reflect"
	"strings"
)

// Truthy reports whether v selects the primary branch of a conditional block.
//
// Nil, false, zero numbers, empty strings, and empty arrays, slices, maps
// and channels are false. Pointers and interfaces are false when nil and
// otherwise delegate to their target. Everything else is true.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	}

	return truthy(reflect.ValueOf(v))
}

func truthy(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Invalid:
		return false
	case reflect.Bool:
		return rv.Bool()
	case reflect.String, reflect.Array, reflect.Slice, reflect.Map, reflect.Chan:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Complex64, reflect.Complex128:
		return rv.Complex() != 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return false
		}

		return truthy(rv.Elem())
	case reflect.Func, reflect.UnsafePointer:
		return !rv.IsNil()
	default:
		return true
	}
}

// Text is the plain rendering of a value.
type Text struct{ v any }

// Plain returns the plain rendering of v.
//
// Nil renders as empty text. Pointers and interfaces render their target,
// unless the pointer itself implements [fmt.Stringer] or error.
func Plain(v any) Text { return Text{v} }

// Format implements [fmt.Formatter].
func (t Text) Format(f fmt.State, _ rune) { writePlain(f, t.v) }

func (t Text) String() string { return fmt.Sprint(t) }

// Escaped is the HTML-escaped rendering of a value.
type Escaped struct{ v any }

// HTML returns the plain rendering of v with the characters & < > and "
// replaced by HTML entities.
func HTML(v any) Escaped { return Escaped{v} }

// Format implements [fmt.Formatter].
func (e Escaped) Format(f fmt.State, _ rune) {
	writePlain(escapeWriter{f}, e.v)
}

func (e Escaped) String() string { return fmt.Sprint(e) }

var htmlEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

type escapeWriter struct{ w io.Writer }

func (e escapeWriter) Write(p []byte) (int, error) {
	if _, err := htmlEscaper.WriteString(e.w, string(p)); err != nil {
		return 0, err
	}

	return len(p), nil
}

func writePlain(w io.Writer, v any) {
	v = deref(v)
	if v == nil {
		return
	}

	switch x := v.(type) {
	case string:
		_, _ = io.WriteString(w, x)
	case []byte:
		_, _ = w.Write(x)
	default:
		_, _ = fmt.Fprint(w, x)
	}
}

// deref follows pointers and interfaces to the first value that renders
// itself, returning nil if a nil is reached.
func deref(v any) any {
	for v != nil {
		switch v.(type) {
		case fmt.Stringer, error:
			rv := reflect.ValueOf(v)
			if rv.Kind() == reflect.Pointer && rv.IsNil() {
				return nil
			}

			return v
		}

		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer && rv.Kind() != reflect.Interface {
			return v
		}

		if rv.IsNil() {
			return nil
		}

		v = rv.Elem().Interface()
	}

	return nil
}

// Lookup returns the element of container at index, or nil if there is
// none.
//
// Slices and arrays are indexed by any integer; an index out of range yields
// nil. Maps are indexed by a key of their key type, or of the same kind, or
// by any integer if their key is an integer; a missing key yields nil. Pointers and interfaces are
// followed to their target.
func Lookup(container, index any) any {
	c := indirect(reflect.ValueOf(container))
	k := indirect(reflect.ValueOf(index))

	if !c.IsValid() || !k.IsValid() {
		return nil
	}

	switch c.Kind() {
	case reflect.Slice, reflect.Array:
		i, ok := position(k)
		if !ok || i < 0 || i >= c.Len() {
			return nil
		}

		return c.Index(i).Interface()

	case reflect.Map:
		kt := c.Type().Key()

		switch {
		case k.Type().AssignableTo(kt):
		case k.Kind() == kt.Kind(), isInteger(k) && isInteger(reflect.Zero(kt)):
			if !k.Type().ConvertibleTo(kt) {
				return nil
			}

			k = k.Convert(kt)
		default:
			return nil
		}

		if v := c.MapIndex(k); v.IsValid() {
			return v.Interface()
		}
	}

	return nil
}

// indirect follows pointers and interfaces until a nil or another kind.
func indirect(rv reflect.Value) reflect.Value {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}
		}

		rv = rv.Elem()
	}

	return rv
}

func isInteger(rv reflect.Value) bool { return rv.CanInt() || rv.CanUint() }

// position converts an integer-valued rv to an int.
func position(rv reflect.Value) (int, bool) {
	switch {
	case rv.CanInt():
		return int(rv.Int()), true
	case rv.CanUint():
		if u := rv.Uint(); u <= uint64(^uint(0)>>1) {
			return int(u), true
		}
	}

	return 0, false
}
