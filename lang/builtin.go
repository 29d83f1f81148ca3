package lang

import (
	"log/slog"
	"strings"
)

// Runtime capabilities referenced by generated code.
const (
	CapTruthy = "Truthy"
	CapPlain  = "Plain"
	CapHTML   = "HTML"
	CapLookup = "Lookup"
)

// Builtin helper names.
const (
	HelperIf        = "if"
	HelperUnless    = "unless"
	HelperIfSome    = "if_some"
	HelperIfSomeRef = "if_some_ref"
	HelperWith      = "with"
	HelperWithRef   = "with_ref"
	HelperEach      = "each"
	HelperEachRef   = "each_ref"
	HelperLookup    = "lookup"
)

// refSuffix marks the by-reference variant of a helper. A block opened by a
// by-reference helper may be closed by the base helper name.
const refSuffix = "_ref"

// Builtins returns a new registry holding the builtin block helpers.
func Builtins() Registry {
	return Registry{
		HelperIf:        condFactory(false),
		HelperUnless:    condFactory(true),
		HelperIfSome:    someFactory(false),
		HelperIfSomeRef: someFactory(true),
		HelperWith:      withFactory(false),
		HelperWithRef:   withFactory(true),
		HelperEach:      eachFactory{byRef: false},
		HelperEachRef:   eachFactory{byRef: true},
	}
}

// rootBlock owns the scope at depth 0.
type rootBlock struct{ BaseBlock }

// condBlock implements if and unless.
type condBlock struct {
	BaseBlock

	elsed bool
}

func condFactory(negate bool) FactoryFunc {
	return func(ctx *Context, arg *Token, e *Expression) (Block, error) {
		cond, err := ctx.Argument(arg, e)
		if err != nil {
			return nil, err
		}

		if err := ctx.NoMore(arg, e); err != nil {
			return nil, err
		}

		not := ""
		if negate {
			not = "!"
		}

		ctx.Write("if " + not + ctx.Capability(CapTruthy) + "(" + cond + ") {\n")

		return &condBlock{}, nil
	}
}

func (b *condBlock) Else(ctx *Context, e *Expression) error {
	if b.elsed {
		return ErrElseNotAllowed.WithHead(e.Raw)
	}

	b.elsed = true

	ctx.Write("} else {\n")

	return nil
}

// someBlock implements if_some and if_some_ref. Optional values are
// pointers; the pointee is bound by value, or the pointer itself by
// reference.
type someBlock struct {
	BaseBlock

	binding Binding
	elsed   bool
}

func someFactory(byRef bool) FactoryFunc {
	return func(ctx *Context, arg *Token, e *Expression) (Block, error) {
		val, err := ctx.Argument(arg, e)
		if err != nil {
			return nil, err
		}

		bind, err := ctx.Local(arg, e, This)
		if err != nil {
			return nil, err
		}

		ident := bind.Ident(ctx.Depth())

		if byRef {
			ctx.Write("if " + ident + " := " + val + "; " + ident + " != nil {\n")
		} else {
			opt := ctx.Name("opt")
			ctx.Write("if " + opt + " := " + val + "; " + opt + " != nil {\n")
			ctx.Write(ident + " := *" + opt + "\n")
			ctx.Declare(ident)
		}

		return &someBlock{binding: bind}, nil
	}
}

func (b *someBlock) Binding() Binding {
	if b.elsed {
		return Binding{}
	}

	return b.binding
}

func (b *someBlock) Else(ctx *Context, e *Expression) error {
	if b.elsed {
		return ErrElseNotAllowed.WithHead(e.Raw)
	}

	b.elsed = true

	ctx.Write("} else {\n")

	return nil
}

// withBlock implements with and with_ref.
type withBlock struct {
	BaseBlock

	binding Binding
	alias   string
}

func withFactory(byRef bool) FactoryFunc {
	return func(ctx *Context, arg *Token, e *Expression) (Block, error) {
		val, err := ctx.Argument(arg, e)
		if err != nil {
			return nil, err
		}

		bind, err := ctx.Local(arg, e, This)
		if err != nil {
			return nil, err
		}

		amp := ""
		if byRef {
			amp = "&"
		}

		ident := bind.Ident(ctx.Depth())
		ctx.Write("{\n" + ident + " := " + amp + val + "\n")
		ctx.Declare(ident)

		b := &withBlock{binding: bind}

		// A named binding leaves the context object reachable through the
		// argument path.
		if bind.Kind == BindNamed && arg.Kind == TokenPath {
			b.alias = arg.Value
		}

		return b, nil
	}
}

func (b *withBlock) Binding() Binding { return b.binding }

func (b *withBlock) This() string { return b.alias }

// eachFactory implements each and each_ref.
type eachFactory struct{ byRef bool }

func (eachFactory) OwnsPrivate() bool { return true }

// eachBlock is an open loop.
//
// The loop is wrapped in its own block whenever it declares a counter, an
// empty flag or a sequence variable, so sibling loops at the same depth never
// redeclare them.
type eachBlock struct {
	BaseBlock

	binding Binding
	depth   int
	byRef   bool
	index   bool
	keyed   bool
	hasElse bool
	elsed   bool
}

func (f eachFactory) Open(ctx *Context, arg *Token, e *Expression) (Block, error) {
	val, err := ctx.Argument(arg, e)
	if err != nil {
		return nil, err
	}

	bind, err := ctx.Local(arg, e, This)
	if err != nil {
		return nil, err
	}

	body, err := scanBody(e.Postfix, ctx.state.registry.ownsPrivate)
	if err != nil {
		return nil, err
	}

	b := &eachBlock{
		binding: bind,
		depth:   ctx.Depth(),
		byRef:   f.byRef,
		index:   body.index,
		keyed:   body.key || f.byRef,
		hasElse: body.hasElse,
	}

	ident := bind.Ident(b.depth)
	key := "_"

	if b.keyed {
		key = ctx.Name("key")
	}

	var code strings.Builder

	if b.wrapped() {
		code.WriteString("{\n")
	}

	if b.index {
		code.WriteString(b.counter() + " := 0\n")
	}

	if b.hasElse {
		code.WriteString(b.empty() + " := true\n")
	}

	if b.byRef {
		seq := ctx.Name("seq")
		code.WriteString(seq + " := " + val + "\n")
		code.WriteString("for " + key + " := range " + seq + " {\n")
		code.WriteString(ident + " := &" + seq + "[" + key + "]\n")
	} else {
		code.WriteString("for " + key + ", " + ident + " := range " + val + " {\n")
	}

	if b.hasElse {
		code.WriteString(b.empty() + " = false\n")
	}

	ctx.Write(code.String())
	ctx.Declare(ident)

	ctx.Logger().Trace("loop analyzed",
		slog.Int("depth", b.depth),
		slog.Bool("index", b.index),
		slog.Bool("key", b.keyed),
		slog.Bool("else", b.hasElse),
	)

	return b, nil
}

func (b *eachBlock) wrapped() bool { return b.index || b.hasElse || b.byRef }

func (b *eachBlock) counter() string { return internal("i", b.depth) }

func (b *eachBlock) empty() string { return internal("empty", b.depth) }

func (b *eachBlock) Binding() Binding {
	if b.elsed {
		return Binding{}
	}

	return b.binding
}

func (b *eachBlock) Private(ctx *Context, name string) (string, error) {
	switch name {
	case "index":
		if !b.index {
			return "", ErrUnboundPrivate.With(slog.String("name", name))
		}

		return b.counter(), nil

	case "key":
		if !b.keyed || b.elsed {
			return "", ErrUnboundPrivate.With(slog.String("name", name))
		}

		return internal("key", b.depth), nil

	case "value":
		if b.elsed {
			return "", ErrUnboundPrivate.With(slog.String("name", name))
		}

		return ctx.Bound(), nil
	}

	return "", ErrUnboundPrivate.With(slog.String("name", name))
}

func (b *eachBlock) Else(ctx *Context, e *Expression) error {
	if !b.hasElse || b.elsed {
		return ErrElseNotAllowed.WithHead(e.Raw)
	}

	b.elsed = true

	if b.index {
		ctx.Write(b.counter() + "++\n")
	}

	ctx.Write("}\nif " + b.empty() + " {\n")

	return nil
}

func (b *eachBlock) Close(ctx *Context, _ *Expression) error {
	if !b.elsed && b.index {
		ctx.Write(b.counter() + "++\n")
	}

	ctx.Write("}\n")

	if b.wrapped() {
		ctx.Write("}\n")
	}

	return nil
}
