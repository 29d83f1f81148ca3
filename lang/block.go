package lang

import (
	"go/token"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/hbs/log"
)

// BindingKind classifies the local variable a block scope introduces.
type BindingKind int

const (
	BindNone  BindingKind = iota // none
	BindThis                     // this
	BindNamed                    // named
)

// Binding is the local variable introduced by a block scope.
type Binding struct {
	Kind BindingKind
	Name string
}

// This is the implicit binding of a block that changes the context object.
var This = Binding{Kind: BindThis}

// Ident returns the depth-qualified identifier of the binding.
func (b Binding) Ident(depth int) string {
	switch b.Kind {
	case BindThis:
		return qualify("this", depth)
	case BindNamed:
		return qualify(b.Name, depth)
	default:
		return ""
	}
}

func qualify(name string, depth int) string {
	return name + "_" + strconv.Itoa(depth)
}

// internal spells an identifier the compiler declares for itself. Bindings
// always end in '_' and the depth, so internal names omit the '_' and never
// collide with them.
func internal(name string, depth int) string {
	return name + strconv.Itoa(depth)
}

// Block is an open control-flow construct. Each block owns one scope, pushed
// when its factory opens it and popped when its close marker is compiled.
type Block interface {
	// Binding returns the local currently bound by the block's scope.
	Binding() Binding
	// This returns the template path through which unqualified references are
	// resolved in the parent scope, or "" if there is none.
	This() string
	// Private resolves a private variable owned by the block.
	// An empty result with a nil error defers to the enclosing scopes.
	Private(ctx *Context, name string) (string, error)
	// Else emits the code separating the block's body from its else branch.
	Else(ctx *Context, e *Expression) error
	// Close emits the code closing the block.
	Close(ctx *Context, e *Expression) error
}

// BaseBlock provides the behavior of a block that binds nothing, owns no
// private variables and rejects else. Embed it to override only what a block
// needs.
type BaseBlock struct{}

func (BaseBlock) Binding() Binding { return Binding{} }

func (BaseBlock) This() string { return "" }

func (BaseBlock) Private(*Context, string) (string, error) { return "", nil }

func (BaseBlock) Else(_ *Context, e *Expression) error {
	return ErrElseNotAllowed.WithHead(e.Raw)
}

func (BaseBlock) Close(ctx *Context, _ *Expression) error {
	ctx.Write("}\n")

	return nil
}

// Factory opens a block for a helper.
type Factory interface {
	// Open emits the code opening the block and returns it. Arg is the first
	// argument following the helper name, or nil if there is none.
	Open(ctx *Context, arg *Token, e *Expression) (Block, error)
}

// FactoryFunc adapts an ordinary function to the [Factory] interface.
type FactoryFunc func(ctx *Context, arg *Token, e *Expression) (Block, error)

// Open calls f(ctx, arg, e).
func (f FactoryFunc) Open(ctx *Context, arg *Token, e *Expression) (Block, error) {
	return f(ctx, arg, e)
}

// PrivateOwner is implemented by factories whose blocks own private
// variables. The pre-scan of a loop body uses it to decide which loop a
// private reference belongs to.
type PrivateOwner interface {
	OwnsPrivate() bool
}

// Registry maps helper names to block factories.
type Registry map[string]Factory

// Register adds f under name and returns the receiver.
func (r Registry) Register(name string, f Factory) Registry {
	r[name] = f

	return r
}

// Clone returns a copy of the registry.
func (r Registry) Clone() Registry { return maps.Clone(r) }

// Names returns the registered helper names in sorted order.
func (r Registry) Names() []string {
	return slices.Sorted(maps.Keys(r))
}

func (r Registry) ownsPrivate(name string) bool {
	o, ok := r[name].(PrivateOwner)

	return ok && o.OwnsPrivate()
}

// Context is the view of an in-flight compilation handed to factories and
// blocks.
type Context struct {
	state     *state
	depth     int
	declAt    int
	declIdent string
}

// Depth returns the depth of the block's scope.
func (c *Context) Depth() int { return c.depth }

// Name returns a hygienic identifier for name at the block's depth. It never
// equals the identifier of a binding.
func (c *Context) Name(name string) string { return internal(name, c.depth) }

// Resolve converts an argument token to a Go expression, resolved in the
// scope enclosing the block.
func (c *Context) Resolve(tok *Token) (string, error) {
	return c.state.resolveToken(tok, c.depth-1)
}

// Argument resolves the required argument tok of the block opened by e.
func (c *Context) Argument(tok *Token, e *Expression) (string, error) {
	if tok == nil {
		return "", ErrMissingArgument.WithHead(e.Raw)
	}

	return c.Resolve(tok)
}

// Local reads the optional "as |name|" binding following arg and returns it,
// or def if there is none.
func (c *Context) Local(arg *Token, e *Expression, def Binding) (Binding, error) {
	if arg == nil {
		return def, nil
	}

	next, err := arg.Next()
	if err != nil || next == nil {
		return def, err
	}

	if next.Kind != TokenPath || next.Value != "as" {
		return Binding{}, ErrArity.WithHead(e.Raw)
	}

	name := strings.Trim(next.Tail, "| \t\r\n")
	if name == "" {
		return Binding{}, ErrMissingArgument.WithHead(e.Raw)
	}

	if !token.IsIdentifier(name) {
		return Binding{}, ErrArity.WithHead(e.Raw).
			With(slog.String("binding", name))
	}

	return Binding{Kind: BindNamed, Name: name}, nil
}

// NoMore returns [ErrArity] if any token follows tok.
func (c *Context) NoMore(tok *Token, e *Expression) error {
	if tok == nil {
		return nil
	}

	next, err := tok.Next()
	if err != nil {
		return err
	}

	if next != nil {
		return ErrArity.WithHead(e.Raw)
	}

	return nil
}

// Capability returns the qualified name of a runtime capability and records
// that the generated code depends on it.
func (c *Context) Capability(name string) string {
	return c.state.capability(name)
}

// Write appends code to the output.
func (c *Context) Write(code string) {
	c.state.write(code)
}

// Declare records that ident was just declared. If the body never references
// the block's binding, ident is marked used at that point on close.
func (c *Context) Declare(ident string) {
	c.declAt = len(c.state.out)
	c.declIdent = ident
}

// Bound returns the identifier of the block's binding and marks it used.
func (c *Context) Bound() string {
	sc := &c.state.scopes[c.depth]
	sc.used = true

	return sc.block.Binding().Ident(c.depth)
}

// Logger returns the compile logger.
func (c *Context) Logger() log.Logger { return c.state.logger }
