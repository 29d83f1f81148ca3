package lang

import (
	"log/slog"
	"slices"
	"strings"
)

// Output is the result of compiling a template.
type Output struct {
	// Code is a sequence of Go statements that write the rendered template to
	// the configured sink. It assumes an enclosing function returning error.
	Code string
	// Uses lists the runtime capabilities referenced by Code, sorted.
	Uses []string
	// Writes is the number of write statements in Code.
	Writes int
}

// Imports returns the import paths required by the generated code, given the
// import path of the runtime package.
func (o Output) Imports(runtimePath string) []string {
	var paths []string

	if o.Writes > 0 {
		paths = append(paths, "fmt")
	}

	if len(o.Uses) > 0 && runtimePath != "" {
		paths = append(paths, runtimePath)
	}

	return paths
}

// Compiler compiles templates into Go statements.
// A Compiler is safe for concurrent use if its registry is not modified.
type Compiler struct {
	registry Registry
	config   config
}

// New returns a compiler using the block helpers in reg, or [Builtins] if
// reg is nil.
func New(reg Registry, opts ...Option) *Compiler {
	if reg == nil {
		reg = Builtins()
	}

	return &Compiler{registry: reg, config: makeConfig(opts...)}
}

// Compile compiles src with the builtin helpers.
func Compile(src string, opts ...Option) (Output, error) {
	return New(nil, opts...).Compile(src)
}

// Compile compiles src. Compilation stops at the first error.
func (c *Compiler) Compile(src string) (Output, error) {
	s := &state{
		config:   c.config,
		registry: c.registry,
		scopes:   []scope{{block: rootBlock{}}},
		uses:     make(map[string]struct{}),
	}

	s.logger.Trace("compile", slog.Int("bytes", len(src)))

	rest := src

	e, err := FirstExpression(src)
	for ; e != nil && err == nil; e, err = e.Next() {
		s.literal(e.Prefix)

		if err = s.dispatch(e); err != nil {
			break
		}

		rest = e.Postfix
	}

	if err != nil {
		s.logger.Debug("compile failed", slog.Any("error", WrapError(err)))

		return Output{}, err
	}

	s.literal(rest)

	if top := len(s.scopes) - 1; top > 0 {
		sc := s.scopes[top]

		return Output{}, ErrUnclosedBlock.WithHead(sc.open.Raw).
			With(slog.String("helper", sc.helper), slog.Int("depth", top))
	}

	s.flush()

	code := Optimize(string(s.out), s.sink)

	out := Output{
		Code:   code,
		Uses:   s.usesList(),
		Writes: countWrites(code, s.sink),
	}

	s.logger.Trace("compiled",
		slog.Int("writes", out.Writes),
		slog.Any("uses", out.Uses),
	)

	return out, nil
}

// state is a single in-flight compilation.
type state struct {
	config

	registry Registry
	out      []byte
	scopes   []scope
	uses     map[string]struct{}
	pending  pendingWrite
}

func (s *state) depth() int { return len(s.scopes) - 1 }

func (s *state) usesList() []string {
	list := make([]string, 0, len(s.uses))
	for name := range s.uses {
		list = append(list, name)
	}

	slices.Sort(list)

	return list
}

func (s *state) dispatch(e *Expression) error {
	switch e.Kind {
	case KindComment:
		return nil

	case KindLiteral:
		s.literal(e.Content)

		return nil

	case KindEscaped:
		if e.IsElse() {
			return s.elseBranch(e)
		}

		if head, _ := splitHead(e.Content); head == "else" {
			// Chained else is not supported.
			return ErrElseNotAllowed.WithHead(e.Raw)
		}

		return s.emitValue(e, true)

	case KindRaw:
		return s.emitValue(e, false)

	case KindOpen:
		return s.open(e)

	case KindClose:
		return s.close(e)
	}

	return nil
}

func (s *state) emitValue(e *Expression, html bool) error {
	expr, err := s.resolveCall(e.Content, s.depth())
	if err != nil {
		return err
	}

	s.value(expr, html)

	return nil
}

func (s *state) open(e *Expression) error {
	helper, rest := splitHead(e.Content)
	if helper == "" {
		return ErrEmptyBlock.WithHead(e.Raw)
	}

	f, ok := s.registry[helper]
	if !ok {
		return ErrUnknownHelper.WithHead(e.Raw).
			With(slog.String("helper", helper))
	}

	arg, err := FirstToken(rest)
	if err != nil {
		return err
	}

	s.flush()

	ctx := &Context{state: s, depth: len(s.scopes)}

	b, err := f.Open(ctx, arg, e)
	if err != nil {
		return err
	}

	s.scopes = append(s.scopes, scope{
		block:     b,
		helper:    helper,
		open:      e,
		declAt:    ctx.declAt,
		declIdent: ctx.declIdent,
	})

	s.logger.Trace("block opened",
		slog.String("helper", helper),
		slog.Int("depth", ctx.depth),
	)

	return nil
}

func (s *state) close(e *Expression) error {
	top := s.depth()
	if top == 0 {
		return ErrMismatchedClose.WithHead(e.Raw)
	}

	sc := &s.scopes[top]

	name := strings.TrimSpace(e.Content)
	if name != sc.helper && name+refSuffix != sc.helper {
		return ErrMismatchedClose.WithHead(e.Raw).
			With(slog.String("open", sc.helper), slog.String("close", name))
	}

	s.flush()

	if err := sc.block.Close(&Context{state: s, depth: top}, e); err != nil {
		return err
	}

	if !sc.used && sc.declIdent != "" {
		s.out = slices.Insert(s.out, sc.declAt, []byte("_ = "+sc.declIdent+"\n")...)
	}

	s.scopes = s.scopes[:top]

	s.logger.Trace("block closed",
		slog.String("helper", sc.helper),
		slog.Int("depth", top),
	)

	return nil
}

func (s *state) elseBranch(e *Expression) error {
	top := s.depth()
	if top == 0 {
		return ErrElseNotAllowed.WithHead(e.Raw)
	}

	s.flush()

	return s.scopes[top].block.Else(&Context{state: s, depth: top}, e)
}
