package lang

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
)

const thisPath = "this"

// scope is one entry of the scope arena. Its depth is its index in the
// arena and its parent is the entry below it.
type scope struct {
	block     Block
	helper    string
	open      *Expression
	declIdent string
	declAt    int
	used      bool
}

// findScope strips one parent marker from path per ancestor level, starting
// at depth, and returns the remaining path with the depth it lands on.
func (s *state) findScope(path string, depth int) (string, int, error) {
	orig := path

	for {
		switch {
		case strings.HasPrefix(path, parentMark):
			if depth == 0 {
				return "", 0, ErrUnresolvableScope.WithHead(orig).
					With(slog.Int("depth", len(s.scopes)-1))
			}

			path = path[len(parentMark):]
			depth--

		case strings.HasPrefix(path, "./"):
			path = path[len("./"):]

		default:
			return path, depth, nil
		}
	}
}

// resolvePath converts a template path to a Go expression in the scope at
// depth.
func (s *state) resolvePath(path string, depth int) (string, error) {
	path, depth, err := s.findScope(path, depth)
	if err != nil {
		return "", err
	}

	return s.lookup(path, depth)
}

func (s *state) lookup(path string, depth int) (string, error) {
	if depth == 0 {
		return s.rooted(path)
	}

	sc := &s.scopes[depth]
	bind := sc.block.Binding()

	switch bind.Kind {
	case BindNamed:
		if path == bind.Name || strings.HasPrefix(path, bind.Name+".") {
			sc.used = true

			return bind.Ident(depth) + s.fieldPath(path[len(bind.Name):]), nil
		}

	case BindThis:
		sc.used = true

		return bind.Ident(depth) + s.fieldPath(trimThis(path)), nil
	}

	if alias := sc.block.This(); alias != "" {
		base, err := s.resolvePath(alias, depth-1)
		if err != nil {
			return "", err
		}

		return base + s.fieldPath(trimThis(path)), nil
	}

	return s.lookup(path, depth-1)
}

// rooted resolves path against the root object.
func (s *state) rooted(path string) (string, error) {
	rest := trimThis(path)

	if s.root == "" {
		if rest == "" {
			return "", ErrUnresolvableScope.WithHead(path)
		}

		// Free-standing identifiers keep their spelling.
		head, tail, _ := strings.Cut(rest[1:], ".")
		if tail != "" {
			tail = "." + tail
		}

		return head + s.fieldPath(tail), nil
	}

	return s.root + s.fieldPath(rest), nil
}

// trimThis removes a leading "this" segment and returns the remainder with
// its leading dot, or "" for "this" itself.
func trimThis(path string) string {
	if path == thisPath {
		return ""
	}

	if rest, ok := strings.CutPrefix(path, thisPath+"."); ok {
		return "." + rest
	}

	return "." + path
}

// fieldPath respells each segment of a dotted suffix like ".a.b".
func (s *state) fieldPath(suffix string) string {
	if s.fields == CaseVerbatim || suffix == "" {
		return suffix
	}

	segs := strings.Split(suffix, ".")
	for i, seg := range segs {
		if seg == "" {
			continue
		}

		switch s.fields {
		case CaseCamel:
			segs[i] = strcase.ToCamel(seg)
		case CaseLowerCamel:
			segs[i] = strcase.ToLowerCamel(seg)
		}
	}

	return strings.Join(segs, ".")
}

// resolvePrivate converts a private variable name to a Go expression by
// asking the blocks from the landing scope outward.
func (s *state) resolvePrivate(name string, depth int) (string, error) {
	name, depth, err := s.findScope(name, depth)
	if err != nil {
		return "", err
	}

	for d := depth; d > 0; d-- {
		ctx := &Context{state: s, depth: d}

		expr, err := s.scopes[d].block.Private(ctx, name)
		if err != nil {
			return "", WrapError(err).WithHead("@" + name)
		}

		if expr != "" {
			return expr, nil
		}
	}

	return "", ErrUnboundPrivate.WithHead("@" + name)
}

// resolveToken converts an argument token to a Go expression in the scope
// at depth.
func (s *state) resolveToken(tok *Token, depth int) (string, error) {
	switch tok.Kind {
	case TokenPrivate:
		return s.resolvePrivate(tok.Value, depth)

	case TokenString:
		return strconv.Quote(tok.Value), nil

	case TokenNumber:
		return tok.Value, nil

	case TokenSubExpr:
		expr, err := s.resolveCall(tok.Value, depth)
		if err != nil {
			return "", err
		}

		return "(" + expr + ")", nil

	default:
		return s.resolvePath(tok.Value, depth)
	}
}

// resolveCall converts value marker content to a Go expression: a single
// token, a lookup, or a call of the first token with the others as
// arguments.
func (s *state) resolveCall(content string, depth int) (string, error) {
	head, err := FirstToken(content)
	if err != nil {
		return "", err
	}

	if head == nil {
		return "", ErrEmptyBlock.WithHead(content)
	}

	args, err := Tokens(head.Tail)
	if err != nil {
		return "", err
	}

	if head.Kind == TokenPath && head.Value == HelperLookup {
		switch {
		case len(args) == 0:
			return "", ErrMissingArgument.WithHead(content).
				With(slog.String("helper", HelperLookup))
		case len(args) != 2:
			return "", ErrArity.WithHead(content).
				With(slog.String("helper", HelperLookup), slog.Int("args", len(args)))
		}

		return s.call(s.capability(CapLookup), args, depth)
	}

	fn, err := s.resolveToken(head, depth)
	if err != nil || len(args) == 0 {
		return fn, err
	}

	return s.call(fn, args, depth)
}

func (s *state) call(fn string, args []*Token, depth int) (string, error) {
	list := make([]string, len(args))

	for i, arg := range args {
		expr, err := s.resolveToken(arg, depth)
		if err != nil {
			return "", err
		}

		list[i] = expr
	}

	return fn + "(" + strings.Join(list, ", ") + ")", nil
}
