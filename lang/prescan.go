package lang

import (
	"strings"
	"unicode"
)

// bodyScan summarizes the body of a loop.
type bodyScan struct {
	index   bool // @index refers to the loop
	key     bool // @key refers to the loop
	hasElse bool // {{else}} at the loop's own depth
}

// scanBody reads the markers of a loop body up to the close matching the
// loop and reports which of the loop's private variables are referenced.
//
// A private reference belongs to the loop when its parent markers land on a
// level at or below the loop and no block between that level and the loop
// owns private variables of its own, as reported by owns.
func scanBody(src string, owns func(helper string) bool) (bodyScan, error) {
	var (
		r     bodyScan
		stack []string // helpers opened inside the body
	)

	e, err := FirstExpression(src)
	for ; e != nil && err == nil; e, err = e.Next() {
		switch e.Kind {
		case KindOpen:
			// Block arguments are evaluated in the enclosing scope.
			helper, args := splitHead(e.Content)
			if err := r.note(args, stack, owns); err != nil {
				return r, err
			}

			stack = append(stack, helper)

		case KindClose:
			if len(stack) == 0 {
				return r, nil
			}

			stack = stack[:len(stack)-1]

		case KindEscaped:
			if e.IsElse() {
				if len(stack) == 0 {
					r.hasElse = true
				}

				continue
			}

			fallthrough

		case KindRaw:
			if err := r.note(e.Content, stack, owns); err != nil {
				return r, err
			}
		}
	}

	return r, err
}

func (r *bodyScan) note(content string, stack []string, owns func(string) bool) error {
	tok, err := FirstToken(content)
	for ; tok != nil && err == nil; tok, err = tok.Next() {
		switch tok.Kind {
		case TokenSubExpr:
			if err := r.note(tok.Value, stack, owns); err != nil {
				return err
			}

		case TokenPrivate:
			name, up := tok.Value, 0
			for strings.HasPrefix(name, parentMark) {
				name = name[len(parentMark):]
				up++
			}

			land := len(stack) - up
			if land < 0 || ownedBetween(stack[:land], owns) {
				continue
			}

			switch name {
			case "index":
				r.index = true
			case "key":
				r.key = true
			}
		}
	}

	return err
}

func ownedBetween(helpers []string, owns func(string) bool) bool {
	for _, h := range helpers {
		if owns(h) {
			return true
		}
	}

	return false
}

// splitHead splits marker content into its first word and the rest.
func splitHead(content string) (head, rest string) {
	i := strings.IndexFunc(content, unicode.IsSpace)
	if i < 0 {
		return content, ""
	}

	return content[:i], content[i:]
}
