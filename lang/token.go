package lang

import (
	"strings"
	"unicode"
)

// TokenKind classifies an argument token within marker content.
type TokenKind int

const (
	TokenPath    TokenKind = iota // path
	TokenPrivate                  // private
	TokenSubExpr                  // subexpr
	TokenString                   // string
	TokenNumber                   // number
)

func (k TokenKind) String() string {
	switch k {
	case TokenPath:
		return "path"
	case TokenPrivate:
		return "private"
	case TokenSubExpr:
		return "subexpr"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	default:
		return "unknown"
	}
}

const (
	privateMark = '@'
	parentMark  = "../"
)

// Token is one argument of a marker's content.
//
// Tokens form a lazy forward-only sequence: [FirstToken] reads the first
// token of some content and [Token.Next] reads the token following the
// receiver.
type Token struct {
	Kind TokenKind
	// Value is the token text without its decoration: the name of a private
	// variable without '@', the inner text of a sub-expression without the
	// parentheses, or the unescaped text of a string literal.
	Value string
	// Tail is the content remaining after the token.
	Tail string
}

// FirstToken returns the first token in src, or nil if src is blank.
func FirstToken(src string) (*Token, error) {
	return read(src)
}

// Next returns the token following t, or nil if none remain.
func (t *Token) Next() (*Token, error) {
	return read(t.Tail)
}

// Tokens reads all tokens in src.
func Tokens(src string) ([]*Token, error) {
	var list []*Token

	tok, err := FirstToken(src)
	for ; tok != nil && err == nil; tok, err = tok.Next() {
		list = append(list, tok)
	}

	return list, err
}

func read(src string) (*Token, error) {
	src = strings.TrimLeftFunc(src, unicode.IsSpace)
	if src == "" {
		return nil, nil
	}

	switch src[0] {
	case privateMark:
		end := wordEnd(src[1:]) + 1

		return &Token{Kind: TokenPrivate, Value: src[1:end], Tail: src[end:]}, nil

	case '(':
		return readSubExpr(src)

	case '"', '\'':
		return readString(src)
	}

	end := wordEnd(src)
	if end == 0 {
		// A path cannot start with a closing parenthesis.
		return nil, ErrUnbalancedParen.WithHead(src)
	}

	word := src[:end]
	kind := TokenPath

	if isNumber(word) {
		kind = TokenNumber
	}

	return &Token{Kind: kind, Value: word, Tail: src[end:]}, nil
}

// wordEnd returns the length of the word at the start of src, which ends at
// whitespace or a parenthesis.
func wordEnd(src string) int {
	i := strings.IndexFunc(src, func(r rune) bool {
		return unicode.IsSpace(r) || r == '(' || r == ')'
	})
	if i < 0 {
		return len(src)
	}

	return i
}

func readSubExpr(src string) (*Token, error) {
	depth := 0
	quote := byte(0)

	for i := 0; i < len(src); i++ {
		c := src[i]

		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return &Token{
					Kind:  TokenSubExpr,
					Value: strings.TrimSpace(src[1:i]),
					Tail:  src[i+1:],
				}, nil
			}
		}
	}

	if quote != 0 {
		return nil, ErrUnterminatedString.WithHead(src)
	}

	return nil, ErrUnbalancedParen.WithHead(src)
}

func readString(src string) (*Token, error) {
	quote := src[0]

	var b strings.Builder

	for i := 1; i < len(src); i++ {
		c := src[i]

		switch c {
		case '\\':
			if i+1 < len(src) {
				i++
				b.WriteByte(src[i])
			}
		case quote:
			return &Token{Kind: TokenString, Value: b.String(), Tail: src[i+1:]}, nil
		default:
			b.WriteByte(c)
		}
	}

	return nil, ErrUnterminatedString.WithHead(src)
}

func isNumber(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" || s == "." {
		return false
	}

	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}

	return true
}
