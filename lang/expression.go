package lang

import (
	"strings"
	"unicode"
)

// Kind classifies a marker found by the expression scanner.
type Kind int

const (
	KindComment Kind = iota // comment
	KindEscaped             // escaped
	KindRaw                 // raw
	KindOpen                // open
	KindClose               // close
	KindLiteral             // literal
)

func (k Kind) String() string {
	switch k {
	case KindComment:
		return "comment"
	case KindEscaped:
		return "escaped"
	case KindRaw:
		return "raw"
	case KindOpen:
		return "open"
	case KindClose:
		return "close"
	case KindLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Template delimiters.
const (
	openDelim     = "{{"
	closeDelim    = "}}"
	rawClose      = "}}}"
	commentOpen   = "!--"
	commentClose  = "--}}"
	commentTrim   = "--~}}"
	rawBlockOpen  = "{{{{"
	rawBlockClose = "}}}}"
	rawBlockEnd   = "{{{{/"
	trimMark      = '~'
	escapeMark    = '\\'
)

// Expression is one marker of a template together with the literal text
// preceding it and the input remaining after it.
//
// Expressions form a lazy forward-only sequence: [FirstExpression] scans the
// first marker of a template and [Expression.Next] scans the marker following
// the receiver.
type Expression struct {
	Kind Kind
	// Prefix is the literal text preceding the marker, after trimming.
	Prefix string
	// Content is the marker body with delimiters and trim marks removed.
	// For [KindLiteral] it is the verbatim text to emit.
	Content string
	// Postfix is the input following the marker, after trimming.
	Postfix string
	// Raw is the marker as written in the template.
	Raw string
}

// FirstExpression returns the first marker in src, or nil if src contains
// only literal text.
func FirstExpression(src string) (*Expression, error) {
	return scan(src)
}

// Next returns the marker following e, or nil if only literal text remains.
func (e *Expression) Next() (*Expression, error) {
	return scan(e.Postfix)
}

// IsElse reports whether e is an else marker.
func (e *Expression) IsElse() bool {
	return e.Kind == KindEscaped && e.Content == "else"
}

func scan(src string) (*Expression, error) {
	start := strings.Index(src, openDelim)
	if start < 0 {
		return nil, nil
	}

	if start > 0 && src[start-1] == escapeMark {
		if start < 2 || src[start-2] != escapeMark {
			return scanEscape(src, start)
		}
		// An escaped backslash precedes a regular marker.
		return scanMarker(src, src[:start-1], start)
	}

	return scanMarker(src, src[:start], start)
}

// scanEscape scans a marker preceded by a backslash, which is emitted
// verbatim without the backslash.
func scanEscape(src string, start int) (*Expression, error) {
	body := src[start+len(openDelim):]

	end := strings.Index(body, closeDelim)
	if end < 0 {
		return nil, ErrUnterminatedMarker.WithTail(src[:start+len(openDelim)])
	}

	stop := start + len(openDelim) + end + len(closeDelim)

	return &Expression{
		Kind:    KindLiteral,
		Prefix:  src[:start-1],
		Content: src[start:stop],
		Postfix: src[stop:],
		Raw:     src[start-1 : stop],
	}, nil
}

// commentEnd returns the offset in body of the first closer of a long comment,
// or -1, and that closer.
func commentEnd(body string) (int, string) {
	plain := strings.Index(body, commentClose)
	trimmed := strings.Index(body, commentTrim)

	if trimmed >= 0 && (plain < 0 || trimmed < plain) {
		return trimmed, commentTrim
	}

	return plain, commentClose
}

func scanMarker(src, prefix string, start int) (*Expression, error) {
	if strings.HasPrefix(src[start:], rawBlockOpen) {
		return scanRawBlock(src, prefix, start)
	}

	at := start + len(openDelim)
	rest := src[at:]

	trimLeft := false
	if len(rest) > 0 && rest[0] == trimMark {
		trimLeft = true
		rest = rest[1:]
		at++
	}

	var (
		kind   Kind
		closer = closeDelim
	)

	switch {
	case strings.HasPrefix(rest, commentOpen):
		kind, closer = KindComment, commentClose
		at += len(commentOpen)
	case strings.HasPrefix(rest, "!"):
		kind = KindComment
		at++
	case strings.HasPrefix(rest, "{"):
		kind, closer = KindRaw, rawClose
		at++
		// Trim mark may also follow the third brace.
		if at < len(src) && src[at] == trimMark {
			trimLeft = true
			at++
		}
	case strings.HasPrefix(rest, "#"):
		kind = KindOpen
		at++
	case strings.HasPrefix(rest, "/"):
		kind = KindClose
		at++
	default:
		kind = KindEscaped
	}

	body := src[at:]

	end := strings.Index(body, closer)
	if closer == commentClose {
		end, closer = commentEnd(body)
	}

	if end < 0 {
		return nil, ErrUnterminatedMarker.WithTail(src[:at])
	}

	content := body[:end]
	postfix := body[end+len(closer):]
	raw := src[start : at+end+len(closer)]

	trimRight := closer == commentTrim
	if n := len(content); n > 0 && content[n-1] == trimMark {
		trimRight = true
		content = content[:n-1]
	}

	if trimLeft {
		prefix = strings.TrimRightFunc(prefix, unicode.IsSpace)
	}

	if trimRight {
		postfix = strings.TrimLeftFunc(postfix, unicode.IsSpace)
	}

	if kind != KindComment {
		content = strings.TrimSpace(content)
		if content == "" {
			return nil, ErrEmptyBlock.WithTail(src[:at+end+len(closer)])
		}
	}

	return &Expression{
		Kind:    kind,
		Prefix:  prefix,
		Content: content,
		Postfix: postfix,
		Raw:     raw,
	}, nil
}

// scanRawBlock scans a raw block whose body is emitted verbatim up to the
// footer carrying the same tag as the opener.
func scanRawBlock(src, prefix string, start int) (*Expression, error) {
	at := start + len(rawBlockOpen)

	end := strings.Index(src[at:], rawBlockClose)
	if end < 0 {
		return nil, ErrUnterminatedMarker.WithTail(src[:at])
	}

	tag := strings.TrimSpace(src[at : at+end])
	if tag == "" {
		return nil, ErrEmptyBlock.WithTail(src[:at+end+len(rawBlockClose)])
	}

	body := at + end + len(rawBlockClose)

	for pos := body; pos < len(src); {
		foot := strings.Index(src[pos:], rawBlockEnd)
		if foot < 0 {
			break
		}

		foot += pos
		name := foot + len(rawBlockEnd)

		stop := strings.Index(src[name:], rawBlockClose)
		if stop < 0 {
			break
		}

		stop += name
		if strings.TrimSpace(src[name:stop]) == tag {
			stop += len(rawBlockClose)

			return &Expression{
				Kind:    KindLiteral,
				Prefix:  prefix,
				Content: src[body:foot],
				Postfix: src[stop:],
				Raw:     src[start:stop],
			}, nil
		}

		pos = name
	}

	return nil, ErrUnterminatedMarker.WithTail(src[:body])
}
