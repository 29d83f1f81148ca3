package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/hbs/lang"
)

// Signature styles.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("3")).
				Bold(true).
				Underline(true)
)

// signature describes the arguments of a helper.
type signature struct {
	name   string
	params []string
}

func (s signature) String() string {
	return strings.Join(append([]string{s.name}, s.params...), " ")
}

const localParam = "[as |name|]"

var signatures = map[string][]string{
	lang.HelperIf:        {"<cond>"},
	lang.HelperUnless:    {"<cond>"},
	lang.HelperIfSome:    {"<opt>", localParam},
	lang.HelperIfSomeRef: {"<opt>", localParam},
	lang.HelperWith:      {"<value>", localParam},
	lang.HelperWithRef:   {"<value>", localParam},
	lang.HelperEach:      {"<seq>", localParam},
	lang.HelperEachRef:   {"<seq>", localParam},
	lang.HelperLookup:    {"<seq>", "<index>"},
}

// signatureOf returns the signature of the named helper. Helpers in reg
// without a known signature take a single argument.
func signatureOf(reg lang.Registry, name string) (signature, bool) {
	if name == "" {
		return signature{}, false
	}

	if params, ok := signatures[name]; ok {
		return signature{name: name, params: params}, true
	}

	if _, ok := reg[name]; ok {
		return signature{name: name, params: []string{"<arg>"}}, true
	}

	return signature{}, false
}

// helperCall describes the marker enclosing the cursor.
type helperCall struct {
	name     string
	argIndex int
	inCall   bool
}

// detectHelperCall reports the helper named by the unterminated marker
// before cursor and the index of the argument being typed. The "as |name|"
// clause counts as a single argument.
func detectHelperCall(input string, cursor int) helperCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	prefix := input[:cursor]

	open := strings.LastIndex(prefix, "{{")
	if open < 0 || strings.Contains(prefix[open:], "}}") {
		return helperCall{}
	}

	body := strings.TrimLeft(prefix[open+2:], "{~")
	body = strings.TrimPrefix(body, "#")

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return helperCall{}
	}

	// The helper name must be complete before hints appear.
	if len(fields) == 1 && !strings.HasSuffix(body, " ") {
		return helperCall{}
	}

	args := fields[1:]

	idx := len(args)
	if !strings.HasSuffix(body, " ") {
		idx--
	}

	for i, a := range args {
		if a == "as" {
			idx = min(idx, i)

			break
		}
	}

	return helperCall{name: fields[0], argIndex: max(idx, 0), inCall: true}
}

// renderSignatureHint renders sig with the parameter at current highlighted.
func renderSignatureHint(sig signature, current int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(sig.name))

	for i, p := range sig.params {
		b.WriteString(signatureStyle.Render(" "))

		if i == current {
			b.WriteString(currentParamStyle.Render(p))
		} else {
			b.WriteString(signatureStyle.Render(p))
		}
	}

	return b.String()
}
