package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"help", "helpers", "root", "sink", "runtime", "fields", "edit", "clear", "quit",
}

// fieldCases are the arguments accepted by the fields command.
var fieldCases = []string{"verbatim", "camel", "lower-camel"}

// privates are the private variables a template may reference.
var privates = []string{"@index", "@key", "@value"}

// keywords may appear directly after an opening marker.
var keywords = []string{"else", "lookup", "this"}

// isWordBoundary reports whether r delimits words for completion. The '@'
// of a private variable and the '_' of a helper name belong to the word.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t', '\n',
		'{', '}', '(', ')',
		'.', '/', '#', '^', '~', '!', '&', '>',
		'|', '=', '"', '\'':
		return true
	}

	return false
}

// wordBounds returns the word at cursor and its byte boundaries within input.
// The word is empty when the cursor sits between two boundaries.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// wordContext classifies the position of a word within a template.
type wordContext int

const (
	contextText    wordContext = iota // outside any marker
	contextHelper                     // after {{# or {{/
	contextHead                       // first word of a value marker
	contextPrivate                    // a private variable
	contextArg                        // any later word of a marker
)

// contextOf classifies the word of input beginning at start.
func contextOf(input string, start int) wordContext {
	prefix := input[:start]

	open := strings.LastIndex(prefix, "{{")
	if open < 0 || strings.Contains(prefix[open:], "}}") {
		return contextText
	}

	if strings.HasPrefix(input[start:], "@") {
		return contextPrivate
	}

	head := strings.TrimLeft(prefix[open+2:], "{~")

	switch {
	case head == "#", head == "/", head == "^":
		return contextHelper
	case head == "":
		return contextHead
	}

	return contextArg
}

// candidatesFor returns the completion candidates of the word beginning at
// start.
func (m model) candidatesFor(input string, start int) []string {
	if m.mode == modeCtrl {
		fields := strings.Fields(input[:start])

		switch {
		case len(fields) == 0:
			return ctrlCommands
		case len(fields) == 1 && fields[0] == "fields":
			return fieldCases
		}

		return nil
	}

	switch contextOf(input, start) {
	case contextHelper:
		return m.registry.Names()
	case contextHead:
		return keywords
	case contextPrivate:
		return privates
	}

	return nil
}

// computeMatches returns the candidates matching the word at the cursor,
// best first, and the word boundaries. An empty word completes only after
// a helper marker so the hint line stays visible otherwise.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, start, end := wordBounds(input, m.input.Position())

	candidates := m.candidatesFor(input, start)
	if len(candidates) == 0 {
		return nil, start, end
	}

	if word == "" {
		if m.mode == modeCtrl || contextOf(input, start) != contextHelper {
			return nil, start, end
		}

		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, start, end
	}

	return fuzzy.Find(word, candidates), start, end
}

// renderCandidateBar renders the candidates on one line, ellipsized to width.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && i < len(matches)-1 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders one candidate with its matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base := suggestionStyle
	highlight := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		base = selectedStyle
		highlight = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
