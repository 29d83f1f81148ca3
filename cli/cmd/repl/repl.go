package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/hbs/cli/cmd"
	"github.com/ardnew/hbs/lang"
	"github.com/ardnew/hbs/log"
)

// editDoneMsg is sent when a template edited in the external editor compiled.
type editDoneMsg struct {
	src string
	out lang.Output
}

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a compile
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process fails for a reason other than
// compilation.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help               Print this cruft
  helpers            List block helpers
  root [name]        Show or set the root object
  sink [name]        Show or set the io.Writer name
  runtime [name]     Show or set the runtime qualifier ("-" for none)
  fields [case]      Show or set field spelling (verbatim, camel, lower-camel)
  edit               Edit a multi-line template in external $EDITOR
  clear              Clear screen
  quit               Exit REPL

Usage:
  Type a template to compile it into Go statements
  Completions appear after {{# and {{/ (helpers) and @ (private variables)
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between compile and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

func formatCommand(input string) string {
	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// Repl compiles templates interactively.
type Repl struct {
	Root    string `                   help:"Object that root paths resolve against."   short:"r"`
	Sink    string `default:"w"        help:"Name of the io.Writer receiving output."   short:"w"`
	Runtime string `default:"render"   help:"Qualifier of runtime capabilities, or empty."`
	Fields  string `default:"verbatim" help:"Spelling of path segments."                           enum:"verbatim,camel,lower-camel"`

	History bool `default:"true" help:"Keep input history in the cache directory." negatable:""`
}

// Run starts the interactive session.
func (r *Repl) Run(ctx context.Context, ktx *kong.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var cacheDir string
	if ktx != nil && ktx.Model != nil {
		cacheDir = ktx.Model.Vars()[cmd.CacheIdentifier]
	}

	path := ""
	if r.History && cacheDir != "" {
		path = filepath.Join(cacheDir, baseHistory)
	}

	logger := log.With(slog.String("cmd", "repl"))

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "history not loaded",
			slog.String("path", path),
			slog.Any("error", err),
		)
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("history", path),
		slog.Int("entries", history.Len()),
	)

	m := newModel(ctx, settings{
		root:    r.Root,
		sink:    r.Sink,
		runtime: r.Runtime,
		fields:  lang.ParseFieldCase(r.Fields),
	}, history, logger)

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()

	return err
}

// settings are the compiler options adjustable from command mode.
type settings struct {
	root    string
	sink    string
	runtime string
	fields  lang.FieldCase
}

func (s settings) options(logger log.Logger) []lang.Option {
	return []lang.Option{
		lang.WithRoot(s.root),
		lang.WithSink(s.sink),
		lang.WithRuntime(s.runtime),
		lang.WithFieldCase(s.fields),
		lang.WithLogger(logger),
	}
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	settings     settings
	registry     lang.Registry
	logger       log.Logger
	history      *History
	historyIdx   int
	last         string        // last compiled template, seeds edit
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string
	preTabCursor int
	width        int
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	s settings,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		settings:   s,
		registry:   lang.Builtins(),
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editDoneMsg:
		m.last = msg.src

		return m, tea.Println(renderOutput(msg.out))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		return m, tea.Println(hintStyle.Render("edit discarded"))

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()
	call := detectHelperCall(input, m.input.Position())

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		hint := "Type a template or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: help, helpers, root, fields, edit, quit (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))

	case call.inCall && m.mode == modeEval:
		if sig, ok := signatureOf(m.registry, call.name); ok {
			b.WriteString(renderSignatureHint(sig, call.argIndex))
		}
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the selected candidate by step, wrapping around.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	// Single candidate: complete and confirm immediately.
	if n == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + n) % n
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word with replacement and moves the
// cursor after it.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	next := input[:m.wordStart] + replacement + input[m.wordEnd:]
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(next)
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes the candidates for the current input. With
// autoConfirm, a word that already equals its only candidate is accepted.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if word := m.input.Value()[m.wordStart:m.wordEnd]; word == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	raw := m.input.Value()
	input := strings.TrimSpace(raw)

	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if _, err := m.history.WriteWithMode(input, m.mode); err != nil {
		m.logger.DebugContext(m.ctxFunc(), "history not written", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	m.last = raw

	return m, tea.Sequence(
		tea.Println(formatCommand(raw)),
		tea.Println(m.evaluate(raw)),
	)
}

// evaluate compiles src with the current settings and renders the result.
func (m model) evaluate(src string) string {
	out, err := lang.New(m.registry, m.settings.options(m.logger)...).Compile(src)

	m.logger.TraceContext(m.ctxFunc(), "repl compile",
		slog.Int("length", len(src)),
		slog.Bool("ok", err == nil),
	)

	if err != nil {
		return errorStyle.Render("error: " + err.Error())
	}

	return renderOutput(out)
}

// renderOutput renders generated code followed by a summary line.
func renderOutput(out lang.Output) string {
	var b strings.Builder

	if out.Code == "" {
		b.WriteString(hintStyle.Render("(no output)"))
	} else {
		b.WriteString(resultStyle.Render(strings.TrimSuffix(out.Code, "\n")))
	}

	b.WriteString("\n")

	summary := "writes: " + strconv.Itoa(out.Writes)
	if len(out.Uses) > 0 {
		summary += "  uses: " + strings.Join(out.Uses, ", ")
	}

	b.WriteString(hintStyle.Render(summary))

	return b.String()
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echo := tea.Println(formatCtrlCommand(input))
	name, args := parts[0], parts[1:]

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", name),
		slog.Any("args", args),
	)

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "helpers":
		return m, tea.Sequence(echo, tea.Println(m.listHelpers()))

	case "root", "sink", "runtime", "fields":
		var msg string

		m, msg = m.setting(name, args)

		return m, tea.Sequence(echo, tea.Println(msg))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Println(
			errorStyle.Render("unknown command: " + name + " (try 'help')"),
		)
	}
}

// setting shows the named setting, or sets it from args.
func (m model) setting(name string, args []string) (model, string) {
	value := strings.Join(args, " ")

	if len(args) > 0 {
		switch name {
		case "root":
			if value == "-" {
				value = ""
			}

			m.settings.root = value

		case "sink":
			if !isIdent(value) {
				return m, errorStyle.Render("invalid sink: " + strconv.Quote(value))
			}

			m.settings.sink = value

		case "runtime":
			if value == "-" {
				value = ""
			}

			m.settings.runtime = value

		case "fields":
			fc := lang.ParseFieldCase(value)
			if fc.String() != value && fc == lang.CaseVerbatim {
				return m, errorStyle.Render("invalid field case: " + strconv.Quote(value))
			}

			m.settings.fields = fc
		}
	}

	var cur string

	switch name {
	case "root":
		cur = m.settings.root
	case "sink":
		cur = m.settings.sink
	case "runtime":
		cur = m.settings.runtime
	case "fields":
		cur = m.settings.fields.String()
	}

	return m, hintStyle.Render(name+" = ") + resultStyle.Render(strconv.Quote(cur))
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}

	return true
}

func (m model) listHelpers() string {
	var b strings.Builder

	for _, name := range append(m.registry.Names(), lang.HelperLookup) {
		sig, _ := signatureOf(m.registry, name)
		b.WriteString(fmt.Sprintf("  %-12s %s\n", name, hintStyle.Render(sig.String())))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func (m model) edit() tea.Cmd {
	c := &editCommand{
		src:      m.last,
		ctxFunc:  m.ctxFunc,
		compiler: lang.New(m.registry, m.settings.options(m.logger)...),
		logger:   m.logger,
	}

	return tea.Exec(c, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case !c.done:
			return editCancelledMsg{}
		}

		return editDoneMsg{src: c.src, out: c.out}
	})
}

// historyStep moves through history by step. Unless inMode is set, the
// input mode follows the mode of each entry.
func (m model) historyStep(step int, inMode bool) model {
	n := m.history.Len()

	for i := m.historyIdx + step; i >= 0 && i < n; i += step {
		entry, err := m.history.GetEntry(i)
		if err != nil {
			break
		}

		if inMode && entry.Mode != m.mode {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	// Stepping past the newest entry clears the input.
	if step > 0 && m.historyIdx < n {
		m.historyIdx = n
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// switchToMode switches to mode, preserving the input of each mode.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText, m.evalCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}
