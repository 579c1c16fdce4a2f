package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/macro/command"
	"github.com/ardnew/macro/lang"
	"github.com/ardnew/macro/log"
)

// editDoneMsg is sent when editing completes with source to evaluate.
type editDoneMsg struct{ source string }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a parse
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-parse error.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

// sessionName is the file name reported in positions of REPL input.
const sessionName = "repl"

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help     Print this cruft
  list     List session variables and functions
  reset    Discard every variable and function
  edit     Edit source in external $EDITOR and evaluate it
  clear    Clear screen
  quit     Exit REPL

Usage:
  Type statements or an expression to evaluate them; bindings persist
  Functions may be redefined; calls to unknown names run host commands
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between eval and command modes
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

// tag is the prefix of history entries entered in the mode.
func (m inputMode) tag() string {
	if m == modeCtrl {
		return "C"
	}

	return "E"
}

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
	outputStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// formatCommand formats the command echo line with prompt and input styled.
func formatCommand(input string) string {
	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

// formatCtrlCommand formats the control command echo line with prompt and input
// styled.
func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// Options configure an interactive session.
type Options struct {
	// Scope is the command scope that calls to undefined functions resolve
	// in.
	Scope string
	// Commands provides host commands. It may be nil.
	Commands *command.Registry
	// CacheDir holds the history file. History is not persisted when empty.
	CacheDir string
	// Preload is a program whose top-level statements run in the session
	// before the first prompt.
	Preload *lang.Scope
	// File names the preloaded program.
	File   string
	Logger log.Logger
	// ProgramOptions are passed to the bubbletea program.
	ProgramOptions []tea.ProgramOption
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	session      *lang.Session
	output       *bytes.Buffer // sink of print, flushed after each input
	commands     *command.Registry
	logger       log.Logger
	history      *History
	historyIdx   int
	buffer       string        // source last accepted by the editor
	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string      // backing candidate list
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
}

// Run starts the REPL and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts.Logger.TraceContext(ctx, "repl start",
		slog.String("cache_dir", opts.CacheDir),
		slog.String("scope", opts.Scope),
		slog.Bool("preload", opts.Preload != nil))

	m, err := newModel(ctx, opts)
	if err != nil {
		return err
	}

	if err := m.history.Load(); err != nil {
		opts.Logger.WarnContext(ctx, "could not load history",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	opts.Logger.TraceContext(ctx, "repl history loaded",
		slog.Int("entry_count", m.history.Len()))

	p := tea.NewProgram(m,
		append([]tea.ProgramOption{tea.WithContext(ctx)}, opts.ProgramOptions...)...)
	_, err = p.Run()

	return err
}

const (
	defaultWidth = 80
	cacheDirMode = 0o700
)

// newModel creates the session and runs the preloaded program in it.
func newModel(ctx context.Context, opts Options) (model, error) {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	var (
		out      bytes.Buffer
		provider command.Provider
	)

	if opts.Commands != nil {
		provider = opts.Commands
	}

	in := lang.NewInterpreter(
		lang.WithOutput(&out),
		lang.WithCommands(provider),
		lang.WithLogger(opts.Logger),
	)

	session := lang.NewSession(in, opts.Scope, sessionName)

	var historyPath string
	if opts.CacheDir != "" {
		if err := os.MkdirAll(opts.CacheDir, cacheDirMode); err != nil {
			return model{}, err
		}

		historyPath = filepath.Join(opts.CacheDir, baseHistory)
	}

	m := model{
		ctxFunc:  func() context.Context { return ctx },
		input:    ti,
		session:  session,
		output:   &out,
		commands: opts.Commands,
		logger:   opts.Logger,
		history:  NewHistory(historyPath),
		width:    defaultWidth,
		mode:     modeEval,
		suggIdx:  -1,
	}

	if opts.Preload != nil {
		if _, err := session.Exec(ctx, opts.Preload); err != nil {
			return m, err
		}

		m.buffer = lang.FormatString(opts.Preload, 2)

		opts.Logger.DebugContext(ctx, "repl preload complete",
			slog.String("file", opts.File),
			slog.Int("names", len(session.Names())))
	}

	return m, nil
}

func (m model) Init() tea.Cmd {
	if out := m.flush(); out != nil {
		return tea.Batch(out, textinput.Blink)
	}

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
		m.buffer = msg.source

		return m.evaluate(msg.source, false)

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

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
	call := detectFunctionCall(input, m.input.Position())

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		if m.mode == modeEval {
			b.WriteString(hintStyle.Render(
				"Type a statement or expression, or press Esc for commands"))
		} else {
			b.WriteString(hintStyle.Render(
				"Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"))
		}

	case m.mode == modeEval && call.inCall && len(m.signatures(call.name)) > 0:
		b.WriteString(renderSignatureHint(m.signatures(call.name), call.argName))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(
			m.matches, m.suggIdx, m.tabActive, m.width, m.callable))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)))

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
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.recall(-1, nil), nil

	case tea.KeyDown:
		return m.recall(1, nil), nil

	case tea.KeyShiftUp:
		return m.recall(-1, m.inMode), nil

	case tea.KeyShiftDown:
		return m.recall(1, m.inMode), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		return m.toggleMode(), nil

	case tea.KeyRunes, tea.KeySpace:
		// Space breaks tab-cycling and accepts the candidate.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// For any other key (backspace, delete, arrows, etc.),
	// update input and recompute matches without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step through the candidates. A single
// candidate is completed and confirmed immediately.
func (m model) cycle(step int) model {
	if len(m.matches) == 0 {
		return m
	}

	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newInput := input[:m.wordStart] + replacement + input[m.wordEnd:]
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(newInput)
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also confirms the completion when exactly one
// candidate remains and the typed word already equals it.
func refreshMatches(m *model, autoConfirm bool) {
	if m.tabActive {
		return
	}

	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()
	m.suggIdx = -1

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	return m.evaluate(input, true)
}

// evaluate runs input in the session and prints anything it printed,
// followed by its value or error.
func (m model) evaluate(input string, echo bool) (model, tea.Cmd) {
	ctx := m.ctxFunc()

	m.logger.TraceContext(ctx, "repl eval", slog.String("input", input))

	var cmds []tea.Cmd
	if echo {
		cmds = append(cmds, tea.Println(formatCommand(input)))
	}

	result, err := m.session.Eval(ctx, input)

	if out := m.flush(); out != nil {
		cmds = append(cmds, out)
	}

	switch {
	case err != nil:
		m.logger.TraceContext(ctx, "repl eval result",
			slog.String("result_type", "error"),
			slog.Any("error", err))

		cmds = append(cmds, tea.Println(errorStyle.Render("error: "+err.Error())))

	case result != nil:
		m.logger.TraceContext(ctx, "repl eval result",
			slog.String("result_type", lang.TypeName(lang.TypeOf(result))))

		cmds = append(cmds, tea.Println(formatResult(result)))
	}

	return m, tea.Sequence(cmds...)
}

// flush returns a command printing what the session wrote since the last
// flush, or nil if it wrote nothing.
func (m model) flush() tea.Cmd {
	if m.output.Len() == 0 {
		return nil
	}

	out := strings.TrimSuffix(m.output.String(), "\n")
	m.output.Reset()

	return tea.Println(outputStyle.Render(out))
}

// formatResult renders a value with its type. Strings are quoted.
func formatResult(v lang.Value) string {
	s := lang.FormatValue(v)
	if str, ok := v.(string); ok {
		s = strconv.Quote(str)
	}

	return resultStyle.Render(s) + " " +
		hintStyle.Render(lang.TypeName(lang.TypeOf(v)))
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echoCmd := tea.Println(formatCtrlCommand(input))

	m.logger.TraceContext(m.ctxFunc(), "repl exec command",
		slog.String("command", parts[0]),
		slog.Any("args", parts[1:]))

	switch parts[0] {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoCmd, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echoCmd, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echoCmd, tea.Println(m.listNames()))

	case "r", "reset":
		m.session.Reset()

		return m, tea.Sequence(echoCmd,
			tea.Println(hintStyle.Render("session reset")))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echoCmd, m.edit())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + parts[0] + " (try 'help')"),
		)
	}
}

// edit opens the editor on the last accepted buffer.
func (m model) edit() tea.Cmd {
	cmd := &editCommand{
		content: m.buffer,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		if cmd.result == "" {
			return editCancelledMsg{}
		}

		return editDoneMsg{source: cmd.result}
	})
}

// inMode reports whether e was entered in the current mode.
func (m model) inMode(e Entry) bool { return e.Mode == m.mode }

// recall moves through history by step, restricted to entries satisfying
// match when it is non-nil. Moving past the newest entry clears the input.
func (m model) recall(step int, match func(Entry) bool) model {
	i, ok := m.history.Search(m.historyIdx, step, match)
	if !ok {
		if step > 0 && m.historyIdx < m.history.Len() {
			m.historyIdx = m.history.Len()
			m.input.SetValue("")
			refreshMatches(&m, false)
		}

		return m
	}

	entry, err := m.history.Entry(i)
	if err != nil {
		return m
	}

	m.historyIdx = i

	if m.mode != entry.Mode {
		m = m.switchToMode(entry.Mode)
	}

	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	refreshMatches(&m, false)

	return m
}

// listNames describes each binding in the session.
func (m model) listNames() string {
	var b strings.Builder

	for _, name := range m.session.Names() {
		if sigs := m.session.Signatures(name); len(sigs) > 0 {
			for _, sig := range sigs {
				fmt.Fprintf(&b, "  %s\n", sig)
			}

			continue
		}

		v, err := m.session.Eval(m.ctxFunc(), name)
		if err != nil {
			continue
		}

		fmt.Fprintf(&b, "  %s %s\n", name, formatResult(v))
	}

	if b.Len() == 0 {
		return hintStyle.Render("  (empty)")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// toggleMode switches between eval and control modes, preserving input state.
func (m model) toggleMode() model {
	if m.mode == modeEval {
		return m.switchToMode(modeCtrl)
	}

	return m.switchToMode(modeEval)
}

// switchToMode switches to the specified mode, preserving input state.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText = m.input.Value()
		m.evalCursor = m.input.Position()
	} else {
		m.ctrlText = m.input.Value()
		m.ctrlCursor = m.input.Position()
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

	m.tabActive = false
	refreshMatches(&m, false)

	return m
}
