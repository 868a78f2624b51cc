package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/vibe/lang"
	"github.com/ardnew/vibe/log"
)

// editDoneMsg is sent when source editing completes successfully.
type editDoneMsg struct{ lines int }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a
// transpile error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process fails for any other reason.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help          Print this cruft
  show          Print the session script
  unit          Transpile the session script and print the unit
  tree [line]   Print the markup tree of line (default: last input)
  types         List known host types
  type NAME...  Add known host types
  reset         Clear the session script
  edit          Edit the session script in external $EDITOR
  clear         Clear screen
  quit          Exit REPL

Usage:
  Type a script line to rewrite its markup and append it to the session
  Completions appear automatically as you type; after '<' all tags are shown
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between script and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Use Alt+Up/Alt+Down to switch to command mode and navigate command history
    (restores original mode when reaching end of history)
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

// formatCommand formats the echo line of script input.
func formatCommand(input string) string {
	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

// formatCtrlCommand formats the echo line of a control command.
func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc          func() context.Context
	input            textinput.Model
	session          *Session
	logger           log.Logger
	history          *History
	historyIdx       int
	matches          fuzzy.Matches // current fuzzy match results
	candidates       []string      // backing candidate list
	wordStart        int           // byte offset of current word start
	wordEnd          int           // byte offset of current word end
	suggIdx          int           // selected candidate index
	tabActive        bool          // whether user is tab-cycling
	preTabText       string        // input text before tab-cycling began
	preTabCursor     int           // cursor position before tab-cycling began
	altNavActive     bool          // whether user is in Alt+Up/Down navigation
	altNavOrigMode   inputMode     // original mode before Alt navigation
	altNavOrigText   string        // original text before Alt navigation
	altNavOrigCursor int           // original cursor position before Alt navigation
	width            int           // terminal width for ellipsization
	quitting         bool
	mode             inputMode
	evalText         string
	evalCursor       int
	ctrlText         string
	ctrlCursor       int
}

// Run starts the REPL over session. History is persisted in stateDir.
func Run(
	ctx context.Context,
	session *Session,
	stateDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("state_dir", stateDir),
		slog.Int("known_types", len(session.Types())),
	)

	history := NewHistory(filepath.Join(stateDir, baseHistory))
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	p := tea.NewProgram(newModel(ctx, session, history, logger), tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	session *Session,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		session:    session,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
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
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl edit complete",
			slog.Int("line_count", msg.lines),
		)

		return m, tea.Println(resultStyle.Render(
			"✔ session updated (" + strconv.Itoa(msg.lines) + " lines)",
		))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("🗴 edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("🗴 error: " + msg.err.Error()))
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
	tag := detectOpenTag(input, m.input.Position())

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		hint := "Type a script line or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: help, show, unit, tree, types, reset, edit, quit (Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))

	case tag.inTag && m.mode == modeEval:
		b.WriteString(m.session.renderTagHint(tag))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.altNavActive = false
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
		m.altNavActive = false

		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycleCandidate(1)

	case tea.KeyShiftTab:
		return m.cycleCandidate(-1)

	case tea.KeyUp:
		if msg.Alt {
			return m.historyCtrl(-1)
		}

		return m.historyStep(-1, false)

	case tea.KeyDown:
		if msg.Alt {
			return m.historyCtrl(1)
		}

		return m.historyStep(1, false)

	case tea.KeyShiftUp:
		return m.historyStep(-1, true)

	case tea.KeyShiftDown:
		return m.historyStep(1, true)

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		m.altNavActive = false

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl)
		}

		return m.switchToMode(modeEval)

	case tea.KeyRunes:
		// Space accepts the candidate while tab-cycling.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Any other key edits or moves without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.altNavActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycleCandidate moves the tab selection by step, wrapping at either end.
// A sole candidate is completed immediately.
func (m model) cycleCandidate(step int) (model, tea.Cmd) {
	n := len(m.matches)
	if n == 0 {
		return m, nil
	}

	if n == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m, nil
	}

	switch {
	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n
	case step < 0:
		m.suggIdx = n - 1
	default:
		m.suggIdx = 0
	}

	if !m.tabActive {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m, nil
}

// replaceCurrentWord replaces the current word in the input with replacement
// and moves the cursor after it.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// With autoConfirm, a sole candidate equal to the typed word is accepted.
// Deletions and cursor moves pass false so that editing never completes.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
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

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.TraceContext(m.ctxFunc(), "repl history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval", slog.String("input", input))

	echoCmd := tea.Println(formatCommand(input))

	out, err := m.session.Eval(m.ctxFunc(), input)
	if err != nil {
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl eval result",
			slog.String("error", err.Error()),
		)

		return m, tea.Sequence(
			echoCmd,
			tea.Println(errorStyle.Render("error: "+err.Error())),
		)
	}

	return m, tea.Sequence(echoCmd, tea.Println(resultStyle.Render(out)))
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	cmd, args := parts[0], parts[1:]

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", cmd),
		slog.Any("args", args),
	)

	echoCmd := tea.Println(formatCtrlCommand(input))
	reply := func(s string) tea.Cmd { return tea.Sequence(echoCmd, tea.Println(s)) }

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoCmd, tea.Quit)

	case "h", "help":
		return m, reply(helpMessage())

	case "s", "show":
		src := m.session.Source()
		if src == "" {
			return m, reply(hintStyle.Render("(empty)"))
		}

		return m, reply(strings.TrimRight(src, "\n"))

	case "u", "unit":
		unit, err := m.session.Unit(m.ctxFunc())
		if err != nil {
			return m, reply(errorStyle.Render("error: " + err.Error()))
		}

		return m, reply(resultStyle.Render(strings.TrimRight(unit.Text, "\n")))

	case "t", "tree":
		tree, err := m.session.Tree(
			m.ctxFunc(),
			strings.TrimSpace(strings.TrimPrefix(input, cmd)),
			lang.FormatText,
		)
		if err != nil {
			return m, reply(errorStyle.Render("error: " + err.Error()))
		}

		return m, reply(tree)

	case "types":
		return m, reply(strings.Join(m.session.Types(), " "))

	case "type":
		m.session.AddType(args...)

		return m, reply(hintStyle.Render(strconv.Itoa(len(m.session.Types())) + " known types"))

	case "reset":
		m.session.Reset()

		return m, reply(hintStyle.Render("session cleared"))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echoCmd, m.editCmd())

	default:
		return m, tea.Println(errorStyle.Render(
			ErrCommand.With(slog.String("command", cmd)).Error() + " (try 'help')",
		))
	}
}

func (m model) editCmd() tea.Cmd {
	cmd := &editSourceCommand{
		session: m.session,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case !cmd.edited:
			return editCancelledMsg{}
		default:
			return editDoneMsg{lines: m.session.Lines()}
		}
	})
}

// recall loads history entry i into the input, switching mode if needed.
func (m model) recall(i int) model {
	entry, err := m.history.Entry(i)
	if err != nil {
		return m
	}

	if m.mode != entry.Mode {
		m, _ = m.switchToMode(entry.Mode)
	}

	m.historyIdx = i
	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	refreshMatches(&m, false)

	return m
}

// seek returns the index of the next history entry from m.historyIdx in
// direction step whose mode satisfies keep, or -1.
func (m model) seek(step int, keep func(inputMode) bool) int {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		if entry, err := m.history.Entry(i); err == nil && keep(entry.Mode) {
			return i
		}
	}

	return -1
}

// historyStep navigates history in direction step. With sameMode, only
// entries of the current mode are visited. Stepping past the newest entry
// clears the input.
func (m model) historyStep(step int, sameMode bool) (model, tea.Cmd) {
	mode := m.mode
	keep := func(e inputMode) bool { return !sameMode || e == mode }

	if i := m.seek(step, keep); i >= 0 {
		return m.recall(i), nil
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m, nil
}

// historyCtrl navigates command history in direction step from any mode.
// Running off either end restores the mode and input held before.
func (m model) historyCtrl(step int) (model, tea.Cmd) {
	if !m.altNavActive {
		m.altNavActive = true
		m.altNavOrigMode = m.mode
		m.altNavOrigText = m.input.Value()
		m.altNavOrigCursor = m.input.Position()

		if m.mode != modeCtrl {
			m, _ = m.switchToMode(modeCtrl)
		}
	}

	if i := m.seek(step, func(e inputMode) bool { return e == modeCtrl }); i >= 0 {
		return m.recall(i), nil
	}

	m.altNavActive = false
	if m.altNavOrigMode != m.mode {
		m, _ = m.switchToMode(m.altNavOrigMode)
	}

	m.input.SetValue(m.altNavOrigText)
	m.input.SetCursor(m.altNavOrigCursor)
	m.historyIdx = m.history.Len()
	refreshMatches(&m, false)

	return m, nil
}

// switchToMode switches to mode, preserving the input of each mode.
func (m model) switchToMode(mode inputMode) (model, tea.Cmd) {
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

	return m, nil
}
