// Package ui is the terminal front end. It turns key presses into engine
// intents and draws each snapshot; all project state lives in the engine.
package ui

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/avitaltamir/projectable/internal/components"
	"github.com/avitaltamir/projectable/internal/config"
	"github.com/avitaltamir/projectable/internal/engine"
	"github.com/avitaltamir/projectable/internal/layout"
	"github.com/avitaltamir/projectable/internal/preview"
	"github.com/avitaltamir/projectable/internal/state"
	"github.com/avitaltamir/projectable/internal/theme"
)

const (
	previewTimeout = 5 * time.Second
	resizeStep     = 5
)

// Options configures the model.
type Options struct {
	Settings config.Config
	State    state.State
	// StateDir receives the state on quit; empty disables saving.
	StateDir string
	Theme    *theme.Theme
	// Preview renders the right pane; nil leaves it empty.
	Preview *preview.Renderer
	Log     logrus.FieldLogger
}

// Model is the bubbletea model.
type Model struct {
	eng      *engine.Engine
	settings config.Config
	state    state.State
	stateDir string
	log      logrus.FieldLogger
	renderer *preview.Renderer

	keys   KeyMap
	help   help.Model
	theme  *theme.Theme
	styles theme.Styles

	snap          engine.Snapshot
	layout        layout.Layout
	width, height int
	ready         bool

	tree    components.Base
	preview viewport.Model
	current previewKey

	mode  inputMode
	input textinput.Model

	dialog  dialogKind
	choices chooser
	targets []string

	quitting bool
}

// New builds the model around eng, which it drives from Update.
func New(eng *engine.Engine, opts Options) Model {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	t := opts.Theme
	if t == nil {
		t = theme.Default()
	}
	m := Model{
		eng:      eng,
		settings: opts.Settings,
		state:    opts.State,
		stateDir: opts.StateDir,
		log:      log,
		renderer: opts.Preview,
		keys:     NewKeyMap(opts.Settings),
		help:     help.New(),
		theme:    t,
		styles:   theme.NewStyles(t),
		tree:     components.NewBase(0, 0),
		preview:  viewport.New(0, 0),
		input:    newInput(),
	}
	m.help.ShowAll = true
	m.tree.Focus()
	m.snap = eng.Step(nil)
	return m
}

func tick() tea.Cmd {
	return tea.Tick(engine.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the engine tick.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.relayout()
		cmd := m.syncPreview()
		return m, cmd

	case tickMsg:
		cmd := m.step(nil)
		return m, tea.Batch(cmd, tick())

	case previewMsg:
		if msg.key != m.current {
			return m, nil
		}
		m.setPreview(msg.content, msg.err)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// step hands one intent to the engine and refreshes everything derived
// from the new snapshot.
func (m *Model) step(in engine.Intent) tea.Cmd {
	m.snap = m.eng.Step(in)
	m.tree.Follow(m.snap.Cursor, len(m.snap.Rows))
	if m.snap.Prompt != nil && m.mode != modeCommandInput {
		m.dialog = dialogNone
		m.openInput(modeCommandInput, "")
	}
	return m.syncPreview()
}

func (m *Model) relayout() {
	if !m.ready {
		return
	}
	m.layout = layout.Calculate(m.width, m.height, layout.Options{
		LeftPercent: m.state.LeftPanelPercent,
		ShowLog:     m.state.ShowLog,
		ShowPrompt:  m.mode != modeNormal,
	})
	m.tree.SetSize(layout.Inner(m.layout.LeftWidth, m.layout.MainHeight))
	m.tree.Follow(m.snap.Cursor, len(m.snap.Rows))
	m.preview.Width, m.preview.Height = layout.Inner(m.layout.RightWidth, m.layout.MainHeight)
	m.input.Width = max(m.width-lipgloss.Width(m.promptLabel())-4, 1)
	m.help.Width = m.width
}

// syncPreview requests a preview when the selection, the filesystem or
// the diff mode changed since the last request.
func (m *Model) syncPreview() tea.Cmd {
	if m.renderer == nil || !m.ready {
		return nil
	}
	row, ok := m.snap.Selected()
	if !ok {
		m.current = previewKey{}
		m.preview.SetContent(m.styles.Placeholder.Render("(nothing selected)"))
		return nil
	}
	k := previewKey{path: row.Path, generation: m.snap.FSGeneration, diff: m.state.DiffMode}
	if k == m.current {
		return nil
	}
	m.current = k
	eng, r := m.eng, m.renderer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), previewTimeout)
		defer cancel()
		var content string
		var err error
		if k.diff {
			var diff string
			if diff, err = eng.Diff(ctx, k.path); err == nil {
				content, err = r.Diff(ctx, diff)
			}
		} else {
			content, err = r.File(ctx, k.path)
		}
		return previewMsg{key: k, content: content, err: err}
	}
}

func (m *Model) setPreview(content string, err error) {
	if err != nil {
		msg := m.styles.StatusError.Render(err.Error())
		if content != "" {
			msg += "\n" + content
		}
		content = msg
	}
	m.preview.SetContent(content)
	m.preview.GotoTop()
}

func (m *Model) scrollPreview(lines int) {
	m.preview.SetYOffset(m.preview.YOffset + lines)
}

func (m Model) scrollAmount() int {
	if n := m.settings.Preview.ScrollAmount; n > 0 {
		return n
	}
	return max(m.preview.Height/2, 1)
}

func (m *Model) openInput(mode inputMode, value string) {
	m.mode = mode
	m.input.Reset()
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	m.relayout()
}

func (m *Model) closeInput() {
	m.mode = modeNormal
	m.input.Blur()
	m.input.Reset()
	m.relayout()
}

func (m Model) promptLabel() string {
	if m.mode == modeCommandInput && m.snap.Prompt != nil {
		return m.snap.Prompt.Label
	}
	return m.mode.label()
}

func (m *Model) setTheme(t *theme.Theme) {
	m.theme = t
	m.styles = theme.NewStyles(t)
	m.state.Theme = t.Name
	// previews carry colors from the old theme
	m.current = previewKey{}
}

func (m *Model) resize(delta int) {
	pct := m.state.LeftPanelPercent
	if pct == 0 {
		pct = state.DefaultLeftPanelPercent
	}
	m.state.LeftPanelPercent = max(state.MinLeftPanelPercent, min(state.MaxLeftPanelPercent, pct+delta))
	m.relayout()
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.saveState()
	return m, tea.Quit
}

// saveState is best-effort; a failure is only logged.
func (m Model) saveState() {
	if m.stateDir == "" {
		return
	}
	if err := state.Save(m.stateDir, m.state); err != nil {
		m.log.WithError(err).Warn("failed to save state")
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.dialog != dialogNone {
		return m.handleDialogKey(msg)
	}
	if m.mode != modeNormal {
		return m.handleInputKey(msg)
	}

	if in := m.keyIntent(msg); in != nil {
		cmd := m.step(in)
		switch in.(type) {
		case engine.ToggleHidden:
			m.state.SetShowHidden(m.snap.ShowHidden)
		case engine.ToggleGitFilter:
			m.state.GitFilter = m.snap.GitFilter
		}
		return m, cmd
	}

	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m.quit()
	case key.Matches(msg, k.Help):
		m.dialog = dialogHelp
	case key.Matches(msg, k.DiffMode):
		m.state.DiffMode = !m.state.DiffMode
		cmd := m.syncPreview()
		return m, cmd

	case key.Matches(msg, k.Search):
		m.openInput(modeSearch, m.snap.Filter)
	case key.Matches(msg, k.ExecCmd):
		m.openInput(modeExec, "")
	case key.Matches(msg, k.NewFile):
		m.openInput(modeNewFile, "")
	case key.Matches(msg, k.NewDir):
		m.openInput(modeNewDir, "")
	case key.Matches(msg, k.Rename):
		if row, ok := m.snap.Selected(); ok {
			m.openInput(modeRename, row.Name)
		}

	case key.Matches(msg, k.SpecialCommand):
		m.choices = chooser{title: "Special commands", items: m.snap.SpecialCommands}
		m.dialog = dialogSpecial
	case key.Matches(msg, k.OpenMarks):
		items := make([]string, len(m.snap.Marks))
		for i, p := range m.snap.Marks {
			items[i] = m.rel(p)
		}
		m.choices = chooser{title: "Marks", items: items}
		m.dialog = dialogMarks
	case key.Matches(msg, k.Delete):
		if targets := m.eng.DeleteTargets(); len(targets) > 0 {
			m.targets = targets
			m.dialog = dialogDelete
		}

	case key.Matches(msg, k.PreviewDown):
		m.scrollPreview(m.scrollAmount())
	case key.Matches(msg, k.PreviewUp):
		m.scrollPreview(-m.scrollAmount())
	case key.Matches(msg, k.ToggleLog):
		m.state.ShowLog = !m.state.ShowLog
		m.relayout()
	case key.Matches(msg, k.Grow):
		m.resize(resizeStep)
	case key.Matches(msg, k.Shrink):
		m.resize(-resizeStep)
	case key.Matches(msg, k.NextTheme):
		m.setTheme(theme.Next(m.theme))
		cmd := m.syncPreview()
		return m, cmd
	}
	return m, nil
}

// keyIntent maps keys that translate directly into one engine intent.
// Configured commands are checked first so they can shadow built-ins.
func (m Model) keyIntent(msg tea.KeyMsg) engine.Intent {
	for _, c := range m.keys.Commands {
		if key.Matches(msg, c.Binding) {
			return engine.RunCommand{Raw: c.Command, FromConfig: true}
		}
	}

	k := m.keys
	switch {
	case key.Matches(msg, k.Down):
		return engine.MoveCursor{Delta: 1}
	case key.Matches(msg, k.Up):
		return engine.MoveCursor{Delta: -1}
	case key.Matches(msg, k.DownThree):
		return engine.MoveCursor{Delta: 3}
	case key.Matches(msg, k.UpThree):
		return engine.MoveCursor{Delta: -3}
	case key.Matches(msg, k.First):
		return engine.CursorFirst{}
	case key.Matches(msg, k.Last):
		return engine.CursorLast{}
	case key.Matches(msg, k.Open):
		return engine.Open{}
	case key.Matches(msg, k.Expand):
		return engine.Expand{}
	case key.Matches(msg, k.Collapse):
		return engine.Collapse{}
	case key.Matches(msg, k.OpenAll):
		return engine.ExpandAll{}
	case key.Matches(msg, k.CloseAll):
		return engine.CollapseAll{}
	case key.Matches(msg, k.OpenUnder):
		return engine.ExpandUnder{}
	case key.Matches(msg, k.CloseUnder):
		return engine.CollapseUnder{}
	case key.Matches(msg, k.KillProcesses):
		return engine.KillAll{}
	case key.Matches(msg, k.Refresh):
		return engine.Refresh{}
	case key.Matches(msg, k.Clear):
		return engine.ClearFilter{}
	case key.Matches(msg, k.MarkSelected):
		return engine.ToggleMark{}
	case key.Matches(msg, k.ShowDotfiles):
		return engine.ToggleHidden{}
	case key.Matches(msg, k.GitFilter):
		return engine.ToggleGitFilter{}
	case key.Matches(msg, k.Gitignore):
		return engine.ToggleGitignore{}
	}
	return nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mode := m.mode
	switch msg.Type {
	case tea.KeyEsc:
		m.closeInput()
		switch mode {
		case modeSearch:
			cmd := m.step(engine.ClearFilter{})
			return m, cmd
		case modeCommandInput:
			cmd := m.step(engine.CancelPrompt{})
			return m, cmd
		}
		return m, nil

	case tea.KeyEnter:
		value := m.input.Value()
		m.closeInput()
		var in engine.Intent
		switch mode {
		case modeExec:
			if value != "" {
				in = engine.RunCommand{Raw: value}
			}
		case modeNewFile:
			in = engine.NewFile{Name: value}
		case modeNewDir:
			in = engine.NewDir{Name: value}
		case modeRename:
			in = engine.Rename{To: value}
		case modeCommandInput:
			in = engine.SubmitPrompt{Text: value}
		}
		// search has nothing to submit; the filter was applied while typing
		if in == nil {
			return m, nil
		}
		cmd := m.step(in)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if mode == modeSearch && m.input.Value() != m.snap.Filter {
		filterCmd := m.step(engine.SetFilter{Query: m.input.Value()})
		return m, tea.Batch(cmd, filterCmd)
	}
	return m, cmd
}

func (m Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kind := m.dialog
	s := msg.String()

	if kind == dialogHelp {
		m.dialog = dialogNone
		return m, nil
	}
	if kind == dialogDelete {
		switch s {
		case "y", "Y", "enter":
			targets := m.targets
			m.dialog = dialogNone
			m.targets = nil
			cmd := m.step(engine.Delete{Paths: targets})
			return m, cmd
		case "n", "N", "esc", "q":
			m.dialog = dialogNone
			m.targets = nil
		}
		return m, nil
	}

	switch s {
	case "esc", "q":
		m.dialog = dialogNone
		return m, nil
	case "j", "down", "ctrl+n":
		m.choices.move(1)
		return m, nil
	case "k", "up", "ctrl+p":
		m.choices.move(-1)
		return m, nil
	case "enter":
	default:
		if len(s) != 1 || s[0] < '1' || s[0] > '9' {
			return m, nil
		}
		i := int(s[0] - '1')
		if i >= len(m.choices.items) {
			return m, nil
		}
		m.choices.cursor = i
	}

	i, ok := m.choices.selected()
	m.dialog = dialogNone
	if !ok {
		return m, nil
	}
	if kind == dialogSpecial {
		cmd := m.step(engine.RunSpecial{Index: i})
		return m, cmd
	}
	cmd := m.step(engine.JumpToMark{Path: m.snap.Marks[i]})
	return m, cmd
}

func (m Model) rel(path string) string {
	rel, err := filepath.Rel(m.snap.Root, path)
	if err != nil {
		return path
	}
	return rel
}

// View renders the screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading…"
	}

	s := m.styles
	switch m.dialog {
	case dialogHelp:
		return m.overlay(m.help.View(m.keys))
	case dialogSpecial, dialogMarks:
		return m.overlay(m.choices.view(s, m.width/2))
	case dialogDelete:
		return m.overlay(confirmView(s, m.snap.Root, m.targets, m.width/2))
	}

	l := m.layout
	tw, th := m.tree.Size()
	start := m.tree.Offset()
	end := min(start+th, len(m.snap.Rows))
	scroll := -1.0
	if total := len(m.snap.Rows); total > th {
		scroll = float64(start) / float64(total-th) * 100
	}
	treePanel := s.RenderPanel(renderTree(s, m.snap, start, end, tw), theme.PanelOptions{
		Title:  filepath.Base(m.snap.Root),
		Status: m.treeStatus(),
		Scroll: scroll,
		Hints:  "? help",
	}, l.LeftWidth, l.MainHeight, true)

	previewTitle := "Preview"
	if m.state.DiffMode {
		previewTitle = "Diff"
	}
	previewScroll := -1.0
	if m.preview.TotalLineCount() > m.preview.Height {
		previewScroll = m.preview.ScrollPercent() * 100
	}
	previewPanel := s.RenderPanel(m.preview.View(), theme.PanelOptions{
		Title:  previewTitle,
		Status: m.previewStatus(),
		Scroll: previewScroll,
	}, l.RightWidth, l.MainHeight, false)

	parts := []string{lipgloss.JoinHorizontal(lipgloss.Top, treePanel, previewPanel)}
	if l.LogVisible {
		lw, lh := layout.Inner(l.TotalWidth, l.LogHeight)
		parts = append(parts, s.RenderPanel(renderLog(s, m.snap.Log, lw, lh), theme.PanelOptions{
			Title:  "Log",
			Scroll: -1,
		}, l.TotalWidth, l.LogHeight, false))
	}
	if l.PromptVisible {
		parts = append(parts, m.promptView())
	}
	parts = append(parts, renderStatus(s, m.snap, m.width))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) treeStatus() string {
	if m.snap.Live {
		return theme.StatusLive
	}
	return theme.StatusStale
}

func (m Model) previewStatus() string {
	if row, ok := m.snap.Selected(); ok {
		return row.Name
	}
	return ""
}

func (m Model) promptView() string {
	s := m.styles
	line := s.PromptLabel.Render(m.promptLabel()+":") + m.input.View()
	return s.Prompt.Width(m.width).Render(truncate(line, m.width))
}

func (m Model) overlay(content string) string {
	box := m.styles.Dialog.Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
