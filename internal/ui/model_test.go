package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avitaltamir/projectable/internal/config"
	"github.com/avitaltamir/projectable/internal/engine"
	"github.com/avitaltamir/projectable/internal/logging"
	"github.com/avitaltamir/projectable/internal/preview"
	"github.com/avitaltamir/projectable/internal/state"
	"github.com/avitaltamir/projectable/internal/theme"
)

func testProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.go"), []byte("package main\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("hello readme\n"), 0o644))
	return root
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Filetree.UseGit = false
	return cfg
}

// startModel builds a model and delivers the first window size, returning
// the command that produced.
func startModel(t *testing.T, root string, opts Options) (Model, tea.Cmd) {
	t.Helper()
	if opts.Settings.ProjectRoots == nil {
		opts.Settings = testConfig()
	}
	if opts.State.LeftPanelPercent == 0 {
		opts.State = state.DefaultState()
	}
	opts.Log = logging.Discard()
	eng, err := engine.New(engine.Config{Root: root, Settings: opts.Settings}, engine.Deps{
		Log:     opts.Log,
		NoWatch: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })

	return update(t, New(eng, opts), tea.WindowSizeMsg{Width: 120, Height: 40})
}

func newModel(t *testing.T, root string, opts Options) Model {
	t.Helper()
	m, _ := startModel(t, root, opts)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m, _ = update(t, m, keyMsg(k))
	}
	return m
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func selected(t *testing.T, m Model) string {
	t.Helper()
	row, ok := m.snap.Selected()
	require.True(t, ok)
	return row.Name
}

func TestKeyMapFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Keys.Down = "s"
	cfg.Commands = []config.KeyCommand{{Key: "b", Command: "make build"}}

	km := NewKeyMap(cfg)
	assert.Equal(t, []string{"s", "down"}, km.Down.Keys())
	require.Len(t, km.Commands, 1)
	assert.Equal(t, "make build", km.Commands[0].Command)
	assert.Equal(t, []string{"b"}, km.Commands[0].Binding.Keys())

	cols := km.FullHelp()
	assert.Len(t, cols[len(cols)-1], 1, "commands get their own help column")
	assert.NotEmpty(t, km.ShortHelp())
}

func TestNavigation(t *testing.T) {
	m := newModel(t, testProject(t), Options{})
	assert.Equal(t, "src", selected(t, m))

	m = press(t, m, "j")
	assert.Equal(t, "README.md", selected(t, m))

	m = press(t, m, "g", "enter")
	require.Len(t, m.snap.Rows, 3)
	assert.Equal(t, "main.go", m.snap.Rows[1].Name)

	m = press(t, m, "j", "left")
	assert.Equal(t, "src", selected(t, m), "collapse on a file selects its parent")

	m = press(t, m, "G")
	assert.Equal(t, "README.md", selected(t, m))
}

func TestSearchMode(t *testing.T) {
	m := newModel(t, testProject(t), Options{})

	m = press(t, m, "/")
	assert.Equal(t, modeSearch, m.mode)
	assert.True(t, m.layout.PromptVisible)

	m = typeText(t, m, "main")
	assert.Equal(t, "main", m.snap.Filter)
	assert.Equal(t, 1, m.snap.Matches)

	m = press(t, m, "enter")
	assert.Equal(t, modeNormal, m.mode)
	assert.Equal(t, "main", m.snap.Filter, "enter keeps the filter")

	m = press(t, m, "/", "esc")
	assert.Empty(t, m.snap.Filter)
	assert.False(t, m.layout.PromptVisible)
}

func TestCreateRenameDelete(t *testing.T) {
	root := testProject(t)
	m := newModel(t, root, Options{})
	m = press(t, m, "G")

	m = press(t, m, "n")
	m = typeText(t, m, "notes.txt")
	m = press(t, m, "enter")
	assert.FileExists(t, filepath.Join(root, "notes.txt"))
	assert.Equal(t, "notes.txt", selected(t, m))

	m = press(t, m, "r")
	assert.Equal(t, "notes.txt", m.input.Value(), "rename starts from the current name")
	m.input.SetValue("todo.txt")
	m = press(t, m, "enter")
	assert.FileExists(t, filepath.Join(root, "todo.txt"))
	assert.NoFileExists(t, filepath.Join(root, "notes.txt"))

	m = press(t, m, "d")
	require.Equal(t, dialogDelete, m.dialog)
	assert.Contains(t, ansi.Strip(m.View()), "todo.txt")

	m = press(t, m, "n")
	assert.Equal(t, dialogNone, m.dialog)
	assert.FileExists(t, filepath.Join(root, "todo.txt"))

	m = press(t, m, "d", "y")
	assert.NoFileExists(t, filepath.Join(root, "todo.txt"))
}

func TestDeleteConfirmsTheListedTargets(t *testing.T) {
	root := testProject(t)
	m := newModel(t, root, Options{})
	m = press(t, m, "G", "d")
	require.Equal(t, []string{filepath.Join(root, "README.md")}, m.targets)

	// the target disappears and the engine keeps stepping under the dialog
	require.NoError(t, os.Remove(filepath.Join(root, "README.md")))
	m, _ = update(t, m, tickMsg{})
	m.eng.Step(engine.Select{Path: filepath.Join(root, "src")})
	m = press(t, m, "y")

	assert.Equal(t, dialogNone, m.dialog)
	assert.DirExists(t, filepath.Join(root, "src"), "only the confirmed path is deleted")
	assert.FileExists(t, filepath.Join(root, "src", "main.go"))
}

func TestMarksPopup(t *testing.T) {
	m := newModel(t, testProject(t), Options{})
	m = press(t, m, "j", "m", "g")
	require.Len(t, m.snap.Marks, 1)

	m = press(t, m, "M")
	require.Equal(t, dialogMarks, m.dialog)
	assert.Equal(t, []string{"README.md"}, m.choices.items)

	m = press(t, m, "1")
	assert.Equal(t, dialogNone, m.dialog)
	assert.Equal(t, "README.md", selected(t, m))
}

func TestCommandInputFromPrompt(t *testing.T) {
	cfg := testConfig()
	cfg.Commands = []config.KeyCommand{{Key: "a", Command: "echo {...}"}}
	m := newModel(t, testProject(t), Options{Settings: cfg})

	m = press(t, m, "a")
	require.NotNil(t, m.snap.Prompt)
	assert.Equal(t, modeCommandInput, m.mode)
	assert.Equal(t, "echo", m.promptLabel())

	m = press(t, m, "esc")
	assert.Nil(t, m.snap.Prompt)
	assert.Equal(t, modeNormal, m.mode)
}

func TestLayoutToggles(t *testing.T) {
	m := newModel(t, testProject(t), Options{})
	require.True(t, m.layout.LogVisible)

	m = press(t, m, "L")
	assert.False(t, m.layout.LogVisible)
	assert.False(t, m.state.ShowLog)

	for range 20 {
		m = press(t, m, ">")
	}
	assert.Equal(t, state.MaxLeftPanelPercent, m.state.LeftPanelPercent)
	for range 20 {
		m = press(t, m, "<")
	}
	assert.Equal(t, state.MinLeftPanelPercent, m.state.LeftPanelPercent)

	before := m.theme.Name
	m = press(t, m, "ctrl+t")
	assert.NotEqual(t, before, m.theme.Name)
	assert.Equal(t, m.theme.Name, m.state.Theme)
}

func TestQuitSavesState(t *testing.T) {
	dir := t.TempDir()
	m := newModel(t, testProject(t), Options{StateDir: dir})
	m = press(t, m, ".", "v", "L")

	m, cmd := update(t, m, keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())

	saved := state.Load(dir)
	assert.True(t, saved.HiddenOr(false))
	assert.True(t, saved.DiffMode)
	assert.False(t, saved.ShowLog)
}

func TestPreview(t *testing.T) {
	r, err := preview.New(preview.Options{Styles: theme.NewStyles(theme.Default())})
	require.NoError(t, err)
	root := testProject(t)

	m, cmd := startModel(t, root, Options{Preview: r})
	require.NotNil(t, cmd, "first layout requests a preview")

	msg, ok := cmd().(previewMsg)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "src"), msg.key.path)
	m, _ = update(t, m, msg)
	assert.Contains(t, ansi.Strip(m.preview.View()), "main.go")

	m, cmd = update(t, m, keyMsg("j"))
	require.NotNil(t, cmd)
	fresh := cmd().(previewMsg)

	// a late result for the old selection is dropped
	m, _ = update(t, m, msg)
	m, _ = update(t, m, fresh)
	assert.Contains(t, ansi.Strip(m.preview.View()), "hello readme")

	_, cmd = update(t, m, keyMsg("k"))
	require.NotNil(t, cmd)
	_, cmd = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Nil(t, cmd, "unchanged selection is not re-rendered")
}

func TestViewFillsScreen(t *testing.T) {
	m := newModel(t, testProject(t), Options{})
	out := m.View()
	assert.Equal(t, 40, lipgloss.Height(out))
	plain := ansi.Strip(out)
	assert.Contains(t, plain, "README.md")
	assert.Contains(t, plain, "stale", "no watcher in tests")

	m = press(t, m, "?")
	assert.Equal(t, dialogHelp, m.dialog)
	assert.Contains(t, ansi.Strip(m.View()), "quit")
	m = press(t, m, "x")
	assert.Equal(t, dialogNone, m.dialog)
}

func TestHighlightName(t *testing.T) {
	tests := []struct {
		name  string
		match []int
	}{
		{"plain", nil},
		{"main.go", []int{0, 1}},
		{"héllo", []int{0, 1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := highlightName(tt.name, tt.match, lipgloss.NewStyle(), lipgloss.NewStyle(), unstyled)
			assert.Equal(t, tt.name, out)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "", truncate("anything", 0))
	out := truncate(strings.Repeat("x", 20), 8)
	assert.Equal(t, 8, lipgloss.Width(out))
	assert.True(t, strings.HasSuffix(out, "…"))
}

func TestGitignoreToggleShowsInStatusBar(t *testing.T) {
	m := newModel(t, testProject(t), Options{})
	require.True(t, m.snap.Gitignore)
	assert.NotContains(t, ansi.Strip(m.View()), "no gitignore")

	m = press(t, m, "i")
	assert.False(t, m.snap.Gitignore)
	assert.Contains(t, ansi.Strip(m.View()), "no gitignore")
}

func TestBranchLabel(t *testing.T) {
	tests := []struct {
		snap engine.Snapshot
		want string
	}{
		{engine.Snapshot{Branch: "main"}, "main"},
		{engine.Snapshot{Branch: "main", Dirty: true}, "main*"},
		{engine.Snapshot{Branch: "dev", Ahead: 2, Behind: 1}, "dev ↑2 ↓1"},
		{engine.Snapshot{Branch: "dev", Dirty: true, Behind: 3}, "dev* ↓3"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, branchLabel(tt.snap))
		})
	}
}
