package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/avitaltamir/projectable/internal/config"
)

// KeyMap holds the configured bindings plus a few fixed aliases.
type KeyMap struct {
	Quit           key.Binding
	Help           key.Binding
	Down           key.Binding
	Up             key.Binding
	DownThree      key.Binding
	UpThree        key.Binding
	First          key.Binding
	Last           key.Binding
	Open           key.Binding
	Expand         key.Binding
	Collapse       key.Binding
	KillProcesses  key.Binding
	ExecCmd        key.Binding
	SpecialCommand key.Binding
	Delete         key.Binding
	Rename         key.Binding
	Search         key.Binding
	Clear          key.Binding
	NewFile        key.Binding
	NewDir         key.Binding
	GitFilter      key.Binding
	DiffMode       key.Binding
	OpenAll        key.Binding
	CloseAll       key.Binding
	OpenUnder      key.Binding
	CloseUnder     key.Binding
	ShowDotfiles   key.Binding
	Gitignore      key.Binding
	MarkSelected   key.Binding
	OpenMarks      key.Binding
	PreviewDown    key.Binding
	PreviewUp      key.Binding
	ToggleLog      key.Binding
	Refresh        key.Binding
	Grow           key.Binding
	Shrink         key.Binding
	NextTheme      key.Binding

	// Commands are the [[commands]] entries, checked before the built-in
	// actions.
	Commands []CommandBinding
}

// CommandBinding runs a command template on a key.
type CommandBinding struct {
	Binding key.Binding
	Command string
}

func bind(k, desc string, aliases ...string) key.Binding {
	keys := append([]string{k}, aliases...)
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(k, desc))
}

// NewKeyMap builds the key map from the configuration.
func NewKeyMap(cfg config.Config) KeyMap {
	k := cfg.Keys
	m := KeyMap{
		Quit:           bind(k.Quit, "quit"),
		Help:           bind(k.Help, "help"),
		Down:           bind(k.Down, "down", "down"),
		Up:             bind(k.Up, "up", "up"),
		DownThree:      bind(k.DownThree, "down 3", "pgdown"),
		UpThree:        bind(k.UpThree, "up 3", "pgup"),
		First:          bind(k.First, "first", "home"),
		Last:           bind(k.Last, "last", "end"),
		Open:           bind(k.Open, "open/close dir"),
		Expand:         bind("right", "expand"),
		Collapse:       bind("left", "collapse/parent"),
		KillProcesses:  bind(k.KillProcesses, "kill processes"),
		ExecCmd:        bind(k.ExecCmd, "run command"),
		SpecialCommand: bind(k.SpecialCommand, "special commands"),
		Delete:         bind(k.Delete, "delete"),
		Rename:         bind(k.Rename, "rename"),
		Search:         bind(k.Search, "filter"),
		Clear:          bind(k.Clear, "clear filter"),
		NewFile:        bind(k.NewFile, "new file"),
		NewDir:         bind(k.NewDir, "new dir"),
		GitFilter:      bind(k.GitFilter, "git filter"),
		DiffMode:       bind(k.DiffMode, "diff preview"),
		OpenAll:        bind(k.OpenAll, "open all"),
		CloseAll:       bind(k.CloseAll, "close all"),
		OpenUnder:      bind(k.OpenUnder, "open under"),
		CloseUnder:     bind(k.CloseUnder, "close under"),
		ShowDotfiles:   bind(k.ShowDotfiles, "dotfiles"),
		Gitignore:      bind(k.Gitignore, "gitignore rules"),
		MarkSelected:   bind(k.MarkSelected, "mark"),
		OpenMarks:      bind(k.OpenMarks, "marks"),
		PreviewDown:    bind(k.PreviewDown, "preview down"),
		PreviewUp:      bind(k.PreviewUp, "preview up"),
		ToggleLog:      bind(k.ToggleLog, "log pane"),
		Refresh:        bind(k.Refresh, "refresh"),
		Grow:           bind(">", "wider tree"),
		Shrink:         bind("<", "narrower tree"),
		NextTheme:      bind("ctrl+t", "next theme"),
	}
	for _, c := range cfg.Commands {
		m.Commands = append(m.Commands, CommandBinding{
			Binding: bind(c.Key, c.Command),
			Command: c.Command,
		})
	}
	return m
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Search, k.ExecCmd, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	cols := [][]key.Binding{
		{k.Down, k.Up, k.DownThree, k.UpThree, k.First, k.Last, k.Open, k.Expand, k.Collapse},
		{k.OpenAll, k.CloseAll, k.OpenUnder, k.CloseUnder, k.ShowDotfiles, k.Gitignore, k.Search, k.Clear, k.GitFilter, k.Refresh},
		{k.NewFile, k.NewDir, k.Rename, k.Delete, k.MarkSelected, k.OpenMarks, k.ExecCmd, k.SpecialCommand, k.KillProcesses},
		{k.DiffMode, k.PreviewDown, k.PreviewUp, k.ToggleLog, k.Grow, k.Shrink, k.NextTheme, k.Help, k.Quit},
	}
	if len(k.Commands) > 0 {
		var cmds []key.Binding
		for _, c := range k.Commands {
			cmds = append(cmds, c.Binding)
		}
		cols = append(cols, cmds)
	}
	return cols
}
