package config

import (
	"fmt"
	"sort"
	"strings"
)

// Keys maps each action to a key in bubbletea notation ("q", "enter",
// "ctrl+c").
type Keys struct {
	Quit           string `toml:"quit"`
	Help           string `toml:"help"`
	Down           string `toml:"down"`
	Up             string `toml:"up"`
	DownThree      string `toml:"down_three"`
	UpThree        string `toml:"up_three"`
	First          string `toml:"all_up"`
	Last           string `toml:"all_down"`
	Open           string `toml:"open"`
	KillProcesses  string `toml:"kill_processes"`
	ExecCmd        string `toml:"exec_cmd"`
	SpecialCommand string `toml:"special_command"`
	Delete         string `toml:"delete"`
	Rename         string `toml:"rename"`
	Search         string `toml:"search"`
	Clear          string `toml:"clear"`
	NewFile        string `toml:"new_file"`
	NewDir         string `toml:"new_dir"`
	GitFilter      string `toml:"git_filter"`
	DiffMode       string `toml:"diff_mode"`
	OpenAll        string `toml:"open_all"`
	CloseAll       string `toml:"close_all"`
	OpenUnder      string `toml:"open_under"`
	CloseUnder     string `toml:"close_under"`
	ShowDotfiles   string `toml:"show_dotfiles"`
	Gitignore      string `toml:"toggle_gitignore"`
	MarkSelected   string `toml:"mark_selected"`
	OpenMarks      string `toml:"open_marks"`
	PreviewDown    string `toml:"preview_down"`
	PreviewUp      string `toml:"preview_up"`
	ToggleLog      string `toml:"toggle_log"`
	Refresh        string `toml:"refresh"`
}

// DefaultKeys returns the built-in key map.
func DefaultKeys() Keys {
	return Keys{
		Quit:           "q",
		Help:           "?",
		Down:           "j",
		Up:             "k",
		DownThree:      "ctrl+n",
		UpThree:        "ctrl+p",
		First:          "g",
		Last:           "G",
		Open:           "enter",
		KillProcesses:  "ctrl+c",
		ExecCmd:        "e",
		SpecialCommand: "v",
		Delete:         "d",
		Rename:         "r",
		Search:         "/",
		Clear:          "\\",
		NewFile:        "n",
		NewDir:         "N",
		GitFilter:      "T",
		DiffMode:       "t",
		OpenAll:        "o",
		CloseAll:       "O",
		OpenUnder:      "l",
		CloseUnder:     "h",
		ShowDotfiles:   ".",
		Gitignore:      "i",
		MarkSelected:   "m",
		OpenMarks:      "M",
		PreviewDown:    "ctrl+d",
		PreviewUp:      "ctrl+u",
		ToggleLog:      "L",
		Refresh:        "ctrl+r",
	}
}

// Binding is one action bound to one key.
type Binding struct {
	Action string
	Key    string
}

// Bindings lists every built-in action with its key, in a fixed order.
func (k Keys) Bindings() []Binding {
	return []Binding{
		{"quit", k.Quit},
		{"help", k.Help},
		{"down", k.Down},
		{"up", k.Up},
		{"down_three", k.DownThree},
		{"up_three", k.UpThree},
		{"all_up", k.First},
		{"all_down", k.Last},
		{"open", k.Open},
		{"kill_processes", k.KillProcesses},
		{"exec_cmd", k.ExecCmd},
		{"special_command", k.SpecialCommand},
		{"delete", k.Delete},
		{"rename", k.Rename},
		{"search", k.Search},
		{"clear", k.Clear},
		{"new_file", k.NewFile},
		{"new_dir", k.NewDir},
		{"git_filter", k.GitFilter},
		{"diff_mode", k.DiffMode},
		{"open_all", k.OpenAll},
		{"close_all", k.CloseAll},
		{"open_under", k.OpenUnder},
		{"close_under", k.CloseUnder},
		{"show_dotfiles", k.ShowDotfiles},
		{"toggle_gitignore", k.Gitignore},
		{"mark_selected", k.MarkSelected},
		{"open_marks", k.OpenMarks},
		{"preview_down", k.PreviewDown},
		{"preview_up", k.PreviewUp},
		{"toggle_log", k.ToggleLog},
		{"refresh", k.Refresh},
	}
}

func (k Keys) normalized() Keys {
	for _, p := range []*string{
		&k.Quit, &k.Help, &k.Down, &k.Up, &k.DownThree, &k.UpThree,
		&k.First, &k.Last, &k.Open, &k.KillProcesses, &k.ExecCmd,
		&k.SpecialCommand, &k.Delete, &k.Rename, &k.Search, &k.Clear,
		&k.NewFile, &k.NewDir, &k.GitFilter, &k.DiffMode, &k.OpenAll,
		&k.CloseAll, &k.OpenUnder, &k.CloseUnder, &k.ShowDotfiles, &k.Gitignore,
		&k.MarkSelected, &k.OpenMarks, &k.PreviewDown, &k.PreviewUp,
		&k.ToggleLog, &k.Refresh,
	} {
		*p = NormalizeKey(*p)
	}
	return k
}

// NormalizeKey rewrites a key to bubbletea's string form. Modifier names
// are case-insensitive and may be joined with "-" or "+". A single
// character keeps its case so "g" and "G" stay distinct, except after
// ctrl, which the terminal cannot distinguish.
func NormalizeKey(s string) string {
	s = strings.TrimSpace(s)
	if len([]rune(s)) <= 1 {
		return s
	}
	s = strings.ReplaceAll(s, "-", "+")
	parts := strings.Split(s, "+")
	ctrl := false
	for i, p := range parts {
		if i < len(parts)-1 || len([]rune(p)) > 1 || ctrl {
			parts[i] = strings.ToLower(p)
		}
		ctrl = ctrl || parts[i] == "ctrl"
	}
	switch out := strings.Join(parts, "+"); out {
	case "return":
		return "enter"
	case "escape":
		return "esc"
	default:
		return out
	}
}

// KeyConflict is a key bound to more than one action.
type KeyConflict struct {
	Key     string
	Actions []string
}

func (c *KeyConflict) Error() string {
	quoted := make([]string, len(c.Actions))
	for i, a := range c.Actions {
		quoted[i] = fmt.Sprintf("%q", a)
	}
	return fmt.Sprintf("key conflict on %q with associated actions: %s", c.Key, strings.Join(quoted, ", "))
}

func (c *KeyConflict) Is(target error) bool {
	return target == ErrKeyConflict
}

// Conflicts returns every key used by two or more actions, built-in
// actions and key-bound commands alike, ordered by key.
func (c Config) Conflicts() []*KeyConflict {
	uses := make(map[string][]string)
	var order []string
	add := func(key, action string) {
		if key == "" {
			return
		}
		if _, ok := uses[key]; !ok {
			order = append(order, key)
		}
		uses[key] = append(uses[key], action)
	}
	for _, b := range c.Keys.Bindings() {
		add(NormalizeKey(b.Key), b.Action)
	}
	for _, kc := range c.Commands {
		add(NormalizeKey(kc.Key), "command: "+kc.Command)
	}

	var out []*KeyConflict
	for _, key := range order {
		if actions := uses[key]; len(actions) > 1 {
			out = append(out, &KeyConflict{Key: key, Actions: actions})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
