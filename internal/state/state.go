// Package state persists UI preferences between sessions.
package state

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const stateFileName = "state.yaml"

const (
	MinLeftPanelPercent     = 15
	MaxLeftPanelPercent     = 60
	DefaultLeftPanelPercent = 30
)

// State holds the persisted preferences. Pointer fields are unset until
// the user changes them, so configuration defaults still apply.
type State struct {
	// ShowHidden overrides filetree.show_hidden_by_default.
	ShowHidden *bool `yaml:"show_hidden,omitempty"`
	// GitFilter shows only paths with a git status.
	GitFilter bool `yaml:"git_filter"`
	// DiffMode previews the git diff instead of file contents.
	DiffMode bool `yaml:"diff_mode"`
	// LeftPanelPercent is the tree pane width (15-60).
	LeftPanelPercent int `yaml:"left_panel_percent"`
	// ShowLog toggles the event log pane.
	ShowLog bool `yaml:"show_log"`
	// Theme is the theme name last selected.
	Theme string `yaml:"theme,omitempty"`
}

// DefaultState returns the state for first run.
func DefaultState() State {
	return State{
		LeftPanelPercent: DefaultLeftPanelPercent,
		ShowLog:          true,
	}
}

// HiddenOr returns ShowHidden, or def when it was never set.
func (s State) HiddenOr(def bool) bool {
	if s.ShowHidden == nil {
		return def
	}
	return *s.ShowHidden
}

// SetShowHidden records an explicit hidden-file choice.
func (s *State) SetShowHidden(v bool) {
	s.ShowHidden = &v
}

func (s *State) clamp() {
	switch {
	case s.LeftPanelPercent == 0:
		s.LeftPanelPercent = DefaultLeftPanelPercent
	case s.LeftPanelPercent < MinLeftPanelPercent:
		s.LeftPanelPercent = MinLeftPanelPercent
	case s.LeftPanelPercent > MaxLeftPanelPercent:
		s.LeftPanelPercent = MaxLeftPanelPercent
	}
}

// Path returns the state file inside dir.
func Path(dir string) string {
	return filepath.Join(dir, stateFileName)
}

// Load reads the state from dir. A missing or unreadable file yields the
// defaults.
func Load(dir string) State {
	s := DefaultState()
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		return s
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return DefaultState()
	}
	s.clamp()
	return s
}

// Save writes the state into dir, creating it if needed.
func Save(dir string, s State) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	s.clamp()
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return os.WriteFile(Path(dir), data, 0o644)
}
