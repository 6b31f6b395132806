// Package config loads the immutable configuration snapshot.
//
// Settings come from a global file and an optional project-local file
// layered over the built-in defaults. A key present in a later file
// overrides the earlier value; list settings accumulate.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// EnvConfigDir overrides the global configuration directory.
	EnvConfigDir = "PROJECTABLE_CONFIG_DIR"
	// FileName is the global configuration file name.
	FileName = "config.toml"
	// LocalFileName is the project-local configuration file name.
	LocalFileName = ".projectable.toml"
)

// ErrKeyConflict is matched by validation errors for keys bound twice.
var ErrKeyConflict = errors.New("key conflict")

// Config is the full configuration. Treat a loaded value as read-only.
type Config struct {
	ProjectRoots    []string         `toml:"project_roots"`
	Theme           string           `toml:"theme"`
	Keys            Keys             `toml:"keys"`
	Filetree        Filetree         `toml:"filetree"`
	Preview         Preview          `toml:"preview"`
	Log             Log              `toml:"log"`
	Process         Process          `toml:"process"`
	Commands        []KeyCommand     `toml:"commands"`
	SpecialCommands []SpecialCommand `toml:"special_commands"`
}

// Filetree configures the tree and its synchronisation.
type Filetree struct {
	UseGit              bool     `toml:"use_git"`
	UseGitignore        bool     `toml:"use_gitignore"`
	Ignore              []string `toml:"ignore"`
	RefreshTime         int      `toml:"refresh_time"`
	DirsFirst           bool     `toml:"dirs_first"`
	NaturalSort         bool     `toml:"natural_sort"`
	ShowHiddenByDefault bool     `toml:"show_hidden_by_default"`
}

// Debounce returns RefreshTime as a duration.
func (f Filetree) Debounce() time.Duration {
	return time.Duration(f.RefreshTime) * time.Millisecond
}

// Preview configures the preview pane.
type Preview struct {
	PreviewCmd   string `toml:"preview_cmd"`
	GitPager     string `toml:"git_pager"`
	ScrollAmount int    `toml:"scroll_amount"`
}

// Log configures the diagnostic log file.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// Process configures command execution.
type Process struct {
	PTY bool `toml:"pty"`
	// Shell overrides the interpreter, e.g. ["bash", "-c"].
	Shell []string `toml:"shell"`
}

// KeyCommand binds a key to a command template.
type KeyCommand struct {
	Key     string `toml:"key"`
	Command string `toml:"command"`
}

// SpecialCommand binds command templates to paths matching Pattern.
type SpecialCommand struct {
	Pattern  string   `toml:"pattern"`
	Commands []string `toml:"commands"`
}

// DefaultPreviewCmd is the preview command for the host platform.
func DefaultPreviewCmd() string {
	if runtime.GOOS == "windows" {
		return "type {}"
	}
	return "cat {}"
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ProjectRoots: []string{".git"},
		Theme:        "Midnight Miami",
		Keys:         DefaultKeys(),
		Filetree: Filetree{
			UseGit:       true,
			UseGitignore: true,
			RefreshTime:  1000,
			DirsFirst:    true,
			NaturalSort:  true,
		},
		Preview: Preview{
			PreviewCmd:   DefaultPreviewCmd(),
			ScrollAmount: 3,
		},
		Log: Log{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Dir returns the global configuration directory.
func Dir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locate config dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "projectable"), nil
}

// GlobalPath returns the global configuration file path.
func GlobalPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// LoadOptions selects the files Load reads. Empty paths are skipped.
type LoadOptions struct {
	Global string
	Local  string
}

// Load layers the files named by opts over Default and validates the
// result. Missing files are not an error.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()
	for _, path := range []string{opts.Global, opts.Local} {
		if path == "" {
			continue
		}
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeFile decodes path over c. Scalars present in the file win, ignore
// globs accumulate, special commands from the newer file take precedence
// and key commands are replaced per key.
func (c *Config) mergeFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	prevIgnore := c.Filetree.Ignore
	prevSpecial := c.SpecialCommands
	prevCommands := c.Commands
	prevRoots := c.ProjectRoots
	c.Filetree.Ignore, c.SpecialCommands, c.Commands, c.ProjectRoots = nil, nil, nil, nil

	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("parse %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	c.Filetree.Ignore = appendUnique(prevIgnore, c.Filetree.Ignore)
	c.SpecialCommands = append(c.SpecialCommands, prevSpecial...)
	c.Commands = mergeCommands(prevCommands, c.Commands)
	if c.ProjectRoots == nil {
		c.ProjectRoots = prevRoots
	}
	return nil
}

func appendUnique(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, s := range append(append([]string(nil), base...), extra...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mergeCommands(base, over []KeyCommand) []KeyCommand {
	out := append([]KeyCommand(nil), base...)
	for _, kc := range over {
		replaced := false
		for i := range out {
			if NormalizeKey(out[i].Key) == NormalizeKey(kc.Key) {
				out[i] = kc
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, kc)
		}
	}
	return out
}

func (c *Config) normalize() {
	c.Keys = c.Keys.normalized()
	for i := range c.Commands {
		c.Commands[i].Key = NormalizeKey(c.Commands[i].Key)
	}
	if c.Filetree.RefreshTime <= 0 {
		c.Filetree.RefreshTime = Default().Filetree.RefreshTime
	}
	if c.Preview.ScrollAmount <= 0 {
		c.Preview.ScrollAmount = Default().Preview.ScrollAmount
	}
	if len(c.ProjectRoots) == 0 {
		c.ProjectRoots = Default().ProjectRoots
	}
}

// Validate reports structural problems, including keys bound to more
// than one action.
func (c Config) Validate() error {
	var errs []error
	for _, conflict := range c.Conflicts() {
		errs = append(errs, conflict)
	}
	for i, kc := range c.Commands {
		if strings.TrimSpace(kc.Key) == "" || strings.TrimSpace(kc.Command) == "" {
			errs = append(errs, fmt.Errorf("commands[%d]: key and command are required", i))
		}
	}
	for i, sc := range c.SpecialCommands {
		if strings.TrimSpace(sc.Pattern) == "" {
			errs = append(errs, fmt.Errorf("special_commands[%d]: pattern is required", i))
		}
	}
	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Encode writes c as TOML.
func (c Config) Encode() (string, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return b.String(), nil
}

// FindProjectRoot returns the nearest ancestor of start, inclusive, that
// contains one of markers. It falls back to start when none does.
func FindProjectRoot(start string, markers []string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", start, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", start, err)
	}
	if !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	for dir := abs; ; {
		for _, m := range markers {
			if m == "" {
				continue
			}
			if _, err := os.Lstat(filepath.Join(dir, m)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		dir = parent
	}
}
