// Package ignore decides which paths of a project are shown in the tree.
package ignore

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// builtinPatterns are excluded regardless of configuration.
var builtinPatterns = []string{".git"}

// Options configures a Filter.
type Options struct {
	// Globs are user patterns in gitignore syntax. A pattern without a
	// slash matches at any depth.
	Globs []string
	// UseGitignore enables repository ignore rules (.gitignore files,
	// .git/info/exclude and the user's global excludes file).
	UseGitignore bool
}

// Filter combines the built-in, user and repository rule sets. All three
// must pass for a path to be visible. Dotfile hiding is not a rule; see
// IsHidden.
type Filter struct {
	root string

	builtin gitignore.Matcher
	user    gitignore.Matcher

	mu           sync.RWMutex
	useGitignore bool
	repo         gitignore.Matcher
}

// New creates a Filter for the project rooted at root.
func New(root string, opts Options) (*Filter, error) {
	f := &Filter{
		root:         filepath.Clean(root),
		builtin:      gitignore.NewMatcher(parsePatterns(builtinPatterns)),
		user:         gitignore.NewMatcher(parsePatterns(opts.Globs)),
		useGitignore: opts.UseGitignore,
	}
	if opts.UseGitignore {
		if err := f.Reload(); err != nil {
			return f, err
		}
	}
	return f, nil
}

func parsePatterns(globs []string) []gitignore.Pattern {
	ps := make([]gitignore.Pattern, 0, len(globs))
	for _, g := range globs {
		g = strings.TrimSpace(g)
		if g == "" || strings.HasPrefix(g, "#") {
			continue
		}
		ps = append(ps, gitignore.ParsePattern(g, nil))
	}
	return ps
}

// Reload re-reads the repository ignore files. On error the previous
// rules stay in effect.
func (f *Filter) Reload() error {
	fs := osfs.New(f.root)
	patterns, err := gitignore.ReadPatterns(fs, nil)
	if err != nil {
		return fmt.Errorf("read gitignore patterns: %w", err)
	}
	// The global excludes file is optional; a missing or unreadable one
	// is not an error for the project.
	if global, err := gitignore.LoadGlobalPatterns(osfs.New("/")); err == nil {
		patterns = append(global, patterns...)
	}

	f.mu.Lock()
	f.repo = gitignore.NewMatcher(patterns)
	f.mu.Unlock()
	return nil
}

// SetUseGitignore toggles the repository rule set without touching the
// user globs.
func (f *Filter) SetUseGitignore(on bool) error {
	f.mu.Lock()
	f.useGitignore = on
	loaded := f.repo != nil
	f.mu.Unlock()
	if on && !loaded {
		return f.Reload()
	}
	return nil
}

// UseGitignore reports whether repository rules are applied.
func (f *Filter) UseGitignore() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.useGitignore
}

// Ignored reports whether path is excluded by any rule set. path may be
// absolute (under the root) or relative to the root. The root itself is
// never ignored.
func (f *Filter) Ignored(path string, isDir bool) bool {
	parts := f.split(path)
	if parts == nil {
		return false
	}
	if f.builtin.Match(parts, isDir) || f.user.Match(parts, isDir) {
		return true
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.useGitignore && f.repo != nil {
		return f.repo.Match(parts, isDir)
	}
	return false
}

// Outside reports whether path lies outside the filter's root.
func (f *Filter) Outside(path string) bool {
	if !filepath.IsAbs(path) {
		return strings.HasPrefix(filepath.Clean(path), "..")
	}
	rel, err := filepath.Rel(f.root, path)
	return err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (f *Filter) split(path string) []string {
	rel := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(f.root, path)
		if err != nil {
			return nil
		}
		rel = r
	}
	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "." || rel == "" || strings.HasPrefix(rel, "../") || rel == ".." {
		return nil
	}
	return strings.Split(rel, "/")
}

// IsHidden reports whether the final element of path is a dotfile.
func IsHidden(path string) bool {
	name := filepath.Base(path)
	return len(name) > 1 && name[0] == '.' && name != ".."
}
