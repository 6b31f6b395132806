package command

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// SpecialRule binds command templates to paths matching a glob.
type SpecialRule struct {
	Pattern  string
	Commands []string

	matcher gitignore.Pattern
}

// Matches reports whether the rule applies to rel, a slash or
// OS-separated path relative to the project root.
func (r SpecialRule) Matches(rel string, isDir bool) bool {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	return r.matcher.Match(parts, isDir) == gitignore.Exclude
}

// SpecialCommands is an ordered rule list. The first matching rule wins,
// so more specific patterns must be declared first.
type SpecialCommands struct {
	rules []SpecialRule
}

// RuleSpec is the configuration form of a rule.
type RuleSpec struct {
	Pattern  string
	Commands []string
}

// NewSpecialCommands compiles rules in declaration order. Patterns use
// gitignore glob syntax; a pattern without a slash matches the file name
// at any depth. Every command template is parsed up front so a broken
// rule is reported at startup rather than when it is used.
func NewSpecialCommands(specs []RuleSpec) (*SpecialCommands, error) {
	sc := &SpecialCommands{}
	for i, spec := range specs {
		pattern := strings.TrimSpace(spec.Pattern)
		if pattern == "" || strings.HasPrefix(pattern, "!") {
			return nil, fmt.Errorf("special command %d: invalid pattern %q", i, spec.Pattern)
		}
		for _, c := range spec.Commands {
			if _, err := Parse(c); err != nil {
				return nil, fmt.Errorf("special command %q: %w", spec.Pattern, err)
			}
		}
		sc.rules = append(sc.rules, SpecialRule{
			Pattern:  pattern,
			Commands: append([]string(nil), spec.Commands...),
			matcher:  gitignore.ParsePattern(pattern, nil),
		})
	}
	return sc, nil
}

// Match returns the commands of the first rule matching rel.
func (sc *SpecialCommands) Match(rel string, isDir bool) (SpecialRule, bool) {
	if sc == nil {
		return SpecialRule{}, false
	}
	for _, r := range sc.rules {
		if r.Matches(rel, isDir) {
			return r, true
		}
	}
	return SpecialRule{}, false
}

// Rules returns the compiled rules in order.
func (sc *SpecialCommands) Rules() []SpecialRule {
	if sc == nil {
		return nil
	}
	return append([]SpecialRule(nil), sc.rules...)
}
