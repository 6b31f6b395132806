// Package git reads working-tree status and diffs. It never writes to the
// repository.
package git

import (
	"context"
	"errors"
)

// ErrNotRepo is returned when the project is not inside a git repository.
var ErrNotRepo = errors.New("not a git repository")

// Provider defines the read-only git queries the tree needs.
type Provider interface {
	// GetBranch returns the current branch name
	GetBranch(ctx context.Context) (string, error)

	// GetStatus returns the status of changed files. Paths in the result
	// are relative to Status.Root.
	GetStatus(ctx context.Context) (*Status, error)

	// GetDiff returns the diff of path against the index, or of the whole
	// working tree when path is empty.
	GetDiff(ctx context.Context, path string) (string, error)

	// IsRepo reports whether the provider is backed by a repository
	IsRepo() bool
}

// Status represents the overall repository status.
type Status struct {
	// Root is the absolute top-level directory of the working tree.
	Root    string
	Branch  string
	IsDirty bool
	// Ahead and Behind count commits relative to the upstream branch.
	Ahead  int
	Behind int
	Files  map[string]FileStatus
}

// FileStatus represents the status of a single file.
type FileStatus struct {
	Path     string
	Staging  StatusCode
	Worktree StatusCode
}

// StatusCode is a porcelain status letter.
type StatusCode rune

const (
	StatusUnmodified StatusCode = ' '
	StatusModified   StatusCode = 'M'
	StatusAdded      StatusCode = 'A'
	StatusDeleted    StatusCode = 'D'
	StatusRenamed    StatusCode = 'R'
	StatusCopied     StatusCode = 'C'
	StatusUnmerged   StatusCode = 'U'
	StatusUntracked  StatusCode = '?'
	StatusIgnored    StatusCode = '!'
)

// String returns the single-character representation.
func (s StatusCode) String() string {
	return string(s)
}

// IsModified returns true if the file has been modified.
func (s StatusCode) IsModified() bool {
	return s == StatusModified
}

// IsStaged returns true if the file has staged changes.
func (f FileStatus) IsStaged() bool {
	return f.Staging != StatusUnmodified && f.Staging != StatusUntracked
}

// HasChanges returns true if the file has any changes.
func (f FileStatus) HasChanges() bool {
	return f.Staging != StatusUnmodified || f.Worktree != StatusUnmodified
}

// Class folds the two porcelain columns into the single decoration shown
// next to a tree entry.
func (f FileStatus) Class() Class {
	switch {
	case f.Staging == StatusUnmerged || f.Worktree == StatusUnmerged:
		return ClassConflict
	case f.Staging == StatusUntracked || f.Worktree == StatusUntracked:
		return ClassNew
	case f.Staging == StatusIgnored || f.Worktree == StatusIgnored:
		return ClassIgnored
	case f.Worktree == StatusDeleted || f.Staging == StatusDeleted:
		return ClassDeleted
	case f.Worktree == StatusModified:
		return ClassModified
	case f.Staging == StatusRenamed || f.Staging == StatusCopied:
		return ClassRenamed
	case f.Staging == StatusAdded:
		return ClassAdded
	case f.Staging == StatusModified:
		return ClassModified
	}
	return ClassNone
}

// Class is the per-node git decoration.
type Class int

const (
	ClassNone Class = iota
	ClassIgnored
	ClassAdded
	ClassRenamed
	ClassModified
	ClassNew
	ClassDeleted
	ClassConflict
)

var classNames = [...]string{
	ClassNone:     "none",
	ClassIgnored:  "ignored",
	ClassAdded:    "added",
	ClassRenamed:  "renamed",
	ClassModified: "modified",
	ClassNew:      "new",
	ClassDeleted:  "deleted",
	ClassConflict: "conflict",
}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "unknown"
	}
	return classNames[c]
}

// Stronger reports whether c should win over o when a directory rolls up
// the status of its descendants.
func (c Class) Stronger(o Class) bool {
	return c > o
}

// NewStatus creates a new Status with initialized maps.
func NewStatus() *Status {
	return &Status{
		Files: make(map[string]FileStatus),
	}
}
