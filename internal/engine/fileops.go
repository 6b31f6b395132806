package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avitaltamir/projectable/internal/tree"
)

var (
	errEmptyName   = errors.New("name is empty")
	errOutsideRoot = errors.New("path leaves the project root")
)

// resolveName joins a user-typed name onto dir and keeps the result
// inside the root.
func (e *Engine) resolveName(dir, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errEmptyName
	}
	path := filepath.Clean(filepath.Join(dir, name))
	if path == e.root || e.filter.Outside(path) {
		return "", fmt.Errorf("%s: %w", name, errOutsideRoot)
	}
	return path, nil
}

// create makes a file or directory below the target directory, creating
// intermediate directories as needed, and selects it.
func (e *Engine) create(name string, dir bool) {
	path, err := e.resolveName(e.targetDir(), name)
	if err != nil {
		e.errorf("fs", "create: %v", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		e.errorf("fs", "create %s: %v", e.tree.Rel(path), err)
		return
	}
	if dir {
		err = os.Mkdir(path, 0o755)
	} else {
		var f *os.File
		f, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			err = f.Close()
		}
	}
	if err != nil {
		e.errorf("fs", "create %s: %v", e.tree.Rel(path), err)
		return
	}

	e.syncCreated(path)
	e.info("fs", "created "+e.tree.Rel(path))
	if !e.reveal(path) {
		// hidden by ignore rules; it exists on disk but not in the tree
		e.info("fs", e.tree.Rel(path)+" is ignored and not shown")
	}
}

// syncCreated inserts path and any new ancestors without waiting for the
// watcher. The watcher's later report of the same change is a no-op.
func (e *Engine) syncCreated(path string) {
	var chain []string
	for p := path; p != e.root; p = filepath.Dir(p) {
		if _, ok := e.tree.Lookup(p); ok {
			break
		}
		chain = append(chain, p)
	}
	// entries below unlisted directories are dropped here and picked up
	// when reveal lists them
	for i := len(chain) - 1; i >= 0; i-- {
		e.tree.ApplyChange(tree.Change{Kind: tree.Created, Path: chain[i]})
	}
	e.touchTree()
	e.fsGen++
	e.gitDirty = true
}

// DeleteTargets returns what a Delete intent would remove: every mark, or
// the selection when nothing is marked.
func (e *Engine) DeleteTargets() []string {
	if e.marks.Len() > 0 {
		return e.marks.List()
	}
	if e.selected != "" {
		return []string{e.selected}
	}
	return nil
}

// deleteTargets removes each target, continuing past failures. Each
// failure is logged on its own line. Targets no longer in the tree are
// skipped rather than replaced by the current selection.
func (e *Engine) deleteTargets(targets []string) {
	if len(targets) == 0 {
		targets = e.DeleteTargets()
	}
	if len(targets) == 0 {
		return
	}
	var deleted, failed, skipped int
	for _, path := range targets {
		if _, ok := e.tree.Lookup(path); !ok || path == e.root {
			skipped++
			continue
		}
		if _, err := os.Lstat(path); errors.Is(err, os.ErrNotExist) {
			skipped++
			e.tree.ApplyChange(tree.Change{Kind: tree.Removed, Path: path})
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			failed++
			e.errorf("fs", "delete %s: %v", e.tree.Rel(path), err)
			continue
		}
		deleted++
		e.tree.ApplyChange(tree.Change{Kind: tree.Removed, Path: path})
		e.marks.Remove(path)
	}
	e.touchTree()
	e.fsGen++
	e.gitDirty = true

	msg := fmt.Sprintf("deleted %d item(s)", deleted)
	if skipped > 0 {
		msg += fmt.Sprintf(", %d already gone", skipped)
	}
	if failed > 0 {
		e.warn("fs", msg+fmt.Sprintf(", %d failed", failed))
		return
	}
	e.info("fs", msg)
}

// rename moves the selection to a new name relative to its directory.
// Marks follow the move.
func (e *Engine) rename(to string) {
	n, ok := e.selectedNode()
	if !ok {
		e.errorf("fs", "rename: nothing selected")
		return
	}
	dst, err := e.resolveName(filepath.Dir(n.Path), to)
	if err != nil {
		e.errorf("fs", "rename: %v", err)
		return
	}
	if dst == n.Path {
		return
	}
	if _, err := os.Lstat(dst); err == nil {
		e.errorf("fs", "rename %s: %s already exists", e.tree.Rel(n.Path), e.tree.Rel(dst))
		return
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		e.errorf("fs", "rename %s: %v", e.tree.Rel(n.Path), err)
		return
	}
	if err := os.Rename(n.Path, dst); err != nil {
		e.errorf("fs", "rename %s: %v", e.tree.Rel(n.Path), err)
		return
	}

	if _, ok := e.tree.Lookup(filepath.Dir(dst)); ok {
		e.tree.ApplyChange(tree.Change{Kind: tree.Renamed, From: n.Path, Path: dst})
	} else {
		e.tree.ApplyChange(tree.Change{Kind: tree.Removed, Path: n.Path})
	}
	e.syncCreated(dst)
	e.marks.Rename(n.Path, dst, filepath.Separator)
	e.info("fs", fmt.Sprintf("renamed %s to %s", e.tree.Rel(n.Path), e.tree.Rel(dst)))
	e.reveal(dst)
}
