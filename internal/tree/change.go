package tree

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/avitaltamir/projectable/internal/ignore"
)

// ChangeKind classifies a filesystem change.
type ChangeKind int

const (
	Created ChangeKind = iota
	Removed
	Renamed
	// Modified changes content only; the hierarchy is untouched.
	Modified
)

func (k ChangeKind) String() string {
	switch k {
	case Created:
		return "created"
	case Removed:
		return "removed"
	case Renamed:
		return "renamed"
	case Modified:
		return "modified"
	}
	return "unknown"
}

// Change is one coalesced filesystem event. For Renamed, From holds the
// old path and Path the new one.
type Change struct {
	Kind ChangeKind
	Path string
	From string
}

// ApplyChange updates the tree for one change and reports whether the
// hierarchy was altered. Changes outside the root, for ignored paths, or
// below directories that were never listed are dropped; the latter are
// picked up when the directory is first expanded. Applying the same
// change twice is harmless.
func (t *Tree) ApplyChange(c Change) bool {
	switch c.Kind {
	case Created:
		return t.create(filepath.Clean(c.Path))
	case Removed:
		return t.remove(filepath.Clean(c.Path))
	case Renamed:
		return t.rename(filepath.Clean(c.From), filepath.Clean(c.Path))
	case Modified:
		if id, ok := t.Lookup(c.Path); ok {
			// a directory replaced by a file (or back) within one window
			// arrives as a modification
			if kind, err := statKind(c.Path); err == nil && kind != t.nodes[id].kind {
				t.remove(c.Path)
				t.create(c.Path)
				return true
			}
		}
		return false
	}
	return false
}

func (t *Tree) inside(path string) bool {
	root := t.RootPath()
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func statKind(path string) (Kind, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return File, err
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		if target, err := os.Stat(path); err == nil && target.IsDir() {
			return Directory, nil
		}
		return File, nil
	}
	if info.IsDir() {
		return Directory, nil
	}
	return File, nil
}

// listedParent returns the parent node of path when that parent has been
// scanned.
func (t *Tree) listedParent(path string) (NodeID, bool) {
	pid, ok := t.Lookup(filepath.Dir(path))
	if !ok || t.nodes[pid].kind != Directory || !t.nodes[pid].scanned {
		return NoNode, false
	}
	return pid, true
}

func (t *Tree) create(path string) bool {
	if !t.inside(path) {
		return false
	}
	if _, exists := t.index[path]; exists {
		return false
	}
	pid, ok := t.listedParent(path)
	if !ok {
		return false
	}

	info, err := os.Lstat(path)
	if err != nil {
		// gone again before we got to it
		return false
	}
	kind, _ := statKind(path)
	if t.ignored(path, kind) {
		return false
	}

	n := newNode(path, kind, pid)
	if info.Mode()&fs.ModeSymlink != 0 {
		n.symlink = true
		if _, err := os.Stat(path); err != nil {
			n.err = &ScanError{Path: path, Err: err}
		}
	}
	t.insertChild(pid, t.alloc(n))
	return true
}

func (t *Tree) remove(path string) bool {
	id, ok := t.Lookup(path)
	if !ok || id == t.root {
		return false
	}
	t.detachChild(t.nodes[id].parent, id)
	t.removeSubtree(id)
	return true
}

func (t *Tree) rename(from, to string) bool {
	id, ok := t.Lookup(from)
	if !ok {
		return t.create(to)
	}
	if from == to {
		return false
	}
	if id == t.root {
		return false
	}

	pid, listed := t.listedParent(to)
	if !t.inside(to) || !listed || t.ignored(to, t.nodes[id].kind) {
		return t.remove(from)
	}

	// a directory cannot move below itself
	if t.isAncestor(id, pid) {
		return false
	}
	// renaming over an existing entry replaces it
	if existing, clash := t.index[to]; clash {
		// nor replace a directory that contains it
		if t.isAncestor(existing, id) {
			return false
		}
		t.detachChild(t.nodes[existing].parent, existing)
		t.removeSubtree(existing)
	}

	t.detachChild(t.nodes[id].parent, id)
	t.repath(id, to)
	t.insertChild(pid, id)
	return true
}

func (t *Tree) isAncestor(a, b NodeID) bool {
	for p := b; p != NoNode; p = t.nodes[p].parent {
		if p == a {
			return true
		}
	}
	return false
}

// repath moves id and its descendants to a new path prefix.
func (t *Tree) repath(id NodeID, to string) {
	n := &t.nodes[id]
	delete(t.index, n.path)
	n.path = to
	n.name = filepath.Base(to)
	n.hidden = ignore.IsHidden(to)
	t.index[to] = id
	for _, c := range n.children {
		t.repath(c, filepath.Join(to, t.nodes[c].name))
	}
}
