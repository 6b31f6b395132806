package tree

import (
	"path/filepath"

	"github.com/avitaltamir/projectable/internal/git"
)

// SetGitStatus re-tags every node from a status map keyed by absolute
// path. Directories take the strongest class found below them, including
// entries that are not listed yet and files deleted from disk.
func (t *Tree) SetGitStatus(files map[string]git.FileStatus) {
	for i := range t.nodes {
		t.nodes[i].git = git.ClassNone
	}
	root := t.RootPath()
	for path, fs := range files {
		class := fs.Class()
		if class == git.ClassNone {
			continue
		}
		path = filepath.Clean(path)
		if path != root && !t.inside(path) {
			continue
		}
		id, ok := t.nearest(path)
		if !ok {
			continue
		}
		if class.Stronger(t.nodes[id].git) {
			t.nodes[id].git = class
		}
		for p := t.nodes[id].parent; p != NoNode; p = t.nodes[p].parent {
			if !class.Stronger(t.nodes[p].git) {
				break
			}
			t.nodes[p].git = class
		}
	}
}

// ClearGitStatus removes all decoration.
func (t *Tree) ClearGitStatus() {
	for i := range t.nodes {
		t.nodes[i].git = git.ClassNone
	}
}

// nearest returns the node for path or its closest listed ancestor.
func (t *Tree) nearest(path string) (NodeID, bool) {
	root := t.RootPath()
	for {
		if id, ok := t.index[path]; ok {
			return id, true
		}
		if path == root {
			return NoNode, false
		}
		parent := filepath.Dir(path)
		if parent == path {
			return NoNode, false
		}
		path = parent
	}
}
