// Package tree holds the project's directory hierarchy as an arena of
// nodes addressed by stable indices.
package tree

import (
	"path/filepath"
	"strings"

	"github.com/avitaltamir/projectable/internal/git"
	"github.com/avitaltamir/projectable/internal/ignore"
)

// NodeID addresses a node in the arena. IDs stay valid until the node is
// removed; a freed slot may later be reused for another path.
type NodeID int

// NoNode is the parent of the root and the result of failed lookups.
const NoNode NodeID = -1

// Kind distinguishes files from directories.
type Kind int

const (
	File Kind = iota
	Directory
)

func (k Kind) String() string {
	if k == Directory {
		return "dir"
	}
	return "file"
}

// node is the arena slot. parent is a weak back-reference; ownership runs
// strictly from parent to children.
type node struct {
	path     string
	name     string
	kind     Kind
	parent   NodeID
	children []NodeID
	expanded bool
	scanned  bool
	symlink  bool
	hidden   bool
	git      git.Class
	err      error
	live     bool
}

// Node is a read-only copy of one entry.
type Node struct {
	ID       NodeID
	Path     string
	Name     string
	Kind     Kind
	Parent   NodeID
	Expanded bool
	// Scanned is true once a directory's entries have been listed.
	Scanned bool
	Symlink bool
	Hidden  bool
	Git     git.Class
	// Err is set when the entry could not be read. The node stays listed.
	Err error
}

// IsDir reports whether the node is a directory.
func (n Node) IsDir() bool {
	return n.Kind == Directory
}

// Extension returns the lower-cased file extension (empty for directories).
func (n Node) Extension() string {
	if n.Kind == Directory {
		return ""
	}
	return strings.ToLower(filepath.Ext(n.Name))
}

func newNode(path string, kind Kind, parent NodeID) node {
	return node{
		path:   path,
		name:   filepath.Base(path),
		kind:   kind,
		parent: parent,
		hidden: ignore.IsHidden(path),
		live:   true,
	}
}

func (n *node) export(id NodeID) Node {
	return Node{
		ID:       id,
		Path:     n.path,
		Name:     n.name,
		Kind:     n.kind,
		Parent:   n.parent,
		Expanded: n.expanded,
		Scanned:  n.scanned,
		Symlink:  n.symlink,
		Hidden:   n.hidden,
		Git:      n.git,
		Err:      n.err,
	}
}
