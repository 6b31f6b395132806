package tree

import "github.com/avitaltamir/projectable/internal/git"

// Row is one line of the flattened view.
type Row struct {
	ID       NodeID
	Path     string
	Name     string
	Depth    int
	Kind     Kind
	Expanded bool
	Symlink  bool
	Hidden   bool
	Git      git.Class
	Err      error
	// Last is true when the row is the final visible sibling, which the
	// renderer uses to draw tree connectors.
	Last bool
}

// ViewOptions controls which nodes Flatten emits.
type ViewOptions struct {
	ShowHidden bool
	// Only, when non-nil, restricts the view to these nodes. Callers are
	// expected to include the ancestors of every selected node.
	Only map[NodeID]bool
	// ForceExpanded directories are shown open regardless of their stored
	// state. The stored state is not modified.
	ForceExpanded map[NodeID]bool
}

// Flatten returns the depth-first sequence of visible nodes below the
// root.
func (t *Tree) Flatten(opts ViewOptions) []Row {
	rows := make([]Row, 0, len(t.index))
	t.flattenInto(&rows, t.root, 0, opts)
	return rows
}

func (t *Tree) flattenInto(rows *[]Row, id NodeID, depth int, opts ViewOptions) {
	first := len(*rows)
	lastSibling := -1
	for _, c := range t.nodes[id].children {
		n := &t.nodes[c]
		if n.hidden && !opts.ShowHidden {
			continue
		}
		if opts.Only != nil && !opts.Only[c] {
			continue
		}
		expanded := n.expanded || opts.ForceExpanded[c]
		lastSibling = len(*rows)
		*rows = append(*rows, Row{
			ID:       c,
			Path:     n.path,
			Name:     n.name,
			Depth:    depth,
			Kind:     n.kind,
			Expanded: expanded && n.kind == Directory,
			Symlink:  n.symlink,
			Hidden:   n.hidden,
			Git:      n.git,
			Err:      n.err,
		})
		if n.kind == Directory && expanded {
			t.flattenInto(rows, c, depth+1, opts)
		}
	}
	if lastSibling >= first {
		(*rows)[lastSibling].Last = true
	}
}
