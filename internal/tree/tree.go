package tree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/avitaltamir/projectable/internal/ignore"
)

var (
	// ErrNotFound is returned for paths that are not in the tree.
	ErrNotFound = errors.New("path not in tree")
	// ErrNotDir is returned when a directory operation targets a file.
	ErrNotDir = errors.New("not a directory")
)

// Options configures how a Tree lists and orders entries.
type Options struct {
	// Filter decides which entries are listed. Nil lists everything.
	Filter *ignore.Filter
	// DirsFirst sorts directories ahead of files among siblings.
	DirsFirst bool
	Order     Order
	Log       logrus.FieldLogger
}

// Tree is the canonical store of the project hierarchy. It is not safe
// for concurrent use; the engine owns it exclusively.
type Tree struct {
	root  NodeID
	opts  Options
	log   logrus.FieldLogger
	nodes []node
	free  []NodeID
	index map[string]NodeID
}

// New builds a tree rooted at dir and lists its immediate entries. It
// does not recurse.
func New(dir string, opts Options) (*Tree, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDir, abs)
	}

	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	t := &Tree{
		opts:  opts,
		log:   log.WithField("component", "tree"),
		index: make(map[string]NodeID),
	}
	root := newNode(abs, Directory, NoNode)
	root.hidden = false
	t.root = t.alloc(root)
	t.scan(t.root)
	t.nodes[t.root].expanded = true
	return t, nil
}

// Root returns the ID of the root directory.
func (t *Tree) Root() NodeID {
	return t.root
}

// RootPath returns the absolute path of the root directory.
func (t *Tree) RootPath() string {
	return t.nodes[t.root].path
}

// Len returns the number of live nodes, root included.
func (t *Tree) Len() int {
	return len(t.index)
}

// Lookup finds the node for an absolute path.
func (t *Tree) Lookup(path string) (NodeID, bool) {
	id, ok := t.index[filepath.Clean(path)]
	return id, ok
}

// Node returns a copy of the node. It panics on a freed or out of range
// ID, which is a programming error.
func (t *Tree) Node(id NodeID) Node {
	return t.at(id).export(id)
}

// Children returns the ordered child IDs of a scanned directory. The
// slice must not be modified.
func (t *Tree) Children(id NodeID) []NodeID {
	return t.at(id).children
}

// Parent returns the parent ID, or NoNode for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	return t.at(id).parent
}

// Ancestors returns the IDs from the parent of id up to the root.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	for p := t.at(id).parent; p != NoNode; p = t.nodes[p].parent {
		out = append(out, p)
	}
	return out
}

// Rel returns path relative to the root.
func (t *Tree) Rel(path string) string {
	rel, err := filepath.Rel(t.RootPath(), path)
	if err != nil {
		return path
	}
	return rel
}

func (t *Tree) at(id NodeID) *node {
	if id < 0 || int(id) >= len(t.nodes) || !t.nodes[id].live {
		panic(fmt.Sprintf("tree: invalid node id %d", id))
	}
	return &t.nodes[id]
}

func (t *Tree) alloc(n node) NodeID {
	if _, dup := t.index[n.path]; dup {
		panic(fmt.Sprintf("tree: duplicate path %q", n.path))
	}
	var id NodeID
	if k := len(t.free); k > 0 {
		id = t.free[k-1]
		t.free = t.free[:k-1]
		t.nodes[id] = n
	} else {
		id = NodeID(len(t.nodes))
		t.nodes = append(t.nodes, n)
	}
	t.index[n.path] = id
	return id
}

func (t *Tree) lookupDir(path string) (NodeID, error) {
	id, ok := t.Lookup(path)
	if !ok {
		return NoNode, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if t.nodes[id].kind != Directory {
		return NoNode, fmt.Errorf("%w: %s", ErrNotDir, path)
	}
	return id, nil
}

// Expand marks a directory expanded, listing its entries on first use.
// Expanding an expanded directory is a no-op.
func (t *Tree) Expand(path string) error {
	id, err := t.lookupDir(path)
	if err != nil {
		return err
	}
	t.expand(id)
	return nil
}

func (t *Tree) expand(id NodeID) {
	n := t.at(id)
	if !n.scanned {
		t.scan(id)
		n = t.at(id)
	}
	n.expanded = true
}

// Collapse hides a directory's children from the view. They stay cached.
func (t *Tree) Collapse(path string) error {
	id, err := t.lookupDir(path)
	if err != nil {
		return err
	}
	if id != t.root {
		t.nodes[id].expanded = false
	}
	return nil
}

// Toggle flips the expansion state of a directory.
func (t *Tree) Toggle(path string) error {
	id, err := t.lookupDir(path)
	if err != nil {
		return err
	}
	if t.nodes[id].expanded {
		return t.Collapse(path)
	}
	t.expand(id)
	return nil
}

// ExpandUnder expands a directory and every directory below it, listing
// them as needed. Symlinked directories are expanded but not descended
// into, which keeps link cycles from recursing forever.
func (t *Tree) ExpandUnder(path string) error {
	id, err := t.lookupDir(path)
	if err != nil {
		return err
	}
	t.expandUnder(id)
	return nil
}

func (t *Tree) expandUnder(id NodeID) {
	t.expand(id)
	if t.nodes[id].symlink && id != t.root {
		return
	}
	for _, c := range t.nodes[id].children {
		if t.nodes[c].kind == Directory && t.nodes[c].err == nil {
			t.expandUnder(c)
		}
	}
}

// CollapseUnder collapses a directory and every cached directory below it.
func (t *Tree) CollapseUnder(path string) error {
	id, err := t.lookupDir(path)
	if err != nil {
		return err
	}
	t.collapseUnder(id)
	return nil
}

func (t *Tree) collapseUnder(id NodeID) {
	if id != t.root {
		t.nodes[id].expanded = false
	}
	for _, c := range t.nodes[id].children {
		if t.nodes[c].kind == Directory {
			t.collapseUnder(c)
		}
	}
}

// CollapseAll collapses every directory except the root.
func (t *Tree) CollapseAll() {
	t.collapseUnder(t.root)
}

// Walk visits every listed node depth-first in sibling order, ignoring
// expansion state. Returning false from fn skips the node's children.
// The root is not visited.
func (t *Tree) Walk(fn func(Node) bool) {
	t.walk(t.root, fn)
}

func (t *Tree) walk(id NodeID, fn func(Node) bool) {
	for _, c := range t.nodes[id].children {
		n := &t.nodes[c]
		if fn(n.export(c)) && n.kind == Directory {
			t.walk(c, fn)
		}
	}
}

// less orders two siblings.
func (t *Tree) less(a, b NodeID) bool {
	na, nb := &t.nodes[a], &t.nodes[b]
	if t.opts.DirsFirst && na.kind != nb.kind {
		return na.kind == Directory
	}
	return t.opts.Order.Compare(na.name, nb.name) < 0
}

func (t *Tree) sortChildren(id NodeID) {
	cs := t.nodes[id].children
	sort.SliceStable(cs, func(i, j int) bool { return t.less(cs[i], cs[j]) })
}

// insertChild places child among parent's children preserving order.
func (t *Tree) insertChild(parent, child NodeID) {
	cs := t.nodes[parent].children
	i := sort.Search(len(cs), func(i int) bool { return t.less(child, cs[i]) })
	cs = append(cs, NoNode)
	copy(cs[i+1:], cs[i:])
	cs[i] = child
	t.nodes[parent].children = cs
	t.nodes[child].parent = parent
}

func (t *Tree) detachChild(parent, child NodeID) {
	cs := t.nodes[parent].children
	for i, c := range cs {
		if c == child {
			t.nodes[parent].children = append(cs[:i], cs[i+1:]...)
			return
		}
	}
}

// removeSubtree frees id and all its descendants.
func (t *Tree) removeSubtree(id NodeID) {
	n := &t.nodes[id]
	for _, c := range n.children {
		t.removeSubtree(c)
	}
	delete(t.index, n.path)
	t.nodes[id] = node{parent: NoNode}
	t.free = append(t.free, id)
}
