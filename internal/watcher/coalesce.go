package watcher

import (
	"path/filepath"
	"sort"

	"github.com/fsnotify/fsnotify"

	"github.com/avitaltamir/projectable/internal/tree"
)

// pathState tracks one path across a debounce window.
type pathState struct {
	seq     int
	existed bool // before the first event in the window
	exists  bool // after the latest event
	touched bool // content or metadata changed while present
}

// Coalescer reduces raw notifications to the minimal set of changes that
// takes the tree from its state at the start of the window to the final
// state. It is not safe for concurrent use.
type Coalescer struct {
	seq   int
	paths map[string]*pathState
}

// NewCoalescer returns an empty Coalescer.
func NewCoalescer() *Coalescer {
	return &Coalescer{paths: make(map[string]*pathState)}
}

// Add records one raw event.
func (c *Coalescer) Add(name string, op fsnotify.Op) {
	name = filepath.Clean(name)
	st, seen := c.paths[name]
	if !seen {
		c.seq++
		st = &pathState{seq: c.seq}
		// the first op tells us whether the path existed before the window
		st.existed = !op.Has(fsnotify.Create)
		st.exists = st.existed
		c.paths[name] = st
	}

	switch {
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		st.exists = false
	case op.Has(fsnotify.Create):
		if st.existed {
			// removed and recreated within the window
			st.touched = true
		}
		st.exists = true
	case op.Has(fsnotify.Write), op.Has(fsnotify.Chmod):
		st.exists = true
		st.touched = true
	}
}

// Len returns the number of distinct paths seen.
func (c *Coalescer) Len() int {
	return len(c.paths)
}

// Changes returns the coalesced changes in first-seen order. Paths created
// and removed within the window produce nothing.
func (c *Coalescer) Changes() []tree.Change {
	type item struct {
		seq int
		ch  tree.Change
	}
	items := make([]item, 0, len(c.paths))
	for path, st := range c.paths {
		var kind tree.ChangeKind
		switch {
		case !st.existed && st.exists:
			kind = tree.Created
		case st.existed && !st.exists:
			kind = tree.Removed
		case st.existed && st.exists && st.touched:
			kind = tree.Modified
		default:
			continue
		}
		items = append(items, item{seq: st.seq, ch: tree.Change{Kind: kind, Path: path}})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].seq < items[j].seq })

	out := make([]tree.Change, len(items))
	for i, it := range items {
		out[i] = it.ch
	}
	return out
}

// Reset forgets everything recorded so far.
func (c *Coalescer) Reset() {
	c.seq = 0
	c.paths = make(map[string]*pathState)
}
