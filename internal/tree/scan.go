package tree

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/charlievieth/fastwalk"
)

// ScanError records why an entry could not be read.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// entry is one listed directory entry before it is placed in the arena.
type entry struct {
	name    string
	kind    Kind
	symlink bool
	err     error
}

func (t *Tree) ignored(path string, kind Kind) bool {
	return t.opts.Filter != nil && t.opts.Filter.Ignored(path, kind == Directory)
}

// classify resolves the kind of a directory entry, following symlinks.
// A dangling link is reported as a file carrying a ScanError.
func classify(path string, d fs.DirEntry) entry {
	e := entry{name: d.Name(), kind: File}
	if d.IsDir() {
		e.kind = Directory
		return e
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return e
	}
	e.symlink = true
	info, err := os.Stat(path)
	if err != nil {
		e.err = &ScanError{Path: path, Err: err}
		return e
	}
	if info.IsDir() {
		e.kind = Directory
	}
	return e
}

// scan lists a directory's entries. A failure to read the directory
// marks that node errored; a failure on one entry marks only that entry.
func (t *Tree) scan(id NodeID) {
	dir := t.nodes[id].path
	des, err := os.ReadDir(dir)
	if err != nil && len(des) == 0 {
		t.nodes[id].err = &ScanError{Path: dir, Err: err}
		t.nodes[id].scanned = true
		t.log.WithError(err).WithField("path", dir).Debug("directory scan failed")
		return
	}

	entries := make([]entry, 0, len(des))
	for _, d := range des {
		entries = append(entries, classify(filepath.Join(dir, d.Name()), d))
	}
	t.populate(id, entries)
	if err != nil {
		// partial listing
		t.nodes[id].err = &ScanError{Path: dir, Err: err}
	}
}

// populate fills an unscanned directory from a listing.
func (t *Tree) populate(id NodeID, entries []entry) {
	dir := t.nodes[id].path
	for _, e := range entries {
		path := filepath.Join(dir, e.name)
		if t.ignored(path, e.kind) {
			continue
		}
		if _, exists := t.index[path]; exists {
			continue
		}
		n := newNode(path, e.kind, id)
		n.symlink = e.symlink
		n.err = e.err
		c := t.alloc(n)
		t.nodes[id].children = append(t.nodes[id].children, c)
	}
	t.sortChildren(id)
	t.nodes[id].scanned = true
	t.nodes[id].err = nil
}

// Rescan re-lists a scanned directory and reconciles it with the disk:
// vanished or newly ignored entries are removed, new ones inserted.
// Surviving nodes keep their expansion state and cached children.
func (t *Tree) Rescan(path string) error {
	id, err := t.lookupDir(path)
	if err != nil {
		return err
	}
	if !t.nodes[id].scanned {
		return nil
	}
	dir := t.nodes[id].path
	des, err := os.ReadDir(dir)
	if err != nil && len(des) == 0 {
		t.nodes[id].err = &ScanError{Path: dir, Err: err}
		return nil
	}

	keep := make(map[string]entry, len(des))
	for _, d := range des {
		p := filepath.Join(dir, d.Name())
		e := classify(p, d)
		if !t.ignored(p, e.kind) {
			keep[p] = e
		}
	}

	for _, c := range append([]NodeID(nil), t.nodes[id].children...) {
		n := &t.nodes[c]
		e, ok := keep[n.path]
		if ok && e.kind == n.kind {
			n.err = e.err
			delete(keep, n.path)
			continue
		}
		t.detachChild(id, c)
		t.removeSubtree(c)
	}
	for p, e := range keep {
		n := newNode(p, e.kind, id)
		n.symlink = e.symlink
		n.err = e.err
		t.insertChild(id, t.alloc(n))
	}
	t.nodes[id].err = nil
	return nil
}

// RescanAll reconciles every scanned directory, top down. It is used
// after ignore rules change.
func (t *Tree) RescanAll() {
	var dirs []string
	var collect func(NodeID)
	collect = func(id NodeID) {
		if !t.nodes[id].scanned {
			return
		}
		dirs = append(dirs, t.nodes[id].path)
		for _, c := range t.nodes[id].children {
			if t.nodes[c].kind == Directory {
				collect(c)
			}
		}
	}
	collect(t.root)
	for _, d := range dirs {
		// parents are rescanned first, so a directory may already be gone
		if _, ok := t.index[d]; ok {
			_ = t.Rescan(d)
		}
	}
}

// ScanAll lists every directory below the root that passes the filter,
// without changing any expansion state. Directories are read
// concurrently; the arena is only touched after the walk completes.
// Symlinked directories are left for a lazy scan on expand.
func (t *Tree) ScanAll() error {
	root := t.RootPath()

	var mu sync.Mutex
	listing := make(map[string][]entry)
	failed := make(map[string]error)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			mu.Lock()
			failed[path] = err
			mu.Unlock()
			return nil
		}
		if path == root {
			return nil
		}
		e := classify(path, d)
		if t.ignored(path, e.kind) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}
		mu.Lock()
		dir := filepath.Dir(path)
		listing[dir] = append(listing[dir], e)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", root, err)
	}

	var fill func(NodeID)
	fill = func(id NodeID) {
		n := &t.nodes[id]
		if !n.scanned && !n.symlink {
			if ferr, bad := failed[n.path]; bad {
				n.err = &ScanError{Path: n.path, Err: ferr}
				n.scanned = true
				return
			}
			t.populate(id, listing[n.path])
		}
		for _, c := range t.nodes[id].children {
			if t.nodes[c].kind == Directory && !t.nodes[c].symlink {
				fill(c)
			}
		}
	}
	fill(t.root)
	return nil
}
