// Package marks keeps the user's pinned paths for the session.
package marks

import "slices"

// Store is an ordered set of paths, oldest first.
type Store struct {
	paths []string
	set   map[string]struct{}
}

// New returns an empty Store.
func New() *Store {
	return &Store{set: make(map[string]struct{})}
}

// Add appends path unless it is already marked. It reports whether the
// store changed.
func (s *Store) Add(path string) bool {
	if _, ok := s.set[path]; ok {
		return false
	}
	s.set[path] = struct{}{}
	s.paths = append(s.paths, path)
	return true
}

// Remove drops path and reports whether it was marked.
func (s *Store) Remove(path string) bool {
	if _, ok := s.set[path]; !ok {
		return false
	}
	delete(s.set, path)
	s.paths = slices.DeleteFunc(s.paths, func(p string) bool { return p == path })
	return true
}

// Toggle marks or unmarks path and reports whether it is now marked.
func (s *Store) Toggle(path string) bool {
	if s.Remove(path) {
		return false
	}
	s.Add(path)
	return true
}

// Contains reports whether path is marked.
func (s *Store) Contains(path string) bool {
	_, ok := s.set[path]
	return ok
}

// List returns the marked paths in the order they were added.
func (s *Store) List() []string {
	return slices.Clone(s.paths)
}

// Len returns the number of marks.
func (s *Store) Len() int {
	return len(s.paths)
}

// Prune removes marks for which keep returns false and returns the
// removed paths.
func (s *Store) Prune(keep func(path string) bool) []string {
	var removed []string
	s.paths = slices.DeleteFunc(s.paths, func(p string) bool {
		if keep(p) {
			return false
		}
		delete(s.set, p)
		removed = append(removed, p)
		return true
	})
	return removed
}

// Rename moves a mark, and any marks below it, to a new path prefix.
func (s *Store) Rename(from, to string, sep byte) {
	for i, p := range s.paths {
		var np string
		switch {
		case p == from:
			np = to
		case len(p) > len(from) && p[:len(from)] == from && p[len(from)] == sep:
			np = to + p[len(from):]
		default:
			continue
		}
		delete(s.set, p)
		if _, dup := s.set[np]; dup {
			s.paths[i] = ""
			continue
		}
		s.paths[i] = np
		s.set[np] = struct{}{}
	}
	s.paths = slices.DeleteFunc(s.paths, func(p string) bool { return p == "" })
}
