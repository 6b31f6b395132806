package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/avitaltamir/projectable/internal/git"
	"github.com/avitaltamir/projectable/internal/tree"
)

// recompute rebuilds the rows when anything they depend on changed and
// re-anchors the cursor on the selected path.
func (e *Engine) recompute() {
	if !e.viewDirty {
		return
	}

	var only, force map[tree.NodeID]bool
	if e.search.Active() || e.gitFilter {
		only, force = e.overlay()
	} else {
		e.matchPos = nil
		e.matchCount = 0
	}

	flat := e.tree.Flatten(tree.ViewOptions{
		ShowHidden:    e.showHidden,
		Only:          only,
		ForceExpanded: force,
	})
	rows := make([]Row, len(flat))
	for i, r := range flat {
		rows[i] = Row{Row: r, Marked: e.marks.Contains(r.Path), NameMatch: e.matchPos[r.ID]}
	}
	e.rows = rows
	e.viewDirty = false

	idx := -1
	if e.selected != "" {
		for i, r := range rows {
			if r.Path == e.selected {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		idx = e.cursor
	}
	e.setCursor(idx)
}

// setCursor clamps i into the view and updates the selection.
func (e *Engine) setCursor(i int) {
	if len(e.rows) == 0 {
		e.cursor = 0
		e.selected = ""
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(e.rows) {
		i = len(e.rows) - 1
	}
	e.cursor = i
	e.selected = e.rows[i].Path
}

// overlay computes the nodes to show and the directories to force open
// for the active search and git filters. The tree's own expansion state
// is left alone, so clearing a filter restores the previous view.
func (e *Engine) overlay() (only, force map[tree.NodeID]bool) {
	force = make(map[tree.NodeID]bool)
	root := e.tree.Root()
	keepWithAncestors := func(set map[tree.NodeID]bool, id tree.NodeID) {
		set[id] = true
		for _, a := range e.tree.Ancestors(id) {
			if a == root {
				break
			}
			set[a] = true
			force[a] = true
		}
	}

	if e.search.Active() {
		if e.candidatesStale {
			e.rebuildCandidates()
		}
		only = make(map[tree.NodeID]bool)
		e.matchPos = make(map[tree.NodeID][]int)
		matches := e.search.Matches()
		e.matchCount = len(matches)
		e.firstMatch = ""
		for i, m := range matches {
			id := e.candidateIDs[m.Index]
			if i == 0 {
				e.firstMatch = e.tree.Node(id).Path
			}
			keepWithAncestors(only, id)
			e.matchPos[id] = nameOffsets(m.Str, e.tree.Node(id).Name, m.Positions)
		}
	}

	if e.gitFilter {
		changed := make(map[tree.NodeID]bool)
		e.tree.Walk(func(n tree.Node) bool {
			if n.Git == git.ClassNone {
				return false
			}
			keepWithAncestors(changed, n.ID)
			return true
		})
		if only == nil {
			only = changed
		} else {
			for id := range only {
				if !changed[id] {
					delete(only, id)
				}
			}
		}
	}
	return only, force
}

// rebuildCandidates lists every searchable node as a root-relative path.
// Hidden subtrees are skipped unless hidden files are shown.
func (e *Engine) rebuildCandidates() {
	e.deepScan()
	e.candidates = e.candidates[:0]
	e.candidateIDs = e.candidateIDs[:0]
	e.tree.Walk(func(n tree.Node) bool {
		if n.Hidden && !e.showHidden {
			return false
		}
		e.candidates = append(e.candidates, e.tree.Rel(n.Path))
		e.candidateIDs = append(e.candidateIDs, n.ID)
		return true
	})
	// a fresh slice so the index sees a new candidate list
	e.search.SetCandidates(append([]string(nil), e.candidates...))
	e.candidatesStale = false
	e.log.WithFields(logrus.Fields{"candidates": len(e.candidates)}).Debug("search candidates rebuilt")
}

// nameOffsets converts match offsets within a relative path into offsets
// within its final element.
func nameOffsets(rel, name string, positions []int) []int {
	start := len(rel) - len(name)
	var out []int
	for _, p := range positions {
		if p >= start {
			out = append(out, p-start)
		}
	}
	return out
}

func (e *Engine) snapshot() Snapshot {
	s := Snapshot{
		Root:         e.root,
		Rows:         append([]Row(nil), e.rows...),
		Cursor:       e.cursor,
		Filter:       e.search.Query(),
		Matches:      e.matchCount,
		ShowHidden:   e.showHidden,
		GitFilter:    e.gitFilter,
		Gitignore:    e.filter.UseGitignore(),
		GitEnabled:   e.GitEnabled(),
		Branch:       e.head.Branch,
		Dirty:        e.head.IsDirty,
		Ahead:        e.head.Ahead,
		Behind:       e.head.Behind,
		Live:         e.live,
		Marks:        e.marks.List(),
		Processes:    e.procs.Handles(),
		Log:          e.events.list(),
		FSGeneration: e.fsGen,
	}
	if n, ok := e.selectedNode(); ok {
		if rule, ok := e.special.Match(e.tree.Rel(n.Path), n.IsDir()); ok {
			s.SpecialCommands = append([]string(nil), rule.Commands...)
		}
	}
	if e.prompt != nil {
		p := e.prompt.public()
		s.Prompt = &p
	}
	return s
}
