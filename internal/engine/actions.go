package engine

import (
	"fmt"

	"github.com/avitaltamir/projectable/internal/tree"
)

// apply performs one intent. Failures become log entries; nothing here
// stops the engine.
func (e *Engine) apply(in Intent) {
	switch in := in.(type) {
	case MoveCursor:
		e.setCursor(e.cursor + in.Delta)
	case CursorFirst:
		e.setCursor(0)
	case CursorLast:
		e.setCursor(len(e.rows) - 1)
	case Select:
		if !e.reveal(in.Path) {
			e.errorf("select", "%s is not in the tree", in.Path)
		}

	case Open:
		e.onSelectedDir(e.tree.Toggle)
	case Expand:
		e.onSelectedDir(e.tree.Expand)
	case Collapse:
		e.collapseOrParent()
	case ExpandUnder:
		e.onTargetDir(e.tree.ExpandUnder)
	case CollapseUnder:
		e.onTargetDir(e.tree.CollapseUnder)
	case ExpandAll:
		if err := e.tree.ExpandUnder(e.root); err != nil {
			e.errorf("tree", "open all: %v", err)
		}
		e.touchTree()
	case CollapseAll:
		e.tree.CollapseAll()
		e.viewDirty = true

	case ToggleHidden:
		e.showHidden = !e.showHidden
		e.touchTree()
	case ToggleGitFilter:
		e.setGitFilter(!e.gitFilter)
	case ToggleGitignore:
		e.setUseGitignore(!e.filter.UseGitignore())

	case SetFilter:
		e.setFilter(in.Query)
	case ClearFilter:
		e.setFilter("")

	case ToggleMark:
		if e.selected != "" {
			e.marks.Toggle(e.selected)
			e.viewDirty = true
		}
	case JumpToMark:
		if !e.marks.Contains(in.Path) || !e.reveal(in.Path) {
			e.errorf("marks", "cannot jump to %s", in.Path)
		}

	case RunCommand:
		e.runCommand(in.Raw, in.FromConfig)
	case RunSpecial:
		e.runSpecial(in.Index)
	case SubmitPrompt:
		e.submitPrompt(in.Text)
	case CancelPrompt:
		e.prompt = nil
	case KillAll:
		e.killAll()

	case NewFile:
		e.create(in.Name, false)
	case NewDir:
		e.create(in.Name, true)
	case Delete:
		e.deleteTargets(in.Paths)
	case Rename:
		e.rename(in.To)

	case Refresh:
		e.reloadIgnore()
		e.gitDirty = true
		e.refreshGit(true)

	default:
		e.errorf("engine", "unknown intent %T", in)
	}
}

func (e *Engine) onSelectedDir(op func(string) error) {
	n, ok := e.selectedNode()
	if !ok || !n.IsDir() {
		return
	}
	if err := op(n.Path); err != nil {
		e.errorf("tree", "%s: %v", e.tree.Rel(n.Path), err)
	}
	e.touchTree()
}

// onTargetDir applies op to the selected directory, or the directory of
// the selected file.
func (e *Engine) onTargetDir(op func(string) error) {
	dir := e.targetDir()
	if err := op(dir); err != nil {
		e.errorf("tree", "%s: %v", e.tree.Rel(dir), err)
	}
	e.touchTree()
}

func (e *Engine) collapseOrParent() {
	n, ok := e.selectedNode()
	if !ok {
		return
	}
	if n.IsDir() && n.Expanded {
		if err := e.tree.Collapse(n.Path); err != nil {
			e.errorf("tree", "%v", err)
		}
		e.viewDirty = true
		return
	}
	if n.Parent != tree.NoNode && n.Parent != e.tree.Root() {
		e.selected = e.tree.Node(n.Parent).Path
		e.viewDirty = true
	}
}

func (e *Engine) setGitFilter(on bool) {
	if on && !e.GitEnabled() {
		e.errorf("git", "git filter needs a git repository")
		return
	}
	e.gitFilter = on
	if on {
		e.deepScan()
		if e.gitStatus != nil {
			e.tree.SetGitStatus(e.gitStatus)
		}
	}
	e.viewDirty = true
}

// setFilter changes the fuzzy query. The first match is selected so the
// user lands on the best result.
func (e *Engine) setFilter(q string) {
	if q == e.search.Query() {
		return
	}
	if q != "" && !e.search.Active() {
		e.candidatesStale = true
	}
	e.search.SetQuery(q)
	e.viewDirty = true
	if q == "" {
		return
	}
	e.recompute()
	if e.firstMatch != "" {
		e.selected = e.firstMatch
		e.viewDirty = true
	}
}

func (e *Engine) killAll() {
	signalled := e.procs.KillAll()
	if len(signalled) == 0 {
		e.info("process", "no running processes")
		return
	}
	for _, h := range signalled {
		e.info(fmt.Sprintf("#%d", h.ID), "terminate sent")
	}
}
