package engine

// Intent is a user action applied by Step. The set is closed.
type Intent interface {
	intent()
}

type (
	// MoveCursor moves the cursor by Delta rows, clamped to the view.
	MoveCursor struct{ Delta int }
	CursorFirst struct{}
	CursorLast  struct{}
	// Select reveals Path, expanding its ancestors, and moves the cursor
	// onto it.
	Select struct{ Path string }

	// Open toggles the selected directory. Files are left to the preview.
	Open struct{}
	// Expand opens the selected directory.
	Expand struct{}
	// Collapse closes the selected directory, or moves to the parent when
	// the selection is a file or already closed.
	Collapse      struct{}
	ExpandUnder   struct{}
	CollapseUnder struct{}
	ExpandAll     struct{}
	CollapseAll   struct{}

	ToggleHidden    struct{}
	ToggleGitFilter struct{}
	// ToggleGitignore switches repository ignore rules on or off and
	// re-lists every scanned directory. User globs stay in effect.
	ToggleGitignore struct{}

	// SetFilter sets the fuzzy query. An empty query clears the filter.
	SetFilter   struct{ Query string }
	ClearFilter struct{}

	ToggleMark struct{}
	JumpToMark struct{ Path string }

	// RunCommand resolves and spawns a command template. FromConfig marks
	// templates from configuration, the only ones allowed to prompt.
	RunCommand struct {
		Raw        string
		FromConfig bool
	}
	// RunSpecial runs the Index-th special command of the selection.
	RunSpecial struct{ Index int }
	// SubmitPrompt answers a pending prompt.
	SubmitPrompt struct{ Text string }
	CancelPrompt struct{}

	KillAll struct{}

	// NewFile and NewDir create Name inside the selected directory, or
	// beside the selected file. Name may contain separators.
	NewFile struct{ Name string }
	NewDir  struct{ Name string }
	// Delete removes exactly Paths, as confirmed by the user; paths that
	// have since left the tree are skipped. Without Paths it removes
	// DeleteTargets at the time the intent runs.
	Delete struct{ Paths []string }
	// Rename renames the selection to To, relative to its directory.
	Rename struct{ To string }

	// Refresh reloads ignore rules, re-lists scanned directories and
	// queries git again.
	Refresh struct{}
)

func (MoveCursor) intent()      {}
func (CursorFirst) intent()     {}
func (CursorLast) intent()      {}
func (Select) intent()          {}
func (Open) intent()            {}
func (Expand) intent()          {}
func (Collapse) intent()        {}
func (ExpandUnder) intent()     {}
func (CollapseUnder) intent()   {}
func (ExpandAll) intent()       {}
func (CollapseAll) intent()     {}
func (ToggleHidden) intent()    {}
func (ToggleGitFilter) intent() {}
func (ToggleGitignore) intent() {}
func (SetFilter) intent()       {}
func (ClearFilter) intent()     {}
func (ToggleMark) intent()      {}
func (JumpToMark) intent()      {}
func (RunCommand) intent()      {}
func (RunSpecial) intent()      {}
func (SubmitPrompt) intent()    {}
func (CancelPrompt) intent()    {}
func (KillAll) intent()         {}
func (NewFile) intent()         {}
func (NewDir) intent()          {}
func (Delete) intent()          {}
func (Rename) intent()          {}
func (Refresh) intent()         {}
