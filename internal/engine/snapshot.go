package engine

import (
	"github.com/avitaltamir/projectable/internal/process"
	"github.com/avitaltamir/projectable/internal/tree"
)

// Row is a view row decorated with engine state.
type Row struct {
	tree.Row
	Marked bool
	// NameMatch holds byte offsets into Name matched by the filter.
	NameMatch []int
}

// Prompt asks the user for the text of a {...} placeholder.
type Prompt struct {
	Label   string
	Command string
}

// Snapshot is an immutable picture of the engine after one Step. Slices
// and maps are owned by the snapshot.
type Snapshot struct {
	Root   string
	Rows   []Row
	Cursor int

	Filter     string
	Matches    int
	ShowHidden bool
	GitFilter  bool
	// Gitignore reports whether repository ignore rules are applied.
	Gitignore bool

	GitEnabled bool
	Branch     string
	// Dirty is set when the working tree has uncommitted changes. Ahead
	// and Behind count commits relative to the upstream branch.
	Dirty  bool
	Ahead  int
	Behind int
	// Live is false once filesystem watching has stopped.
	Live bool

	Marks           []string
	SpecialCommands []string
	Processes       []process.Handle
	Log             []LogEntry
	Prompt          *Prompt

	// FSGeneration changes whenever filesystem changes were applied, so
	// renderers know to reload previews.
	FSGeneration uint64
}

// Empty reports whether nothing is visible.
func (s Snapshot) Empty() bool {
	return len(s.Rows) == 0
}

// Selected returns the row under the cursor.
func (s Snapshot) Selected() (Row, bool) {
	if s.Empty() {
		return Row{}, false
	}
	return s.Rows[s.Cursor], true
}
