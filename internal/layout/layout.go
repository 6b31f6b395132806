// Package layout computes pane geometry for the terminal window.
package layout

import "github.com/avitaltamir/projectable/internal/state"

const (
	StatusBarHeight = 1
	PromptHeight    = 1
	// LogPercent is the share of the main area given to the log pane.
	LogPercent     = 30
	MinPanelWidth  = 20
	MinPanelHeight = 3
)

// Layout holds the dimensions of every pane, borders included.
type Layout struct {
	TotalWidth  int
	TotalHeight int

	LeftWidth  int
	RightWidth int

	// MainHeight is the height of the tree and preview panes.
	MainHeight int
	LogHeight  int

	PromptHeight int
	StatusHeight int

	LogVisible    bool
	PromptVisible bool
}

// Options selects which optional panes are shown.
type Options struct {
	LeftPercent int
	ShowLog     bool
	ShowPrompt  bool
}

// Calculate splits a width x height terminal. The tree takes LeftPercent
// of the width; the log pane spans the full width under the tree and
// preview; the prompt line and status bar sit at the bottom.
func Calculate(width, height int, opts Options) Layout {
	l := Layout{
		TotalWidth:    width,
		TotalHeight:   height,
		StatusHeight:  StatusBarHeight,
		LogVisible:    opts.ShowLog,
		PromptVisible: opts.ShowPrompt,
	}

	pct := opts.LeftPercent
	switch {
	case pct == 0:
		pct = state.DefaultLeftPanelPercent
	case pct < state.MinLeftPanelPercent:
		pct = state.MinLeftPanelPercent
	case pct > state.MaxLeftPanelPercent:
		pct = state.MaxLeftPanelPercent
	}

	l.LeftWidth = max(width*pct/100, MinPanelWidth)
	if l.LeftWidth > width {
		l.LeftWidth = width
	}
	l.RightWidth = max(width-l.LeftWidth, 0)

	avail := height - l.StatusHeight
	if opts.ShowPrompt {
		l.PromptHeight = PromptHeight
		avail -= l.PromptHeight
	}
	avail = max(avail, 0)

	if opts.ShowLog {
		l.LogHeight = max(avail*LogPercent/100, MinPanelHeight)
		l.MainHeight = avail - l.LogHeight
		if l.MainHeight < MinPanelHeight {
			// not enough room for both; the tree wins
			l.LogHeight = 0
			l.LogVisible = false
			l.MainHeight = avail
		}
	} else {
		l.MainHeight = avail
	}
	return l
}

// Inner returns the content size of a bordered pane.
func Inner(width, height int) (int, int) {
	return max(width-2, 0), max(height-2, 0)
}

// Scroll returns the first visible line so that cursor stays inside a
// window of height lines, moving offset as little as possible.
func Scroll(cursor, offset, height, total int) int {
	if height <= 0 || total <= height {
		return 0
	}
	if cursor < offset {
		offset = cursor
	}
	if cursor >= offset+height {
		offset = cursor - height + 1
	}
	if offset > total-height {
		offset = total - height
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}
