package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/avitaltamir/projectable/internal/theme"
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeSearch
	modeExec
	modeNewFile
	modeNewDir
	modeRename
	// modeCommandInput collects the text for a {...} placeholder.
	modeCommandInput
)

// label is shown before the input field.
func (m inputMode) label() string {
	switch m {
	case modeSearch:
		return "filter"
	case modeExec:
		return "run"
	case modeNewFile:
		return "new file"
	case modeNewDir:
		return "new dir"
	case modeRename:
		return "rename to"
	default:
		return ""
	}
}

func newInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = " "
	ti.CharLimit = 1024
	return ti
}

// dialogKind identifies a modal popup.
type dialogKind int

const (
	dialogNone dialogKind = iota
	dialogSpecial
	dialogMarks
	dialogDelete
	dialogHelp
)

// chooser is a vertical list with a cursor, used for the special
// command and mark popups.
type chooser struct {
	title  string
	items  []string
	cursor int
}

func (c *chooser) move(delta int) {
	if len(c.items) == 0 {
		return
	}
	c.cursor = max(0, min(len(c.items)-1, c.cursor+delta))
}

func (c chooser) selected() (int, bool) {
	if len(c.items) == 0 {
		return 0, false
	}
	return c.cursor, true
}

func (c chooser) view(s theme.Styles, width int) string {
	var b strings.Builder
	b.WriteString(s.PromptLabel.Render(c.title))
	b.WriteString("\n\n")
	if len(c.items) == 0 {
		b.WriteString(s.Placeholder.Render("(nothing here)"))
	}
	for i, item := range c.items {
		line := fmt.Sprintf("%d  %s", i+1, item)
		if lipgloss.Width(line) > width {
			line = truncate(line, width)
		}
		if i == c.cursor {
			line = s.TreeSelected.Render(line)
		}
		b.WriteString(line)
		if i < len(c.items)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// confirmView lists what a delete will remove.
func confirmView(s theme.Styles, root string, targets []string, width int) string {
	var b strings.Builder
	b.WriteString(s.StatusError.Render(fmt.Sprintf("Delete %d item(s)?", len(targets))))
	b.WriteString("\n\n")
	for _, t := range targets {
		rel, err := filepath.Rel(root, t)
		if err != nil {
			rel = t
		}
		b.WriteString(truncate(rel, width))
		b.WriteByte('\n')
	}
	b.WriteString("\n")
	b.WriteString(s.StatusMuted.Render("y/enter delete · n/esc cancel"))
	return b.String()
}
