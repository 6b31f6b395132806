package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/avitaltamir/projectable/internal/engine"
	"github.com/avitaltamir/projectable/internal/git"
	"github.com/avitaltamir/projectable/internal/theme"
	"github.com/avitaltamir/projectable/internal/tree"
)

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// paint renders text in style unless plain is set; the selected row is
// drawn plain and styled as a whole.
type paint func(style lipgloss.Style, text string) string

func styled(style lipgloss.Style, text string) string { return style.Render(text) }

func unstyled(_ lipgloss.Style, text string) string { return text }

// renderTree draws the visible slice of rows.
func renderTree(s theme.Styles, snap engine.Snapshot, start, end, width int) string {
	if snap.Empty() {
		msg := "(empty)"
		switch {
		case snap.Filter != "":
			msg = fmt.Sprintf("no match for %q", snap.Filter)
		case snap.GitFilter:
			msg = "(no git changes)"
		}
		return s.Placeholder.Render(msg)
	}
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, renderRow(s, snap.Rows[i], i == snap.Cursor, width))
	}
	return strings.Join(lines, "\n")
}

func renderRow(s theme.Styles, r engine.Row, selected bool, width int) string {
	p := paint(styled)
	if selected {
		p = unstyled
	}

	nameStyle := s.TreeFile
	switch {
	case r.Err != nil:
		nameStyle = s.TreeError
	case r.Git != git.ClassNone:
		nameStyle = s.Git(r.Git)
	case r.Kind == tree.Directory:
		nameStyle = s.TreeDir
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("  ", r.Depth))
	b.WriteString(p(s.TreeGuide, rowIcon(s.Theme, r)))
	b.WriteByte(' ')
	b.WriteString(highlightName(r.Name, r.NameMatch, nameStyle, s.Match, p))
	if r.Kind == tree.Directory {
		b.WriteString(p(nameStyle, "/"))
	}
	if marker := theme.GitMarker(r.Git); marker != "" {
		b.WriteByte(' ')
		b.WriteString(p(s.Git(r.Git), marker))
	}
	if r.Marked {
		b.WriteByte(' ')
		b.WriteString(p(s.TreeMarked, theme.IconMarked))
	}
	if r.Err != nil {
		b.WriteByte(' ')
		b.WriteString(p(s.TreeError, theme.IconError))
	}

	line := truncate(b.String(), width)
	if selected {
		return s.TreeSelected.Width(width).Render(line)
	}
	return line
}

func rowIcon(t *theme.Theme, r engine.Row) string {
	switch {
	case r.Kind == tree.Directory:
		return t.DirIcon(r.Name, r.Expanded)
	case r.Symlink:
		return theme.IconSymlink
	default:
		return t.FileIcon(strings.ToLower(filepath.Ext(r.Name)))
	}
}

// highlightName styles the bytes of name listed in match.
func highlightName(name string, match []int, base, hl lipgloss.Style, p paint) string {
	if len(match) == 0 {
		return p(base, name)
	}
	hit := make(map[int]bool, len(match))
	for _, i := range match {
		hit[i] = true
	}
	var b strings.Builder
	var run strings.Builder
	inMatch := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if inMatch {
			b.WriteString(p(hl, run.String()))
		} else {
			b.WriteString(p(base, run.String()))
		}
		run.Reset()
	}
	for i, r := range name {
		if hit[i] != inMatch {
			flush()
			inMatch = hit[i]
		}
		run.WriteRune(r)
	}
	flush()
	return b.String()
}

// renderLog draws the newest entries that fit in height lines.
func renderLog(s theme.Styles, entries []engine.LogEntry, width, height int) string {
	if height <= 0 {
		return ""
	}
	if len(entries) == 0 {
		return s.Placeholder.Render("(no events)")
	}
	if len(entries) > height {
		entries = entries[len(entries)-height:]
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		line := s.LogTime.Render(e.Time.Format("15:04:05")) + " " + s.LogLevel(e.Level).Render(e.String())
		lines = append(lines, truncate(line, width))
	}
	return strings.Join(lines, "\n")
}

// renderStatus draws the bottom bar.
func renderStatus(s theme.Styles, snap engine.Snapshot, width int) string {
	var left []string
	if snap.GitEnabled && snap.Branch != "" {
		left = append(left, s.StatusHighlight.Render(theme.IconBranch+" "+branchLabel(snap)))
	}
	if snap.Live {
		left = append(left, s.StatusMuted.Render(theme.StatusLive+" live"))
	} else {
		left = append(left, s.StatusError.Render(theme.StatusStale+" stale"))
	}
	if snap.Filter != "" {
		left = append(left, s.StatusHighlight.Render(fmt.Sprintf("/%s (%d)", snap.Filter, snap.Matches)))
	}
	if snap.GitFilter {
		left = append(left, s.StatusHighlight.Render("git changes"))
	}
	if snap.ShowHidden {
		left = append(left, s.StatusMuted.Render("dotfiles"))
	}
	if !snap.Gitignore {
		left = append(left, s.StatusMuted.Render("no gitignore"))
	}
	if n := len(snap.Marks); n > 0 {
		left = append(left, s.StatusMuted.Render(fmt.Sprintf("%s %d", theme.IconMarked, n)))
	}
	if n := runningProcesses(snap); n > 0 {
		left = append(left, s.StatusHighlight.Render(fmt.Sprintf("%d running", n)))
	}

	right := s.StatusMuted.Render(s.Theme.Name + "  ? help")
	l := strings.Join(left, s.StatusMuted.Render(" │ "))
	// the bar pads one cell on each side
	inner := width - 2
	gap := inner - lipgloss.Width(l) - lipgloss.Width(right)
	if gap < 1 {
		return s.StatusBar.Width(width).Render(truncate(l, inner))
	}
	return s.StatusBar.Width(width).Render(l + strings.Repeat(" ", gap) + right)
}

// branchLabel is the branch name, "*" when the tree has uncommitted
// changes and the commit counts against upstream.
func branchLabel(snap engine.Snapshot) string {
	label := snap.Branch
	if snap.Dirty {
		label += "*"
	}
	if snap.Ahead > 0 {
		label += fmt.Sprintf(" ↑%d", snap.Ahead)
	}
	if snap.Behind > 0 {
		label += fmt.Sprintf(" ↓%d", snap.Behind)
	}
	return label
}

func runningProcesses(snap engine.Snapshot) int {
	n := 0
	for _, h := range snap.Processes {
		if !h.Status.Done() {
			n++
		}
	}
	return n
}
