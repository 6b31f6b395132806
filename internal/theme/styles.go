package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/avitaltamir/projectable/internal/git"
)

var (
	// NeonBorder frames the focused pane.
	NeonBorder = lipgloss.Border{
		Top: "━", Bottom: "━", Left: "┃", Right: "┃",
		TopLeft: "┏", TopRight: "┓", BottomLeft: "┗", BottomRight: "┛",
	}

	// GlowBorder frames the other panes.
	GlowBorder = lipgloss.Border{
		Top: "─", Bottom: "─", Left: "│", Right: "│",
		TopLeft: "╭", TopRight: "╮", BottomLeft: "╰", BottomRight: "╯",
	}
)

// Styles are the lipgloss styles derived from one theme.
type Styles struct {
	Theme *Theme

	TreeDir      lipgloss.Style
	TreeFile     lipgloss.Style
	TreeSelected lipgloss.Style
	TreeMarked   lipgloss.Style
	TreeError    lipgloss.Style
	TreeGuide    lipgloss.Style
	Match        lipgloss.Style

	gitStyles map[git.Class]lipgloss.Style

	DiffAdded   lipgloss.Style
	DiffRemoved lipgloss.Style
	DiffContext lipgloss.Style
	DiffHunk    lipgloss.Style
	DiffHeader  lipgloss.Style
	LineNumber  lipgloss.Style
	LineSep     lipgloss.Style

	LogTime  lipgloss.Style
	LogInfo  lipgloss.Style
	LogWarn  lipgloss.Style
	LogError lipgloss.Style
	LogDebug lipgloss.Style

	StatusBar       lipgloss.Style
	StatusHighlight lipgloss.Style
	StatusMuted     lipgloss.Style
	StatusError     lipgloss.Style

	Prompt      lipgloss.Style
	PromptLabel lipgloss.Style
	Dialog      lipgloss.Style
	Placeholder lipgloss.Style
}

// NewStyles builds the styles for t.
func NewStyles(t *Theme) Styles {
	p := t.Palette
	return Styles{
		Theme: t,

		TreeDir:      lipgloss.NewStyle().Foreground(p.Secondary).Bold(true),
		TreeFile:     lipgloss.NewStyle().Foreground(p.Text),
		TreeSelected: lipgloss.NewStyle().Foreground(p.Primary).Background(p.BgSelection).Bold(true),
		TreeMarked:   lipgloss.NewStyle().Foreground(p.Focus),
		TreeError:    lipgloss.NewStyle().Foreground(p.Error).Italic(true),
		TreeGuide:    lipgloss.NewStyle().Foreground(p.TextDim),
		Match:        lipgloss.NewStyle().Foreground(p.Warning).Underline(true),

		gitStyles: map[git.Class]lipgloss.Style{
			git.ClassIgnored:  lipgloss.NewStyle().Foreground(p.TextDim),
			git.ClassAdded:    lipgloss.NewStyle().Foreground(p.Success),
			git.ClassRenamed:  lipgloss.NewStyle().Foreground(p.Special),
			git.ClassModified: lipgloss.NewStyle().Foreground(p.Warning),
			git.ClassNew:      lipgloss.NewStyle().Foreground(p.Special),
			git.ClassDeleted:  lipgloss.NewStyle().Foreground(p.Error),
			git.ClassConflict: lipgloss.NewStyle().Foreground(p.Error).Bold(true),
		},

		DiffAdded:   lipgloss.NewStyle().Foreground(p.Success),
		DiffRemoved: lipgloss.NewStyle().Foreground(p.Error),
		DiffContext: lipgloss.NewStyle().Foreground(p.TextSecondary),
		DiffHunk:    lipgloss.NewStyle().Foreground(p.Special).Bold(true),
		DiffHeader:  lipgloss.NewStyle().Foreground(p.Secondary).Bold(true),
		LineNumber:  lipgloss.NewStyle().Foreground(p.TextDim),
		LineSep:     lipgloss.NewStyle().Foreground(p.TextDim),

		LogTime:  lipgloss.NewStyle().Foreground(p.TextDim),
		LogInfo:  lipgloss.NewStyle().Foreground(p.TextSecondary),
		LogWarn:  lipgloss.NewStyle().Foreground(p.Warning),
		LogError: lipgloss.NewStyle().Foreground(p.Error).Bold(true),
		LogDebug: lipgloss.NewStyle().Foreground(p.TextMuted),

		StatusBar:       lipgloss.NewStyle().Foreground(p.TextSecondary).Padding(0, 1),
		StatusHighlight: lipgloss.NewStyle().Foreground(p.Secondary).Bold(true),
		StatusMuted:     lipgloss.NewStyle().Foreground(p.TextMuted),
		StatusError:     lipgloss.NewStyle().Foreground(p.Error).Bold(true),

		Prompt:      lipgloss.NewStyle().Background(p.BgPrompt).Foreground(p.Text),
		PromptLabel: lipgloss.NewStyle().Foreground(p.Secondary).Bold(true),
		Dialog: lipgloss.NewStyle().
			Border(NeonBorder).
			BorderForeground(p.Primary).
			Foreground(p.Text).
			Padding(1, 2),
		Placeholder: lipgloss.NewStyle().Foreground(p.TextMuted).Italic(true),
	}
}

// Git returns the style for a decoration class.
func (s Styles) Git(c git.Class) lipgloss.Style {
	if st, ok := s.gitStyles[c]; ok {
		return st
	}
	return s.TreeFile
}

// LogLevel returns the style for an event log level.
func (s Styles) LogLevel(l logrus.Level) lipgloss.Style {
	switch {
	case l <= logrus.ErrorLevel:
		return s.LogError
	case l == logrus.WarnLevel:
		return s.LogWarn
	case l == logrus.InfoLevel:
		return s.LogInfo
	default:
		return s.LogDebug
	}
}

// PanelOptions configures the decorations drawn into a pane border.
type PanelOptions struct {
	Title string
	// Status is drawn after the title when set, e.g. a live indicator.
	Status string
	// Scroll is a position in percent; negative hides it.
	Scroll float64
	// Hints are drawn into the bottom border.
	Hints string
}

// RenderPanel draws content inside a border of exactly width x height
// cells, with the title in the top border and hints in the bottom one.
func (s Styles) RenderPanel(content string, opts PanelOptions, width, height int, focused bool) string {
	if width < 4 || height < 2 {
		return ""
	}
	p := s.Theme.Palette
	border, borderColor, titleColor := GlowBorder, p.TextDim, p.TextMuted
	if focused {
		border, borderColor, titleColor = NeonBorder, p.Primary, p.Secondary
	}
	edge := lipgloss.NewStyle().Foreground(borderColor)
	title := lipgloss.NewStyle().Foreground(titleColor).Bold(true)
	inner := width - 2

	top := topBorder(border, edge, title, s.StatusMuted, opts, inner)
	bottom := bottomBorder(border, edge, s.StatusMuted, opts.Hints, inner)

	lines := strings.Split(content, "\n")
	rows := make([]string, height-2)
	clip := lipgloss.NewStyle().MaxWidth(inner)
	for i := range rows {
		var line string
		if i < len(lines) {
			line = clip.Render(lines[i])
		}
		if w := lipgloss.Width(line); w < inner {
			line += strings.Repeat(" ", inner-w)
		}
		rows[i] = edge.Render(border.Left) + line + edge.Render(border.Right)
	}

	var b strings.Builder
	b.WriteString(top)
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(r)
	}
	b.WriteString("\n")
	b.WriteString(bottom)
	return b.String()
}

// ScrollIndicator formats a scroll position, or "" at the bottom.
func ScrollIndicator(percent float64) string {
	if percent >= 99.9 || percent < 0 {
		return ""
	}
	return fmt.Sprintf("%d%%", int(percent))
}

func topBorder(b lipgloss.Border, edge, title, muted lipgloss.Style, opts PanelOptions, inner int) string {
	seg := "[ " + title.Render(opts.Title)
	if opts.Status != "" {
		seg += " " + opts.Status
	}
	seg += " ]"

	var scroll string
	if text := ScrollIndicator(opts.Scroll); text != "" {
		scroll = "[ " + muted.Render(text) + " ]"
	}

	const lead = 2
	fill := inner - lead - lipgloss.Width(seg) - lipgloss.Width(scroll)
	if fill < 0 {
		// too narrow for decorations
		return edge.Render(b.TopLeft + strings.Repeat(b.Top, inner) + b.TopRight)
	}
	return edge.Render(b.TopLeft+strings.Repeat(b.Top, lead)) +
		seg +
		edge.Render(strings.Repeat(b.Top, fill)) +
		scroll +
		edge.Render(b.TopRight)
}

func bottomBorder(b lipgloss.Border, edge, muted lipgloss.Style, hints string, inner int) string {
	const lead = 2
	if hints != "" {
		seg := "[ " + muted.Render(hints) + " ]"
		if fill := inner - lead - lipgloss.Width(seg); fill >= 0 {
			return edge.Render(b.BottomLeft+strings.Repeat(b.Bottom, lead)) +
				seg +
				edge.Render(strings.Repeat(b.Bottom, fill)+b.BottomRight)
		}
	}
	return edge.Render(b.BottomLeft + strings.Repeat(b.Bottom, inner) + b.BottomRight)
}
