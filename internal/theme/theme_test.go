package theme

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avitaltamir/projectable/internal/git"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"Midnight Miami", "Midnight Miami", true},
		{"  lobster boy ", "Lobster Boy", true},
		{"VAMPIRE WEEKEND", "Vampire Weekend", true},
		{"Solarized", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, ok := Lookup(tt.name)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, th.Name)
			}
		})
	}
}

func TestDefaultAndNext(t *testing.T) {
	def := Default()
	require.NotNil(t, def)
	assert.Equal(t, DefaultName, def.Name)

	names := Names()
	require.Len(t, names, 5)
	th := def
	for i := 1; i <= len(names); i++ {
		th = Next(th)
		assert.Equal(t, names[i%len(names)], th.Name)
	}
	assert.Equal(t, names[0], Next(&Theme{Name: "gone"}).Name)
}

func TestPalettesAreComplete(t *testing.T) {
	for _, th := range All() {
		p := th.Palette
		for _, c := range []lipgloss.Color{
			p.Primary, p.Secondary, p.Focus, p.Success, p.Error, p.Warning,
			p.Special, p.BgPanel, p.BgSelection, p.BgPrompt, p.Text,
			p.TextSecondary, p.TextMuted, p.TextDim,
		} {
			assert.NotEmpty(t, c, th.Name)
		}
	}
}

func TestIcons(t *testing.T) {
	th := Default()
	assert.Equal(t, "\U000f07d3", th.FileIcon(".go"))
	assert.Equal(t, iconFileGeneric, th.FileIcon(".unknown"))
	assert.NotEqual(t, IconDirCollapsed, th.DirIcon(".git", false))
	assert.Equal(t, IconDirExpanded, th.DirIcon("random", true))

	plain := &Theme{Name: "plain"}
	assert.Equal(t, IconFile, plain.FileIcon(".go"))
	assert.Equal(t, IconDirCollapsed, plain.DirIcon(".git", false))
}

func TestGitMarker(t *testing.T) {
	assert.Equal(t, "", GitMarker(git.ClassNone))
	assert.Equal(t, "[M]", GitMarker(git.ClassModified))
	assert.Equal(t, "[?]", GitMarker(git.ClassNew))
	assert.Equal(t, "[U]", GitMarker(git.ClassConflict))
}

func TestLogLevelStyles(t *testing.T) {
	s := NewStyles(Default())
	assert.Equal(t, s.LogError, s.LogLevel(logrus.ErrorLevel))
	assert.Equal(t, s.LogError, s.LogLevel(logrus.FatalLevel))
	assert.Equal(t, s.LogWarn, s.LogLevel(logrus.WarnLevel))
	assert.Equal(t, s.LogInfo, s.LogLevel(logrus.InfoLevel))
	assert.Equal(t, s.LogDebug, s.LogLevel(logrus.DebugLevel))
}

func TestRenderPanelFillsBox(t *testing.T) {
	s := NewStyles(Default())
	tests := []struct {
		name    string
		content string
		opts    PanelOptions
		w, h    int
	}{
		{"empty", "", PanelOptions{Title: "TREE", Scroll: -1}, 20, 5},
		{"long lines are clipped", strings.Repeat("x", 80), PanelOptions{Title: "PREVIEW", Scroll: 40}, 30, 4},
		{"more lines than rows", "a\nb\nc\nd\ne\nf", PanelOptions{Title: "LOG", Hints: "L:hide"}, 24, 4},
		{"title wider than pane", "a", PanelOptions{Title: strings.Repeat("T", 40), Scroll: -1}, 10, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := s.RenderPanel(tt.content, tt.opts, tt.w, tt.h, true)
			lines := strings.Split(out, "\n")
			require.Len(t, lines, tt.h)
			for _, l := range lines {
				assert.Equal(t, tt.w, lipgloss.Width(l))
			}
		})
	}
	assert.Empty(t, s.RenderPanel("x", PanelOptions{}, 3, 1, false))
}

func TestScrollIndicator(t *testing.T) {
	assert.Equal(t, "42%", ScrollIndicator(42.7))
	assert.Empty(t, ScrollIndicator(100))
	assert.Empty(t, ScrollIndicator(-1))
}
