// Package theme holds the color palettes and the lipgloss styles derived
// from them.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colors a theme defines.
type Palette struct {
	// Accents
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Focus     lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Special   lipgloss.Color

	// Backgrounds
	BgPanel     lipgloss.Color
	BgSelection lipgloss.Color
	BgPrompt    lipgloss.Color

	// Text, brightest first
	Text          lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color
	TextDim       lipgloss.Color
}

// Theme is a named palette.
type Theme struct {
	Name    string
	Palette Palette
	// UseNerdFonts selects Nerd Font glyphs for file icons.
	UseNerdFonts bool
}

// DefaultName is the theme used when none is configured.
const DefaultName = "Midnight Miami"

// All returns every built-in theme in display order.
func All() []*Theme {
	return []*Theme{
		midnightMiami(),
		pinaColada(),
		lobsterBoy(),
		feralJungle(),
		vampireWeekend(),
	}
}

// Names lists the built-in theme names.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, t := range all {
		names[i] = t.Name
	}
	return names
}

// Lookup finds a theme by name, ignoring case and surrounding space.
func Lookup(name string) (*Theme, bool) {
	name = strings.TrimSpace(name)
	for _, t := range All() {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return nil, false
}

// Default returns the default theme.
func Default() *Theme {
	t, _ := Lookup(DefaultName)
	return t
}

// Next returns the theme after t, wrapping around.
func Next(t *Theme) *Theme {
	all := All()
	for i, c := range all {
		if c.Name == t.Name {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

// FileIcon returns the icon for a file extension.
func (t *Theme) FileIcon(ext string) string {
	if !t.UseNerdFonts {
		return IconFile
	}
	return fileIcon(ext)
}

// DirIcon returns the icon for a directory.
func (t *Theme) DirIcon(name string, expanded bool) string {
	if t.UseNerdFonts {
		if icon := dirIcon(name); icon != "" {
			return icon
		}
	}
	if expanded {
		return IconDirExpanded
	}
	return IconDirCollapsed
}
