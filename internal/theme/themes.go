package theme

import "github.com/charmbracelet/lipgloss"

// Neon pink and cyan on deep purple.
func midnightMiami() *Theme {
	return &Theme{
		Name:         "Midnight Miami",
		UseNerdFonts: true,
		Palette: Palette{
			Primary:       lipgloss.Color("#FF00FF"),
			Secondary:     lipgloss.Color("#00FFFF"),
			Focus:         lipgloss.Color("#FF10F0"),
			Success:       lipgloss.Color("#39FF14"),
			Error:         lipgloss.Color("#FF3131"),
			Warning:       lipgloss.Color("#FFFF00"),
			Special:       lipgloss.Color("#7B68EE"),
			BgPanel:       lipgloss.Color("#1A0A2E"),
			BgSelection:   lipgloss.Color("#3D2D5E"),
			BgPrompt:      lipgloss.Color("#0A0A14"),
			Text:          lipgloss.Color("#FFFFFF"),
			TextSecondary: lipgloss.Color("#E0E0E0"),
			TextMuted:     lipgloss.Color("#888899"),
			TextDim:       lipgloss.Color("#4A4A6A"),
		},
	}
}

// Golden pineapple and sunset orange.
func pinaColada() *Theme {
	return &Theme{
		Name:         "Piña Colada",
		UseNerdFonts: true,
		Palette: Palette{
			Primary:       lipgloss.Color("#FFD700"),
			Secondary:     lipgloss.Color("#FF6B35"),
			Focus:         lipgloss.Color("#F7931E"),
			Success:       lipgloss.Color("#7CB518"),
			Error:         lipgloss.Color("#D62828"),
			Warning:       lipgloss.Color("#FCBF49"),
			Special:       lipgloss.Color("#48CAE4"),
			BgPanel:       lipgloss.Color("#2D1810"),
			BgSelection:   lipgloss.Color("#3D2518"),
			BgPrompt:      lipgloss.Color("#0F0805"),
			Text:          lipgloss.Color("#FFF8E7"),
			TextSecondary: lipgloss.Color("#E8D5B7"),
			TextMuted:     lipgloss.Color("#9E8B76"),
			TextDim:       lipgloss.Color("#5C4A3D"),
		},
	}
}

// Lobster red on midnight ocean.
func lobsterBoy() *Theme {
	return &Theme{
		Name:         "Lobster Boy",
		UseNerdFonts: true,
		Palette: Palette{
			Primary:       lipgloss.Color("#E63946"),
			Secondary:     lipgloss.Color("#5CC8E4"),
			Focus:         lipgloss.Color("#F4A261"),
			Success:       lipgloss.Color("#2A9D8F"),
			Error:         lipgloss.Color("#9B2226"),
			Warning:       lipgloss.Color("#E9C46A"),
			Special:       lipgloss.Color("#7EC8E3"),
			BgPanel:       lipgloss.Color("#132238"),
			BgSelection:   lipgloss.Color("#1D3048"),
			BgPrompt:      lipgloss.Color("#050D18"),
			Text:          lipgloss.Color("#F1FAEE"),
			TextSecondary: lipgloss.Color("#A8DADC"),
			TextMuted:     lipgloss.Color("#6B8E9F"),
			TextDim:       lipgloss.Color("#3D5A6C"),
		},
	}
}

// Leaf green and jaguar gold.
func feralJungle() *Theme {
	return &Theme{
		Name:         "Feral Jungle",
		UseNerdFonts: true,
		Palette: Palette{
			Primary:       lipgloss.Color("#A7C957"),
			Secondary:     lipgloss.Color("#F2CC8F"),
			Focus:         lipgloss.Color("#E07A5F"),
			Success:       lipgloss.Color("#81B29A"),
			Error:         lipgloss.Color("#BC4749"),
			Warning:       lipgloss.Color("#F4D35E"),
			Special:       lipgloss.Color("#EE6C4D"),
			BgPanel:       lipgloss.Color("#132A18"),
			BgSelection:   lipgloss.Color("#1D3A22"),
			BgPrompt:      lipgloss.Color("#050F08"),
			Text:          lipgloss.Color("#E8F5E9"),
			TextSecondary: lipgloss.Color("#B8D4BA"),
			TextMuted:     lipgloss.Color("#7A9E7E"),
			TextDim:       lipgloss.Color("#4A6B4E"),
		},
	}
}

// Crimson and moonlight silver on black.
func vampireWeekend() *Theme {
	return &Theme{
		Name:         "Vampire Weekend",
		UseNerdFonts: true,
		Palette: Palette{
			Primary:       lipgloss.Color("#8B0000"),
			Secondary:     lipgloss.Color("#C0C0C0"),
			Focus:         lipgloss.Color("#DC143C"),
			Success:       lipgloss.Color("#228B22"),
			Error:         lipgloss.Color("#FF0000"),
			Warning:       lipgloss.Color("#FFD700"),
			Special:       lipgloss.Color("#9932CC"),
			BgPanel:       lipgloss.Color("#1A1A1A"),
			BgSelection:   lipgloss.Color("#2D2D2D"),
			BgPrompt:      lipgloss.Color("#080808"),
			Text:          lipgloss.Color("#F5F5F5"),
			TextSecondary: lipgloss.Color("#B8B8B8"),
			TextMuted:     lipgloss.Color("#6E6E6E"),
			TextDim:       lipgloss.Color("#3D3D3D"),
		},
	}
}
