package theme

import "github.com/avitaltamir/projectable/internal/git"

// Tree glyphs
const (
	IconDirCollapsed = "▸"
	IconDirExpanded  = "▾"
	IconFile         = "·"
	IconSymlink      = "→"
	IconMarked       = "●"
	IconError        = "!"
	IconBranch       = ""
	PanelDiamond     = "◈"
	StatusLive       = "●"
	StatusStale      = "○"
)

const iconFileGeneric = ""

var fileIcons = map[string]string{
	".go":   "\U000f07d3",
	".mod":  "\U000f03d7",
	".sum":  "\U000f03d7",
	".rs":   "",
	".py":   "",
	".js":   "",
	".ts":   "",
	".tsx":  "",
	".jsx":  "",
	".html": "",
	".css":  "",
	".json": "",
	".yaml": "",
	".yml":  "",
	".toml": "",
	".md":   "\U000f0354",
	".txt":  "",
	".sh":   "",
	".bash": "",
	".zsh":  "",
	".c":    "",
	".h":    "",
	".cpp":  "",
	".java": "",
	".rb":   "",
	".lock": "",
	".png":  "",
	".jpg":  "",
	".svg":  "",
	".zip":  "",
	".gz":   "",
}

var dirIcons = map[string]string{
	".git":         "",
	".github":      "",
	"node_modules": "",
	"vendor":       "",
	"cmd":          "",
	"internal":     "",
	"docs":         "",
	"test":         "",
	"tests":        "",
	"src":          "",
	"target":       "",
	"build":        "",
}

func fileIcon(ext string) string {
	if icon, ok := fileIcons[ext]; ok {
		return icon
	}
	return iconFileGeneric
}

func dirIcon(name string) string {
	return dirIcons[name]
}

// GitMarker is the short indicator drawn after a decorated entry.
func GitMarker(c git.Class) string {
	switch c {
	case git.ClassIgnored:
		return "[!]"
	case git.ClassAdded:
		return "[+]"
	case git.ClassRenamed:
		return "[R]"
	case git.ClassModified:
		return "[M]"
	case git.ClassNew:
		return "[?]"
	case git.ClassDeleted:
		return "[D]"
	case git.ClassConflict:
		return "[U]"
	}
	return ""
}
