package preview

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/avitaltamir/projectable/internal/theme"
)

// ChromaStyle is the syntax highlighting style.
const ChromaStyle = "monokai"

// Highlight returns content with terminal color codes, picking the lexer
// from the file name or, failing that, the content itself. Content that
// cannot be tokenised is returned unchanged.
func Highlight(name, content string) string {
	var lexer chroma.Lexer
	if name != "" {
		lexer = lexers.Match(filepath.Base(name))
	}
	if lexer == nil {
		lexer = lexers.Analyse(content)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(ChromaStyle)
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	it, err := lexer.Tokenise(nil, content)
	if err != nil {
		return content
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, it); err != nil {
		return content
	}
	return buf.String()
}

// Number prefixes every line with its number and a separator.
func Number(content string, s theme.Styles) string {
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	sep := s.LineSep.Render(" │ ")
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(s.LineNumber.Render(fmt.Sprintf("%4d", i+1)))
		b.WriteString(sep)
		b.WriteString(line)
	}
	return b.String()
}

// StyleDiff colors a unified diff line by line.
func StyleDiff(diff string, s theme.Styles) string {
	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"),
			strings.HasPrefix(line, "diff "), strings.HasPrefix(line, "index "):
			lines[i] = s.DiffHeader.Render(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = s.DiffHunk.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = s.DiffAdded.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = s.DiffRemoved.Render(line)
		default:
			lines[i] = s.DiffContext.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
