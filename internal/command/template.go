// Package command parses and resolves user command templates.
//
// A template is literal shell text with two placeholders: {} for the
// selected path and {...} for text typed by the user when the command
// runs. A leading !! runs the command in the foreground.
package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alessio/shellescape"
)

const (
	foregroundMarker = "!!"
	selectedToken    = "{}"
	promptToken      = "{...}"
)

var (
	// ErrUnbalancedBrace is matched by parse errors for stray braces.
	ErrUnbalancedBrace = errors.New("unbalanced brace")
	// ErrPromptUnavailable is returned when a template needs user input
	// but none can be collected.
	ErrPromptUnavailable = errors.New("{...} needs interactive input")
	// ErrNoSelection is returned when {} is used with nothing selected.
	ErrNoSelection = errors.New("{} needs a selected path")
	// ErrEmpty is returned for templates with no command text.
	ErrEmpty = errors.New("empty command")
)

// ParseError describes where a template is malformed.
type ParseError struct {
	Template string
	// Pos is the byte offset of the offending character.
	Pos int
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q at %d: %v", e.Template, e.Pos, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SegmentKind identifies a template segment.
type SegmentKind int

const (
	Literal SegmentKind = iota
	SelectedPath
	PromptInput
)

// Segment is one piece of a parsed template.
type Segment struct {
	Kind SegmentKind
	// Text holds the literal text, or the prompt label for PromptInput.
	Text string
}

// Template is a parsed command. It is immutable once built.
type Template struct {
	Raw        string
	Segments   []Segment
	Foreground bool
}

// Parse builds a Template. {} and {...} are placeholders wherever they
// appear, including inside other brace groups such as { cmd {}; }. Any
// other braces are kept as literal text so shell constructs like ${HOME}
// or awk '{print $1}' survive; a brace without a partner is an error.
func Parse(raw string) (Template, error) {
	t := Template{Raw: raw}
	body := raw
	offset := 0
	if trimmed := strings.TrimLeft(raw, " \t"); strings.HasPrefix(trimmed, foregroundMarker) {
		t.Foreground = true
		offset = len(raw) - len(trimmed) + len(foregroundMarker)
		body = raw[offset:]
	}
	if strings.TrimSpace(body) == "" {
		return Template{}, &ParseError{Template: raw, Pos: offset, Err: ErrEmpty}
	}

	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.Segments = append(t.Segments, Segment{Kind: Literal, Text: lit.String()})
			lit.Reset()
		}
	}

	// open holds the positions of literal braces not yet closed.
	var open []int
	for i := 0; i < len(body); {
		switch {
		case strings.HasPrefix(body[i:], selectedToken):
			flush()
			t.Segments = append(t.Segments, Segment{Kind: SelectedPath})
			i += len(selectedToken)

		case strings.HasPrefix(body[i:], promptToken):
			flush()
			t.Segments = append(t.Segments, Segment{Kind: PromptInput, Text: promptLabel(body, i)})
			i += len(promptToken)

		case body[i] == '{':
			open = append(open, i)
			lit.WriteByte('{')
			i++

		case body[i] == '}':
			if len(open) == 0 {
				return Template{}, &ParseError{Template: raw, Pos: offset + i, Err: ErrUnbalancedBrace}
			}
			open = open[:len(open)-1]
			lit.WriteByte('}')
			i++

		default:
			lit.WriteByte(body[i])
			i++
		}
	}
	if len(open) > 0 {
		return Template{}, &ParseError{Template: raw, Pos: offset + open[0], Err: ErrUnbalancedBrace}
	}
	flush()
	return t, nil
}

// promptLabel names a {...} placeholder after the command word it
// follows, e.g. "cargo add" for "cargo add {...}".
func promptLabel(body string, at int) string {
	label := strings.TrimSpace(body[:at])
	if label == "" {
		return "input"
	}
	return label
}

// NeedsSelection reports whether the template contains {}.
func (t Template) NeedsSelection() bool {
	return t.has(SelectedPath)
}

// NeedsPrompt reports whether the template contains {...}.
func (t Template) NeedsPrompt() bool {
	return t.has(PromptInput)
}

// PromptLabel returns the label of the first {...} placeholder.
func (t Template) PromptLabel() string {
	for _, s := range t.Segments {
		if s.Kind == PromptInput {
			return s.Text
		}
	}
	return ""
}

func (t Template) has(kind SegmentKind) bool {
	for _, s := range t.Segments {
		if s.Kind == kind {
			return true
		}
	}
	return false
}

// Context supplies placeholder values.
type Context struct {
	// Selected is the path substituted for {}.
	Selected string
	// Interactive is true when the template came from configuration and
	// the caller can prompt the user.
	Interactive bool
	// Input is the text collected for {...}. Nil means not collected yet.
	Input *string
}

// Resolve produces the command line. The selected path is shell-quoted;
// prompt input is inserted verbatim since it is typed as shell text.
func (t Template) Resolve(ctx Context) (string, error) {
	if t.NeedsPrompt() && (!ctx.Interactive || ctx.Input == nil) {
		return "", ErrPromptUnavailable
	}
	if t.NeedsSelection() && ctx.Selected == "" {
		return "", ErrNoSelection
	}

	var b strings.Builder
	for _, s := range t.Segments {
		switch s.Kind {
		case Literal:
			b.WriteString(s.Text)
		case SelectedPath:
			b.WriteString(shellescape.Quote(ctx.Selected))
		case PromptInput:
			b.WriteString(*ctx.Input)
		}
	}
	line := strings.TrimSpace(b.String())
	if line == "" {
		return "", ErrEmpty
	}
	return line, nil
}
