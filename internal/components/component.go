// Package components holds what the UI panes share.
package components

import "github.com/avitaltamir/projectable/internal/layout"

// Pane is a rectangular region of the screen that renders itself.
type Pane interface {
	View() string
	SetSize(width, height int)
	Size() (width, height int)
}

// Base provides focus, size and a scroll offset. Embed it in panes.
type Base struct {
	focused bool
	width   int
	height  int
	offset  int
}

// NewBase creates a Base with the given content size.
func NewBase(width, height int) Base {
	return Base{width: width, height: height}
}

func (b *Base) Focus() {
	b.focused = true
}

func (b *Base) Blur() {
	b.focused = false
}

func (b Base) Focused() bool {
	return b.focused
}

// SetSize updates the content size.
func (b *Base) SetSize(width, height int) {
	b.width = width
	b.height = height
}

func (b Base) Size() (width, height int) {
	return b.width, b.height
}

// Follow moves the scroll offset so that line cursor of total is visible
// and returns the visible range [start, end).
func (b *Base) Follow(cursor, total int) (start, end int) {
	b.offset = layout.Scroll(cursor, b.offset, b.height, total)
	end = min(b.offset+b.height, total)
	return b.offset, end
}

// Offset is the first visible line.
func (b Base) Offset() int {
	return b.offset
}
