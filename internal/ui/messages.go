package ui

import (
	"time"
)

// tickMsg drives the engine between key presses so process output,
// watcher batches and git refreshes show up without input.
type tickMsg time.Time

// previewKey identifies what a preview was rendered for. A result whose
// key no longer matches the selection is dropped.
type previewKey struct {
	path       string
	generation uint64
	diff       bool
}

// previewMsg carries an asynchronously rendered preview.
type previewMsg struct {
	key     previewKey
	content string
	err     error
}
