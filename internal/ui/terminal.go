package ui

import (
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

var errNoProgram = errors.New("terminal not attached to a program")

// ProgramTerminal hands the terminal to foreground commands by releasing
// the running program. It must be attached before the program starts.
type ProgramTerminal struct {
	mu      sync.Mutex
	program *tea.Program
}

// Attach binds the terminal to p.
func (t *ProgramTerminal) Attach(p *tea.Program) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.program = p
}

func (t *ProgramTerminal) get() (*tea.Program, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.program == nil {
		return nil, errNoProgram
	}
	return t.program, nil
}

// Release implements process.Terminal.
func (t *ProgramTerminal) Release() error {
	p, err := t.get()
	if err != nil {
		return err
	}
	return p.ReleaseTerminal()
}

// Restore implements process.Terminal.
func (t *ProgramTerminal) Restore() error {
	p, err := t.get()
	if err != nil {
		return err
	}
	return p.RestoreTerminal()
}
