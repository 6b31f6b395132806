package engine

import (
	"errors"
	"fmt"

	"github.com/avitaltamir/projectable/internal/command"
	"github.com/avitaltamir/projectable/internal/process"
)

// pendingPrompt is a configured command waiting for its {...} text. The
// selection is captured when the command is requested.
type pendingPrompt struct {
	tpl      command.Template
	selected string
}

func (p *pendingPrompt) public() Prompt {
	return Prompt{Label: p.tpl.PromptLabel(), Command: p.tpl.Raw}
}

func (e *Engine) runCommand(raw string, fromConfig bool) {
	tpl, err := command.Parse(raw)
	if err != nil {
		e.errorf("command", "%v", err)
		return
	}
	if tpl.NeedsPrompt() {
		if !fromConfig {
			e.errorf("command", "%s: %v", raw, command.ErrPromptUnavailable)
			return
		}
		e.prompt = &pendingPrompt{tpl: tpl, selected: e.selected}
		return
	}
	e.spawn(tpl, command.Context{Selected: e.selected, Interactive: fromConfig})
}

func (e *Engine) runSpecial(index int) {
	n, ok := e.selectedNode()
	if !ok {
		e.errorf("command", "nothing selected")
		return
	}
	rule, ok := e.special.Match(e.tree.Rel(n.Path), n.IsDir())
	if !ok || index < 0 || index >= len(rule.Commands) {
		e.errorf("command", "no special command %d for %s", index+1, e.tree.Rel(n.Path))
		return
	}
	e.runCommand(rule.Commands[index], true)
}

func (e *Engine) submitPrompt(text string) {
	p := e.prompt
	if p == nil {
		return
	}
	e.prompt = nil
	e.spawn(p.tpl, command.Context{Selected: p.selected, Interactive: true, Input: &text})
}

// spawn resolves tpl and hands it to the process manager. Foreground
// commands block here until they exit.
func (e *Engine) spawn(tpl command.Template, ctx command.Context) {
	line, err := tpl.Resolve(ctx)
	if err != nil {
		e.errorf("command", "%s: %v", tpl.Raw, err)
		return
	}
	h, err := e.procs.Spawn(e.ctx, line, process.Options{Foreground: tpl.Foreground, Terminal: e.term})
	switch {
	case errors.Is(err, process.ErrForegroundBusy):
		e.errorf("command", "%s: %v", line, err)
		return
	case err != nil:
		// the failed handle arrives through PollCompletions
		e.log.WithError(err).WithField("cmd", line).Debug("spawn")
		return
	}
	if tpl.Foreground {
		e.gitDirty = true
		return
	}
	e.info(fmt.Sprintf("#%d", h.ID), "started: "+line)
}
