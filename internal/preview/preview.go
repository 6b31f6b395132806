// Package preview renders the content shown next to the tree: file
// contents, directory listings and git diffs.
package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avitaltamir/projectable/internal/command"
	"github.com/avitaltamir/projectable/internal/config"
	"github.com/avitaltamir/projectable/internal/logging"
	"github.com/avitaltamir/projectable/internal/process"
	"github.com/avitaltamir/projectable/internal/theme"
)

const (
	DefaultTimeout  = 2 * time.Second
	DefaultMaxBytes = 512 << 10
	// sniffLen is how much of a file is checked for NUL bytes.
	sniffLen = 8000
)

// ErrTimeout is returned when a preview command runs too long.
var ErrTimeout = errors.New("preview command timed out")

// Options configures a Renderer.
type Options struct {
	// Command is the preview_cmd template. Empty or the platform default
	// selects built-in highlighting.
	Command string
	// Pager filters diffs, e.g. "delta". Empty selects built-in styling.
	Pager    string
	Shell    []string
	Dir      string
	Timeout  time.Duration
	MaxBytes int64
	Styles   theme.Styles
	Log      logrus.FieldLogger
}

// Renderer produces preview text. It is safe for concurrent use.
type Renderer struct {
	opts    Options
	tpl     command.Template
	builtin bool
	log     logrus.FieldLogger
}

// New validates the preview command.
func New(opts Options) (*Renderer, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if len(opts.Shell) == 0 {
		opts.Shell = process.DefaultShell()
	}
	if opts.Styles.Theme == nil {
		opts.Styles = theme.NewStyles(theme.Default())
	}
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}
	r := &Renderer{opts: opts, log: log.WithField("component", "preview")}

	raw := strings.TrimSpace(opts.Command)
	if raw == "" || raw == config.DefaultPreviewCmd() {
		r.builtin = true
		return r, nil
	}
	tpl, err := command.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("preview_cmd: %w", err)
	}
	if tpl.NeedsPrompt() {
		return nil, fmt.Errorf("preview_cmd: %w", command.ErrPromptUnavailable)
	}
	r.tpl = tpl
	return r, nil
}

// Builtin reports whether files are highlighted in process.
func (r *Renderer) Builtin() bool {
	return r.builtin
}

// File renders path: a listing for directories, otherwise the output of
// the preview command or the highlighted contents.
func (r *Renderer) File(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return r.listing(path)
	}
	if !r.builtin {
		line, err := r.tpl.Resolve(command.Context{Selected: path})
		if err != nil {
			return "", err
		}
		return r.run(ctx, line, nil)
	}
	return r.highlightFile(path, info.Size())
}

func (r *Renderer) highlightFile(path string, size int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, r.opts.MaxBytes))
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return r.opts.Styles.Placeholder.Render("(empty file)"), nil
	}
	if IsBinary(data) {
		return r.opts.Styles.Placeholder.Render(fmt.Sprintf("(binary file, %d bytes)", size)), nil
	}
	text := strings.TrimSuffix(string(data), "\n")
	// lexers may append a newline; keep the original line count
	lines := strings.Split(Highlight(path, text), "\n")
	if n := strings.Count(text, "\n") + 1; len(lines) > n {
		lines = lines[:n]
	}
	out := Number(strings.Join(lines, "\n"), r.opts.Styles)
	if size > int64(len(data)) {
		out += "\n" + r.opts.Styles.Placeholder.Render(fmt.Sprintf("(truncated at %d of %d bytes)", len(data), size))
	}
	return out, nil
}

func (r *Renderer) listing(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return r.opts.Styles.Placeholder.Render("(empty directory)"), nil
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		if e.IsDir() {
			b.WriteString(r.opts.Styles.TreeDir.Render(e.Name() + "/"))
		} else {
			b.WriteString(r.opts.Styles.TreeFile.Render(e.Name()))
		}
	}
	return b.String(), nil
}

// Diff renders a unified diff, through the pager when one is set.
func (r *Renderer) Diff(ctx context.Context, diff string) (string, error) {
	if strings.TrimSpace(diff) == "" {
		return r.opts.Styles.Placeholder.Render("(no changes)"), nil
	}
	if r.opts.Pager == "" {
		return StyleDiff(diff, r.opts.Styles), nil
	}
	return r.run(ctx, r.opts.Pager, strings.NewReader(diff))
}

// run executes line through the shell and returns its combined output.
func (r *Renderer) run(ctx context.Context, line string, stdin io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	args := append(append([]string(nil), r.opts.Shell[1:]...), line)
	cmd := exec.CommandContext(ctx, r.opts.Shell[0], args...)
	cmd.Dir = r.opts.Dir
	cmd.Stdin = stdin
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = 100 * time.Millisecond

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return out.String(), fmt.Errorf("%s: %w", line, ErrTimeout)
	}
	if err != nil {
		r.log.WithError(err).WithField("cmd", line).Debug("preview command failed")
		// the output usually says why; show it with the error
		return out.String(), fmt.Errorf("%s: %w", line, err)
	}
	return out.String(), nil
}

// IsBinary reports whether data looks like a binary file.
func IsBinary(data []byte) bool {
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}
