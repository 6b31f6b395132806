package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// ShellProvider implements Provider using the git binary.
type ShellProvider struct {
	workDir string
	mu      sync.Mutex // serializes git invocations
}

// NewShellProvider creates a new shell-based git provider.
func NewShellProvider(workDir string) *ShellProvider {
	return &ShellProvider{workDir: workDir}
}

func (p *ShellProvider) command(ctx context.Context, args ...string) *exec.Cmd {
	// --no-optional-locks keeps read-only queries from taking index.lock
	cmd := exec.CommandContext(ctx, "git", append([]string{"--no-optional-locks"}, args...)...)
	cmd.Dir = p.workDir
	return cmd
}

// IsRepo checks if the work dir is inside a git repository.
func (p *ShellProvider) IsRepo() bool {
	return p.command(context.Background(), "rev-parse", "--git-dir").Run() == nil
}

// TopLevel returns the absolute top-level directory of the working tree.
func (p *ShellProvider) TopLevel(ctx context.Context) (string, error) {
	out, err := p.command(ctx, "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotRepo, p.workDir)
	}
	return filepath.Clean(strings.TrimSpace(string(out))), nil
}

// GetBranch returns the current branch name.
func (p *ShellProvider) GetBranch(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.branch(ctx)
}

func (p *ShellProvider) branch(ctx context.Context) (string, error) {
	out, err := p.command(ctx, "branch", "--show-current").Output()
	if err == nil && len(bytes.TrimSpace(out)) > 0 {
		return strings.TrimSpace(string(out)), nil
	}
	// detached HEAD
	out, err = p.command(ctx, "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	return "(" + strings.TrimSpace(string(out)) + ")", nil
}

// GetStatus returns the status of files in the repository.
func (p *ShellProvider) GetStatus(ctx context.Context) (*Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	root, err := p.TopLevel(ctx)
	if err != nil {
		return nil, err
	}

	status := NewStatus()
	status.Root = root
	if branch, err := p.branch(ctx); err == nil {
		status.Branch = branch
	}

	out, err := p.command(ctx, "status", "--porcelain=v1", "-uall").Output()
	if err != nil {
		return nil, fmt.Errorf("git status: %w", err)
	}
	parsePorcelain(status, string(out))

	status.Ahead, status.Behind = p.aheadBehind(ctx)
	return status, nil
}

// AheadBehind counts commits on HEAD and on its upstream that the other
// lacks. Both are zero when the branch has no upstream.
func (p *ShellProvider) AheadBehind(ctx context.Context) (ahead, behind int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.aheadBehind(ctx)
}

func (p *ShellProvider) aheadBehind(ctx context.Context) (ahead, behind int) {
	out, err := p.command(ctx, "rev-list", "--left-right", "--count", "@{upstream}...HEAD").Output()
	if err != nil {
		return 0, 0
	}
	parts := strings.Fields(string(out))
	if len(parts) != 2 {
		return 0, 0
	}
	behind, _ = strconv.Atoi(parts[0])
	ahead, _ = strconv.Atoi(parts[1])
	return ahead, behind
}

// parsePorcelain fills status from `git status --porcelain=v1` output.
func parsePorcelain(status *Status, out string) {
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}

		staging := StatusCode(line[0])
		worktree := StatusCode(line[1])
		path := line[3:]

		// "R  old -> new"
		if i := strings.Index(path, " -> "); i >= 0 {
			path = path[i+len(" -> "):]
		}
		path = unquotePath(path)

		fs := FileStatus{
			Path:     filepath.FromSlash(path),
			Staging:  staging,
			Worktree: worktree,
		}
		status.Files[fs.Path] = fs
		if fs.HasChanges() {
			status.IsDirty = true
		}
	}
}

// unquotePath undoes git's C-style quoting of unusual file names.
func unquotePath(p string) string {
	if len(p) >= 2 && p[0] == '"' && p[len(p)-1] == '"' {
		if s, err := strconv.Unquote(p); err == nil {
			return s
		}
	}
	return p
}

// GetDiff returns the diff for a file or the entire working tree.
func (p *ShellProvider) GetDiff(ctx context.Context, path string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	args := []string{"diff"}
	if path != "" {
		args = append(args, "--", path)
	}
	cmd := p.command(ctx, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git diff: %s", msg)
		}
		return "", fmt.Errorf("git diff: %w", err)
	}
	return stdout.String(), nil
}
