package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
)

// GoGitProvider reads status in-process with go-git. Diffs are produced
// by the git binary, which renders them the way users expect.
type GoGitProvider struct {
	repo  *gogit.Repository
	root  string
	shell *ShellProvider
}

// OpenGoGit opens the repository containing dir.
func OpenGoGit(dir string) (*GoGitProvider, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepo, dir)
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		// bare repositories have no working tree to decorate
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	root := filepath.Clean(wt.Filesystem.Root())
	return &GoGitProvider{
		repo:  repo,
		root:  root,
		shell: NewShellProvider(root),
	}, nil
}

// IsRepo always reports true for an opened repository.
func (p *GoGitProvider) IsRepo() bool {
	return p.repo != nil
}

// GetBranch returns the short branch name, or the abbreviated commit in
// parentheses when HEAD is detached.
func (p *GoGitProvider) GetBranch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	head, err := p.repo.Head()
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	if head.Name().IsBranch() {
		return head.Name().Short(), nil
	}
	h := head.Hash().String()
	if len(h) > 7 {
		h = h[:7]
	}
	return "(" + h + ")", nil
}

// GetStatus computes working tree status with go-git.
func (p *GoGitProvider) GetStatus(ctx context.Context) (*Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wt, err := p.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	st, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("worktree status: %w", err)
	}

	status := NewStatus()
	status.Root = p.root
	if branch, err := p.GetBranch(ctx); err == nil {
		status.Branch = branch
	}

	for path, fs := range st {
		entry := FileStatus{
			Path:     filepath.FromSlash(path),
			Staging:  StatusCode(fs.Staging),
			Worktree: StatusCode(fs.Worktree),
		}
		if !entry.HasChanges() {
			continue
		}
		status.Files[entry.Path] = entry
		status.IsDirty = true
	}
	// go-git has no upstream tracking query
	status.Ahead, status.Behind = p.shell.AheadBehind(ctx)
	return status, nil
}

// GetDiff returns the diff for a file or the entire working tree.
func (p *GoGitProvider) GetDiff(ctx context.Context, path string) (string, error) {
	return p.shell.GetDiff(ctx, path)
}

// Open returns the best available provider for dir: go-git when the
// repository can be opened in-process, the git binary otherwise.
// ErrNotRepo is returned when dir is not under version control.
func Open(dir string) (Provider, error) {
	p, err := OpenGoGit(dir)
	if err == nil {
		return p, nil
	}
	if errors.Is(err, ErrNotRepo) {
		return nil, err
	}
	shell := NewShellProvider(dir)
	if !shell.IsRepo() {
		return nil, fmt.Errorf("%w: %s", ErrNotRepo, dir)
	}
	return shell, nil
}
