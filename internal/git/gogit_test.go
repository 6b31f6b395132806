package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracked.txt"), []byte("one\n"), 0644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("tracked.txt")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func TestOpenNotRepo(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, ErrNotRepo)
}

func TestGoGitProviderStatus(t *testing.T) {
	dir := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracked.txt"), []byte("two\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "new.txt"), []byte("x"), 0644))

	p, err := OpenGoGit(filepath.Join(dir, "sub"))
	require.NoError(t, err, "repository is found from a subdirectory")
	assert.True(t, p.IsRepo())

	st, err := p.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(dir), st.Root)
	assert.True(t, st.IsDirty)
	assert.Equal(t, ClassModified, st.Files["tracked.txt"].Class())
	assert.Equal(t, ClassNew, st.Files[filepath.Join("sub", "new.txt")].Class())

	branch, err := p.GetBranch(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, branch)
}

func TestGoGitProviderCleanTree(t *testing.T) {
	dir := initRepo(t)
	p, err := OpenGoGit(dir)
	require.NoError(t, err)

	st, err := p.GetStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, st.IsDirty)
	assert.Empty(t, st.Files)
}
