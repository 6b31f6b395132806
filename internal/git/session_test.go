package git

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	repo   bool
	status *Status
	err    error
	calls  int
	diffs  []string
}

func (f *fakeProvider) GetBranch(context.Context) (string, error) { return "main", nil }

func (f *fakeProvider) GetStatus(context.Context) (*Status, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.status, nil
}

func (f *fakeProvider) GetDiff(_ context.Context, path string) (string, error) {
	f.diffs = append(f.diffs, path)
	return "diff " + path, nil
}

func (f *fakeProvider) IsRepo() bool { return f.repo }

func TestSessionStatusAbsolutePaths(t *testing.T) {
	st := NewStatus()
	st.Root = "/repo"
	st.Branch = "main"
	st.IsDirty = true
	st.Ahead, st.Behind = 2, 1
	st.Files["a/b.go"] = FileStatus{Path: "a/b.go", Staging: StatusUnmodified, Worktree: StatusModified}

	s := NewSession(&fakeProvider{repo: true, status: st}, nil)
	require.True(t, s.Enabled())

	got, ok := s.Status(context.Background())
	require.True(t, ok)
	assert.Equal(t, "main", got.Branch)
	assert.True(t, got.IsDirty)
	assert.Equal(t, 2, got.Ahead)
	assert.Equal(t, 1, got.Behind)
	want := filepath.Join("/repo", "a", "b.go")
	require.Contains(t, got.Files, want)
	assert.Equal(t, want, got.Files[want].Path)
	assert.Contains(t, st.Files, "a/b.go", "the provider's result is not rewritten")
}

func TestSessionDisablesOnFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p := &fakeProvider{repo: true, err: errors.New("index corrupt")}
	s := NewSession(p, logger)

	_, ok := s.Status(context.Background())
	assert.False(t, ok)
	assert.False(t, s.Enabled())
	assert.EqualError(t, s.Reason(), "index corrupt")

	_, ok = s.Status(context.Background())
	assert.False(t, ok)
	assert.Equal(t, 1, p.calls, "a disabled session stops querying")

	require.Len(t, hook.AllEntries(), 1, "warning is logged once")
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestSessionNotRepo(t *testing.T) {
	s := NewSession(&fakeProvider{repo: false}, nil)
	assert.False(t, s.Enabled())
	assert.ErrorIs(t, s.Reason(), ErrNotRepo)

	_, err := s.Diff(context.Background(), "/x")
	assert.ErrorIs(t, err, ErrNotRepo)
}

func TestSessionNilProvider(t *testing.T) {
	s := NewSession(nil, nil)
	assert.False(t, s.Enabled())
	assert.NoError(t, s.Reason())
}

func TestSessionCancelledContextKeepsEnabled(t *testing.T) {
	p := &fakeProvider{repo: true, err: context.Canceled}
	s := NewSession(p, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := s.Status(ctx)
	assert.False(t, ok)
	assert.True(t, s.Enabled(), "cancellation is not a repository failure")
}

func TestSessionDiff(t *testing.T) {
	p := &fakeProvider{repo: true}
	s := NewSession(p, nil)

	out, err := s.Diff(context.Background(), "/repo/a.go")
	require.NoError(t, err)
	assert.Equal(t, "diff /repo/a.go", out)
	assert.Equal(t, []string{"/repo/a.go"}, p.diffs)
}
