//go:build !windows

package process

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	if cfg.Dir == "" {
		cfg.Dir = t.TempDir()
	}
	m := NewManager(cfg)
	t.Cleanup(func() { m.KillAll() })
	return m
}

// waitCompletion polls until a handle with id finishes.
func waitCompletion(t *testing.T, m *Manager, id int) Handle {
	t.Helper()
	var got Handle
	require.Eventually(t, func() bool {
		for _, h := range m.PollCompletions() {
			if h.ID == id {
				got = h
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)
	return got
}

// collectLines drains output until want lines arrived.
func collectLines(t *testing.T, m *Manager, want int) []Line {
	t.Helper()
	var lines []Line
	timeout := time.After(5 * time.Second)
	for len(lines) < want {
		select {
		case l := <-m.Output():
			lines = append(lines, l)
		case <-timeout:
			t.Fatalf("got %d of %d lines: %v", len(lines), want, lines)
		}
	}
	return lines
}

type fakeTerminal struct {
	calls      []string
	releaseErr error
	onRelease  func()
}

func (f *fakeTerminal) Release() error {
	f.calls = append(f.calls, "release")
	if f.onRelease != nil {
		f.onRelease()
	}
	return f.releaseErr
}

func (f *fakeTerminal) Restore() error {
	f.calls = append(f.calls, "restore")
	return nil
}

func TestKillAllWithNothingRunning(t *testing.T) {
	m := newTestManager(t, Config{})
	assert.Empty(t, m.KillAll())
	assert.Empty(t, m.Handles())
	assert.Empty(t, m.PollCompletions())
}

func TestBackgroundOutputAndCompletion(t *testing.T) {
	m := newTestManager(t, Config{})

	h, err := m.Spawn(context.Background(), "echo hello; echo oops >&2", Options{})
	require.NoError(t, err)
	assert.Equal(t, Running, h.Status.State)
	assert.False(t, h.Foreground)
	assert.NotZero(t, h.PID)

	lines := collectLines(t, m, 2)
	byStream := map[Stream]string{}
	for _, l := range lines {
		assert.Equal(t, h.ID, l.ID)
		byStream[l.Stream] = l.Text
	}
	assert.Equal(t, "hello", byStream[Stdout])
	assert.Equal(t, "oops", byStream[Stderr])

	done := waitCompletion(t, m, h.ID)
	assert.True(t, done.Status.Success())
	assert.False(t, done.FinishedAt.Before(done.StartedAt))
	assert.Empty(t, m.Handles())
}

func TestBackgroundExitCode(t *testing.T) {
	m := newTestManager(t, Config{})
	h, err := m.Spawn(context.Background(), "exit 3", Options{})
	require.NoError(t, err)

	done := waitCompletion(t, m, h.ID)
	assert.Equal(t, Status{State: Exited, Code: 3}, done.Status)
	assert.Equal(t, "exited(3)", done.Status.String())
}

func TestBackgroundRunsInDir(t *testing.T) {
	dir := t.TempDir()
	m := newTestManager(t, Config{Dir: dir})
	h, err := m.Spawn(context.Background(), "pwd", Options{})
	require.NoError(t, err)

	lines := collectLines(t, m, 1)
	assert.True(t, strings.HasSuffix(lines[0].Text, dir) || strings.HasSuffix(dir, lines[0].Text))
	waitCompletion(t, m, h.ID)
}

func TestKillAllTerminatesBackground(t *testing.T) {
	m := newTestManager(t, Config{})
	h, err := m.Spawn(context.Background(), "sleep 30", Options{})
	require.NoError(t, err)
	require.Len(t, m.Handles(), 1)

	killed := m.KillAll()
	require.Len(t, killed, 1)
	assert.Equal(t, h.ID, killed[0].ID)
	assert.Equal(t, Running, killed[0].Status.State)

	done := waitCompletion(t, m, h.ID)
	assert.Equal(t, Killed, done.Status.State)
	assert.Empty(t, m.KillAll())
}

func TestSpawnFailureIsReported(t *testing.T) {
	m := newTestManager(t, Config{Shell: []string{"/nonexistent/shell", "-c"}})

	h, err := m.Spawn(context.Background(), "echo hi", Options{})
	require.Error(t, err)
	assert.Equal(t, Failed, h.Status.State)
	assert.NotEmpty(t, h.Status.Reason)

	done := m.PollCompletions()
	require.Len(t, done, 1)
	assert.Equal(t, h.ID, done[0].ID)
	assert.Empty(t, m.Handles())
}

func TestSpawnEmptyLine(t *testing.T) {
	m := newTestManager(t, Config{})
	_, err := m.Spawn(context.Background(), "  ", Options{})
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

func TestForegroundReleasesAndRestoresTerminal(t *testing.T) {
	var out bytes.Buffer
	m := newTestManager(t, Config{Stdin: strings.NewReader(""), Stdout: &out, Stderr: &out})

	tests := []struct {
		name string
		line string
		want Status
	}{
		{"success", "echo fg", Status{State: Exited}},
		{"failure", "exit 2", Status{State: Exited, Code: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := &fakeTerminal{}
			h, err := m.Spawn(context.Background(), tt.line, Options{Foreground: true, Terminal: term})
			require.NoError(t, err)
			assert.True(t, h.Foreground)
			assert.Equal(t, tt.want, h.Status)
			assert.Equal(t, []string{"release", "restore"}, term.calls)
			assert.False(t, m.ForegroundActive())
		})
	}
	assert.Equal(t, "fg\n", out.String())
	assert.Len(t, m.PollCompletions(), 2)
}

func TestForegroundReleaseError(t *testing.T) {
	m := newTestManager(t, Config{Stdin: strings.NewReader(""), Stdout: io.Discard, Stderr: io.Discard})
	term := &fakeTerminal{releaseErr: errors.New("no tty")}

	h, err := m.Spawn(context.Background(), "true", Options{Foreground: true, Terminal: term})
	require.Error(t, err)
	assert.Equal(t, Failed, h.Status.State)
	assert.Equal(t, []string{"release"}, term.calls)
	assert.False(t, m.ForegroundActive())
}

func TestSecondForegroundIsRejected(t *testing.T) {
	m := newTestManager(t, Config{Stdin: strings.NewReader(""), Stdout: io.Discard, Stderr: io.Discard})

	entered := make(chan struct{})
	proceed := make(chan struct{})
	term := &fakeTerminal{onRelease: func() {
		close(entered)
		<-proceed
	}}

	result := make(chan Handle, 1)
	go func() {
		h, _ := m.Spawn(context.Background(), "true", Options{Foreground: true, Terminal: term})
		result <- h
	}()

	<-entered
	assert.True(t, m.ForegroundActive())
	_, err := m.Spawn(context.Background(), "true", Options{Foreground: true})
	assert.ErrorIs(t, err, ErrForegroundBusy)

	// Background work is unaffected.
	bg, err := m.Spawn(context.Background(), "true", Options{})
	require.NoError(t, err)

	close(proceed)
	h := <-result
	assert.True(t, h.Status.Success())
	waitCompletion(t, m, bg.ID)
}

func TestPTYMergesStreams(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("no pty available: %v", err)
	}
	ptmx.Close()
	tty.Close()

	m := newTestManager(t, Config{PTY: true})
	h, err := m.Spawn(context.Background(), "echo out; echo err >&2", Options{})
	require.NoError(t, err)

	lines := collectLines(t, m, 2)
	for _, l := range lines {
		assert.Equal(t, Combined, l.Stream)
	}
	assert.ElementsMatch(t, []string{"out", "err"}, []string{lines[0].Text, lines[1].Text})
	waitCompletion(t, m, h.ID)
}

func TestStatusFrom(t *testing.T) {
	assert.Equal(t, Status{State: Exited}, statusFrom(nil, false))
	assert.Equal(t, Status{State: Killed}, statusFrom(errors.New("wait: interrupted"), true))
	assert.Equal(t, Status{State: Failed, Reason: "boom"}, statusFrom(errors.New("boom"), false))
}

func TestReadLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a\nb\n", []string{"a", "b"}},
		{"a\r\nb", []string{"a", "b"}},
		{"\n", []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got []string
			readLines(strings.NewReader(tt.in), func(s string) { got = append(got, s) })
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "running", Status{}.String())
	assert.Equal(t, "killed", Status{State: Killed}.String())
	assert.Equal(t, "failed: x", Status{State: Failed, Reason: "x"}.String())
	assert.Equal(t, "pty", Combined.String())
}
