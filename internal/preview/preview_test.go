package preview

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avitaltamir/projectable/internal/command"
	"github.com/avitaltamir/projectable/internal/theme"
)

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func skipOnWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
}

func TestNewValidatesCommand(t *testing.T) {
	tests := []struct {
		name    string
		cmd     string
		builtin bool
		wantErr error
	}{
		{"empty is builtin", "", true, nil},
		{"platform default is builtin", "cat {}", runtime.GOOS != "windows", nil},
		{"custom", "bat --color=always {}", false, nil},
		{"malformed", "bat {", false, command.ErrUnbalancedBrace},
		{"prompt not allowed", "grep {...} {}", false, command.ErrPromptUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(Options{Command: tt.cmd})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.builtin, r.Builtin())
		})
	}
}

func TestBuiltinFilePreview(t *testing.T) {
	dir := t.TempDir()
	r, err := New(Options{MaxBytes: 64})
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("source is highlighted and numbered", func(t *testing.T) {
		p := writeFile(t, dir, "main.go", []byte("package main\n\nfunc main() {}\n"))
		out, err := r.File(ctx, p)
		require.NoError(t, err)
		lines := strings.Split(plain(out), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "   1 │ package main", lines[0])
		assert.Equal(t, "   3 │ func main() {}", lines[2])
	})

	t.Run("empty file", func(t *testing.T) {
		p := writeFile(t, dir, "empty.txt", nil)
		out, err := r.File(ctx, p)
		require.NoError(t, err)
		assert.Contains(t, plain(out), "(empty file)")
	})

	t.Run("binary file", func(t *testing.T) {
		p := writeFile(t, dir, "blob.bin", []byte{0x7f, 'E', 'L', 'F', 0, 1, 2})
		out, err := r.File(ctx, p)
		require.NoError(t, err)
		assert.Contains(t, plain(out), "(binary file, 7 bytes)")
	})

	t.Run("large file is truncated", func(t *testing.T) {
		p := writeFile(t, dir, "big.txt", []byte(strings.Repeat("abcdefg\n", 20)))
		out, err := r.File(ctx, p)
		require.NoError(t, err)
		assert.Contains(t, plain(out), "(truncated at 64 of 160 bytes)")
	})

	t.Run("directory listing", func(t *testing.T) {
		sub := filepath.Join(dir, "pkg")
		writeFile(t, sub, "a.go", nil)
		writeFile(t, sub, "inner/b.go", nil)
		out, err := r.File(ctx, sub)
		require.NoError(t, err)
		assert.Equal(t, "a.go\ninner/", plain(out))
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := r.File(ctx, filepath.Join(dir, "nope"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestCustomPreviewCommand(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	p := writeFile(t, dir, "my notes.txt", []byte("hello\n"))

	r, err := New(Options{Command: "printf 'preview:' && cat {}", Dir: dir})
	require.NoError(t, err)
	out, err := r.File(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "preview:hello\n", out)

	r, err = New(Options{Command: "echo oops >&2; exit 2 #{}"})
	require.NoError(t, err)
	out, err = r.File(context.Background(), p)
	assert.Error(t, err)
	assert.Equal(t, "oops\n", out)
}

func TestPreviewCommandTimeout(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	p := writeFile(t, dir, "a.txt", nil)

	r, err := New(Options{Command: "sleep 5 #{}", Timeout: 100 * time.Millisecond})
	require.NoError(t, err)
	start := time.Now()
	_, err = r.File(context.Background(), p)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 3*time.Second)
}

const sampleDiff = `diff --git a/main.go b/main.go
index 1111111..2222222 100644
--- a/main.go
+++ b/main.go
@@ -1,3 +1,3 @@
 package main
-var x = 1
+var x = 2
`

func TestDiff(t *testing.T) {
	ctx := context.Background()
	r, err := New(Options{})
	require.NoError(t, err)

	out, err := r.Diff(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, plain(out), "(no changes)")

	out, err = r.Diff(ctx, sampleDiff)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSuffix(sampleDiff, "\n"), plain(out))
}

func TestDiffThroughPager(t *testing.T) {
	skipOnWindows(t)
	r, err := New(Options{Pager: "tr a-z A-Z"})
	require.NoError(t, err)
	out, err := r.Diff(context.Background(), "+var x = 2\n")
	require.NoError(t, err)
	assert.Equal(t, "+VAR X = 2\n", out)
}

func TestStyleDiffKeepsLines(t *testing.T) {
	s := theme.NewStyles(theme.Default())
	out := StyleDiff(sampleDiff, s)
	assert.Len(t, strings.Split(out, "\n"), 8)
}

func TestHighlightFallsBackToContent(t *testing.T) {
	out := Highlight("", "just some words")
	assert.Equal(t, "just some words", strings.TrimSpace(plain(out)))
}

func TestIsBinary(t *testing.T) {
	assert.False(t, IsBinary([]byte("text\n")))
	assert.True(t, IsBinary([]byte{'a', 0, 'b'}))
	late := append([]byte(strings.Repeat("a", sniffLen+10)), 0)
	assert.False(t, IsBinary(late))
}
