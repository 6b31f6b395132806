package watcher

import (
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"

	"github.com/avitaltamir/projectable/internal/tree"
)

func TestCoalescer(t *testing.T) {
	type raw struct {
		path string
		op   fsnotify.Op
	}
	tests := []struct {
		name   string
		events []raw
		want   []tree.Change
	}{
		{
			name:   "single create",
			events: []raw{{"/p/a", fsnotify.Create}},
			want:   []tree.Change{{Kind: tree.Created, Path: "/p/a"}},
		},
		{
			name:   "create then write stays a create",
			events: []raw{{"/p/a", fsnotify.Create}, {"/p/a", fsnotify.Write}, {"/p/a", fsnotify.Write}},
			want:   []tree.Change{{Kind: tree.Created, Path: "/p/a"}},
		},
		{
			name:   "create then remove cancels",
			events: []raw{{"/p/a", fsnotify.Create}, {"/p/a", fsnotify.Remove}},
			want:   []tree.Change{},
		},
		{
			name:   "remove then create is a modification",
			events: []raw{{"/p/a", fsnotify.Remove}, {"/p/a", fsnotify.Create}},
			want:   []tree.Change{{Kind: tree.Modified, Path: "/p/a"}},
		},
		{
			name:   "write then remove is a removal",
			events: []raw{{"/p/a", fsnotify.Write}, {"/p/a", fsnotify.Remove}},
			want:   []tree.Change{{Kind: tree.Removed, Path: "/p/a"}},
		},
		{
			name:   "rename away is a removal",
			events: []raw{{"/p/a", fsnotify.Rename}, {"/p/b", fsnotify.Create}},
			want:   []tree.Change{{Kind: tree.Removed, Path: "/p/a"}, {Kind: tree.Created, Path: "/p/b"}},
		},
		{
			name:   "repeated writes collapse",
			events: []raw{{"/p/a", fsnotify.Write}, {"/p/a", fsnotify.Write}, {"/p/a", fsnotify.Chmod}},
			want:   []tree.Change{{Kind: tree.Modified, Path: "/p/a"}},
		},
		{
			name: "first-seen order is kept",
			events: []raw{
				{"/p/dir", fsnotify.Create},
				{"/p/z", fsnotify.Write},
				{"/p/dir/file", fsnotify.Create},
				{"/p/dir", fsnotify.Write},
			},
			want: []tree.Change{
				{Kind: tree.Created, Path: "/p/dir"},
				{Kind: tree.Modified, Path: "/p/z"},
				{Kind: tree.Created, Path: "/p/dir/file"},
			},
		},
		{
			name:   "paths are cleaned",
			events: []raw{{"/p/./a", fsnotify.Create}, {"/p/a/", fsnotify.Remove}},
			want:   []tree.Change{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCoalescer()
			for _, ev := range tt.events {
				c.Add(ev.path, ev.op)
			}
			assert.Equal(t, tt.want, c.Changes())
		})
	}
}

func TestCoalescerReset(t *testing.T) {
	c := NewCoalescer()
	c.Add("/p/a", fsnotify.Create)
	assert.Equal(t, 1, c.Len())

	c.Reset()
	assert.Zero(t, c.Len())
	assert.Empty(t, c.Changes())

	c.Add("/p/a", fsnotify.Remove)
	assert.Equal(t, []tree.Change{{Kind: tree.Removed, Path: "/p/a"}}, c.Changes())
}
