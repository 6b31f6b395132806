package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBase(t *testing.T) {
	t.Run("NewBase creates with dimensions", func(t *testing.T) {
		b := NewBase(100, 50)
		w, h := b.Size()
		assert.Equal(t, 100, w)
		assert.Equal(t, 50, h)
		assert.False(t, b.Focused())
	})

	t.Run("Focus and Blur toggle state", func(t *testing.T) {
		b := NewBase(100, 50)
		b.Focus()
		assert.True(t, b.Focused())
		b.Blur()
		assert.False(t, b.Focused())
	})

	t.Run("SetSize updates dimensions", func(t *testing.T) {
		b := NewBase(100, 50)
		b.SetSize(200, 100)
		w, h := b.Size()
		assert.Equal(t, 200, w)
		assert.Equal(t, 100, h)
	})
}

func TestFollow(t *testing.T) {
	type step struct{ cursor, total int }
	tests := []struct {
		name       string
		steps      []step
		start, end int
	}{
		{"short list", []step{{2, 3}}, 0, 3},
		{"cursor at top", []step{{0, 20}}, 0, 5},
		{"cursor walks off the bottom", []step{{4, 20}, {5, 20}, {6, 20}}, 2, 7},
		{"jump to end", []step{{19, 20}}, 15, 20},
		{"back up after jump", []step{{19, 20}, {10, 20}}, 10, 15},
		{"list shrinks", []step{{19, 20}, {7, 8}}, 3, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBase(40, 5)
			var start, end int
			for _, s := range tt.steps {
				start, end = b.Follow(s.cursor, s.total)
			}
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
			assert.Equal(t, start, b.Offset())
		})
	}
}
