package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		opts          Options
		left, right   int
		main, log     int
		prompt        int
	}{
		{
			name: "default split with log",
			width: 100, height: 41,
			opts: Options{LeftPercent: 30, ShowLog: true},
			left: 30, right: 70, main: 28, log: 12,
		},
		{
			name: "no log",
			width: 100, height: 41,
			opts: Options{LeftPercent: 30},
			left: 30, right: 70, main: 40,
		},
		{
			name: "prompt takes a line",
			width: 100, height: 41,
			opts: Options{LeftPercent: 30, ShowPrompt: true},
			left: 30, right: 70, main: 39, prompt: 1,
		},
		{
			name: "percent clamped high",
			width: 100, height: 21,
			opts: Options{LeftPercent: 90},
			left: 60, right: 40, main: 20,
		},
		{
			name: "percent clamped low keeps min width",
			width: 100, height: 21,
			opts: Options{LeftPercent: 5},
			left: 20, right: 80, main: 20,
		},
		{
			name: "zero percent means default",
			width: 100, height: 21,
			opts: Options{},
			left: 30, right: 70, main: 20,
		},
		{
			name: "too short for the log",
			width: 80, height: 6,
			opts: Options{LeftPercent: 30, ShowLog: true},
			left: 24, right: 56, main: 5,
		},
		{
			name: "narrower than min width",
			width: 10, height: 10,
			opts: Options{LeftPercent: 30},
			left: 10, right: 0, main: 9,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Calculate(tt.width, tt.height, tt.opts)
			assert.Equal(t, tt.left, l.LeftWidth, "left")
			assert.Equal(t, tt.right, l.RightWidth, "right")
			assert.Equal(t, tt.main, l.MainHeight, "main")
			assert.Equal(t, tt.log, l.LogHeight, "log")
			assert.Equal(t, tt.prompt, l.PromptHeight, "prompt")
			assert.Equal(t, tt.log > 0, l.LogVisible)
			assert.Equal(t, tt.height, l.MainHeight+l.LogHeight+l.PromptHeight+l.StatusHeight)
		})
	}
}

func TestInner(t *testing.T) {
	w, h := Inner(30, 10)
	assert.Equal(t, 28, w)
	assert.Equal(t, 8, h)
	w, h = Inner(1, 1)
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestScroll(t *testing.T) {
	tests := []struct {
		name                          string
		cursor, offset, height, total int
		want                          int
	}{
		{"fits", 3, 0, 10, 5, 0},
		{"cursor inside window", 5, 2, 10, 50, 2},
		{"cursor above window", 1, 4, 10, 50, 1},
		{"cursor below window", 20, 0, 10, 50, 11},
		{"offset past end after shrink", 15, 45, 10, 20, 10},
		{"zero height", 3, 2, 0, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Scroll(tt.cursor, tt.offset, tt.height, tt.total))
		})
	}
}
