package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaQueries(t *testing.T) {
	screen := Media{Type: MediaScreen, Width: 800, Height: 600}
	print := Media{Type: MediaPrint, Width: 794, Height: 1123}
	tests := []struct {
		query  string
		screen bool
		print  bool
	}{
		{"", true, true},
		{"all", true, true},
		{"screen", true, false},
		{"print", false, true},
		{"not print", true, false},
		{"only screen", true, false},
		{"screen, print", true, true},
		{"(min-width: 600px)", true, true},
		{"(max-width: 600px)", false, false},
		{"(min-width: 50em)", true, false},
		{"(min-width: 49em)", true, true},
		{"screen and (max-width: 10in)", true, false},
		{"(orientation: portrait)", false, true},
		{"(orientation: landscape) and (min-height: 500px)", true, false},
		{"tv", false, false},
		{"not tv", true, true},
		{"(hover: hover)", false, false},
		{"screen and", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			l := ParseMediaQueries(tt.query)
			assert.Equal(t, tt.screen, l.Matches(screen), "screen")
			assert.Equal(t, tt.print, l.Matches(print), "print")
		})
	}
}

func TestMediaLarge(t *testing.T) {
	w, h := Media{Width: 400, Height: 700}.Large()
	assert.Equal(t, 400.0, w)
	assert.Equal(t, 700.0, h)
	w, h = Media{Width: 400, Height: 700, LargeHeight: 800}.Large()
	assert.Equal(t, 400.0, w)
	assert.Equal(t, 800.0, h)
}

func TestAbsoluteLength(t *testing.T) {
	px, ok := AbsoluteLength(1, "in")
	assert.True(t, ok)
	assert.Equal(t, 96.0, px)
	px, _ = AbsoluteLength(210, "mm")
	assert.InDelta(t, 793.7, px, 0.1)
	_, ok = AbsoluteLength(1, "em")
	assert.False(t, ok)
}
