package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedMeasurer(t *testing.T) {
	m := FixedMeasurer{}
	assert.Equal(t, 7.0*5, m.Measure("hello", Style{Size: 13}))
	assert.Equal(t, 0.0, m.Measure("", Style{Size: 13}))
	assert.InDelta(t, 7.0*2*2, m.Measure("hé", Style{Size: 26}), 1e-9)

	met := m.Metrics(Style{Size: 26})
	assert.Equal(t, 22.0, met.Ascent)
	assert.Equal(t, 4.0, met.Descent)
}

func TestFontMeasurerFallsBack(t *testing.T) {
	m := NewFontMeasurer(FontConfigFromDir(t.TempDir()))
	assert.Error(t, m.Check())
	st := Style{Size: 13, Bold: true}
	assert.Equal(t, FixedMeasurer{}.Measure("abc", st), m.Measure("abc", st))
	assert.Equal(t, FixedMeasurer{}.Metrics(st), m.Metrics(st))
}

func TestFontPath(t *testing.T) {
	fc := FontConfig{Regular: "r", Bold: "b", Monospace: "m"}
	assert.Equal(t, "r", fc.FontPath(Style{}))
	assert.Equal(t, "b", fc.FontPath(Style{Bold: true, Italic: true}))
	assert.Equal(t, "r", fc.FontPath(Style{Italic: true}))
	assert.Equal(t, "m", fc.FontPath(Style{Mono: true, Bold: true}))
}

func TestIsMonospace(t *testing.T) {
	assert.True(t, IsMonospace([]string{"Menlo", "monospace"}))
	assert.False(t, IsMonospace([]string{"Helvetica", "sans-serif"}))
}
