package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestCompare(t *testing.T) {
	base := solid(10, 10, white)

	near := solid(10, 10, color.RGBA{254, 254, 253, 255})
	res, err := Compare(near, base, DefaultCompareOptions())
	require.NoError(t, err)
	assert.True(t, res.Match)
	assert.Equal(t, 2, res.MaxDifference)

	dot := solid(10, 10, white)
	dot.SetRGBA(4, 4, red)
	res, err = Compare(dot, base, CompareOptions{Diff: true})
	require.NoError(t, err)
	assert.False(t, res.Match)
	assert.Equal(t, 1, res.DifferentPixels)
	assert.Equal(t, 100, res.TotalPixels)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, res.Diff.RGBAAt(4, 4))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, res.Diff.RGBAAt(0, 0))

	res, err = Compare(dot, base, CompareOptions{MaxDifferentPercent: 1})
	require.NoError(t, err)
	assert.True(t, res.Match)
}

func TestCompareFuzzy(t *testing.T) {
	expected := solid(10, 10, white)
	expected.SetRGBA(5, 5, blue)
	actual := solid(10, 10, white)
	actual.SetRGBA(6, 5, blue)

	res, err := Compare(actual, expected, CompareOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.DifferentPixels)

	res, err = Compare(actual, expected, CompareOptions{FuzzyRadius: 1})
	require.NoError(t, err)
	assert.True(t, res.Match)
}

func TestCompareBounds(t *testing.T) {
	_, err := Compare(solid(2, 2, white), solid(3, 2, white), CompareOptions{})
	assert.Error(t, err)
}
