package text

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Style selects a face for measurement.
type Style struct {
	Size   float64
	Bold   bool
	Italic bool
	Mono   bool
}

// Metrics are the vertical metrics of a face in pixels.
type Metrics struct {
	Ascent  float64
	Descent float64
}

// Measurer measures text runs. Implementations must be safe for
// concurrent use.
type Measurer interface {
	Measure(s string, st Style) float64
	Metrics(st Style) Metrics
}

// FixedMeasurer measures with the 7x13 bitmap face scaled to the font
// size. Every glyph has the same advance, which keeps layout results
// independent of installed fonts.
type FixedMeasurer struct{}

var base = basicfont.Face7x13

func (FixedMeasurer) Measure(s string, st Style) float64 {
	scale := st.Size / float64(base.Height)
	return float64(utf8.RuneCountInString(s)*base.Advance) * scale
}

func (FixedMeasurer) Metrics(st Style) Metrics {
	scale := st.Size / float64(base.Height)
	return Metrics{Ascent: float64(base.Ascent) * scale, Descent: float64(base.Descent) * scale}
}

// FontConfig holds paths to TrueType font files.
type FontConfig struct {
	Regular    string
	Bold       string
	Italic     string
	BoldItalic string
	Monospace  string
}

// FontConfigFromDir expects the conventional Regular/Bold/Italic/BoldItalic/Mono
// file names under dir.
func FontConfigFromDir(dir string) FontConfig {
	return FontConfig{
		Regular:    filepath.Join(dir, "Regular.ttf"),
		Bold:       filepath.Join(dir, "Bold.ttf"),
		Italic:     filepath.Join(dir, "Italic.ttf"),
		BoldItalic: filepath.Join(dir, "BoldItalic.ttf"),
		Monospace:  filepath.Join(dir, "Mono.ttf"),
	}
}

// FontPath returns the font path for the given style combination.
func (fc FontConfig) FontPath(st Style) string {
	if st.Mono && fc.Monospace != "" {
		return fc.Monospace
	}
	if st.Bold && st.Italic && fc.BoldItalic != "" {
		return fc.BoldItalic
	}
	if st.Bold && fc.Bold != "" {
		return fc.Bold
	}
	if st.Italic && fc.Italic != "" {
		return fc.Italic
	}
	return fc.Regular
}

// FontMeasurer measures with TrueType faces, falling back to
// FixedMeasurer for faces that fail to load.
type FontMeasurer struct {
	config FontConfig

	mu       sync.Mutex
	faces    map[string]font.Face
	failures map[string]error
}

// NewFontMeasurer creates a measurer over config.
func NewFontMeasurer(config FontConfig) *FontMeasurer {
	return &FontMeasurer{config: config, faces: map[string]font.Face{}, failures: map[string]error{}}
}

func (m *FontMeasurer) face(st Style) (font.Face, error) {
	path := m.config.FontPath(st)
	if path == "" {
		return nil, fmt.Errorf("no font configured")
	}
	key := fmt.Sprintf("%s@%g", path, st.Size)
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.faces[key]; ok {
		return f, nil
	}
	if err, ok := m.failures[path]; ok {
		return nil, err
	}
	f, err := gg.LoadFontFace(path, st.Size)
	if err != nil {
		err = fmt.Errorf("load font %s: %w", path, err)
		m.failures[path] = err
		return nil, err
	}
	m.faces[key] = f
	return f, nil
}

// Check loads the regular face, reporting configuration errors early.
func (m *FontMeasurer) Check() error {
	_, err := m.face(Style{Size: 16})
	return err
}

func (m *FontMeasurer) Measure(s string, st Style) float64 {
	f, err := m.face(st)
	if err != nil {
		return FixedMeasurer{}.Measure(s, st)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(font.MeasureString(f, s)) / 64
}

func (m *FontMeasurer) Metrics(st Style) Metrics {
	f, err := m.face(st)
	if err != nil {
		return FixedMeasurer{}.Metrics(st)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fm := f.Metrics()
	return Metrics{Ascent: float64(fm.Ascent) / 64, Descent: float64(fm.Descent) / 64}
}

// IsMonospace reports whether a font-family list asks for a monospace face.
func IsMonospace(families []string) bool {
	for _, f := range families {
		switch strings.ToLower(strings.Trim(f, `"' `)) {
		case "monospace", "courier", "courier new", "menlo", "consolas":
			return true
		}
	}
	return false
}
