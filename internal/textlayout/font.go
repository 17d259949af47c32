package textlayout

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// FontMeasurer measures with a TrueType font, caching one face per size.
type FontMeasurer struct {
	font  *truetype.Font
	faces map[float64]font.Face
	mu    sync.Mutex
}

// NewFontMeasurer parses ttf, or the bundled Go Regular font when ttf is nil.
func NewFontMeasurer(ttf []byte) (*FontMeasurer, error) {
	if ttf == nil {
		ttf = goregular.TTF
	}
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &FontMeasurer{font: f, faces: make(map[float64]font.Face)}, nil
}

// Face returns the cached face for size. Faces are not safe for concurrent use;
// callers outside this package must not share one across goroutines.
func (m *FontMeasurer) Face(size float64) font.Face {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.faceLocked(size)
}

func (m *FontMeasurer) faceLocked(size float64) font.Face {
	if f, ok := m.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(m.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	m.faces[size] = f
	return f
}

func (m *FontMeasurer) MeasureText(text string, fontSize float64) float64 {
	if text == "" || fontSize <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	adv := font.MeasureString(m.faceLocked(fontSize), text)
	return float64(adv) / 64
}

// FixedMeasurer gives every rune the same advance, Ratio * fontSize. It is
// deterministic across platforms, which makes it handy for headless layout.
type FixedMeasurer struct {
	Ratio float64
}

func (m FixedMeasurer) MeasureText(text string, fontSize float64) float64 {
	r := m.Ratio
	if r == 0 {
		r = 0.5
	}
	return float64(utf8.RuneCountInString(text)) * fontSize * r
}
