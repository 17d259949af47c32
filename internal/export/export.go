// Package export writes a board to PDF or PNG. Both formats are painted by the
// same render.Renderer as the live view, through a format-specific Surface.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"LiveBoard/internal/geometry"
	"LiveBoard/internal/state"
	"LiveBoard/internal/textlayout"
)

const (
	// Padding is the margin added around the union of shape bounds.
	Padding = 20.0
	// MinSide keeps an empty or tiny board from producing a degenerate page.
	MinSide = 100.0
)

// frame is the exported page: its size and the offset that maps board
// coordinates onto it.
type frame struct {
	Width, Height    float64
	OffsetX, OffsetY float64
}

// frameFor sizes the page to the shapes' combined bounds plus Padding on each side.
func frameFor(shapes state.ShapeList, m textlayout.Measurer) frame {
	var (
		box   geometry.Rect
		found bool
	)
	for _, s := range shapes {
		r, ok := geometry.Bounds(s, m)
		if !ok {
			continue
		}
		if s.StrokeWidth > 0 {
			r = r.Inflate(s.StrokeWidth / 2)
		}
		if !found {
			box, found = r, true
			continue
		}
		box = box.Union(r)
	}
	if !found {
		return frame{Width: MinSide, Height: MinSide}
	}

	f := frame{
		Width:   box.Width() + 2*Padding,
		Height:  box.Height() + 2*Padding,
		OffsetX: Padding - box.X1,
		OffsetY: Padding - box.Y1,
	}
	if f.Width < MinSide {
		f.Width = MinSide
	}
	if f.Height < MinSide {
		f.Height = MinSide
	}
	return f
}

// ErrUnsupportedFormat is returned for a file extension other than .pdf or .png.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Write exports shapes to w in the format named by ext (".pdf" or ".png").
func Write(w io.Writer, ext string, shapes state.ShapeList) error {
	switch strings.ToLower(ext) {
	case ".pdf":
		return PDF(w, shapes)
	case ".png":
		return PNG(w, shapes)
	default:
		return fmt.Errorf("%w %q", ErrUnsupportedFormat, ext)
	}
}

// SaveFile exports shapes to path, choosing the format by file extension.
func SaveFile(path string, shapes state.ShapeList) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".pdf" && ext != ".png" {
		return fmt.Errorf("%w %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	return Write(f, ext, shapes)
}
