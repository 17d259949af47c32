package export

import (
	"fmt"
	"io"
	"math"

	"LiveBoard/internal/render"
	"LiveBoard/internal/state"
	"LiveBoard/internal/textlayout"
)

// PNG writes shapes as an image sized to fit them.
func PNG(w io.Writer, shapes state.ShapeList) error {
	fonts, err := textlayout.NewFontMeasurer(nil)
	if err != nil {
		return err
	}
	f := frameFor(shapes, fonts)

	surf := render.NewRasterSurface(int(math.Ceil(f.Width)), int(math.Ceil(f.Height)), fonts)
	render.NewRenderer().Paint(surf, render.Scene{
		Shapes:  shapes,
		OffsetX: f.OffsetX,
		OffsetY: f.OffsetY,
	})

	if err := surf.Context().EncodePNG(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}
