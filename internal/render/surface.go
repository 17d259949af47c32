// Package render paints a board scene onto any Surface: the desktop raster, a PDF
// page or a PNG file all go through the same Renderer.
package render

import (
	"image/color"

	"LiveBoard/internal/state"
	"LiveBoard/internal/textlayout"
)

// Style carries everything a primitive needs. Color already has any opacity
// (such as the erase preview) folded into its alpha channel.
type Style struct {
	Color color.NRGBA
	Width float64
	Dash  []float64
}

// Surface is the drawing target. Text is positioned by the top-left of its line
// box, and MeasureText must agree with how FillText lays glyphs out.
type Surface interface {
	textlayout.Measurer

	Clear(c color.NRGBA)
	StrokePath(pts []state.Point, closed bool, st Style)
	FillPath(pts []state.Point, st Style)
	FillRect(x, y, w, h float64, st Style)
	FillText(text string, x, y, fontSize float64, st Style)
}
