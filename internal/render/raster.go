package render

import (
	"image"
	"image/color"

	"LiveBoard/internal/state"
	"LiveBoard/internal/textlayout"

	"github.com/fogleman/gg"
)

// RasterSurface paints into an in-memory RGBA image with gg.
type RasterSurface struct {
	dc    *gg.Context
	fonts *textlayout.FontMeasurer
}

// NewRasterSurface allocates a w x h image. fonts supplies both glyph faces and
// text metrics, so wrapping matches what gets drawn.
func NewRasterSurface(w, h int, fonts *textlayout.FontMeasurer) *RasterSurface {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &RasterSurface{dc: gg.NewContext(w, h), fonts: fonts}
}

func (s *RasterSurface) Image() image.Image {
	return s.dc.Image()
}

// Context exposes the gg context, e.g. for EncodePNG.
func (s *RasterSurface) Context() *gg.Context {
	return s.dc
}

func (s *RasterSurface) MeasureText(text string, fontSize float64) float64 {
	return s.fonts.MeasureText(text, fontSize)
}

func (s *RasterSurface) Clear(c color.NRGBA) {
	s.dc.SetColor(c)
	s.dc.Clear()
}

func (s *RasterSurface) trace(pts []state.Point, closed bool) {
	s.dc.NewSubPath()
	s.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		s.dc.LineTo(p.X, p.Y)
	}
	if closed {
		s.dc.ClosePath()
	}
}

func (s *RasterSurface) StrokePath(pts []state.Point, closed bool, st Style) {
	if len(pts) < 2 {
		return
	}
	s.trace(pts, closed)
	s.dc.SetColor(st.Color)
	s.dc.SetLineWidth(st.Width)
	s.dc.SetLineCapRound()
	s.dc.SetLineJoinRound()
	s.dc.SetDash(st.Dash...)
	s.dc.Stroke()
	s.dc.SetDash()
}

func (s *RasterSurface) FillPath(pts []state.Point, st Style) {
	if len(pts) < 3 {
		return
	}
	s.trace(pts, true)
	s.dc.SetColor(st.Color)
	s.dc.Fill()
}

func (s *RasterSurface) FillRect(x, y, w, h float64, st Style) {
	s.dc.DrawRectangle(x, y, w, h)
	s.dc.SetColor(st.Color)
	s.dc.Fill()
}

func (s *RasterSurface) FillText(text string, x, y, fontSize float64, st Style) {
	s.dc.SetFontFace(s.fonts.Face(fontSize))
	s.dc.SetColor(st.Color)
	// anchor (0, 1) puts the line's top edge at y
	s.dc.DrawStringAnchored(text, x, y, 0, 1)
}
