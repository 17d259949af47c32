package export

import (
	"fmt"
	"image/color"
	"io"

	"LiveBoard/internal/render"
	"LiveBoard/internal/state"

	"github.com/jung-kurt/gofpdf"
)

// textAscent places the Helvetica baseline below the top of the line box.
const textAscent = 0.8

// pdfSurface draws onto a single gofpdf page measured in points.
type pdfSurface struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func newPDFSurface() *pdfSurface {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: MinSide, Ht: MinSide},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Helvetica", "", 12)
	return &pdfSurface{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (s *pdfSurface) MeasureText(text string, fontSize float64) float64 {
	if text == "" || fontSize <= 0 {
		return 0
	}
	s.pdf.SetFontSize(fontSize)
	return s.pdf.GetStringWidth(s.tr(text))
}

func (s *pdfSurface) apply(c color.NRGBA) {
	r, g, b := int(c.R), int(c.G), int(c.B)
	s.pdf.SetDrawColor(r, g, b)
	s.pdf.SetFillColor(r, g, b)
	s.pdf.SetTextColor(r, g, b)
	s.pdf.SetAlpha(float64(c.A)/255, "Normal")
}

func (s *pdfSurface) Clear(c color.NRGBA) {
	w, h := s.pdf.GetPageSize()
	s.apply(c)
	s.pdf.Rect(0, 0, w, h, "F")
}

func (s *pdfSurface) trace(pts []state.Point, closed bool) {
	s.pdf.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		s.pdf.LineTo(p.X, p.Y)
	}
	if closed {
		s.pdf.ClosePath()
	}
}

func (s *pdfSurface) StrokePath(pts []state.Point, closed bool, st render.Style) {
	if len(pts) < 2 {
		return
	}
	s.apply(st.Color)
	s.pdf.SetLineWidth(st.Width)
	s.pdf.SetLineCapStyle("round")
	s.pdf.SetLineJoinStyle("round")
	s.pdf.SetDashPattern(st.Dash, 0)
	s.trace(pts, closed)
	s.pdf.DrawPath("D")
	s.pdf.SetDashPattern([]float64{}, 0)
}

func (s *pdfSurface) FillPath(pts []state.Point, st render.Style) {
	if len(pts) < 3 {
		return
	}
	s.apply(st.Color)
	s.trace(pts, true)
	s.pdf.DrawPath("F")
}

func (s *pdfSurface) FillRect(x, y, w, h float64, st render.Style) {
	s.apply(st.Color)
	s.pdf.Rect(x, y, w, h, "F")
}

func (s *pdfSurface) FillText(text string, x, y, fontSize float64, st render.Style) {
	s.apply(st.Color)
	s.pdf.SetFontSize(fontSize)
	s.pdf.Text(x, y+fontSize*textAscent, s.tr(text))
}

// PDF writes shapes as a one-page PDF sized to fit them.
func PDF(w io.Writer, shapes state.ShapeList) error {
	s := newPDFSurface()
	f := frameFor(shapes, s)
	s.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: f.Width, Ht: f.Height})

	render.NewRenderer().Paint(s, render.Scene{
		Shapes:  shapes,
		OffsetX: f.OffsetX,
		OffsetY: f.OffsetY,
	})

	if err := s.pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
