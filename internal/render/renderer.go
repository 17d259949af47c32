package render

import (
	"hash/fnv"
	"image/color"
	"math"

	"LiveBoard/internal/geometry"
	"LiveBoard/internal/state"
	"LiveBoard/internal/textlayout"
)

const (
	// ErasePreviewAlpha is the opacity of shapes about to be erased.
	ErasePreviewAlpha = 0.3
	selectionInset    = 5.0
	handleSize        = 8.0
	circleSegments    = 64
)

var (
	DefaultBackground = color.NRGBA{R: 0x1a, G: 0x1a, B: 0x1a, A: 255}
	selectionColor    = color.NRGBA{G: 255, A: 255}
	fallbackInk       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

	cursorPalette = []color.NRGBA{
		{R: 0x3b, G: 0x82, B: 0xf6, A: 255},
		{R: 0xef, G: 0x44, B: 0x44, A: 255},
		{R: 0x10, G: 0xb9, B: 0x81, A: 255},
		{R: 0xf5, G: 0x9e, B: 0x0b, A: 255},
		{R: 0x8b, G: 0x5c, B: 0xf6, A: 255},
		{R: 0xec, G: 0x48, B: 0x99, A: 255},
	}
)

// Cursor is a remote participant's pointer, in board coordinates.
type Cursor struct {
	X, Y float64
	Name string
}

// Scene is one frame's worth of state.
type Scene struct {
	Shapes state.ShapeList
	// Transient shapes are painted above the committed list: the local
	// in-progress shape first, then any remote ones.
	Transient []state.Shape
	// Erasing holds ids painted at ErasePreviewAlpha instead of full opacity.
	Erasing map[string]bool
	Cursors []Cursor
	// Offset is the view pan added to every board coordinate.
	OffsetX, OffsetY float64
}

type Renderer struct {
	Background color.NRGBA
}

func NewRenderer() *Renderer {
	return &Renderer{Background: DefaultBackground}
}

// Paint clears the surface and draws the scene in z-order.
func (r *Renderer) Paint(s Surface, sc Scene) {
	s.Clear(r.Background)
	for _, sh := range sc.Shapes {
		r.paintShape(s, sh, sc)
	}
	for _, sh := range sc.Transient {
		r.paintShape(s, sh, sc)
	}
	for _, c := range sc.Cursors {
		r.paintCursor(s, c, sc)
	}
}

func (r *Renderer) paintShape(s Surface, sh state.Shape, sc Scene) {
	alpha := 1.0
	if sc.Erasing[sh.ID] {
		alpha = ErasePreviewAlpha
	}
	ink := WithAlpha(ParseColor(sh.Color, fallbackInk), alpha)
	width := sh.StrokeWidth
	scale := 1.0
	if sh.Transform != nil && sh.Transform.Scale != 0 {
		scale = sh.Transform.Scale
	}
	st := Style{Color: ink, Width: width * scale}

	pts := make([]state.Point, len(sh.Points))
	for i, p := range sh.Points {
		pts[i] = place(p, sh.Transform, sc)
	}

	switch sh.Tool {
	case state.ToolFreehand:
		if len(pts) > 1 {
			s.StrokePath(pts, false, st)
		}
	case state.ToolEraser:
		if len(pts) > 1 {
			st.Color = WithAlpha(r.Background, alpha)
			s.StrokePath(pts, false, st)
		}
	case state.ToolArrow:
		if len(pts) > 1 {
			drawArrow(s, pts[0], pts[len(pts)-1], st)
		}
	case state.ToolRectangle:
		if len(pts) > 1 {
			a, b := pts[0], pts[len(pts)-1]
			s.StrokePath([]state.Point{a, {X: b.X, Y: a.Y}, b, {X: a.X, Y: b.Y}}, true, st)
		}
	case state.ToolCircle:
		if len(pts) > 1 {
			s.StrokePath(circle(pts[0], geometry.Radius(pts[0], pts[len(pts)-1])), true, st)
		}
	case state.ToolText:
		if sh.IsEditing || sh.Text == "" || len(pts) == 0 {
			break
		}
		fs := sh.EffectiveFontSize()
		lh := textlayout.LineHeight(fs) * scale
		y := pts[0].Y
		for _, line := range textlayout.Lines(sh.Text, sh.TextWidth, fs, s) {
			if line != "" {
				s.FillText(line, pts[0].X, y, fs*scale, st)
			}
			y += lh
		}
	}

	if sh.Selected {
		r.paintSelection(s, sh, sc, alpha)
	}
}

// paintSelection draws the dashed outline and the four corner handles.
func (r *Renderer) paintSelection(s Surface, sh state.Shape, sc Scene, alpha float64) {
	b, ok := geometry.Bounds(sh, s)
	if !ok {
		return
	}
	b.X1 += sc.OffsetX
	b.X2 += sc.OffsetX
	b.Y1 += sc.OffsetY
	b.Y2 += sc.OffsetY

	st := Style{Color: WithAlpha(selectionColor, alpha), Width: 1, Dash: []float64{5, 5}}
	o := b.Inflate(selectionInset)
	s.StrokePath([]state.Point{{X: o.X1, Y: o.Y1}, {X: o.X2, Y: o.Y1}, {X: o.X2, Y: o.Y2}, {X: o.X1, Y: o.Y2}}, true, st)

	st.Dash = nil
	for _, h := range geometry.Handles {
		c := b.Corner(h)
		s.FillRect(c.X-handleSize/2, c.Y-handleSize/2, handleSize, handleSize, st)
	}
}

func (r *Renderer) paintCursor(s Surface, c Cursor, sc Scene) {
	x, y := c.X+sc.OffsetX, c.Y+sc.OffsetY
	st := Style{Color: cursorColor(c.Name), Width: 1}
	s.FillPath([]state.Point{{X: x, Y: y}, {X: x + 4, Y: y + 14}, {X: x + 7, Y: y + 8}, {X: x + 14, Y: y + 6}}, st)
	if c.Name != "" {
		s.FillText(c.Name, x+12, y+12, 12, st)
	}
}

func cursorColor(name string) color.NRGBA {
	h := fnv.New32a()
	h.Write([]byte(name))
	return cursorPalette[h.Sum32()%uint32(len(cursorPalette))]
}

// place maps a board point through the shape's transform and the view offset.
func place(p state.Point, t *state.Transform, sc Scene) state.Point {
	if t != nil {
		scale := t.Scale
		if scale == 0 {
			scale = 1
		}
		sin, cos := math.Sincos(t.Rotate)
		p = state.Point{
			X: t.TranslateX + scale*(p.X*cos-p.Y*sin),
			Y: t.TranslateY + scale*(p.X*sin+p.Y*cos),
		}
	}
	return p.Add(sc.OffsetX, sc.OffsetY)
}

func drawArrow(s Surface, from, to state.Point, st Style) {
	head := 10 + st.Width
	angle := math.Atan2(to.Y-from.Y, to.X-from.X)
	s.StrokePath([]state.Point{from, to}, false, st)
	s.FillPath([]state.Point{
		to,
		{X: to.X - head*math.Cos(angle-math.Pi/6), Y: to.Y - head*math.Sin(angle-math.Pi/6)},
		{X: to.X - head*math.Cos(angle+math.Pi/6), Y: to.Y - head*math.Sin(angle+math.Pi/6)},
	}, st)
}

func circle(c state.Point, radius float64) []state.Point {
	pts := make([]state.Point, circleSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / circleSegments
		pts[i] = state.Point{X: c.X + radius*math.Cos(a), Y: c.Y + radius*math.Sin(a)}
	}
	return pts
}
