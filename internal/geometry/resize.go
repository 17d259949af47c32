package geometry

import (
	"math"

	"LiveBoard/internal/state"
	"LiveBoard/internal/textlayout"
)

type Handle string

const (
	HandleNone        Handle = ""
	HandleTopLeft     Handle = "tl"
	HandleTopRight    Handle = "tr"
	HandleBottomLeft  Handle = "bl"
	HandleBottomRight Handle = "br"
)

// Handles lists the corners in the order they are hit-tested and painted.
var Handles = []Handle{HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight}

func (h Handle) movesLeft() bool { return h == HandleTopLeft || h == HandleBottomLeft }
func (h Handle) movesTop() bool  { return h == HandleTopLeft || h == HandleTopRight }

// Corner is the position of handle h on r.
func (r Rect) Corner(h Handle) state.Point {
	switch h {
	case HandleTopLeft:
		return state.Point{X: r.X1, Y: r.Y1}
	case HandleTopRight:
		return state.Point{X: r.X2, Y: r.Y1}
	case HandleBottomLeft:
		return state.Point{X: r.X1, Y: r.Y2}
	default:
		return state.Point{X: r.X2, Y: r.Y2}
	}
}

// HandleAt returns the corner handle of shape within HandleRadius of (x, y).
func HandleAt(shape state.Shape, x, y float64, m textlayout.Measurer) Handle {
	r, ok := Bounds(shape, m)
	if !ok {
		return HandleNone
	}
	for _, h := range Handles {
		c := r.Corner(h)
		if math.Abs(x-c.X) <= HandleRadius && math.Abs(y-c.Y) <= HandleRadius {
			return h
		}
	}
	return HandleNone
}

// Resize drags handle by (dx, dy) and returns the transformed copy of shape.
// Text is never resized through handles, and a zero delta changes nothing.
func Resize(shape state.Shape, h Handle, dx, dy float64, m textlayout.Measurer) state.Shape {
	out := shape.Clone()
	if h == HandleNone || (dx == 0 && dy == 0) {
		return out
	}

	switch shape.Tool {
	case state.ToolRectangle, state.ToolArrow:
		resizeAnchors(&out, h, dx, dy)
	case state.ToolCircle:
		resizeCircle(&out, dx, dy)
	case state.ToolFreehand, state.ToolEraser:
		r, ok := Bounds(shape, m)
		if ok {
			scalePoints(&out, r, h, dx, dy)
		}
	}
	return out
}

// resizeAnchors moves, per axis, whichever anchor lies on the dragged edge. The
// other anchor stays put.
func resizeAnchors(s *state.Shape, h Handle, dx, dy float64) {
	if len(s.Points) < 2 {
		return
	}
	first, last := 0, len(s.Points)-1
	a, b := s.Points[first], s.Points[last]

	xi := last
	if (a.X <= b.X) == h.movesLeft() {
		xi = first
	}
	yi := last
	if (a.Y <= b.Y) == h.movesTop() {
		yi = first
	}

	s.Points[xi].X += dx
	s.Points[yi].Y += dy
	s.Points = []state.Point{s.Points[first], s.Points[last]}
}

// resizeCircle grows or shrinks the radius by half the drag distance, shrinking
// when either delta is negative, and keeps the edge anchor's angle.
func resizeCircle(s *state.Shape, dx, dy float64) {
	if len(s.Points) < 2 {
		return
	}
	center := s.Start()
	edge := s.End()
	radius := Radius(center, edge)
	angle := math.Atan2(edge.Y-center.Y, edge.X-center.X)

	dist := math.Hypot(dx, dy)
	if dx < 0 || dy < 0 {
		radius -= dist / 2
	} else {
		radius += dist / 2
	}
	radius = math.Max(MinCircleRadius, radius)

	s.Points = []state.Point{center, {
		X: center.X + radius*math.Cos(angle),
		Y: center.Y + radius*math.Sin(angle),
	}}
}

// scalePoints scales every point about the bounds origin. Handles on the left or
// top edge also translate so the opposite edge stays fixed.
func scalePoints(s *state.Shape, r Rect, h Handle, dx, dy float64) {
	w, hgt := r.Width(), r.Height()
	sx, sy := 1.0, 1.0
	tx, ty := 0.0, 0.0

	if w > 0 {
		if h.movesLeft() {
			sx = (w - dx) / w
			tx = dx
		} else {
			sx = (w + dx) / w
		}
	}
	if hgt > 0 {
		if h.movesTop() {
			sy = (hgt - dy) / hgt
			ty = dy
		} else {
			sy = (hgt + dy) / hgt
		}
	}

	for i, p := range s.Points {
		s.Points[i] = state.Point{
			X: r.X1 + (p.X-r.X1)*sx + tx,
			Y: r.Y1 + (p.Y-r.Y1)*sy + ty,
		}
	}
}
