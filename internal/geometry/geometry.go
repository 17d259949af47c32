// Package geometry computes shape bounds, hit-tests pointer positions and applies
// corner-handle resizes. Everything here is a pure function of its arguments.
package geometry

import (
	"math"

	"LiveBoard/internal/state"
	"LiveBoard/internal/textlayout"
)

const (
	// HandleRadius is how close, per axis, the pointer must be to a bounds corner.
	HandleRadius = 8.0
	// MinCircleRadius is the smallest radius a circle resize will produce.
	MinCircleRadius = 5.0
)

// Rect is an axis-aligned box with X1 <= X2 and Y1 <= Y2.
type Rect struct {
	X1, Y1, X2, Y2 float64
}

func (r Rect) Width() float64  { return r.X2 - r.X1 }
func (r Rect) Height() float64 { return r.Y2 - r.Y1 }

// Contains is inclusive on every edge.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X1 && x <= r.X2 && y >= r.Y1 && y <= r.Y2
}

// Inflate grows the box by d on every side.
func (r Rect) Inflate(d float64) Rect {
	return Rect{X1: r.X1 - d, Y1: r.Y1 - d, X2: r.X2 + d, Y2: r.Y2 + d}
}

// Union returns the smallest box covering both.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		X1: math.Min(r.X1, o.X1),
		Y1: math.Min(r.Y1, o.Y1),
		X2: math.Max(r.X2, o.X2),
		Y2: math.Max(r.Y2, o.Y2),
	}
}

func span(a, b state.Point) Rect {
	return Rect{
		X1: math.Min(a.X, b.X),
		Y1: math.Min(a.Y, b.Y),
		X2: math.Max(a.X, b.X),
		Y2: math.Max(a.Y, b.Y),
	}
}

// Radius is the circle radius implied by two anchors.
func Radius(center, edge state.Point) float64 {
	return math.Hypot(edge.X-center.X, edge.Y-center.Y)
}

// Bounds returns the bounding box of shape. ok is false when the shape has no
// geometry to measure: no points, an unknown tool, or a text shape with no text.
func Bounds(shape state.Shape, m textlayout.Measurer) (Rect, bool) {
	if len(shape.Points) == 0 {
		return Rect{}, false
	}

	switch shape.Tool {
	case state.ToolFreehand, state.ToolEraser:
		r := span(shape.Points[0], shape.Points[0])
		for _, p := range shape.Points[1:] {
			r = r.Union(span(p, p))
		}
		return r, true

	case state.ToolRectangle, state.ToolArrow:
		return span(shape.Start(), shape.End()), true

	case state.ToolCircle:
		c := shape.Start()
		r := Radius(c, shape.End())
		return Rect{X1: c.X - r, Y1: c.Y - r, X2: c.X + r, Y2: c.Y + r}, true

	case state.ToolText:
		if shape.Text == "" {
			return Rect{}, false
		}
		a := shape.Start()
		ext := textlayout.Measure(shape.Text, shape.TextWidth, shape.EffectiveFontSize(), m)
		return Rect{X1: a.X, Y1: a.Y, X2: a.X + ext.Width, Y2: a.Y + ext.Height}, true
	}
	return Rect{}, false
}

// HitTest reports whether (x, y) falls inside the shape's bounds.
func HitTest(shape state.Shape, x, y float64, m textlayout.Measurer) bool {
	r, ok := Bounds(shape, m)
	return ok && r.Contains(x, y)
}

// TopmostAt returns the index of the last shape in paint order whose bounds
// contain (x, y) and which passes filter, or -1. A nil filter accepts all shapes.
func TopmostAt(shapes state.ShapeList, x, y float64, m textlayout.Measurer, filter func(state.Shape) bool) int {
	for i := len(shapes) - 1; i >= 0; i-- {
		if filter != nil && !filter(shapes[i]) {
			continue
		}
		if HitTest(shapes[i], x, y, m) {
			return i
		}
	}
	return -1
}

// WithinReach returns the ids of shapes whose bounds, grown by radius, contain
// (x, y). This is the eraser's intersection test.
func WithinReach(shapes state.ShapeList, x, y, radius float64, m textlayout.Measurer) []string {
	var ids []string
	for _, s := range shapes {
		r, ok := Bounds(s, m)
		if ok && r.Inflate(radius).Contains(x, y) {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
