package state

import (
	"encoding/json"
)

// Point is a board coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

type Tool string

const (
	// ToolFreehand is stored as "pen", the name existing boards use.
	ToolFreehand  Tool = "pen"
	ToolEraser    Tool = "eraser"
	ToolArrow     Tool = "arrow"
	ToolRectangle Tool = "rectangle"
	ToolCircle    Tool = "circle"
	ToolText      Tool = "text"

	// Interaction-only tools, never stored on a shape.
	ToolSelect Tool = "select"
	ToolHand   Tool = "hand"
)

// UnmarshalJSON accepts "freehand" as an alias for ToolFreehand.
func (t *Tool) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "freehand" {
		s = string(ToolFreehand)
	}
	*t = Tool(s)
	return nil
}

// Draws reports whether pointer-down with this tool starts a new stroke or figure.
func (t Tool) Draws() bool {
	switch t {
	case ToolFreehand, ToolEraser, ToolArrow, ToolRectangle, ToolCircle:
		return true
	}
	return false
}

// Anchored reports whether the tool keeps only a start and an end point.
func (t Tool) Anchored() bool {
	return t == ToolArrow || t == ToolRectangle || t == ToolCircle
}

// Transform is reserved: carried on the wire and applied by the renderer, but no tool sets it.
type Transform struct {
	TranslateX float64 `json:"x"`
	TranslateY float64 `json:"y"`
	Scale      float64 `json:"scale"`
	Rotate     float64 `json:"rotate"`
}

// Shape is one drawable object. ID and Tool never change after creation.
type Shape struct {
	ID          string     `json:"id"`
	Tool        Tool       `json:"tool"`
	Points      []Point    `json:"points"`
	Color       string     `json:"color"`
	StrokeWidth float64    `json:"width"`
	Selected    bool       `json:"selected,omitempty"`
	IsEditing   bool       `json:"isEditing,omitempty"`
	Transform   *Transform `json:"transform,omitempty"`

	Text       string  `json:"text,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	TextWidth  float64 `json:"textWidth,omitempty"`
	TextHeight float64 `json:"textHeight,omitempty"`
}

// Clone returns a deep copy sharing no memory with s.
func (s Shape) Clone() Shape {
	c := s
	if s.Points != nil {
		c.Points = make([]Point, len(s.Points))
		copy(c.Points, s.Points)
	}
	if s.Transform != nil {
		t := *s.Transform
		c.Transform = &t
	}
	return c
}

// Start is the first point, or the zero point for an empty shape.
func (s Shape) Start() Point {
	if len(s.Points) == 0 {
		return Point{}
	}
	return s.Points[0]
}

// End is the last point, or the zero point for an empty shape.
func (s Shape) End() Point {
	if len(s.Points) == 0 {
		return Point{}
	}
	return s.Points[len(s.Points)-1]
}

// EffectiveFontSize falls back to ten times the stroke width when no font size was recorded.
func (s Shape) EffectiveFontSize() float64 {
	if s.FontSize > 0 {
		return s.FontSize
	}
	return s.StrokeWidth * 10
}

// ShapeList is the whole drawing. Index order is paint order.
type ShapeList []Shape

// Clone deep-copies the list.
func (l ShapeList) Clone() ShapeList {
	if l == nil {
		return ShapeList{}
	}
	c := make(ShapeList, len(l))
	for i, s := range l {
		c[i] = s.Clone()
	}
	return c
}

// Index returns the position of the shape with id, or -1.
func (l ShapeList) Index(id string) int {
	for i := range l {
		if l[i].ID == id {
			return i
		}
	}
	return -1
}

// Equal compares two lists field by field.
func (l ShapeList) Equal(o ShapeList) bool {
	if len(l) != len(o) {
		return false
	}
	for i := range l {
		if !shapesEqual(l[i], o[i]) {
			return false
		}
	}
	return true
}

func shapesEqual(a, b Shape) bool {
	if a.ID != b.ID || a.Tool != b.Tool || a.Color != b.Color || a.StrokeWidth != b.StrokeWidth ||
		a.Selected != b.Selected || a.IsEditing != b.IsEditing || a.Text != b.Text ||
		a.FontSize != b.FontSize || a.TextWidth != b.TextWidth || a.TextHeight != b.TextHeight {
		return false
	}
	if (a.Transform == nil) != (b.Transform == nil) {
		return false
	}
	if a.Transform != nil && *a.Transform != *b.Transform {
		return false
	}
	if len(a.Points) != len(b.Points) {
		return false
	}
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			return false
		}
	}
	return true
}
