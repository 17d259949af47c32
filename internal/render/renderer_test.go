package render

import (
	"image/color"
	"testing"

	"LiveBoard/internal/state"
	"LiveBoard/internal/textlayout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type op struct {
	kind   string
	pts    []state.Point
	closed bool
	text   string
	x, y   float64
	style  Style
}

// recorder is a Surface that remembers every call.
type recorder struct {
	textlayout.FixedMeasurer
	ops []op
}

func (r *recorder) Clear(c color.NRGBA) {
	r.ops = append(r.ops, op{kind: "clear", style: Style{Color: c}})
}
func (r *recorder) StrokePath(pts []state.Point, closed bool, st Style) {
	r.ops = append(r.ops, op{kind: "stroke", pts: pts, closed: closed, style: st})
}
func (r *recorder) FillPath(pts []state.Point, st Style) {
	r.ops = append(r.ops, op{kind: "fillpath", pts: pts, style: st})
}
func (r *recorder) FillRect(x, y, w, h float64, st Style) {
	r.ops = append(r.ops, op{kind: "fillrect", x: x, y: y, style: st})
}
func (r *recorder) FillText(text string, x, y, fontSize float64, st Style) {
	r.ops = append(r.ops, op{kind: "text", text: text, x: x, y: y, style: st})
}

func (r *recorder) kinds() []string {
	var out []string
	for _, o := range r.ops {
		out = append(out, o.kind)
	}
	return out
}

func newRecorder() *recorder {
	return &recorder{FixedMeasurer: textlayout.FixedMeasurer{Ratio: 0.5}}
}

func line(id string, tool state.Tool, pts ...state.Point) state.Shape {
	return state.Shape{ID: id, Tool: tool, Points: pts, Color: "#ff0000", StrokeWidth: 2}
}

func p(x, y float64) state.Point { return state.Point{X: x, Y: y} }

func TestPaint_OrderIsListThenTransientThenCursors(t *testing.T) {
	rec := newRecorder()
	NewRenderer().Paint(rec, Scene{
		Shapes:    state.ShapeList{line("a", state.ToolFreehand, p(0, 0), p(1, 1))},
		Transient: []state.Shape{line("b", state.ToolRectangle, p(0, 0), p(5, 5))},
		Cursors:   []Cursor{{X: 3, Y: 3, Name: "ana"}},
	})
	assert.Equal(t, []string{"clear", "stroke", "stroke", "fillpath", "text"}, rec.kinds())
	assert.False(t, rec.ops[1].closed)
	assert.True(t, rec.ops[2].closed)
	assert.Len(t, rec.ops[2].pts, 4)
}

func TestPaint_ErasePreviewIsTranslucent(t *testing.T) {
	rec := newRecorder()
	NewRenderer().Paint(rec, Scene{
		Shapes: state.ShapeList{
			line("keep", state.ToolFreehand, p(0, 0), p(1, 1)),
			line("gone", state.ToolFreehand, p(0, 0), p(1, 1)),
		},
		Erasing: map[string]bool{"gone": true},
	})
	require.Len(t, rec.ops, 3)
	assert.Equal(t, uint8(255), rec.ops[1].style.Color.A)
	assert.Equal(t, uint8(77), rec.ops[2].style.Color.A)
}

func TestPaint_EraserUsesBackground(t *testing.T) {
	rec := newRecorder()
	r := NewRenderer()
	r.Paint(rec, Scene{Shapes: state.ShapeList{line("e", state.ToolEraser, p(0, 0), p(9, 9))}})
	assert.Equal(t, r.Background, rec.ops[1].style.Color)
}

func TestPaint_SelectionOutlineAndHandles(t *testing.T) {
	sel := line("s", state.ToolRectangle, p(10, 10), p(20, 20))
	sel.Selected = true
	rec := newRecorder()
	NewRenderer().Paint(rec, Scene{Shapes: state.ShapeList{sel}})

	assert.Equal(t, []string{"clear", "stroke", "stroke", "fillrect", "fillrect", "fillrect", "fillrect"}, rec.kinds())
	outline := rec.ops[2]
	assert.Equal(t, []float64{5, 5}, outline.style.Dash)
	assert.Equal(t, p(5, 5), outline.pts[0])
	assert.Equal(t, p(25, 25), outline.pts[2])
	// first handle centred on the top-left corner
	assert.Equal(t, 6.0, rec.ops[3].x)
	assert.Equal(t, 6.0, rec.ops[3].y)
}

func TestPaint_ArrowHasHead(t *testing.T) {
	rec := newRecorder()
	NewRenderer().Paint(rec, Scene{Shapes: state.ShapeList{line("a", state.ToolArrow, p(0, 0), p(100, 0))}})
	assert.Equal(t, []string{"clear", "stroke", "fillpath"}, rec.kinds())
	assert.Equal(t, p(100, 0), rec.ops[2].pts[0])
}

func TestPaint_CircleRadius(t *testing.T) {
	rec := newRecorder()
	NewRenderer().Paint(rec, Scene{Shapes: state.ShapeList{line("c", state.ToolCircle, p(50, 50), p(80, 50))}})
	require.Len(t, rec.ops, 2)
	assert.InDelta(t, 80.0, rec.ops[1].pts[0].X, 1e-9)
	assert.Len(t, rec.ops[1].pts, circleSegments)
}

func TestPaint_TextLinesAndEditingSkip(t *testing.T) {
	txt := line("t", state.ToolText, p(10, 10))
	txt.Text = "aaa bbb ccc\n\nz"
	txt.FontSize = 20
	txt.TextWidth = 85

	rec := newRecorder()
	NewRenderer().Paint(rec, Scene{Shapes: state.ShapeList{txt}})
	var texts []op
	for _, o := range rec.ops {
		if o.kind == "text" {
			texts = append(texts, o)
		}
	}
	require.Len(t, texts, 3)
	assert.Equal(t, "aaa bbb", texts[0].text)
	assert.Equal(t, "ccc", texts[1].text)
	assert.Equal(t, "z", texts[2].text)
	assert.InDelta(t, 10.0, texts[0].y, 1e-9)
	// the blank line still advances
	assert.InDelta(t, 10.0+3*24, texts[2].y, 1e-9)

	txt.IsEditing = true
	rec = newRecorder()
	NewRenderer().Paint(rec, Scene{Shapes: state.ShapeList{txt}})
	assert.Equal(t, []string{"clear"}, rec.kinds())
}

func TestPaint_OffsetApplies(t *testing.T) {
	rec := newRecorder()
	NewRenderer().Paint(rec, Scene{
		Shapes:  state.ShapeList{line("a", state.ToolFreehand, p(0, 0), p(1, 1))},
		OffsetX: 100,
		OffsetY: -10,
	})
	assert.Equal(t, p(100, -10), rec.ops[1].pts[0])
}

func TestPaint_TransformScalesAndTranslates(t *testing.T) {
	s := line("a", state.ToolFreehand, p(1, 0), p(2, 0))
	s.Transform = &state.Transform{TranslateX: 10, Scale: 2}
	rec := newRecorder()
	NewRenderer().Paint(rec, Scene{Shapes: state.ShapeList{s}})
	assert.InDelta(t, 12.0, rec.ops[1].pts[0].X, 1e-9)
	assert.InDelta(t, 14.0, rec.ops[1].pts[1].X, 1e-9)
	assert.Equal(t, 4.0, rec.ops[1].style.Width)
}

func TestParseColor(t *testing.T) {
	fb := color.NRGBA{R: 1, A: 255}
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, ParseColor("#FFFFFF", fb))
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, ParseColor("#f00", fb))
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, ParseColor("blue", fb))
	assert.Equal(t, fb, ParseColor("nope", fb))
}

func TestRasterSurfacePaints(t *testing.T) {
	fonts, err := textlayout.NewFontMeasurer(nil)
	require.NoError(t, err)
	surf := NewRasterSurface(50, 50, fonts)

	txt := line("t", state.ToolText, p(2, 2))
	txt.Text = "hi"
	NewRenderer().Paint(surf, Scene{Shapes: state.ShapeList{
		line("r", state.ToolRectangle, p(10, 10), p(40, 40)),
		txt,
	}})

	img := surf.Image()
	assert.Equal(t, 50, img.Bounds().Dx())
	r, g, b, _ := img.At(10, 25).RGBA()
	assert.Greater(t, r, g, "left edge of the rectangle should be red")
	assert.Greater(t, r, b)
	bg, _, _, _ := img.At(25, 25).RGBA()
	assert.Less(t, bg, uint32(0x4000), "inside the rectangle stays background")
}

func TestPaintTextBox(t *testing.T) {
	txt := line("t", state.ToolText, p(10, 10))
	txt.Text = "ab\ncd"
	txt.FontSize = 20
	txt.IsEditing = true

	rec := newRecorder()
	NewRenderer().PaintTextBox(rec, txt, 200, 100, Scene{OffsetX: 5})
	require.Equal(t, []string{"stroke", "text", "text", "stroke", "fillrect"}, rec.kinds())

	box := rec.ops[0]
	assert.True(t, box.closed)
	assert.Equal(t, []state.Point{p(15, 10), p(215, 10), p(215, 110), p(15, 110)}, box.pts)

	// caret follows "cd" on the second line
	caret := rec.ops[3].pts
	require.Len(t, caret, 2)
	assert.InDelta(t, 36.0, caret[0].X, 1e-9)
	assert.InDelta(t, 34.0, caret[0].Y, 1e-9)
	assert.InDelta(t, 58.0, caret[1].Y, 1e-9)

	handle := rec.ops[4]
	assert.InDelta(t, 215-TextBoxHandleSize/2, handle.x, 1e-9)
	assert.InDelta(t, 110-TextBoxHandleSize/2, handle.y, 1e-9)
}

func TestPaintTextBoxEmptyText(t *testing.T) {
	txt := line("t", state.ToolText, p(0, 0))
	txt.FontSize = 10

	rec := newRecorder()
	NewRenderer().PaintTextBox(rec, txt, 100, 40, Scene{})
	assert.Equal(t, []string{"stroke", "stroke", "fillrect"}, rec.kinds())
	caret := rec.ops[1].pts
	require.Len(t, caret, 2)
	assert.InDelta(t, 1.0, caret[0].X, 1e-9)
	assert.InDelta(t, 12.0, caret[1].Y, 1e-9)
}
