package render

import (
	"LiveBoard/internal/state"
	"LiveBoard/internal/textlayout"
)

// TextBoxHandleSize is the side of the wrap box's resize handle.
const TextBoxHandleSize = 10.0

var textBoxColor = WithAlpha(fallbackInk, 0.6)

// TextBoxOrigin returns where the wrap box of a text shape starts, in view
// coordinates.
func TextBoxOrigin(sh state.Shape, sc Scene) (state.Point, bool) {
	if len(sh.Points) == 0 {
		return state.Point{}, false
	}
	return place(sh.Points[0], sh.Transform, sc), true
}

// PaintTextBox draws a text shape that is being typed into: the w x h wrap
// box, the text wrapped to it, a caret after the last character and the
// resize handle on the box's bottom-right corner. Paint skips such shapes.
func (r *Renderer) PaintTextBox(s Surface, sh state.Shape, w, h float64, sc Scene) {
	o, ok := TextBoxOrigin(sh, sc)
	if !ok {
		return
	}
	ink := ParseColor(sh.Color, fallbackInk)
	box := Style{Color: textBoxColor, Width: 1, Dash: []float64{4, 4}}
	s.StrokePath([]state.Point{o, {X: o.X + w, Y: o.Y}, {X: o.X + w, Y: o.Y + h}, {X: o.X, Y: o.Y + h}}, true, box)

	fs := sh.EffectiveFontSize()
	lh := textlayout.LineHeight(fs)
	lines := textlayout.Lines(sh.Text, w, fs, s)
	y := o.Y
	for i, line := range lines {
		if line != "" {
			s.FillText(line, o.X, y, fs, Style{Color: ink})
		}
		if i < len(lines)-1 {
			y += lh
		}
	}

	caretX := o.X + 1
	if len(lines) > 0 {
		caretX += s.MeasureText(lines[len(lines)-1], fs)
	}
	s.StrokePath([]state.Point{{X: caretX, Y: y}, {X: caretX, Y: y + lh}}, false, Style{Color: ink, Width: 1})

	box.Dash = nil
	s.FillRect(o.X+w-TextBoxHandleSize/2, o.Y+h-TextBoxHandleSize/2, TextBoxHandleSize, TextBoxHandleSize, box)
}
