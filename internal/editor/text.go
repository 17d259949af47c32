package editor

import (
	"math"
	"strings"

	"LiveBoard/internal/state"
)

const (
	// FontSizeFactor gives a new text shape's font size from the stroke width.
	FontSizeFactor = 10.0

	MinFontSize = 10.0
	MaxFontSize = 100.0
)

func (e *Editor) startText(p state.Point) {
	s := state.Shape{
		ID:          state.NewShapeID(),
		Tool:        state.ToolText,
		Points:      []state.Point{p},
		Color:       e.color,
		StrokeWidth: e.width,
		FontSize:    e.width * FontSizeFactor,
		IsEditing:   true,
		Selected:    true,
		TextWidth:   DefaultTextBoxWidth,
		TextHeight:  DefaultTextBoxHeight,
	}
	e.store.ClearFlags()
	e.store.Append(s)

	e.mode = TextEditing
	e.active = s.ID
	e.textBoxW, e.textBoxH = DefaultTextBoxWidth, DefaultTextBoxHeight
	e.textShared = false
}

func (e *Editor) beginEdit(id string) {
	if e.mode == TextEditing {
		if e.active == id {
			return
		}
		e.finishText()
	}
	s, ok := e.store.Get(id)
	if !ok || s.Tool != state.ToolText {
		return
	}
	e.store.Select(id)
	e.store.Update(id, func(s *state.Shape) { s.IsEditing = true })

	e.mode = TextEditing
	e.active = id
	e.textBoxW, e.textBoxH = s.TextWidth, s.TextHeight
	if e.textBoxW == 0 || e.textBoxH == 0 {
		e.textBoxW, e.textBoxH = DefaultTextBoxWidth, DefaultTextBoxHeight
	}
	e.textShared = true
}

// EditSelectedText opens the selected text shape for editing. It reports false
// when no text shape is selected.
func (e *Editor) EditSelectedText() bool {
	s, ok := e.selected()
	if !ok || s.Tool != state.ToolText {
		return false
	}
	if e.mode != Idle && e.mode != TextEditing {
		e.finishGesture()
	}
	e.beginEdit(s.ID)
	e.changed()
	return true
}

// EditingShape returns the text shape being edited, if any.
func (e *Editor) EditingShape() (state.Shape, bool) {
	if e.mode != TextEditing {
		return state.Shape{}, false
	}
	return e.store.Get(e.active)
}

// TextBox is the wrap box size of the shape being edited.
func (e *Editor) TextBox() (w, h float64) {
	return e.textBoxW, e.textBoxH
}

// SetText replaces the edited shape's text. Peers see every keystroke as a
// shape-update; nothing is committed until Blur.
func (e *Editor) SetText(text string) {
	if e.mode != TextEditing {
		return
	}
	w, h := e.textBoxW, e.textBoxH
	e.updateEditing(func(s *state.Shape) {
		s.Text = text
		s.TextWidth = w
		s.TextHeight = h
	})
}

func (e *Editor) BeginTextBoxResize() {
	if e.mode == TextEditing {
		e.textBoxResizing = true
	}
}

// ResizeTextBox sets the wrap box, clamped to MinTextBoxWidth x MinTextBoxHeight.
func (e *Editor) ResizeTextBox(w, h float64) {
	if e.mode != TextEditing {
		return
	}
	w = math.Max(w, MinTextBoxWidth)
	h = math.Max(h, MinTextBoxHeight)
	e.textBoxW, e.textBoxH = w, h
	e.updateEditing(func(s *state.Shape) {
		s.TextWidth = w
		s.TextHeight = h
	})
}

func (e *Editor) EndTextBoxResize() {
	e.textBoxResizing = false
}

// Blur ends text editing. It is ignored while the wrap box is being resized,
// since dragging the box handle takes focus from the text.
func (e *Editor) Blur() {
	if e.mode != TextEditing || e.textBoxResizing {
		return
	}
	e.finishText()
	e.resetGesture()
	e.changed()
}

func (e *Editor) updateEditing(fn func(*state.Shape)) {
	var out state.Shape
	ok := e.store.Update(e.active, func(s *state.Shape) {
		fn(s)
		out = s.Clone()
	})
	if !ok {
		e.resetGesture()
		e.changed()
		return
	}
	e.textShared = true
	e.bc.ShapeUpdate(&out, e.store.Shapes())
	e.changed()
}

// finishText commits the edited shape, deleting it if its text is blank. A new
// shape that never reached peers is dropped without a commit.
func (e *Editor) finishText() {
	id, shared := e.active, e.textShared
	w, h := e.textBoxW, e.textBoxH
	e.mode = Idle

	s, ok := e.store.Get(id)
	if !ok {
		return
	}
	if strings.TrimSpace(s.Text) == "" {
		e.store.Remove(id)
		if !shared {
			return
		}
	} else {
		e.store.Update(id, func(s *state.Shape) {
			s.IsEditing = false
			s.TextWidth = w
			s.TextHeight = h
		})
	}
	e.commit()
}
