package editor

import (
	"fmt"
	"math"

	"LiveBoard/internal/state"
)

// Undo restores the previous history entry and shares it like a commit.
func (e *Editor) Undo() bool {
	list, ok := e.history.Undo()
	if !ok {
		return false
	}
	e.restore(list)
	return true
}

func (e *Editor) Redo() bool {
	list, ok := e.history.Redo()
	if !ok {
		return false
	}
	e.restore(list)
	return true
}

func (e *Editor) restore(list state.ShapeList) {
	e.resetGesture()
	e.store.Replace(list)
	e.bc.UndoRedo(list)
	e.saver.Save(list)
	e.changed()
}

// Clear empties the board. It pushes a single empty history entry.
func (e *Editor) Clear() {
	e.resetGesture()
	empty := state.ShapeList{}
	e.store.Replace(empty)
	e.bc.ClearCanvas()
	e.saver.Save(empty)
	e.history.Push(empty)
	e.changed()
}

// DeleteSelected removes the selected shape as one commit.
func (e *Editor) DeleteSelected() bool {
	s, ok := e.selected()
	if !ok {
		return false
	}
	if e.active == s.ID {
		e.resetGesture()
	}
	e.store.Remove(s.ID)
	e.commit()
	e.changed()
	return true
}

// RecolorSelected changes the selected shape's colour. Erasers keep theirs.
func (e *Editor) RecolorSelected(c string) bool {
	return e.restyleSelected(func(s *state.Shape) {
		if s.Tool != state.ToolEraser {
			s.Color = c
		}
	})
}

// RestrokeSelected changes the selected shape's stroke width.
func (e *Editor) RestrokeSelected(w float64) bool {
	if w <= 0 {
		return false
	}
	return e.restyleSelected(func(s *state.Shape) {
		s.StrokeWidth = w
	})
}

// ResizeSelectedFont sets the font size of the selected text shape, clamped to
// MinFontSize..MaxFontSize. Other shapes have no font and report false.
func (e *Editor) ResizeSelectedFont(size float64) bool {
	sel, ok := e.selected()
	if !ok || sel.Tool != state.ToolText || size <= 0 {
		return false
	}
	size = math.Min(math.Max(size, MinFontSize), MaxFontSize)
	return e.restyleSelected(func(s *state.Shape) {
		s.FontSize = size
	})
}

// SelectedText returns the selected shape when it is text.
func (e *Editor) SelectedText() (state.Shape, bool) {
	sel, ok := e.selected()
	if !ok || sel.Tool != state.ToolText {
		return state.Shape{}, false
	}
	return sel, true
}

// restyleSelected shares and saves the change but does not add a history entry.
func (e *Editor) restyleSelected(fn func(*state.Shape)) bool {
	sel, ok := e.selected()
	if !ok {
		return false
	}
	var out state.Shape
	if !e.store.Update(sel.ID, func(s *state.Shape) {
		fn(s)
		out = s.Clone()
	}) {
		return false
	}
	shapes := e.store.Shapes()
	e.bc.ShapeUpdate(&out, shapes)
	e.saver.Save(shapes)
	e.changed()
	return true
}

// Deselect clears the selection and tells peers with a shape-update, so
// neither side records a history entry for it.
func (e *Editor) Deselect() {
	if _, ok := e.selected(); !ok {
		return
	}
	if e.mode == Dragging || e.mode == Resizing || e.mode == TextEditing {
		e.finishGesture()
	}
	e.store.Select("")
	e.bc.ShapeUpdate(nil, e.store.Shapes())
	e.changed()
}

// Load replaces the board with serialised content, as one commit.
func (e *Editor) Load(text string) error {
	list, err := state.ParseShapeList(text)
	if err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}
	e.resetGesture()
	e.store.Replace(list)
	e.commit()
	e.changed()
	return nil
}

// Serialize returns the board in its stored text form.
func (e *Editor) Serialize() (string, error) {
	return e.store.Shapes().Serialize()
}
