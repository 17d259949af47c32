package editor

import (
	"LiveBoard/internal/geometry"
	"LiveBoard/internal/state"
)

// eraserColor is what an eraser stroke is stored with; it paints as background.
const eraserColor = "#1a1a1a"

// SetTool switches the active tool. A gesture in progress ends first: an
// unfinished stroke is dropped, an eraser preview is discarded, and drags,
// resizes and text edits are committed.
func (e *Editor) SetTool(t state.Tool) {
	if t == e.tool {
		return
	}
	switch e.mode {
	case Drawing:
		e.resetGesture()
	case Erasing:
		e.bc.EraserHighlight(nil)
		e.resetGesture()
	default:
		e.finishGesture()
	}
	e.tool = t
	e.changed()
}

func (e *Editor) SetColor(c string) {
	if c != "" {
		e.color = c
	}
}

func (e *Editor) SetStrokeWidth(w float64) {
	if w > 0 {
		e.width = w
	}
}

// PointerDown starts a gesture at screen position (sx, sy).
func (e *Editor) PointerDown(sx, sy float64) {
	if e.mode == TextEditing && e.textBoxResizing {
		return
	}
	if e.mode != Idle {
		e.finishGesture()
	}

	p := e.world(sx, sy)
	switch {
	case e.tool == state.ToolText:
		e.startText(p)
	case e.tool == state.ToolHand:
		e.panFrom = &state.Point{X: sx, Y: sy}
		e.mode = Panning
	case e.tool == state.ToolSelect:
		e.pressSelect(p)
	case e.tool.Draws():
		e.startDrawing(p)
	}
	e.changed()
}

// PointerMove advances the current gesture and reports the cursor to peers.
func (e *Editor) PointerMove(sx, sy float64) {
	p := e.world(sx, sy)
	e.bc.CursorMove(p.X, p.Y, e.user)

	switch e.mode {
	case Panning:
		if e.panFrom != nil {
			e.panX += sx - e.panFrom.X
			e.panY += sy - e.panFrom.Y
		}
		e.panFrom = &state.Point{X: sx, Y: sy}
	case Dragging, Resizing:
		e.manipulate(p)
	case Drawing:
		if e.current.Tool.Anchored() {
			e.current.Points = []state.Point{e.current.Points[0], p}
		} else {
			e.current.Points = append(e.current.Points, p)
		}
		e.bc.DrawProgress(*e.current)
	case Erasing:
		e.current.Points = append(e.current.Points, p)
		e.eraseAt(p)
	default:
		return
	}
	e.changed()
}

// PointerUp ends the current gesture. Text editing outlives the pointer and
// only ends on Blur.
func (e *Editor) PointerUp() {
	if e.mode == Idle || e.mode == TextEditing {
		return
	}
	e.finishGesture()
	e.changed()
}

// PointerLeave is handled exactly like PointerUp so no gesture is left stuck.
func (e *Editor) PointerLeave() {
	e.PointerUp()
}

// DoubleClick edits the text shape under the pointer, or with the text tool
// starts a new one.
func (e *Editor) DoubleClick(sx, sy float64) {
	p := e.world(sx, sy)
	hit := ""
	e.store.Read(func(l state.ShapeList) {
		i := geometry.TopmostAt(l, p.X, p.Y, e.measure, func(s state.Shape) bool {
			return s.Tool == state.ToolText
		})
		if i >= 0 {
			hit = l[i].ID
		}
	})

	switch {
	case hit != "":
		if e.mode != Idle && e.mode != TextEditing {
			e.finishGesture()
		}
		e.beginEdit(hit)
	case e.tool == state.ToolText && e.mode != TextEditing:
		e.startText(p)
	default:
		return
	}
	e.changed()
}

func (e *Editor) startDrawing(p state.Point) {
	e.store.ClearFlags()
	s := state.Shape{
		ID:          state.NewShapeID(),
		Tool:        e.tool,
		Points:      []state.Point{p},
		Color:       e.color,
		StrokeWidth: e.width,
	}

	if s.Tool == state.ToolEraser {
		s.Color = eraserColor
		e.current = &s
		e.erase.reset()
		e.mode = Erasing
		e.eraseAt(p)
		return
	}

	e.current = &s
	e.mode = Drawing
	e.bc.DrawStart(s)
}

// eraseAt adds every shape within reach of p to the highlight set. The set only
// grows until release.
func (e *Editor) eraseAt(p state.Point) {
	var hit []string
	e.store.Read(func(l state.ShapeList) {
		hit = geometry.WithinReach(l, p.X, p.Y, EraserReach*e.width, e.measure)
	})
	e.erase.add(hit...)
	e.bc.EraserHighlight(e.erase.clone().ids)
}

// pressSelect grabs a handle of the selected shape, or selects and drags the
// topmost shape under p. Text has no resize handles.
func (e *Editor) pressSelect(p state.Point) {
	if sel, ok := e.selected(); ok && sel.Tool != state.ToolText {
		if h := geometry.HandleAt(sel, p.X, p.Y, e.measure); h != geometry.HandleNone {
			e.mode = Resizing
			e.active = sel.ID
			e.handle = h
			e.last = &p
			return
		}
	}

	var (
		hit   state.Shape
		found bool
	)
	e.store.Read(func(l state.ShapeList) {
		if i := geometry.TopmostAt(l, p.X, p.Y, e.measure, nil); i >= 0 {
			hit, found = l[i].Clone(), true
		}
	})
	if !found {
		e.store.Select("")
		e.bc.ShapeUpdate(nil, e.store.Shapes())
		return
	}

	e.store.Select(hit.ID)
	hit.Selected = true
	e.bc.ShapeUpdate(&hit, e.store.Shapes())
	e.mode = Dragging
	e.active = hit.ID
	e.last = &p
}

// manipulate applies one drag or resize tick. A missing origin is taken from
// this tick, so the first move after a lost origin does nothing.
func (e *Editor) manipulate(p state.Point) {
	if e.last == nil {
		e.last = &p
		return
	}
	dx, dy := p.X-e.last.X, p.Y-e.last.Y
	e.last = &p

	var moved state.Shape
	ok := e.store.Update(e.active, func(s *state.Shape) {
		if e.mode == Dragging {
			for i := range s.Points {
				s.Points[i] = s.Points[i].Add(dx, dy)
			}
		} else {
			*s = geometry.Resize(*s, e.handle, dx, dy, e.measure)
		}
		moved = s.Clone()
	})
	if !ok {
		// removed by a peer mid-gesture
		e.resetGesture()
		return
	}
	e.bc.ShapeUpdate(&moved, e.store.Shapes())
}

// finishGesture commits whatever the current mode has produced and returns to Idle.
func (e *Editor) finishGesture() {
	switch e.mode {
	case Drawing:
		s := e.current.Clone()
		e.store.Append(s)
		e.bc.DrawEnd(s)
		shapes := e.store.Shapes()
		e.saver.Save(shapes)
		e.history.Push(shapes)
	case Erasing:
		if len(e.erase.ids) > 0 {
			e.store.Remove(e.erase.ids...)
			e.commit()
		}
		e.bc.EraserHighlight(nil)
	case Dragging, Resizing:
		e.commit()
	case TextEditing:
		e.finishText()
	}
	e.resetGesture()
}

func (e *Editor) resetGesture() {
	e.mode = Idle
	e.current = nil
	e.erase.reset()
	e.active = ""
	e.handle = geometry.HandleNone
	e.last = nil
	e.panFrom = nil
	e.textBoxResizing = false
	e.textShared = false
}
