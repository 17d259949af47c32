package editor

import (
	"LiveBoard/internal/broadcast"
	"LiveBoard/internal/render"
	"LiveBoard/internal/state"

	"go.uber.org/zap"
)

// HandleFrame decodes one inbound channel frame and applies it. Own echoes,
// other boards and malformed frames are dropped.
func (e *Editor) HandleFrame(frame []byte) {
	if ev, ok := e.bc.Accept(frame); ok {
		e.ApplyRemote(ev)
	}
}

// ApplyRemote applies a peer's event. Whole-list events replace the local list
// outright: the last one applied wins, even over concurrent edits to other
// shapes. Events naming unknown shapes are no-ops.
func (e *Editor) ApplyRemote(ev broadcast.Event) {
	inst := ev.InstanceID

	switch ev.Type {
	case broadcast.Join:
		e.logger.Info("Peer joined", zap.String("instance", inst), zap.String("user", ev.User))
		return

	case broadcast.Leave:
		delete(e.cursors, inst)
		delete(e.remoteDrawing, inst)
		delete(e.remoteErase, inst)
		e.logger.Info("Peer left", zap.String("instance", inst))

	case broadcast.DrawStart, broadcast.DrawProgress:
		if ev.Shape == nil {
			return
		}
		e.remoteDrawing[inst] = ev.Shape.Clone()

	case broadcast.DrawEnd:
		delete(e.remoteDrawing, inst)
		if ev.Shape == nil {
			return
		}
		e.store.Append(*ev.Shape)
		e.history.Push(e.committed())

	case broadcast.ShapeUpdate:
		e.replace(ev.Shapes)

	case broadcast.ShapeUpdateEnd, broadcast.UndoRedo:
		delete(e.remoteErase, inst)
		e.replace(ev.Shapes)
		e.history.Push(e.committed())

	case broadcast.ClearCanvas:
		delete(e.remoteErase, inst)
		e.replace(state.ShapeList{})
		e.history.Push(state.ShapeList{})

	case broadcast.EraserHighlight:
		if len(ev.ShapesToErase) == 0 {
			delete(e.remoteErase, inst)
		} else {
			e.remoteErase[inst] = append([]string(nil), ev.ShapesToErase...)
		}

	case broadcast.CursorMove:
		e.cursors[inst] = render.Cursor{X: ev.X, Y: ev.Y, Name: ev.User}

	default:
		return
	}
	e.changed()
}

// committed is the displayed list without a new text draft peers have not
// seen. The draft only reaches history once its text is committed.
func (e *Editor) committed() state.ShapeList {
	shapes := e.store.Shapes()
	if e.mode != TextEditing || e.textShared {
		return shapes
	}
	if i := shapes.Index(e.active); i >= 0 {
		shapes = append(shapes[:i:i], shapes[i+1:]...)
	}
	return shapes
}

// replace installs a peer's list. A local gesture on a shape the list no longer
// has is abandoned; a text shape being typed that peers have not seen yet is
// kept on top.
func (e *Editor) replace(list state.ShapeList) {
	var keep *state.Shape
	if e.mode == TextEditing && list.Index(e.active) < 0 && !e.textShared {
		if s, ok := e.store.Get(e.active); ok {
			keep = &s
		}
	}

	e.store.Replace(list)
	if keep != nil {
		e.store.Append(*keep)
	}

	switch e.mode {
	case Dragging, Resizing:
		if list.Index(e.active) < 0 {
			e.resetGesture()
		}
	case TextEditing:
		if !e.store.Update(e.active, func(s *state.Shape) { s.IsEditing = true }) {
			e.resetGesture()
		}
	}
}
