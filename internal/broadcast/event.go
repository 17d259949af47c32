// Package broadcast defines the board event catalog and its wire codec. Every
// event carries the board id and the instance id of the session that sent it,
// and a Broadcaster drops events that carry its own instance id.
package broadcast

import (
	"encoding/json"
	"errors"
	"fmt"

	"LiveBoard/internal/state"
)

type Type string

const (
	Join            Type = "join"
	Leave           Type = "leave"
	DrawStart       Type = "draw-start"
	DrawProgress    Type = "draw-progress"
	DrawEnd         Type = "draw-end"
	ShapeUpdate     Type = "shape-update"
	ShapeUpdateEnd  Type = "shape-update-end"
	EraserHighlight Type = "eraser-highlight"
	UndoRedo        Type = "undo-redo"
	ClearCanvas     Type = "clear-canvas"
	CursorMove      Type = "cursor-move"
)

var known = map[Type]bool{
	Join: true, Leave: true,
	DrawStart: true, DrawProgress: true, DrawEnd: true,
	ShapeUpdate: true, ShapeUpdateEnd: true,
	EraserHighlight: true, UndoRedo: true, ClearCanvas: true, CursorMove: true,
}

var (
	ErrUnknownEvent = errors.New("unknown event type")
	ErrNoOrigin     = errors.New("event has no instance id")
)

// Event is one message on the board channel. Which payload fields are set
// depends on Type.
type Event struct {
	Type         Type   `json:"type"`
	WhiteboardID string `json:"whiteboardId"`
	InstanceID   string `json:"instanceId"`

	// draw-start, draw-progress, draw-end; optional on shape-update
	Shape *state.Shape `json:"shape,omitempty"`
	// shape-update, shape-update-end, undo-redo. Missing means an empty list.
	Shapes state.ShapeList `json:"shapes,omitempty"`
	// eraser-highlight
	ShapesToErase []string `json:"shapesToErase,omitempty"`
	// cursor-move
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
	// join, cursor-move
	User string `json:"user,omitempty"`
}

// ReplacesList reports whether applying the event swaps in a whole new ShapeList.
func (e Event) ReplacesList() bool {
	return e.Type == ShapeUpdate || e.Type == ShapeUpdateEnd || e.Type == UndoRedo
}

// Encode serialises e as one channel frame.
func Encode(e Event) ([]byte, error) {
	if !known[e.Type] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", e.Type, err)
	}
	return b, nil
}

// Decode parses one channel frame.
func Decode(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if !known[e.Type] {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
	if e.InstanceID == "" {
		return Event{}, ErrNoOrigin
	}
	return e, nil
}
