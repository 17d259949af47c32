package broadcast

import (
	"LiveBoard/internal/state"

	"go.uber.org/zap"
)

// Channel is the shared pub/sub link for one board. Publish must not block;
// delivery is best effort.
type Channel interface {
	Publish(frame []byte) error
}

// Broadcaster emits local mutations for one board and filters what comes back.
// Send failures are logged and dropped.
type Broadcaster struct {
	ch       Channel
	board    string
	instance string
	logger   *zap.Logger
}

func NewBroadcaster(ch Channel, boardID, instanceID string, logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{
		ch:       ch,
		board:    boardID,
		instance: instanceID,
		logger:   logger.Named("broadcast"),
	}
}

func (b *Broadcaster) BoardID() string    { return b.board }
func (b *Broadcaster) InstanceID() string { return b.instance }

func (b *Broadcaster) emit(e Event) {
	if b.ch == nil {
		return
	}
	e.WhiteboardID = b.board
	e.InstanceID = b.instance
	frame, err := Encode(e)
	if err != nil {
		b.logger.Error("Failed to encode event", zap.String("type", string(e.Type)), zap.Error(err))
		return
	}
	if err := b.ch.Publish(frame); err != nil {
		b.logger.Warn("Failed to send event", zap.String("type", string(e.Type)), zap.Error(err))
	}
}

func shapeRef(s state.Shape) *state.Shape {
	c := s.Clone()
	return &c
}

func (b *Broadcaster) Join(user string) { b.emit(Event{Type: Join, User: user}) }
func (b *Broadcaster) Leave()           { b.emit(Event{Type: Leave}) }

func (b *Broadcaster) DrawStart(s state.Shape)    { b.emit(Event{Type: DrawStart, Shape: shapeRef(s)}) }
func (b *Broadcaster) DrawProgress(s state.Shape) { b.emit(Event{Type: DrawProgress, Shape: shapeRef(s)}) }
func (b *Broadcaster) DrawEnd(s state.Shape)      { b.emit(Event{Type: DrawEnd, Shape: shapeRef(s)}) }

// ShapeUpdate sends the whole list mid-gesture. shape, when non-nil, names the
// shape being manipulated.
func (b *Broadcaster) ShapeUpdate(shape *state.Shape, shapes state.ShapeList) {
	e := Event{Type: ShapeUpdate, Shapes: shapes}
	if shape != nil {
		e.Shape = shapeRef(*shape)
	}
	b.emit(e)
}

func (b *Broadcaster) ShapeUpdateEnd(shapes state.ShapeList) {
	b.emit(Event{Type: ShapeUpdateEnd, Shapes: shapes})
}

func (b *Broadcaster) EraserHighlight(ids []string) {
	b.emit(Event{Type: EraserHighlight, ShapesToErase: ids})
}

func (b *Broadcaster) UndoRedo(shapes state.ShapeList) {
	b.emit(Event{Type: UndoRedo, Shapes: shapes})
}

func (b *Broadcaster) ClearCanvas() { b.emit(Event{Type: ClearCanvas}) }

func (b *Broadcaster) CursorMove(x, y float64, user string) {
	b.emit(Event{Type: CursorMove, X: x, Y: y, User: user})
}

// Accept decodes an inbound frame. It reports false for frames that fail to
// decode, belong to another board, or echo this instance's own events.
func (b *Broadcaster) Accept(frame []byte) (Event, bool) {
	e, err := Decode(frame)
	if err != nil {
		b.logger.Warn("Dropping malformed event", zap.Error(err))
		return Event{}, false
	}
	if e.InstanceID == b.instance {
		return Event{}, false
	}
	if e.WhiteboardID != "" && e.WhiteboardID != b.board {
		b.logger.Debug("Dropping event for another board", zap.String("board", e.WhiteboardID))
		return Event{}, false
	}
	return e, true
}
