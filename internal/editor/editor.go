// Package editor turns pointer and keyboard input into shape edits. It owns the
// gesture state machine, commits finished edits to the store, history, channel
// and persistence, and applies remote events.
//
// An Editor is not safe for concurrent use: every call, including ApplyRemote,
// must come from the same event loop.
package editor

import (
	"sort"

	"LiveBoard/internal/broadcast"
	"LiveBoard/internal/geometry"
	"LiveBoard/internal/persist"
	"LiveBoard/internal/render"
	"LiveBoard/internal/state"
	"LiveBoard/internal/textlayout"

	"go.uber.org/zap"
)

type Mode int

const (
	Idle Mode = iota
	Drawing
	Dragging
	Resizing
	Erasing
	TextEditing
	Panning
)

func (m Mode) String() string {
	switch m {
	case Drawing:
		return "drawing"
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	case Erasing:
		return "erasing"
	case TextEditing:
		return "text-editing"
	case Panning:
		return "panning"
	}
	return "idle"
}

const (
	DefaultColor       = "#ffffff"
	DefaultStrokeWidth = 2.0
	// EraserReach multiplies the stroke width to give the eraser's radius.
	EraserReach = 3.0

	DefaultTextBoxWidth  = 300.0
	DefaultTextBoxHeight = 150.0
	MinTextBoxWidth      = 100.0
	MinTextBoxHeight     = 40.0
)

type Options struct {
	BoardID    string
	InstanceID string
	User       string
	// Initial is the board's stored text. Unparsable content starts an empty board.
	Initial      string
	Channel      broadcast.Channel
	Gateway      persist.Gateway
	Measurer     textlayout.Measurer
	HistoryLimit int
	Logger       *zap.Logger
	// OnChange is called after anything visible changes.
	OnChange func()
}

type Editor struct {
	store   *state.Store
	history *state.History
	bc      *broadcast.Broadcaster
	saver   *persist.Autosaver
	measure textlayout.Measurer
	logger  *zap.Logger
	user    string

	tool  state.Tool
	color string
	width float64
	mode  Mode

	// current is the uncommitted shape while Drawing or Erasing.
	current *state.Shape
	erase   idSet

	// active is the shape being dragged, resized or edited.
	active string
	handle geometry.Handle
	last   *state.Point

	panX, panY float64
	panFrom    *state.Point

	textBoxW, textBoxH float64
	textBoxResizing    bool
	// textShared is set once peers have seen the edited shape.
	textShared bool

	remoteDrawing map[string]state.Shape
	remoteErase   map[string][]string
	cursors       map[string]render.Cursor

	onChange func()
}

func New(opts Options) *Editor {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := opts.Measurer
	if m == nil {
		m = textlayout.FixedMeasurer{}
	}
	instance := opts.InstanceID
	if instance == "" {
		instance = state.NewInstanceID()
	}

	initial, err := state.ParseShapeList(opts.Initial)
	if err != nil {
		logger.Warn("Ignoring unreadable board content, starting empty",
			zap.String("board", opts.BoardID), zap.Error(err))
		initial = state.ShapeList{}
	}

	e := &Editor{
		store:         state.NewStore(initial),
		history:       state.NewHistory(initial, opts.HistoryLimit),
		bc:            broadcast.NewBroadcaster(opts.Channel, opts.BoardID, instance, logger),
		measure:       m,
		logger:        logger.Named("editor"),
		user:          opts.User,
		tool:          state.ToolFreehand,
		color:         DefaultColor,
		width:         DefaultStrokeWidth,
		remoteDrawing: make(map[string]state.Shape),
		remoteErase:   make(map[string][]string),
		cursors:       make(map[string]render.Cursor),
		onChange:      opts.OnChange,
	}
	if opts.Gateway != nil {
		e.saver = persist.NewAutosaver(opts.Gateway, opts.BoardID, logger)
	}
	return e
}

func (e *Editor) Mode() Mode              { return e.mode }
func (e *Editor) Tool() state.Tool        { return e.tool }
func (e *Editor) Color() string           { return e.color }
func (e *Editor) StrokeWidth() float64    { return e.width }
func (e *Editor) InstanceID() string      { return e.bc.InstanceID() }
func (e *Editor) BoardID() string         { return e.bc.BoardID() }
func (e *Editor) Shapes() state.ShapeList { return e.store.Shapes() }
func (e *Editor) CanUndo() bool           { return e.history.CanUndo() }
func (e *Editor) CanRedo() bool           { return e.history.CanRedo() }
func (e *Editor) Pan() (float64, float64) { return e.panX, e.panY }

// Join announces this session on the channel.
func (e *Editor) Join() { e.bc.Join(e.user) }

// Close finishes any gesture, announces the departure and waits for pending
// autosaves.
func (e *Editor) Close() {
	e.finishGesture()
	e.bc.Leave()
	e.saver.Wait()
}

// ErasePreview returns the ids currently previewed for deletion, local and remote.
func (e *Editor) ErasePreview() []string {
	all := e.erase.clone()
	for _, inst := range sortedKeys(e.remoteErase) {
		all.add(e.remoteErase[inst]...)
	}
	return all.ids
}

// Scene snapshots everything the renderer needs for one frame.
func (e *Editor) Scene() render.Scene {
	sc := render.Scene{
		Shapes:  e.store.Shapes(),
		Erasing: make(map[string]bool),
		OffsetX: e.panX,
		OffsetY: e.panY,
	}
	if e.current != nil && e.current.Tool != state.ToolEraser {
		sc.Transient = append(sc.Transient, e.current.Clone())
	}
	for _, inst := range sortedKeys(e.remoteDrawing) {
		sc.Transient = append(sc.Transient, e.remoteDrawing[inst].Clone())
	}
	for _, id := range e.ErasePreview() {
		sc.Erasing[id] = true
	}
	for _, inst := range sortedKeys(e.cursors) {
		sc.Cursors = append(sc.Cursors, e.cursors[inst])
	}
	return sc
}

func (e *Editor) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}

// commit makes the store's current list durable: peers get the end event,
// the gateway gets a write, and history gets one entry.
func (e *Editor) commit() {
	shapes := e.store.Shapes()
	e.bc.ShapeUpdateEnd(shapes)
	e.saver.Save(shapes)
	e.history.Push(shapes)
}

// world converts a screen position to board coordinates.
func (e *Editor) world(sx, sy float64) state.Point {
	return state.Point{X: sx - e.panX, Y: sy - e.panY}
}

func (e *Editor) selected() (state.Shape, bool) {
	var (
		out   state.Shape
		found bool
	)
	e.store.Read(func(l state.ShapeList) {
		for _, s := range l {
			if s.Selected {
				out, found = s.Clone(), true
				return
			}
		}
	})
	return out, found
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// idSet is an insertion-ordered set of shape ids.
type idSet struct {
	ids  []string
	seen map[string]bool
}

func (s *idSet) add(ids ...string) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	for _, id := range ids {
		if !s.seen[id] {
			s.seen[id] = true
			s.ids = append(s.ids, id)
		}
	}
}

func (s *idSet) clone() idSet {
	var c idSet
	c.add(s.ids...)
	return c
}

func (s *idSet) reset() {
	s.ids = nil
	s.seen = nil
}
