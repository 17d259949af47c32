package editor

import (
	"sync"
)

// Session connects an Editor to a live channel. Frames arrive on transport
// goroutines; Deliver hands each one to dispatch, which must run it on the
// editor's event loop (fyne.Do in the desktop app).
type Session struct {
	ed       *Editor
	dispatch func(func())
	once     sync.Once
}

func NewSession(ed *Editor, dispatch func(func())) *Session {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Session{ed: ed, dispatch: dispatch}
}

func (s *Session) Editor() *Editor { return s.ed }

// Start announces the session to peers.
func (s *Session) Start() {
	s.dispatch(s.ed.Join)
}

// Deliver schedules one inbound frame on the event loop.
func (s *Session) Deliver(frame []byte) {
	s.dispatch(func() { s.ed.HandleFrame(frame) })
}

// Stop ends the session once: the gesture in progress is committed, peers are
// told, and pending autosaves are flushed. Call it from the event loop.
func (s *Session) Stop() {
	s.once.Do(s.ed.Close)
}
