package state

import (
	"sync"
)

// DefaultHistoryLimit caps how many snapshots History retains.
const DefaultHistoryLimit = 50

// History is a bounded undo/redo stack of ShapeList snapshots with a cursor.
// Entries are private deep copies; nothing handed in or out aliases them.
type History struct {
	entries []ShapeList
	cursor  int
	limit   int
	mu      sync.Mutex
}

// NewHistory starts with initial as the only entry. limit <= 0 means DefaultHistoryLimit.
func NewHistory(initial ShapeList, limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{
		entries: []ShapeList{initial.Clone()},
		cursor:  0,
		limit:   limit,
	}
}

// Push records list as the newest entry, discarding any redo branch and evicting
// the oldest entry once the cap is exceeded.
func (h *History) Push(list ShapeList) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries[:h.cursor+1], list.Clone())
	if over := len(h.entries) - h.limit; over > 0 {
		for i := 0; i < over; i++ {
			h.entries[i] = nil
		}
		h.entries = h.entries[over:]
	}
	h.cursor = len(h.entries) - 1
}

// Undo steps back one entry. ok is false at the oldest entry.
func (h *History) Undo() (ShapeList, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor <= 0 {
		return nil, false
	}
	h.cursor--
	return h.entries[h.cursor].Clone(), true
}

// Redo steps forward one entry. ok is false at the newest entry.
func (h *History) Redo() (ShapeList, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor >= len(h.entries)-1 {
		return nil, false
	}
	h.cursor++
	return h.entries[h.cursor].Clone(), true
}

// Current returns a copy of the entry at the cursor.
func (h *History) Current() ShapeList {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.cursor].Clone()
}

func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor > 0
}

func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor < len(h.entries)-1
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *History) Cursor() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}
