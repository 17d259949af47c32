package state

import (
	"sync"
)

// Store owns the live ShapeList. Callers only ever receive copies, or read the
// list inside Read without retaining it.
type Store struct {
	shapes ShapeList
	mu     sync.RWMutex
}

// NewStore takes a private copy of initial.
func NewStore(initial ShapeList) *Store {
	return &Store{shapes: initial.Clone()}
}

// Shapes returns a deep copy of the current list.
func (s *Store) Shapes() ShapeList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shapes.Clone()
}

// Read calls fn with the live list. fn must not keep or modify it.
func (s *Store) Read(fn func(ShapeList)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.shapes)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shapes)
}

// Get returns a copy of the shape with id.
func (s *Store) Get(id string) (Shape, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.shapes.Index(id); i >= 0 {
		return s.shapes[i].Clone(), true
	}
	return Shape{}, false
}

// Append adds a shape on top. A shape whose id is already present replaces the
// existing entry in place so ids stay unique.
func (s *Store) Append(shape Shape) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.shapes.Index(shape.ID); i >= 0 {
		s.shapes[i] = shape.Clone()
		return
	}
	s.shapes = append(s.shapes, shape.Clone())
}

// Replace swaps in a copy of list as the whole drawing.
func (s *Store) Replace(list ShapeList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shapes = list.Clone()
}

// Update mutates the shape with id in place. It reports false if no such shape exists.
func (s *Store) Update(id string, fn func(*Shape)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.shapes.Index(id)
	if i < 0 {
		return false
	}
	fn(&s.shapes[i])
	return true
}

// Remove deletes every shape whose id is in ids and returns how many were removed.
func (s *Store) Remove(ids ...string) int {
	if len(ids) == 0 {
		return 0
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.shapes[:0]
	removed := 0
	for _, sh := range s.shapes {
		if _, ok := drop[sh.ID]; ok {
			removed++
			continue
		}
		kept = append(kept, sh)
	}
	// zero the tail so dropped shapes are not retained by the backing array
	for i := len(kept); i < len(s.shapes); i++ {
		s.shapes[i] = Shape{}
	}
	s.shapes = kept
	return removed
}

// Select marks only the shape with id as selected. An empty id deselects everything.
// IsEditing is cleared on every shape but the selected one.
func (s *Store) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.shapes {
		s.shapes[i].Selected = s.shapes[i].ID == id && id != ""
		if s.shapes[i].ID != id {
			s.shapes[i].IsEditing = false
		}
	}
}

// ClearFlags drops selection and editing state from every shape.
func (s *Store) ClearFlags() {
	s.Select("")
}
