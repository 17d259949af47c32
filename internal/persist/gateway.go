// Package persist stores serialised boards. The editor only depends on Gateway;
// the adapters here keep boards on disk, in memory, or behind the relay's HTTP API.
package persist

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Read for a board that was never written.
var ErrNotFound = errors.New("board not found")

type Gateway interface {
	Write(ctx context.Context, boardID, text string) error
	Read(ctx context.Context, boardID string) (string, error)
}

// MemoryGateway keeps boards in a map. Useful in tests and for throwaway sessions.
type MemoryGateway struct {
	boards map[string]string
	writes int
	mu     sync.RWMutex
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{boards: make(map[string]string)}
}

func (g *MemoryGateway) Write(_ context.Context, boardID, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.boards[boardID] = text
	g.writes++
	return nil
}

func (g *MemoryGateway) Read(_ context.Context, boardID string) (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	text, ok := g.boards[boardID]
	if !ok {
		return "", ErrNotFound
	}
	return text, nil
}

// Writes is the number of successful writes so far.
func (g *MemoryGateway) Writes() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.writes
}
