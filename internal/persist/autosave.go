package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	"LiveBoard/internal/state"

	"go.uber.org/zap"
)

const writeTimeout = 10 * time.Second

// Autosaver writes board snapshots without blocking the caller. Each Save runs
// in its own goroutine; completion order is not defined and failures are only
// logged.
type Autosaver struct {
	gw     Gateway
	board  string
	logger *zap.Logger
	wg     sync.WaitGroup
}

func NewAutosaver(gw Gateway, boardID string, logger *zap.Logger) *Autosaver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Autosaver{gw: gw, board: boardID, logger: logger.Named("persist")}
}

// Save serialises shapes on the calling goroutine, then writes in the background.
func (a *Autosaver) Save(shapes state.ShapeList) {
	if a == nil || a.gw == nil {
		return
	}
	text, err := shapes.Serialize()
	if err != nil {
		a.logger.Error("Failed to serialise board", zap.String("board", a.board), zap.Error(err))
		return
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := a.gw.Write(ctx, a.board, text); err != nil {
			a.logger.Warn("Autosave failed", zap.String("board", a.board), zap.Error(err))
		}
	}()
}

// Wait blocks until every write started so far has finished.
func (a *Autosaver) Wait() {
	if a != nil {
		a.wg.Wait()
	}
}

// Load reads the board's initial content. A missing board or a failed read
// yields "", which the editor treats as an empty board.
func Load(ctx context.Context, gw Gateway, boardID string, logger *zap.Logger) string {
	if gw == nil {
		return ""
	}
	text, err := gw.Read(ctx, boardID)
	if errors.Is(err, ErrNotFound) {
		return ""
	}
	if err != nil {
		if logger != nil {
			logger.Warn("Failed to load board", zap.String("board", boardID), zap.Error(err))
		}
		return ""
	}
	return text
}
