package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

var validBoardID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ErrInvalidBoardID rejects ids that cannot be used as a file name.
var ErrInvalidBoardID = errors.New("invalid board id")

// FileGateway stores each board as <dir>/<boardID>.json. Writes go to a temp
// file first and are renamed into place, so a reader never sees a torn board.
type FileGateway struct {
	dir string
	mu  sync.Mutex
}

func NewFileGateway(dir string) (*FileGateway, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}
	return &FileGateway{dir: dir}, nil
}

func (g *FileGateway) path(boardID string) (string, error) {
	if !validBoardID.MatchString(boardID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidBoardID, boardID)
	}
	return filepath.Join(g.dir, boardID+".json"), nil
}

func (g *FileGateway) Write(ctx context.Context, boardID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := g.path(boardID)
	if err != nil {
		return err
	}

	// Concurrent autosaves for one board land in arbitrary order; the lock
	// only keeps temp files from colliding.
	g.mu.Lock()
	defer g.mu.Unlock()

	tmp, err := os.CreateTemp(g.dir, boardID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write board %s: %w", boardID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write board %s: %w", boardID, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to store board %s: %w", boardID, err)
	}
	return nil
}

func (g *FileGateway) Read(ctx context.Context, boardID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := g.path(boardID)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read board %s: %w", boardID, err)
	}
	return string(b), nil
}
