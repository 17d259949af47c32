package state

import (
	"github.com/google/uuid"
)

// NewShapeID returns a fresh globally unique shape id.
func NewShapeID() string {
	return uuid.NewString()
}

// NewInstanceID identifies one connected editing session. Events carry it so the
// session can drop its own echo.
func NewInstanceID() string {
	return uuid.NewString()
}
