package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotASequence is returned when stored content parses but is not a JSON array.
var ErrNotASequence = errors.New("board content is not a shape sequence")

// ParseShapeList decodes serialised board content. Blank input is an empty board.
func ParseShapeList(text string) (ShapeList, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ShapeList{}, nil
	}

	var raw json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, fmt.Errorf("parse board content: %w", err)
	}
	if len(raw) == 0 || raw[0] != '[' {
		return nil, ErrNotASequence
	}

	var shapes ShapeList
	if err := json.Unmarshal(raw, &shapes); err != nil {
		return nil, fmt.Errorf("decode shapes: %w", err)
	}
	if shapes == nil {
		shapes = ShapeList{}
	}
	return shapes, nil
}

// Serialize encodes the list in the stored text form. An empty list encodes as "[]".
func (l ShapeList) Serialize() (string, error) {
	if l == nil {
		l = ShapeList{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(l); err != nil {
		return "", fmt.Errorf("encode shapes: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
