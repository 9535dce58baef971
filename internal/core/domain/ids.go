package domain

import (
	"errors"
	"sync/atomic"
)

// ErrNotFound is returned when an entity an operation depends on is not known.
var ErrNotFound = errors.New("not found")

// TempIDs hands out identifiers for entities that exist only locally until the
// server confirms them. They are negative so they can never collide with the
// positive integer IDs the server assigns.
type TempIDs struct {
	last atomic.Int64
}

// Next returns a fresh temporary identifier: -1, -2, -3, ...
func (g *TempIDs) Next() int {
	return int(g.last.Add(-1))
}

// IsTemporaryID reports whether id was produced by TempIDs.
func IsTemporaryID(id int) bool {
	return id < 0
}
