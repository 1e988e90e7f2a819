package model

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces opaque unique record identifiers.
type IDGenerator interface {
	NewID() string
}

// UUIDv7Generator generates time-sortable UUIDv7 identifiers.
//
// UUIDv7 embeds a timestamp in the most significant bits, so records sort by
// creation time even in backends that only order lexically by key.
//
// Thread-safety: stateless, safe for concurrent use.
type UUIDv7Generator struct{}

// NewID returns a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedIDs returns predetermined identifiers for tests.
//
// Tests provide a known sequence and get deterministic record IDs, which
// keeps golden output and stored snapshots comparable across runs.
type FixedIDs struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDs creates a generator that returns ids in order.
// Once the supplied ids are exhausted it falls back to "fixed-N" counters
// rather than panicking, so tests don't have to pre-count every insert.
func NewFixedIDs(ids ...string) *FixedIDs {
	return &FixedIDs{ids: ids}
}

func (f *FixedIDs) NewID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.idx < len(f.ids) {
		id := f.ids[f.idx]
		f.idx++
		return id
	}
	f.idx++
	return fmt.Sprintf("fixed-%d", f.idx)
}
