package docstore

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	perr "orgcore/internal/platform/errors"
	ptime "orgcore/internal/platform/time"
)

// Memory is a process local Store with the same conflict semantics as PG
type Memory struct {
	mu    sync.Mutex
	docs  map[string]Document
	clock ptime.Clock
}

// NewMemory returns an empty store; a nil clock uses the system clock
func NewMemory(clock ptime.Clock) *Memory {
	return &Memory{docs: map[string]Document{}, clock: ptime.Or(clock)}
}

// Load implements Store
func (m *Memory) Load(_ context.Context, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return Document{ID: id}, nil
	}
	d.Value = slices.Clone(d.Value)
	return d, nil
}

// Save implements Store
func (m *Memory) Save(_ context.Context, prev Document, value json.RawMessage) (Document, error) {
	if prev.ID == "" {
		return prev, perr.Validationf("id", "document id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.docs[prev.ID]
	switch {
	case !prev.Exists && ok:
		return prev, conflict(prev.ID)
	case prev.Exists && (!ok || !cur.UpdatedAt.Equal(prev.UpdatedAt)):
		return prev, conflict(prev.ID)
	}

	next := Document{
		ID:        prev.ID,
		Value:     slices.Clone(value),
		UpdatedAt: nextVersion(m.clock.Now(), cur.UpdatedAt),
		Exists:    true,
	}
	m.docs[prev.ID] = next
	next.Value = slices.Clone(value)
	return next, nil
}
