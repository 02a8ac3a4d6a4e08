package repository

import (
	"context"
	"sync"

	"github.com/marpol/driftwatch/internal/domain/model"
)

// defaultCapacity is the number of reports retained per vessel.
const defaultCapacity = 5

// MemoryStore implements Store with an in-memory sliding window per vessel.
// Histories live for the process lifetime; nothing is persisted.
type MemoryStore struct {
	mu       sync.RWMutex
	vessels  map[string][]model.PositionReport
	capacity int
}

// NewMemoryStore creates a MemoryStore with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		capacity: defaultCapacity,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.vessels = make(map[string][]model.PositionReport)
	return s
}

// Append inserts a report, evicting the oldest entry at capacity.
func (s *MemoryStore) Append(_ context.Context, mmsi string, r model.PositionReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := append(s.vessels[mmsi], r)
	if len(h) > s.capacity {
		// Shift instead of reslice so the evicted head can be collected.
		copy(h, h[1:])
		h = h[:s.capacity]
	}
	s.vessels[mmsi] = h
}

// Previous returns the second-most-recent report of whatever is retained.
func (s *MemoryStore) Previous(_ context.Context, mmsi string) (model.PositionReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.vessels[mmsi]
	if len(h) < 2 {
		return model.PositionReport{}, false
	}
	return h[len(h)-2], true
}

// Latest returns the most recent report for the vessel.
func (s *MemoryStore) Latest(_ context.Context, mmsi string) (model.PositionReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.vessels[mmsi]
	if len(h) == 0 {
		return model.PositionReport{}, false
	}
	return h[len(h)-1], true
}

// Len returns the number of reports retained for the vessel.
func (s *MemoryStore) Len(_ context.Context, mmsi string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vessels[mmsi])
}

// Vessels returns the number of vessels tracked.
func (s *MemoryStore) Vessels(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vessels)
}
