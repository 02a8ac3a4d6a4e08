package alerting

import (
	"context"
	"sync"
	"time"
)

// CooldownStore tracks the last alert time per vessel. Implementations must
// be safe for concurrent use.
type CooldownStore interface {
	// LastAlert returns the time of the vessel's last emitted alert, or
	// false when the vessel has never alerted.
	LastAlert(ctx context.Context, mmsi string) (time.Time, bool)

	// RecordAlert stores the vessel's last alert time.
	RecordAlert(ctx context.Context, mmsi string, t time.Time)

	// Size returns the number of vessels with recorded alerts.
	Size() int
}

// memoryCooldown implements CooldownStore with a mutex-guarded map.
// Entries live for the process lifetime, matching vessel histories.
type memoryCooldown struct {
	mu   sync.RWMutex
	last map[string]time.Time
}

// NewMemoryCooldown creates an empty in-memory cooldown store.
func NewMemoryCooldown() CooldownStore {
	return &memoryCooldown{last: make(map[string]time.Time)}
}

func (c *memoryCooldown) LastAlert(_ context.Context, mmsi string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.last[mmsi]
	return t, ok
}

func (c *memoryCooldown) RecordAlert(_ context.Context, mmsi string, t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[mmsi] = t
}

func (c *memoryCooldown) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.last)
}
