package repository

import (
	"context"
	"sync"
	"time"
)

// MemorySlotLocker is the single-process fallback used when redis is not
// configured. Expired holds are reaped lazily on the next Acquire.
type MemorySlotLocker struct {
	mu    sync.Mutex
	holds map[int64]time.Time
}

func NewMemorySlotLocker() *MemorySlotLocker {
	return &MemorySlotLocker{holds: make(map[int64]time.Time)}
}

func (m *MemorySlotLocker) Acquire(ctx context.Context, slotStart time.Time, ttl time.Duration) (bool, error) {
	key := slotStart.UTC().Unix()
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if expiresAt, ok := m.holds[key]; ok && now.Before(expiresAt) {
		return false, nil
	}
	m.holds[key] = now.Add(ttl)
	return true, nil
}

func (m *MemorySlotLocker) Release(ctx context.Context, slotStart time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.holds, slotStart.UTC().Unix())
	return nil
}
