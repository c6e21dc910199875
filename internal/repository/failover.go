package repository

import (
	"context"
	"sync/atomic"
	"time"

	"yoyaku/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverSlotLocker prefers the redis locker and degrades to the in-memory
// one while redis is unreachable, retrying the primary after a cooldown.
type FailoverSlotLocker struct {
	primary   domain.SlotLocker
	fallback  domain.SlotLocker
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverSlotLocker(primary, fallback domain.SlotLocker, logger *zerolog.Logger) *FailoverSlotLocker {
	return &FailoverSlotLocker{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSlotLocker) Acquire(ctx context.Context, slotStart time.Time, ttl time.Duration) (bool, error) {
	if r.primaryUsable() {
		ok, err := r.primary.Acquire(ctx, slotStart, ttl)
		if err == nil {
			r.isDown.Store(false)
			return ok, nil
		}
		r.markDown(err)
	}

	return r.fallback.Acquire(ctx, slotStart, ttl)
}

func (r *FailoverSlotLocker) Release(ctx context.Context, slotStart time.Time) error {
	if r.primaryUsable() {
		err := r.primary.Release(ctx, slotStart)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.Release(ctx, slotStart)
}

func (r *FailoverSlotLocker) primaryUsable() bool {
	if !r.isDown.Load() {
		return true
	}
	// Retry the primary after a minute of degraded operation.
	return time.Since(time.Unix(r.lastCheck.Load(), 0)) > time.Minute
}

func (r *FailoverSlotLocker) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary slot locker failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().Unix())
}
