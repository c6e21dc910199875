package service

import (
	"context"
	"fmt"
	"time"

	"yoyaku/internal/domain"
	"yoyaku/internal/events"
	"yoyaku/internal/metrics"
	"yoyaku/internal/models"
	"yoyaku/internal/schedule"

	"github.com/rs/zerolog"
)

// AvailabilityService computes bookable slots for the configured horizon.
// Busy intervals are fetched fresh on every call and never cached across
// requests; the generation itself is a pure function of (now, rules, busy).
type AvailabilityService struct {
	source   domain.BusyIntervalSource
	rules    schedule.Rules
	eventBus domain.EventPublisher
	clock    func() time.Time
	logger   *zerolog.Logger
}

func NewAvailabilityService(source domain.BusyIntervalSource, rules schedule.Rules, eventBus domain.EventPublisher, logger *zerolog.Logger) *AvailabilityService {
	return &AvailabilityService{
		source:   source,
		rules:    rules,
		eventBus: eventBus,
		clock:    time.Now,
		logger:   logger,
	}
}

// WithClock overrides the time source. Tests only.
func (s *AvailabilityService) WithClock(clock func() time.Time) *AvailabilityService {
	s.clock = clock
	return s
}

// GetSlots returns the ordered bookable slots starting from now.
func (s *AvailabilityService) GetSlots(ctx context.Context) ([]models.Slot, error) {
	now := s.clock().UTC()
	horizon := now.AddDate(0, 0, s.rules.HorizonDays)

	busy, err := s.source.ListBusyIntervals(ctx, now, horizon)
	if err != nil {
		return nil, fmt.Errorf("list busy intervals: %w", err)
	}

	valid, rejected := sanitize(busy)
	if rejected > 0 {
		s.logger.Warn().Int("rejected", rejected).Msg("excluded malformed busy intervals")
		metrics.AddRejectedIntervals(rejected)
		if s.eventBus != nil {
			_ = s.eventBus.PublishJSON(events.EventIntervalRejected, events.IntervalRejectedPayload{
				Now:   now,
				Count: rejected,
			})
		}
	}

	started := time.Now()
	slots := schedule.Generate(now, s.rules, valid)
	metrics.ObserveGeneration(time.Since(started).Seconds())
	metrics.ObserveSlots(len(slots))

	if s.eventBus != nil {
		_ = s.eventBus.PublishJSON(events.EventSlotsComputed, events.SlotsEventPayload{
			Now:       now,
			SlotCount: len(slots),
			BusyCount: len(valid),
			Rejected:  rejected,
		})
	}

	return slots, nil
}

// Rules exposes the immutable rule set the service was built with.
func (s *AvailabilityService) Rules() schedule.Rules {
	return s.rules
}

// sanitize splits the batch into well-formed intervals and a reject count.
// One malformed entry is dropped alone; it never fails the batch and never
// blanks the horizon.
func sanitize(busy []models.BusyInterval) ([]models.BusyInterval, int) {
	valid := make([]models.BusyInterval, 0, len(busy))
	rejected := 0
	for _, b := range busy {
		if !b.Valid() {
			rejected++
			continue
		}
		valid = append(valid, b)
	}
	return valid, rejected
}
