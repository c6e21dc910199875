package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"yoyaku/internal/domain"
	"yoyaku/internal/events"
	"yoyaku/internal/metrics"
	"yoyaku/internal/models"
	"yoyaku/internal/schedule"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BookingService builds the booking interval from a picked slot start and
// delegates the single calendar write. It does not re-derive availability;
// the slot hold is a best-effort guard inside one deployment, not a
// transactional guarantee.
type BookingService struct {
	calendar        domain.BookingWriter
	locker          domain.SlotLocker
	eventBus        domain.EventPublisher
	journal         domain.JournalQueue
	rules           schedule.Rules
	meetingLocation string
	clock           func() time.Time
	logger          *zerolog.Logger
}

func NewBookingService(
	calendar domain.BookingWriter,
	locker domain.SlotLocker,
	eventBus domain.EventPublisher,
	journal domain.JournalQueue,
	rules schedule.Rules,
	meetingLocation string,
	logger *zerolog.Logger,
) *BookingService {
	if meetingLocation == "" {
		meetingLocation = models.DefaultMeetingLocation
	}
	return &BookingService{
		calendar:        calendar,
		locker:          locker,
		eventBus:        eventBus,
		journal:         journal,
		rules:           rules,
		meetingLocation: meetingLocation,
		clock:           time.Now,
		logger:          logger,
	}
}

// WithClock overrides the time source. Tests only.
func (s *BookingService) WithClock(clock func() time.Time) *BookingService {
	s.clock = clock
	return s
}

// Book validates the request, constructs the interval plus metadata and
// performs one remote write. The end time always equals start plus the
// configured slot duration; callers never supply it.
func (s *BookingService) Book(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	booking, err := s.buildBooking(req)
	if err != nil {
		metrics.IncBooking("invalid")
		return nil, err
	}

	held, err := s.holdSlot(ctx, booking.Start)
	if err != nil {
		metrics.IncBooking("slot_held")
		return nil, err
	}

	if err := s.calendar.InsertBooking(ctx, booking); err != nil {
		if held {
			s.releaseSlot(ctx, booking.Start)
		}
		metrics.IncBooking("upstream_error")
		s.publishFailure(booking, err)
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	metrics.IncBooking("created")
	s.logger.Info().
		Str("booking_id", booking.ID).
		Time("start", booking.Start).
		Time("end", booking.End).
		Msg("booking created")

	if s.eventBus != nil {
		_ = s.eventBus.PublishJSON(events.EventBookingCreated, events.BookingEventPayload{
			BookingID:  booking.ID,
			ClientName: booking.ClientName,
			Start:      booking.Start,
			End:        booking.End,
			Location:   booking.Location,
		})
	}

	if s.journal != nil {
		if err := s.journal.Enqueue(ctx, booking); err != nil {
			s.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("journal enqueue failed")
		}
	}

	return booking, nil
}

func (s *BookingService) buildBooking(req models.BookingRequest) (*models.Booking, error) {
	clientName := strings.TrimSpace(req.ClientName)
	if clientName == "" {
		return nil, models.ErrEmptyClientName
	}

	start, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartTime))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidStartTime, err)
	}
	start = start.UTC()

	return &models.Booking{
		ID:          uuid.NewString(),
		ClientName:  clientName,
		Start:       start,
		End:         start.Add(s.rules.SlotDuration),
		Summary:     fmt.Sprintf(models.SummaryFormat, clientName),
		Location:    s.meetingLocation,
		Description: fmt.Sprintf(models.DescriptionFormat, s.meetingLocation),
		CreatedAt:   s.clock().UTC(),
	}, nil
}

// holdSlot claims the slot before the write. A hold that is already taken
// rejects the booking; lock infrastructure failures degrade to the original
// unguarded behavior instead of blocking bookings.
func (s *BookingService) holdSlot(ctx context.Context, start time.Time) (bool, error) {
	if s.locker == nil {
		return false, nil
	}

	ok, err := s.locker.Acquire(ctx, start, models.DefaultSlotLockTTL*time.Second)
	if err != nil {
		s.logger.Warn().Err(err).Time("slot", start).Msg("slot hold unavailable, proceeding without it")
		return false, nil
	}
	if !ok {
		return false, models.ErrSlotHeld
	}
	return true, nil
}

func (s *BookingService) releaseSlot(ctx context.Context, start time.Time) {
	if err := s.locker.Release(ctx, start); err != nil {
		s.logger.Warn().Err(err).Time("slot", start).Msg("slot hold release failed")
	}
}

func (s *BookingService) publishFailure(booking *models.Booking, cause error) {
	if s.eventBus == nil {
		return
	}
	_ = s.eventBus.PublishJSON(events.EventBookingFailed, events.BookingEventPayload{
		BookingID:  booking.ID,
		ClientName: booking.ClientName,
		Start:      booking.Start,
		End:        booking.End,
		Error:      cause.Error(),
	})
}
