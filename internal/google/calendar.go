package google

import (
	"context"
	"fmt"
	"os"
	"time"

	"yoyaku/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// CalendarService talks to the Google Calendar that holds the consultation
// schedule. It is the only component with network side effects on the read
// and write paths.
type CalendarService struct {
	service    *calendar.Service
	calendarID string
	location   *time.Location
	logger     *zerolog.Logger
}

// NewCalendarService builds a calendar client from service-account
// credentials. credentialsJSON wins over credentialsFile when both are set.
func NewCalendarService(credentialsFile, credentialsJSON, calendarID string, location *time.Location, logger *zerolog.Logger) (*CalendarService, error) {
	ctx := context.Background()

	raw := []byte(credentialsJSON)
	if len(raw) == 0 {
		var err error
		raw, err = os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read credentials file: %v", err)
		}
	}

	jwtConfig, err := google.JWTConfigFromJSON(raw, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	client := jwtConfig.Client(ctx)

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %v", err)
	}

	return &CalendarService{
		service:    srv,
		calendarID: calendarID,
		location:   location,
		logger:     logger,
	}, nil
}

// TestConnection проверяет доступ к календарю
func (s *CalendarService) TestConnection(ctx context.Context) error {
	_, err := s.service.Calendars.Get(s.calendarID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// ListBusyIntervals returns well-formed busy intervals overlapping [from, to).
// Recurring events arrive expanded (SingleEvents). Entries that cannot be
// parsed, or arrive reversed, are logged and skipped one by one.
func (s *CalendarService) ListBusyIntervals(ctx context.Context, from, to time.Time) ([]models.BusyInterval, error) {
	call := s.service.Events.List(s.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)

	intervals := make([]models.BusyInterval, 0, 32)
	err := call.Pages(ctx, func(events *calendar.Events) error {
		for _, ev := range events.Items {
			interval, err := eventInterval(ev, s.location)
			if err != nil {
				s.logger.Warn().Err(err).Str("event_id", ev.Id).Msg("skipping malformed calendar event")
				continue
			}
			if !interval.Valid() {
				s.logger.Warn().
					Str("event_id", ev.Id).
					Time("start", interval.Start).
					Time("end", interval.End).
					Msg("skipping reversed calendar interval")
				continue
			}
			intervals = append(intervals, interval)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return intervals, nil
}

// InsertBooking writes the booking event. Errors are surfaced verbatim to
// the caller; there is no retry and nothing to roll back.
func (s *CalendarService) InsertBooking(ctx context.Context, booking *models.Booking) error {
	event := &calendar.Event{
		Summary:     booking.Summary,
		Location:    booking.Location,
		Description: booking.Description,
		Start:       &calendar.EventDateTime{DateTime: booking.Start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: booking.End.Format(time.RFC3339)},
	}

	_, err := s.service.Events.Insert(s.calendarID, event).Context(ctx).Do()
	return err
}

// eventInterval maps a calendar event to a busy interval. A whole-day value
// (date without time) covers that entire day in the business timezone.
func eventInterval(ev *calendar.Event, location *time.Location) (models.BusyInterval, error) {
	start, err := eventBound(ev.Start, location)
	if err != nil {
		return models.BusyInterval{}, fmt.Errorf("event start: %w", err)
	}
	end, err := eventBound(ev.End, location)
	if err != nil {
		return models.BusyInterval{}, fmt.Errorf("event end: %w", err)
	}
	return models.BusyInterval{Start: start, End: end}, nil
}

func eventBound(edt *calendar.EventDateTime, location *time.Location) (time.Time, error) {
	if edt == nil {
		return time.Time{}, fmt.Errorf("missing bound")
	}

	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}, err
		}
		return t, nil
	}

	if edt.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", edt.Date, location)
		if err != nil {
			return time.Time{}, err
		}
		// All-day bounds are exclusive end dates already, so midnight is the
		// correct instant for both sides.
		return day, nil
	}

	return time.Time{}, fmt.Errorf("bound has neither dateTime nor date")
}
