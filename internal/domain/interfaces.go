package domain

import (
	"context"
	"time"

	"yoyaku/internal/models"
)

// BusyIntervalSource is the read side of the external calendar: all busy
// intervals with any part inside [from, to).
type BusyIntervalSource interface {
	ListBusyIntervals(ctx context.Context, from, to time.Time) ([]models.BusyInterval, error)
}

// BookingWriter is the write side of the external calendar. One remote
// write, no retry, failure surfaced verbatim.
type BookingWriter interface {
	InsertBooking(ctx context.Context, booking *models.Booking) error
}

// CalendarClient combines both sides of the collaborator.
type CalendarClient interface {
	BusyIntervalSource
	BookingWriter
}

// SlotLocker holds a short-lived claim on a slot start between the caller's
// pick and the calendar write. Best effort only: a hold that cannot be
// acquired because of infrastructure failure does not block the booking.
type SlotLocker interface {
	Acquire(ctx context.Context, slotStart time.Time, ttl time.Duration) (bool, error)
	Release(ctx context.Context, slotStart time.Time) error
}

// EventPublisher fans out domain events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// JournalWriter appends a booking row to the ops journal.
type JournalWriter interface {
	AppendBooking(ctx context.Context, booking *models.Booking) error
}

// JournalQueue schedules an asynchronous journal append.
type JournalQueue interface {
	Enqueue(ctx context.Context, booking *models.Booking) error
}
