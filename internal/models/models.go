package models

import (
	"errors"
	"time"
)

// Slot is a candidate bookable window. Its only identity is the start
// instant; the end is derived from the configured slot duration.
type Slot struct {
	Start time.Time `json:"start"`
}

// End returns the implied end of the slot for a given duration.
func (s Slot) End(d time.Duration) time.Time {
	return s.Start.Add(d)
}

// BusyInterval is an occupied half-open range [Start, End) sourced from the
// external calendar.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Valid reports whether the interval is well-formed. Reversed intervals are
// excluded from the busy set one by one, never treated as covering all time.
func (b BusyInterval) Valid() bool {
	return !b.Start.After(b.End)
}

// Overlaps implements the half-open overlap test. Touching boundaries are
// not overlapping; adjacency is permitted.
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return start.Before(b.End) && end.After(b.Start)
}

// Booking is the interval plus metadata handed to the calendar for insertion.
type Booking struct {
	ID          string    `json:"id"`
	ClientName  string    `json:"client_name"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Summary     string    `json:"summary"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// BookingRequest is the transient write-path input. The end time is always
// derived from the slot duration, never supplied by the caller.
type BookingRequest struct {
	StartTime  string `json:"startTime"`
	ClientName string `json:"clientName"`
}

var (
	ErrEmptyClientName  = errors.New("client name is required")
	ErrInvalidStartTime = errors.New("start time must be a valid RFC3339 instant")
	ErrSlotHeld         = errors.New("slot is being booked by another request")
)
