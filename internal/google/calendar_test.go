package google

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
)

var businessZone = time.FixedZone("business", 9*3600)

func TestEventBoundDateTime(t *testing.T) {
	got, err := eventBound(&calendar.EventDateTime{DateTime: "2024-01-09T12:00:00+09:00"}, businessZone)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, time.January, 9, 3, 0, 0, 0, time.UTC)))
}

func TestEventBoundWholeDay(t *testing.T) {
	// A date without time means midnight in the business timezone, not UTC.
	got, err := eventBound(&calendar.EventDateTime{Date: "2024-01-09"}, businessZone)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, time.January, 9, 0, 0, 0, 0, businessZone)))
	assert.True(t, got.Equal(time.Date(2024, time.January, 8, 15, 0, 0, 0, time.UTC)))
}

func TestEventBoundErrors(t *testing.T) {
	tests := []struct {
		name string
		edt  *calendar.EventDateTime
	}{
		{"nil bound", nil},
		{"empty bound", &calendar.EventDateTime{}},
		{"garbage datetime", &calendar.EventDateTime{DateTime: "yesterday"}},
		{"garbage date", &calendar.EventDateTime{Date: "01/09/2024"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eventBound(tt.edt, businessZone)
			assert.Error(t, err)
		})
	}
}

func TestEventIntervalTimed(t *testing.T) {
	got, err := eventInterval(&calendar.Event{
		Start: &calendar.EventDateTime{DateTime: "2024-01-09T12:00:00+09:00"},
		End:   &calendar.EventDateTime{DateTime: "2024-01-09T13:00:00+09:00"},
	}, businessZone)
	require.NoError(t, err)

	assert.True(t, got.Valid())
	assert.Equal(t, time.Hour, got.End.Sub(got.Start))
}

func TestEventIntervalWholeDay(t *testing.T) {
	// All-day events carry an exclusive end date, so a one-day event spans
	// exactly 24 hours of the business day.
	got, err := eventInterval(&calendar.Event{
		Start: &calendar.EventDateTime{Date: "2024-01-09"},
		End:   &calendar.EventDateTime{Date: "2024-01-10"},
	}, businessZone)
	require.NoError(t, err)

	assert.True(t, got.Start.Equal(time.Date(2024, time.January, 9, 0, 0, 0, 0, businessZone)))
	assert.Equal(t, 24*time.Hour, got.End.Sub(got.Start))

	// The whole business day is covered: any slot inside it overlaps.
	open := time.Date(2024, time.January, 9, 10, 0, 0, 0, businessZone)
	assert.True(t, got.Overlaps(open, open.Add(45*time.Minute)))
	lastSlot := time.Date(2024, time.January, 9, 18, 15, 0, 0, businessZone)
	assert.True(t, got.Overlaps(lastSlot, lastSlot.Add(45*time.Minute)))
}

func TestEventIntervalMissingBound(t *testing.T) {
	_, err := eventInterval(&calendar.Event{
		Start: &calendar.EventDateTime{DateTime: "2024-01-09T12:00:00+09:00"},
	}, businessZone)
	assert.Error(t, err)

	_, err = eventInterval(&calendar.Event{
		End: &calendar.EventDateTime{DateTime: "2024-01-09T13:00:00+09:00"},
	}, businessZone)
	assert.Error(t, err)
}

func TestEventIntervalReversedDetectedByValid(t *testing.T) {
	got, err := eventInterval(&calendar.Event{
		Start: &calendar.EventDateTime{DateTime: "2024-01-09T13:00:00+09:00"},
		End:   &calendar.EventDateTime{DateTime: "2024-01-09T12:00:00+09:00"},
	}, businessZone)
	require.NoError(t, err, "reversed bounds parse fine; the caller filters them via Valid")
	assert.False(t, got.Valid())
}
