package schedule

import (
	"errors"
	"fmt"
	"time"
)

// Rules describes the fixed business-hour configuration the generator works
// from. The value is immutable after construction and shared freely between
// concurrent requests.
type Rules struct {
	OpenHour          int
	WeekdayCloseHour  int
	SaturdayCloseHour int
	SlotDuration      time.Duration
	Step              time.Duration
	LeadTime          time.Duration
	HorizonDays       int
	ClosedWeekdays    map[time.Weekday]bool
	UTCOffsetHours    int
}

// DefaultRules returns the production rule set: 10:00 opening, 19:00 close
// on weekdays, 17:00 on Saturday, 45-minute consultations on a 15-minute
// grid, 3 hours of lead time over a 14-day horizon, closed on Sunday and
// Wednesday, JST business timezone.
func DefaultRules() Rules {
	return Rules{
		OpenHour:          10,
		WeekdayCloseHour:  19,
		SaturdayCloseHour: 17,
		SlotDuration:      45 * time.Minute,
		Step:              15 * time.Minute,
		LeadTime:          3 * time.Hour,
		HorizonDays:       14,
		ClosedWeekdays: map[time.Weekday]bool{
			time.Sunday:    true,
			time.Wednesday: true,
		},
		UTCOffsetHours: 9,
	}
}

// Location returns the fixed business timezone. All business-hour boundaries
// are wall clock in this zone; comparisons always happen on the absolute
// instants they map to.
func (r Rules) Location() *time.Location {
	return time.FixedZone("business", r.UTCOffsetHours*3600)
}

// Closed reports whether the weekday produces no slots at all.
func (r Rules) Closed(day time.Weekday) bool {
	return r.ClosedWeekdays[day]
}

// CloseHour returns the closing hour for a given weekday.
func (r Rules) CloseHour(day time.Weekday) int {
	if day == time.Saturday {
		return r.SaturdayCloseHour
	}
	return r.WeekdayCloseHour
}

// Validate enforces the rule invariants. A rule set that fails validation is
// a configuration error and must never reach the generator.
func (r Rules) Validate() error {
	if r.OpenHour < 0 || r.OpenHour > 23 {
		return fmt.Errorf("open hour %d out of range", r.OpenHour)
	}
	if r.WeekdayCloseHour <= r.OpenHour {
		return fmt.Errorf("weekday close hour %d must be after open hour %d", r.WeekdayCloseHour, r.OpenHour)
	}
	if r.SaturdayCloseHour <= r.OpenHour {
		return fmt.Errorf("saturday close hour %d must be after open hour %d", r.SaturdayCloseHour, r.OpenHour)
	}
	if r.WeekdayCloseHour > 24 || r.SaturdayCloseHour > 24 {
		return errors.New("close hour out of range")
	}
	if r.SlotDuration <= 0 {
		return errors.New("slot duration must be positive")
	}
	if r.Step <= 0 {
		return errors.New("step must be positive")
	}
	if time.Hour%r.Step != 0 {
		return fmt.Errorf("step %s must divide an hour evenly", r.Step)
	}
	if r.LeadTime < 0 {
		return errors.New("lead time must not be negative")
	}
	if r.HorizonDays <= 0 {
		return errors.New("horizon must cover at least one day")
	}
	return nil
}
