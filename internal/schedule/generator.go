package schedule

import (
	"time"

	"yoyaku/internal/models"
)

// Generate computes the ordered list of bookable slots for the horizon
// starting at now. It is a pure function: identical inputs always produce
// identical output, and no ordering is assumed on the busy set.
//
// Wall-clock window bounds are built in the business timezone and compared
// as absolute instants, the same representation now, the lead-time limit and
// the busy intervals live in. Returned slot starts are normalized to UTC.
func Generate(now time.Time, rules Rules, busy []models.BusyInterval) []models.Slot {
	loc := rules.Location()
	leadTimeLimit := now.Add(rules.LeadTime)
	nowLocal := now.In(loc)

	valid := busy[:0:0]
	for _, b := range busy {
		// Reversed intervals are dropped individually; one bad entry must
		// not blank the horizon.
		if b.Valid() {
			valid = append(valid, b)
		}
	}

	var slots []models.Slot
	for d := 0; d < rules.HorizonDays; d++ {
		day := nowLocal.AddDate(0, 0, d)
		if rules.Closed(day.Weekday()) {
			continue
		}

		windowStart := time.Date(day.Year(), day.Month(), day.Day(), rules.OpenHour, 0, 0, 0, loc)
		windowEnd := time.Date(day.Year(), day.Month(), day.Day(), rules.CloseHour(day.Weekday()), 0, 0, 0, loc)

		if windowStart.Before(leadTimeLimit) {
			windowStart = ceilToStep(leadTimeLimit, rules.Step)
		}

		for t := windowStart; !t.Add(rules.SlotDuration).After(windowEnd); t = t.Add(rules.Step) {
			if isBusy(t, t.Add(rules.SlotDuration), valid) {
				continue
			}
			slots = append(slots, models.Slot{Start: t.UTC()})
		}
	}

	return slots
}

// ceilToStep rounds t up to the next multiple of step; exact multiples are
// unchanged. Sub-minute precision is discarded by the rounding.
func ceilToStep(t time.Time, step time.Duration) time.Time {
	rounded := t.Truncate(step)
	if rounded.Before(t) {
		rounded = rounded.Add(step)
	}
	return rounded
}

func isBusy(start, end time.Time, busy []models.BusyInterval) bool {
	for _, b := range busy {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}
