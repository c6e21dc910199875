package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesValid(t *testing.T) {
	require.NoError(t, DefaultRules().Validate())
}

func TestRulesValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Rules)
	}{
		{"close before open", func(r *Rules) { r.WeekdayCloseHour = 9 }},
		{"saturday close before open", func(r *Rules) { r.SaturdayCloseHour = 8 }},
		{"zero slot duration", func(r *Rules) { r.SlotDuration = 0 }},
		{"negative slot duration", func(r *Rules) { r.SlotDuration = -time.Minute }},
		{"zero step", func(r *Rules) { r.Step = 0 }},
		{"step not dividing hour", func(r *Rules) { r.Step = 25 * time.Minute }},
		{"negative lead time", func(r *Rules) { r.LeadTime = -time.Hour }},
		{"zero horizon", func(r *Rules) { r.HorizonDays = 0 }},
		{"open hour out of range", func(r *Rules) { r.OpenHour = 25 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := DefaultRules()
			tt.mutate(&rules)
			assert.Error(t, rules.Validate())
		})
	}
}

func TestRulesCloseHour(t *testing.T) {
	rules := DefaultRules()
	assert.Equal(t, 19, rules.CloseHour(time.Tuesday))
	assert.Equal(t, 17, rules.CloseHour(time.Saturday))
}

func TestRulesClosed(t *testing.T) {
	rules := DefaultRules()
	assert.True(t, rules.Closed(time.Sunday))
	assert.True(t, rules.Closed(time.Wednesday))
	assert.False(t, rules.Closed(time.Monday))
}

func TestRulesLocation(t *testing.T) {
	loc := DefaultRules().Location()
	// JST has no DST; the offset is constant.
	_, offset := time.Date(2024, time.June, 1, 12, 0, 0, 0, loc).Zone()
	assert.Equal(t, 9*3600, offset)
}
