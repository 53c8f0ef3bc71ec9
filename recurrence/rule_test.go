package recurrence

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{name: "daily", rule: Rule{Pattern: PatternDaily, Interval: 1}},
		{name: "missing pattern tolerated", rule: Rule{Interval: 1}},
		{name: "weekly with days", rule: Rule{Pattern: PatternWeekly, Interval: 2, DaysOfWeek: []time.Weekday{time.Monday, time.Friday}}},
		{name: "monthly nth weekday", rule: Rule{Pattern: PatternMonthly, Interval: 1, WeekOfMonth: ptr(2), WeekdayOfMonth: ptr(time.Tuesday)}},
		{name: "yearly with month", rule: Rule{Pattern: PatternYearly, Interval: 1, MonthOfYear: ptr(time.March), DayOfMonth: 15}},
		{name: "unknown pattern", rule: Rule{Pattern: "hourly", Interval: 1}, wantErr: true},
		{name: "zero interval", rule: Rule{Pattern: PatternDaily}, wantErr: true},
		{name: "day of week out of range", rule: Rule{Pattern: PatternWeekly, Interval: 1, DaysOfWeek: []time.Weekday{7}}, wantErr: true},
		{name: "day of month out of range", rule: Rule{Pattern: PatternMonthly, Interval: 1, DayOfMonth: 32}, wantErr: true},
		{name: "week of month without weekday", rule: Rule{Pattern: PatternMonthly, Interval: 1, WeekOfMonth: ptr(2)}, wantErr: true},
		{name: "week of month out of range", rule: Rule{Pattern: PatternMonthly, Interval: 1, WeekOfMonth: ptr(6), WeekdayOfMonth: ptr(time.Monday)}, wantErr: true},
		{name: "both monthly sub-modes set", rule: Rule{Pattern: PatternMonthly, Interval: 1, DayOfMonth: 15, WeekOfMonth: ptr(2), WeekdayOfMonth: ptr(time.Monday)}, wantErr: true},
		{name: "month of year out of range", rule: Rule{Pattern: PatternYearly, Interval: 1, MonthOfYear: ptr(time.Month(13))}, wantErr: true},
		{name: "both end conditions set", rule: Rule{Pattern: PatternDaily, Interval: 1, EndAfterOccurrences: 3, EndDate: ptr(time.Now())}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRule_ModeSwitchClearsOtherMode(t *testing.T) {
	rule := Rule{Pattern: PatternMonthly, Interval: 1}

	rule.SetNthWeekday(2, time.Tuesday)
	require.NoError(t, rule.Validate())
	assert.Zero(t, rule.DayOfMonth)

	rule.SetDayOfMonth(15)
	require.NoError(t, rule.Validate())
	assert.Nil(t, rule.WeekOfMonth)
	assert.Nil(t, rule.WeekdayOfMonth)
	assert.Equal(t, 15, rule.DayOfMonth)
}

func TestRule_JSONRoundTrip(t *testing.T) {
	end := date(2025, 1, 31)
	rule := Rule{
		Pattern:     PatternYearly,
		Interval:    2,
		MonthOfYear: ptr(time.November),
		EndDate:     &end,
	}
	rule.SetNthWeekday(4, time.Thursday)

	data, err := json.Marshal(rule)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"endDate":"2025-01-31T00:00:00Z"`)

	var back Rule
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, rule, back)
}
