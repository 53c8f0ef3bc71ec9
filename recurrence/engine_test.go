package recurrence

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestEngine_NextOccurrence(t *testing.T) {
	engine := NewEngine(nil)

	tests := []struct {
		name string
		last time.Time
		rule Rule
		want time.Time
	}{
		{
			name: "daily",
			last: date(2024, 6, 4),
			rule: Rule{Pattern: PatternDaily, Interval: 1},
			want: date(2024, 6, 5),
		},
		{
			name: "daily with interval",
			last: date(2024, 6, 4),
			rule: Rule{Pattern: PatternDaily, Interval: 10},
			want: date(2024, 6, 14),
		},
		{
			name: "missing pattern falls back to daily",
			last: date(2024, 6, 4),
			rule: Rule{Interval: 3},
			want: date(2024, 6, 7),
		},
		{
			name: "weekly simple",
			last: date(2024, 6, 4),
			rule: Rule{Pattern: PatternWeekly, Interval: 2},
			want: date(2024, 6, 18),
		},
		{
			// Tuesday with Mon+Fri selected: Friday of the same week wins,
			// not next week's Monday.
			name: "weekly jumps to later day in current week",
			last: date(2024, 6, 4),
			rule: Rule{Pattern: PatternWeekly, Interval: 1, DaysOfWeek: []time.Weekday{time.Monday, time.Friday}},
			want: date(2024, 6, 7),
		},
		{
			// Friday with Mon+Fri selected: no later day this week, so wrap
			// the full two-week interval and land on Monday.
			name: "weekly wraps interval weeks to first selected day",
			last: date(2024, 6, 7),
			rule: Rule{Pattern: PatternWeekly, Interval: 2, DaysOfWeek: []time.Weekday{time.Monday, time.Friday}},
			want: date(2024, 6, 17),
		},
		{
			name: "weekly unsorted day set",
			last: date(2024, 6, 4),
			rule: Rule{Pattern: PatternWeekly, Interval: 1, DaysOfWeek: []time.Weekday{time.Saturday, time.Wednesday}},
			want: date(2024, 6, 5),
		},
		{
			name: "monthly simple preserves day",
			last: date(2024, 3, 15),
			rule: Rule{Pattern: PatternMonthly, Interval: 2},
			want: date(2024, 5, 15),
		},
		{
			name: "monthly specific day clamps to short month",
			last: date(2024, 1, 31),
			rule: Rule{Pattern: PatternMonthly, Interval: 1, DayOfMonth: 31},
			want: date(2024, 2, 29),
		},
		{
			name: "monthly specific day clamps in non-leap year",
			last: date(2023, 1, 31),
			rule: Rule{Pattern: PatternMonthly, Interval: 1, DayOfMonth: 31},
			want: date(2023, 2, 28),
		},
		{
			name: "monthly specific day restores after short month",
			last: date(2024, 2, 29),
			rule: Rule{Pattern: PatternMonthly, Interval: 1, DayOfMonth: 31},
			want: date(2024, 3, 31),
		},
		{
			name: "monthly nth weekday",
			last: date(2024, 6, 17),
			rule: Rule{Pattern: PatternMonthly, Interval: 1, WeekOfMonth: ptr(3), WeekdayOfMonth: ptr(time.Monday)},
			want: date(2024, 7, 15),
		},
		{
			name: "monthly last weekday",
			last: date(2024, 1, 29),
			rule: Rule{Pattern: PatternMonthly, Interval: 1, WeekOfMonth: ptr(WeekLast), WeekdayOfMonth: ptr(time.Monday)},
			want: date(2024, 2, 26),
		},
		{
			name: "yearly simple",
			last: date(2024, 3, 10),
			rule: Rule{Pattern: PatternYearly, Interval: 1},
			want: date(2025, 3, 10),
		},
		{
			name: "yearly with month override",
			last: date(2024, 3, 10),
			rule: Rule{Pattern: PatternYearly, Interval: 1, MonthOfYear: ptr(time.July)},
			want: date(2025, 7, 10),
		},
		{
			name: "yearly specific day in month",
			last: date(2024, 3, 10),
			rule: Rule{Pattern: PatternYearly, Interval: 1, MonthOfYear: ptr(time.July), DayOfMonth: 4},
			want: date(2025, 7, 4),
		},
		{
			name: "yearly fourth Thursday of November",
			last: date(2024, 11, 28),
			rule: Rule{Pattern: PatternYearly, Interval: 1, MonthOfYear: ptr(time.November), WeekOfMonth: ptr(4), WeekdayOfMonth: ptr(time.Thursday)},
			want: date(2025, 11, 27),
		},
		{
			name: "yearly leap day clamps",
			last: date(2024, 2, 29),
			rule: Rule{Pattern: PatternYearly, Interval: 1, MonthOfYear: ptr(time.February)},
			want: date(2025, 2, 28),
		},
		{
			name: "time of day is dropped",
			last: time.Date(2024, 6, 4, 18, 30, 0, 0, time.UTC),
			rule: Rule{Pattern: PatternDaily, Interval: 1},
			want: date(2024, 6, 5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.NextOccurrence(tt.last, tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// Pure function: a second call must agree exactly.
			again, err := engine.NextOccurrence(tt.last, tt.rule)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestEngine_NextOccurrence_Errors(t *testing.T) {
	engine := NewEngine(nil)

	_, err := engine.NextOccurrence(time.Time{}, Rule{Pattern: PatternDaily, Interval: 1})
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = engine.NextOccurrence(date(2024, 6, 4), Rule{Pattern: "fortnightly", Interval: 1})
	assert.ErrorIs(t, err, ErrUnknownPattern)
}

func TestEngine_IsDue(t *testing.T) {
	engine := NewEngine(nil)
	now := date(2024, 6, 10)

	tests := []struct {
		name      string
		last      mo.Option[time.Time]
		rule      Rule
		generated int
		want      bool
	}{
		{
			name: "no prior instance is always due",
			last: mo.None[time.Time](),
			rule: Rule{Pattern: PatternYearly, Interval: 5},
			want: true,
		},
		{
			name:      "occurrence cap reached",
			last:      mo.Some(date(2024, 6, 1)),
			rule:      Rule{Pattern: PatternDaily, Interval: 1, EndAfterOccurrences: 3},
			generated: 3,
			want:      false,
		},
		{
			name:      "occurrence cap not yet reached",
			last:      mo.Some(date(2024, 6, 1)),
			rule:      Rule{Pattern: PatternDaily, Interval: 1, EndAfterOccurrences: 3},
			generated: 2,
			want:      true,
		},
		{
			name: "candidate past end date",
			last: mo.Some(date(2024, 6, 1)),
			rule: Rule{Pattern: PatternMonthly, Interval: 1, EndDate: ptr(date(2024, 6, 15))},
			want: false,
		},
		{
			name: "due on the occurrence day itself",
			last: mo.Some(date(2024, 6, 9)),
			rule: Rule{Pattern: PatternDaily, Interval: 1},
			want: true,
		},
		{
			name: "due when the occurrence day has passed",
			last: mo.Some(date(2024, 6, 1)),
			rule: Rule{Pattern: PatternDaily, Interval: 1},
			want: true,
		},
		{
			name: "not yet due",
			last: mo.Some(date(2024, 6, 10)),
			rule: Rule{Pattern: PatternDaily, Interval: 1},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.IsDue(tt.last, tt.rule, now, tt.generated)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_IsDue_PropagatesEvaluationError(t *testing.T) {
	engine := NewEngine(nil)

	_, err := engine.IsDue(mo.Some(date(2024, 6, 1)), Rule{Pattern: "bogus", Interval: 1}, date(2024, 6, 10), 0)
	assert.ErrorIs(t, err, ErrUnknownPattern)
}
