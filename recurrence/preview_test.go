package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_NextOccurrences(t *testing.T) {
	engine := NewEngine(nil)
	now := date(2024, 6, 10)

	t.Run("collects requested number of future dates", func(t *testing.T) {
		p, err := engine.NextOccurrences(date(2024, 6, 10), Rule{Pattern: PatternWeekly, Interval: 1}, 3, now)
		require.NoError(t, err)
		assert.Equal(t, []time.Time{date(2024, 6, 17), date(2024, 6, 24), date(2024, 7, 1)}, p.Dates)
		assert.True(t, p.HasMore)
		assert.True(t, p.TotalPossible.IsAbsent(), "unbounded rule has no total")
	})

	t.Run("filters past occurrences but keeps the chain aligned", func(t *testing.T) {
		// Started months back on the 31st: past dates are walked through so
		// the upcoming dates stay on the rule's own sequence.
		p, err := engine.NextOccurrences(date(2024, 1, 31), Rule{Pattern: PatternMonthly, Interval: 1, DayOfMonth: 31}, 2, now)
		require.NoError(t, err)
		assert.Equal(t, []time.Time{date(2024, 6, 30), date(2024, 7, 31)}, p.Dates)
	})

	t.Run("occurrence cap truncates and reports total", func(t *testing.T) {
		p, err := engine.NextOccurrences(date(2024, 6, 10), Rule{Pattern: PatternDaily, Interval: 1, EndAfterOccurrences: 2}, 5, now)
		require.NoError(t, err)
		assert.Equal(t, []time.Time{date(2024, 6, 11), date(2024, 6, 12)}, p.Dates)
		assert.False(t, p.HasMore)
		assert.Equal(t, 2, p.TotalPossible.MustGet())
	})

	t.Run("cap exhausted exactly at requested count", func(t *testing.T) {
		p, err := engine.NextOccurrences(date(2024, 6, 10), Rule{Pattern: PatternDaily, Interval: 1, EndAfterOccurrences: 2}, 2, now)
		require.NoError(t, err)
		assert.Len(t, p.Dates, 2)
		assert.False(t, p.HasMore)
	})

	t.Run("end date truncates", func(t *testing.T) {
		p, err := engine.NextOccurrences(date(2024, 6, 10), Rule{Pattern: PatternDaily, Interval: 1, EndDate: ptr(date(2024, 6, 12))}, 5, now)
		require.NoError(t, err)
		assert.Equal(t, []time.Time{date(2024, 6, 11), date(2024, 6, 12)}, p.Dates)
		assert.False(t, p.HasMore)
	})

	t.Run("end date in the past terminates with no dates", func(t *testing.T) {
		p, err := engine.NextOccurrences(date(2024, 6, 10), Rule{Pattern: PatternDaily, Interval: 1, EndDate: ptr(date(2024, 1, 1))}, 5, now)
		require.NoError(t, err)
		assert.Empty(t, p.Dates)
		assert.False(t, p.HasMore)
	})

	t.Run("iteration ceiling stops a rule that cannot reach the future", func(t *testing.T) {
		// A start far in the past with a short count never reaches "now"
		// within the ceiling; the preview must terminate regardless.
		p, err := engine.NextOccurrences(date(2014, 1, 1), Rule{Pattern: PatternDaily, Interval: 1}, 5, now)
		require.NoError(t, err)
		assert.Empty(t, p.Dates)
	})

	t.Run("idempotent", func(t *testing.T) {
		rule := Rule{Pattern: PatternWeekly, Interval: 2, DaysOfWeek: []time.Weekday{time.Monday}}
		a, err := engine.NextOccurrences(date(2024, 6, 1), rule, 4, now)
		require.NoError(t, err)
		b, err := engine.NextOccurrences(date(2024, 6, 1), rule, 4, now)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("evaluation error surfaces", func(t *testing.T) {
		_, err := engine.NextOccurrences(date(2024, 6, 10), Rule{Pattern: "bogus", Interval: 1}, 3, now)
		assert.ErrorIs(t, err, ErrUnknownPattern)
	})
}
