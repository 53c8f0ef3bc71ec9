package recurrence

import (
	"fmt"
	"time"
)

// Pattern is the base cadence of a recurrence rule.
type Pattern string

const (
	PatternDaily   Pattern = "daily"
	PatternWeekly  Pattern = "weekly"
	PatternMonthly Pattern = "monthly"
	PatternYearly  Pattern = "yearly"
)

// WeekLast selects the last matching weekday of the month instead of a
// numbered occurrence.
const WeekLast = 0

// Rule describes when new instances of a recurring template are due.
// All dates are plain local calendar days; times of day are ignored.
//
// The monthly/yearly sub-modes (DayOfMonth vs. WeekOfMonth+WeekdayOfMonth)
// are mutually exclusive. Use SetDayOfMonth / SetNthWeekday to switch modes;
// they clear the other mode's fields.
type Rule struct {
	Pattern  Pattern `json:"pattern"`
	Interval int     `json:"interval"`

	// Weekly only. Empty means a plain "every N weeks" jump from the last
	// occurrence with no weekday constraint.
	DaysOfWeek []time.Weekday `json:"daysOfWeek,omitempty"`

	// Monthly and yearly sub-modes. DayOfMonth is clamped to the target
	// month's length at evaluation time. WeekOfMonth is 1-5, or WeekLast
	// for the final matching weekday of the month.
	DayOfMonth     int           `json:"dayOfMonth,omitempty"`
	WeekOfMonth    *int          `json:"weekOfMonth,omitempty"`
	WeekdayOfMonth *time.Weekday `json:"weekdayOfMonth,omitempty"`

	// Yearly only. Nil preserves the reference date's month.
	MonthOfYear *time.Month `json:"monthOfYear,omitempty"`

	// End conditions, mutually exclusive. Zero values mean unbounded.
	EndDate             *time.Time `json:"endDate,omitempty"`
	EndAfterOccurrences int        `json:"endAfterOccurrences,omitempty"`
}

// SetDayOfMonth switches the rule into specific-date mode, clearing any
// nth-weekday configuration.
func (r *Rule) SetDayOfMonth(day int) {
	r.DayOfMonth = day
	r.WeekOfMonth = nil
	r.WeekdayOfMonth = nil
}

// SetNthWeekday switches the rule into nth-weekday mode, clearing any
// specific-date configuration. week is 1-5 or WeekLast.
func (r *Rule) SetNthWeekday(week int, weekday time.Weekday) {
	r.WeekOfMonth = &week
	r.WeekdayOfMonth = &weekday
	r.DayOfMonth = 0
}

// nthWeekdayMode reports whether both nth-weekday fields are present.
func (r *Rule) nthWeekdayMode() bool {
	return r.WeekOfMonth != nil && r.WeekdayOfMonth != nil
}

// Validate checks structural invariants of the rule. A missing pattern is
// accepted (legacy rules fall back to daily at evaluation time); any other
// unrecognized pattern is rejected.
func (r *Rule) Validate() error {
	switch r.Pattern {
	case "", PatternDaily, PatternWeekly, PatternMonthly, PatternYearly:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPattern, r.Pattern)
	}
	if r.Interval < 1 {
		return fmt.Errorf("interval must be >= 1, got %d", r.Interval)
	}
	for _, d := range r.DaysOfWeek {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("day of week out of range: %d", d)
		}
	}
	if r.DayOfMonth < 0 || r.DayOfMonth > 31 {
		return fmt.Errorf("day of month out of range: %d", r.DayOfMonth)
	}
	if (r.WeekOfMonth == nil) != (r.WeekdayOfMonth == nil) {
		return fmt.Errorf("weekOfMonth and weekdayOfMonth must be set together")
	}
	if r.WeekOfMonth != nil {
		if *r.WeekOfMonth < WeekLast || *r.WeekOfMonth > 5 {
			return fmt.Errorf("week of month out of range: %d", *r.WeekOfMonth)
		}
		if *r.WeekdayOfMonth < time.Sunday || *r.WeekdayOfMonth > time.Saturday {
			return fmt.Errorf("weekday of month out of range: %d", *r.WeekdayOfMonth)
		}
		if r.DayOfMonth != 0 {
			return fmt.Errorf("dayOfMonth and weekOfMonth modes are mutually exclusive")
		}
	}
	if r.MonthOfYear != nil && (*r.MonthOfYear < time.January || *r.MonthOfYear > time.December) {
		return fmt.Errorf("month of year out of range: %d", *r.MonthOfYear)
	}
	if r.EndAfterOccurrences < 0 {
		return fmt.Errorf("endAfterOccurrences must be >= 0, got %d", r.EndAfterOccurrences)
	}
	if r.EndDate != nil && r.EndAfterOccurrences > 0 {
		return fmt.Errorf("endDate and endAfterOccurrences are mutually exclusive")
	}
	return nil
}
