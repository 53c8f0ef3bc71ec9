package recurrence

import "time"

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay reduces day to the last valid day of the given month when the
// month is shorter than the requested day.
func ClampDay(year int, month time.Month, day int) int {
	if max := DaysInMonth(year, month); day > max {
		return max
	}
	return day
}

// AddUnits shifts t by n calendar units of the given pattern. Month and
// year additions use Go's normalizing arithmetic (Jan 31 + 1 month lands in
// early March); callers that need clamping apply it themselves.
func AddUnits(t time.Time, pattern Pattern, n int) time.Time {
	switch pattern {
	case PatternWeekly:
		return t.AddDate(0, 0, 7*n)
	case PatternMonthly:
		return t.AddDate(0, n, 0)
	case PatternYearly:
		return t.AddDate(n, 0, 0)
	default:
		return t.AddDate(0, 0, n)
	}
}

// NthWeekdayOfMonth advances ref by monthsAhead months, then returns the
// occurrence-th weekday of that month. occurrence WeekLast (0) selects the
// final matching weekday. If the requested occurrence does not exist (a
// "5th Monday" in a four-Monday month), the search rolls forward one month
// at a time until a month that has one; it never fails.
func NthWeekdayOfMonth(ref time.Time, occurrence int, weekday time.Weekday, monthsAhead int) time.Time {
	first := time.Date(ref.Year(), ref.Month()+time.Month(monthsAhead), 1, 0, 0, 0, 0, ref.Location())

	if occurrence == WeekLast {
		last := first.AddDate(0, 1, -1)
		back := (int(last.Weekday()) - int(weekday) + 7) % 7
		return last.AddDate(0, 0, -back)
	}

	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	day := 1 + offset + 7*(occurrence-1)
	if day > DaysInMonth(first.Year(), first.Month()) {
		return NthWeekdayOfMonth(ref, occurrence, weekday, monthsAhead+1)
	}
	return first.AddDate(0, 0, day-1)
}
