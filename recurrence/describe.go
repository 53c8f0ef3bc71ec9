package recurrence

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Describe renders a rule as a short human-readable summary, e.g.
// "every 2 weeks on Mon, Fri" or "every month on the last Friday, 5 times".
func Describe(rule Rule) string {
	interval := rule.Interval
	if interval < 1 {
		interval = 1
	}

	var b strings.Builder
	switch rule.Pattern {
	case PatternWeekly:
		b.WriteString(every(interval, "week"))
		if len(rule.DaysOfWeek) > 0 {
			b.WriteString(" on ")
			b.WriteString(weekdayList(rule.DaysOfWeek))
		}
	case PatternMonthly:
		b.WriteString(every(interval, "month"))
		b.WriteString(subModeSuffix(rule))
	case PatternYearly:
		b.WriteString(every(interval, "year"))
		if rule.MonthOfYear != nil {
			fmt.Fprintf(&b, " in %s", rule.MonthOfYear.String())
		}
		b.WriteString(subModeSuffix(rule))
	default:
		// Daily, plus the legacy missing-pattern fallback.
		b.WriteString(every(interval, "day"))
	}

	if rule.EndDate != nil {
		fmt.Fprintf(&b, ", until %s", rule.EndDate.Format("2006-01-02"))
	} else if rule.EndAfterOccurrences > 0 {
		fmt.Fprintf(&b, ", %d times", rule.EndAfterOccurrences)
	}
	return b.String()
}

func every(interval int, unit string) string {
	if interval == 1 {
		return "every " + unit
	}
	return fmt.Sprintf("every %d %ss", interval, unit)
}

func subModeSuffix(rule Rule) string {
	switch {
	case rule.nthWeekdayMode():
		return fmt.Sprintf(" on the %s %s", ordinalWeek(*rule.WeekOfMonth), rule.WeekdayOfMonth.String())
	case rule.DayOfMonth > 0:
		return fmt.Sprintf(" on day %d", rule.DayOfMonth)
	default:
		return ""
	}
}

func ordinalWeek(week int) string {
	switch week {
	case WeekLast:
		return "last"
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", week)
	}
}

func weekdayList(days []time.Weekday) string {
	days = slices.Clone(days)
	slices.Sort(days)
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()[:3]
	}
	return strings.Join(names, ", ")
}
