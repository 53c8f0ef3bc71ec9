// Package recurrence computes occurrence dates for recurring task
// templates: the next occurrence after a reference date, whether a new
// instance is due, and bounded previews of upcoming dates.
package recurrence

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/mo"
)

var (
	// ErrUnknownPattern signals a pattern value outside the defined set.
	// A missing (empty) pattern is not an error; it falls back to daily.
	ErrUnknownPattern = errors.New("unknown recurrence pattern")
	// ErrInvalidDate signals a zero reference date.
	ErrInvalidDate = errors.New("invalid reference date")
)

// Engine evaluates recurrence rules. All methods are pure functions of
// their inputs; the logger only receives diagnostics for legacy rules.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an evaluation engine. A nil logger discards diagnostics.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{logger: logger}
}

// NextOccurrence computes the single occurrence date following last under
// the given rule. The result is normalized to start of day in last's
// location. Identical inputs always yield identical results.
func (e *Engine) NextOccurrence(last time.Time, rule Rule) (time.Time, error) {
	if last.IsZero() {
		return time.Time{}, ErrInvalidDate
	}
	interval := rule.Interval
	if interval < 1 {
		interval = 1
	}
	last = StartOfDay(last)

	pattern := rule.Pattern
	if pattern == "" {
		// Legacy rules predate the pattern field; treat them as daily
		// rather than refusing to evaluate.
		e.logger.Warn("recurrence rule has no pattern, falling back to daily",
			"interval", interval)
		pattern = PatternDaily
	}

	var next time.Time
	switch pattern {
	case PatternDaily:
		next = last.AddDate(0, 0, interval)
	case PatternWeekly:
		next = nextWeekly(last, rule, interval)
	case PatternMonthly:
		next = nextMonthly(last, rule, interval)
	case PatternYearly:
		next = nextYearly(last, rule, interval)
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownPattern, rule.Pattern)
	}
	return StartOfDay(next), nil
}

// nextWeekly handles both plain "every N weeks" and specific-weekday rules.
// When a selected day still lies ahead in the current week, the jump is to
// that day directly; the interval multiplier only applies when wrapping to
// the next week-cycle.
func nextWeekly(last time.Time, rule Rule, interval int) time.Time {
	if len(rule.DaysOfWeek) == 0 {
		return last.AddDate(0, 0, 7*interval)
	}
	days := slices.Clone(rule.DaysOfWeek)
	slices.Sort(days)
	for _, d := range days {
		if d > last.Weekday() {
			return last.AddDate(0, 0, int(d-last.Weekday()))
		}
	}
	// Wrap: land on the first selected day of the week interval weeks out.
	weekStart := last.AddDate(0, 0, -int(last.Weekday()))
	return weekStart.AddDate(0, 0, 7*interval+int(days[0]))
}

func nextMonthly(last time.Time, rule Rule, interval int) time.Time {
	switch {
	case rule.nthWeekdayMode():
		return NthWeekdayOfMonth(last, *rule.WeekOfMonth, *rule.WeekdayOfMonth, interval)
	case rule.DayOfMonth > 0:
		first := time.Date(last.Year(), last.Month()+time.Month(interval), 1, 0, 0, 0, 0, last.Location())
		day := ClampDay(first.Year(), first.Month(), rule.DayOfMonth)
		return first.AddDate(0, 0, day-1)
	default:
		return AddUnits(last, PatternMonthly, interval)
	}
}

func nextYearly(last time.Time, rule Rule, interval int) time.Time {
	year := last.Year() + interval
	month := last.Month()
	if rule.MonthOfYear != nil {
		month = *rule.MonthOfYear
	}
	switch {
	case rule.nthWeekdayMode():
		ref := time.Date(year, month, 1, 0, 0, 0, 0, last.Location())
		return NthWeekdayOfMonth(ref, *rule.WeekOfMonth, *rule.WeekdayOfMonth, 0)
	case rule.DayOfMonth > 0:
		day := ClampDay(year, month, rule.DayOfMonth)
		return time.Date(year, month, day, 0, 0, 0, 0, last.Location())
	default:
		if rule.MonthOfYear == nil {
			return AddUnits(last, PatternYearly, interval)
		}
		day := ClampDay(year, month, last.Day())
		return time.Date(year, month, day, 0, 0, 0, 0, last.Location())
	}
}

// IsDue decides whether a template should generate a new instance now.
// last is the reference date of the most recent instance (absent when none
// exists yet, which is always due), and generated is the count of instances
// created so far, checked against the occurrence cap.
func (e *Engine) IsDue(last mo.Option[time.Time], rule Rule, now time.Time, generated int) (bool, error) {
	lastDate, ok := last.Get()
	if !ok {
		return true, nil
	}
	if rule.EndAfterOccurrences > 0 && generated >= rule.EndAfterOccurrences {
		return false, nil
	}
	next, err := e.NextOccurrence(lastDate, rule)
	if err != nil {
		return false, err
	}
	if rule.EndDate != nil && next.After(StartOfDay(*rule.EndDate)) {
		return false, nil
	}
	// Due as soon as the occurrence's calendar day has arrived or passed,
	// so a check missed on the due date still fires on the next one.
	return !StartOfDay(now).Before(next), nil
}
