package recurrence

import (
	"time"

	"github.com/samber/mo"
)

// previewIterationCeiling caps the preview loop so contradictory
// configurations (an end date before any occurrence, a zero-progress rule)
// terminate instead of spinning.
const previewIterationCeiling = 100

// Preview is a bounded look-ahead over a rule's future occurrences.
type Preview struct {
	// Dates holds up to the requested number of future occurrence dates.
	Dates []time.Time
	// HasMore reports whether the sequence could continue past Dates.
	HasMore bool
	// TotalPossible is the rule's occurrence cap, absent when unbounded.
	TotalPossible mo.Option[int]
}

// NextOccurrences walks the occurrence chain from start and collects up to
// count dates that fall on or after now's calendar day. Past occurrences
// are computed to keep the chain aligned but filtered from the result. The
// walk stops early when an end condition is reached or the iteration
// ceiling trips. The call is read-only and repeatable: identical inputs
// yield identical previews.
func (e *Engine) NextOccurrences(start time.Time, rule Rule, count int, now time.Time) (Preview, error) {
	p := Preview{TotalPossible: mo.None[int]()}
	if rule.EndAfterOccurrences > 0 {
		p.TotalPossible = mo.Some(rule.EndAfterOccurrences)
	}
	if count <= 0 {
		p.HasMore = true
		return p, nil
	}

	today := StartOfDay(now)
	cur := start
	produced := 0
	for i := 0; i < previewIterationCeiling; i++ {
		if rule.EndAfterOccurrences > 0 && produced >= rule.EndAfterOccurrences {
			return p, nil
		}
		next, err := e.NextOccurrence(cur, rule)
		if err != nil {
			return Preview{}, err
		}
		if rule.EndDate != nil && next.After(StartOfDay(*rule.EndDate)) {
			return p, nil
		}
		cur = next
		produced++
		if next.Before(today) {
			continue
		}
		p.Dates = append(p.Dates, next)
		if len(p.Dates) >= count {
			p.HasMore = rule.EndAfterOccurrences == 0 || produced < rule.EndAfterOccurrences
			return p, nil
		}
	}
	// Ceiling hit; the sequence was not proven finished.
	p.HasMore = true
	return p, nil
}
