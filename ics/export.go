// Package ics renders recurring task templates as an iCalendar feed so
// they can be subscribed to from a calendar client.
package ics

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"matrixtask/recurrence"
	"matrixtask/task"
)

const icsDateLayout = "20060102"

// ExportTemplates builds a VCALENDAR with one all-day VEVENT per recurring
// template. Templates without a due date are skipped: the event needs a
// concrete start for the RRULE to anchor to. Non-template tasks in the
// input are ignored.
func ExportTemplates(tasks []*task.Task, now time.Time) (*ical.Calendar, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, "-//matrixtask//Template Export//EN")
	cal.Props.SetText(ical.PropVersion, "2.0")

	for _, t := range tasks {
		if !t.IsRecurring() || t.DueDate == nil {
			continue
		}
		event, err := templateEvent(t, now)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", t.ID, err)
		}
		cal.Children = append(cal.Children, event.Component)
	}
	return cal, nil
}

func templateEvent(t *task.Task, now time.Time) (*ical.Event, error) {
	rruleStr, err := EncodeRule(*t.Recurrence)
	if err != nil {
		return nil, err
	}

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, fmt.Sprintf("template-%s@matrixtask", t.ID))
	event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	event.Props.SetText(ical.PropSummary, t.Title)
	if t.Description != "" {
		event.Props.SetText(ical.PropDescription, t.Description)
	}
	if len(t.Tags) > 0 {
		event.Props.SetText(ical.PropCategories, strings.Join(t.Tags, ","))
	}

	start := recurrence.StartOfDay(*t.DueDate)
	startProp := ical.NewProp(ical.PropDateTimeStart)
	startProp.SetValueType(ical.ValueDate)
	startProp.Value = start.Format(icsDateLayout)
	event.Props.Set(startProp)

	endProp := ical.NewProp(ical.PropDateTimeEnd)
	endProp.SetValueType(ical.ValueDate)
	endProp.Value = start.AddDate(0, 0, 1).Format(icsDateLayout)
	event.Props.Set(endProp)

	// RRULE is a RECUR value, not TEXT: SetText would escape the
	// semicolons and emit an invalid property.
	rruleProp := ical.NewProp(ical.PropRecurrenceRule)
	rruleProp.Value = rruleStr
	event.Props.Set(rruleProp)
	return event, nil
}

// EncodeRule translates a rule into an RFC 5545 RRULE value (without the
// "RRULE:" prefix).
func EncodeRule(r recurrence.Rule) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	opt := rrule.ROption{Interval: r.Interval}

	switch r.Pattern {
	case recurrence.PatternWeekly:
		opt.Freq = rrule.WEEKLY
		for _, d := range r.DaysOfWeek {
			opt.Byweekday = append(opt.Byweekday, rruleWeekday(d))
		}
	case recurrence.PatternMonthly:
		opt.Freq = rrule.MONTHLY
		applySubMode(&opt, r)
	case recurrence.PatternYearly:
		opt.Freq = rrule.YEARLY
		if r.MonthOfYear != nil {
			opt.Bymonth = []int{int(*r.MonthOfYear)}
		}
		applySubMode(&opt, r)
	default:
		// Daily, including the legacy missing-pattern fallback.
		opt.Freq = rrule.DAILY
	}

	if r.EndDate != nil {
		opt.Until = recurrence.StartOfDay(*r.EndDate).UTC()
	}
	if r.EndAfterOccurrences > 0 {
		opt.Count = r.EndAfterOccurrences
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return "", fmt.Errorf("encode rrule: %w", err)
	}
	return rule.String(), nil
}

func applySubMode(opt *rrule.ROption, r recurrence.Rule) {
	switch {
	case r.WeekOfMonth != nil && r.WeekdayOfMonth != nil:
		nth := *r.WeekOfMonth
		if nth == recurrence.WeekLast {
			nth = -1
		}
		wd := rruleWeekday(*r.WeekdayOfMonth)
		opt.Byweekday = []rrule.Weekday{wd.Nth(nth)}
	case r.DayOfMonth > 0:
		opt.Bymonthday = []int{r.DayOfMonth}
	}
}

func rruleWeekday(d time.Weekday) rrule.Weekday {
	switch d {
	case time.Monday:
		return rrule.MO
	case time.Tuesday:
		return rrule.TU
	case time.Wednesday:
		return rrule.WE
	case time.Thursday:
		return rrule.TH
	case time.Friday:
		return rrule.FR
	case time.Saturday:
		return rrule.SA
	default:
		return rrule.SU
	}
}
