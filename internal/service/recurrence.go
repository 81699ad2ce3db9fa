package service

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"taskmanager/internal/model"
)

// MaxOccurrences bounds a single expansion. A daily rule over two years hits
// the cap; anything wider is rejected instead of flooding the table.
const MaxOccurrences = 730

var (
	ErrTitleRequired      = errors.New("title is required")
	ErrTitleTooLong       = errors.New("title must be at most 200 characters")
	ErrEndBeforeStart     = errors.New("recurrence end date is before the start date")
	ErrTooManyOccurrences = fmt.Errorf("recurrence would generate more than %d occurrences", MaxOccurrences)
)

// Template carries the fields an interactive create request supplies before
// expansion. Tags are attached by the caller after resolving names once.
type Template struct {
	Title             string
	Description       string
	Priority          string
	ProjectID         *uint
	ParentTaskID      *uint
	RecurrenceRule    string
	StartDueDate      *time.Time
	RecurrenceEndDate *time.Time
	ReminderTime      *time.Time
}

// Expand turns a template into the ordered list of task rows to persist.
//
// The anchor occurrence at StartDueDate always exists. With a recognized
// rule and both dates present, further occurrences follow at
// daily/weekly/monthly/yearly steps while the cursor stays at or before the
// end date (the end date itself is included). A partial recurrence setup —
// no rule, or either date missing — degrades to the single anchor without
// an error. An end date before the start date and an expansion wider than
// MaxOccurrences are reported as errors.
//
// Monthly and yearly steps clamp to the last day of shorter months, keyed
// to the anchor's day: Jan 31 -> Feb 29 (leap) -> Mar 31 -> Apr 30.
func Expand(tmpl Template) ([]model.Task, error) {
	if tmpl.Title == "" {
		return nil, ErrTitleRequired
	}
	if utf8.RuneCountInString(tmpl.Title) > 200 {
		return nil, ErrTitleTooLong
	}

	anchor := taskFromTemplate(tmpl, tmpl.StartDueDate)
	anchor.ParentTaskID = tmpl.ParentTaskID

	if tmpl.RecurrenceRule == "" || tmpl.StartDueDate == nil || tmpl.RecurrenceEndDate == nil {
		return []model.Task{anchor}, nil
	}
	if tmpl.RecurrenceEndDate.Before(*tmpl.StartDueDate) {
		return nil, ErrEndBeforeStart
	}

	start := *tmpl.StartDueDate
	end := *tmpl.RecurrenceEndDate
	tasks := []model.Task{anchor}

	for step := 1; ; step++ {
		cursor, ok := advance(start, tmpl.RecurrenceRule, step)
		if !ok || cursor.After(end) {
			break
		}
		if len(tasks) >= MaxOccurrences {
			return nil, ErrTooManyOccurrences
		}
		due := cursor
		tasks = append(tasks, taskFromTemplate(tmpl, &due))
	}

	return tasks, nil
}

// advance returns the occurrence date step units after the anchor. Stepping
// from the anchor rather than the previous cursor keeps the day-of-month
// stable across short months. ok is false for unrecognized rules.
func advance(anchor time.Time, rule string, step int) (time.Time, bool) {
	switch rule {
	case model.RecurDaily:
		return anchor.AddDate(0, 0, step), true
	case model.RecurWeekly:
		return anchor.AddDate(0, 0, 7*step), true
	case model.RecurMonthly:
		return addMonthsClamped(anchor, step), true
	case model.RecurYearly:
		return addMonthsClamped(anchor, 12*step), true
	default:
		return time.Time{}, false
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	// Normalize the target month with day 1 so AddDate cannot overflow,
	// then clamp the anchor day to that month's length.
	first := time.Date(year, month, 1, hour, minute, sec, t.Nanosecond(), t.Location())
	first = first.AddDate(0, months, 0)
	if last := daysInMonth(first.Month(), first.Year()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(month time.Month, year int) int {
	// Move to next month, roll back a day.
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)
	return lastOfMonth.Day()
}

func taskFromTemplate(tmpl Template, due *time.Time) model.Task {
	priority := tmpl.Priority
	if priority == "" {
		priority = model.PriorityNone
	}
	return model.Task{
		Title:             tmpl.Title,
		Description:       tmpl.Description,
		Priority:          priority,
		ProjectID:         tmpl.ProjectID,
		Status:            model.StatusPending,
		DueDate:           due,
		RecurrenceRule:    tmpl.RecurrenceRule,
		RecurrenceEndDate: tmpl.RecurrenceEndDate,
		ReminderTime:      tmpl.ReminderTime,
	}
}
