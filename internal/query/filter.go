package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/dailyfocus/dailyfocus/internal/dates"
	"github.com/dailyfocus/dailyfocus/internal/schema"
)

// Period selects a window of calendar days relative to a reference date.
type Period string

const (
	PeriodAll     Period = "all"
	PeriodToday   Period = "today"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
	PeriodCustom  Period = "custom"
)

// Range is a Period plus the explicit bounds used by PeriodCustom. A zero
// bound leaves that side open.
type Range struct {
	Period Period
	Start  schema.Date
	End    schema.Date
}

// All is the unbounded range.
var All = Range{Period: PeriodAll}

// Custom returns an inclusive [start, end] range.
func Custom(start, end schema.Date) Range {
	return Range{Period: PeriodCustom, Start: start, End: end}
}

// ParseRange builds a Range from a period name and, for custom ranges,
// YYYY-MM-DD bounds. An empty period is PeriodAll.
func ParseRange(period, from, to string) (Range, error) {
	p := Period(strings.ToLower(strings.TrimSpace(period)))
	switch p {
	case "":
		return All, nil
	case PeriodAll, PeriodToday, PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return Range{Period: p}, nil
	case PeriodCustom:
		start, err := schema.ParseDate(from)
		if err != nil {
			return Range{}, err
		}
		end, err := schema.ParseDate(to)
		if err != nil {
			return Range{}, err
		}
		if !start.IsZero() && !end.IsZero() && end.Before(start) {
			return Range{}, fmt.Errorf("range end %s is before start %s", end, start)
		}
		return Custom(start, end), nil
	default:
		return Range{}, fmt.Errorf("unknown period %q", period)
	}
}

// Bounds resolves r against now. Weeks run Monday through Sunday.
func (r Range) Bounds(now time.Time) (start, end schema.Date) {
	today := dates.Today(now)
	switch r.Period {
	case PeriodToday:
		return today, today
	case PeriodWeek:
		return dates.WeekStart(today), dates.WeekEnd(today)
	case PeriodMonth:
		first := schema.NewDate(today.Year, today.Month, 1)
		return first, first.AddMonths(1).AddDays(-1)
	case PeriodQuarter:
		q := (int(today.Month) - 1) / 3
		first := schema.NewDate(today.Year, time.Month(q*3+1), 1)
		return first, first.AddMonths(3).AddDays(-1)
	case PeriodYear:
		return schema.NewDate(today.Year, time.January, 1), schema.NewDate(today.Year, time.December, 31)
	case PeriodCustom:
		return r.Start, r.End
	default:
		return schema.Date{}, schema.Date{}
	}
}

// Contains reports whether d falls inside r. The zero date is only contained
// in an unbounded range.
func (r Range) Contains(d schema.Date, now time.Time) bool {
	start, end := r.Bounds(now)
	if start.IsZero() && end.IsZero() {
		return true
	}
	if d.IsZero() {
		return false
	}
	if !start.IsZero() && d.Before(start) {
		return false
	}
	if !end.IsZero() && d.After(end) {
		return false
	}
	return true
}

// Field picks which date of a task a range is matched against.
type Field string

const (
	FieldCreated      Field = "created"
	FieldDue          Field = "due"
	FieldDueOrCreated Field = "due-or-created"
)

// ParseField validates a date field name. "" means FieldCreated.
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FieldCreated, nil
	case FieldCreated, FieldDue, FieldDueOrCreated:
		return f, nil
	default:
		return "", fmt.Errorf("unknown date field %q", s)
	}
}

// DateOf returns the date of t selected by f, in loc.
func DateOf(t *schema.Task, f Field, loc *time.Location) schema.Date {
	switch f {
	case FieldDue:
		return t.DueDate
	case FieldDueOrCreated:
		if !t.DueDate.IsZero() {
			return t.DueDate
		}
		return createdDate(t, loc)
	default:
		return createdDate(t, loc)
	}
}

func createdDate(t *schema.Task, loc *time.Location) schema.Date {
	if t.CreatedAt.IsZero() {
		return schema.Date{}
	}
	return schema.DateOf(t.CreatedAt.In(loc))
}

// InRange keeps the tasks whose field date falls inside r.
func InRange(tasks []*schema.Task, r Range, f Field, now time.Time) []*schema.Task {
	return filter(tasks, func(t *schema.Task) bool {
		return r.Contains(DateOf(t, f, now.Location()), now)
	})
}

// Search keeps tasks whose title or description contains q, ignoring case.
// An empty query keeps everything.
func Search(tasks []*schema.Task, q string) []*schema.Task {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return filter(tasks, func(*schema.Task) bool { return true })
	}
	return filter(tasks, func(t *schema.Task) bool {
		return strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q)
	})
}

// Status is the statistics drill-down filter.
type Status string

const (
	StatusAll       Status = "all"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
)

// ParseStatus validates a status name. "" means StatusAll.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return StatusAll, nil
	case StatusAll, StatusPending, StatusCompleted, StatusOverdue:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// ByStatus keeps the tasks matching s. Overdue uses the end-of-day rule of
// dates.IsOverdue.
func ByStatus(tasks []*schema.Task, s Status, now time.Time) []*schema.Task {
	return filter(tasks, func(t *schema.Task) bool {
		switch s {
		case StatusPending:
			return !t.Completed
		case StatusCompleted:
			return t.Completed
		case StatusOverdue:
			return dates.IsOverdue(t, now)
		default:
			return true
		}
	})
}

// View is a list selector of the all-tasks screen.
type View string

const (
	ViewAll       View = "all"
	ViewActive    View = "active"
	ViewCompleted View = "completed"
	ViewInbox     View = "inbox"
	ViewOrganized View = "organized"
	ViewDeleted   View = "deleted"
)

// ParseView validates a view name. "" means ViewAll.
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return ViewAll, nil
	case ViewAll, ViewActive, ViewCompleted, ViewInbox, ViewOrganized, ViewDeleted:
		return v, nil
	default:
		return "", fmt.Errorf("unknown view %q", s)
	}
}

// ByView keeps the tasks shown under v. Only ViewAll and ViewDeleted include
// soft-deleted tasks.
func ByView(tasks []*schema.Task, v View) []*schema.Task {
	return filter(tasks, func(t *schema.Task) bool {
		switch v {
		case ViewActive:
			return !t.Deleted && !t.Completed
		case ViewCompleted:
			return !t.Deleted && t.Completed
		case ViewInbox:
			return t.View() == schema.ViewInbox
		case ViewOrganized:
			return t.View() == schema.ViewQuadrant
		case ViewDeleted:
			return t.Deleted
		default:
			return true
		}
	})
}

// ByTag keeps tasks carrying tag. An empty tag keeps everything.
func ByTag(tasks []*schema.Task, tag string) []*schema.Task {
	return filter(tasks, func(t *schema.Task) bool {
		return tag == "" || t.Tag == tag
	})
}

// CalendarMode picks which date places a task on the calendar.
type CalendarMode string

const (
	CalendarDue     CalendarMode = "due"
	CalendarCreated CalendarMode = "created"
)

// OnDate returns the live tasks the calendar shows on day d.
func OnDate(tasks []*schema.Task, d schema.Date, mode CalendarMode, loc *time.Location) []*schema.Task {
	field := FieldCreated
	if mode == CalendarDue {
		field = FieldDue
	}
	return filter(tasks, func(t *schema.Task) bool {
		if t.Deleted {
			return false
		}
		got := DateOf(t, field, loc)
		return !got.IsZero() && got.Equal(d)
	})
}

func filter(tasks []*schema.Task, keep func(*schema.Task) bool) []*schema.Task {
	out := make([]*schema.Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
