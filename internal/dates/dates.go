// Package dates implements the calendar rules of DailyFocus: symbolic due-date
// codes, overdue detection and the postponement target with its evening
// cutover.
//
// All functions are pure. "Today" is always derived from the now argument in
// now's location.
package dates

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dailyfocus/dailyfocus/internal/schema"
)

// CutoverHour is the local hour from which "postpone to today" targets
// tomorrow instead.
const CutoverHour = 18

// Code is a symbolic due-date choice.
type Code string

const (
	CodeNone       Code = "none"
	CodeToday      Code = "today"
	CodeTomorrow   Code = "tomorrow"
	CodeThisSunday Code = "thisSunday"
	CodeNextMonday Code = "nextMonday"
	CodeNextWeek   Code = "nextWeek"
	CodeNextMonth  Code = "nextMonth"
	CodeCustom     Code = "custom"
)

// Codes lists every accepted code.
func Codes() []Code {
	return []Code{CodeNone, CodeToday, CodeTomorrow, CodeThisSunday, CodeNextMonday, CodeNextWeek, CodeNextMonth, CodeCustom}
}

var (
	// ErrUnknownCode is returned by DueDate for an unrecognized code.
	ErrUnknownCode = errors.New("unknown due date code")
	// ErrUnparsableDate is returned when a custom date cannot be understood.
	ErrUnparsableDate = errors.New("could not understand date")
)

// Today returns the calendar date of now.
func Today(now time.Time) schema.Date {
	return schema.DateOf(now)
}

// DueDate maps a symbolic code to a calendar date. An empty code or "none"
// yields the zero date. For "custom", custom may be YYYY-MM-DD or a phrase
// such as "next friday" or "in 3 days".
func DueDate(code Code, custom string, now time.Time) (schema.Date, error) {
	today := Today(now)
	switch code {
	case "", CodeNone:
		return schema.Date{}, nil
	case CodeToday:
		return today, nil
	case CodeTomorrow:
		return today.AddDays(1), nil
	case CodeThisSunday:
		return NextWeekday(today, time.Sunday), nil
	case CodeNextMonday:
		return NextWeekday(today, time.Monday), nil
	case CodeNextWeek:
		return today.AddDays(7), nil
	case CodeNextMonth:
		return today.AddMonths(1), nil
	case CodeCustom:
		return ParseCustom(custom, now)
	default:
		return schema.Date{}, fmt.Errorf("%w: %q", ErrUnknownCode, code)
	}
}

// NextWeekday returns the next occurrence of day strictly after from.
func NextWeekday(from schema.Date, day time.Weekday) schema.Date {
	distance := int(day) - int(from.Weekday())
	if distance <= 0 {
		distance += 7
	}
	return from.AddDays(distance)
}

// IsOverdue reports whether an open task's due date ended before now.
func IsOverdue(task *schema.Task, now time.Time) bool {
	if task == nil || task.DueDate.IsZero() || task.Completed {
		return false
	}
	return task.DueDate.EndOfDay(now.Location()).Before(now)
}

// OverdueDays returns how many whole days an overdue task is late, or 0.
func OverdueDays(task *schema.Task, now time.Time) int {
	if !IsOverdue(task, now) {
		return 0
	}
	return Today(now).DaysSince(task.DueDate)
}

// PostponeTarget computes the due date a postponement by days would move due
// to. days == 0 means "to today", or tomorrow once the local hour reaches
// CutoverHour. It reports false when due is unset or days is negative.
func PostponeTarget(due schema.Date, days int, now time.Time) (schema.Date, bool) {
	if due.IsZero() || days < 0 {
		return schema.Date{}, false
	}
	if days == 0 {
		today := Today(now)
		if now.Hour() >= CutoverHour {
			return today.AddDays(1), true
		}
		return today, true
	}
	return due.AddDays(days), true
}

// WeekStart returns the Monday of d's week.
func WeekStart(d schema.Date) schema.Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// WeekEnd returns the Sunday of d's week.
func WeekEnd(d schema.Date) schema.Date {
	return WeekStart(d).AddDays(6)
}

// DaysLeft is the goal countdown: whole days until due rounded up, measured
// from now to midnight of due. It reports false when due is unset. A negative
// count means the goal has expired.
func DaysLeft(due schema.Date, now time.Time) (int, bool) {
	if due.IsZero() {
		return 0, false
	}
	diff := due.Time(now.Location()).Sub(now).Hours() / 24
	return int(math.Ceil(diff)), true
}

// ParseCode accepts the canonical code names case-insensitively.
func ParseCode(s string) (Code, error) {
	s = strings.TrimSpace(s)
	for _, c := range Codes() {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCode, s)
}
