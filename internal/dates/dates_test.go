package dates

import (
	"errors"
	"testing"
	"time"

	"github.com/dailyfocus/dailyfocus/internal/schema"
)

var shanghai = time.FixedZone("CST", 8*3600)

// 2025-03-05 is a Wednesday.
func wednesday(hour int) time.Time {
	return time.Date(2025, 3, 5, hour, 30, 0, 0, shanghai)
}

func TestDueDate(t *testing.T) {
	now := wednesday(10)
	tests := []struct {
		code Code
		want string
	}{
		{CodeNone, ""},
		{"", ""},
		{CodeToday, "2025-03-05"},
		{CodeTomorrow, "2025-03-06"},
		{CodeThisSunday, "2025-03-09"},
		{CodeNextMonday, "2025-03-10"},
		{CodeNextWeek, "2025-03-12"},
		{CodeNextMonth, "2025-04-05"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			got, err := DueDate(tt.code, "", now)
			if err != nil {
				t.Fatalf("DueDate(%s) error: %v", tt.code, err)
			}
			if got.String() != tt.want {
				t.Errorf("DueDate(%s) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}

	if _, err := DueDate("someday", "", now); !errors.Is(err, ErrUnknownCode) {
		t.Errorf("unknown code error = %v, want ErrUnknownCode", err)
	}
}

func TestNextWeekday_RollsForwardOnSameDay(t *testing.T) {
	sunday := schema.MustParseDate("2025-03-09")
	if got := NextWeekday(sunday, time.Sunday).String(); got != "2025-03-16" {
		t.Errorf("NextWeekday(sunday, Sunday) = %s, want 2025-03-16", got)
	}
	monday := schema.MustParseDate("2025-03-10")
	if got := NextWeekday(monday, time.Monday).String(); got != "2025-03-17" {
		t.Errorf("NextWeekday(monday, Monday) = %s, want 2025-03-17", got)
	}
	if got := NextWeekday(sunday, time.Monday).String(); got != "2025-03-10" {
		t.Errorf("NextWeekday(sunday, Monday) = %s, want 2025-03-10", got)
	}
}

func TestDueDate_Custom(t *testing.T) {
	now := wednesday(10)

	got, err := DueDate(CodeCustom, "2025-04-01", now)
	if err != nil || got.String() != "2025-04-01" {
		t.Errorf("custom ISO = %s, %v", got, err)
	}

	got, err = DueDate(CodeCustom, "", now)
	if err != nil || !got.IsZero() {
		t.Errorf("custom empty = %s, %v", got, err)
	}

	got, err = DueDate(CodeCustom, "tomorrow", now)
	if err != nil {
		t.Fatalf("custom natural language failed: %v", err)
	}
	if got.String() != "2025-03-06" {
		t.Errorf("custom tomorrow = %s, want 2025-03-06", got)
	}

	if _, err := DueDate(CodeCustom, "qqqq zzzz", now); !errors.Is(err, ErrUnparsableDate) {
		t.Errorf("custom garbage error = %v, want ErrUnparsableDate", err)
	}
}

func TestIsOverdue(t *testing.T) {
	now := wednesday(10)
	yesterday := &schema.Task{DueDate: schema.MustParseDate("2025-03-04")}

	if !IsOverdue(yesterday, now) {
		t.Error("task due yesterday should be overdue")
	}
	if got := OverdueDays(yesterday, now); got != 1 {
		t.Errorf("OverdueDays = %d, want 1", got)
	}

	today := &schema.Task{DueDate: schema.MustParseDate("2025-03-05")}
	if IsOverdue(today, wednesday(23)) {
		t.Error("task due today is not overdue before midnight")
	}
	if OverdueDays(today, now) != 0 {
		t.Error("OverdueDays should be 0 when not overdue")
	}

	done := &schema.Task{DueDate: schema.MustParseDate("2025-01-01"), Completed: true}
	if IsOverdue(done, now) {
		t.Error("completed task is never overdue")
	}
	if IsOverdue(&schema.Task{}, now) {
		t.Error("undated task is never overdue")
	}

	old := &schema.Task{DueDate: schema.MustParseDate("2025-02-26")}
	if got := OverdueDays(old, now); got != 7 {
		t.Errorf("OverdueDays = %d, want 7", got)
	}
}

func TestPostponeTarget(t *testing.T) {
	due := schema.MustParseDate("2025-03-01")

	tests := []struct {
		name   string
		days   int
		now    time.Time
		want   string
		wantOK bool
	}{
		{"seven days", 7, wednesday(10), "2025-03-08", true},
		{"one day", 1, wednesday(10), "2025-03-02", true},
		{"today before cutover", 0, wednesday(17), "2025-03-05", true},
		{"today at cutover", 0, wednesday(18), "2025-03-06", true},
		{"negative", -1, wednesday(10), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PostponeTarget(due, tt.days, tt.now)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.String() != tt.want {
				t.Errorf("target = %s, want %s", got, tt.want)
			}
		})
	}

	if _, ok := PostponeTarget(schema.Date{}, 3, wednesday(10)); ok {
		t.Error("undated task cannot be postponed")
	}
}

func TestWeekStart(t *testing.T) {
	tests := map[string]string{
		"2025-03-05": "2025-03-03", // Wednesday
		"2025-03-03": "2025-03-03", // Monday
		"2025-03-09": "2025-03-03", // Sunday
		"2025-03-01": "2025-02-24", // Saturday across a month boundary
	}
	for in, want := range tests {
		if got := WeekStart(schema.MustParseDate(in)).String(); got != want {
			t.Errorf("WeekStart(%s) = %s, want %s", in, got, want)
		}
	}
	if got := WeekEnd(schema.MustParseDate("2025-03-05")).String(); got != "2025-03-09" {
		t.Errorf("WeekEnd = %s, want 2025-03-09", got)
	}
}

func TestDaysLeft(t *testing.T) {
	now := wednesday(10)

	if _, ok := DaysLeft(schema.Date{}, now); ok {
		t.Error("DaysLeft on zero date should report false")
	}
	if n, _ := DaysLeft(schema.MustParseDate("2025-03-10"), now); n != 5 {
		t.Errorf("DaysLeft = %d, want 5", n)
	}
	if n, _ := DaysLeft(schema.MustParseDate("2025-03-01"), now); n >= 0 {
		t.Errorf("DaysLeft for a past date = %d, want negative", n)
	}
}

func TestParseCode(t *testing.T) {
	c, err := ParseCode("NextMonday")
	if err != nil || c != CodeNextMonday {
		t.Errorf("ParseCode = %s, %v", c, err)
	}
	if _, err := ParseCode("yesterday"); err == nil {
		t.Error("expected error for unknown code")
	}
}

func TestFixedClock(t *testing.T) {
	c := NewFixedClock(wednesday(9))
	c.Advance(2 * time.Hour)
	if c.Now().Hour() != 11 {
		t.Errorf("hour = %d, want 11", c.Now().Hour())
	}
	var _ Clock = SystemClock{}
}

func TestParseDue(t *testing.T) {
	now := wednesday(10)
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"none", ""},
		{"Tomorrow", "2025-03-06"},
		{"nextMonday", "2025-03-10"},
		{"2025-04-01", "2025-04-01"},
	}
	for _, tt := range tests {
		got, err := ParseDue(tt.in, now)
		if err != nil {
			t.Errorf("ParseDue(%q) error: %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseDue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ParseDue("custom", now); err == nil {
		t.Error("ParseDue(\"custom\") succeeded")
	}
}
