package query

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dailyfocus/dailyfocus/internal/schema"
)

var loc = time.FixedZone("CST", 8*3600)

// ref is Wednesday 2025-03-05 10:00 local.
var ref = time.Date(2025, 3, 5, 10, 0, 0, 0, loc)

func task(id, title string, created string, due string) *schema.Task {
	t := &schema.Task{ID: id, Title: title}
	if created != "" {
		d := schema.MustParseDate(created)
		t.CreatedAt = time.Date(d.Year, d.Month, d.Day, 9, 0, 0, 0, loc)
	}
	if due != "" {
		t.DueDate = schema.MustParseDate(due)
	}
	return t
}

func ids(tasks []*schema.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestSearch(t *testing.T) {
	tasks := []*schema.Task{
		task("1", "Buy MILK", "2025-03-01", ""),
		task("2", "Call mom", "2025-03-01", ""),
		{ID: "3", Title: "Errands", Description: "milk and bread"},
	}

	if got := ids(Search(tasks, "milk")); !cmp.Equal(got, []string{"1", "3"}) {
		t.Errorf("Search(milk) = %v", got)
	}
	if got := Search(tasks, "   "); len(got) != 3 {
		t.Errorf("empty query should keep all, got %d", len(got))
	}
	if got := Search(tasks, "zzz"); len(got) != 0 {
		t.Errorf("Search(zzz) = %v", ids(got))
	}
}

func TestRange_Bounds(t *testing.T) {
	tests := []struct {
		r          Range
		start, end string
	}{
		{Range{Period: PeriodToday}, "2025-03-05", "2025-03-05"},
		{Range{Period: PeriodWeek}, "2025-03-03", "2025-03-09"},
		{Range{Period: PeriodMonth}, "2025-03-01", "2025-03-31"},
		{Range{Period: PeriodQuarter}, "2025-01-01", "2025-03-31"},
		{Range{Period: PeriodYear}, "2025-01-01", "2025-12-31"},
		{Custom(schema.MustParseDate("2025-02-10"), schema.MustParseDate("2025-02-20")), "2025-02-10", "2025-02-20"},
		{All, "", ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.r.Period), func(t *testing.T) {
			start, end := tt.r.Bounds(ref)
			if start.String() != tt.start || end.String() != tt.end {
				t.Errorf("Bounds = [%s, %s], want [%s, %s]", start, end, tt.start, tt.end)
			}
		})
	}
}

func TestInRange(t *testing.T) {
	tasks := []*schema.Task{
		task("a", "a", "2025-03-05", ""),           // created today
		task("b", "b", "2025-02-01", "2025-03-07"), // due this week
		task("c", "c", "2025-03-04", "2025-04-01"), // created this week, due next month
		task("d", "d", "2024-12-31", ""),
	}

	tests := []struct {
		name  string
		r     Range
		field Field
		want  []string
	}{
		{"today created", Range{Period: PeriodToday}, FieldCreated, []string{"a"}},
		{"week created", Range{Period: PeriodWeek}, FieldCreated, []string{"a", "c"}},
		{"week due", Range{Period: PeriodWeek}, FieldDue, []string{"b"}},
		{"week due-or-created", Range{Period: PeriodWeek}, FieldDueOrCreated, []string{"a", "b"}},
		{"year created", Range{Period: PeriodYear}, FieldCreated, []string{"a", "b", "c"}},
		{"all", All, FieldDue, []string{"a", "b", "c", "d"}},
		{"custom open end", Custom(schema.MustParseDate("2025-03-01"), schema.Date{}), FieldCreated, []string{"a", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(InRange(tasks, tt.r, tt.field, ref))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("InRange mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestByStatus(t *testing.T) {
	done := task("done", "done", "2025-03-01", "2025-03-01")
	done.Completed = true
	tasks := []*schema.Task{
		done,
		task("late", "late", "2025-03-01", "2025-03-04"),
		task("due-today", "due today", "2025-03-01", "2025-03-05"),
		task("undated", "undated", "2025-03-01", ""),
	}

	tests := map[Status][]string{
		StatusAll:       {"done", "late", "due-today", "undated"},
		StatusPending:   {"late", "due-today", "undated"},
		StatusCompleted: {"done"},
		StatusOverdue:   {"late"},
	}
	for status, want := range tests {
		if got := ids(ByStatus(tasks, status, ref)); !cmp.Equal(got, want) {
			t.Errorf("ByStatus(%s) = %v, want %v", status, got, want)
		}
	}
}

func TestSort(t *testing.T) {
	tasks := []*schema.Task{
		task("1", "banana", "2025-03-02", ""),
		task("2", "Apple", "2025-03-03", ""),
		task("3", "cherry", "2025-03-01", ""),
		task("4", "apple", "2025-03-03", ""),
	}

	if got := ids(Sort(tasks, SortDateDesc, "")); !cmp.Equal(got, []string{"4", "2", "1", "3"}) {
		t.Errorf("date-desc = %v", got)
	}
	if got := ids(Sort(tasks, SortDateAsc, "")); !cmp.Equal(got, []string{"3", "1", "2", "4"}) {
		t.Errorf("date-asc = %v", got)
	}
	got := ids(Sort(tasks, SortTitle, "en"))
	if got[2] != "1" || got[3] != "3" {
		t.Errorf("title sort should be case-insensitive at primary level: %v", got)
	}
	if ids(tasks)[0] != "1" {
		t.Error("Sort mutated its input")
	}

	// Deterministic for equal inputs.
	again := ids(Sort(tasks, SortTitle, "en"))
	if !cmp.Equal(got, again) {
		t.Errorf("title sort not stable: %v vs %v", got, again)
	}
}

func TestParseSortKey(t *testing.T) {
	if k, err := ParseSortKey(""); err != nil || k != SortDateDesc {
		t.Errorf("ParseSortKey(\"\") = %s, %v", k, err)
	}
	if _, err := ParseSortKey("priority"); err == nil {
		t.Error("expected error")
	}
}

func TestSortByDue(t *testing.T) {
	newer := task("newer", "n", "2025-03-04", "")
	older := task("older", "o", "2025-03-01", "")
	late := task("late", "l", "2025-03-01", "2025-03-20")
	soon := task("soon", "s", "2025-03-03", "2025-03-06")

	got := ids(SortByDue([]*schema.Task{older, late, newer, soon}))
	want := []string{"soon", "late", "newer", "older"}
	if !cmp.Equal(got, want) {
		t.Errorf("SortByDue = %v, want %v", got, want)
	}
}

func TestGroupByWeek(t *testing.T) {
	tasks := []*schema.Task{
		task("1", "x", "2025-03-05", ""),
		task("2", "x", "2025-02-26", ""),
		task("3", "x", "2025-03-03", ""),
		task("4", "x", "", "2025-02-24"),
		{ID: "5", Title: "no dates"},
	}

	groups := GroupByWeek(tasks, loc)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Label != "3月3日-3月9日" {
		t.Errorf("first label = %q", groups[0].Label)
	}
	if groups[1].Label != "2月24日-3月2日" {
		t.Errorf("second label = %q", groups[1].Label)
	}
	if got := ids(groups[0].Tasks); !cmp.Equal(got, []string{"1", "3"}) {
		t.Errorf("first group = %v", got)
	}
	if got := ids(groups[1].Tasks); !cmp.Equal(got, []string{"2", "4"}) {
		t.Errorf("second group = %v", got)
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name      string
		page      int
		size      int
		wantItems []int
		wantPage  int
		wantPages int
	}{
		{"first", 1, 3, []int{1, 2, 3}, 1, 3},
		{"last partial", 3, 3, []int{7}, 3, 3},
		{"clamped high", 9, 3, []int{7}, 3, 3},
		{"clamped low", 0, 3, []int{1, 2, 3}, 1, 3},
		{"single page", 1, 0, items, 1, 1},
		{"huge size", 1, math.MaxInt, items, 1, 1},
		{"huge size and page", math.MaxInt, math.MaxInt, items, 1, 1},
		{"huge page", math.MaxInt, 3, []int{7}, 3, 3},
		{"exact fit", 2, 7, items, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(items, tt.page, tt.size)
			if !cmp.Equal(p.Items, tt.wantItems) || p.Page != tt.wantPage || p.TotalPages != tt.wantPages {
				t.Errorf("Paginate = %+v", p)
			}
			if p.Total != len(items) {
				t.Errorf("Total = %d", p.Total)
			}
		})
	}

	empty := Paginate([]string{}, 4, 20)
	if empty.Page != 1 || empty.TotalPages != 1 || len(empty.Items) != 0 {
		t.Errorf("empty = %+v", empty)
	}
	if empty.HasNext() || empty.HasPrev() {
		t.Error("empty list has no neighbours")
	}
}

func TestByViewAndTag(t *testing.T) {
	inbox := &schema.Task{ID: "inbox", Tag: "工作"}
	organized := &schema.Task{ID: "organized", Organized: true, Tag: "生活"}
	done := &schema.Task{ID: "done", Completed: true, Tag: "工作"}
	trashed := &schema.Task{ID: "trashed", Deleted: true, Tag: "工作"}
	tasks := []*schema.Task{inbox, organized, done, trashed}

	tests := map[View][]string{
		ViewAll:       {"inbox", "organized", "done", "trashed"},
		ViewActive:    {"inbox", "organized"},
		ViewCompleted: {"done"},
		ViewInbox:     {"inbox"},
		ViewOrganized: {"organized"},
		ViewDeleted:   {"trashed"},
	}
	for v, want := range tests {
		if got := ids(ByView(tasks, v)); !cmp.Equal(got, want) {
			t.Errorf("ByView(%s) = %v, want %v", v, got, want)
		}
	}

	if got := ids(ByTag(tasks, "工作")); !cmp.Equal(got, []string{"inbox", "done", "trashed"}) {
		t.Errorf("ByTag = %v", got)
	}
	if got := ByTag(tasks, ""); len(got) != 4 {
		t.Errorf("ByTag(\"\") kept %d", len(got))
	}
}

func TestSummarize(t *testing.T) {
	tasks := []*schema.Task{
		{ID: "1", Completed: true, Organized: true},
		{ID: "2", Completed: true},
		{ID: "3"},
		{ID: "4", Organized: true},
		{ID: "5", Deleted: true, Completed: true},
	}

	want := Summary{Total: 4, Completed: 2, Inbox: 1, Rate: 50}
	if got := Summarize(tasks); got != want {
		t.Errorf("Summarize = %+v, want %+v", got, want)
	}
	if got := Summarize(nil); got != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v", got)
	}
}

func TestOnDate(t *testing.T) {
	a := task("a", "a", "2025-03-05", "2025-03-07")
	b := task("b", "b", "2025-03-07", "")
	c := task("c", "c", "2025-03-07", "2025-03-07")
	c.Deleted = true
	tasks := []*schema.Task{a, b, c}
	day := schema.MustParseDate("2025-03-07")

	if got := ids(OnDate(tasks, day, CalendarDue, loc)); !cmp.Equal(got, []string{"a"}) {
		t.Errorf("due mode = %v", got)
	}
	if got := ids(OnDate(tasks, day, CalendarCreated, loc)); !cmp.Equal(got, []string{"b"}) {
		t.Errorf("created mode = %v", got)
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		period, from, to string
		want             Range
		wantErr          bool
	}{
		{"", "", "", All, false},
		{"Week", "", "", Range{Period: PeriodWeek}, false},
		{"custom", "2025-03-01", "2025-03-31", Custom(schema.MustParseDate("2025-03-01"), schema.MustParseDate("2025-03-31")), false},
		{"custom", "2025-03-01", "", Custom(schema.MustParseDate("2025-03-01"), schema.Date{}), false},
		{"custom", "2025-03-31", "2025-03-01", Range{}, true},
		{"custom", "march", "", Range{}, true},
		{"decade", "", "", Range{}, true},
	}
	for _, tt := range tests {
		got, err := ParseRange(tt.period, tt.from, tt.to)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRange(%q, %q, %q) error = %v", tt.period, tt.from, tt.to, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRange(%q, %q, %q) = %+v, want %+v", tt.period, tt.from, tt.to, got, tt.want)
		}
	}
}

func TestParseViewAndStatus(t *testing.T) {
	if v, err := ParseView("Deleted"); err != nil || v != ViewDeleted {
		t.Errorf("ParseView(Deleted) = %q, %v", v, err)
	}
	if v, _ := ParseView(""); v != ViewAll {
		t.Errorf("ParseView(\"\") = %q", v)
	}
	if _, err := ParseView("archive"); err == nil {
		t.Error("ParseView(archive) succeeded")
	}
	if s, err := ParseStatus("overdue"); err != nil || s != StatusOverdue {
		t.Errorf("ParseStatus(overdue) = %q, %v", s, err)
	}
	if f, err := ParseField(" Due-Or-Created"); err != nil || f != FieldDueOrCreated {
		t.Errorf("ParseField(due-or-created) = %q, %v", f, err)
	}
	if f, _ := ParseField(""); f != FieldCreated {
		t.Errorf("ParseField(\"\") = %q", f)
	}
	if _, err := ParseField("updated"); err == nil {
		t.Error("ParseField(updated) succeeded")
	}
	if _, err := ParseStatus("late"); err == nil {
		t.Error("ParseStatus(late) succeeded")
	}
}
