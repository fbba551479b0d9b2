package store

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/dailyfocus/dailyfocus/internal/query"
	"github.com/dailyfocus/dailyfocus/internal/schema"
)

var loc = time.FixedZone("CST", 8*3600)

func at(date string, hour int) time.Time {
	d := schema.MustParseDate(date)
	return time.Date(d.Year, d.Month, d.Day, hour, 0, 0, 0, loc)
}

func mustCreate(t *testing.T, s *Tasks, title string, attrs TaskAttrs, now time.Time) *schema.Task {
	t.Helper()
	task, err := s.Create(title, attrs, now)
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", title, err)
	}
	return task
}

func TestTasks_CreateAndOrganize(t *testing.T) {
	s := NewTasks(nil)
	t0 := at("2025-03-01", 9)

	task := mustCreate(t, s, "  Buy milk ", TaskAttrs{DueDate: schema.MustParseDate("2025-03-10")}, t0)

	if task.Title != "Buy milk" {
		t.Errorf("title not trimmed: %q", task.Title)
	}
	if task.Organized || task.Completed || task.Deleted {
		t.Errorf("new task flags = %+v", task)
	}
	if !task.CreatedAt.Equal(t0) {
		t.Errorf("createdAt = %v, want %v", task.CreatedAt, t0)
	}
	if inbox := s.Inbox(); len(inbox) != 1 || inbox[0].ID != task.ID {
		t.Fatalf("inbox = %v", inbox)
	}

	if n := s.OrganizeInbox(); n != 1 {
		t.Fatalf("OrganizeInbox() = %d, want 1", n)
	}
	if len(s.Inbox()) != 0 {
		t.Error("inbox should be empty after organizing")
	}

	board := s.Quadrants(query.All, t0)
	normal := board[schema.QuadrantNormal]
	if len(normal) != 1 || normal[0].ID != task.ID {
		t.Errorf("normal quadrant = %v", normal)
	}
	for _, q := range schema.Quadrants() {
		if _, ok := board[q]; !ok {
			t.Errorf("board missing quadrant %s", q)
		}
	}
}

func TestTasks_CreateRejectsBlankTitle(t *testing.T) {
	s := NewTasks(nil)
	for _, title := range []string{"", "   ", "\t\n"} {
		if _, err := s.Create(title, TaskAttrs{}, time.Now()); !errors.Is(err, ErrEmptyTitle) {
			t.Errorf("Create(%q) error = %v, want ErrEmptyTitle", title, err)
		}
	}
	if s.Len() != 0 {
		t.Errorf("rejected creates left %d tasks", s.Len())
	}
}

func TestTasks_CreatePrepends(t *testing.T) {
	s := NewTasks(nil)
	first := mustCreate(t, s, "first", TaskAttrs{}, at("2025-03-01", 9))
	second := mustCreate(t, s, "second", TaskAttrs{}, at("2025-03-01", 10))

	all := s.All()
	if all[0].ID != second.ID || all[1].ID != first.ID {
		t.Errorf("order = %s, %s", all[0].Title, all[1].Title)
	}
	if first.ID == second.ID {
		t.Error("ids must be unique")
	}
}

func TestTasks_OrganizeInboxTwice(t *testing.T) {
	s := NewTasks(nil)
	now := at("2025-03-01", 9)
	a := mustCreate(t, s, "a", TaskAttrs{}, now)
	b := mustCreate(t, s, "b", TaskAttrs{Priority: true}, now)
	done := mustCreate(t, s, "done", TaskAttrs{}, now)
	s.ToggleComplete(done.ID, now)

	if n := s.OrganizeInbox(); n != 2 {
		t.Fatalf("first OrganizeInbox() = %d, want 2", n)
	}
	if n := s.OrganizeInbox(); n != 0 {
		t.Fatalf("second OrganizeInbox() = %d, want 0", n)
	}
	if !a.Organized || !b.Organized {
		t.Error("organized tasks lost their flag")
	}
	if done.Organized {
		t.Error("completed task must not be organized")
	}
}

func TestTasks_ToggleComplete(t *testing.T) {
	s := NewTasks(nil)
	now := at("2025-03-01", 9)
	task := mustCreate(t, s, "x", TaskAttrs{}, now)

	if !s.ToggleComplete(task.ID, now) || !task.Completed || task.CompletedAt == nil {
		t.Fatalf("toggle on: %+v", task)
	}
	if !s.ToggleComplete(task.ID, now) || task.Completed || task.CompletedAt != nil {
		t.Fatalf("toggle off: %+v", task)
	}
	if s.ToggleComplete("missing", now) {
		t.Error("unknown id should report false")
	}
}

func TestTasks_DeleteRestorePurge(t *testing.T) {
	s := NewTasks(nil)
	now := at("2025-03-01", 9)
	task := mustCreate(t, s, "x", TaskAttrs{}, now)
	other := mustCreate(t, s, "y", TaskAttrs{}, now)

	if !s.SoftDelete(task.ID, now) || !task.Deleted || task.DeletedAt == nil {
		t.Fatalf("soft delete: %+v", task)
	}
	if len(s.Inbox()) != 1 {
		t.Error("deleted task still in inbox")
	}
	if !s.Restore(task.ID) || task.Deleted || task.DeletedAt != nil {
		t.Fatalf("restore: %+v", task)
	}

	if n := s.BatchSoftDelete([]string{task.ID, "nope", other.ID}, now); n != 2 {
		t.Errorf("BatchSoftDelete = %d, want 2", n)
	}

	if !s.PermanentDelete(task.ID) {
		t.Fatal("PermanentDelete failed")
	}
	if _, ok := s.Get(task.ID); ok {
		t.Error("task still present after PermanentDelete")
	}
	if s.PermanentDelete(task.ID) || s.SoftDelete("nope", now) || s.Restore("nope") {
		t.Error("unknown ids should report false")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestTasks_ExtendDueDate(t *testing.T) {
	s := NewTasks(nil)
	now := at("2025-03-01", 10)
	task := mustCreate(t, s, "report", TaskAttrs{DueDate: schema.MustParseDate("2025-03-01")}, now)

	if !s.ExtendDueDate(task.ID, 7, now) {
		t.Fatal("ExtendDueDate(7) failed")
	}
	if task.DueDate.String() != "2025-03-08" || task.PostponedCount != 1 || task.OriginalDueDate.String() != "2025-03-01" {
		t.Errorf("after +7: due=%s count=%d original=%s", task.DueDate, task.PostponedCount, task.OriginalDueDate)
	}

	if !s.ExtendDueDate(task.ID, 2, now) {
		t.Fatal("ExtendDueDate(2) failed")
	}
	if task.OriginalDueDate.String() != "2025-03-01" {
		t.Errorf("originalDueDate overwritten: %s", task.OriginalDueDate)
	}

	undated := mustCreate(t, s, "undated", TaskAttrs{}, now)
	if s.ExtendDueDate(undated.ID, 1, now) || undated.PostponedCount != 0 {
		t.Error("undated task cannot be postponed")
	}
	if s.ExtendDueDate("missing", 1, now) {
		t.Error("unknown id should report false")
	}
	if s.ExtendDueDate(task.ID, -1, now) {
		t.Error("negative days should be rejected")
	}
}

func TestTasks_PostponeToTodayIsIdempotent(t *testing.T) {
	s := NewTasks(nil)
	now := at("2025-03-05", 10)
	task := mustCreate(t, s, "x", TaskAttrs{DueDate: schema.MustParseDate("2025-03-01")}, now)

	if !s.ExtendDueDate(task.ID, 0, now) {
		t.Fatal("first postpone to today failed")
	}
	if task.DueDate.String() != "2025-03-05" {
		t.Errorf("due = %s, want 2025-03-05", task.DueDate)
	}
	if s.ExtendDueDate(task.ID, 0, now) {
		t.Error("second postpone to today should be a no-op")
	}
	if task.PostponedCount != 1 || len(task.PostponedHistory) != 1 {
		t.Errorf("count=%d history=%d", task.PostponedCount, len(task.PostponedHistory))
	}

	// After the evening cutover "today" means tomorrow.
	evening := at("2025-03-05", 19)
	if !s.ExtendDueDate(task.ID, 0, evening) || task.DueDate.String() != "2025-03-06" {
		t.Errorf("evening postpone: due = %s", task.DueDate)
	}
}

func TestTasks_PostponedHistoryFIFO(t *testing.T) {
	s := NewTasks(nil)
	now := at("2025-03-01", 10)
	task := mustCreate(t, s, "x", TaskAttrs{DueDate: schema.MustParseDate("2025-03-01")}, now)

	for i := 0; i < 12; i++ {
		if !s.ExtendDueDate(task.ID, 1, now) {
			t.Fatalf("postpone #%d failed", i+1)
		}
		if len(task.PostponedHistory) > schema.HistoryLimit {
			t.Fatalf("history grew to %d", len(task.PostponedHistory))
		}
	}
	if task.PostponedCount != 12 {
		t.Errorf("PostponedCount = %d, want 12", task.PostponedCount)
	}
	if got := task.PostponedHistory[0].From.String(); got != "2025-03-08" {
		t.Errorf("oldest kept from = %s, want 2025-03-08", got)
	}
	if got := task.DueDate.String(); got != "2025-03-13" {
		t.Errorf("due = %s, want 2025-03-13", got)
	}
}

func TestTasks_QuadrantsOrderingAndRange(t *testing.T) {
	now := at("2025-03-05", 10)
	s := NewTasks(nil)
	old := mustCreate(t, s, "undated old", TaskAttrs{Priority: true, Urgency: true}, at("2025-03-03", 9))
	fresh := mustCreate(t, s, "undated new", TaskAttrs{Priority: true, Urgency: true}, at("2025-03-04", 9))
	late := mustCreate(t, s, "late", TaskAttrs{Priority: true, Urgency: true, DueDate: schema.MustParseDate("2025-03-20")}, now)
	soon := mustCreate(t, s, "soon", TaskAttrs{Priority: true, Urgency: true, DueDate: schema.MustParseDate("2025-03-06")}, now)
	urgent := mustCreate(t, s, "urgent", TaskAttrs{Urgency: true}, now)
	done := mustCreate(t, s, "done", TaskAttrs{Priority: true}, now)
	s.OrganizeInbox()
	s.ToggleComplete(done.ID, now)

	board := s.Quadrants(query.All, now)
	got := board[schema.QuadrantUrgentImportant]
	want := []string{soon.ID, late.ID, fresh.ID, old.ID}
	if len(got) != len(want) {
		t.Fatalf("urgent-important has %d tasks, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("position %d = %s, want %s", i, got[i].Title, want[i])
		}
	}
	if len(board[schema.QuadrantUrgent]) != 1 || board[schema.QuadrantUrgent][0].ID != urgent.ID {
		t.Errorf("urgent = %v", board[schema.QuadrantUrgent])
	}
	if len(board[schema.QuadrantImportant]) != 0 {
		t.Error("completed task must not appear on the board")
	}

	week := s.Quadrants(query.Range{Period: query.PeriodWeek}, now)
	if n := len(week[schema.QuadrantUrgentImportant]); n != 3 {
		t.Errorf("this week urgent-important = %d, want 3 (late is next period)", n)
	}
	if week.Count() != 4 {
		t.Errorf("week board count = %d, want 4", week.Count())
	}
}

func TestBoard_Paged(t *testing.T) {
	tasks := func(n int) []*schema.Task {
		out := make([]*schema.Task, n)
		for i := range out {
			out[i] = &schema.Task{ID: fmt.Sprintf("t%02d", i)}
		}
		return out
	}
	board := Board{
		schema.QuadrantUrgentImportant: tasks(20),
		schema.QuadrantImportant:       tasks(4),
		schema.QuadrantUrgent:          tasks(0),
		schema.QuadrantNormal:          tasks(10),
	}

	tests := []struct {
		name      string
		page      int
		size      int
		wantPage  int
		wantPages int
		wantLens  [4]int // urgent-important, important, urgent, normal
	}{
		{"first page", 1, BoardPageSize, 1, 3, [4]int{9, 4, 0, 9}},
		{"shorter quadrants keep their last page", 2, BoardPageSize, 2, 3, [4]int{9, 4, 0, 1}},
		{"last page", 3, BoardPageSize, 3, 3, [4]int{2, 4, 0, 1}},
		{"clamped high", math.MaxInt, BoardPageSize, 3, 3, [4]int{2, 4, 0, 1}},
		{"clamped low", -1, BoardPageSize, 1, 3, [4]int{9, 4, 0, 9}},
		{"no paging", 1, 0, 1, 1, [4]int{20, 4, 0, 10}},
		{"huge size", 1, math.MaxInt, 1, 1, [4]int{20, 4, 0, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bp := board.Paged(tt.page, tt.size)
			if bp.Page != tt.wantPage || bp.TotalPages != tt.wantPages {
				t.Errorf("page = %d/%d, want %d/%d", bp.Page, bp.TotalPages, tt.wantPage, tt.wantPages)
			}
			for i, q := range schema.Quadrants() {
				if n := len(bp.Quadrants[q].Items); n != tt.wantLens[i] {
					t.Errorf("%s has %d tasks, want %d", q, n, tt.wantLens[i])
				}
			}
			if got := bp.Items().Count(); got != tt.wantLens[0]+tt.wantLens[1]+tt.wantLens[2]+tt.wantLens[3] {
				t.Errorf("Items().Count() = %d", got)
			}
		})
	}

	if bp := (Board{}).Paged(5, BoardPageSize); bp.Page != 1 || bp.TotalPages != 1 {
		t.Errorf("empty board page = %d/%d, want 1/1", bp.Page, bp.TotalPages)
	}
}

func TestTasks_Update(t *testing.T) {
	s := NewTasks(nil)
	now := at("2025-03-01", 9)
	task := mustCreate(t, s, "draft", TaskAttrs{}, now)
	s.OrganizeInbox()

	ok, err := s.Update(task.ID, "final", TaskAttrs{Priority: true, Tag: "工作", DueDate: schema.MustParseDate("2025-03-02")})
	if err != nil || !ok {
		t.Fatalf("Update = %v, %v", ok, err)
	}
	if task.Title != "final" || !task.Priority || task.Tag != "工作" || !task.Organized {
		t.Errorf("after update: %+v", task)
	}

	if _, err := s.Update(task.ID, " ", TaskAttrs{}); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("blank title error = %v", err)
	}
	if task.Title != "final" {
		t.Error("rejected update mutated the task")
	}
	if ok, err := s.Update("missing", "x", TaskAttrs{}); ok || err != nil {
		t.Errorf("unknown id = %v, %v", ok, err)
	}
}

func TestTasks_ReplaceDropsNil(t *testing.T) {
	s := NewTasks([]*schema.Task{{ID: "a", Title: "a"}, nil, {ID: "b", Title: "b"}})
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	all := s.All()
	all[0] = nil
	if first, _ := s.Get("a"); first == nil {
		t.Error("All() must return a copy")
	}
}
