package schema

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestQuadrantOf(t *testing.T) {
	tests := []struct {
		priority, urgency bool
		want              Quadrant
	}{
		{true, true, QuadrantUrgentImportant},
		{true, false, QuadrantImportant},
		{false, true, QuadrantUrgent},
		{false, false, QuadrantNormal},
	}

	for _, tt := range tests {
		task := &Task{Priority: tt.priority, Urgency: tt.urgency}
		if got := task.Quadrant(); got != tt.want {
			t.Errorf("Quadrant(priority=%v, urgency=%v) = %s, want %s", tt.priority, tt.urgency, got, tt.want)
		}
		// The other flags never influence the classification.
		task.Completed, task.Deleted, task.Organized = true, true, true
		if got := task.Quadrant(); got != tt.want {
			t.Errorf("Quadrant changed with lifecycle flags: %s", got)
		}
	}

	if n := len(Quadrants()); n != 4 {
		t.Errorf("Quadrants() has %d entries, want 4", n)
	}
}

func TestTask_View(t *testing.T) {
	tests := []struct {
		name string
		task Task
		want View
	}{
		{"fresh", Task{}, ViewInbox},
		{"organized", Task{Organized: true}, ViewQuadrant},
		{"completed", Task{Completed: true, Organized: true}, ViewCompleted},
		{"deleted wins", Task{Deleted: true, Completed: true, Organized: true}, ViewTrash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.View(); got != tt.want {
				t.Errorf("View() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTask_SetCompleted(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	task := &Task{}

	task.SetCompleted(true, now)
	if !task.Completed || task.CompletedAt == nil || !task.CompletedAt.Equal(now) {
		t.Fatalf("completed=%v completedAt=%v", task.Completed, task.CompletedAt)
	}

	task.SetCompleted(false, now)
	if task.Completed || task.CompletedAt != nil {
		t.Fatalf("expected completedAt cleared, got %v", task.CompletedAt)
	}
}

func TestTask_RecordPostponement(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	task := &Task{DueDate: MustParseDate("2025-03-01")}

	for i := 1; i <= 8; i++ {
		task.RecordPostponement(task.DueDate.AddDays(1), now)
	}

	if task.PostponedCount != 8 {
		t.Errorf("PostponedCount = %d, want 8", task.PostponedCount)
	}
	if len(task.PostponedHistory) != HistoryLimit {
		t.Fatalf("history length = %d, want %d", len(task.PostponedHistory), HistoryLimit)
	}
	if got := task.OriginalDueDate.String(); got != "2025-03-01" {
		t.Errorf("OriginalDueDate = %s, want 2025-03-01", got)
	}
	// Oldest three entries were evicted; the first kept one starts on 03-04.
	if got := task.PostponedHistory[0].From.String(); got != "2025-03-04" {
		t.Errorf("oldest kept entry from = %s, want 2025-03-04", got)
	}
	if got := task.PostponedHistory[HistoryLimit-1].To.String(); got != "2025-03-09" {
		t.Errorf("newest entry to = %s, want 2025-03-09", got)
	}
}

func TestTask_Clone(t *testing.T) {
	now := time.Now()
	orig := &Task{ID: "a", Title: "x"}
	orig.SetCompleted(true, now)
	orig.RecordPostponement(MustParseDate("2025-01-02"), now)

	c := orig.Clone()
	c.PostponedHistory[0].To = MustParseDate("2030-01-01")
	*c.CompletedAt = now.Add(time.Hour)

	if orig.PostponedHistory[0].To.String() != "2025-01-02" {
		t.Error("clone shares postponedHistory with original")
	}
	if !orig.CompletedAt.Equal(now) {
		t.Error("clone shares completedAt with original")
	}
}

func TestTask_Validate(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name   string
		task   Task
		errMsg string
	}{
		{name: "valid", task: Task{ID: "1", Title: "Buy milk"}},
		{name: "missing id", task: Task{Title: "x"}, errMsg: "id is required"},
		{name: "blank title", task: Task{ID: "1", Title: "   "}, errMsg: "title is required"},
		{name: "negative count", task: Task{ID: "1", Title: "x", PostponedCount: -1}, errMsg: "postponedCount"},
		{name: "history overflow", task: Task{ID: "1", Title: "x", PostponedHistory: make([]Postponement, 6)}, errMsg: "postponedHistory"},
		{name: "stray completedAt", task: Task{ID: "1", Title: "x", CompletedAt: &now}, errMsg: "completedAt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestTask_JSONFieldNames(t *testing.T) {
	raw := `{
		"id": "1736200000000",
		"title": "Write report",
		"priority": true,
		"urgency": false,
		"dueDate": "2025-01-08",
		"tag": "工作",
		"completed": false,
		"createdAt": "2025-01-07T02:00:00.000Z",
		"organized": true,
		"deleted": false,
		"originalDueDate": "2025-01-06",
		"postponedCount": 2,
		"postponedHistory": [{"from": "2025-01-06", "to": "2025-01-07", "at": "2025-01-06T12:00:00.000Z"}]
	}`

	var task Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if task.Quadrant() != QuadrantImportant || task.View() != ViewQuadrant {
		t.Errorf("quadrant=%s view=%s", task.Quadrant(), task.View())
	}
	if task.DueDate.String() != "2025-01-08" || task.OriginalDueDate.String() != "2025-01-06" {
		t.Errorf("dates = %s / %s", task.DueDate, task.OriginalDueDate)
	}
	if len(task.PostponedHistory) != 1 || task.PostponedCount != 2 {
		t.Errorf("history=%d count=%d", len(task.PostponedHistory), task.PostponedCount)
	}
}

func TestGoal_SetProgress(t *testing.T) {
	g := &Goal{}
	g.SetProgress(-5)
	if g.Progress != 0 || g.Completed {
		t.Errorf("progress=%d completed=%v", g.Progress, g.Completed)
	}
	g.SetProgress(140)
	if g.Progress != 100 || !g.Completed {
		t.Errorf("progress=%d completed=%v", g.Progress, g.Completed)
	}
}

func TestDocument_Validate(t *testing.T) {
	doc := &Document{Tasks: []*Task{}}
	if err := doc.Validate(); err != ErrMissingVersion {
		t.Errorf("Validate() = %v, want ErrMissingVersion", err)
	}

	var parsed Document
	if err := json.Unmarshal([]byte(`{"version":"5.0"}`), &parsed); err != nil {
		t.Fatal(err)
	}
	if err := parsed.Validate(); err != ErrMissingTasks {
		t.Errorf("Validate() = %v, want ErrMissingTasks", err)
	}

	if err := json.Unmarshal([]byte(`{"version":"5.0","tasks":[]}`), &parsed); err != nil {
		t.Fatal(err)
	}
	if err := parsed.Validate(); err != nil {
		t.Errorf("empty tasks array should be valid: %v", err)
	}

	parsed.FillDefaults()
	if len(parsed.CustomTags) != len(DefaultTags) || parsed.Goals == nil || parsed.ReadingRecords == nil {
		t.Errorf("FillDefaults left %+v", parsed)
	}
}
