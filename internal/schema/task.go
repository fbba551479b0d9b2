package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HistoryLimit is the number of postponements kept in Task.PostponedHistory.
const HistoryLimit = 5

// Quadrant is one of the four Eisenhower buckets.
type Quadrant string

const (
	QuadrantUrgentImportant Quadrant = "urgent-important"
	QuadrantImportant       Quadrant = "important"
	QuadrantUrgent          Quadrant = "urgent"
	QuadrantNormal          Quadrant = "normal"
)

// Quadrants returns the four quadrants in display order.
func Quadrants() []Quadrant {
	return []Quadrant{QuadrantUrgentImportant, QuadrantImportant, QuadrantUrgent, QuadrantNormal}
}

// QuadrantOf classifies a (priority, urgency) pair.
func QuadrantOf(priority, urgency bool) Quadrant {
	switch {
	case priority && urgency:
		return QuadrantUrgentImportant
	case priority:
		return QuadrantImportant
	case urgency:
		return QuadrantUrgent
	default:
		return QuadrantNormal
	}
}

// View is the single list a task is shown in.
type View string

const (
	ViewInbox     View = "inbox"
	ViewQuadrant  View = "quadrant"
	ViewCompleted View = "completed"
	ViewTrash     View = "trash"
)

// Postponement records one due-date extension.
type Postponement struct {
	From Date      `json:"from"`
	To   Date      `json:"to"`
	At   time.Time `json:"at"`
}

// Task is a single to-do item.
type Task struct {
	// ===== Identification =====
	ID string `json:"id"`

	// ===== Content =====
	Title       string `json:"title"`
	Description string `json:"description"`
	Tag         string `json:"tag"`

	// ===== Classification =====
	Priority bool `json:"priority"` // important
	Urgency  bool `json:"urgency"`  // urgent

	// ===== Scheduling =====
	DueDate Date `json:"dueDate"`

	// ===== Lifecycle flags (independent bits) =====
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Organized   bool       `json:"organized"`
	Deleted     bool       `json:"deleted"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`

	// ===== Postponement tracking =====
	OriginalDueDate  Date           `json:"originalDueDate"`
	PostponedCount   int            `json:"postponedCount"`
	PostponedHistory []Postponement `json:"postponedHistory,omitempty"`
}

// NewID returns a unique, time-ordered identifier.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Quadrant returns the task's Eisenhower bucket.
func (t *Task) Quadrant() Quadrant {
	return QuadrantOf(t.Priority, t.Urgency)
}

// View derives which list the task belongs to. Deleted wins over every other
// flag, then completed, then organized.
func (t *Task) View() View {
	switch {
	case t.Deleted:
		return ViewTrash
	case t.Completed:
		return ViewCompleted
	case t.Organized:
		return ViewQuadrant
	default:
		return ViewInbox
	}
}

// IsInbox reports whether the task is waiting to be organized.
func (t *Task) IsInbox() bool {
	return t.View() == ViewInbox
}

// SetCompleted sets the completed flag and completedAt together.
func (t *Task) SetCompleted(done bool, now time.Time) {
	t.Completed = done
	if done {
		at := now
		t.CompletedAt = &at
	} else {
		t.CompletedAt = nil
	}
}

// SetDeleted sets the deleted flag and deletedAt together.
func (t *Task) SetDeleted(deleted bool, now time.Time) {
	t.Deleted = deleted
	if deleted {
		at := now
		t.DeletedAt = &at
	} else {
		t.DeletedAt = nil
	}
}

// RecordPostponement moves the due date to `to` and appends the history entry,
// evicting the oldest entries beyond HistoryLimit. originalDueDate is only
// recorded on the first postponement.
func (t *Task) RecordPostponement(to Date, now time.Time) {
	from := t.DueDate
	t.DueDate = to
	if t.OriginalDueDate.IsZero() {
		t.OriginalDueDate = from
	}
	t.PostponedCount++
	t.PostponedHistory = append(t.PostponedHistory, Postponement{From: from, To: to, At: now})
	if over := len(t.PostponedHistory) - HistoryLimit; over > 0 {
		t.PostponedHistory = append([]Postponement(nil), t.PostponedHistory[over:]...)
	}
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	c := *t
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	if t.DeletedAt != nil {
		at := *t.DeletedAt
		c.DeletedAt = &at
	}
	if t.PostponedHistory != nil {
		c.PostponedHistory = append([]Postponement(nil), t.PostponedHistory...)
	}
	return &c
}

// Validate checks if the Task has valid field values.
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if t.PostponedCount < 0 {
		return fmt.Errorf("postponedCount must be >= 0 (got %d)", t.PostponedCount)
	}
	if len(t.PostponedHistory) > HistoryLimit {
		return fmt.Errorf("postponedHistory holds at most %d entries (got %d)", HistoryLimit, len(t.PostponedHistory))
	}
	if !t.Completed && t.CompletedAt != nil {
		return fmt.Errorf("completedAt set on an open task")
	}
	return nil
}
