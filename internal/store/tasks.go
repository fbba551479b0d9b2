// Package store owns the in-memory collections of DailyFocus: tasks, goals,
// reading records and the tag set.
//
// Stores are not safe for concurrent use. The tracker service serializes all
// access. Mutations on an unknown id are no-ops that report false.
package store

import (
	"slices"
	"strings"
	"time"

	"github.com/dailyfocus/dailyfocus/internal/dates"
	"github.com/dailyfocus/dailyfocus/internal/query"
	"github.com/dailyfocus/dailyfocus/internal/schema"
)

// TaskAttrs are the optional fields of a new or edited task.
type TaskAttrs struct {
	Description string
	Priority    bool
	Urgency     bool
	DueDate     schema.Date
	Tag         string
}

// Tasks is the ordered task collection, most recent first.
type Tasks struct {
	items []*schema.Task
}

// NewTasks wraps an existing collection.
func NewTasks(items []*schema.Task) *Tasks {
	s := &Tasks{}
	s.Replace(items)
	return s
}

// Create adds a task to the front of the collection. The task starts in the
// inbox.
func (s *Tasks) Create(title string, attrs TaskAttrs, now time.Time) (*schema.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	t := &schema.Task{
		ID:          schema.NewID(),
		Title:       title,
		Description: strings.TrimSpace(attrs.Description),
		Priority:    attrs.Priority,
		Urgency:     attrs.Urgency,
		DueDate:     attrs.DueDate,
		Tag:         strings.TrimSpace(attrs.Tag),
		CreatedAt:   now,
	}
	s.items = slices.Insert(s.items, 0, t)
	return t, nil
}

// Get returns the task with id.
func (s *Tasks) Get(id string) (*schema.Task, bool) {
	i := s.index(id)
	if i < 0 {
		return nil, false
	}
	return s.items[i], true
}

// Update overwrites the editable fields of a task. Lifecycle flags and
// postponement history are untouched.
func (s *Tasks) Update(id, title string, attrs TaskAttrs) (bool, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return false, ErrEmptyTitle
	}
	t, ok := s.Get(id)
	if !ok {
		return false, nil
	}
	t.Title = title
	t.Description = strings.TrimSpace(attrs.Description)
	t.Priority = attrs.Priority
	t.Urgency = attrs.Urgency
	t.DueDate = attrs.DueDate
	t.Tag = strings.TrimSpace(attrs.Tag)
	return true, nil
}

// ToggleComplete flips the completed flag together with completedAt.
func (s *Tasks) ToggleComplete(id string, now time.Time) bool {
	t, ok := s.Get(id)
	if !ok {
		return false
	}
	t.SetCompleted(!t.Completed, now)
	return true
}

// SoftDelete moves a task to the trash.
func (s *Tasks) SoftDelete(id string, now time.Time) bool {
	t, ok := s.Get(id)
	if !ok {
		return false
	}
	t.SetDeleted(true, now)
	return true
}

// BatchSoftDelete trashes every known id and returns how many were found.
func (s *Tasks) BatchSoftDelete(ids []string, now time.Time) int {
	n := 0
	for _, id := range ids {
		if s.SoftDelete(id, now) {
			n++
		}
	}
	return n
}

// Restore takes a task out of the trash.
func (s *Tasks) Restore(id string) bool {
	t, ok := s.Get(id)
	if !ok {
		return false
	}
	t.SetDeleted(false, time.Time{})
	return true
}

// PermanentDelete removes a task from the collection. It cannot be undone.
func (s *Tasks) PermanentDelete(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

// OrganizeInbox marks every task that is neither organized nor completed as
// organized and returns how many changed.
func (s *Tasks) OrganizeInbox() int {
	n := 0
	for _, t := range s.items {
		if !t.Organized && !t.Completed {
			t.Organized = true
			n++
		}
	}
	return n
}

// ExtendDueDate postpones a task by days (0 means "to today", see
// dates.PostponeTarget). It reports false without touching the task when the
// id is unknown, the task has no due date, or the due date already equals
// the target.
func (s *Tasks) ExtendDueDate(id string, days int, now time.Time) bool {
	t, ok := s.Get(id)
	if !ok {
		return false
	}
	target, ok := dates.PostponeTarget(t.DueDate, days, now)
	if !ok || target.Equal(t.DueDate) {
		return false
	}
	t.RecordPostponement(target, now)
	return true
}

// Inbox returns the tasks waiting to be organized.
func (s *Tasks) Inbox() []*schema.Task {
	return query.ByView(s.items, query.ViewInbox)
}

// Board maps each quadrant to its ordered tasks. All four keys are present.
type Board map[schema.Quadrant][]*schema.Task

// Count returns the number of tasks on the board.
func (b Board) Count() int {
	n := 0
	for _, tasks := range b {
		n += len(tasks)
	}
	return n
}

// BoardPageSize is how many tasks each quadrant shows per board page.
const BoardPageSize = 9

// BoardPage is one page of the board. The page number is shared by all four
// quadrants; a quadrant with fewer pages shows its last one.
type BoardPage struct {
	Quadrants  map[schema.Quadrant]query.Page[*schema.Task] `json:"quadrants"`
	Page       int                                          `json:"page"`
	TotalPages int                                          `json:"totalPages"`
}

// Paged cuts b into pages of size tasks per quadrant. TotalPages is the page
// count of the fullest quadrant and page is clamped into [1, TotalPages].
func (b Board) Paged(page, size int) BoardPage {
	bp := BoardPage{Quadrants: make(map[schema.Quadrant]query.Page[*schema.Task], 4), TotalPages: 1}
	for _, q := range schema.Quadrants() {
		bp.TotalPages = max(bp.TotalPages, query.Paginate(b[q], 1, size).TotalPages)
	}
	bp.Page = min(max(page, 1), bp.TotalPages)
	for _, q := range schema.Quadrants() {
		bp.Quadrants[q] = query.Paginate(b[q], bp.Page, size)
	}
	return bp
}

// Items returns the tasks shown on the page as a Board.
func (bp BoardPage) Items() Board {
	board := make(Board, len(bp.Quadrants))
	for q, p := range bp.Quadrants {
		board[q] = p.Items
	}
	return board
}

// Quadrants returns the organized, open tasks within r (matched against the
// due date, or the creation date for undated tasks), bucketed by quadrant.
// Dated tasks come first by ascending due date, then undated tasks newest
// first.
func (s *Tasks) Quadrants(r query.Range, now time.Time) Board {
	board := make(Board, 4)
	for _, q := range schema.Quadrants() {
		board[q] = []*schema.Task{}
	}
	tasks := query.ByView(s.items, query.ViewOrganized)
	tasks = query.InRange(tasks, r, query.FieldDueOrCreated, now)
	for _, t := range query.SortByDue(tasks) {
		board[t.Quadrant()] = append(board[t.Quadrant()], t)
	}
	return board
}

// All returns the collection in storage order. The slice is a copy; the tasks
// are shared.
func (s *Tasks) All() []*schema.Task {
	return slices.Clone(s.items)
}

// Replace swaps in a whole new collection. nil entries are dropped.
func (s *Tasks) Replace(items []*schema.Task) {
	s.items = make([]*schema.Task, 0, len(items))
	for _, t := range items {
		if t != nil {
			s.items = append(s.items, t)
		}
	}
}

// Len returns the number of tasks, trashed ones included.
func (s *Tasks) Len() int {
	return len(s.items)
}

func (s *Tasks) index(id string) int {
	return slices.IndexFunc(s.items, func(t *schema.Task) bool { return t.ID == id })
}
