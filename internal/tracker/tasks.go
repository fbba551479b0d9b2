package tracker

import (
	"context"
	"time"

	"github.com/dailyfocus/dailyfocus/internal/query"
	"github.com/dailyfocus/dailyfocus/internal/schema"
	"github.com/dailyfocus/dailyfocus/internal/store"
)

// TaskQuery selects, orders and pages the all-tasks list. Zero fields do not
// filter.
type TaskQuery struct {
	View     query.View
	Status   query.Status
	Tag      string
	Search   string
	Range    query.Range
	Field    query.Field // date matched by Range, default created
	Sort     query.SortKey
	Page     int
	PageSize int
}

// CreateTask adds a task to the inbox.
func (t *Tracker) CreateTask(ctx context.Context, title string, attrs store.TaskAttrs) (*schema.Task, error) {
	var created *schema.Task
	_, err := t.mutate(ctx, CollectionTasks, "create", "", func(now time.Time) (bool, error) {
		task, err := t.tasks.Create(title, attrs, now)
		if err != nil {
			return false, err
		}
		created = task.Clone()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateTask edits the title and attributes of a task.
func (t *Tracker) UpdateTask(ctx context.Context, id, title string, attrs store.TaskAttrs) (bool, error) {
	return t.mutate(ctx, CollectionTasks, "update", id, func(time.Time) (bool, error) {
		return t.tasks.Update(id, title, attrs)
	})
}

// ToggleComplete flips a task between open and completed.
func (t *Tracker) ToggleComplete(ctx context.Context, id string) (bool, error) {
	return t.mutate(ctx, CollectionTasks, "toggle", id, func(now time.Time) (bool, error) {
		return t.tasks.ToggleComplete(id, now), nil
	})
}

// SoftDelete moves a task to the trash.
func (t *Tracker) SoftDelete(ctx context.Context, id string) (bool, error) {
	return t.mutate(ctx, CollectionTasks, "delete", id, func(now time.Time) (bool, error) {
		return t.tasks.SoftDelete(id, now), nil
	})
}

// BatchSoftDelete trashes several tasks and returns how many were found.
func (t *Tracker) BatchSoftDelete(ctx context.Context, ids []string) (int, error) {
	n := 0
	_, err := t.mutate(ctx, CollectionTasks, "delete", "", func(now time.Time) (bool, error) {
		n = t.tasks.BatchSoftDelete(ids, now)
		return n > 0, nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Restore takes a task out of the trash.
func (t *Tracker) Restore(ctx context.Context, id string) (bool, error) {
	return t.mutate(ctx, CollectionTasks, "restore", id, func(time.Time) (bool, error) {
		return t.tasks.Restore(id), nil
	})
}

// PermanentDelete removes a task for good.
func (t *Tracker) PermanentDelete(ctx context.Context, id string) (bool, error) {
	return t.mutate(ctx, CollectionTasks, "purge", id, func(time.Time) (bool, error) {
		return t.tasks.PermanentDelete(id), nil
	})
}

// OrganizeInbox moves every inbox task into its quadrant.
func (t *Tracker) OrganizeInbox(ctx context.Context) (int, error) {
	n := 0
	_, err := t.mutate(ctx, CollectionTasks, "organize", "", func(time.Time) (bool, error) {
		n = t.tasks.OrganizeInbox()
		return n > 0, nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ExtendDueDate postpones a task by days; 0 moves it to today (or tomorrow
// in the evening).
func (t *Tracker) ExtendDueDate(ctx context.Context, id string, days int) (bool, error) {
	return t.mutate(ctx, CollectionTasks, "postpone", id, func(now time.Time) (bool, error) {
		return t.tasks.ExtendDueDate(id, days, now), nil
	})
}

// Task returns a copy of the task with id.
func (t *Tracker) Task(id string) (*schema.Task, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	task, ok := t.tasks.Get(id)
	if !ok {
		return nil, false
	}
	return task.Clone(), true
}

// Tasks returns one page of the filtered, sorted task list.
func (t *Tracker) Tasks(q TaskQuery) query.Page[*schema.Task] {
	t.mu.Lock()
	defer t.mu.Unlock()
	tasks := t.selectTasks(q)
	return query.Paginate(cloneTasks(query.Sort(tasks, q.Sort, t.locale)), q.Page, q.PageSize)
}

// Weeks returns the filtered tasks grouped by Monday-start week.
func (t *Tracker) Weeks(q TaskQuery) []query.WeekGroup {
	t.mu.Lock()
	defer t.mu.Unlock()
	tasks := cloneTasks(query.Sort(t.selectTasks(q), q.Sort, t.locale))
	return query.GroupByWeek(tasks, t.clock.Now().Location())
}

// selectTasks applies the filters of q. Callers hold mu.
func (t *Tracker) selectTasks(q TaskQuery) []*schema.Task {
	now := t.clock.Now()
	tasks := query.ByView(t.tasks.All(), q.View)
	tasks = query.ByTag(tasks, q.Tag)
	tasks = query.Search(tasks, q.Search)
	if q.Range.Period != "" && q.Range.Period != query.PeriodAll {
		field := q.Field
		if field == "" {
			field = query.FieldCreated
		}
		tasks = query.InRange(tasks, q.Range, field, now)
	}
	return query.ByStatus(tasks, q.Status, now)
}

// Inbox returns the tasks waiting to be organized, newest first.
func (t *Tracker) Inbox() []*schema.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneTasks(t.tasks.Inbox())
}

// Quadrants returns the organized open tasks within r by quadrant.
func (t *Tracker) Quadrants(r query.Range) store.Board {
	t.mu.Lock()
	defer t.mu.Unlock()
	board := t.tasks.Quadrants(r, t.clock.Now())
	for q, tasks := range board {
		board[q] = cloneTasks(tasks)
	}
	return board
}

// QuadrantPage returns one page of the board within r, size tasks per
// quadrant.
func (t *Tracker) QuadrantPage(r query.Range, page, size int) store.BoardPage {
	return t.Quadrants(r).Paged(page, size)
}

// Stats summarizes the tasks created within r.
func (t *Tracker) Stats(r query.Range) query.Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return query.Summarize(query.InRange(t.tasks.All(), r, query.FieldCreated, t.clock.Now()))
}

// Calendar returns the live tasks placed on day d.
func (t *Tracker) Calendar(d schema.Date, mode query.CalendarMode) []*schema.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneTasks(query.OnDate(t.tasks.All(), d, mode, t.clock.Now().Location()))
}

func cloneTasks(tasks []*schema.Task) []*schema.Task {
	out := make([]*schema.Task, len(tasks))
	for i, task := range tasks {
		out[i] = task.Clone()
	}
	return out
}
