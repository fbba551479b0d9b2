package store

import (
	"slices"
	"strings"
	"time"

	"github.com/dailyfocus/dailyfocus/internal/schema"
)

// GoalInput is the goal edit form. An empty ID creates a new goal.
type GoalInput struct {
	ID          string
	Title       string
	Description string
	DueDate     schema.Date
	Progress    int
}

// Goals is the goal collection in creation order.
type Goals struct {
	items []*schema.Goal
}

// NewGoals wraps an existing collection.
func NewGoals(items []*schema.Goal) *Goals {
	s := &Goals{}
	s.Replace(items)
	return s
}

// CreateOrUpdate saves the form. New goals are appended. On update the
// creation time is kept. Progress is clamped and completion follows
// progress == 100. An unknown non-empty ID returns (nil, nil).
func (s *Goals) CreateOrUpdate(in GoalInput, now time.Time) (*schema.Goal, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	progress := schema.ClampProgress(in.Progress)

	if in.ID != "" {
		g, ok := s.Get(in.ID)
		if !ok {
			return nil, nil
		}
		g.Title = title
		g.Description = strings.TrimSpace(in.Description)
		g.DueDate = in.DueDate
		g.Progress = progress
		g.Completed = progress == 100
		return g, nil
	}

	g := &schema.Goal{
		ID:          schema.NewID(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		DueDate:     in.DueDate,
		CreatedAt:   now,
	}
	g.SetProgress(progress)
	s.items = append(s.items, g)
	return g, nil
}

// Get returns the goal with id.
func (s *Goals) Get(id string) (*schema.Goal, bool) {
	i := s.index(id)
	if i < 0 {
		return nil, false
	}
	return s.items[i], true
}

// UpdateProgress adds delta to the progress, clamping to [0, 100]. Reaching
// 100 completes the goal.
func (s *Goals) UpdateProgress(id string, delta int) bool {
	g, ok := s.Get(id)
	if !ok {
		return false
	}
	g.SetProgress(g.Progress + delta)
	return true
}

// ToggleCompleted flips completion. Completing sets progress to 100,
// reopening resets it to 0.
func (s *Goals) ToggleCompleted(id string) bool {
	g, ok := s.Get(id)
	if !ok {
		return false
	}
	g.Completed = !g.Completed
	if g.Completed {
		g.Progress = 100
	} else {
		g.Progress = 0
	}
	return true
}

// Delete removes a goal.
func (s *Goals) Delete(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

// Active returns the goals still in progress.
func (s *Goals) Active() []*schema.Goal {
	return s.filter(func(g *schema.Goal) bool { return !g.Completed })
}

// Completed returns the finished goals.
func (s *Goals) Completed() []*schema.Goal {
	return s.filter(func(g *schema.Goal) bool { return g.Completed })
}

// Banner picks the goal shown in the header: the first active goal, else the
// first goal at all.
func (s *Goals) Banner() (*schema.Goal, bool) {
	for _, g := range s.items {
		if !g.Completed {
			return g, true
		}
	}
	if len(s.items) > 0 {
		return s.items[0], true
	}
	return nil, false
}

// All returns the collection in storage order.
func (s *Goals) All() []*schema.Goal {
	return slices.Clone(s.items)
}

// Replace swaps in a whole new collection.
func (s *Goals) Replace(items []*schema.Goal) {
	s.items = make([]*schema.Goal, 0, len(items))
	for _, g := range items {
		if g != nil {
			s.items = append(s.items, g)
		}
	}
}

// Len returns the number of goals.
func (s *Goals) Len() int { return len(s.items) }

func (s *Goals) filter(keep func(*schema.Goal) bool) []*schema.Goal {
	out := []*schema.Goal{}
	for _, g := range s.items {
		if keep(g) {
			out = append(out, g)
		}
	}
	return out
}

func (s *Goals) index(id string) int {
	return slices.IndexFunc(s.items, func(g *schema.Goal) bool { return g.ID == id })
}
