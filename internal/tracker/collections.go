package tracker

import (
	"context"
	"time"

	"github.com/dailyfocus/dailyfocus/internal/schema"
	"github.com/dailyfocus/dailyfocus/internal/store"
)

// SaveGoal creates a goal (empty ID) or updates one. An unknown ID returns
// (nil, nil).
func (t *Tracker) SaveGoal(ctx context.Context, in store.GoalInput) (*schema.Goal, error) {
	var saved *schema.Goal
	op := "update"
	if in.ID == "" {
		op = "create"
	}
	_, err := t.mutate(ctx, CollectionGoals, op, in.ID, func(now time.Time) (bool, error) {
		g, err := t.goals.CreateOrUpdate(in, now)
		if err != nil || g == nil {
			return false, err
		}
		saved = g.Clone()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// UpdateGoalProgress adds delta percentage points to a goal.
func (t *Tracker) UpdateGoalProgress(ctx context.Context, id string, delta int) (bool, error) {
	return t.mutate(ctx, CollectionGoals, "progress", id, func(time.Time) (bool, error) {
		return t.goals.UpdateProgress(id, delta), nil
	})
}

// ToggleGoal flips a goal between active and completed.
func (t *Tracker) ToggleGoal(ctx context.Context, id string) (bool, error) {
	return t.mutate(ctx, CollectionGoals, "toggle", id, func(time.Time) (bool, error) {
		return t.goals.ToggleCompleted(id), nil
	})
}

// DeleteGoal removes a goal.
func (t *Tracker) DeleteGoal(ctx context.Context, id string) (bool, error) {
	return t.mutate(ctx, CollectionGoals, "delete", id, func(time.Time) (bool, error) {
		return t.goals.Delete(id), nil
	})
}

// Goal returns a copy of the goal with id.
func (t *Tracker) Goal(id string) (*schema.Goal, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	g, ok := t.goals.Get(id)
	if !ok {
		return nil, false
	}
	return g.Clone(), true
}

// Goals returns the active and the completed goals.
func (t *Tracker) Goals() (active, completed []*schema.Goal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneGoals(t.goals.Active()), cloneGoals(t.goals.Completed())
}

// GoalBanner returns the goal shown in the header.
func (t *Tracker) GoalBanner() (*schema.Goal, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	g, ok := t.goals.Banner()
	if !ok {
		return nil, false
	}
	return g.Clone(), true
}

// SaveReading creates a reading record (empty ID) or updates one. Invalid
// input returns a *store.ValidationError. An unknown ID returns (nil, nil).
func (t *Tracker) SaveReading(ctx context.Context, in store.ReadingInput) (*schema.ReadingRecord, error) {
	var saved *schema.ReadingRecord
	op := "update"
	if in.ID == "" {
		op = "create"
	}
	_, err := t.mutate(ctx, CollectionReadings, op, in.ID, func(now time.Time) (bool, error) {
		r, err := t.readings.CreateOrUpdate(in, now)
		if err != nil || r == nil {
			return false, err
		}
		saved = r.Clone()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// DeleteReading removes a reading record.
func (t *Tracker) DeleteReading(ctx context.Context, id string) (bool, error) {
	return t.mutate(ctx, CollectionReadings, "delete", id, func(time.Time) (bool, error) {
		return t.readings.Delete(id), nil
	})
}

// Reading returns a copy of the record with id.
func (t *Tracker) Reading(id string) (*schema.ReadingRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.readings.Get(id)
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// Readings returns the reading log, most recent first.
func (t *Tracker) Readings() []*schema.ReadingRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	all := t.readings.All()
	out := make([]*schema.ReadingRecord, len(all))
	for i, r := range all {
		out[i] = r.Clone()
	}
	return out
}

// AddTag appends a tag to the tag set.
func (t *Tracker) AddTag(ctx context.Context, name string) error {
	_, err := t.mutate(ctx, CollectionTags, "create", name, func(time.Time) (bool, error) {
		if err := t.tags.Add(name); err != nil {
			return false, err
		}
		return true, nil
	})
	return err
}

// RemoveTag deletes a tag. Tasks carrying it keep it.
func (t *Tracker) RemoveTag(ctx context.Context, name string) (bool, error) {
	return t.mutate(ctx, CollectionTags, "delete", name, func(time.Time) (bool, error) {
		return t.tags.Remove(name), nil
	})
}

// Tags returns the tag set in order.
func (t *Tracker) Tags() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tags.All()
}

func cloneGoals(goals []*schema.Goal) []*schema.Goal {
	out := make([]*schema.Goal, len(goals))
	for i, g := range goals {
		out[i] = g.Clone()
	}
	return out
}
