// Package tracker is the command and query surface of DailyFocus.
//
// A Tracker owns the four in-memory stores, the persistence gateway and an
// optional cloud sync engine. Every command and query runs under one mutex,
// so each mutation runs to completion before the next one starts. After a
// committed mutation the affected collection is saved, subscribers are
// notified and a debounced upload is requested.
//
// Queries return copies; callers may keep or modify them freely.
package tracker

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dailyfocus/dailyfocus/internal/cloudsync"
	"github.com/dailyfocus/dailyfocus/internal/dates"
	"github.com/dailyfocus/dailyfocus/internal/persist"
	"github.com/dailyfocus/dailyfocus/internal/query"
	"github.com/dailyfocus/dailyfocus/internal/schema"
	"github.com/dailyfocus/dailyfocus/internal/store"
)

// Collection names a persisted collection.
type Collection string

const (
	CollectionTasks    Collection = "tasks"
	CollectionGoals    Collection = "goals"
	CollectionTags     Collection = "tags"
	CollectionReadings Collection = "readings"
	CollectionAll      Collection = "all"
)

// Change describes a committed mutation.
type Change struct {
	Collection Collection `json:"collection"`
	Op         string     `json:"op"`
	ID         string     `json:"id,omitempty"`
}

// Config configures a Tracker.
type Config struct {
	Clock  dates.Clock
	Locale string // collation for title sorts
	Logger *log.Logger
}

// Tracker serializes access to the application state.
type Tracker struct {
	gw     *persist.Gateway
	clock  dates.Clock
	locale string
	logger *log.Logger

	// ===== Guarded by mu =====
	mu       sync.Mutex
	tasks    *store.Tasks
	goals    *store.Goals
	readings *store.Readings
	tags     *store.Tags
	engine   *cloudsync.Engine
	reset    bool

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// Open loads the stored state through gw.
func Open(ctx context.Context, gw *persist.Gateway, cfg Config) (*Tracker, error) {
	if cfg.Clock == nil {
		cfg.Clock = dates.SystemClock{}
	}
	if cfg.Locale == "" {
		cfg.Locale = query.DefaultLocale
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[tracker] ", log.LstdFlags)
	}

	state, err := gw.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	if state.Reset {
		cfg.Logger.Printf("WARNING: Local data was corrupted and has been reset")
	}

	return &Tracker{
		gw:       gw,
		clock:    cfg.Clock,
		locale:   cfg.Locale,
		logger:   cfg.Logger,
		tasks:    store.NewTasks(state.Tasks),
		goals:    store.NewGoals(state.Goals),
		readings: store.NewReadings(state.Readings),
		tags:     store.NewTags(state.Tags),
		reset:    state.Reset,
		subs:     make(map[int]func(Change)),
	}, nil
}

// WasReset reports whether Open found corrupted data and reset it.
func (t *Tracker) WasReset() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reset
}

// Gateway returns the persistence gateway, for sync settings.
func (t *Tracker) Gateway() *persist.Gateway { return t.gw }

// Now returns the tracker's current time.
func (t *Tracker) Now() time.Time { return t.clock.Now() }

// AttachSync connects a sync engine. Committed mutations then request a
// debounced upload.
func (t *Tracker) AttachSync(e *cloudsync.Engine) {
	t.mu.Lock()
	t.engine = e
	t.mu.Unlock()
}

// Sync returns the attached engine, or nil.
func (t *Tracker) Sync() *cloudsync.Engine {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine
}

// Subscribe registers fn for committed changes. The returned function
// removes the subscription.
func (t *Tracker) Subscribe(fn func(Change)) func() {
	t.subMu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.subMu.Unlock()

	return func() {
		t.subMu.Lock()
		delete(t.subs, id)
		t.subMu.Unlock()
	}
}

// Close uploads any pending change and stops the sync engine.
func (t *Tracker) Close(ctx context.Context) error {
	e := t.Sync()
	if e == nil {
		return nil
	}
	res := e.Flush(ctx)
	e.Stop()
	if !res.Skipped && !res.Success {
		return fmt.Errorf("failed to upload pending changes: %w", res.Err)
	}
	return nil
}

// mutate runs fn under the lock and, when fn reports a change, saves c and
// publishes the change. If the save fails c is rolled back, so memory never
// holds state the database does not.
func (t *Tracker) mutate(ctx context.Context, c Collection, op, id string, fn func(now time.Time) (bool, error)) (bool, error) {
	t.mu.Lock()
	rollback := t.checkpoint(c)
	changed, err := fn(t.clock.Now())
	if err != nil || !changed {
		t.mu.Unlock()
		return false, err
	}
	if err := t.save(ctx, c); err != nil {
		rollback()
		t.mu.Unlock()
		t.logger.Printf("WARNING: %s %s rolled back: %v", c, op, err)
		return false, err
	}
	engine := t.engine
	t.mu.Unlock()

	t.publish(Change{Collection: c, Op: op, ID: id})
	if engine != nil {
		engine.AutoUpload(ctx)
	}
	return true, nil
}

// checkpoint copies collection c and returns a func that restores it.
// Callers hold mu.
func (t *Tracker) checkpoint(c Collection) func() {
	var restore []func()
	if c == CollectionTasks || c == CollectionAll {
		tasks := cloneAll(t.tasks.All(), (*schema.Task).Clone)
		restore = append(restore, func() { t.tasks.Replace(tasks) })
	}
	if c == CollectionGoals || c == CollectionAll {
		goals := cloneAll(t.goals.All(), (*schema.Goal).Clone)
		restore = append(restore, func() { t.goals.Replace(goals) })
	}
	if c == CollectionReadings || c == CollectionAll {
		readings := cloneAll(t.readings.All(), (*schema.ReadingRecord).Clone)
		restore = append(restore, func() { t.readings.Replace(readings) })
	}
	if c == CollectionTags || c == CollectionAll {
		tags := t.tags.All()
		restore = append(restore, func() { t.tags.Replace(tags) })
	}
	return func() {
		for _, fn := range restore {
			fn()
		}
	}
}

func cloneAll[T any](items []T, clone func(T) T) []T {
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = clone(it)
	}
	return out
}

// save writes collection c. Callers hold mu.
func (t *Tracker) save(ctx context.Context, c Collection) error {
	var err error
	switch c {
	case CollectionTasks:
		err = t.gw.SaveTasks(ctx, t.tasks.All())
	case CollectionGoals:
		err = t.gw.SaveGoals(ctx, t.goals.All())
	case CollectionTags:
		err = t.gw.SaveTags(ctx, t.tags.All())
	case CollectionReadings:
		err = t.gw.SaveReadings(ctx, t.readings.All())
	default:
		err = t.gw.SaveAll(ctx, t.state())
	}
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", c, err)
	}
	return nil
}

// state returns the live collections. Callers hold mu.
func (t *Tracker) state() *persist.State {
	return &persist.State{
		Tasks:    t.tasks.All(),
		Goals:    t.goals.All(),
		Tags:     t.tags.All(),
		Readings: t.readings.All(),
	}
}

func (t *Tracker) publish(c Change) {
	t.subMu.Lock()
	fns := make([]func(Change), 0, len(t.subs))
	for _, fn := range t.subs {
		fns = append(fns, fn)
	}
	t.subMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
