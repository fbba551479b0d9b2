// Package persist maps the in-memory collections of DailyFocus onto a
// key-value store and converts whole-state documents to and from backup
// files.
//
// Each collection lives under its own key as a JSON array and is always
// written whole. A collection that fails to parse on load invalidates the
// entire local dataset: all four collections are reset to their defaults and
// the defaults are written back in one batch.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/dailyfocus/dailyfocus/internal/schema"
)

// Storage keys.
const (
	KeyTasks    = "dailyfocus-tasks"
	KeyGoals    = "dailyfocus-goals"
	KeyTags     = "dailyfocus-tags"
	KeyReadings = "dailyfocus-reading"

	KeyRemoteHandle = "dailyfocus-gist-id"
	KeyLastSync     = "dailyfocus-last-sync"
	KeyCredential   = "dailyfocus-api-key"
	KeyAutoSync     = "dailyfocus-auto-sync"
)

// KV is the local key-value store. *db.DB implements it.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, values map[string]string) error
}

// State is the content of the four collections.
type State struct {
	Tasks    []*schema.Task
	Goals    []*schema.Goal
	Tags     []string
	Readings []*schema.ReadingRecord

	// Reset is set by Load when corrupted data forced a reset to defaults.
	Reset bool
}

// DefaultState returns empty collections and the default tag set.
func DefaultState() *State {
	return &State{
		Tasks:    []*schema.Task{},
		Goals:    []*schema.Goal{},
		Tags:     schema.DefaultTagSet(),
		Readings: []*schema.ReadingRecord{},
	}
}

// Document wraps the state in a whole-state document. The collections are
// shared, not copied.
func (s *State) Document() *schema.Document {
	return &schema.Document{
		Version:        schema.Version,
		Tasks:          nonNil(s.Tasks),
		Goals:          nonNil(s.Goals),
		CustomTags:     nonNil(s.Tags),
		ReadingRecords: nonNil(s.Readings),
	}
}

// StateOf unpacks a validated document.
func StateOf(doc *schema.Document) *State {
	doc.FillDefaults()
	return &State{
		Tasks:    doc.Tasks,
		Goals:    doc.Goals,
		Tags:     doc.CustomTags,
		Readings: doc.ReadingRecords,
	}
}

// Config configures a Gateway.
type Config struct {
	Logger *log.Logger
}

// Gateway reads and writes application state through a KV store.
type Gateway struct {
	kv     KV
	logger *log.Logger
}

// New creates a Gateway.
//
// If cfg.Logger is nil, a default logger writing to stderr is used.
func New(kv KV, cfg Config) *Gateway {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[persist] ", log.LstdFlags)
	}
	return &Gateway{kv: kv, logger: logger}
}

// Load reads all four collections. Missing keys yield defaults. If any
// stored collection is not valid JSON, every collection is reset and the
// defaults are written back; the returned state then has Reset set.
// An error is only returned when the store itself fails.
func (g *Gateway) Load(ctx context.Context) (*State, error) {
	state := DefaultState()

	targets := []struct {
		key string
		dst any
	}{
		{KeyTasks, &state.Tasks},
		{KeyGoals, &state.Goals},
		{KeyTags, &state.Tags},
		{KeyReadings, &state.Readings},
	}

	for _, t := range targets {
		raw, ok, err := g.kv.Get(ctx, t.key)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", t.key, err)
		}
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(raw), t.dst); err != nil {
			g.logger.Printf("WARNING: %s is corrupted (%v); resetting local data", t.key, err)
			return g.reset(ctx)
		}
	}

	if state.Tasks == nil {
		state.Tasks = []*schema.Task{}
	}
	if state.Goals == nil {
		state.Goals = []*schema.Goal{}
	}
	if state.Tags == nil {
		state.Tags = schema.DefaultTagSet()
	}
	if state.Readings == nil {
		state.Readings = []*schema.ReadingRecord{}
	}
	return state, nil
}

func (g *Gateway) reset(ctx context.Context) (*State, error) {
	state := DefaultState()
	state.Reset = true
	if err := g.SaveAll(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to reset corrupted data: %w", err)
	}
	return state, nil
}

// SaveTasks overwrites the stored task collection.
func (g *Gateway) SaveTasks(ctx context.Context, tasks []*schema.Task) error {
	return g.save(ctx, KeyTasks, nonNil(tasks))
}

// SaveGoals overwrites the stored goal collection.
func (g *Gateway) SaveGoals(ctx context.Context, goals []*schema.Goal) error {
	return g.save(ctx, KeyGoals, nonNil(goals))
}

// SaveTags overwrites the stored tag list.
func (g *Gateway) SaveTags(ctx context.Context, tags []string) error {
	return g.save(ctx, KeyTags, nonNil(tags))
}

// SaveReadings overwrites the stored reading log.
func (g *Gateway) SaveReadings(ctx context.Context, readings []*schema.ReadingRecord) error {
	return g.save(ctx, KeyReadings, nonNil(readings))
}

// SaveAll overwrites all four collections in one batch.
func (g *Gateway) SaveAll(ctx context.Context, s *State) error {
	values := make(map[string]string, 4)
	for key, v := range map[string]any{
		KeyTasks:    nonNil(s.Tasks),
		KeyGoals:    nonNil(s.Goals),
		KeyTags:     nonNil(s.Tags),
		KeyReadings: nonNil(s.Readings),
	} {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		values[key] = string(data)
	}
	if err := g.kv.SetMany(ctx, values); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func (g *Gateway) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := g.kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
