package store

import (
	"slices"
	"strings"
	"time"

	"github.com/dailyfocus/dailyfocus/internal/dates"
	"github.com/dailyfocus/dailyfocus/internal/schema"
)

// ReadingInput is the reading record form. An empty ID creates a new record.
type ReadingInput struct {
	ID           string
	Title        string
	Author       string
	DaysSpent    int
	HoursSpent   float64
	Rating       int
	Summary      string
	KeyPoints    []string
	Thoughts     string
	ActionItem   string
	FinishedDate schema.Date
	DeepDive     schema.DeepDive
}

// Validate checks the form and returns the cleaned key points.
func (in ReadingInput) Validate() ([]string, error) {
	verr := &ValidationError{}
	if strings.TrimSpace(in.Title) == "" {
		verr.add("title", "required")
	}
	if strings.TrimSpace(in.Summary) == "" {
		verr.add("summary", "required")
	}
	var points []string
	for _, p := range in.KeyPoints {
		if p = strings.TrimSpace(p); p != "" {
			points = append(points, p)
		}
	}
	switch {
	case len(points) == 0:
		verr.add("keyPoints", "at least one key point is required")
	case len(points) > schema.MaxKeyPoints:
		verr.add("keyPoints", "at most 3 key points")
	}
	if in.Rating < 0 || in.Rating > 5 {
		verr.add("rating", "must be between 0 and 5")
	}
	if in.DaysSpent < 0 || in.HoursSpent < 0 {
		verr.add("timeSpent", "must not be negative")
	}
	if len(verr.Problems) > 0 {
		return nil, verr
	}
	return points, nil
}

// Readings is the reading log, most recent first.
type Readings struct {
	items []*schema.ReadingRecord
}

// NewReadings wraps an existing collection.
func NewReadings(items []*schema.ReadingRecord) *Readings {
	s := &Readings{}
	s.Replace(items)
	return s
}

// CreateOrUpdate validates and saves the form. New records go to the front.
// finishedDate defaults to today for new records and is kept on update when
// the form leaves it empty. An unknown non-empty ID returns (nil, nil).
func (s *Readings) CreateOrUpdate(in ReadingInput, now time.Time) (*schema.ReadingRecord, error) {
	points, err := in.Validate()
	if err != nil {
		return nil, err
	}

	var r *schema.ReadingRecord
	if in.ID != "" {
		existing, ok := s.Get(in.ID)
		if !ok {
			return nil, nil
		}
		r = existing
	} else {
		r = &schema.ReadingRecord{ID: schema.NewID(), CreatedAt: now}
	}

	r.Title = strings.TrimSpace(in.Title)
	r.Author = strings.TrimSpace(in.Author)
	r.DaysSpent = in.DaysSpent
	r.HoursSpent = in.HoursSpent
	r.Rating = in.Rating
	r.Summary = strings.TrimSpace(in.Summary)
	r.KeyPoints = points
	r.Thoughts = strings.TrimSpace(in.Thoughts)
	r.ActionItem = strings.TrimSpace(in.ActionItem)
	r.DeepDive = trimDeepDive(in.DeepDive)
	switch {
	case !in.FinishedDate.IsZero():
		r.FinishedDate = in.FinishedDate
	case r.FinishedDate.IsZero():
		r.FinishedDate = dates.Today(now)
	}

	if in.ID == "" {
		s.items = slices.Insert(s.items, 0, r)
	}
	return r, nil
}

func trimDeepDive(d schema.DeepDive) schema.DeepDive {
	return schema.DeepDive{
		Topic:       strings.TrimSpace(d.Topic),
		Comparison:  strings.TrimSpace(d.Comparison),
		NewIdea:     strings.TrimSpace(d.NewIdea),
		Quote:       strings.TrimSpace(d.Quote),
		ProsCons:    strings.TrimSpace(d.ProsCons),
		Questions:   strings.TrimSpace(d.Questions),
		NextBooks:   strings.TrimSpace(d.NextBooks),
		RecommendTo: strings.TrimSpace(d.RecommendTo),
	}
}

// Get returns the record with id.
func (s *Readings) Get(id string) (*schema.ReadingRecord, bool) {
	i := s.index(id)
	if i < 0 {
		return nil, false
	}
	return s.items[i], true
}

// Delete removes a record.
func (s *Readings) Delete(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

// All returns the collection in storage order.
func (s *Readings) All() []*schema.ReadingRecord {
	return slices.Clone(s.items)
}

// Replace swaps in a whole new collection.
func (s *Readings) Replace(items []*schema.ReadingRecord) {
	s.items = make([]*schema.ReadingRecord, 0, len(items))
	for _, r := range items {
		if r != nil {
			s.items = append(s.items, r)
		}
	}
}

// Len returns the number of records.
func (s *Readings) Len() int { return len(s.items) }

func (s *Readings) index(id string) int {
	return slices.IndexFunc(s.items, func(r *schema.ReadingRecord) bool { return r.ID == id })
}
