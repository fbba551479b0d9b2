package store

import (
	"errors"
	"testing"

	"github.com/dailyfocus/dailyfocus/internal/schema"
)

func validReading() ReadingInput {
	return ReadingInput{
		Title:     "Deep Work",
		Author:    "Cal Newport",
		Rating:    4,
		Summary:   "Focus is a skill.",
		KeyPoints: []string{"  schedule deep work ", "", "embrace boredom"},
	}
}

func TestReadings_CreateOrUpdate(t *testing.T) {
	s := NewReadings(nil)
	now := at("2025-03-05", 21)

	r, err := s.CreateOrUpdate(validReading(), now)
	if err != nil {
		t.Fatalf("CreateOrUpdate failed: %v", err)
	}
	if len(r.KeyPoints) != 2 || r.KeyPoints[0] != "schedule deep work" {
		t.Errorf("key points = %q", r.KeyPoints)
	}
	if r.FinishedDate.String() != "2025-03-05" {
		t.Errorf("finishedDate = %s, want today", r.FinishedDate)
	}

	second, _ := s.CreateOrUpdate(validReading(), now)
	if s.All()[0].ID != second.ID {
		t.Error("new records should be prepended")
	}

	in := validReading()
	in.ID = r.ID
	in.Summary = "Updated"
	updated, err := s.CreateOrUpdate(in, at("2025-04-01", 9))
	if err != nil || updated != r {
		t.Fatalf("update = %v, %v", updated, err)
	}
	if r.Summary != "Updated" || r.FinishedDate.String() != "2025-03-05" {
		t.Errorf("after update: summary=%q finished=%s", r.Summary, r.FinishedDate)
	}
	if s.Len() != 2 {
		t.Errorf("update added a record: Len=%d", s.Len())
	}
}

func TestReadings_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ReadingInput)
		field  string
	}{
		{"blank title", func(in *ReadingInput) { in.Title = " " }, "title"},
		{"blank summary", func(in *ReadingInput) { in.Summary = "" }, "summary"},
		{"no key points", func(in *ReadingInput) { in.KeyPoints = []string{"", "  "} }, "keyPoints"},
		{"too many key points", func(in *ReadingInput) { in.KeyPoints = []string{"a", "b", "c", "d"} }, "keyPoints"},
		{"rating too high", func(in *ReadingInput) { in.Rating = 6 }, "rating"},
		{"negative rating", func(in *ReadingInput) { in.Rating = -1 }, "rating"},
		{"negative hours", func(in *ReadingInput) { in.HoursSpent = -2 }, "timeSpent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewReadings(nil)
			in := validReading()
			tt.mutate(&in)

			_, err := s.CreateOrUpdate(in, at("2025-03-05", 9))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if !verr.Has(tt.field) {
				t.Errorf("problems = %+v, want field %s", verr.Problems, tt.field)
			}
			if !IsValidation(err) {
				t.Error("IsValidation should recognize the error")
			}
			if s.Len() != 0 {
				t.Error("rejected form must not be saved")
			}
		})
	}
}

func TestReadings_FailedUpdateLeavesRecord(t *testing.T) {
	s := NewReadings(nil)
	r, _ := s.CreateOrUpdate(validReading(), at("2025-03-05", 9))

	in := validReading()
	in.ID = r.ID
	in.Title = "changed"
	in.Summary = ""
	if _, err := s.CreateOrUpdate(in, at("2025-03-06", 9)); err == nil {
		t.Fatal("expected validation error")
	}
	if r.Title != "Deep Work" {
		t.Error("rejected update partially applied")
	}
	if !s.Delete(r.ID) || s.Delete(r.ID) {
		t.Error("Delete semantics")
	}
}

func TestTags(t *testing.T) {
	s := NewTags(schema.DefaultTags)
	if got := s.All(); len(got) != 3 || got[0] != "工作" {
		t.Fatalf("All() = %v", got)
	}

	if err := s.Add(" 健身 "); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !s.Has("健身") {
		t.Error("tag not trimmed on add")
	}
	if err := s.Add("工作"); !errors.Is(err, ErrDuplicateTag) {
		t.Errorf("duplicate error = %v", err)
	}
	if err := s.Add("  "); !errors.Is(err, ErrEmptyTag) {
		t.Errorf("blank error = %v", err)
	}

	if !s.Remove("工作") || s.Remove("工作") {
		t.Error("Remove semantics")
	}

	s.Replace([]string{"a", "a", " ", "b"})
	if got := s.All(); len(got) != 2 {
		t.Errorf("Replace should dedupe: %v", got)
	}
}
