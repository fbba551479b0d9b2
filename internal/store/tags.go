package store

import (
	"slices"
	"strings"
)

// Tags is the ordered, deduplicated tag set. Removing a tag does not touch
// tasks that still carry it.
type Tags struct {
	items []string
}

// NewTags wraps an existing list, dropping blanks and duplicates.
func NewTags(items []string) *Tags {
	s := &Tags{}
	s.Replace(items)
	return s
}

// Add appends name to the set.
func (s *Tags) Add(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyTag
	}
	if s.Has(name) {
		return ErrDuplicateTag
	}
	s.items = append(s.items, name)
	return nil
}

// Remove deletes name from the set.
func (s *Tags) Remove(name string) bool {
	i := slices.Index(s.items, strings.TrimSpace(name))
	if i < 0 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

// Has reports whether name is in the set.
func (s *Tags) Has(name string) bool {
	return slices.Contains(s.items, name)
}

// All returns the tags in order.
func (s *Tags) All() []string {
	return slices.Clone(s.items)
}

// Replace swaps in a whole new list.
func (s *Tags) Replace(items []string) {
	s.items = make([]string, 0, len(items))
	for _, name := range items {
		name = strings.TrimSpace(name)
		if name != "" && !slices.Contains(s.items, name) {
			s.items = append(s.items, name)
		}
	}
}
