package store

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyTitle is returned when a task or goal title is blank.
	ErrEmptyTitle = errors.New("title must not be empty")

	// ErrEmptyTag is returned when adding a blank tag.
	ErrEmptyTag = errors.New("tag must not be empty")

	// ErrDuplicateTag is returned when adding a tag that already exists.
	ErrDuplicateTag = errors.New("tag already exists")
)

// ValidationError lists every problem found in a reading record form.
// Nothing is saved when it is returned.
type ValidationError struct {
	Problems []FieldProblem
}

// FieldProblem is one rejected field.
type FieldProblem struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, fmt.Sprintf("%s: %s", p.Field, p.Message))
	}
	return "invalid reading record: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	e.Problems = append(e.Problems, FieldProblem{Field: field, Message: msg})
}

// Has reports whether field was rejected.
func (e *ValidationError) Has(field string) bool {
	for _, p := range e.Problems {
		if p.Field == field {
			return true
		}
	}
	return false
}

// IsValidation reports whether err is a form validation failure.
func IsValidation(err error) bool {
	if errors.Is(err, ErrEmptyTitle) || errors.Is(err, ErrEmptyTag) || errors.Is(err, ErrDuplicateTag) {
		return true
	}
	var ve *ValidationError
	return errors.As(err, &ve)
}
