package schema

import (
	"fmt"
	"strings"
	"time"
)

// Goal is a long-running objective with a progress bar and a countdown.
type Goal struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     Date      `json:"dueDate"`
	Progress    int       `json:"progress"` // 0-100
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ClampProgress limits p to [0, 100].
func ClampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// SetProgress clamps p and forces completion once it reaches 100.
func (g *Goal) SetProgress(p int) {
	g.Progress = ClampProgress(p)
	if g.Progress == 100 {
		g.Completed = true
	}
}

// Clone returns a copy of g.
func (g *Goal) Clone() *Goal {
	c := *g
	return &c
}

// Validate checks if the Goal has valid field values.
func (g *Goal) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(g.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if g.Progress < 0 || g.Progress > 100 {
		return fmt.Errorf("progress must be between 0 and 100 (got %d)", g.Progress)
	}
	return nil
}
