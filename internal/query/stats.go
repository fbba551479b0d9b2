package query

import (
	"math"

	"github.com/dailyfocus/dailyfocus/internal/schema"
)

// Summary is the headline of the statistics view.
type Summary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Inbox     int `json:"inbox"`
	Rate      int `json:"rate"` // completed / total, in whole percent
}

// Summarize counts the live (not deleted) tasks of a list.
func Summarize(tasks []*schema.Task) Summary {
	var s Summary
	for _, t := range tasks {
		if t.Deleted {
			continue
		}
		s.Total++
		if t.Completed {
			s.Completed++
		}
		if !t.Organized && !t.Completed {
			s.Inbox++
		}
	}
	if s.Total > 0 {
		s.Rate = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	return s
}
