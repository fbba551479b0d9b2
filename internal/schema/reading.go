package schema

import "time"

// MaxKeyPoints is the number of key-point slots on a reading record.
const MaxKeyPoints = 3

// DeepDive holds the optional reflection prompts of a reading record.
type DeepDive struct {
	Topic       string `json:"topic"`
	Comparison  string `json:"comparison"`
	NewIdea     string `json:"newIdea"`
	Quote       string `json:"quote"`
	ProsCons    string `json:"prosCons"`
	Questions   string `json:"questions"`
	NextBooks   string `json:"nextBooks"`
	RecommendTo string `json:"recommendTo"`
}

// IsZero reports whether every prompt is blank.
func (d DeepDive) IsZero() bool {
	return d == DeepDive{}
}

// ReadingRecord is one entry of the reading log.
type ReadingRecord struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	DaysSpent    int       `json:"daysSpent"`
	HoursSpent   float64   `json:"hoursSpent"`
	Rating       int       `json:"rating"` // 0-5
	Summary      string    `json:"summary"`
	KeyPoints    []string  `json:"keyPoints"`
	Thoughts     string    `json:"thoughts"`
	ActionItem   string    `json:"actionItem"`
	FinishedDate Date      `json:"finishedDate"`
	DeepDive     DeepDive  `json:"deepDive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Clone returns a deep copy of r.
func (r *ReadingRecord) Clone() *ReadingRecord {
	c := *r
	if r.KeyPoints != nil {
		c.KeyPoints = append([]string(nil), r.KeyPoints...)
	}
	return &c
}
