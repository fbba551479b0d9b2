package schema

import (
	"errors"
	"time"
)

// Version is written into every exported or uploaded document.
const Version = "5.0"

// AppName prefixes export filenames and persistence keys.
const AppName = "dailyfocus"

// DefaultTags seeds the tag set of a fresh installation.
var DefaultTags = []string{"工作", "生活", "学习"}

// DefaultTagSet returns a fresh copy of DefaultTags.
func DefaultTagSet() []string {
	return append([]string(nil), DefaultTags...)
}

var (
	// ErrMissingVersion is returned when a document has no version.
	ErrMissingVersion = errors.New("document has no version")
	// ErrMissingTasks is returned when a document has no tasks array.
	ErrMissingTasks = errors.New("document has no tasks array")
)

// Document is the whole-state unit used for export, import and sync.
// ExportDate is set on local exports, UpdatedAt on uploads.
type Document struct {
	Version        string           `json:"version"`
	ExportDate     *time.Time       `json:"exportDate,omitempty"`
	UpdatedAt      *time.Time       `json:"updatedAt,omitempty"`
	Tasks          []*Task          `json:"tasks"`
	Goals          []*Goal          `json:"goals"`
	CustomTags     []string         `json:"customTags"`
	ReadingRecords []*ReadingRecord `json:"readingRecords"`
}

// Validate requires a version and a present tasks array. An empty tasks array
// is valid; a missing one is not.
func (d *Document) Validate() error {
	if d.Version == "" {
		return ErrMissingVersion
	}
	if d.Tasks == nil {
		return ErrMissingTasks
	}
	return nil
}

// FillDefaults replaces missing optional collections with empty slices and the
// default tag set.
func (d *Document) FillDefaults() {
	if d.Goals == nil {
		d.Goals = []*Goal{}
	}
	if d.CustomTags == nil {
		d.CustomTags = DefaultTagSet()
	}
	if d.ReadingRecords == nil {
		d.ReadingRecords = []*ReadingRecord{}
	}
}
