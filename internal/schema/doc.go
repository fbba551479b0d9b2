// Package schema defines the entities persisted and synchronized by DailyFocus.
//
// Overview
//
// Four collections make up the application state:
//
//	tasks          → []*Task            (inbox, quadrants, completed, trash)
//	goals          → []*Goal            (progress + countdown)
//	customTags     → []string           (ordered, deduplicated)
//	readingRecords → []*ReadingRecord   (reading log)
//
// The same four collections, wrapped in a Document, form the whole-state unit
// used for local export/import and for the remote mirror. JSON field names are
// camelCase and match backups written by earlier versions of the application,
// so documents exported by older clients import without conversion.
//
// Dates
//
// Due dates are calendar dates with no time component and are represented by
// Date. Timestamps (createdAt, completedAt, deletedAt) are time.Time values.
//
// Classification
//
// A task's quadrant is a pure function of its two flags:
//
//	priority  urgency   quadrant
//	true      true      urgent-important
//	true      false     important
//	false     true      urgent
//	false     false     normal
//
// The flags organized/completed/deleted are independent bits; View derives the
// single list a task is shown in.
package schema
