package query

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dailyfocus/dailyfocus/internal/dates"
	"github.com/dailyfocus/dailyfocus/internal/schema"
)

// DefaultLocale is the collation used for title sorts.
const DefaultLocale = "zh-CN"

// SortKey orders a task list.
type SortKey string

const (
	SortDateDesc SortKey = "date-desc"
	SortDateAsc  SortKey = "date-asc"
	SortTitle    SortKey = "title"
)

// ParseSortKey validates a user-supplied sort key.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortDateDesc, SortDateAsc, SortTitle:
		return k, nil
	case "":
		return SortDateDesc, nil
	default:
		return "", fmt.Errorf("unknown sort key %q (want date-desc, date-asc or title)", s)
	}
}

// sortTime is createdAt, or midnight UTC of the due date for tasks imported
// without a creation time.
func sortTime(t *schema.Task) time.Time {
	if !t.CreatedAt.IsZero() {
		return t.CreatedAt
	}
	if !t.DueDate.IsZero() {
		return t.DueDate.Time(time.UTC)
	}
	return time.Time{}
}

// Sort returns a sorted copy of tasks. locale only affects SortTitle; an
// unparsable locale falls back to DefaultLocale.
func Sort(tasks []*schema.Task, key SortKey, locale string) []*schema.Task {
	out := slices.Clone(tasks)
	switch key {
	case SortTitle:
		c := collate.New(parseLocale(locale))
		slices.SortStableFunc(out, func(a, b *schema.Task) int {
			if n := c.CompareString(a.Title, b.Title); n != 0 {
				return n
			}
			return strings.Compare(a.ID, b.ID)
		})
	case SortDateAsc:
		slices.SortStableFunc(out, func(a, b *schema.Task) int {
			if n := sortTime(a).Compare(sortTime(b)); n != 0 {
				return n
			}
			return strings.Compare(a.ID, b.ID)
		})
	default:
		slices.SortStableFunc(out, func(a, b *schema.Task) int {
			if n := sortTime(b).Compare(sortTime(a)); n != 0 {
				return n
			}
			return strings.Compare(b.ID, a.ID)
		})
	}
	return out
}

func parseLocale(locale string) language.Tag {
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.MustParse(DefaultLocale)
	}
	return tag
}

// SortByDue orders tasks for the quadrant board: dated tasks first by
// ascending due date, then undated tasks newest first.
func SortByDue(tasks []*schema.Task) []*schema.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b *schema.Task) int {
		aDated, bDated := !a.DueDate.IsZero(), !b.DueDate.IsZero()
		switch {
		case aDated && !bDated:
			return -1
		case !aDated && bDated:
			return 1
		case aDated:
			if n := a.DueDate.Compare(b.DueDate); n != 0 {
				return n
			}
		default:
			if n := b.CreatedAt.Compare(a.CreatedAt); n != 0 {
				return n
			}
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// WeekGroup is one Monday-start week of tasks.
type WeekGroup struct {
	Label string         `json:"label"`
	Start schema.Date    `json:"start"`
	Tasks []*schema.Task `json:"tasks"`
}

// WeekLabel formats the Monday-Sunday span containing d as M月D日-M月D日.
func WeekLabel(d schema.Date) string {
	start := dates.WeekStart(d)
	end := start.AddDays(6)
	return fmt.Sprintf("%d月%d日-%d月%d日", int(start.Month), start.Day, int(end.Month), end.Day)
}

// GroupByWeek buckets tasks by the week of their creation date (or due date
// when createdAt is missing). Groups keep the order in which their first task
// appears, and tasks keep their input order inside a group.
func GroupByWeek(tasks []*schema.Task, loc *time.Location) []WeekGroup {
	var groups []WeekGroup
	index := make(map[schema.Date]int)
	for _, t := range tasks {
		d := DateOf(t, FieldCreated, loc)
		if d.IsZero() {
			d = t.DueDate
		}
		if d.IsZero() {
			continue
		}
		start := dates.WeekStart(d)
		i, ok := index[start]
		if !ok {
			i = len(groups)
			index[start] = i
			groups = append(groups, WeekGroup{Label: WeekLabel(start), Start: start})
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}
	return groups
}
