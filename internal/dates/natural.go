package dates

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/dailyfocus/dailyfocus/internal/schema"
)

var parser = newParser()

func newParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseCustom parses a custom due date. ISO dates are tried first; anything
// else goes through the natural-language parser relative to now.
func ParseCustom(s string, now time.Time) (schema.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return schema.Date{}, nil
	}
	if d, err := schema.ParseDate(s); err == nil {
		return d, nil
	}
	r, err := parser.Parse(s, now)
	if err != nil {
		return schema.Date{}, fmt.Errorf("%w %q: %v", ErrUnparsableDate, s, err)
	}
	if r == nil {
		return schema.Date{}, fmt.Errorf("%w %q", ErrUnparsableDate, s)
	}
	return schema.DateOf(r.Time.In(now.Location())), nil
}

// ParseDue reads a due date typed by a user: a code name ("tomorrow",
// "nextMonday"), an ISO date, or a phrase understood by ParseCustom.
func ParseDue(s string, now time.Time) (schema.Date, error) {
	if code, err := ParseCode(s); err == nil && code != CodeCustom {
		return DueDate(code, "", now)
	}
	return ParseCustom(s, now)
}
