package schema

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{name: "empty", input: "", want: Date{}},
		{name: "plain date", input: "2025-03-10", want: NewDate(2025, time.March, 10)},
		{name: "timestamp", input: "2025-03-10T08:30:00Z", want: NewDate(2025, time.March, 10)},
		{name: "whitespace", input: "  2025-01-02 ", want: NewDate(2025, time.January, 2)},
		{name: "garbage", input: "next tuesday", wantErr: true},
		{name: "bad month", input: "2025-13-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDate_Arithmetic(t *testing.T) {
	d := MustParseDate("2025-02-27")

	if got := d.AddDays(2).String(); got != "2025-03-01" {
		t.Errorf("AddDays(2) = %s, want 2025-03-01", got)
	}
	if got := d.AddDays(-27).String(); got != "2025-01-31" {
		t.Errorf("AddDays(-27) = %s, want 2025-01-31", got)
	}
	if got := MustParseDate("2025-03-10").DaysSince(d); got != 11 {
		t.Errorf("DaysSince = %d, want 11", got)
	}
	if got := d.Weekday(); got != time.Thursday {
		t.Errorf("Weekday = %v, want Thursday", got)
	}
	if !d.Before(d.AddDays(1)) || d.After(d.AddDays(1)) || !d.Equal(NewDate(2025, 2, 27)) {
		t.Error("comparison helpers disagree with calendar order")
	}
}

func TestDate_EndOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	d := MustParseDate("2025-03-10")

	end := d.EndOfDay(loc)
	if end.Hour() != 23 || end.Minute() != 59 || end.Second() != 59 {
		t.Errorf("EndOfDay = %v, want 23:59:59", end)
	}
	if !d.Time(loc).Before(end) {
		t.Error("midnight should precede end of day")
	}
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		Due Date `json:"due"`
	}

	b, err := json.Marshal(wrapper{Due: MustParseDate("2025-03-10")})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(b) != `{"due":"2025-03-10"}` {
		t.Errorf("Marshal = %s", b)
	}

	b, err = json.Marshal(wrapper{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(b) != `{"due":""}` {
		t.Errorf("Marshal zero = %s", b)
	}

	for _, input := range []string{`{"due":null}`, `{"due":""}`, `{}`} {
		var w wrapper
		if err := json.Unmarshal([]byte(input), &w); err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", input, err)
		}
		if !w.Due.IsZero() {
			t.Errorf("Unmarshal(%s) = %v, want zero", input, w.Due)
		}
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"due":"2025-03-10T23:00:00.000Z"}`), &w); err != nil {
		t.Fatalf("Unmarshal timestamp failed: %v", err)
	}
	if w.Due.String() != "2025-03-10" {
		t.Errorf("Unmarshal timestamp = %v", w.Due)
	}

	if err := json.Unmarshal([]byte(`{"due":42}`), &w); err == nil {
		t.Error("expected error for numeric date")
	}
}
