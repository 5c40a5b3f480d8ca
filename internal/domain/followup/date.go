package followup

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// dateLayout is the canonical text form of a Date.
const dateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day and no zone. It is stored as
// midnight UTC so that month arithmetic and comparisons never shift the day.
type Date struct {
	t time.Time
}

// NewDate builds a Date from its components. Out-of-range components are
// normalised the way time.Date normalises them.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseCalendarDate parses YYYY-MM-DD with "-", "." or "/" separators. It reads
// integer components directly and rejects values that time.Date would roll
// over, such as 2024-02-30. It never goes through an instant parse.
func ParseCalendarDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	normalized := strings.NewReplacer(".", "-", "/", "-").Replace(s)
	parts := strings.Split(normalized, "-")
	if len(parts) != 3 {
		return Date{}, false
	}

	y, errY := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	d, errD := strconv.Atoi(parts[2])
	if errY != nil || errM != nil || errD != nil {
		return Date{}, false
	}
	if y < 1 || m < 1 || m > 12 || d < 1 || d > 31 {
		return Date{}, false
	}

	date := NewDate(y, time.Month(m), d)
	if date.Day() != d || date.Month() != time.Month(m) {
		return Date{}, false
	}
	return date, true
}

// ParseCalendarDatePtr is ParseCalendarDate returning nil on failure.
func ParseCalendarDatePtr(s string) *Date {
	d, ok := ParseCalendarDate(s)
	if !ok {
		return nil
	}
	return &d
}

func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }

// AddMonths increments the month field and lets the day roll over, so
// 2024-01-31 plus one month is 2024-03-02.
func (d Date) AddMonths(n int) Date {
	return Date{t: d.t.AddDate(0, n, 0)}
}

// AddDays adds n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	switch {
	case d.t.Before(o.t):
		return -1
	case d.t.After(o.t):
		return 1
	default:
		return 0
	}
}

// In returns midnight of the day in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

func (d Date) String() string {
	return d.t.Format(dateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts any separator ParseCalendarDate accepts.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseCalendarDate(s)
	if !ok {
		return &time.ParseError{Layout: dateLayout, Value: s, LayoutElem: dateLayout, ValueElem: s, Message: ": invalid calendar date"}
	}
	*d = parsed
	return nil
}
