package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical string form of a CalendarDate.
const DateLayout = "2006-01-02"

// CalendarDate is a day on the calendar, independent of time of day and
// offset. Arithmetic runs on UTC midnights so DST shifts never move a day.
type CalendarDate struct {
	t time.Time
}

// NewCalendarDate builds a date from its components; out-of-range values are
// normalised the way time.Date does.
func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day t falls on in loc.
func DateOf(t time.Time, loc *time.Location) CalendarDate {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return NewCalendarDate(y, m, d)
}

// ParseCalendarDate accepts the canonical YYYY-MM-DD form. RFC 3339
// timestamps are accepted too and keep the day they were written in.
func ParseCalendarDate(raw string) (CalendarDate, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return CalendarDate{t: t}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		y, m, d := t.Date()
		return NewCalendarDate(y, m, d), nil
	}
	return CalendarDate{}, fmt.Errorf("invalid calendar date %q", raw)
}

func (d CalendarDate) IsZero() bool { return d.t.IsZero() }

func (d CalendarDate) AddDays(n int) CalendarDate {
	return CalendarDate{t: d.t.AddDate(0, 0, n)}
}

func (d CalendarDate) Before(o CalendarDate) bool { return d.t.Before(o.t) }
func (d CalendarDate) After(o CalendarDate) bool { return d.t.After(o.t) }
func (d CalendarDate) Equal(o CalendarDate) bool { return d.t.Equal(o.t) }

// DaysUntil counts calendar days from d to o; negative when o is earlier.
func (d CalendarDate) DaysUntil(o CalendarDate) int {
	return int(o.t.Sub(d.t).Hours() / 24)
}

// Start returns local midnight of the day in loc.
func (d CalendarDate) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, day := d.t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

func (d CalendarDate) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d CalendarDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *CalendarDate) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = CalendarDate{}
		return nil
	}
	parsed, err := ParseCalendarDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
