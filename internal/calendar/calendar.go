// Package calendar converts between whole calendar days and integer grid
// columns measured from a project's start date.
//
// A Date carries no time of day and no zone. All arithmetic runs on an
// integer day number, so every conversion is exact.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the ISO 8601 calendar-date layout used on the wire.
const Layout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// ErrMalformedDate is returned when a string is not a valid calendar date.
var ErrMalformedDate = errors.New("malformed date")

// The first and last days with a four-digit year.
var (
	MinDate = New(1, time.January, 1)
	MaxDate = New(9999, time.December, 31)
)

// Date is a single calendar day. The zero value is 1970-01-01.
type Date struct {
	days int64 // days since 1970-01-01
}

// New returns the date for the given year, month and day. Out-of-range
// values are normalized the way time.Date normalizes them.
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime returns the calendar day t falls on in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	u := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Date{days: u.Unix() / secondsPerDay}
}

// Today returns the current local calendar day.
func Today() Date {
	return FromTime(time.Now())
}

// Parse parses a strict YYYY-MM-DD string. Impossible dates such as
// 2023-02-29 are rejected.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w %q: %v", ErrMalformedDate, s, err)
	}
	return FromTime(t), nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level fixtures.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Unix(d.days*secondsPerDay, 0).UTC()
}

// InRange reports whether d lies in [MinDate, MaxDate], the days whose
// String form Parse accepts back.
func (d Date) InRange() bool {
	return d.days >= MinDate.days && d.days <= MaxDate.days
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return d.Time().Format(Layout)
}

// Format formats d with a time layout, e.g. "Jan 2".
func (d Date) Format(layout string) string {
	return d.Time().Format(layout)
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return Date{days: d.days + int64(n)}
}

// Compare returns -1, 0 or +1 as d is before, equal to, or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.days < o.days:
		return -1
	case d.days > o.days:
		return 1
	}
	return 0
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool { return d.days < o.days }

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool { return d.days > o.days }

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateToCol returns the signed number of whole days from start to d.
// It is negative when d precedes start.
func DateToCol(start, d Date) int {
	return int(d.days - start.days)
}

// ColToDate returns the date that column col denotes relative to start.
// ColToDate(s, DateToCol(s, d)) == d and DateToCol(s, ColToDate(s, c)) == c.
func ColToDate(start Date, col int) Date {
	return start.AddDays(col)
}

// IsBetween reports whether current lies in [start, end], both inclusive.
// It is false whenever start is after end.
func IsBetween(start, end, current Date) bool {
	return current.days >= start.days && current.days <= end.days
}

// DaysBetween returns the absolute number of days between a and b.
func DaysBetween(a, b Date) int {
	n := b.days - a.days
	if n < 0 {
		n = -n
	}
	return int(n)
}
