package model

import (
	"fmt"
	"time"
)

// wireDateLayout is the date format used by the Ledger Service API.
const wireDateLayout = "2006-01-02"

// Date is a calendar date without a time component, matching the
// YYYY-MM-DD strings the Ledger Service uses on the wire.
type Date struct {
	t time.Time
}

// NewDate creates a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(wireDateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// Time returns the date as a time.Time at midnight UTC.
func (d Date) Time() time.Time { return d.t }

// Year returns the calendar year.
func (d Date) Year() int { return d.t.Year() }

// Month returns the calendar month.
func (d Date) Month() time.Month { return d.t.Month() }

// Day returns the day of the month.
func (d Date) Day() int { return d.t.Day() }

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Before reports whether d is before other.
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// After reports whether d is after other.
func (d Date) After(other Date) bool { return d.t.After(other.t) }

// Equal reports whether two dates are the same calendar day.
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// AddMonths returns the date shifted by n calendar months.
func (d Date) AddMonths(n int) Date {
	return DateOf(d.t.AddDate(0, n, 0))
}

// InMonth reports whether the date falls in the given year and month.
func (d Date) InMonth(year int, month time.Month) bool {
	return d.t.Year() == year && d.t.Month() == month
}

// String formats the date in wire format.
func (d Date) String() string {
	return d.t.Format(wireDateLayout)
}

// MarshalJSON encodes the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date JSON: %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
