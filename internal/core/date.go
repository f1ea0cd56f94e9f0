package core

import (
	"fmt"
	"time"
)

// DateFormat is the wire representation of a Date.
const DateFormat = "2006-01-02"

// MonthKeyFormat is the wire representation of a MonthKey.
const MonthKeyFormat = "2006-01"

// Date is a calendar date with day granularity and no time component.
// It represents the economic event date of a transaction, which is
// distinct from the record's creation timestamp. The zero value is
// invalid and reports IsZero() == true.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date for the given year, month and day.
// Out-of-range components are normalized the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// DateOf truncates a time.Time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Date())
}

// ParseDate parses a Date in "2006-01-02" form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, ErrInvalidDate)
	}
	return NewDate(t.Date()), nil
}

// time returns the canonical instant for the date (midnight UTC).
func (d Date) time() time.Time {
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC)
}

// Year returns the calendar year.
func (d Date) Year() int { return d.y }

// Month returns the calendar month.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// Before reports whether d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// AddDays returns a new Date shifted by the given number of days.
func (d Date) AddDays(n int) Date { return NewDate(d.y, d.m, d.d+n) }

// AddMonths returns a new Date shifted by the given number of months.
func (d Date) AddMonths(n int) Date { return NewDate(d.y, d.m+time.Month(n), d.d) }

// DaysInMonth returns the number of days in the date's month.
func (d Date) DaysInMonth() int {
	return time.Date(d.y, d.m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay returns the given day of d's month, clamped to the last
// valid day when the month is shorter. A billing day of 31 resolves to
// Feb 28/29 or Apr 30 this way.
func (d Date) ClampDay(day int) Date {
	if last := d.DaysInMonth(); day > last {
		day = last
	}
	return NewDate(d.y, d.m, day)
}

// String formats the date as "2006-01-02".
func (d Date) String() string { return d.time().Format(DateFormat) }

// MonthKey returns the month key the date falls in.
func (d Date) MonthKey() MonthKey { return MonthKey(d.time().Format(MonthKeyFormat)) }

// YearKey returns the year as a string, the denormalized yearly
// aggregation key.
func (d Date) YearKey() string { return fmt.Sprintf("%04d", d.y) }

// Validate reports whether the date is a usable calendar date.
func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("zero date: %w", ErrInvalidDate)
	}
	if d.m < time.January || d.m > time.December || d.d < 1 || d.d > d.DaysInMonth() {
		return ErrInvalidDate
	}
	return nil
}

// MarshalJSON encodes the date as a "2006-01-02" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a "2006-01-02" string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthKey identifies a calendar month ("2024-07"). It is the
// materialization watermark granularity and the monthly aggregation
// key. Keys are zero padded, so lexicographic order is calendar order.
type MonthKey string

// MonthKeyFor builds a MonthKey from a year and month.
func MonthKeyFor(year int, month time.Month) MonthKey {
	return NewDate(year, month, 1).MonthKey()
}

// ParseMonthKey parses a MonthKey in "2006-01" form.
func ParseMonthKey(s string) (MonthKey, error) {
	if _, err := time.Parse(MonthKeyFormat, s); err != nil {
		return "", fmt.Errorf("invalid month key %q: %w", s, ErrInvalidDate)
	}
	return MonthKey(s), nil
}

// IsZero reports whether the key is unset (never materialized).
func (m MonthKey) IsZero() bool { return m == "" }

// Before reports whether m is an earlier month than x.
func (m MonthKey) Before(x MonthKey) bool { return m < x }

// After reports whether m is a later month than x.
func (m MonthKey) After(x MonthKey) bool { return m > x }

// String returns the key in "2006-01" form.
func (m MonthKey) String() string { return string(m) }

// Validate reports whether the key parses as a calendar month. The
// zero key is valid: it means no period has been materialized yet.
func (m MonthKey) Validate() error {
	if m.IsZero() {
		return nil
	}
	_, err := ParseMonthKey(string(m))
	return err
}
