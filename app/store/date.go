package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the layout of dates in storage and in commands.
const DateLayout = "2006-01-02"

const secondsInDay = 24 * 60 * 60

// Date is a calendar date without time of day and location.
type Date struct {
	t time.Time // always midnight UTC
}

// NewDate makes a date from year, month and day, normalizing overflows
// the same way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the wall-clock date of t in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Sub returns the number of days between d and o, positive if d is after o.
func (d Date) Sub(o Date) int { return int((d.t.Unix() - o.t.Unix()) / secondsInDay) }

// Before reports whether d is before o.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// After reports whether d is after o.
func (d Date) After(o Date) bool { return d.t.After(o.t) }

// Equal reports whether d and o are the same day.
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// Year returns the year of the date.
func (d Date) Year() int { return d.t.Year() }

// IsZero reports whether the date is not set.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Time returns the midnight of the date in UTC.
func (d Date) Time() time.Time { return d.t }

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string { return d.t.Format(DateLayout) }

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("unmarshal date: %w", err)
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Date) MarshalYAML() (any, error) { return d.String(), nil }
