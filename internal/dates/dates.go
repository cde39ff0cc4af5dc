// ABOUTME: Calendar date value type with day granularity.
// ABOUTME: Backs date joins, calendar spans, and midnight synthesis.
package dates

import (
	"encoding/json"
	"fmt"
	"time"
)

// Format is the ISO-8601 layout used for dates everywhere in the tool.
const Format = "2006-01-02"

// Date represents a calendar day, independent of time zone.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.utc().Date()
	return d
}

// FromTime returns the calendar date of t in t's own location.
func FromTime(t time.Time) Date {
	return New(t.Date())
}

// Parse parses an ISO-8601 date string.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Format, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want %s): %w", s, Format, err)
	}
	return New(t.Date()), nil
}

// MustParse is like Parse but panics on error. Intended for tests and literals.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// utc returns the canonical representation of the day: midnight UTC.
func (d Date) utc() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Midnight returns the start of the day in the given location.
func (d Date) Midnight(loc *time.Location) time.Time {
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, loc)
}

// Year returns the year of the date.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// Add returns a new Date with the given number of days added.
func (d Date) Add(days int) Date { return New(d.y, d.m, d.d+days) }

// Before reports whether d is before x.
func (d Date) Before(x Date) bool { return d.utc().Before(x.utc()) }

// After reports whether d is after x.
func (d Date) After(x Date) bool { return d.utc().After(x.utc()) }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// String formats the date in ISO-8601.
func (d Date) String() string { return d.utc().Format(Format) }

// Layout formats the date with an arbitrary time layout.
func (d Date) Layout(layout string) string { return d.utc().Format(layout) }

// Range returns every date from min to max, inclusive on both ends.
// A single-day span yields one date. Returns nil if max is before min.
func Range(min, max Date) []Date {
	if max.Before(min) {
		return nil
	}
	var out []Date
	for d := min; !d.After(max); d = d.Add(1) {
		out = append(out, d)
	}
	return out
}

// MarshalJSON encodes the date as an ISO-8601 string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes the date from an ISO-8601 string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)

// MarshalYAML encodes the date as an ISO-8601 string.
func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}
