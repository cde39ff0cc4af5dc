// ABOUTME: Canonical input records produced by the source normalizers.
// ABOUTME: Defines glucose readings and daily fitness activity aggregates.
package models

import (
	"time"

	"github.com/nmoreno/salud/internal/dates"
)

// Reading is one glucose measurement, already time-zone-resolved by its
// source. Immutable once produced.
type Reading struct {
	Timestamp time.Time
	MgDL      float64
	MmolL     float64
	Tag       *string
}

// NewReading creates a reading at the given timestamp.
func NewReading(ts time.Time, mgDL, mmolL float64) Reading {
	return Reading{Timestamp: ts, MgDL: mgDL, MmolL: mmolL}
}

// WithTag returns a copy of the reading carrying a free-text tag.
func (r Reading) WithTag(tag string) Reading {
	r.Tag = &tag
	return r
}

// Date returns the calendar date of the reading in the timestamp's own
// location. Near-midnight attribution follows the timestamp as-is; no
// reconciliation against the fitness source is attempted.
func (r Reading) Date() dates.Date {
	return dates.FromTime(r.Timestamp)
}

// DailyActivity is one calendar day's fitness summary. At most one per day.
// Absent metrics are nil, never zero.
type DailyActivity struct {
	Day           dates.Date
	Steps         *float64
	DistanceM     *float64
	CaloriesKcal  *float64
	ActiveMinutes *float64
}
