// ABOUTME: Canonical consolidated row schemas shared by the engine and store.
// ABOUTME: Row is event-level output; DailySummary/DailyRow back the daily joins.
package models

import (
	"time"

	"github.com/nmoreno/salud/internal/dates"
)

// Row is one event-level consolidated record: a glucose reading joined with
// its day's fitness metrics, or a fitness-only day with glucose absent and a
// timestamp synthesized at local midnight.
type Row struct {
	Date          dates.Date `json:"date" yaml:"date"`
	Timestamp     time.Time  `json:"datetime" yaml:"datetime"`
	MgDL          *float64   `json:"glucose_mg_dl" yaml:"glucose_mg_dl"`
	Tag           *string    `json:"tag" yaml:"tag"`
	Steps         *float64   `json:"steps" yaml:"steps"`
	DistanceM     *float64   `json:"distance_m" yaml:"distance_m"`
	CaloriesKcal  *float64   `json:"calories_kcal" yaml:"calories_kcal"`
	ActiveMinutes *float64   `json:"active_minutes" yaml:"active_minutes"`
}

// RowColumns is the full canonical column set, in output order.
var RowColumns = []string{
	"date",
	"datetime",
	"glucose_mg_dl",
	"tag",
	"steps",
	"distance_m",
	"calories_kcal",
	"active_minutes",
}

// DailySummary aggregates one day's glucose readings. Means are rounded to
// two decimal places.
type DailySummary struct {
	Date    dates.Date
	Count   int
	MinMgDL float64
	MaxMgDL float64
	AvgMgDL float64
	AvgMmol float64
}

// DailyRow is one calendar day after the full-calendar outer join: glucose
// summary columns and fitness metrics, each absent when that source had no
// data for the day.
type DailyRow struct {
	Date          dates.Date `json:"date" yaml:"date"`
	GlucoseCount  *int       `json:"glucose_count" yaml:"glucose_count"`
	GlucoseMin    *float64   `json:"glucose_min" yaml:"glucose_min"`
	GlucoseMax    *float64   `json:"glucose_max" yaml:"glucose_max"`
	GlucoseAvg    *float64   `json:"glucose_avg" yaml:"glucose_avg"`
	MmolAvg       *float64   `json:"mmol_avg" yaml:"mmol_avg"`
	Steps         *float64   `json:"steps" yaml:"steps"`
	DistanceM     *float64   `json:"distance_m" yaml:"distance_m"`
	CaloriesKcal  *float64   `json:"calories_kcal" yaml:"calories_kcal"`
	ActiveMinutes *float64   `json:"active_minutes" yaml:"active_minutes"`
}

// HasData reports whether any metric column is present. Calendar-filler days
// where every column is absent are dropped after the join.
func (d DailyRow) HasData() bool {
	if d.GlucoseCount != nil || d.GlucoseMin != nil || d.GlucoseMax != nil ||
		d.GlucoseAvg != nil || d.MmolAvg != nil {
		return true
	}
	return d.Steps != nil || d.DistanceM != nil || d.CaloriesKcal != nil ||
		d.ActiveMinutes != nil
}
