// ABOUTME: Date-alignment joins between glucose readings and daily fitness data.
// ABOUTME: Pure in-memory transforms; every join tolerates empty inputs.
package consolidate

import (
	"sort"
	"time"

	"github.com/nmoreno/salud/internal/dates"
	"github.com/nmoreno/salud/internal/models"
)

// Readings performs the event-level join: one output row per glucose
// reading, with that day's fitness metrics copied into every row of the day.
// Days that only have a fitness aggregate produce a single row with glucose
// absent and a timestamp synthesized at local midnight in loc. Days with
// neither source produce nothing. Output is ordered by timestamp ascending;
// ties keep input order.
func Readings(readings []models.Reading, fitDaily []models.DailyActivity, loc *time.Location) []models.Row {
	fitByDay := indexActivity(fitDaily)

	readingDays := make(map[dates.Date]bool, len(readings))
	out := make([]models.Row, 0, len(readings))
	for _, r := range readings {
		day := r.Date()
		readingDays[day] = true
		mgDL := r.MgDL
		row := models.Row{
			Date:      day,
			Timestamp: r.Timestamp,
			MgDL:      &mgDL,
			Tag:       r.Tag,
		}
		if act, ok := fitByDay[day]; ok {
			copyActivity(&row, act)
		}
		out = append(out, row)
	}

	for _, act := range fitDaily {
		if readingDays[act.Day] {
			continue
		}
		row := models.Row{
			Date:      act.Day,
			Timestamp: act.Day.Midnight(loc),
		}
		copyActivity(&row, act)
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// ByDay aggregates readings to one row per day and then performs the
// full-calendar outer join against the fitness aggregates.
func ByDay(readings []models.Reading, fitDaily []models.DailyActivity) []models.DailyRow {
	return Daily(SummarizeDaily(readings), fitDaily)
}

// Daily performs the full-calendar join: an explicit gap-free day sequence
// spanning the minimum to maximum date across both inputs, with glucose
// summaries and fitness aggregates left-joined onto it. Days where every
// metric column ends up absent are dropped after the join. Both inputs empty
// returns nil without attempting to build a calendar.
func Daily(glucoseDaily []models.DailySummary, fitDaily []models.DailyActivity) []models.DailyRow {
	if len(glucoseDaily) == 0 && len(fitDaily) == 0 {
		return nil
	}

	minDay, maxDay := dateBounds(glucoseDaily, fitDaily)

	glucoseByDay := make(map[dates.Date]models.DailySummary, len(glucoseDaily))
	for _, g := range glucoseDaily {
		glucoseByDay[g.Date] = g
	}
	fitByDay := indexActivity(fitDaily)

	var out []models.DailyRow
	for _, day := range dates.Range(minDay, maxDay) {
		row := models.DailyRow{Date: day}
		if g, ok := glucoseByDay[day]; ok {
			count := g.Count
			min, max, avg, mmol := g.MinMgDL, g.MaxMgDL, g.AvgMgDL, g.AvgMmol
			row.GlucoseCount = &count
			row.GlucoseMin = &min
			row.GlucoseMax = &max
			row.GlucoseAvg = &avg
			row.MmolAvg = &mmol
		}
		if act, ok := fitByDay[day]; ok {
			row.Steps = act.Steps
			row.DistanceM = act.DistanceM
			row.CaloriesKcal = act.CaloriesKcal
			row.ActiveMinutes = act.ActiveMinutes
		}
		if row.HasData() {
			out = append(out, row)
		}
	}
	return out
}

// dateBounds computes the min and max date across both inputs. At least one
// input must be non-empty; callers guard the empty/empty case.
func dateBounds(glucoseDaily []models.DailySummary, fitDaily []models.DailyActivity) (dates.Date, dates.Date) {
	var minDay, maxDay dates.Date
	seen := false
	observe := func(d dates.Date) {
		if !seen {
			minDay, maxDay = d, d
			seen = true
			return
		}
		if d.Before(minDay) {
			minDay = d
		}
		if d.After(maxDay) {
			maxDay = d
		}
	}
	for _, g := range glucoseDaily {
		observe(g.Date)
	}
	for _, a := range fitDaily {
		observe(a.Day)
	}
	return minDay, maxDay
}

func indexActivity(fitDaily []models.DailyActivity) map[dates.Date]models.DailyActivity {
	byDay := make(map[dates.Date]models.DailyActivity, len(fitDaily))
	for _, act := range fitDaily {
		byDay[act.Day] = act
	}
	return byDay
}

func copyActivity(row *models.Row, act models.DailyActivity) {
	row.Steps = act.Steps
	row.DistanceM = act.DistanceM
	row.CaloriesKcal = act.CaloriesKcal
	row.ActiveMinutes = act.ActiveMinutes
}
