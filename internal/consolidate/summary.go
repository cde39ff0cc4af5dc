// ABOUTME: Per-day glucose aggregation feeding the daily joins.
// ABOUTME: Means are rounded to two decimals with exact decimal arithmetic.
package consolidate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/nmoreno/salud/internal/dates"
	"github.com/nmoreno/salud/internal/models"
)

// SummarizeDaily aggregates glucose readings to one summary per calendar
// date: count, min, max, and means of mg/dL and mmol/L (means rounded to two
// decimal places). Output is sorted by date.
func SummarizeDaily(readings []models.Reading) []models.DailySummary {
	type acc struct {
		count   int
		min     float64
		max     float64
		sumMg   decimal.Decimal
		sumMmol decimal.Decimal
	}

	byDay := make(map[dates.Date]*acc)
	for _, r := range readings {
		day := r.Date()
		a, ok := byDay[day]
		if !ok {
			a = &acc{min: r.MgDL, max: r.MgDL}
			byDay[day] = a
		}
		a.count++
		if r.MgDL < a.min {
			a.min = r.MgDL
		}
		if r.MgDL > a.max {
			a.max = r.MgDL
		}
		a.sumMg = a.sumMg.Add(decimal.NewFromFloat(r.MgDL))
		a.sumMmol = a.sumMmol.Add(decimal.NewFromFloat(r.MmolL))
	}

	out := make([]models.DailySummary, 0, len(byDay))
	for day, a := range byDay {
		n := decimal.NewFromInt(int64(a.count))
		out = append(out, models.DailySummary{
			Date:    day,
			Count:   a.count,
			MinMgDL: a.min,
			MaxMgDL: a.max,
			AvgMgDL: a.sumMg.Div(n).Round(2).InexactFloat64(),
			AvgMmol: a.sumMmol.Div(n).Round(2).InexactFloat64(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
