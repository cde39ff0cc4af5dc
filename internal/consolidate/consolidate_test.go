// ABOUTME: Tests for the event-level and full-calendar consolidation joins.
// ABOUTME: Verifies fan-out, midnight synthesis, trimming, ordering, empty inputs.
package consolidate

import (
	"testing"
	"time"

	"github.com/nmoreno/salud/internal/dates"
	"github.com/nmoreno/salud/internal/models"
)

var testLoc = time.FixedZone("UTC-3", -3*3600)

func reading(t *testing.T, ts string, mgDL float64) models.Reading {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04", ts, testLoc)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", ts, err)
	}
	return models.NewReading(parsed, mgDL, mgDL/18.0)
}

func fptr(v float64) *float64 { return &v }

func activity(day string, steps float64) models.DailyActivity {
	return models.DailyActivity{Day: dates.MustParse(day), Steps: fptr(steps)}
}

func TestEventFanOut(t *testing.T) {
	readings := []models.Reading{
		reading(t, "2024-01-10 08:00", 95),
		reading(t, "2024-01-10 13:30", 140),
		reading(t, "2024-01-10 21:00", 110),
	}
	fit := []models.DailyActivity{activity("2024-01-10", 8000)}

	rows := Readings(readings, fit, testLoc)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if row.Steps == nil || *row.Steps != 8000 {
			t.Errorf("row %d: steps = %v, want 8000", i, row.Steps)
		}
		if row.MgDL == nil {
			t.Errorf("row %d: glucose absent", i)
		}
	}
}

func TestFitOnlyDayGetsMidnightRow(t *testing.T) {
	fit := []models.DailyActivity{activity("2024-01-12", 5000)}

	rows := Readings(nil, fit, testLoc)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.MgDL != nil || row.Tag != nil {
		t.Errorf("glucose fields should be absent, got mg=%v tag=%v", row.MgDL, row.Tag)
	}
	want := dates.MustParse("2024-01-12").Midnight(testLoc)
	if !row.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want local midnight %v", row.Timestamp, want)
	}
	if row.Steps == nil || *row.Steps != 5000 {
		t.Errorf("steps = %v, want 5000", row.Steps)
	}
}

func TestReadingsOrderedByTimestamp(t *testing.T) {
	readings := []models.Reading{
		reading(t, "2024-01-11 22:00", 120),
		reading(t, "2024-01-10 07:00", 90),
		reading(t, "2024-01-11 06:00", 85),
	}
	fit := []models.DailyActivity{activity("2024-01-09", 3000)}

	rows := Readings(readings, fit, testLoc)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Timestamp.Before(rows[i-1].Timestamp) {
			t.Errorf("rows out of order at %d: %v before %v", i, rows[i].Timestamp, rows[i-1].Timestamp)
		}
	}
	if rows[0].Date.String() != "2024-01-09" {
		t.Errorf("midnight fit-only row should sort first, got %s", rows[0].Date)
	}
}

func TestReadingsWithoutFitness(t *testing.T) {
	rows := Readings([]models.Reading{reading(t, "2024-01-10 08:00", 95)}, nil, testLoc)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.Steps != nil || row.DistanceM != nil || row.CaloriesKcal != nil || row.ActiveMinutes != nil {
		t.Error("fitness metrics should all be absent")
	}
}

func TestReadingsEmptyInputs(t *testing.T) {
	if rows := Readings(nil, nil, testLoc); len(rows) != 0 {
		t.Errorf("expected empty output, got %d rows", len(rows))
	}
}

func TestSummarizeDaily(t *testing.T) {
	readings := []models.Reading{
		reading(t, "2024-01-10 08:00", 100),
		reading(t, "2024-01-10 13:00", 101),
		reading(t, "2024-01-10 20:00", 101),
		reading(t, "2024-01-11 08:00", 90),
	}

	got := SummarizeDaily(readings)
	if len(got) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(got))
	}
	first := got[0]
	if first.Date.String() != "2024-01-10" {
		t.Errorf("summaries not sorted by date: %s first", first.Date)
	}
	if first.Count != 3 || first.MinMgDL != 100 || first.MaxMgDL != 101 {
		t.Errorf("count/min/max = %d/%v/%v", first.Count, first.MinMgDL, first.MaxMgDL)
	}
	if first.AvgMgDL != 100.67 {
		t.Errorf("mean should round to 2 decimals: got %v, want 100.67", first.AvgMgDL)
	}
}

func TestSummarizeDailyEmpty(t *testing.T) {
	if got := SummarizeDaily(nil); len(got) != 0 {
		t.Errorf("expected empty output, got %d", len(got))
	}
}

func TestDailyCalendarCompletenessAndTrim(t *testing.T) {
	glucose := []models.DailySummary{{
		Date: dates.MustParse("2024-02-01"), Count: 2,
		MinMgDL: 90, MaxMgDL: 110, AvgMgDL: 100, AvgMmol: 5.56,
	}}
	fit := []models.DailyActivity{activity("2024-02-03", 7000)}

	got := Daily(glucose, fit)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows (day 2 trimmed), got %d", len(got))
	}
	if got[0].Date.String() != "2024-02-01" || got[1].Date.String() != "2024-02-03" {
		t.Errorf("unexpected dates: %s, %s", got[0].Date, got[1].Date)
	}
	if got[0].GlucoseCount == nil || *got[0].GlucoseCount != 2 {
		t.Errorf("day 1 glucose count = %v", got[0].GlucoseCount)
	}
	if got[0].Steps != nil {
		t.Error("day 1 should have no fitness data")
	}
	if got[1].Steps == nil || *got[1].Steps != 7000 {
		t.Errorf("day 3 steps = %v", got[1].Steps)
	}
	if got[1].GlucoseCount != nil {
		t.Error("day 3 should have no glucose data")
	}
}

func TestDailyEmptyInputs(t *testing.T) {
	if got := Daily(nil, nil); got != nil {
		t.Errorf("expected nil for empty/empty, got %v", got)
	}
}

func TestDailySingleDaySpan(t *testing.T) {
	fit := []models.DailyActivity{activity("2024-02-10", 4000)}
	got := Daily(nil, fit)
	if len(got) != 1 {
		t.Fatalf("single-day span should produce 1 row, got %d", len(got))
	}
}

func TestByDay(t *testing.T) {
	readings := []models.Reading{
		reading(t, "2024-03-01 08:00", 100),
		reading(t, "2024-03-01 14:00", 120),
	}
	fit := []models.DailyActivity{activity("2024-03-02", 9000)}

	got := ByDay(readings, fit)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].GlucoseAvg == nil || *got[0].GlucoseAvg != 110 {
		t.Errorf("day 1 avg = %v, want 110", got[0].GlucoseAvg)
	}
	if got[1].Steps == nil || *got[1].Steps != 9000 {
		t.Errorf("day 2 steps = %v, want 9000", got[1].Steps)
	}
}

func TestByDayEmpty(t *testing.T) {
	if got := ByDay(nil, nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
