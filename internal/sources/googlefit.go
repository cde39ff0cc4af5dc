// ABOUTME: Google Fit Takeout reader for daily activity metrics.
// ABOUTME: Sums per-day CSVs into one DailyActivity per calendar date.
package sources

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nmoreno/salud/internal/dates"
	"github.com/nmoreno/salud/internal/models"
)

// dailyMetricsDir is the Takeout folder holding per-day activity CSVs.
// Takeout localizes folder names; this matches the Spanish export.
const dailyMetricsDir = "Métricas de actividad diaria"

// GoogleFit reads daily activity metrics from a Takeout/Fit directory.
type GoogleFit struct {
	Root string
}

// Validate checks that the Takeout/Fit directory exists.
func (g GoogleFit) Validate() error {
	info, err := os.Stat(g.Root)
	if err != nil {
		return fmt.Errorf("google fit root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("google fit root is not a directory: %s", g.Root)
	}
	return nil
}

// DailyFiles returns the per-day CSV files, sorted by name. The cumulative
// "<dir>.csv" summary file is excluded.
func (g GoogleFit) DailyFiles() ([]string, error) {
	dir := filepath.Join(g.Root, dailyMetricsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("daily metrics directory: %w", err)
	}

	cumulative := strings.ToLower(dailyMetricsDir + ".csv")
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		if strings.ToLower(name) == cumulative {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no daily metric CSVs in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

// Header patterns for the metric columns, Spanish first (Takeout localizes
// headers), English as fallback.
var (
	stepsPattern    = regexp.MustCompile(`(?i)\bpasos\b|\bstep`)
	distancePattern = regexp.MustCompile(`(?i)\bdistancia\b|\bdistance`)
	caloriesPattern = regexp.MustCompile(`(?i)\bcalor|\bcalorie`)
	activePattern   = regexp.MustCompile(`(?i)minutos activos|active minutes|\bactive_min`)

	filenameDatePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})`)
)

// LoadDaily parses per-day CSVs into one aggregate per calendar date, sorted
// by date. The date comes from the filename prefix; files without one, or
// with no data rows, are skipped. A metric whose column is missing or never
// numeric stays absent.
func (g GoogleFit) LoadDaily(paths []string) ([]models.DailyActivity, error) {
	out := make([]models.DailyActivity, 0, len(paths))
	for _, path := range paths {
		day, ok := dateFromFilename(path)
		if !ok {
			continue
		}
		act, ok, err := summarizeDailyFile(path, day)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, act)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func summarizeDailyFile(path string, day dates.Date) (models.DailyActivity, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.DailyActivity{}, false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return models.DailyActivity{}, false, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) < 2 {
		return models.DailyActivity{}, false, nil
	}

	header := records[0]
	stepsCol := findColumn(header, stepsPattern)
	distCol := findColumn(header, distancePattern)
	calCol := findColumn(header, caloriesPattern)
	actCol := findColumn(header, activePattern)

	act := models.DailyActivity{
		Day:           day,
		Steps:         sumColumn(records[1:], stepsCol),
		DistanceM:     sumColumn(records[1:], distCol),
		CaloriesKcal:  sumColumn(records[1:], calCol),
		ActiveMinutes: sumColumn(records[1:], actCol),
	}
	return act, true, nil
}

// findColumn returns the index of the first header matching the pattern, or
// -1 when absent.
func findColumn(header []string, pattern *regexp.Regexp) int {
	for i, name := range header {
		if pattern.MatchString(strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

// sumColumn sums the numeric values of a column across data rows. Returns
// nil when the column is missing or holds no numeric value at all, so an
// absent metric never reads as zero.
func sumColumn(rows [][]string, col int) *float64 {
	if col < 0 {
		return nil
	}
	var sum float64
	seen := false
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			continue
		}
		sum += v
		seen = true
	}
	if !seen {
		return nil
	}
	return &sum
}

func dateFromFilename(path string) (dates.Date, bool) {
	base := filepath.Base(path)
	match := filenameDatePattern.FindStringSubmatch(base)
	if match == nil {
		return dates.Date{}, false
	}
	day, err := dates.Parse(match[1])
	if err != nil {
		return dates.Date{}, false
	}
	return day, true
}
