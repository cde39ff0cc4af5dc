// ABOUTME: Export of consolidated runs to JSON, YAML, Markdown, and CSV.
// ABOUTME: Applies the configured field selection with date columns first.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nmoreno/salud/internal/models"
)

// Display layouts for doctor-facing output (day/month/year, as the data
// owner reads dates).
const (
	displayDate     = "02/01/2006"
	displayDatetime = "02/01/2006 15:04"
)

// Data is the full export envelope for one consolidated run.
type Data struct {
	Version    string      `json:"version" yaml:"version"`
	ExportedAt time.Time   `json:"exported_at" yaml:"exported_at"`
	Tool       string      `json:"tool" yaml:"tool"`
	Run        *models.Run `json:"run" yaml:"run"`
	Rows       []models.Row `json:"rows" yaml:"rows"`
}

// New builds an export envelope for a run and its rows.
func New(run *models.Run, rows []models.Row) *Data {
	return &Data{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Tool:       "salud",
		Run:        run,
		Rows:       rows,
	}
}

// JSON renders the full envelope as indented JSON.
func (d *Data) JSON() ([]byte, error) {
	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON export: %w", err)
	}
	return out, nil
}

// YAML renders the full envelope as YAML.
func (d *Data) YAML() ([]byte, error) {
	out, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal YAML export: %w", err)
	}
	return out, nil
}

// Markdown renders the selected fields as a Markdown table, one row per
// consolidated record. Absent values render as empty cells.
func (d *Data) Markdown(fields []string) string {
	cols := SelectFields(fields)

	var b strings.Builder
	b.WriteString("# Datos de salud consolidados\n\n")
	if d.Run != nil {
		fmt.Fprintf(&b, "Corrida: %s (%s, %d filas)\n\n",
			d.Run.ID.String()[:8],
			d.Run.CreatedAt.Format("2006-01-02 15:04"),
			d.Run.RowsCount)
	}

	b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(cols)) + "\n")
	for _, row := range d.Rows {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = cellValue(row, col)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

// CSV renders the selected fields as CSV with a header row.
func (d *Data) CSV(fields []string) ([]byte, error) {
	cols := SelectFields(fields)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(cols); err != nil {
		return nil, fmt.Errorf("write CSV header: %w", err)
	}
	for _, row := range d.Rows {
		record := make([]string, len(cols))
		for i, col := range cols {
			record[i] = cellValue(row, col)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// SelectFields filters the requested fields to known canonical columns and
// forces date/datetime to the front. An empty or fully-unknown selection
// falls back to the full column set.
func SelectFields(fields []string) []string {
	known := make(map[string]bool, len(models.RowColumns))
	for _, col := range models.RowColumns {
		known[col] = true
	}

	requested := make(map[string]bool, len(fields))
	for _, f := range fields {
		if known[f] {
			requested[f] = true
		}
	}
	if len(requested) == 0 {
		return models.RowColumns
	}

	var out []string
	for _, col := range []string{"date", "datetime"} {
		if requested[col] {
			out = append(out, col)
		}
	}
	for _, f := range fields {
		if requested[f] && f != "date" && f != "datetime" {
			out = append(out, f)
		}
	}
	return out
}

// cellValue formats one field of a row for tabular output. Absent values
// render as the empty string, never as zero.
func cellValue(row models.Row, field string) string {
	switch field {
	case "date":
		return row.Date.Layout(displayDate)
	case "datetime":
		return row.Timestamp.Format(displayDatetime)
	case "glucose_mg_dl":
		return floatCell(row.MgDL)
	case "tag":
		if row.Tag == nil {
			return ""
		}
		return *row.Tag
	case "steps":
		return floatCell(row.Steps)
	case "distance_m":
		return floatCell(row.DistanceM)
	case "calories_kcal":
		return floatCell(row.CaloriesKcal)
	case "active_minutes":
		return floatCell(row.ActiveMinutes)
	default:
		return ""
	}
}

// floatCell trims trailing zeros and drops the decimal point for whole
// numbers, avoiding scientific notation.
func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	if *v == float64(int64(*v)) {
		return strconv.FormatInt(int64(*v), 10)
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
