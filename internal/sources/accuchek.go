// ABOUTME: Accu-Chek JSON export reader.
// ABOUTME: Picks the newest export and normalizes entries into Readings.
package sources

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/nmoreno/salud/internal/models"
)

// accuChekTimeLayout is the timestamp format used by Accu-Chek exports.
const accuChekTimeLayout = "2006/01/02 15:04"

// AccuChek reads glucose readings from accuchek_*.json exports under Root.
type AccuChek struct {
	Root string
}

// Validate checks that the export directory exists.
func (a AccuChek) Validate() error {
	info, err := os.Stat(a.Root)
	if err != nil {
		return fmt.Errorf("accu-chek root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("accu-chek root is not a directory: %s", a.Root)
	}
	return nil
}

// NewestExport returns the newest accuchek_*.json by modification time.
func (a AccuChek) NewestExport() (string, error) {
	matches, err := filepath.Glob(filepath.Join(a.Root, "accuchek_*.json"))
	if err != nil {
		return "", fmt.Errorf("glob accu-chek exports: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no accuchek_*.json in %s", a.Root)
	}

	newest := ""
	var newestMod time.Time
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", path, err)
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = path
			newestMod = info.ModTime()
		}
	}
	return newest, nil
}

// accuChekEntry is one record of the export. Glucose comes in both units;
// timestamps come as local wall-clock text or as epoch seconds.
type accuChekEntry struct {
	Timestamp string   `json:"timestamp"`
	Epoch     *int64   `json:"epoch"`
	MgDL      *float64 `json:"mg/dL"`
	MmolL     *float64 `json:"mmol/L"`
	Tag       string   `json:"tag"`
}

// LoadReadings parses an Accu-Chek JSON export into readings sorted by
// timestamp. Wall-clock timestamps are resolved in loc. Entries missing
// either glucose value are skipped.
func (a AccuChek) LoadReadings(path string, loc *time.Location) ([]models.Reading, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read accu-chek export: %w", err)
	}

	var entries []accuChekEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("accu-chek export must be a JSON list: %w", err)
	}

	out := make([]models.Reading, 0, len(entries))
	for i, e := range entries {
		if e.MgDL == nil || e.MmolL == nil {
			continue
		}
		ts, err := parseAccuChekTime(e, loc)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		r := models.NewReading(ts, *e.MgDL, *e.MmolL)
		if e.Tag != "" {
			r = r.WithTag(e.Tag)
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func parseAccuChekTime(e accuChekEntry, loc *time.Location) (time.Time, error) {
	if e.Timestamp != "" {
		ts, err := time.ParseInLocation(accuChekTimeLayout, e.Timestamp, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", e.Timestamp, err)
		}
		return ts, nil
	}
	if e.Epoch != nil {
		return time.Unix(*e.Epoch, 0).In(loc), nil
	}
	return time.Time{}, fmt.Errorf("missing timestamp and epoch")
}
