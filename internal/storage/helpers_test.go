// ABOUTME: Shared test fixtures for the storage package.
// ABOUTME: Provides a temp-dir store and canonical row constructors.
package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/nmoreno/salud/internal/dates"
	"github.com/nmoreno/salud/internal/models"
)

var testLoc = time.FixedZone("UTC-3", -3*3600)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "salud.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fptr(v float64) *float64 { return &v }

func sptr(s string) *string { return &s }

// testRow builds a canonical row at the given local time with a glucose
// value and step count.
func testRow(t *testing.T, ts string, mgDL float64, steps float64) models.Row {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04", ts, testLoc)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", ts, err)
	}
	return models.Row{
		Date:      dates.FromTime(parsed),
		Timestamp: parsed,
		MgDL:      fptr(mgDL),
		Steps:     fptr(steps),
	}
}

func testProvenance() Provenance {
	return Provenance{
		AccRoot:       "/data/glucosa",
		FitRoot:       "/data/fit",
		AccFile:       sptr("accuchek_2024.json"),
		FitFilesCount: 4,
	}
}
