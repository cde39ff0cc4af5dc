// ABOUTME: Tests for run ingestion, dedup, attribution, and retrieval.
// ABOUTME: Covers idempotence, no-new-data signaling, and loud hash conflicts.
package storage

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nmoreno/salud/internal/models"
)

func TestIngestAndLoadRun(t *testing.T) {
	s := setupTestStore(t)

	rows := []models.Row{
		testRow(t, "2024-01-10 08:00", 95, 8000),
		testRow(t, "2024-01-10 13:30", 140, 8000),
	}
	runID, err := s.IngestRun(rows, testProvenance())
	if err != nil {
		t.Fatalf("IngestRun failed: %v", err)
	}
	if runID == uuid.Nil {
		t.Fatal("expected a run id")
	}

	got, err := s.LoadRun(runID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].MgDL == nil || *got[0].MgDL != 95 {
		t.Errorf("glucose = %v, want 95", got[0].MgDL)
	}
	if !got[0].Timestamp.Equal(rows[0].Timestamp) {
		t.Errorf("timestamp = %v, want %v", got[0].Timestamp, rows[0].Timestamp)
	}
	if got[0].DistanceM != nil {
		t.Error("absent metric came back non-nil")
	}
}

func TestIngestIdempotent(t *testing.T) {
	s := setupTestStore(t)

	rows := []models.Row{
		testRow(t, "2024-01-10 08:00", 95, 8000),
		testRow(t, "2024-01-10 13:30", 140, 8000),
	}
	firstID, err := s.IngestRun(rows, testProvenance())
	if err != nil {
		t.Fatalf("first IngestRun failed: %v", err)
	}

	_, err = s.IngestRun(rows, testProvenance())
	if !errors.Is(err, ErrNoNewRows) {
		t.Fatalf("second IngestRun = %v, want ErrNoNewRows", err)
	}

	// No second run record was created.
	latest, err := s.LatestRunID()
	if err != nil {
		t.Fatalf("LatestRunID failed: %v", err)
	}
	if latest != firstID {
		t.Errorf("latest run = %s, want %s", latest, firstID)
	}
	runs, err := s.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestIngestPartialOverlap(t *testing.T) {
	s := setupTestStore(t)

	first := []models.Row{testRow(t, "2024-01-10 08:00", 95, 8000)}
	firstID, err := s.IngestRun(first, testProvenance())
	if err != nil {
		t.Fatalf("first IngestRun failed: %v", err)
	}

	second := []models.Row{
		testRow(t, "2024-01-10 08:00", 95, 8000), // already stored
		testRow(t, "2024-01-11 09:00", 105, 6000),
	}
	secondID, err := s.IngestRun(second, testProvenance())
	if err != nil {
		t.Fatalf("second IngestRun failed: %v", err)
	}

	run, err := s.GetRun(secondID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.RowsCount != 1 {
		t.Errorf("second run RowsCount = %d, want 1 (only the new row)", run.RowsCount)
	}

	// Attribution: each row belongs to the run that first inserted it.
	firstRows, err := s.LoadRun(firstID)
	if err != nil {
		t.Fatalf("LoadRun(first) failed: %v", err)
	}
	secondRows, err := s.LoadRun(secondID)
	if err != nil {
		t.Fatalf("LoadRun(second) failed: %v", err)
	}
	if len(firstRows) != 1 || len(secondRows) != 1 {
		t.Fatalf("row counts = %d/%d, want 1/1", len(firstRows), len(secondRows))
	}
	if firstRows[0].Date.String() != "2024-01-10" {
		t.Errorf("first run row date = %s", firstRows[0].Date)
	}
	if secondRows[0].Date.String() != "2024-01-11" {
		t.Errorf("second run row date = %s", secondRows[0].Date)
	}
}

func TestIngestCollapsesBatchDuplicates(t *testing.T) {
	s := setupTestStore(t)

	row := testRow(t, "2024-01-10 08:00", 95, 8000)
	runID, err := s.IngestRun([]models.Row{row, row}, testProvenance())
	if err != nil {
		t.Fatalf("IngestRun failed: %v", err)
	}
	got, err := s.LoadRun(runID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("field-identical rows should persist once, got %d", len(got))
	}
}

func TestLatestRunIDEmptyStore(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.LatestRunID()
	if !errors.Is(err, ErrNoRuns) {
		t.Errorf("LatestRunID = %v, want ErrNoRuns", err)
	}
}

func TestLatestRunIDOrdering(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.IngestRun([]models.Row{testRow(t, "2024-01-10 08:00", 95, 8000)}, testProvenance())
	if err != nil {
		t.Fatalf("first IngestRun failed: %v", err)
	}
	secondID, err := s.IngestRun([]models.Row{testRow(t, "2024-01-11 08:00", 100, 7000)}, testProvenance())
	if err != nil {
		t.Fatalf("second IngestRun failed: %v", err)
	}

	latest, err := s.LatestRunID()
	if err != nil {
		t.Fatalf("LatestRunID failed: %v", err)
	}
	if latest != secondID {
		t.Errorf("latest = %s, want %s", latest, secondID)
	}
}

func TestLoadRunOrderedByTimestamp(t *testing.T) {
	s := setupTestStore(t)

	rows := []models.Row{
		testRow(t, "2024-01-10 21:00", 110, 8000),
		testRow(t, "2024-01-10 08:00", 95, 8000),
		testRow(t, "2024-01-10 13:30", 140, 8000),
	}
	runID, err := s.IngestRun(rows, testProvenance())
	if err != nil {
		t.Fatalf("IngestRun failed: %v", err)
	}
	got, err := s.LoadRun(runID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Errorf("rows out of order at %d", i)
		}
	}
}

func TestRunProvenance(t *testing.T) {
	s := setupTestStore(t)

	runID, err := s.IngestRun([]models.Row{testRow(t, "2024-01-10 08:00", 95, 8000)}, testProvenance())
	if err != nil {
		t.Fatalf("IngestRun failed: %v", err)
	}
	run, err := s.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.AccRoot != "/data/glucosa" || run.FitRoot != "/data/fit" {
		t.Errorf("roots = %q/%q", run.AccRoot, run.FitRoot)
	}
	if run.AccFile == nil || *run.AccFile != "accuchek_2024.json" {
		t.Errorf("acc file = %v", run.AccFile)
	}
	if run.FitFilesCount != 4 || run.RowsCount != 1 {
		t.Errorf("counts = %d/%d", run.FitFilesCount, run.RowsCount)
	}
	if run.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
}

func TestLoadLatest(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.IngestRun([]models.Row{testRow(t, "2024-01-10 08:00", 95, 8000)}, testProvenance())
	if err != nil {
		t.Fatalf("IngestRun failed: %v", err)
	}
	run, rows, err := s.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest failed: %v", err)
	}
	if run.RowsCount != 1 || len(rows) != 1 {
		t.Errorf("got %d/%d rows", run.RowsCount, len(rows))
	}
}

func TestDuplicateFingerprintFailsLoudly(t *testing.T) {
	s := setupTestStore(t)

	runID, err := s.IngestRun([]models.Row{testRow(t, "2024-01-10 08:00", 95, 8000)}, testProvenance())
	if err != nil {
		t.Fatalf("IngestRun failed: %v", err)
	}
	rows, err := s.LoadRun(runID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}

	// Bypass the dedup filter and insert the same fingerprint directly; the
	// store-level constraint must reject it.
	hash := Fingerprint(rows[0])
	_, err = s.db.Exec(`
		INSERT INTO processed_rows (run_id, row_hash, date, datetime)
		VALUES (?, ?, ?, ?)`,
		runID.String(), hash, "2024-01-10", "2024-01-10T08:00:00-03:00")
	if err == nil {
		t.Fatal("duplicate fingerprint insert should fail")
	}
}
