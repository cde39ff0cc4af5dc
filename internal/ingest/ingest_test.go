// ABOUTME: Tests for the end-to-end ingestion pipeline.
// ABOUTME: Exercises sources, consolidation, and the store together.
package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nmoreno/salud/internal/config"
	"github.com/nmoreno/salud/internal/storage"
)

func setupPipeline(t *testing.T) (*config.Config, *storage.Store) {
	t.Helper()
	tmpDir := t.TempDir()

	accRoot := filepath.Join(tmpDir, "glucosa")
	if err := os.MkdirAll(accRoot, 0755); err != nil {
		t.Fatal(err)
	}
	accJSON := `[
  {"timestamp": "2025/03/01 08:30", "mg/dL": 110, "mmol/L": 6.1},
  {"timestamp": "2025/03/01 13:00", "mg/dL": 145, "mmol/L": 8.0}
]`
	if err := os.WriteFile(filepath.Join(accRoot, "accuchek_a.json"), []byte(accJSON), 0644); err != nil {
		t.Fatal(err)
	}

	dailyDir := filepath.Join(tmpDir, "fit", "Métricas de actividad diaria")
	if err := os.MkdirAll(dailyDir, 0755); err != nil {
		t.Fatal(err)
	}
	csvData := "Hora de inicio,Recuento de pasos,Distancia (m)\n00:00,4200,3100.5\n"
	if err := os.WriteFile(filepath.Join(dailyDir, "2025-03-01.csv"), []byte(csvData), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		AccRoot:  accRoot,
		FitRoot:  filepath.Join(tmpDir, "fit"),
		Timezone: "UTC",
	}

	store, err := storage.Open(filepath.Join(tmpDir, "salud.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return cfg, store
}

func TestRunStoresConsolidatedRows(t *testing.T) {
	cfg, store := setupPipeline(t)

	result, err := Run(cfg, store)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.NoNewData {
		t.Fatal("expected new data on first run")
	}
	if result.RowsTotal != 2 {
		t.Errorf("RowsTotal = %d, want 2", result.RowsTotal)
	}
	if result.RowsStored != 2 {
		t.Errorf("RowsStored = %d, want 2", result.RowsStored)
	}
	if result.FitFiles != 1 {
		t.Errorf("FitFiles = %d, want 1", result.FitFiles)
	}
	if filepath.Base(result.AccFile) != "accuchek_a.json" {
		t.Errorf("AccFile = %s, want accuchek_a.json", result.AccFile)
	}

	rows, err := store.LoadRun(result.RunID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 stored rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Steps == nil || *row.Steps != 4200 {
			t.Errorf("expected steps 4200 on every row, got %v", row.Steps)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	cfg, store := setupPipeline(t)

	if _, err := Run(cfg, store); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}

	result, err := Run(cfg, store)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if !result.NoNewData {
		t.Error("expected NoNewData on second run over the same files")
	}

	runs, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run after repeated ingestion, got %d", len(runs))
	}
}

func TestRunFailsOnMissingSource(t *testing.T) {
	cfg, store := setupPipeline(t)
	cfg.AccRoot = filepath.Join(t.TempDir(), "does-not-exist")

	if _, err := Run(cfg, store); err == nil {
		t.Error("expected error for missing accu-chek root")
	}
}
