// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines process_runs and processed_rows tables.
package storage

// initSchema creates the base schema. The unique fingerprint index is added
// by the repair pass so that stores predating fingerprinting can be
// back-filled first.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS process_runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		acc_root TEXT NOT NULL,
		fit_root TEXT NOT NULL,
		acc_file TEXT,
		fit_files_count INTEGER NOT NULL,
		rows_count INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS processed_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		row_hash TEXT,
		date TEXT,
		datetime TEXT,
		glucose_mg_dl REAL,
		tag TEXT,
		steps REAL,
		distance_m REAL,
		calories_kcal REAL,
		active_minutes REAL,
		FOREIGN KEY(run_id) REFERENCES process_runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_processed_rows_run ON processed_rows(run_id);
	CREATE INDEX IF NOT EXISTS idx_processed_rows_datetime ON processed_rows(datetime);
	`

	_, err := s.db.Exec(schema)
	return err
}
