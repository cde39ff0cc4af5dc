// ABOUTME: Run ingestion and retrieval with fingerprint-based dedup.
// ABOUTME: IngestRun commits atomically; re-ingesting known rows is a no-op.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nmoreno/salud/internal/dates"
	"github.com/nmoreno/salud/internal/models"
)

// ErrNoNewRows signals that every ingested row was already present in the
// store. It is a distinct outcome, not a failure; no run record is created.
var ErrNoNewRows = errors.New("no new rows to ingest")

// ErrNoRuns signals that the store holds no runs yet.
var ErrNoRuns = errors.New("no runs recorded")

// Provenance describes where an ingestion run read its data from.
type Provenance struct {
	AccRoot       string
	FitRoot       string
	AccFile       *string
	FitFilesCount int
}

// hashLookupChunk bounds the size of IN(...) parameter lists.
const hashLookupChunk = 500

// IngestRun fingerprints every row, filters out those already stored, and
// persists the remainder under a new run inside a single transaction.
// Returns the new run's id, or ErrNoNewRows when nothing was new.
func (s *Store) IngestRun(rows []models.Row, prov Provenance) (uuid.UUID, error) {
	type hashedRow struct {
		hash string
		row  models.Row
	}

	// Dedup within the batch too: field-identical rows are one logical row.
	seen := make(map[string]bool, len(rows))
	hashed := make([]hashedRow, 0, len(rows))
	for _, row := range rows {
		h := Fingerprint(row)
		if seen[h] {
			continue
		}
		seen[h] = true
		hashed = append(hashed, hashedRow{hash: h, row: row})
	}

	tx, err := s.db.Begin()
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	hashes := make([]string, len(hashed))
	for i, hr := range hashed {
		hashes[i] = hr.hash
	}
	existing, err := existingHashes(tx, hashes)
	if err != nil {
		return uuid.Nil, err
	}

	newRows := hashed[:0]
	for _, hr := range hashed {
		if !existing[hr.hash] {
			newRows = append(newRows, hr)
		}
	}
	if len(newRows) == 0 {
		return uuid.Nil, ErrNoNewRows
	}

	run := models.Run{
		ID:            uuid.New(),
		CreatedAt:     time.Now(),
		AccRoot:       prov.AccRoot,
		FitRoot:       prov.FitRoot,
		AccFile:       prov.AccFile,
		FitFilesCount: prov.FitFilesCount,
		RowsCount:     len(newRows),
	}
	_, err = tx.Exec(`
		INSERT INTO process_runs (id, created_at, acc_root, fit_root, acc_file, fit_files_count, rows_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(),
		run.CreatedAt.Format(time.RFC3339),
		run.AccRoot,
		run.FitRoot,
		run.AccFile,
		run.FitFilesCount,
		run.RowsCount,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO processed_rows (run_id, row_hash, date, datetime, glucose_mg_dl, tag, steps, distance_m, calories_kcal, active_minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return uuid.Nil, fmt.Errorf("prepare row insert: %w", err)
	}
	defer stmt.Close()

	for _, hr := range newRows {
		row := hr.row
		_, err := stmt.Exec(
			run.ID.String(),
			hr.hash,
			row.Date.String(),
			row.Timestamp.Format(time.RFC3339),
			row.MgDL,
			row.Tag,
			row.Steps,
			row.DistanceM,
			row.CaloriesKcal,
			row.ActiveMinutes,
		)
		if err != nil {
			// A UNIQUE violation here means dedup filtering failed upstream;
			// surface it rather than papering over.
			return uuid.Nil, fmt.Errorf("insert row %s: %w", hr.hash, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("commit run: %w", err)
	}
	return run.ID, nil
}

// LoadRun returns all rows attributed to the given run, ordered by timestamp.
func (s *Store) LoadRun(runID uuid.UUID) ([]models.Row, error) {
	rows, err := s.db.Query(`
		SELECT date, datetime, glucose_mg_dl, tag, steps, distance_m, calories_kcal, active_minutes
		FROM processed_rows
		WHERE run_id = ?
		ORDER BY datetime`,
		runID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// LatestRunID returns the id of the most recently created run, or ErrNoRuns
// when the store is empty.
func (s *Store) LatestRunID() (uuid.UUID, error) {
	var idStr string
	err := s.db.QueryRow(
		`SELECT id FROM process_runs ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&idStr)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, ErrNoRuns
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("latest run: %w", err)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse run id %q: %w", idStr, err)
	}
	return id, nil
}

// GetRun returns one run's provenance record.
func (s *Store) GetRun(runID uuid.UUID) (*models.Run, error) {
	row := s.db.QueryRow(`
		SELECT id, created_at, acc_root, fit_root, acc_file, fit_files_count, rows_count
		FROM process_runs
		WHERE id = ?`,
		runID.String(),
	)
	run, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return run, nil
}

// ListRuns returns all runs, most recent first.
func (s *Store) ListRuns() ([]*models.Run, error) {
	rows, err := s.db.Query(`
		SELECT id, created_at, acc_root, fit_root, acc_file, fit_files_count, rows_count
		FROM process_runs
		ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LoadLatest returns the most recent run and its rows.
func (s *Store) LoadLatest() (*models.Run, []models.Row, error) {
	id, err := s.LatestRunID()
	if err != nil {
		return nil, nil, err
	}
	run, err := s.GetRun(id)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.LoadRun(id)
	if err != nil {
		return nil, nil, err
	}
	return run, rows, nil
}

func existingHashes(tx *sql.Tx, hashes []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	for start := 0; start < len(hashes); start += hashLookupChunk {
		end := start + hashLookupChunk
		if end > len(hashes) {
			end = len(hashes)
		}
		chunk := hashes[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := make([]interface{}, len(chunk))
		for i, h := range chunk {
			args[i] = h
		}
		rows, err := tx.Query(
			`SELECT row_hash FROM processed_rows WHERE row_hash IN (`+placeholders+`)`,
			args...,
		)
		if err != nil {
			return nil, fmt.Errorf("lookup fingerprints: %w", err)
		}
		for rows.Next() {
			var h string
			if err := rows.Scan(&h); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan fingerprint: %w", err)
			}
			existing[h] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("lookup fingerprints: %w", err)
		}
		rows.Close()
	}
	return existing, nil
}

func scanRun(scan func(dest ...interface{}) error) (*models.Run, error) {
	var run models.Run
	var idStr, createdAt string
	var accFile sql.NullString

	err := scan(&idStr, &createdAt, &run.AccRoot, &run.FitRoot, &accFile,
		&run.FitFilesCount, &run.RowsCount)
	if err != nil {
		return nil, err
	}

	run.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse run id %q: %w", idStr, err)
	}
	run.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse run created_at %q: %w", createdAt, err)
	}
	if accFile.Valid {
		run.AccFile = &accFile.String
	}
	return &run, nil
}

func scanRows(rows *sql.Rows) ([]models.Row, error) {
	var out []models.Row
	for rows.Next() {
		var r models.Row
		var dateStr, datetimeStr string
		var mgDL, steps, distance, calories, active sql.NullFloat64
		var tag sql.NullString

		err := rows.Scan(&dateStr, &datetimeStr, &mgDL, &tag, &steps,
			&distance, &calories, &active)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		r.Date, err = dates.Parse(dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse row date: %w", err)
		}
		r.Timestamp, err = time.Parse(time.RFC3339, datetimeStr)
		if err != nil {
			return nil, fmt.Errorf("parse row datetime: %w", err)
		}
		if mgDL.Valid {
			r.MgDL = &mgDL.Float64
		}
		if tag.Valid {
			r.Tag = &tag.String
		}
		if steps.Valid {
			r.Steps = &steps.Float64
		}
		if distance.Valid {
			r.DistanceM = &distance.Float64
		}
		if calories.Valid {
			r.CaloriesKcal = &calories.Float64
		}
		if active.Valid {
			r.ActiveMinutes = &active.Float64
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
