// ABOUTME: One-time fingerprint back-fill for stores predating row hashing.
// ABOUTME: Idempotent repair pass executed inside a transaction on every open.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/nmoreno/salud/internal/dates"
)

// repairFingerprints brings an older store up to the fingerprinted schema:
// it adds the row_hash column if missing, back-fills a hash for every row
// that lacks one, collapses duplicate rows (keeping the earliest), and only
// then enables the uniqueness constraint.
func (s *Store) repairFingerprints() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	hasHash, err := columnExists(tx, "processed_rows", "row_hash")
	if err != nil {
		return err
	}
	if !hasHash {
		if _, err := tx.Exec(`ALTER TABLE processed_rows ADD COLUMN row_hash TEXT`); err != nil {
			return fmt.Errorf("add row_hash column: %w", err)
		}
	}

	if err := backfillHashes(tx); err != nil {
		return err
	}

	// Remove historical duplicates before enforcing uniqueness.
	_, err = tx.Exec(`
		DELETE FROM processed_rows
		WHERE id NOT IN (
			SELECT MIN(id) FROM processed_rows GROUP BY row_hash
		)`)
	if err != nil {
		return fmt.Errorf("collapse duplicate rows: %w", err)
	}

	_, err = tx.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_processed_rows_row_hash
		ON processed_rows(row_hash)`)
	if err != nil {
		return fmt.Errorf("create fingerprint index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit repair: %w", err)
	}
	return nil
}

func backfillHashes(tx *sql.Tx) error {
	rows, err := tx.Query(`
		SELECT id, date, datetime, glucose_mg_dl, tag, steps, distance_m, calories_kcal, active_minutes
		FROM processed_rows
		WHERE row_hash IS NULL`)
	if err != nil {
		return fmt.Errorf("select unhashed rows: %w", err)
	}

	type update struct {
		id   int64
		hash string
	}
	var updates []update
	for rows.Next() {
		var id int64
		var dateStr, datetimeStr, tag sql.NullString
		var mgDL, steps, distance, calories, active sql.NullFloat64

		err := rows.Scan(&id, &dateStr, &datetimeStr, &mgDL, &tag, &steps,
			&distance, &calories, &active)
		if err != nil {
			rows.Close()
			return fmt.Errorf("scan unhashed row: %w", err)
		}

		tuple := []*string{
			canonicalDate(dateStr),
			canonicalDatetime(datetimeStr),
			nullFloatText(mgDL),
			nullString(tag),
			nullFloatText(steps),
			nullFloatText(distance),
			nullFloatText(calories),
			nullFloatText(active),
		}
		updates = append(updates, update{id: id, hash: digest(tuple)})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("select unhashed rows: %w", err)
	}
	rows.Close()

	for _, u := range updates {
		if _, err := tx.Exec(`UPDATE processed_rows SET row_hash = ? WHERE id = ?`, u.hash, u.id); err != nil {
			return fmt.Errorf("backfill row %d: %w", u.id, err)
		}
	}
	return nil
}

// canonicalDate re-normalizes a stored date to ISO form so back-filled hashes
// match Fingerprint for rows this tool wrote.
func canonicalDate(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	if d, err := dates.Parse(v.String); err == nil {
		s := d.String()
		return &s
	}
	return &v.String
}

// canonicalDatetime normalizes stored timestamps to RFC3339. Offset-less
// values from older stores are treated as UTC; unparseable text hashes as-is.
func canonicalDatetime(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, v.String); err == nil {
		s := t.Format(time.RFC3339)
		return &s
	}
	if t, err := time.Parse("2006-01-02T15:04:05", v.String); err == nil {
		s := t.Format(time.RFC3339)
		return &s
	}
	return &v.String
}

func nullFloatText(v sql.NullFloat64) *string {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return floatText(&f)
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func columnExists(tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return false, fmt.Errorf("inspect %s columns: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, fmt.Errorf("scan column name: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
