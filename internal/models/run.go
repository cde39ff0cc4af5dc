// ABOUTME: Run model recording one ingestion operation's provenance.
// ABOUTME: Runs are append-only and never mutate after creation.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Run records one ingestion operation: when it ran, where the sources lived,
// and how many rows it was the first to store. Rows belong to the run that
// first inserted them, not to every run that attempted to.
type Run struct {
	ID            uuid.UUID `json:"id" yaml:"id"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
	AccRoot       string    `json:"acc_root" yaml:"acc_root"`
	FitRoot       string    `json:"fit_root" yaml:"fit_root"`
	AccFile       *string   `json:"acc_file" yaml:"acc_file"`
	FitFilesCount int       `json:"fit_files_count" yaml:"fit_files_count"`
	RowsCount     int       `json:"rows_count" yaml:"rows_count"`
}
