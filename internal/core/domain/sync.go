package domain

import (
	"fmt"
	"time"
)

// DriveFile is one remote file returned by a drive listing
type DriveFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// SyncStatus represents the state of a sync run
type SyncStatus string

const (
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
	SyncStatusCancelled SyncStatus = "cancelled"
)

// FileFailure records why one file of a sync was not ingested
type FileFailure struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

// SyncReport summarises one drive sync run. It is held in memory only.
type SyncReport struct {
	UserID      string        `json:"user_id"`
	Status      SyncStatus    `json:"status"`
	Listed      int           `json:"listed"`
	Skipped     int           `json:"skipped"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	Failures    []FileFailure `json:"failures,omitempty"`
	DocumentIDs []string      `json:"document_ids,omitempty"`
	Error       string        `json:"error,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// Err returns ErrPartialBatchFailure when some files failed, nil otherwise
func (r *SyncReport) Err() error {
	if r.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d files failed", ErrPartialBatchFailure, r.Failed, r.Listed-r.Skipped)
}
