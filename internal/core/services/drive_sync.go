package services

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
	"github.com/custodia-labs/vectormind/internal/core/ports/driving"
)

// Sync defaults
const (
	DefaultSyncBatchSize    = 10
	DefaultSyncBatchPause   = 500 * time.Millisecond
	DefaultSyncMinFileBytes = 100
)

// Verify interface compliance
var _ driving.DriveSyncService = (*DriveSyncScheduler)(nil)

// DriveSyncScheduler pulls every PDF from a user's drive into the index.
// Each run lists the drive, then ingests files in sequential batches with a
// pause between them. Files in a batch run in parallel up to the batch size.
// A file failure is recorded and never aborts the run. Re-running ingests
// every file again under fresh document ids.
type DriveSyncScheduler struct {
	credentials  driving.CredentialManager
	drive        driven.DriveClient
	ingestion    driving.IngestionService
	batchSize    int
	batchPause   time.Duration
	minFileBytes int64
	parallelism  int
	workspace    string
	logger       *slog.Logger

	mu      sync.Mutex
	running map[*syncHandle]struct{}
	latest  map[string]*syncHandle
	closed  bool
	wg      sync.WaitGroup
}

// DriveSyncConfig holds dependencies for DriveSyncScheduler.
type DriveSyncConfig struct {
	Credentials driving.CredentialManager
	Drive       driven.DriveClient
	Ingestion   driving.IngestionService

	BatchSize    int           // Files per batch (default 10)
	BatchPause   time.Duration // Pause between batches (default 500ms, negative disables)
	MinFileBytes int64         // Smaller files are skipped (default 100)
	Parallelism  int           // Concurrent files within a batch (default and max: BatchSize)
	Workspace    string        // Workspace tag for synced documents

	Logger *slog.Logger
}

// NewDriveSyncScheduler creates a new drive sync scheduler.
func NewDriveSyncScheduler(cfg DriveSyncConfig) *DriveSyncScheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &DriveSyncScheduler{
		credentials:  cfg.Credentials,
		drive:        cfg.Drive,
		ingestion:    cfg.Ingestion,
		batchSize:    cfg.BatchSize,
		batchPause:   cfg.BatchPause,
		minFileBytes: cfg.MinFileBytes,
		parallelism:  cfg.Parallelism,
		workspace:    cfg.Workspace,
		logger:       logger,
		running:      make(map[*syncHandle]struct{}),
		latest:       make(map[string]*syncHandle),
	}
	if s.batchSize <= 0 {
		s.batchSize = DefaultSyncBatchSize
	}
	if s.batchPause < 0 {
		s.batchPause = 0
	} else if s.batchPause == 0 {
		s.batchPause = DefaultSyncBatchPause
	}
	if s.minFileBytes <= 0 {
		s.minFileBytes = DefaultSyncMinFileBytes
	}
	if s.parallelism <= 0 || s.parallelism > s.batchSize {
		s.parallelism = s.batchSize
	}
	if s.workspace == "" {
		s.workspace = domain.DefaultWorkspace
	}
	return s
}

// SyncAll starts a background sync for userID and returns its handle.
// The run outlives ctx; cancel it through the handle or Shutdown.
func (s *DriveSyncScheduler) SyncAll(ctx context.Context, userID string) driving.SyncHandle {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	h := newSyncHandle(userID, cancel)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		h.finish(domain.SyncStatusCancelled, errors.New("scheduler is shut down"))
		return h
	}
	s.running[h] = struct{}{}
	s.latest[userID] = h
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer func() {
			cancel()
			s.mu.Lock()
			delete(s.running, h)
			s.mu.Unlock()
		}()
		s.run(runCtx, h)
	}()

	return h
}

// Latest returns the report of the user's most recent sync.
func (s *DriveSyncScheduler) Latest(userID string) (*domain.SyncReport, bool) {
	s.mu.Lock()
	h, ok := s.latest[userID]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	return h.Report(), true
}

// Shutdown cancels running syncs and waits for them to stop or ctx to end.
func (s *DriveSyncScheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	for h := range s.running {
		h.Cancel()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run executes one sync to completion.
func (s *DriveSyncScheduler) run(ctx context.Context, h *syncHandle) {
	userID := h.userID
	s.logger.Info("starting drive sync", "user_id", userID)

	if _, err := s.credentials.GetValidCredential(ctx, userID); err != nil {
		s.logger.Error("drive sync aborted, no valid credential", "user_id", userID, "error", err)
		h.finish(domain.SyncStatusFailed, err)
		return
	}
	tokens := s.credentials.TokenProvider(userID)

	files, err := s.drive.ListFiles(ctx, tokens, driven.MimeTypePDF)
	if err != nil {
		s.logger.Error("drive listing failed", "user_id", userID, "error", err)
		h.finish(s.endStatus(ctx, domain.SyncStatusFailed), err)
		return
	}

	eligible := make([]*domain.DriveFile, 0, len(files))
	for _, f := range files {
		if f.Size < s.minFileBytes {
			continue
		}
		eligible = append(eligible, f)
	}
	h.listed(len(files), len(files)-len(eligible))

	for start := 0; start < len(eligible); start += s.batchSize {
		if start > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(s.batchPause):
			}
		}
		if ctx.Err() != nil {
			break
		}

		end := min(start+s.batchSize, len(eligible))
		s.syncBatch(ctx, h, tokens, eligible[start:end])

		r := h.Report()
		s.logger.Info("drive sync batch finished",
			"user_id", userID,
			"processed", end,
			"total", len(eligible),
			"succeeded", r.Succeeded,
			"failed", r.Failed,
		)
	}

	status := s.endStatus(ctx, domain.SyncStatusCompleted)
	h.finish(status, nil)

	r := h.Report()
	s.logger.Info("drive sync finished",
		"user_id", userID,
		"status", status,
		"listed", r.Listed,
		"skipped", r.Skipped,
		"succeeded", r.Succeeded,
		"failed", r.Failed,
	)
}

// syncBatch ingests one batch; every file outcome is recorded on the handle.
func (s *DriveSyncScheduler) syncBatch(ctx context.Context, h *syncHandle, tokens driven.TokenProvider, batch []*domain.DriveFile) {
	g := new(errgroup.Group)
	g.SetLimit(s.parallelism)

	for _, f := range batch {
		g.Go(func() error {
			s.syncFile(ctx, h, tokens, f)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *DriveSyncScheduler) syncFile(ctx context.Context, h *syncHandle, tokens driven.TokenProvider, f *domain.DriveFile) {
	data, err := s.drive.Download(ctx, tokens, f.ID)
	if err != nil {
		s.logger.Warn("drive download failed", "user_id", h.userID, "file_id", f.ID, "error", err)
		h.failed(f, err)
		return
	}
	if int64(len(data)) < s.minFileBytes {
		h.skipped()
		return
	}

	doc, err := s.ingestion.Ingest(ctx, driving.IngestRequest{
		UserID:     h.userID,
		FileName:   pdfName(f.Name),
		Data:       data,
		Source:     domain.SourceDrive,
		ExternalID: f.ID,
		Workspace:  s.workspace,
	})
	if err != nil {
		s.logger.Warn("drive file ingestion failed", "user_id", h.userID, "file_id", f.ID, "error", err)
		h.failed(f, err)
		return
	}
	h.succeeded(doc.ID)
}

func (s *DriveSyncScheduler) endStatus(ctx context.Context, status domain.SyncStatus) domain.SyncStatus {
	if ctx.Err() != nil {
		return domain.SyncStatusCancelled
	}
	return status
}

// pdfName makes sure a drive file name resolves to the PDF extractor
func pdfName(name string) string {
	if name == "" {
		name = "untitled"
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

// syncHandle tracks one background run.
type syncHandle struct {
	userID string
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	report domain.SyncReport
}

func newSyncHandle(userID string, cancel context.CancelFunc) *syncHandle {
	return &syncHandle{
		userID: userID,
		cancel: cancel,
		done:   make(chan struct{}),
		report: domain.SyncReport{
			UserID:    userID,
			Status:    domain.SyncStatusRunning,
			StartedAt: time.Now().UTC(),
		},
	}
}

// Cancel stops the run after the files in flight.
func (h *syncHandle) Cancel() {
	h.cancel()
}

// Done is closed when the run ends.
func (h *syncHandle) Done() <-chan struct{} {
	return h.done
}

// Report returns a snapshot of the run.
func (h *syncHandle) Report() *domain.SyncReport {
	h.mu.Lock()
	defer h.mu.Unlock()

	r := h.report
	r.Failures = append([]domain.FileFailure(nil), h.report.Failures...)
	r.DocumentIDs = append([]string(nil), h.report.DocumentIDs...)
	if h.report.CompletedAt != nil {
		t := *h.report.CompletedAt
		r.CompletedAt = &t
	}
	return &r
}

func (h *syncHandle) listed(total, skipped int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.report.Listed = total
	h.report.Skipped = skipped
}

func (h *syncHandle) skipped() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.report.Skipped++
}

func (h *syncHandle) succeeded(docID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.report.Succeeded++
	h.report.DocumentIDs = append(h.report.DocumentIDs, docID)
}

func (h *syncHandle) failed(f *domain.DriveFile, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.report.Failed++
	h.report.Failures = append(h.report.Failures, domain.FileFailure{
		FileID:   f.ID,
		FileName: f.Name,
		Error:    err.Error(),
	})
}

func (h *syncHandle) finish(status domain.SyncStatus, err error) {
	h.mu.Lock()
	now := time.Now().UTC()
	h.report.Status = status
	h.report.CompletedAt = &now
	if err != nil {
		h.report.Error = err.Error()
	}
	h.mu.Unlock()
	close(h.done)
}
