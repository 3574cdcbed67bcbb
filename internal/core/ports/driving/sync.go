package driving

import (
	"context"

	"github.com/custodia-labs/vectormind/internal/core/domain"
)

// DriveSyncService pulls every PDF from a user's drive into the index
type DriveSyncService interface {
	// SyncAll starts a background sync and returns immediately.
	// The run is detached from ctx cancellation; use the handle to cancel.
	SyncAll(ctx context.Context, userID string) SyncHandle

	// Latest returns the report of the user's most recent sync
	Latest(userID string) (*domain.SyncReport, bool)

	// Shutdown cancels running syncs and waits for them to stop
	Shutdown(ctx context.Context) error
}

// SyncHandle observes one background sync run
type SyncHandle interface {
	// Cancel stops the run after the files in flight
	Cancel()

	// Done is closed when the run ends
	Done() <-chan struct{}

	// Report returns a snapshot of the run's progress
	Report() *domain.SyncReport
}
