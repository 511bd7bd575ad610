package workers

import (
	"context"
	"time"

	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/gamesync"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/log"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/sessions"
)

// DefaultCleanupInterval is how often the expiry sweeps run.
const DefaultCleanupInterval = 1 * time.Hour

// CleanupWorker periodically sweeps expired player sessions and stale game
// states. The registries themselves are passive; this worker owns the
// schedule.
type CleanupWorker struct {
	sessionManager *sessions.SessionManager
	syncManager    *gamesync.Manager
	interval       time.Duration
}

type NewCleanupWorkerOptions struct {
	SessionManager *sessions.SessionManager
	SyncManager    *gamesync.Manager
	Interval       time.Duration
}

// NewCleanupWorker creates a new CleanupWorker.
func NewCleanupWorker(opts NewCleanupWorkerOptions) *CleanupWorker {
	interval := opts.Interval
	if interval == 0 {
		interval = DefaultCleanupInterval
	}
	return &CleanupWorker{
		sessionManager: opts.SessionManager,
		syncManager:    opts.SyncManager,
		interval:       interval,
	}
}

func (w *CleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *CleanupWorker) sweep() {
	if removed := w.sessionManager.CleanExpiredSessions(); removed > 0 {
		log.Info("Cleaned %d expired player sessions", removed)
	}
	if removed := w.syncManager.CleanOldStates(); removed > 0 {
		log.Info("Cleaned %d stale game states", removed)
	}
}
