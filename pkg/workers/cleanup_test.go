package workers

import (
	"context"
	"testing"
	"time"

	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/gamesync"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCleanupWorker_DefaultInterval(t *testing.T) {
	worker := NewCleanupWorker(NewCleanupWorkerOptions{
		SessionManager: sessions.NewSessionManager(),
		SyncManager:    gamesync.NewManager(),
	})
	assert.Equal(t, DefaultCleanupInterval, worker.interval)
}

func TestCleanupWorker_SweepsExpiredEntries(t *testing.T) {
	sessionManager := sessions.NewSessionManager()
	syncManager := gamesync.NewManager()

	sessionManager.CreateSession("1000", sessions.PlayerSession{
		PlayerName: "old",
		CreatedAt:  time.Now().Add(-25 * time.Hour),
	})
	sessionManager.CreateSession("1001", sessions.PlayerSession{
		PlayerName: "fresh",
		CreatedAt:  time.Now(),
	})

	worker := NewCleanupWorker(NewCleanupWorkerOptions{
		SessionManager: sessionManager,
		SyncManager:    syncManager,
		Interval:       10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Start(ctx)

	require.Eventually(t, func() bool {
		return sessionManager.Count() == 1
	}, time.Second, 10*time.Millisecond)

	_, ok := sessionManager.GetSession("1001")
	assert.True(t, ok, "fresh session must survive the sweep")
}

func TestCleanupWorker_StopsOnContextCancel(t *testing.T) {
	worker := NewCleanupWorker(NewCleanupWorkerOptions{
		SessionManager: sessions.NewSessionManager(),
		SyncManager:    gamesync.NewManager(),
		Interval:       10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}
