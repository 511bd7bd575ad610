package syncclient

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/api"
	gametypes "github.com/BeaujeanCyril/gloomhaven-companion/pkg/game/types"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/gamesync"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	server         *httptest.Server
	sessionManager *sessions.SessionManager
	syncManager    *gamesync.Manager
	client         *Client
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()
	sessionManager := sessions.NewSessionManager()
	syncManager := gamesync.NewManager()
	server := httptest.NewServer(api.NewRouter(api.NewAPIServerOptions{
		SessionManager: sessionManager,
		SyncManager:    syncManager,
	}))
	t.Cleanup(server.Close)
	return &testFixture{
		server:         server,
		sessionManager: sessionManager,
		syncManager:    syncManager,
		client:         New(server.URL),
	}
}

func (f *testFixture) bindPin(pin string, campaignID, scenarioID, playerID int, name string) {
	f.sessionManager.CreateSession(pin, sessions.PlayerSession{
		GameID:     scenarioID,
		CampaignID: campaignID,
		PlayerID:   playerID,
		PlayerName: name,
		CreatedAt:  time.Now(),
	})
}

func intPtr(v int) *int {
	return &v
}

func TestSyncAndFetchGameState(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	state, err := f.client.FetchGameState(ctx, 1, 2)
	require.NoError(t, err)
	assert.Nil(t, state, "nothing pushed yet")

	players := []gametypes.SyncPlayer{
		{ID: 1, Name: "Brute", HealthPoints: 10, HealthPointsMax: 10, Coins: 5},
	}
	require.NoError(t, f.client.SyncGameState(ctx, 1, 2, players))
	assert.True(t, f.client.IsConnected())
	assert.False(t, f.client.LastSync().IsZero())

	state, err = f.client.FetchGameState(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, players, state.Players)
}

func TestFetchAndUpdatePlayerData(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	f.bindPin("1234", 1, 2, 1, "Brute")
	f.syncManager.Replace(1, 2, []gametypes.SyncPlayer{
		{ID: 1, Name: "Brute", HealthPoints: 10, HealthPointsMax: 10, Coins: 5},
	})

	resp, err := f.client.FetchPlayerData(ctx, "1234")
	require.NoError(t, err)
	assert.Equal(t, Session{CampaignID: 1, GameID: 2, PlayerID: 1, PlayerName: "Brute"}, resp.Session)
	require.NotNil(t, resp.PlayerData)
	assert.Equal(t, 10, resp.PlayerData.HealthPoints)

	updated, err := f.client.UpdatePlayerStats(ctx, "1234", gamesync.PlayerStatsUpdate{
		HealthPoints: intPtr(7),
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 7, updated.HealthPoints)
	assert.Equal(t, 5, updated.Coins)

	// The server-side state reflects the patch.
	serverState, ok := f.syncManager.State(1, 2)
	require.True(t, ok)
	assert.Equal(t, 7, serverState.Players[0].HealthPoints)
}

func TestFetchPlayerData_BadPin(t *testing.T) {
	f := newTestFixture(t)

	_, err := f.client.FetchPlayerData(context.Background(), "0000")
	require.Error(t, err)
	assert.False(t, f.client.IsConnected())
}

func TestClient_ConnectivityFlag(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	require.NoError(t, f.client.SyncGameState(ctx, 1, 2, []gametypes.SyncPlayer{}))
	assert.True(t, f.client.IsConnected())

	f.server.Close()
	err := f.client.SyncGameState(ctx, 1, 2, []gametypes.SyncPlayer{})
	require.Error(t, err)
	assert.False(t, f.client.IsConnected())
}

func TestStartGMPolling(t *testing.T) {
	f := newTestFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan []gametypes.SyncPlayer, 16)
	f.client.StartGMPolling(ctx, 1, 2, 10*time.Millisecond, func(players []gametypes.SyncPlayer) {
		updates <- players
	})
	defer f.client.StopPolling()

	// No pushes yet, no callbacks.
	select {
	case <-updates:
		t.Fatal("callback fired before any state was pushed")
	case <-time.After(50 * time.Millisecond):
	}

	f.syncManager.Replace(1, 2, []gametypes.SyncPlayer{{ID: 1, Name: "Brute", Coins: 5}})

	select {
	case players := <-updates:
		require.Len(t, players, 1)
		assert.Equal(t, 5, players[0].Coins)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the GM snapshot")
	}

	// An unchanged snapshot is not re-applied.
	drainDeadline := time.After(100 * time.Millisecond)
drain:
	for {
		select {
		case <-updates:
		case <-drainDeadline:
			break drain
		}
	}
	select {
	case <-updates:
		t.Fatal("stale snapshot applied twice")
	case <-time.After(100 * time.Millisecond):
	}

	// A newer snapshot is applied.
	f.syncManager.Replace(1, 2, []gametypes.SyncPlayer{{ID: 1, Name: "Brute", Coins: 12}})
	select {
	case players := <-updates:
		require.Len(t, players, 1)
		assert.Equal(t, 12, players[0].Coins)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the updated snapshot")
	}
}

func TestStartPlayerPolling(t *testing.T) {
	f := newTestFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.bindPin("1234", 1, 2, 1, "Brute")
	f.syncManager.Replace(1, 2, []gametypes.SyncPlayer{{ID: 1, Name: "Brute", HealthPoints: 10}})

	updates := make(chan gametypes.SyncPlayer, 16)
	f.client.StartPlayerPolling(ctx, "1234", 10*time.Millisecond, func(player gametypes.SyncPlayer) {
		updates <- player
	})
	defer f.client.StopPolling()

	select {
	case player := <-updates:
		assert.Equal(t, 10, player.HealthPoints)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the player record")
	}
}

func TestStopPolling(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	f.syncManager.Replace(1, 2, []gametypes.SyncPlayer{{ID: 1, Name: "Brute"}})

	updates := make(chan struct{}, 64)
	f.client.StartGMPolling(ctx, 1, 2, 10*time.Millisecond, func([]gametypes.SyncPlayer) {
		updates <- struct{}{}
	})

	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("polling never started")
	}

	f.client.StopPolling()
	assert.False(t, f.client.IsConnected(), "stopping resets the connection flag")

	// Allow in-flight ticks to finish, then verify no further callbacks.
	time.Sleep(50 * time.Millisecond)
	for {
		select {
		case <-updates:
			continue
		default:
		}
		break
	}
	select {
	case <-updates:
		t.Fatal("callback fired after StopPolling")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStartPolling_ReplacesPreviousLoop(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	f.syncManager.Replace(1, 2, []gametypes.SyncPlayer{{ID: 1, Name: "Brute"}})
	f.syncManager.Replace(3, 4, []gametypes.SyncPlayer{{ID: 2, Name: "Tinkerer"}})

	updates := make(chan int, 64)
	f.client.StartGMPolling(ctx, 1, 2, 10*time.Millisecond, func(players []gametypes.SyncPlayer) {
		updates <- players[0].ID
	})
	f.client.StartGMPolling(ctx, 3, 4, 10*time.Millisecond, func(players []gametypes.SyncPlayer) {
		updates <- players[0].ID
	})
	defer f.client.StopPolling()

	// A tick from the first loop may already be in flight; let it land and
	// discard it before asserting on the active loop.
	time.Sleep(50 * time.Millisecond)
	for {
		select {
		case <-updates:
			continue
		default:
		}
		break
	}

	select {
	case id := <-updates:
		assert.Equal(t, 2, id, "only the most recent loop should be active")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the second loop")
	}
}
