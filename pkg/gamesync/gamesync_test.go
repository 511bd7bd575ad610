package gamesync

import (
	"sync"
	"testing"
	"time"

	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func TestReplaceAndState(t *testing.T) {
	m := NewManager()

	_, ok := m.State(1, 2)
	assert.False(t, ok)

	players := []types.SyncPlayer{
		{ID: 1, Name: "Brute", HealthPoints: 10, HealthPointsMax: 10, Coins: 5},
		{ID: 2, Name: "Spellweaver", HealthPoints: 6, HealthPointsMax: 6},
	}
	m.Replace(1, 2, players)

	state, ok := m.State(1, 2)
	require.True(t, ok)
	assert.Equal(t, 1, state.CampaignID)
	assert.Equal(t, 2, state.ScenarioID)
	assert.Equal(t, players, state.Players)
	assert.False(t, state.LastUpdate.IsZero())

	// States are keyed by the campaign/scenario pair, not by either alone.
	_, ok = m.State(1, 3)
	assert.False(t, ok)
	_, ok = m.State(2, 2)
	assert.False(t, ok)
}

func TestReplace_Overwrites(t *testing.T) {
	m := NewManager()
	m.Replace(1, 2, []types.SyncPlayer{{ID: 1, Name: "Brute", Coins: 5}})
	m.Replace(1, 2, []types.SyncPlayer{{ID: 2, Name: "Mindthief"}})

	state, ok := m.State(1, 2)
	require.True(t, ok)
	require.Len(t, state.Players, 1)
	assert.Equal(t, 2, state.Players[0].ID, "a full push does not merge with the previous roster")
}

func TestPatchPlayer(t *testing.T) {
	m := NewManager()
	m.Replace(1, 2, []types.SyncPlayer{
		{ID: 1, Name: "Brute", HealthPoints: 10, HealthPointsMax: 10, ScenarioXp: 0, Coins: 5},
	})
	before, _ := m.State(1, 2)

	time.Sleep(time.Millisecond)
	ok := m.PatchPlayer(1, 2, 1, PlayerStatsUpdate{HealthPoints: intPtr(7)})
	require.True(t, ok)

	state, _ := m.State(1, 2)
	player := state.Players[0]
	assert.Equal(t, 7, player.HealthPoints)
	assert.Equal(t, 0, player.ScenarioXp, "absent fields are untouched")
	assert.Equal(t, 5, player.Coins, "absent fields are untouched")
	assert.True(t, state.LastUpdate.After(before.LastUpdate), "a patch bumps the update stamp")

	ok = m.PatchPlayer(1, 2, 1, PlayerStatsUpdate{
		ScenarioXp: intPtr(4),
		Coins:      intPtr(12),
		Effects:    &[]types.Effect{{ID: 1, Name: "Poison"}},
	})
	require.True(t, ok)

	state, _ = m.State(1, 2)
	player = state.Players[0]
	assert.Equal(t, 7, player.HealthPoints)
	assert.Equal(t, 4, player.ScenarioXp)
	assert.Equal(t, 12, player.Coins)
	require.Len(t, player.Effects, 1)
	assert.Equal(t, "Poison", player.Effects[0].Name)
}

func TestPatchPlayer_Missing(t *testing.T) {
	m := NewManager()

	assert.False(t, m.PatchPlayer(1, 2, 1, PlayerStatsUpdate{Coins: intPtr(1)}), "no state yet")
	_, ok := m.State(1, 2)
	assert.False(t, ok, "a failed patch must not create a state")

	m.Replace(1, 2, []types.SyncPlayer{{ID: 1, Name: "Brute", Coins: 5}})
	before, _ := m.State(1, 2)

	assert.False(t, m.PatchPlayer(1, 2, 99, PlayerStatsUpdate{Coins: intPtr(1)}), "unknown player")

	after, _ := m.State(1, 2)
	assert.Equal(t, before, after, "a failed patch leaves the state unchanged")
}

func TestPlayerData(t *testing.T) {
	m := NewManager()
	m.Replace(1, 2, []types.SyncPlayer{
		{ID: 1, Name: "Brute", HealthPoints: 10},
		{ID: 2, Name: "Scoundrel", HealthPoints: 8, Effects: []types.Effect{{ID: 2, Name: "Wound"}}},
	})

	player, ok := m.PlayerData(1, 2, 2)
	require.True(t, ok)
	assert.Equal(t, "Scoundrel", player.Name)
	require.Len(t, player.Effects, 1)

	// Mutating the returned copy must not leak into the stored state.
	player.Effects[0].Name = "changed"
	stored, _ := m.PlayerData(1, 2, 2)
	assert.Equal(t, "Wound", stored.Effects[0].Name)

	_, ok = m.PlayerData(1, 2, 99)
	assert.False(t, ok)
	_, ok = m.PlayerData(9, 9, 1)
	assert.False(t, ok)
}

func TestReplace_CopyIsolation(t *testing.T) {
	m := NewManager()
	players := []types.SyncPlayer{
		{ID: 1, Name: "Brute", Coins: 5, Effects: []types.Effect{{ID: 1, Name: "Poison"}}},
	}
	m.Replace(1, 2, players)

	// A caller retaining its argument must not reach the stored state.
	players[0].Coins = 999
	players[0].Effects[0].Name = "changed"

	state, _ := m.State(1, 2)
	assert.Equal(t, 5, state.Players[0].Coins)
	require.Len(t, state.Players[0].Effects, 1)
	assert.Equal(t, "Poison", state.Players[0].Effects[0].Name)
}

func TestState_CopyIsolation(t *testing.T) {
	m := NewManager()
	m.Replace(1, 2, []types.SyncPlayer{{ID: 1, Name: "Brute", Coins: 5}})

	state, _ := m.State(1, 2)
	state.Players[0].Coins = 999

	fresh, _ := m.State(1, 2)
	assert.Equal(t, 5, fresh.Players[0].Coins)
}

func TestCleanOldStates(t *testing.T) {
	m := NewManager()
	m.Replace(1, 1, []types.SyncPlayer{{ID: 1}})
	m.Replace(1, 2, []types.SyncPlayer{{ID: 1}})
	m.Replace(2, 1, []types.SyncPlayer{{ID: 1}})

	m.statesLock.Lock()
	m.states[gameKey(1, 1)].LastUpdate = time.Now().Add(-25 * time.Hour)
	m.states[gameKey(1, 2)].LastUpdate = time.Now().Add(-48 * time.Hour)
	m.statesLock.Unlock()

	assert.Equal(t, 2, m.CleanOldStates())

	_, ok := m.State(1, 1)
	assert.False(t, ok)
	_, ok = m.State(2, 1)
	assert.True(t, ok)

	assert.Zero(t, m.CleanOldStates())
}

func TestConcurrentAccess(t *testing.T) {
	m := NewManager()
	m.Replace(1, 2, []types.SyncPlayer{{ID: 1, Name: "Brute"}, {ID: 2, Name: "Tinkerer"}})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			m.PatchPlayer(1, 2, 1+i%2, PlayerStatsUpdate{Coins: intPtr(i)})
		}(i)
		go func() {
			defer wg.Done()
			m.State(1, 2)
		}()
		go func() {
			defer wg.Done()
			m.Replace(1, 2, []types.SyncPlayer{{ID: 1, Name: "Brute"}, {ID: 2, Name: "Tinkerer"}})
		}()
	}
	wg.Wait()

	state, ok := m.State(1, 2)
	require.True(t, ok)
	assert.Len(t, state.Players, 2)
}
