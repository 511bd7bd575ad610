package gamesync

import (
	"fmt"
	"sync"
	"time"

	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/game/types"
)

// StateMaxAge is how long a game state survives without updates before the
// sweep evicts it.
const StateMaxAge = 24 * time.Hour

// GameState is the authoritative live roster for one campaign/scenario pair.
type GameState struct {
	CampaignID int                `json:"campaignId"`
	ScenarioID int                `json:"scenarioId"`
	Players    []types.SyncPlayer `json:"players"`
	LastUpdate time.Time          `json:"lastUpdate"`
}

// PlayerStatsUpdate is a partial update of one player's stats. Nil fields
// are left untouched.
type PlayerStatsUpdate struct {
	HealthPoints *int            `json:"healthPoints,omitempty"`
	ScenarioXp   *int            `json:"scenarioXp,omitempty"`
	Coins        *int            `json:"coins,omitempty"`
	Effects      *[]types.Effect `json:"effects,omitempty"`
}

// Manager holds the live game states keyed by campaign/scenario.
// The two write paths are deliberately distinct: Replace is the Game
// Master's full overwrite, PatchPlayer is a player's field merge. Last
// write wins at the granularity of each operation.
type Manager struct {
	states     map[string]*GameState
	statesLock sync.RWMutex
}

// NewManager creates a new Manager.
func NewManager() *Manager {
	return &Manager{
		states: make(map[string]*GameState),
	}
}

func gameKey(campaignID, scenarioID int) string {
	return fmt.Sprintf("%d-%d", campaignID, scenarioID)
}

// Replace overwrites the roster for the campaign/scenario pair and stamps
// LastUpdate. This is the Game Master's push: it always succeeds and does
// not merge with player-pushed deltas.
func (m *Manager) Replace(campaignID, scenarioID int, players []types.SyncPlayer) {
	m.statesLock.Lock()
	defer m.statesLock.Unlock()

	roster := make([]types.SyncPlayer, len(players))
	for i, player := range players {
		roster[i] = copyPlayer(player)
	}

	m.states[gameKey(campaignID, scenarioID)] = &GameState{
		CampaignID: campaignID,
		ScenarioID: scenarioID,
		Players:    roster,
		LastUpdate: time.Now(),
	}
}

// State returns a copy of the current state for the campaign/scenario pair.
func (m *Manager) State(campaignID, scenarioID int) (GameState, bool) {
	m.statesLock.RLock()
	defer m.statesLock.RUnlock()

	state, ok := m.states[gameKey(campaignID, scenarioID)]
	if !ok {
		return GameState{}, false
	}
	return copyState(state), true
}

// PatchPlayer applies the provided fields to one player in the roster and
// bumps LastUpdate. Returns false when the game state or the player is
// absent; a patch never creates players or states.
func (m *Manager) PatchPlayer(campaignID, scenarioID, playerID int, update PlayerStatsUpdate) bool {
	m.statesLock.Lock()
	defer m.statesLock.Unlock()

	state, ok := m.states[gameKey(campaignID, scenarioID)]
	if !ok {
		return false
	}

	for i := range state.Players {
		if state.Players[i].ID != playerID {
			continue
		}
		if update.HealthPoints != nil {
			state.Players[i].HealthPoints = *update.HealthPoints
		}
		if update.ScenarioXp != nil {
			state.Players[i].ScenarioXp = *update.ScenarioXp
		}
		if update.Coins != nil {
			state.Players[i].Coins = *update.Coins
		}
		if update.Effects != nil {
			state.Players[i].Effects = append([]types.Effect(nil), (*update.Effects)...)
		}
		state.LastUpdate = time.Now()
		return true
	}

	return false
}

// PlayerData returns a copy of one player's roster entry.
func (m *Manager) PlayerData(campaignID, scenarioID, playerID int) (types.SyncPlayer, bool) {
	m.statesLock.RLock()
	defer m.statesLock.RUnlock()

	state, ok := m.states[gameKey(campaignID, scenarioID)]
	if !ok {
		return types.SyncPlayer{}, false
	}
	for _, player := range state.Players {
		if player.ID == playerID {
			return copyPlayer(player), true
		}
	}
	return types.SyncPlayer{}, false
}

// CleanOldStates removes states older than StateMaxAge and returns how
// many were removed.
func (m *Manager) CleanOldStates() int {
	m.statesLock.Lock()
	defer m.statesLock.Unlock()
	now := time.Now()
	removed := 0
	for key, state := range m.states {
		if now.Sub(state.LastUpdate) > StateMaxAge {
			delete(m.states, key)
			removed++
		}
	}
	return removed
}

func copyState(state *GameState) GameState {
	copied := GameState{
		CampaignID: state.CampaignID,
		ScenarioID: state.ScenarioID,
		Players:    make([]types.SyncPlayer, len(state.Players)),
		LastUpdate: state.LastUpdate,
	}
	for i, player := range state.Players {
		copied.Players[i] = copyPlayer(player)
	}
	return copied
}

func copyPlayer(player types.SyncPlayer) types.SyncPlayer {
	copied := player
	if player.Effects != nil {
		copied.Effects = append([]types.Effect(nil), player.Effects...)
	}
	return copied
}
