package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	gametypes "github.com/BeaujeanCyril/gloomhaven-companion/pkg/game/types"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/gamesync"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/sessions"
	"github.com/gorilla/mux"
)

type updateGameStateRequest struct {
	CampaignID int                    `json:"campaignId"`
	ScenarioID int                    `json:"scenarioId"`
	Players    []gametypes.SyncPlayer `json:"players"`
}

// HandleUpdateGameState is the Game Master's push: a full roster overwrite.
func HandleUpdateGameState(syncManager *gamesync.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := updateGameStateRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.CampaignID == 0 || req.ScenarioID == 0 || req.Players == nil {
			http.Error(w, "campaignId, scenarioId and players are required", http.StatusBadRequest)
			return
		}

		syncManager.Replace(req.CampaignID, req.ScenarioID, req.Players)

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
		})
	}
}

// HandleGetGameState is the Game Master's pull: the current roster with
// player-pushed deltas folded in, or null when nothing has been pushed yet.
func HandleGetGameState(syncManager *gamesync.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID, err1 := strconv.Atoi(r.URL.Query().Get("campaignId"))
		scenarioID, err2 := strconv.Atoi(r.URL.Query().Get("scenarioId"))
		if err1 != nil || err2 != nil || campaignID == 0 || scenarioID == 0 {
			http.Error(w, "campaignId and scenarioId are required", http.StatusBadRequest)
			return
		}

		body := map[string]interface{}{
			"success": true,
			"state":   nil,
		}
		if state, ok := syncManager.State(campaignID, scenarioID); ok {
			body["state"] = state
		}

		writeJSON(w, http.StatusOK, body)
	}
}

// HandleGetPlayerData resolves a player's PIN and returns their session
// identity plus their current roster entry, or null when the Game Master
// has not pushed state yet.
func HandleGetPlayerData(sessionManager *sessions.SessionManager, syncManager *gamesync.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pin := mux.Vars(r)["pin"]
		if pin == "" {
			http.Error(w, "PIN is required", http.StatusBadRequest)
			return
		}

		session, ok := sessionManager.GetSession(pin)
		if !ok {
			http.Error(w, "Session not found or PIN expired", http.StatusNotFound)
			return
		}

		body := map[string]interface{}{
			"success": true,
			"session": sessionResponse{
				CampaignID: session.CampaignID,
				GameID:     session.GameID,
				PlayerID:   session.PlayerID,
				PlayerName: session.PlayerName,
			},
			"playerData": nil,
		}
		if playerData, ok := syncManager.PlayerData(session.CampaignID, session.GameID, session.PlayerID); ok {
			body["playerData"] = playerData
		}

		writeJSON(w, http.StatusOK, body)
	}
}

// HandleUpdatePlayerStats applies a player's partial stats update to their
// own roster entry and returns the updated record.
func HandleUpdatePlayerStats(sessionManager *sessions.SessionManager, syncManager *gamesync.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pin := mux.Vars(r)["pin"]
		if pin == "" {
			http.Error(w, "PIN is required", http.StatusBadRequest)
			return
		}

		session, ok := sessionManager.GetSession(pin)
		if !ok {
			http.Error(w, "Session not found or PIN expired", http.StatusNotFound)
			return
		}

		update := gamesync.PlayerStatsUpdate{}
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if !syncManager.PatchPlayer(session.CampaignID, session.GameID, session.PlayerID, update) {
			http.Error(w, "Game not found or player not in game", http.StatusNotFound)
			return
		}

		playerData, _ := syncManager.PlayerData(session.CampaignID, session.GameID, session.PlayerID)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"playerData": playerData,
		})
	}
}
