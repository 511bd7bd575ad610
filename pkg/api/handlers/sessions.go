package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/log"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/sessions"
	"github.com/gorilla/mux"
)

type generatePinsRequest struct {
	CampaignID int `json:"campaignId"`
	ScenarioID int `json:"scenarioId"`
	Players    []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"players"`
}

type generatedPin struct {
	PlayerID   int    `json:"playerId"`
	PlayerName string `json:"playerName"`
	Pin        string `json:"pin"`
}

type sessionResponse struct {
	CampaignID int    `json:"campaignId"`
	GameID     int    `json:"gameId"`
	PlayerID   int    `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// HandleGeneratePins clears any previous PINs for the campaign/scenario
// pair and issues a fresh PIN per player. PIN exhaustion aborts the whole
// request.
func HandleGeneratePins(sessionManager *sessions.SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := generatePinsRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.CampaignID == 0 || req.ScenarioID == 0 || len(req.Players) == 0 {
			http.Error(w, "campaignId, scenarioId and players are required", http.StatusBadRequest)
			return
		}

		sessionManager.ClearSessionsForGame(req.CampaignID, req.ScenarioID)

		generatedPins := make([]generatedPin, 0, len(req.Players))
		for _, player := range req.Players {
			pin, err := sessionManager.CreateSessionWithUniquePin(sessions.PlayerSession{
				GameID:     req.ScenarioID,
				CampaignID: req.CampaignID,
				PlayerID:   player.ID,
				PlayerName: player.Name,
				CreatedAt:  time.Now(),
			})
			if err != nil {
				log.Error("failed to generate PIN: %v", err)
				http.Error(w, "Failed to generate PIN", http.StatusInternalServerError)
				return
			}

			generatedPins = append(generatedPins, generatedPin{
				PlayerID:   player.ID,
				PlayerName: player.Name,
				Pin:        pin,
			})
		}

		log.Info("Generated %d PINs for campaign %d", len(generatedPins), req.CampaignID)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"pins":    generatedPins,
		})
	}
}

// HandleGetSession resolves a PIN to a player session.
func HandleGetSession(sessionManager *sessions.SessionManager) http.HandlerFunc {
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

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"session": sessionResponse{
				CampaignID: session.CampaignID,
				GameID:     session.GameID,
				PlayerID:   session.PlayerID,
				PlayerName: session.PlayerName,
			},
		})
	}
}
