package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	gametypes "github.com/BeaujeanCyril/gloomhaven-companion/pkg/game/types"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/log"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/repositories"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/repositories/models"
	"github.com/gorilla/mux"
)

func campaignIDFromRequest(r *http.Request) (int, bool) {
	campaignID, err := strconv.Atoi(mux.Vars(r)["id"])
	return campaignID, err == nil && campaignID > 0
}

func HandleListCampaigns(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaigns, err := repository.ListCampaigns(r.Context())
		if err != nil {
			log.Error("failed to list campaigns: %v", err)
			http.Error(w, "Failed to list campaigns", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, campaigns)
	}
}

func HandleCreateCampaign(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input := models.CreateCampaignInput{}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(input.CompanyName) == "" {
			http.Error(w, "Company name is required", http.StatusBadRequest)
			return
		}
		for _, player := range input.Players {
			if strings.TrimSpace(player.Name) == "" {
				http.Error(w, "Player name is required", http.StatusBadRequest)
				return
			}
			if player.HealthPointsMax <= 0 {
				http.Error(w, "Player max health must be greater than 0", http.StatusBadRequest)
				return
			}
		}

		campaign, err := repository.CreateCampaign(r.Context(), input)
		if err != nil {
			log.Error("failed to create campaign: %v", err)
			http.Error(w, "Failed to create campaign", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, campaign)
	}
}

func HandleGetCampaign(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID, ok := campaignIDFromRequest(r)
		if !ok {
			http.Error(w, "Invalid campaign id", http.StatusBadRequest)
			return
		}

		campaign, err := repository.GetCampaign(r.Context(), campaignID)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Campaign not found", http.StatusNotFound)
				return
			}
			log.Error("failed to get campaign: %v", err)
			http.Error(w, "Failed to get campaign", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, campaign)
	}
}

func HandleUpdateCampaign(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID, ok := campaignIDFromRequest(r)
		if !ok {
			http.Error(w, "Invalid campaign id", http.StatusBadRequest)
			return
		}

		body := struct {
			CompanyName string `json:"companyName"`
		}{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(body.CompanyName) == "" {
			http.Error(w, "Company name is required", http.StatusBadRequest)
			return
		}

		campaign, err := repository.UpdateCampaign(r.Context(), campaignID, body.CompanyName)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Campaign not found", http.StatusNotFound)
				return
			}
			log.Error("failed to update campaign: %v", err)
			http.Error(w, "Failed to update campaign", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, campaign)
	}
}

func HandleDeleteCampaign(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID, ok := campaignIDFromRequest(r)
		if !ok {
			http.Error(w, "Invalid campaign id", http.StatusBadRequest)
			return
		}

		if err := repository.DeleteCampaign(r.Context(), campaignID); err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Campaign not found", http.StatusNotFound)
				return
			}
			log.Error("failed to delete campaign: %v", err)
			http.Error(w, "Failed to delete campaign", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type saveGameRequest struct {
	ScenarioID int                   `json:"scenarioId"`
	Game       *gametypes.Game       `json:"game"`
	Elements   []models.ElementState `json:"elements"`
}

// HandleSaveGame persists a full game snapshot for a campaign/scenario
// pair. This is the only write path into the system of record.
func HandleSaveGame(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID, ok := campaignIDFromRequest(r)
		if !ok {
			http.Error(w, "Invalid campaign id", http.StatusBadRequest)
			return
		}

		req := saveGameRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.ScenarioID == 0 || req.Game == nil {
			http.Error(w, "scenarioId and game are required", http.StatusBadRequest)
			return
		}

		gameID, err := repository.SaveGame(r.Context(), campaignID, req.ScenarioID, req.Game, req.Elements)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Campaign not found", http.StatusNotFound)
				return
			}
			log.Error("failed to save game: %v", err)
			http.Error(w, "Failed to save game", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"gameId":  gameID,
		})
	}
}

// HandleLoadGame returns the saved game snapshot for a campaign/scenario
// pair.
func HandleLoadGame(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID, ok := campaignIDFromRequest(r)
		if !ok {
			http.Error(w, "Invalid campaign id", http.StatusBadRequest)
			return
		}
		scenarioID, err := strconv.Atoi(r.URL.Query().Get("scenarioId"))
		if err != nil || scenarioID == 0 {
			http.Error(w, "scenarioId is required", http.StatusBadRequest)
			return
		}

		game, err := repository.LoadGame(r.Context(), campaignID, scenarioID)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Game not found", http.StatusNotFound)
				return
			}
			log.Error("failed to load game: %v", err)
			http.Error(w, "Failed to load game", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, game)
	}
}

func HandleListScenarios(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scenarios, err := repository.ListScenarios(r.Context())
		if err != nil {
			log.Error("failed to list scenarios: %v", err)
			http.Error(w, "Failed to list scenarios", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, scenarios)
	}
}

func HandleListElements(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		elements, err := repository.ListElements(r.Context())
		if err != nil {
			log.Error("failed to list elements: %v", err)
			http.Error(w, "Failed to list elements", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, elements)
	}
}
