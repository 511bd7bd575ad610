package api

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"

	gametypes "github.com/BeaujeanCyril/gloomhaven-companion/pkg/game/types"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/gamesync"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/repositories"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepositoryRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	repo, err := repositories.NewSQLiteRepository(ctx, path, filepath.Join("..", "..", "migrations", "sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close(ctx)
	})
	require.NoError(t, repo.Seed(ctx))

	return NewRouter(NewAPIServerOptions{
		SessionManager: sessions.NewSessionManager(),
		SyncManager:    gamesync.NewManager(),
		Repository:     repo,
	})
}

func TestCampaignRoutes(t *testing.T) {
	router := newRepositoryRouter(t)

	recorder := doRequest(t, router, http.MethodGet, "/api/campaigns", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var campaigns []gametypes.Campaign
	decodeBody(t, recorder, &campaigns)
	assert.Empty(t, campaigns)

	recorder = doRequest(t, router, http.MethodPost, "/api/campaigns", map[string]interface{}{
		"companyName": "The Drunken Boars",
		"players": []map[string]interface{}{
			{"name": "Brute", "healthPointsMax": 10, "coins": 5},
		},
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	var campaign gametypes.Campaign
	decodeBody(t, recorder, &campaign)
	require.NotZero(t, campaign.ID)
	require.Len(t, campaign.Players, 1)

	recorder = doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/campaigns/%d", campaign.ID), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doRequest(t, router, http.MethodPut, fmt.Sprintf("/api/campaigns/%d", campaign.ID), map[string]interface{}{
		"companyName": "The Sober Boars",
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	decodeBody(t, recorder, &campaign)
	assert.Equal(t, "The Sober Boars", campaign.CompanyName)

	recorder = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/campaigns/%d", campaign.ID), nil)
	require.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/campaigns/%d", campaign.ID), nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestCreateCampaign_Validation(t *testing.T) {
	router := newRepositoryRouter(t)

	recorder := doRequest(t, router, http.MethodPost, "/api/campaigns", map[string]interface{}{
		"companyName": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = doRequest(t, router, http.MethodPost, "/api/campaigns", map[string]interface{}{
		"companyName": "Boars",
		"players":     []map[string]interface{}{{"name": "", "healthPointsMax": 10}},
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = doRequest(t, router, http.MethodPost, "/api/campaigns", map[string]interface{}{
		"companyName": "Boars",
		"players":     []map[string]interface{}{{"name": "Brute", "healthPointsMax": 0}},
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestSaveAndLoadGameRoutes(t *testing.T) {
	router := newRepositoryRouter(t)

	recorder := doRequest(t, router, http.MethodPost, "/api/campaigns", map[string]interface{}{
		"companyName": "Boars",
		"players":     []map[string]interface{}{{"name": "Brute", "healthPointsMax": 10}},
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	var campaign gametypes.Campaign
	decodeBody(t, recorder, &campaign)

	recorder = doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/campaigns/%d/game?scenarioId=1", campaign.ID), nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code, "nothing saved yet")

	recorder = doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/campaigns/%d/save-game", campaign.ID), map[string]interface{}{
		"scenarioId": 1,
		"game": map[string]interface{}{
			"players": []map[string]interface{}{
				{"name": "Brute", "healthPointsMax": 10, "healthPoints": 6, "scenarioXp": 3, "coins": 8},
			},
			"rounds": []map[string]interface{}{},
			"monsterDeck": map[string]interface{}{
				"name":       "Monster Deck",
				"isShuffled": true,
				"cardsList": []map[string]interface{}{
					{"id": 1, "value": "Card 1", "imagePath": "/img/DeckModifier/Monsters/gh-am-m-01.png"},
				},
				"cardsHistoric": []map[string]interface{}{},
			},
		},
		"elements": []map[string]interface{}{{"id": 1, "state": 2}},
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	var saveBody struct {
		Success bool `json:"success"`
		GameID  int  `json:"gameId"`
	}
	decodeBody(t, recorder, &saveBody)
	require.True(t, saveBody.Success)
	require.NotZero(t, saveBody.GameID)

	recorder = doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/campaigns/%d/game?scenarioId=1", campaign.ID), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var loaded gametypes.Game
	decodeBody(t, recorder, &loaded)
	assert.Equal(t, saveBody.GameID, loaded.ID)
	require.Len(t, loaded.Players, 1)
	assert.Equal(t, 6, loaded.Players[0].HealthPoints)
	require.Len(t, loaded.MonsterDeck.CardsList, 1)
}

func TestSaveGame_BadRequests(t *testing.T) {
	router := newRepositoryRouter(t)

	recorder := doRequest(t, router, http.MethodPost, "/api/campaigns/1/save-game", map[string]interface{}{
		"scenarioId": 1,
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code, "game payload is required")

	recorder = doRequest(t, router, http.MethodPost, "/api/campaigns/999/save-game", map[string]interface{}{
		"scenarioId": 1,
		"game":       map[string]interface{}{"players": []map[string]interface{}{}},
	})
	assert.Equal(t, http.StatusNotFound, recorder.Code, "unknown campaign")
}

func TestListScenariosAndElements(t *testing.T) {
	router := newRepositoryRouter(t)

	recorder := doRequest(t, router, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var scenarios []gametypes.Scenario
	decodeBody(t, recorder, &scenarios)
	assert.Len(t, scenarios, repositories.DefaultScenarioCount)

	recorder = doRequest(t, router, http.MethodGet, "/api/elements", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var elements []gametypes.Element
	decodeBody(t, recorder, &elements)
	assert.Len(t, elements, 6)
}
