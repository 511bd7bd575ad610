package repositories

import (
	"context"

	gametypes "github.com/BeaujeanCyril/gloomhaven-companion/pkg/game/types"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/repositories/models"
)

// Repository is the system of record for campaigns, scenarios, and saved
// games. The live sync layer never touches it; it is written to only on an
// explicit save-game.
type Repository interface {
	Close(ctx context.Context) error
	Seed(ctx context.Context) error
	CreateCampaign(ctx context.Context, input models.CreateCampaignInput) (*gametypes.Campaign, error)
	GetCampaign(ctx context.Context, campaignID int) (*gametypes.Campaign, error)
	ListCampaigns(ctx context.Context) ([]gametypes.Campaign, error)
	UpdateCampaign(ctx context.Context, campaignID int, companyName string) (*gametypes.Campaign, error)
	DeleteCampaign(ctx context.Context, campaignID int) error
	ListScenarios(ctx context.Context) ([]gametypes.Scenario, error)
	ListElements(ctx context.Context) ([]gametypes.Element, error)
	SaveGame(ctx context.Context, campaignID int, scenarioID int, game *gametypes.Game, elements []models.ElementState) (int, error)
	LoadGame(ctx context.Context, campaignID int, scenarioID int) (*gametypes.Game, error)
}
