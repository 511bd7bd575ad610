package repositories

import (
	"fmt"

	gametypes "github.com/BeaujeanCyril/gloomhaven-companion/pkg/game/types"
)

// DefaultScenarioCount is the number of scenarios seeded when no custom
// scenario set is provided.
const DefaultScenarioCount = 95

// DefaultElements returns the six board elements.
func DefaultElements() []gametypes.Element {
	return []gametypes.Element{
		{ID: 1, Name: "Feu", ImagePath: "/img/Elements/FirePicture.png"},
		{ID: 2, Name: "Ténèbre", ImagePath: "/img/Elements/DarknessPicture.png"},
		{ID: 3, Name: "Terre", ImagePath: "/img/Elements/EarthPicture.png"},
		{ID: 4, Name: "Vent", ImagePath: "/img/Elements/WindPicture.png"},
		{ID: 5, Name: "Lumière", ImagePath: "/img/Elements/LightPicture.png"},
		{ID: 6, Name: "Givre", ImagePath: "/img/Elements/FrostPicture.png"},
	}
}

// DefaultScenarios returns the default scenario list.
func DefaultScenarios() []gametypes.Scenario {
	scenarios := make([]gametypes.Scenario, 0, DefaultScenarioCount)
	for i := 1; i <= DefaultScenarioCount; i++ {
		scenarios = append(scenarios, gametypes.Scenario{
			ID:        i,
			Name:      fmt.Sprintf("Scénario %d", i),
			ImagePath: fmt.Sprintf("/img/Scenarios/gh-%d.png", i),
		})
	}
	return scenarios
}
