package types

import "time"

// Card is a single monster-modifier card.
// NeedShuffle marks cards that force a reshuffle of the deck once drawn.
// IsTemporary marks cards injected mid-session (Annul, x2) that are
// consumed when drawn instead of cycling back into the pile.
type Card struct {
	ID          int    `json:"id"`
	Value       string `json:"value"`
	ImagePath   string `json:"imagePath"`
	NeedShuffle bool   `json:"needShuffle"`
	IsTemporary bool   `json:"isTemporary"`
}

// Deck is an ordered draw pile plus its draw history.
// The front of CardsList is the next card drawn.
type Deck struct {
	ID                int    `json:"id,omitempty"`
	Name              string `json:"name"`
	CardsList         []Card `json:"cardsList"`
	CardsHistoric     []Card `json:"cardsHistoric"`
	IsShuffled        bool   `json:"isShuffled"`
	IsShowingBackCard bool   `json:"isShowingBackCard"`
}

// Effect is a status effect applied to a player during a scenario.
type Effect struct {
	ID          int    `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Duration    int    `json:"duration,omitempty"`
}

// Element is one of the six board elements and its waning state.
type Element struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	State     int    `json:"state"`
	ImagePath string `json:"imagePath"`
}

// Player is a campaign-level character sheet.
type Player struct {
	ID              int      `json:"id,omitempty"`
	Name            string   `json:"name"`
	HealthPointsMax int      `json:"healthPointsMax"`
	Coins           int      `json:"coins"`
	Xp              int      `json:"xp"`
	Effects         []Effect `json:"effects,omitempty"`
}

// PlayerGame is a player's in-scenario state for one game attempt.
// ScenarioXp is the experience earned during this attempt only.
type PlayerGame struct {
	Player
	HealthPoints int `json:"healthPoints"`
	ScenarioXp   int `json:"scenarioXp"`
}

// Round is one numbered round of a game.
type Round struct {
	RoundNumber int       `json:"roundNumber"`
	DateTime    time.Time `json:"dateTime"`
}

// Game is one play-through of a scenario.
type Game struct {
	ID              int          `json:"id,omitempty"`
	DateTimeStarted time.Time    `json:"dateTimeStarted,omitempty"`
	Players         []PlayerGame `json:"players"`
	Rounds          []Round      `json:"rounds"`
	MonsterDeck     Deck         `json:"monsterDeck"`
	GameState       string       `json:"gameState,omitempty"`
}

// Scenario is one playable mission within a campaign.
type Scenario struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	IsFinished bool   `json:"isFinished"`
	ImagePath  string `json:"imagePath"`
}

// CampaignScenario links a campaign to a scenario and its game, if any.
type CampaignScenario struct {
	ID         int       `json:"id,omitempty"`
	CampaignID int       `json:"campaignId"`
	ScenarioID int       `json:"scenarioId"`
	IsFinished bool      `json:"isFinished"`
	GameID     *int      `json:"gameId,omitempty"`
	Scenario   *Scenario `json:"scenario,omitempty"`
}

// Campaign is a company of players and the scenarios they have attempted.
type Campaign struct {
	ID                int                `json:"id,omitempty"`
	CompanyName       string             `json:"companyName"`
	Players           []Player           `json:"players"`
	CampaignScenarios []CampaignScenario `json:"campaignScenarios,omitempty"`
}

// SyncPlayer is the live-sync view of a player's in-scenario stats,
// exchanged between the Game Master screen and player devices.
type SyncPlayer struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	HealthPoints    int      `json:"healthPoints"`
	HealthPointsMax int      `json:"healthPointsMax"`
	ScenarioXp      int      `json:"scenarioXp"`
	Coins           int      `json:"coins"`
	Effects         []Effect `json:"effects,omitempty"`
}
