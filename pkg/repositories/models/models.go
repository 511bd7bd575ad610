package models

// CreatePlayerInput describes a player added at campaign creation.
type CreatePlayerInput struct {
	Name            string `json:"name"`
	HealthPointsMax int    `json:"healthPointsMax"`
	Coins           int    `json:"coins"`
	Xp              int    `json:"xp"`
}

// CreateCampaignInput describes a campaign to create.
type CreateCampaignInput struct {
	CompanyName string              `json:"companyName"`
	Players     []CreatePlayerInput `json:"players"`
}

// ElementState is one board element's state at save time.
type ElementState struct {
	ID    int `json:"id"`
	State int `json:"state"`
}
