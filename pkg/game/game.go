package game

import (
	"time"

	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/game/types"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/log"
)

// NewGame builds a fresh game for one scenario attempt: an initialized,
// shuffled monster deck and the roster of players at full health with zero
// scenario experience.
func NewGame(players []types.Player) *types.Game {
	game := &types.Game{
		DateTimeStarted: time.Now(),
		MonsterDeck: types.Deck{
			Name: "Monster Deck",
		},
	}
	InitializeDeck(&game.MonsterDeck)

	for _, player := range players {
		game.Players = append(game.Players, types.PlayerGame{
			Player:       player,
			HealthPoints: player.HealthPointsMax,
			ScenarioXp:   0,
		})
	}

	return game
}

// AddRound appends the next numbered round to the game.
func AddRound(game *types.Game) {
	game.Rounds = append(game.Rounds, types.Round{
		RoundNumber: len(game.Rounds) + 1,
		DateTime:    time.Now(),
	})
}

// CurrentRound returns the latest round, creating round 1 if none exists.
func CurrentRound(game *types.Game) types.Round {
	if len(game.Rounds) == 0 {
		game.Rounds = append(game.Rounds, types.Round{
			RoundNumber: 1,
			DateTime:    time.Now(),
		})
	}
	return game.Rounds[len(game.Rounds)-1]
}

// DrawMonsterCard draws the next monster-modifier card. When the drawn card
// is flagged NeedShuffle the deck is reshuffled after the draw, matching the
// physical rule that the pile is rebuilt before it runs out.
func DrawMonsterCard(game *types.Game) string {
	deck := &game.MonsterDeck
	needShuffle := len(deck.CardsList) > 0 && deck.CardsList[0].NeedShuffle

	value := DrawAndRecycle(deck)

	if needShuffle {
		log.Debug("Drawn card requires a reshuffle")
		ShuffleDeck(deck)
	}

	return value
}
