package game

import (
	"fmt"
	"math/rand"

	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/game/types"
)

const (
	// BaseDeckSize is the number of cards in a freshly built monster deck.
	BaseDeckSize = 20

	// AnnulCardValue and X2CardValue are the labels of the two temporary
	// modifier cards that can be injected mid-session.
	AnnulCardValue = "Annulé"
	X2CardValue    = "x2"

	AnnulCardImagePath = "/img/DeckModifier/Monsters/gh-am-mm-01.png"
	X2CardImagePath    = "/img/DeckModifier/Monsters/BenedictionCard.png"

	// DeckEmptyValue is returned by DrawAndRecycle when there is nothing
	// left to draw. Not an error: the caller decides whether to stop play
	// or rebuild the deck.
	DeckEmptyValue = "Le deck est vide."
)

// InitializeDeck appends the 20 base monster-modifier cards to the deck and
// shuffles it. Cards 19 and 20 are flagged NeedShuffle: they stand in for
// the reshuffle triggers near the bottom of the physical pile, so consumers
// must reshuffle when one of them is drawn.
func InitializeDeck(deck *types.Deck) {
	for number := 1; number <= BaseDeckSize; number++ {
		needShuffle := number == BaseDeckSize-1 || number == BaseDeckSize
		imagePath := fmt.Sprintf("/img/DeckModifier/Monsters/gh-am-m-%02d.png", number)

		deck.CardsList = append(deck.CardsList, types.Card{
			ID:          number,
			Value:       fmt.Sprintf("Card %d", number),
			ImagePath:   imagePath,
			NeedShuffle: needShuffle,
			IsTemporary: false,
		})
	}
	ShuffleDeck(deck)
}

// ShuffleDeck permutes the draw pile in place with a Fisher-Yates backward
// scan. A deck of zero or one cards is left untouched.
func ShuffleDeck(deck *types.Deck) {
	cards := deck.CardsList
	for i := len(cards) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
	deck.IsShuffled = true
}

// NextCardID returns the next unique card id for the deck: one more than
// the highest id currently in the draw pile, or 1 for an empty pile.
// Tolerates gaps left by removed temporary cards.
func NextCardID(deck *types.Deck) int {
	if len(deck.CardsList) == 0 {
		return 1
	}
	max := deck.CardsList[0].ID
	for _, card := range deck.CardsList[1:] {
		if card.ID > max {
			max = card.ID
		}
	}
	return max + 1
}

// AddAnnulCard injects a temporary Annul card and reshuffles the whole deck
// so its position is unpredictable.
func AddAnnulCard(deck *types.Deck) {
	deck.CardsList = append(deck.CardsList, types.Card{
		ID:          NextCardID(deck),
		Value:       AnnulCardValue,
		ImagePath:   AnnulCardImagePath,
		NeedShuffle: false,
		IsTemporary: true,
	})
	ShuffleDeck(deck)
}

// AddX2Card injects a temporary x2 card and reshuffles the whole deck.
func AddX2Card(deck *types.Deck) {
	deck.CardsList = append(deck.CardsList, types.Card{
		ID:          NextCardID(deck),
		Value:       X2CardValue,
		ImagePath:   X2CardImagePath,
		NeedShuffle: false,
		IsTemporary: true,
	})
	ShuffleDeck(deck)
}

// RemoveAnnulCard removes the first temporary Annul card from the draw pile
// and reshuffles the remainder. Returns false when no such card is present;
// callers must not assume removal succeeded.
func RemoveAnnulCard(deck *types.Deck) bool {
	for i, card := range deck.CardsList {
		if card.ImagePath == AnnulCardImagePath && card.IsTemporary {
			deck.CardsList = append(deck.CardsList[:i], deck.CardsList[i+1:]...)
			ShuffleDeck(deck)
			return true
		}
	}
	return false
}

// DrawAndRecycle removes the front card, records it in the historic, and
// cycles it back to the bottom of the pile unless it is temporary.
// Temporary cards are consumed permanently. Returns the drawn card's value,
// or DeckEmptyValue when the pile is empty.
func DrawAndRecycle(deck *types.Deck) string {
	if len(deck.CardsList) == 0 {
		return DeckEmptyValue
	}

	firstCard := deck.CardsList[0]
	deck.CardsHistoric = append(deck.CardsHistoric, firstCard)
	deck.CardsList = deck.CardsList[1:]

	if !firstCard.IsTemporary {
		deck.CardsList = append(deck.CardsList, firstCard)
	}

	return firstCard.Value
}
