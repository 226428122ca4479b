package game

import (
	"math/rand/v2"
)

// Deck is one deal: the symbol for each slot, in slot order.
type Deck []string

// NewDeck doubles the given symbols and shuffles them, so each symbol appears
// in exactly two positions.
// If rng is nil a freshly seeded generator is used.
func NewDeck(symbols []string, rng *rand.Rand) Deck {
	if rng == nil {
		rng = newRand()
	}
	deck := make(Deck, 0, 2*len(symbols))
	deck = append(deck, symbols...)
	deck = append(deck, symbols...)
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// Count returns how many times symbol appears in the deck.
func (d Deck) Count(symbol string) int {
	n := 0
	for _, s := range d {
		if s == symbol {
			n++
		}
	}
	return n
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
