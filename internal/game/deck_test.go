package game

import (
	"fmt"
	"math/rand/v2"
	"testing"
)

func TestDeckPairing(t *testing.T) {
	symbolSets := [][]string{DefaultSymbols, {"a"}, {"a", "b", "c"}}

	for _, symbols := range symbolSets {
		t.Run(fmt.Sprintf("%d", len(symbols)), func(t *testing.T) {
			for seed := range uint64(50) {
				deck := NewDeck(symbols, rand.New(rand.NewPCG(seed, seed)))
				if len(deck) != 2*len(symbols) {
					t.Fatalf("Seed %d: expected %d cards, got %d", seed, 2*len(symbols), len(deck))
				}
				for _, s := range symbols {
					if n := deck.Count(s); n != 2 {
						t.Errorf("Seed %d: symbol %s appears %d times in %v", seed, s, n, deck)
					}
				}
			}
		})
	}
}

func TestDeckIsShuffled(t *testing.T) {
	seen := make(map[string]bool)
	for range 20 {
		deck := NewDeck(DefaultSymbols, nil)
		seen[fmt.Sprint(deck)] = true
	}
	if len(seen) < 2 {
		t.Errorf("20 deals produced the same order")
	}
}

func TestDeckDoesNotAliasSymbols(t *testing.T) {
	symbols := []string{"x", "y"}
	deck := NewDeck(symbols, nil)
	deck[0] = "z"
	if symbols[0] != "x" || symbols[1] != "y" {
		t.Errorf("NewDeck modified its input: %v", symbols)
	}
}
