package game

import "time"

// Version of the game.
// Bumping this number will eventually make clients reload the WASM.
//
// If you set this to an empty string, a random version number will be
// used, and force the reload of the WASM on every restart (the reload
// still only happens after the first page is loaded, so there is a delay).
// This is useful during development.
var Version = "v0.1.0"

// DefaultSymbols is the food set dealt on the board, two cards per symbol.
var DefaultSymbols = []string{"candy", "cheers", "donut", "hamburger", "ice-cream", "juice", "sausage", "wine"}

// PlaceholderAsset is the image shown on the back of every card.
const PlaceholderAsset = "/web/assets/images/question-mark.svg"

// SymbolAsset returns the image path for a symbol.
func SymbolAsset(symbol string) string {
	return "/web/assets/images/" + symbol + ".svg"
}

// Delays paces the presentation of the board.
type Delays struct {
	// Flip is how long the frontend waits before swapping a card face.
	// It never delays the game logic.
	Flip time.Duration `json:"flip"`

	// Match is how long a matched pair stays revealed before being confirmed.
	Match time.Duration `json:"match"`

	// Completion is the wait between the last match and the completion treatment.
	Completion time.Duration `json:"completion"`

	// Reset is the wait between the completion treatment and the new deal.
	Reset time.Duration `json:"reset"`
}

// DefaultDelays returns the standard pacing.
func DefaultDelays() Delays {
	return Delays{
		Flip:       200 * time.Millisecond,
		Match:      500 * time.Millisecond,
		Completion: time.Second,
		Reset:      4 * time.Second,
	}
}
