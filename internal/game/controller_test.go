package game

import (
	"errors"
	"math/rand/v2"
	"sort"
	"testing"
	"time"
)

// manualClock is a Scheduler whose time only moves with Advance.
type manualClock struct {
	now     time.Duration
	pending []scheduled
}

type scheduled struct {
	at time.Duration
	f  func()
}

func (m *manualClock) AfterFunc(d time.Duration, f func()) {
	m.pending = append(m.pending, scheduled{at: m.now + d, f: f})
}

// Advance moves the clock forward, running due callbacks in time order,
// including the ones they schedule.
func (m *manualClock) Advance(d time.Duration) {
	end := m.now + d
	for {
		sort.SliceStable(m.pending, func(i, j int) bool { return m.pending[i].at < m.pending[j].at })
		if len(m.pending) == 0 || m.pending[0].at > end {
			break
		}
		next := m.pending[0]
		m.pending = m.pending[1:]
		m.now = next.at
		next.f()
	}
	m.now = end
}

func newTestController(t *testing.T) (*Controller, *manualClock) {
	t.Helper()
	clock := &manualClock{}
	c, err := NewController(Options{
		Scheduler: clock,
		Rand:      rand.New(rand.NewPCG(1, 2)),
	})
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	return c, clock
}

// fixedDeck puts "donut" at 3 and 11, and the other symbols in distinct pairs elsewhere.
func fixedDeck() Deck {
	others := []string{"candy", "cheers", "hamburger", "ice-cream", "juice", "sausage", "wine"}
	deck := make(Deck, 16)
	deck[3], deck[11] = "donut", "donut"
	next := 0
	for i := range deck {
		if deck[i] != "" {
			continue
		}
		deck[i] = others[next%len(others)]
		next++
	}
	return deck
}

func TestZeroDelaysAreKept(t *testing.T) {
	clock := &manualClock{}
	c, err := NewController(Options{Scheduler: clock, Delays: &Delays{}})
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	if c.Delays() != (Delays{}) {
		t.Fatalf("Expected all-zero delays, got %+v", c.Delays())
	}

	c.dealFrom(fixedDeck())
	c.Click(3)
	c.Click(11)
	clock.Advance(0)
	if c.Slot(3).State != Matched || c.Score() != 1 {
		t.Errorf("With a zero match delay the pair should be matched right away, got %s and score %d", c.Slot(3).State, c.Score())
	}
}

func TestNewControllerConfiguration(t *testing.T) {
	clock := &manualClock{}
	if _, err := NewController(Options{Scheduler: clock, NumSlots: 15}); !errors.Is(err, ErrSlotCount) {
		t.Errorf("Expected ErrSlotCount, got %v", err)
	}
	if _, err := NewController(Options{Scheduler: clock, Symbols: []string{"a", "a"}}); !errors.Is(err, ErrNoSymbols) {
		t.Errorf("Expected ErrNoSymbols, got %v", err)
	}
	if _, err := NewController(Options{Scheduler: clock, Symbols: []string{}}); !errors.Is(err, ErrNoSymbols) {
		t.Errorf("Expected ErrNoSymbols for empty set, got %v", err)
	}
	if _, err := NewController(Options{}); !errors.Is(err, ErrNoScheduler) {
		t.Errorf("Expected ErrNoScheduler, got %v", err)
	}

	c, err := NewController(Options{Scheduler: clock})
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	if len(c.Slots()) != 16 || c.Pairs() != 8 {
		t.Errorf("Expected 16 slots and 8 pairs, got %d slots and %d pairs", len(c.Slots()), c.Pairs())
	}
	if c.Deal() != 1 {
		t.Errorf("Expected deal 1, got %d", c.Deal())
	}
	if c.Delays() != DefaultDelays() {
		t.Errorf("Expected default delays, got %+v", c.Delays())
	}
	for _, s := range c.Slots() {
		if s.State != Hidden || s.Symbol == "" {
			t.Errorf("Slot %d not dealt face down: %+v", s.Index, s)
		}
	}
}

func TestSimpleMatch(t *testing.T) {
	c, clock := newTestController(t)
	c.dealFrom(fixedDeck())

	if !c.Click(3) {
		t.Fatalf("Click on slot 3 should change the board")
	}
	if s := c.Slot(3); s.State != Revealed || !s.HasTag(TagFlip) {
		t.Errorf("Slot 3 should be revealed with the flip tag, got %+v", s)
	}
	if sel := c.Selection(); sel.First != 3 || sel.Second != NoSlot {
		t.Errorf("Expected selection (3, -), got %+v", sel)
	}

	c.Click(11)
	if s := c.Slot(11); s.State != Revealed {
		t.Errorf("Slot 11 should be revealed before the match delay, got %s", s.State)
	}
	if c.Score() != 0 {
		t.Errorf("Score should only increase after the match delay, got %d", c.Score())
	}

	clock.Advance(DefaultDelays().Match)
	for _, i := range []int{3, 11} {
		s := c.Slot(i)
		if s.State != Matched || !s.HasTag(TagSuccess) {
			t.Errorf("Slot %d should be matched with the success tag, got %+v", i, s)
		}
	}
	if c.Score() != 1 {
		t.Errorf("Expected score 1, got %d", c.Score())
	}
	if c.Selection().Len() != 0 {
		t.Errorf("Expected empty selection, got %+v", c.Selection())
	}
}

func TestMismatchThenNewPick(t *testing.T) {
	c, _ := newTestController(t)
	c.dealFrom(fixedDeck())
	if c.Slot(0).Symbol == c.Slot(1).Symbol {
		t.Fatalf("Test deck should hold different symbols at 0 and 1")
	}

	c.Click(0)
	c.Click(1)
	if c.Slot(0).State != Revealed || c.Slot(1).State != Revealed {
		t.Fatalf("Both slots should stay revealed after a mismatch")
	}
	if sel := c.Selection(); sel.First != 0 || sel.Second != 1 {
		t.Fatalf("Expected selection (0, 1), got %+v", sel)
	}

	c.Click(5)
	for _, i := range []int{0, 1} {
		if s := c.Slot(i); s.State != Hidden || s.HasTag(TagFlip) {
			t.Errorf("Slot %d should be flipped back, got %+v", i, s)
		}
	}
	if c.Slot(5).State != Revealed {
		t.Errorf("Slot 5 should be revealed")
	}
	if sel := c.Selection(); sel.First != 5 || sel.Second != NoSlot {
		t.Errorf("Expected selection (5, -), got %+v", sel)
	}
}

func TestMismatchThenClickOnPendingSlot(t *testing.T) {
	c, _ := newTestController(t)
	c.dealFrom(fixedDeck())
	c.Click(0)
	c.Click(1)
	if c.Click(1) || c.Click(0) {
		t.Errorf("Clicking a pending slot should be a no-op")
	}
	if c.Slot(0).State != Revealed || c.Slot(1).State != Revealed {
		t.Errorf("Pending slots should stay revealed")
	}
}

func TestIdempotentReClick(t *testing.T) {
	c, _ := newTestController(t)
	c.Click(7)
	before := c.String()
	if c.Click(7) {
		t.Errorf("Second click on the same slot should report no change")
	}
	if after := c.String(); after != before {
		t.Errorf("Re-click changed the board:\nbefore: %s\nafter:  %s", before, after)
	}
}

func TestClickOutsideBoard(t *testing.T) {
	c, _ := newTestController(t)
	for _, slot := range []int{-1, NoSlot, 16, 100} {
		if c.Click(slot) {
			t.Errorf("Click on %d should be ignored", slot)
		}
	}
	if c.Selection().Len() != 0 {
		t.Errorf("Selection should be empty, got %+v", c.Selection())
	}
}

func TestClickOnMatchedSlot(t *testing.T) {
	c, clock := newTestController(t)
	c.dealFrom(fixedDeck())
	c.Click(3)
	c.Click(11)
	clock.Advance(time.Second)

	c.Click(0)
	sel, score := c.Selection(), c.Score()
	if c.Click(3) || c.Click(11) {
		t.Errorf("Clicks on matched slots should be ignored")
	}
	if c.Selection() != sel || c.Score() != score {
		t.Errorf("Clicks on matched slots changed selection or score")
	}
}

func TestClickDuringMatchDelay(t *testing.T) {
	c, clock := newTestController(t)
	c.dealFrom(fixedDeck())
	c.Click(3)
	c.Click(11)

	if c.Click(3) {
		t.Errorf("Click on a pair waiting for confirmation should be ignored")
	}
	// A new pick must not flip the matched pair back.
	if !c.Click(0) {
		t.Errorf("Click on a fresh slot should be accepted")
	}
	if c.Slot(3).State != Revealed || c.Slot(11).State != Revealed {
		t.Errorf("Matched pair was flipped back during the match delay")
	}
	if sel := c.Selection(); sel.First != 0 || sel.Second != NoSlot {
		t.Errorf("Expected selection (0, -), got %+v", sel)
	}

	clock.Advance(DefaultDelays().Match)
	if c.Slot(3).State != Matched || c.Slot(11).State != Matched {
		t.Errorf("Pair should be matched after the delay")
	}
	if c.Slot(0).State != Revealed {
		t.Errorf("Slot 0 should still be revealed")
	}
}

// solve clicks every pair of the board, letting each match settle.
func solve(t *testing.T, c *Controller, clock *manualClock) {
	t.Helper()
	positions := make(map[string][]int)
	for _, s := range c.Slots() {
		positions[s.Symbol] = append(positions[s.Symbol], s.Index)
	}
	for _, symbol := range c.symbols {
		p := positions[symbol]
		c.Click(p[0])
		c.Click(p[1])
		clock.Advance(c.Delays().Match)
	}
}

func TestFullCompletion(t *testing.T) {
	c, clock := newTestController(t)
	delays := c.Delays()
	firstDeal := c.Deal()

	solve(t, c, clock)
	if !c.Completing() {
		t.Fatalf("Controller should be completing")
	}
	if c.Score() != 0 {
		t.Errorf("Score should start over when the last pair is found, got %d", c.Score())
	}
	for _, s := range c.Slots() {
		if s.State != Matched {
			t.Errorf("Slot %d should stay matched during completion, got %s", s.Index, s.State)
		}
	}
	if c.Click(0) {
		t.Errorf("Clicks during completion should be ignored")
	}

	clock.Advance(delays.Completion - time.Millisecond)
	if len(c.BoardTags()) != 0 {
		t.Errorf("Completion treatment applied too early")
	}
	clock.Advance(time.Millisecond)
	if tags := c.BoardTags(); len(tags) != 1 || tags[0] != TagCompletion {
		t.Errorf("Expected completion tag, got %v", tags)
	}
	clock.Advance(delays.Reset - time.Millisecond)
	if c.Score() != 0 || c.Deal() != firstDeal {
		t.Errorf("Just before the reset: expected score 0 on deal %d, got %d on deal %d", firstDeal, c.Score(), c.Deal())
	}

	clock.Advance(time.Millisecond)
	if c.Score() != 0 {
		t.Errorf("Expected score 0 after reset, got %d", c.Score())
	}
	if c.Deal() != firstDeal+1 {
		t.Errorf("Expected a new deal, got %d", c.Deal())
	}
	if c.Completing() || len(c.BoardTags()) != 0 {
		t.Errorf("Completion state should be cleared after reset")
	}
	deck := make(Deck, 0, 16)
	for _, s := range c.Slots() {
		if s.State != Hidden || len(s.Tags) != 0 {
			t.Errorf("Slot %d not reset: %+v", s.Index, s)
		}
		deck = append(deck, s.Symbol)
	}
	for _, symbol := range DefaultSymbols {
		if n := deck.Count(symbol); n != 2 {
			t.Errorf("Symbol %s dealt %d times after reset", symbol, n)
		}
	}
}

func TestResetDropsPendingCallbacks(t *testing.T) {
	c, clock := newTestController(t)
	c.dealFrom(fixedDeck())
	c.Click(3)
	c.Click(11)
	c.Reset()

	clock.Advance(time.Minute)
	if c.Score() != 0 {
		t.Errorf("Stale match callback changed the score to %d", c.Score())
	}
	for _, s := range c.Slots() {
		if s.State != Hidden {
			t.Errorf("Slot %d should be hidden after reset, got %s", s.Index, s.State)
		}
	}
}

func TestRandomClickInvariants(t *testing.T) {
	c, clock := newTestController(t)
	rng := rand.New(rand.NewPCG(42, 7))
	lastDeal, lastScore := c.Deal(), 0

	for range 5000 {
		c.Click(rng.IntN(18) - 1)
		if rng.IntN(3) == 0 {
			clock.Advance(time.Duration(rng.IntN(2000)) * time.Millisecond)
		}

		sel := c.Selection()
		if sel.First != NoSlot && sel.First == sel.Second {
			t.Fatalf("Selection holds the same slot twice: %+v", sel)
		}
		revealed := 0
		for _, s := range c.Slots() {
			if s.State == Revealed && !c.confirming[s.Index] {
				revealed++
				if !sel.Contains(s.Index) {
					t.Fatalf("Slot %d revealed but not selected: %s", s.Index, c)
				}
			}
		}
		if revealed > 2 {
			t.Fatalf("%d unconfirmed slots revealed: %s", revealed, c)
		}

		score := c.Score()
		if score < 0 || score > c.Pairs() {
			t.Fatalf("Score out of range: %d", score)
		}
		if c.Deal() == lastDeal && score < lastScore && !(score == 0 && c.Completing()) {
			t.Fatalf("Score decreased within deal %d: %d -> %d", lastDeal, lastScore, score)
		}
		if c.Deal() != lastDeal && score != 0 {
			t.Fatalf("Score should restart at 0 on a new deal, got %d", score)
		}
		lastDeal, lastScore = c.Deal(), score
	}
}
