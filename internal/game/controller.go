package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"k8s.io/klog/v2"
)

var (
	ErrNoSymbols   = errors.New("symbol set must be non-empty and without duplicates")
	ErrSlotCount   = errors.New("slot count must be twice the number of symbols")
	ErrNoScheduler = errors.New("a scheduler is required")
)

// Options configures a Controller. Zero values take the defaults.
type Options struct {
	Symbols   []string   // Defaults to DefaultSymbols.
	NumSlots  int        // Defaults to 2*len(Symbols).
	Delays    *Delays    // Defaults to DefaultDelays(). Zero durations are kept as given.
	Scheduler Scheduler  // Required.
	Rand      *rand.Rand // Defaults to a freshly seeded generator.
}

// Controller runs the matching game for one board: it tracks the selected
// cards, detects matches, keeps the score and re-deals the board once every
// pair is found.
//
// A Controller is not safe for concurrent use. Clicks and scheduled callbacks
// must be serialized by the owner, see TimerScheduler.
type Controller struct {
	symbols []string
	slots   []Slot
	delays  Delays
	sched   Scheduler
	rng     *rand.Rand

	selection Selection
	// confirming holds matched pairs waiting for Delays.Match to elapse.
	confirming map[int]bool
	score      int
	deal       int
	completing bool
	boardTags  []Tag
}

// NewController creates a controller and deals the first board.
func NewController(opts Options) (*Controller, error) {
	symbols := opts.Symbols
	if symbols == nil {
		symbols = DefaultSymbols
	}
	if len(symbols) == 0 || len(slices.Compact(slices.Sorted(slices.Values(symbols)))) != len(symbols) {
		return nil, fmt.Errorf("invalid symbols %v: %w", symbols, ErrNoSymbols)
	}
	numSlots := opts.NumSlots
	if numSlots == 0 {
		numSlots = 2 * len(symbols)
	}
	if numSlots != 2*len(symbols) {
		return nil, fmt.Errorf("%d slots for %d symbols: %w", numSlots, len(symbols), ErrSlotCount)
	}
	if opts.Scheduler == nil {
		return nil, ErrNoScheduler
	}
	delays := DefaultDelays()
	if opts.Delays != nil {
		delays = *opts.Delays
	}
	rng := opts.Rand
	if rng == nil {
		rng = newRand()
	}

	c := &Controller{
		symbols:    slices.Clone(symbols),
		slots:      make([]Slot, numSlots),
		delays:     delays,
		sched:      opts.Scheduler,
		rng:        rng,
		selection:  Selection{First: NoSlot, Second: NoSlot},
		confirming: make(map[int]bool),
	}
	for i := range c.slots {
		c.slots[i].Index = i
	}
	c.dealFrom(NewDeck(c.symbols, c.rng))
	return c, nil
}

// dealFrom assigns deck to the slots and clears all selection, match and score state.
func (c *Controller) dealFrom(deck Deck) {
	for i := range c.slots {
		c.slots[i] = Slot{Index: i, Symbol: deck[i], State: Hidden}
	}
	c.selection = Selection{First: NoSlot, Second: NoSlot}
	clear(c.confirming)
	c.score = 0
	c.completing = false
	c.boardTags = nil
	c.deal++
	klog.V(1).Infof("Controller: dealt board #%d", c.deal)
}

// Reset re-deals the board. Callbacks scheduled for the previous deal become no-ops.
func (c *Controller) Reset() {
	c.dealFrom(NewDeck(c.symbols, c.rng))
}

// Click handles a click on the given slot and reports whether the board changed.
//
// Clicks outside the board, on a selected slot, on a matched slot, on a pair
// waiting for its match confirmation, or during the completion sequence are
// ignored.
func (c *Controller) Click(slot int) bool {
	if slot < 0 || slot >= len(c.slots) || c.completing ||
		c.selection.Contains(slot) || c.slots[slot].State == Matched || c.confirming[slot] {
		klog.V(2).Infof("Controller: ignoring click on slot %d", slot)
		return false
	}

	// Two cards left face up by a mismatch: flip them back first.
	if c.selection.Len() == 2 {
		c.hide(c.selection.First)
		c.hide(c.selection.Second)
		c.selection = Selection{First: NoSlot, Second: NoSlot}
	}

	if c.selection.First == NoSlot {
		c.selection.First = slot
	} else {
		c.selection.Second = slot
	}
	c.slots[slot].State = Revealed
	c.slots[slot].addTag(TagFlip)

	if c.selection.Len() < 2 {
		return true
	}
	first, second := c.selection.First, c.selection.Second
	if c.slots[first].Symbol != c.slots[second].Symbol {
		klog.V(2).Infof("Controller: slots %d and %d don't match", first, second)
		return true
	}

	klog.V(2).Infof("Controller: slots %d and %d match (%s)", first, second, c.slots[first].Symbol)
	c.confirming[first] = true
	c.confirming[second] = true
	c.selection = Selection{First: NoSlot, Second: NoSlot}
	deal := c.deal
	c.sched.AfterFunc(c.delays.Match, func() { c.confirmMatch(deal, first, second) })
	return true
}

func (c *Controller) hide(slot int) {
	c.slots[slot].State = Hidden
	c.slots[slot].removeTag(TagFlip)
}

func (c *Controller) confirmMatch(deal, first, second int) {
	if deal != c.deal {
		return
	}
	for _, slot := range []int{first, second} {
		delete(c.confirming, slot)
		c.slots[slot].State = Matched
		c.slots[slot].addTag(TagSuccess)
	}
	c.score++
	klog.V(1).Infof("Controller: score %d/%d", c.score, len(c.symbols))
	if c.score < len(c.symbols) {
		return
	}

	// All pairs found: the score starts over, and the board is re-dealt
	// once the completion sequence ends.
	c.score = 0
	c.completing = true
	c.sched.AfterFunc(c.delays.Completion, func() {
		if deal != c.deal {
			return
		}
		c.boardTags = append(c.boardTags, TagCompletion)
		c.sched.AfterFunc(c.delays.Reset, func() {
			if deal != c.deal {
				return
			}
			klog.Infof("Controller: all %d pairs found, dealing a new board", len(c.symbols))
			c.Reset()
		})
	})
}

// Slots returns a copy of the board's slots.
func (c *Controller) Slots() []Slot {
	slots := make([]Slot, len(c.slots))
	for i, s := range c.slots {
		s.Tags = slices.Clone(s.Tags)
		slots[i] = s
	}
	return slots
}

// Slot returns a copy of slot i.
func (c *Controller) Slot(i int) Slot {
	s := c.slots[i]
	s.Tags = slices.Clone(s.Tags)
	return s
}

// Selection returns the slots currently picked.
func (c *Controller) Selection() Selection { return c.selection }

// Score returns the number of pairs found in the current deal.
func (c *Controller) Score() int { return c.score }

// Pairs returns the number of pairs on the board.
func (c *Controller) Pairs() int { return len(c.symbols) }

// Deal returns the number of the current deal, starting at 1.
func (c *Controller) Deal() int { return c.deal }

// Completing reports whether all pairs were found and the board is about to be re-dealt.
func (c *Controller) Completing() bool { return c.completing }

// BoardTags returns the visual treatments applied to the whole board.
func (c *Controller) BoardTags() []Tag { return slices.Clone(c.boardTags) }

// Delays returns the presentation delays in use.
func (c *Controller) Delays() Delays { return c.delays }
