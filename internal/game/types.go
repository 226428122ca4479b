package game

import (
	"fmt"
	"slices"
	"strings"
)

// VisualState of a card slot.
type VisualState int

const (
	Hidden VisualState = iota
	Revealed
	Matched
)

var visualStateNames = []string{"hidden", "revealed", "matched"}

func (s VisualState) String() string {
	if s < 0 || int(s) >= len(visualStateNames) {
		return fmt.Sprintf("VisualState(%d)", int(s))
	}
	return visualStateNames[s]
}

// MarshalText implements encoding.TextMarshaler, so states travel as "hidden", "revealed" or "matched".
func (s VisualState) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(visualStateNames) {
		return nil, fmt.Errorf("invalid visual state %d", int(s))
	}
	return []byte(visualStateNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *VisualState) UnmarshalText(text []byte) error {
	idx := slices.Index(visualStateNames, string(text))
	if idx < 0 {
		return fmt.Errorf("unknown visual state %q", text)
	}
	*s = VisualState(idx)
	return nil
}

// Tag is a named visual treatment applied to a slot or to the whole board.
type Tag string

const (
	TagFlip       Tag = "flip"       // Slot is face up.
	TagSuccess    Tag = "success"    // Slot is part of a found pair.
	TagCompletion Tag = "completion" // Board, all pairs found.
)

// Slot is one fixed position in the card grid.
type Slot struct {
	Index  int
	Symbol string
	State  VisualState
	Tags   []Tag
}

// HasTag reports whether the slot carries tag.
func (s *Slot) HasTag(tag Tag) bool {
	return slices.Contains(s.Tags, tag)
}

func (s *Slot) addTag(tag Tag) {
	if !s.HasTag(tag) {
		s.Tags = append(s.Tags, tag)
	}
}

func (s *Slot) removeTag(tag Tag) {
	s.Tags = slices.DeleteFunc(s.Tags, func(t Tag) bool { return t == tag })
}

// Selection holds the slots currently picked and awaiting resolution.
// NoSlot marks an empty position.
type Selection struct {
	First, Second int
}

// NoSlot is the index used for an empty Selection position.
const NoSlot = -1

// Len returns how many slots are selected: 0, 1 or 2.
func (sel Selection) Len() int {
	n := 0
	if sel.First != NoSlot {
		n++
	}
	if sel.Second != NoSlot {
		n++
	}
	return n
}

// Contains reports whether slot is one of the selected slots.
func (sel Selection) Contains(slot int) bool {
	return slot != NoSlot && (sel.First == slot || sel.Second == slot)
}

func (c *Controller) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Board deal=%d, score=%d/%d, selection=(%d,%d), completing=%t, slots: ", c.deal, c.score, len(c.symbols), c.selection.First, c.selection.Second, c.completing)
	for _, s := range c.slots {
		fmt.Fprintf(&sb, "%d:%s(%s), ", s.Index, s.Symbol, s.State)
	}
	return sb.String()
}
