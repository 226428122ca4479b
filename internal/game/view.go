package game

import "slices"

// SlotView is the client-facing view of a slot.
// Symbol and Asset are omitted while the card is face down.
type SlotView struct {
	Index  int         `json:"index"`
	State  VisualState `json:"state"`
	Tags   []Tag       `json:"tags,omitempty"`
	Symbol string      `json:"symbol,omitempty"`
	Asset  string      `json:"asset,omitempty"`
}

// BoardView is a snapshot of a board, ready to render or to send over the wire.
type BoardView struct {
	Deal       int        `json:"deal"`
	Score      int        `json:"score"`
	Pairs      int        `json:"pairs"`
	Completing bool       `json:"completing"`
	Tags       []Tag      `json:"tags,omitempty"`
	Slots      []SlotView `json:"slots"`
}

// View builds a BoardView of the current state.
func (c *Controller) View() BoardView {
	v := BoardView{
		Deal:       c.deal,
		Score:      c.score,
		Pairs:      len(c.symbols),
		Completing: c.completing,
		Tags:       slices.Clone(c.boardTags),
		Slots:      make([]SlotView, len(c.slots)),
	}
	for i, s := range c.slots {
		sv := SlotView{Index: s.Index, State: s.State, Tags: slices.Clone(s.Tags)}
		if s.State != Hidden {
			sv.Symbol = s.Symbol
			sv.Asset = SymbolAsset(s.Symbol)
		}
		v.Slots[i] = sv
	}
	return v
}

// HasTag reports whether the board carries tag.
func (v *BoardView) HasTag(tag Tag) bool {
	return slices.Contains(v.Tags, tag)
}

// HasTag reports whether the slot carries tag.
func (v *SlotView) HasTag(tag Tag) bool {
	return slices.Contains(v.Tags, tag)
}
