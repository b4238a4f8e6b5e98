// Package layout computes where each card sits in a stack.
//
// Card i starts at offset(i) = offset(i-1) + height(i-1) + Gap with
// offset(0) = 0. The layout is a pure function of the card sequence and is
// recomputed in full on every stack change.
package layout

import "github.com/matzehuels/cardstack/pkg/circuit"

// Gap is the vertical space between adjacent cards.
const Gap = 0.05

// Slot is the vertical span one card occupies.
type Slot struct {
	Index  int     `json:"index"`
	CardID string  `json:"card_id"`
	Bottom float64 `json:"bottom"`
	Top    float64 `json:"top"`
}

// Height returns the card thickness.
func (s Slot) Height() float64 { return s.Top - s.Bottom }

// Mid returns the height of the card's mid-plane.
func (s Slot) Mid() float64 { return (s.Bottom + s.Top) / 2 }

// Layout is a computed stack arrangement, bottom to top.
type Layout struct {
	Slots  []Slot  `json:"slots"`
	Extent float64 `json:"extent"`
}

// Offsets returns the bottom offset of each height in order.
func Offsets(heights []float64) []float64 {
	out := make([]float64, len(heights))
	for i := 1; i < len(heights); i++ {
		out[i] = out[i-1] + heights[i-1] + Gap
	}
	return out
}

// Extent returns the total stack height: the last offset plus the last
// height, or 0 for an empty stack.
func Extent(heights []float64) float64 {
	if len(heights) == 0 {
		return 0
	}
	offs := Offsets(heights)
	return offs[len(offs)-1] + heights[len(heights)-1]
}

// Build lays out cards bottom to top.
func Build(cards []circuit.Card) Layout {
	heights := make([]float64, len(cards))
	for i, c := range cards {
		heights[i] = c.Height
	}
	offs := Offsets(heights)

	l := Layout{Slots: make([]Slot, len(cards))}
	for i, c := range cards {
		l.Slots[i] = Slot{
			Index:  i,
			CardID: c.ID,
			Bottom: offs[i],
			Top:    offs[i] + c.Height,
		}
	}
	if n := len(l.Slots); n > 0 {
		l.Extent = l.Slots[n-1].Top
	}
	return l
}
