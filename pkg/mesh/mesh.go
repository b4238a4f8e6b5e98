// Package mesh resolves mesh interaction references across a stack.
//
// Mesh points name points on other cards through their up and down lists.
// Those names are only meaningful once cards are stacked, so resolution is a
// separate pass over the final card order: an up reference matches every
// point with that id on a card strictly above, a down reference every point
// with that id on a card strictly below. Nothing here mutates cards.
package mesh

import "github.com/matzehuels/cardstack/pkg/circuit"

// Direction is the side of the stack a reference points to.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// PointRef locates a mesh point in a stack.
type PointRef struct {
	CardIndex int     `json:"card_index"`
	CardID    string  `json:"card_id"`
	PointID   string  `json:"point_id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// Link is one resolved mesh reference.
type Link struct {
	From      PointRef  `json:"from"`
	To        PointRef  `json:"to"`
	Direction Direction `json:"direction"`
}

// Unresolved is a reference that matched no point on the required side.
type Unresolved struct {
	From      PointRef  `json:"from"`
	Ref       string    `json:"ref"`
	Direction Direction `json:"direction"`
}

// Result holds the outcome of [Resolve].
type Result struct {
	Links      []Link       `json:"links"`
	Unresolved []Unresolved `json:"unresolved"`
}

// Resolve matches every up and down reference in cards, ordered bottom to
// top. Links come out grouped by source point in stack order; for one
// reference, targets are listed bottom to top.
func Resolve(cards []circuit.Card) Result {
	byID := make(map[string][]PointRef)
	var points []PointRef
	var owners []circuit.MeshPoint
	for i, c := range cards {
		for _, p := range c.MeshPoints {
			ref := PointRef{CardIndex: i, CardID: c.ID, PointID: p.ID, X: p.X, Y: p.Y}
			byID[p.ID] = append(byID[p.ID], ref)
			points = append(points, ref)
			owners = append(owners, p)
		}
	}

	var res Result
	match := func(from PointRef, ref string, dir Direction) {
		found := false
		for _, to := range byID[ref] {
			if (dir == Up && to.CardIndex > from.CardIndex) || (dir == Down && to.CardIndex < from.CardIndex) {
				res.Links = append(res.Links, Link{From: from, To: to, Direction: dir})
				found = true
			}
		}
		if !found {
			res.Unresolved = append(res.Unresolved, Unresolved{From: from, Ref: ref, Direction: dir})
		}
	}
	for i, from := range points {
		for _, ref := range owners[i].Up {
			match(from, ref, Up)
		}
		for _, ref := range owners[i].Down {
			match(from, ref, Down)
		}
	}
	return res
}
