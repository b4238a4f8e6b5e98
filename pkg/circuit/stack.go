package circuit

import (
	"github.com/google/uuid"

	"github.com/matzehuels/cardstack/pkg/errors"
)

// newPlacementSuffix mints the unique part of a placement id. Tests replace it.
var newPlacementSuffix = uuid.NewString

// PlacementID derives the id a library card receives when placed in a stack.
func PlacementID(libraryID string) string {
	return libraryID + "-" + newPlacementSuffix()
}

// Stack is an ordered bottom-to-top sequence of placed cards. Signals are
// reserved for simulation and passed through untouched.
type Stack struct {
	Cards   []Card   `json:"cards"`
	Signals []Signal `json:"signals"`
}

// Len returns the number of cards in the stack.
func (s *Stack) Len() int { return len(s.Cards) }

// Push places a deep copy of c on top of the stack under a fresh placement id
// and returns the placed copy.
func (s *Stack) Push(c Card) Card {
	placed := c.Clone()
	placed.ID = PlacementID(c.ID)
	s.Cards = append(s.Cards, placed)
	return placed
}

// Remove deletes the card at index i (0 is the bottom) and returns it.
// The stack is unchanged when i is out of range.
func (s *Stack) Remove(i int) (Card, error) {
	if i < 0 || i >= len(s.Cards) {
		return Card{}, errors.New(errors.ErrCodeInvalidInput, "stack index %d out of range [0,%d)", i, len(s.Cards))
	}
	removed := s.Cards[i]
	s.Cards = append(s.Cards[:i:i], s.Cards[i+1:]...)
	return removed, nil
}

// Clear removes every card from the stack.
func (s *Stack) Clear() {
	s.Cards = nil
}

// Snapshot returns deep copies of the stacked cards. Callers may hold the
// result across later mutations.
func (s *Stack) Snapshot() []Card {
	out := make([]Card, len(s.Cards))
	for i, c := range s.Cards {
		out[i] = c.Clone()
	}
	return out
}
