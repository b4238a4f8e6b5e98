package circuit

import (
	"fmt"
	"strings"
	"testing"
)

func withSequentialPlacements(t *testing.T) {
	t.Helper()
	n := 0
	prev := newPlacementSuffix
	newPlacementSuffix = func() string {
		n++
		return fmt.Sprintf("p%d", n)
	}
	t.Cleanup(func() { newPlacementSuffix = prev })
}

func TestPushMintsPlacementIDs(t *testing.T) {
	withSequentialPlacements(t)

	var s Stack
	card := hybridCard()
	a := s.Push(card)
	b := s.Push(card)

	if a.ID != "hybrid-basic-p1" || b.ID != "hybrid-basic-p2" {
		t.Errorf("placement ids = %q, %q", a.ID, b.ID)
	}
	if card.ID != "hybrid-basic" {
		t.Errorf("Push modified the library card id: %q", card.ID)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestPushUsesUUIDByDefault(t *testing.T) {
	var s Stack
	a := s.Push(hybridCard())
	b := s.Push(hybridCard())
	if a.ID == b.ID {
		t.Fatalf("two placements share id %q", a.ID)
	}
	if !strings.HasPrefix(a.ID, "hybrid-basic-") {
		t.Errorf("placement id %q should keep library id prefix", a.ID)
	}
}

func TestPushCopiesCard(t *testing.T) {
	var s Stack
	card := hybridCard()
	s.Push(card)
	card.Nodes[0].X = 0.7
	if s.Cards[0].Nodes[0].X != 0.1 {
		t.Error("stacked card shares node storage with caller")
	}
}

func TestRemove(t *testing.T) {
	withSequentialPlacements(t)

	var s Stack
	for range 3 {
		s.Push(hybridCard())
	}
	snap := s.Snapshot()

	removed, err := s.Remove(1)
	if err != nil {
		t.Fatalf("Remove(1): %v", err)
	}
	if removed.ID != "hybrid-basic-p2" {
		t.Errorf("removed %q, want hybrid-basic-p2", removed.ID)
	}
	if s.Len() != 2 || s.Cards[0].ID != "hybrid-basic-p1" || s.Cards[1].ID != "hybrid-basic-p3" {
		t.Errorf("stack after remove = %v", ids(s.Cards))
	}
	if snap[1].ID != "hybrid-basic-p2" {
		t.Error("Remove mutated an earlier snapshot")
	}

	for _, i := range []int{-1, 2, 10} {
		if _, err := s.Remove(i); err == nil {
			t.Errorf("Remove(%d) should fail", i)
		}
	}
	if s.Len() != 2 {
		t.Errorf("failed removes changed the stack: %v", ids(s.Cards))
	}
}

func TestClear(t *testing.T) {
	var s Stack
	s.Push(hybridCard())
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() after Clear = %d", s.Len())
	}
}

func ids(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}
