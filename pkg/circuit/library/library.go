// Package library holds the card presets users assemble stacks from.
//
// The built-in presets ship as an embedded TOML document. User libraries use
// the same format and can be merged in with [Library.Load]:
//
//	[[cards]]
//	id = "and-gate"
//	type = "logic"
//	height = 0.2
//
//	  [[cards.nodes]]
//	  id = "in1"
//	  x = 0.2
//	  y = 0.3
//	  type = "input"
package library

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cardstack/pkg/circuit"
	"github.com/matzehuels/cardstack/pkg/errors"
)

//go:embed presets.toml
var presetsTOML []byte

// document is the on-disk shape of a card library.
type document struct {
	Cards []circuit.Card `toml:"cards"`
}

// Library is an ordered, concurrency-safe set of cards keyed by id.
type Library struct {
	mu    sync.RWMutex
	cards []circuit.Card
	index map[string]int
}

// New returns an empty library.
func New() *Library {
	return &Library{index: make(map[string]int)}
}

// Default returns a library holding the built-in presets.
func Default() *Library {
	lib := New()
	if err := lib.Load(bytes.NewReader(presetsTOML)); err != nil {
		panic(fmt.Sprintf("library: embedded presets: %v", err))
	}
	return lib
}

// Load decodes a TOML card library from r and adds every card in it.
// Cards are checked before any is added; a single bad card rejects the file.
func (l *Library) Load(r io.Reader) error {
	var doc document
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode card library")
	}
	seen := make(map[string]bool, len(doc.Cards))
	for i, c := range doc.Cards {
		if err := errors.ValidateIdentifier(c.ID); err != nil {
			return fmt.Errorf("card %d: %w", i, err)
		}
		if seen[c.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate card id %q", c.ID)
		}
		seen[c.ID] = true
		if err := c.Check(); err != nil {
			return err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range doc.Cards {
		l.put(c.Clone())
	}
	return nil
}

// Encode writes cards in the library file format.
func Encode(w io.Writer, cards []circuit.Card) error {
	return toml.NewEncoder(w).Encode(document{Cards: cards})
}

// Add stores a copy of c. It fails when the id is already taken.
func (l *Library) Add(c circuit.Card) error {
	if err := errors.ValidateIdentifier(c.ID); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.index[c.ID]; ok {
		return errors.New(errors.ErrCodeInvalidInput, "card %q already in library", c.ID)
	}
	l.put(c.Clone())
	return nil
}

// put inserts or replaces c. Callers hold mu.
func (l *Library) put(c circuit.Card) {
	if i, ok := l.index[c.ID]; ok {
		l.cards[i] = c
		return
	}
	l.index[c.ID] = len(l.cards)
	l.cards = append(l.cards, c)
}

// Get returns a copy of the card with the given id.
func (l *Library) Get(id string) (circuit.Card, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.index[id]
	if !ok {
		return circuit.Card{}, errors.New(errors.ErrCodeCardNotFound, "no card %q in library", id)
	}
	return l.cards[i].Clone(), nil
}

// All returns copies of every card in insertion order.
func (l *Library) All() []circuit.Card {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]circuit.Card, len(l.cards))
	for i, c := range l.cards {
		out[i] = c.Clone()
	}
	return out
}

// Len returns the number of cards in the library.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cards)
}
