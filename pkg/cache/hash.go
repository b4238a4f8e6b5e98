package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/cardstack/pkg/circuit"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Keyer derives cache keys from card stacks.
type Keyer interface {
	// AlgorithmKey names the finalize document of cards.
	AlgorithmKey(cards []circuit.Card) string

	// SceneKey names a rendered scene of cards.
	SceneKey(cards []circuit.Card, opts SceneKeyOpts) string
}

// SceneKeyOpts are the render options that change a scene artifact.
type SceneKeyOpts struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Links  bool   `json:"links"`
}

// DefaultKeyer hashes the JSON encoding of its inputs. Algorithm keys ignore
// card ids, so the same presets placed twice share one document.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) AlgorithmKey(cards []circuit.Card) string {
	return hashKey("algorithm", stripIDs(cards))
}

func (DefaultKeyer) SceneKey(cards []circuit.Card, opts SceneKeyOpts) string {
	return hashKey("scene", cards, opts)
}

// stripIDs blanks card ids.
func stripIDs(cards []circuit.Card) []circuit.Card {
	out := make([]circuit.Card, len(cards))
	for i, c := range cards {
		c.ID = ""
		out[i] = c
	}
	return out
}
