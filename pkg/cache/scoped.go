package cache

import "github.com/matzehuels/cardstack/pkg/circuit"

// ScopedKeyer wraps a Keyer with a prefix, so several deployments can share
// one Redis database without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// AlgorithmKey generates a prefixed algorithm key.
func (k *ScopedKeyer) AlgorithmKey(cards []circuit.Card) string {
	return k.prefix + k.inner.AlgorithmKey(cards)
}

// SceneKey generates a prefixed scene key.
func (k *ScopedKeyer) SceneKey(cards []circuit.Card, opts SceneKeyOpts) string {
	return k.prefix + k.inner.SceneKey(cards, opts)
}
