package scene

import (
	"fmt"
	"slices"
	"sync"

	"github.com/matzehuels/cardstack/pkg/geometry"
)

// Handle identifies a primitive group uploaded to a [Backend].
type Handle uint64

// Backend owns the retained resources of uploaded groups. Every handle
// returned by Upload must eventually be passed to Release exactly once.
type Backend interface {
	Upload(g geometry.Group) (Handle, error)
	Release(h Handle) error
}

// MemoryBackend keeps uploaded groups in memory. Display surfaces that draw
// from retained state (the terminal viewer, image sinks) read from it, and
// tests use its counters to detect leaks.
type MemoryBackend struct {
	mu       sync.Mutex
	next     Handle
	live     map[Handle]geometry.Group
	uploads  int
	releases int
}

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{live: make(map[Handle]geometry.Group)}
}

func (b *MemoryBackend) Upload(g geometry.Group) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.live[b.next] = g
	b.uploads++
	return b.next, nil
}

func (b *MemoryBackend) Release(h Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.live[h]; !ok {
		return fmt.Errorf("release handle %d: not live", h)
	}
	delete(b.live, h)
	b.releases++
	return nil
}

// Live returns the number of handles uploaded and not yet released.
func (b *MemoryBackend) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live)
}

// Counts returns the total number of uploads and releases.
func (b *MemoryBackend) Counts() (uploads, releases int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uploads, b.releases
}

// Groups returns the live groups in upload order.
func (b *MemoryBackend) Groups() []geometry.Group {
	b.mu.Lock()
	defer b.mu.Unlock()
	hs := make([]Handle, 0, len(b.live))
	for h := range b.live {
		hs = append(hs, h)
	}
	slices.Sort(hs)
	out := make([]geometry.Group, len(hs))
	for i, h := range hs {
		out[i] = b.live[h]
	}
	return out
}
