// Package session owns one interactive card stack and everything derived
// from it.
//
// A [Session] is the single owner of the stack, the scene composer, the
// camera, and the finalize busy flag. Every mutation is applied in full (the
// stack changed, the layout recomputed, the scene rebuilt) before the method
// returns, so a frame drawn from [Session.Frame] never sees a half-applied
// change.
//
// # Finalize
//
// Finalize is the only call that waits on the network. While it runs the
// stack is frozen: Add, Remove, Clear and a second Finalize fail with
// [ErrBusy]. The remote call happens once, with no retry. Its failures are
// turned into "Error: ..." text and never leave the session; the stack and
// scene are untouched by a failed finalize.
//
// # Usage
//
//	s := session.New(scene.NewMemoryBackend(), client, session.WithLogger(logger))
//	defer s.Close()
//
//	card, _ := lib.Get("and-gate")
//	s.Add(ctx, card)
//	text, err := s.Finalize(ctx) // err is ErrBusy or ErrEmpty only
//
// An event loop that must not block splits the call: [Session.BeginFinalize]
// freezes the stack on the loop, and [Pending.Complete] runs elsewhere.
package session

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardstack/pkg/circuit"
	"github.com/matzehuels/cardstack/pkg/errors"
	"github.com/matzehuels/cardstack/pkg/finalize"
	"github.com/matzehuels/cardstack/pkg/geometry"
	"github.com/matzehuels/cardstack/pkg/layout"
	"github.com/matzehuels/cardstack/pkg/scene"
)

// Sentinel errors for stack operations.
var (
	// ErrBusy is returned for mutations attempted while a finalize is pending.
	ErrBusy = errors.New(errors.ErrCodeStackBusy, "stack is frozen while finalizing")

	// ErrEmpty is returned when finalizing a stack with no cards.
	ErrEmpty = errors.New(errors.ErrCodeStackEmpty, "stack is empty")
)

// Finalizer converts a card stack into algorithm text.
// *finalize.Client satisfies it.
type Finalizer interface {
	Finalize(ctx context.Context, cards []circuit.Card) (string, error)
}

// Frame is a consistent view of a session for drawing.
type Frame struct {
	Cards  []circuit.Card
	Layout layout.Layout
	Groups []geometry.Group
	Camera scene.Camera
	Busy   bool
	Result string
}

// Session is safe for concurrent use; all state changes are serialized.
type Session struct {
	mu        sync.Mutex
	stack     circuit.Stack
	composer  *scene.Composer
	camera    *scene.Camera
	finalizer Finalizer
	logger    *log.Logger
	busy      bool
	result    string
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. It is shared with the scene composer.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCamera replaces the default camera.
func WithCamera(c *scene.Camera) Option {
	return func(s *Session) {
		if c != nil {
			s.camera = c
		}
	}
}

// New returns an empty session drawing into backend. finalizer may be nil,
// in which case Finalize reports an error text.
func New(backend scene.Backend, finalizer Finalizer, opts ...Option) *Session {
	s := &Session{
		camera:    scene.NewCamera(),
		finalizer: finalizer,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.composer = scene.NewComposer(backend, scene.WithLogger(s.logger))
	return s
}

// Add places a copy of card on top of the stack and returns the placed copy
// with its placement id.
func (s *Session) Add(ctx context.Context, card circuit.Card) (circuit.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return circuit.Card{}, ErrBusy
	}
	placed := s.stack.Push(card)
	s.logger.Debug("added card", "id", placed.ID, "index", s.stack.Len()-1)
	return placed, s.rebuild(ctx)
}

// Remove deletes the card at index i, 0 being the bottom.
func (s *Session) Remove(ctx context.Context, i int) (circuit.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return circuit.Card{}, ErrBusy
	}
	removed, err := s.stack.Remove(i)
	if err != nil {
		return circuit.Card{}, err
	}
	s.logger.Debug("removed card", "id", removed.ID, "index", i)
	return removed, s.rebuild(ctx)
}

// Clear empties the stack and forgets the last finalize result.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.stack.Clear()
	s.result = ""
	return s.rebuild(ctx)
}

// rebuild re-derives the scene from the stack. Callers hold mu.
func (s *Session) rebuild(ctx context.Context) error {
	if err := s.composer.Rebuild(ctx, s.stack.Cards); err != nil {
		s.logger.Warn("scene rebuild incomplete", "err", err)
		return err
	}
	return nil
}

// Finalize sends a snapshot of the stack to the finalizer and returns the
// text to display: the algorithm, or "Error: <message>" when the remote call
// failed. The returned error is ErrBusy or ErrEmpty when the call was not
// made at all.
func (s *Session) Finalize(ctx context.Context) (string, error) {
	p, err := s.BeginFinalize()
	if err != nil {
		return "", err
	}
	return p.Complete(ctx), nil
}

// BeginFinalize freezes the stack and takes the snapshot to send. From this
// call until [Pending.Complete] returns, mutations and further finalizes fail
// with ErrBusy. Event loops call it synchronously and run Complete off the
// loop.
func (s *Session) BeginFinalize() (*Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return nil, ErrBusy
	}
	if s.stack.Len() == 0 {
		return nil, ErrEmpty
	}
	s.busy = true
	return &Pending{session: s, cards: s.stack.Snapshot()}, nil
}

// Pending is a finalize that has frozen the stack but not yet called the
// finalizer.
type Pending struct {
	session *Session
	cards   []circuit.Card
	once    sync.Once
	text    string
}

// Cards returns the snapshot that will be sent.
func (p *Pending) Cards() []circuit.Card { return p.cards }

// Complete calls the finalizer, stores the display text and unfreezes the
// stack. Only the first call reaches the finalizer; later calls return the
// same text.
func (p *Pending) Complete(ctx context.Context) string {
	p.once.Do(func() {
		s := p.session
		var (
			algorithm string
			err       error
		)
		if s.finalizer == nil {
			err = errors.New(errors.ErrCodeInternal, "no finalize endpoint configured")
		} else {
			algorithm, err = s.finalizer.Finalize(ctx, p.cards)
		}
		p.text = finalize.Display(algorithm, err)
		if err != nil {
			s.logger.Error("finalize failed", "cards", len(p.cards), "err", err)
		}

		s.mu.Lock()
		s.busy = false
		s.result = p.text
		s.mu.Unlock()
	})
	return p.text
}

// Resize updates the camera viewport. It does not touch the stack or scene.
func (s *Session) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera.Resize(width, height)
}

// Orbit rotates the camera around its target.
func (s *Session) Orbit(dAzimuth, dPolar float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera.Orbit(dAzimuth, dPolar)
}

// Zoom scales the camera distance.
func (s *Session) Zoom(factor float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera.Zoom(factor)
}

// Busy reports whether a finalize is pending.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Result returns the text of the last finished finalize.
func (s *Session) Result() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Cards returns a copy of the stacked cards, bottom first.
func (s *Session) Cards() []circuit.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack.Snapshot()
}

// Len returns the number of stacked cards.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack.Len()
}

// Frame returns the current state for drawing.
func (s *Session) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Frame{
		Cards:  s.stack.Snapshot(),
		Layout: s.composer.Layout(),
		Groups: s.composer.Groups(),
		Camera: *s.camera,
		Busy:   s.busy,
		Result: s.result,
	}
}

// Close releases the scene.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composer.Close()
}
