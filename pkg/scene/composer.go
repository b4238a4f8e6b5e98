// Package scene holds the rendered state of a card stack.
//
// A [Composer] keeps one primitive group per stacked card, uploaded to a
// [Backend]. Every stack change rebuilds the whole set: the stack is laid out
// again, every card is projected again, the previous handles are released and
// only then are the new groups uploaded. A Composer has a single owner and is
// not safe for concurrent use.
package scene

import (
	"context"
	stderrors "errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardstack/pkg/circuit"
	"github.com/matzehuels/cardstack/pkg/errors"
	"github.com/matzehuels/cardstack/pkg/geometry"
	"github.com/matzehuels/cardstack/pkg/layout"
	"github.com/matzehuels/cardstack/pkg/observability"
)

type installed struct {
	handle Handle
	group  geometry.Group
}

// Composer owns the installed primitive groups of one stack.
type Composer struct {
	backend Backend
	logger  *log.Logger
	layout  layout.Layout
	groups  []installed
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithLogger sets the logger used for rebuild diagnostics.
func WithLogger(l *log.Logger) ComposerOption {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewComposer returns an empty composer drawing into backend.
func NewComposer(backend Backend, opts ...ComposerOption) *Composer {
	c := &Composer{
		backend: backend,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Build lays out cards and projects each one. It is the pure part of a
// rebuild and does not touch any backend.
func Build(cards []circuit.Card) (layout.Layout, []geometry.Group) {
	l := layout.Build(cards)
	groups := make([]geometry.Group, len(cards))
	for i, c := range cards {
		groups[i] = geometry.Project(c, l.Slots[i].Bottom)
	}
	return l, groups
}

// Rebuild replaces the installed scene with one built from cards.
//
// All previously installed handles are released before any new group is
// uploaded. A failed release is reported in the returned error but does not
// stop the rebuild. When an upload fails, the groups uploaded so far in this
// call are released again and the composer is left empty.
func (c *Composer) Rebuild(ctx context.Context, cards []circuit.Card) error {
	start := time.Now()
	l, groups := Build(cards)

	releaseErr := c.release(ctx)

	next := make([]installed, 0, len(groups))
	primitives := 0
	for _, g := range groups {
		h, err := c.backend.Upload(g)
		if err != nil {
			c.groups = next
			rollback := c.release(ctx)
			err = errors.Wrap(errors.ErrCodeInternal, stderrors.Join(err, rollback), "upload card %q", g.CardID)
			observability.Scene().OnRebuild(ctx, len(cards), 0, time.Since(start), err)
			return stderrors.Join(releaseErr, err)
		}
		next = append(next, installed{handle: h, group: g})
		primitives += g.Primitives()
	}
	c.groups = next
	c.layout = l

	observability.Scene().OnRebuild(ctx, len(cards), primitives, time.Since(start), releaseErr)
	c.logger.Debug("rebuilt scene", "cards", len(cards), "primitives", primitives, "extent", l.Extent, "duration", time.Since(start))
	return releaseErr
}

// release drops every installed handle and clears the installed set.
func (c *Composer) release(ctx context.Context) error {
	if len(c.groups) == 0 {
		c.layout = layout.Layout{}
		return nil
	}
	var errs []error
	for _, in := range c.groups {
		if err := c.backend.Release(in.handle); err != nil {
			errs = append(errs, err)
		}
	}
	n := len(c.groups)
	c.groups = nil
	c.layout = layout.Layout{}

	err := stderrors.Join(errs...)
	observability.Scene().OnRelease(ctx, n, err)
	if err != nil {
		c.logger.Warn("release failed", "handles", n, "failures", len(errs), "err", err)
		return errors.Wrap(errors.ErrCodeInternal, err, "release %d handles", n)
	}
	return nil
}

// Groups returns the installed groups, bottom card first.
func (c *Composer) Groups() []geometry.Group {
	out := make([]geometry.Group, len(c.groups))
	for i, in := range c.groups {
		out[i] = in.group
	}
	return out
}

// Layout returns the layout of the installed scene.
func (c *Composer) Layout() layout.Layout { return c.layout }

// Close releases every installed handle.
func (c *Composer) Close() error {
	return c.release(context.Background())
}
