package circuit

import (
	stderrors "errors"
	"fmt"

	"github.com/matzehuels/cardstack/pkg/errors"
)

// CheckVariant reports collections populated against the card's variant.
// An empty collection counts as unpopulated.
func (c Card) CheckVariant() error {
	if !c.Variant.Valid() {
		return errors.New(errors.ErrCodeInvalidVariant, "card %q: unknown variant %q", c.ID, c.Variant)
	}
	if !c.Variant.HasGates() && len(c.Gates) > 0 {
		return errors.New(errors.ErrCodeInvalidVariant, "card %q: %s card has %d logic gates", c.ID, c.Variant, len(c.Gates))
	}
	if !c.Variant.HasMatrix() && len(c.Matrix) > 0 {
		return errors.New(errors.ErrCodeInvalidVariant, "card %q: %s card has %d matrix connections", c.ID, c.Variant, len(c.Matrix))
	}
	return nil
}

// CheckBounds reports schematic coordinates outside the unit square and a
// non-positive height.
func (c Card) CheckBounds() error {
	var errs []error
	out := func(kind, id string, x, y float64) {
		if !inUnit(x) || !inUnit(y) {
			errs = append(errs, fmt.Errorf("%s %q at (%g, %g) outside [0,1]²", kind, id, x, y))
		}
	}
	for _, n := range c.Nodes {
		out("node", n.ID, n.X, n.Y)
	}
	for _, g := range c.Gates {
		out("gate", g.ID, g.X, g.Y)
	}
	for i, m := range c.Matrix {
		out("connection start", fmt.Sprint(i), m.FromX, m.FromY)
		out("connection end", fmt.Sprint(i), m.ToX, m.ToY)
	}
	for _, p := range c.MeshPoints {
		out("mesh point", p.ID, p.X, p.Y)
	}
	if c.Height <= 0 {
		errs = append(errs, fmt.Errorf("height %g must be positive", c.Height))
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, stderrors.Join(errs...), "card %q", c.ID)
}

// Check runs CheckVariant and CheckBounds. It is meant for cards read from
// user files; generated and preset cards satisfy both by construction.
func (c Card) Check() error {
	if err := c.CheckVariant(); err != nil {
		return err
	}
	return c.CheckBounds()
}

func inUnit(v float64) bool { return v >= 0 && v <= 1 }

// DanglingRef is an intra-card reference that names no entity on the card.
type DanglingRef struct {
	Owner string // id of the node or gate holding the reference
	Field string // "connections", "inputs" or "outputs"
	Ref   string
}

func (d DanglingRef) String() string {
	return fmt.Sprintf("%s.%s -> %s", d.Owner, d.Field, d.Ref)
}

// DanglingRefs lists node connections and gate wiring that cannot be resolved.
// Node connections may name nodes or gates; gate inputs and outputs name nodes.
// Mesh up/down references point at other cards and are not checked here.
func (c Card) DanglingRefs() []DanglingRef {
	nodes := make(map[string]bool, len(c.Nodes))
	for _, n := range c.Nodes {
		nodes[n.ID] = true
	}
	gates := make(map[string]bool, len(c.Gates))
	for _, g := range c.Gates {
		gates[g.ID] = true
	}

	var out []DanglingRef
	for _, n := range c.Nodes {
		for _, ref := range n.Connections {
			if !nodes[ref] && !gates[ref] {
				out = append(out, DanglingRef{Owner: n.ID, Field: "connections", Ref: ref})
			}
		}
	}
	for _, g := range c.Gates {
		for _, ref := range g.Inputs {
			if !nodes[ref] {
				out = append(out, DanglingRef{Owner: g.ID, Field: "inputs", Ref: ref})
			}
		}
		for _, ref := range g.Outputs {
			if !nodes[ref] {
				out = append(out, DanglingRef{Owner: g.ID, Field: "outputs", Ref: ref})
			}
		}
	}
	return out
}
