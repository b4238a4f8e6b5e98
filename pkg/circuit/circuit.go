package circuit

import "slices"

// Variant is the card category.
type Variant string

const (
	VariantLogic  Variant = "logic"
	VariantMatrix Variant = "matrix"
	VariantHybrid Variant = "hybrid"
)

// Variants lists every card variant in display order.
var Variants = []Variant{VariantLogic, VariantMatrix, VariantHybrid}

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool { return slices.Contains(Variants, v) }

// HasGates reports whether cards of this variant carry logic gates.
func (v Variant) HasGates() bool { return v != VariantMatrix }

// HasMatrix reports whether cards of this variant carry matrix connections.
func (v Variant) HasMatrix() bool { return v != VariantLogic }

// Role is the signal direction of a node.
type Role string

const (
	RoleInput         Role = "input"
	RoleOutput        Role = "output"
	RoleBidirectional Role = "bidirectional"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleInput || r == RoleOutput || r == RoleBidirectional
}

// GateKind is the boolean function a gate stands for. Gates are never evaluated.
type GateKind string

const (
	GateAND    GateKind = "AND"
	GateOR     GateKind = "OR"
	GateXOR    GateKind = "XOR"
	GateNOT    GateKind = "NOT"
	GateNAND   GateKind = "NAND"
	GateNOR    GateKind = "NOR"
	GateBUFFER GateKind = "BUFFER"
)

// GateKinds lists the seven gate kinds. The generator draws uniformly from it.
var GateKinds = []GateKind{GateAND, GateOR, GateXOR, GateNOT, GateNAND, GateNOR, GateBUFFER}

// Valid reports whether k is a known gate kind.
func (k GateKind) Valid() bool { return slices.Contains(GateKinds, k) }

// Node is a connection point on a card.
type Node struct {
	ID          string   `json:"id" toml:"id"`
	X           float64  `json:"x" toml:"x"`
	Y           float64  `json:"y" toml:"y"`
	Role        Role     `json:"type" toml:"type"`
	Connections []string `json:"connections" toml:"connections"`
}

// LogicGate is a descriptive gate placeholder wired to nodes by id.
type LogicGate struct {
	ID      string   `json:"id" toml:"id"`
	Kind    GateKind `json:"type" toml:"type"`
	Inputs  []string `json:"inputs" toml:"inputs"`
	Outputs []string `json:"outputs" toml:"outputs"`
	X       float64  `json:"x" toml:"x"`
	Y       float64  `json:"y" toml:"y"`
}

// MatrixConnection is an undirected link between two schematic points.
// Inactive connections are kept but never rendered.
type MatrixConnection struct {
	FromX  float64 `json:"fromX" toml:"fromX"`
	FromY  float64 `json:"fromY" toml:"fromY"`
	ToX    float64 `json:"toX" toml:"toX"`
	ToY    float64 `json:"toY" toml:"toY"`
	Active bool    `json:"active" toml:"active"`
}

// MeshPoint is a declared interaction point with the layers above and below.
type MeshPoint struct {
	ID   string   `json:"id" toml:"id"`
	X    float64  `json:"x" toml:"x"`
	Y    float64  `json:"y" toml:"y"`
	Up   []string `json:"upConnections" toml:"upConnections"`
	Down []string `json:"downConnections" toml:"downConnections"`
}

// Card is one schematic layer. Color is an opaque token passed through to renderers.
type Card struct {
	ID          string             `json:"id" toml:"id"`
	Name        string             `json:"name" toml:"name"`
	Description string             `json:"description" toml:"description"`
	Color       string             `json:"color" toml:"color"`
	Variant     Variant            `json:"type" toml:"type"`
	Nodes       []Node             `json:"nodes" toml:"nodes"`
	Gates       []LogicGate        `json:"logicGates,omitempty" toml:"logicGates,omitempty"`
	Matrix      []MatrixConnection `json:"matrixConnections,omitempty" toml:"matrixConnections,omitempty"`
	MeshPoints  []MeshPoint        `json:"meshInteractionPoints" toml:"meshInteractionPoints"`
	Height      float64            `json:"height" toml:"height"`
}

// Clone returns a deep copy of c.
func (c Card) Clone() Card {
	out := c
	out.Nodes = make([]Node, len(c.Nodes))
	for i, n := range c.Nodes {
		n.Connections = cloneIDs(n.Connections)
		out.Nodes[i] = n
	}
	if c.Gates != nil {
		out.Gates = make([]LogicGate, len(c.Gates))
		for i, g := range c.Gates {
			g.Inputs = cloneIDs(g.Inputs)
			g.Outputs = cloneIDs(g.Outputs)
			out.Gates[i] = g
		}
	}
	if c.Matrix != nil {
		out.Matrix = slices.Clone(c.Matrix)
	}
	out.MeshPoints = make([]MeshPoint, len(c.MeshPoints))
	for i, p := range c.MeshPoints {
		p.Up = cloneIDs(p.Up)
		p.Down = cloneIDs(p.Down)
		out.MeshPoints[i] = p
	}
	return out
}

// ActiveConnections returns the matrix connections that are rendered.
func (c Card) ActiveConnections() []MatrixConnection {
	var out []MatrixConnection
	for _, m := range c.Matrix {
		if m.Active {
			out = append(out, m)
		}
	}
	return out
}

// cloneIDs copies an id list and never returns nil, so lists encode as [].
func cloneIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return slices.Clone(ids)
}

// Signal is reserved for simulation; the core carries it but never mutates it.
type Signal struct {
	ID           string  `json:"id"`
	Value        bool    `json:"value"`
	SourceNodeID string  `json:"sourceNodeId"`
	TargetNodeID string  `json:"targetNodeId"`
	Progress     float64 `json:"progress"`
}
