// Package analysis derives the finalize service's output from a card stack.
//
// [Analyze] flattens a stack into its nodes, active connections, mesh points
// and gates, resolves mesh references, and scores the result. [Generate]
// turns an analysis into the algorithm document returned to clients. Both
// are deterministic.
package analysis

import (
	"github.com/matzehuels/cardstack/pkg/circuit"
	"github.com/matzehuels/cardstack/pkg/mesh"
)

// Complexity weights.
const (
	weightCard       = 5
	weightConnection = 2
	weightMeshLink   = 3
	weightGate       = 4
)

// Located ties a card element to its position in the stack.
type Located[T any] struct {
	CardID    string `json:"card_id"`
	CardIndex int    `json:"card_index"`
	Item      T      `json:"item"`
}

// Summary is the analysis digest reported to clients.
type Summary struct {
	NumCards           int                `json:"num_cards"`
	CardTypes          []circuit.Variant  `json:"card_types"`
	CardColors         []string           `json:"card_colors"`
	NumNodes           int                `json:"num_nodes"`
	NumConnections     int                `json:"num_connections"`
	NumMeshPoints      int                `json:"num_mesh_points"`
	NumMeshConnections int                `json:"num_mesh_connections"`
	NumLogicGates      int                `json:"num_logic_gates"`
	LogicGateTypes     []circuit.GateKind `json:"logic_gate_types"`
	ComplexityScore    int                `json:"complexity_score"`
}

// Analysis is the flattened view of a stack.
type Analysis struct {
	Nodes       []Located[circuit.Node]
	Connections []Located[circuit.MatrixConnection]
	MeshPoints  []Located[circuit.MeshPoint]
	MeshLinks   []mesh.Link
	Gates       []Located[circuit.LogicGate]
	Summary     Summary
}

// Analyze flattens cards, ordered bottom to top.
func Analyze(cards []circuit.Card) Analysis {
	var a Analysis
	s := Summary{
		NumCards:       len(cards),
		CardTypes:      make([]circuit.Variant, 0, len(cards)),
		CardColors:     make([]string, 0, len(cards)),
		LogicGateTypes: []circuit.GateKind{},
	}
	for i, c := range cards {
		s.CardTypes = append(s.CardTypes, c.Variant)
		s.CardColors = append(s.CardColors, c.Color)
		for _, n := range c.Nodes {
			a.Nodes = append(a.Nodes, Located[circuit.Node]{c.ID, i, n})
		}
		for _, m := range c.ActiveConnections() {
			a.Connections = append(a.Connections, Located[circuit.MatrixConnection]{c.ID, i, m})
		}
		for _, p := range c.MeshPoints {
			a.MeshPoints = append(a.MeshPoints, Located[circuit.MeshPoint]{c.ID, i, p})
		}
		for _, g := range c.Gates {
			a.Gates = append(a.Gates, Located[circuit.LogicGate]{c.ID, i, g})
			s.LogicGateTypes = append(s.LogicGateTypes, g.Kind)
		}
	}
	a.MeshLinks = mesh.Resolve(cards).Links

	s.NumNodes = len(a.Nodes)
	s.NumConnections = len(a.Connections)
	s.NumMeshPoints = len(a.MeshPoints)
	s.NumMeshConnections = len(a.MeshLinks)
	s.NumLogicGates = len(a.Gates)
	s.ComplexityScore = weightCard*s.NumCards +
		weightConnection*s.NumConnections +
		weightMeshLink*s.NumMeshConnections +
		weightGate*s.NumLogicGates
	a.Summary = s
	return a
}
