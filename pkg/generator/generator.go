// Package generator synthesizes circuit cards from a small parameter record.
//
// Inputs sit on the left edge (x=0.1) and outputs on the right (x=0.9), each
// column evenly spaced in y. Matrix variants pair shuffled inputs with
// shuffled outputs; logic variants get gates of random kind wired to nodes by
// index wrap. Mesh points fill a three-column grid.
//
// Generate does not validate. Callers taking user input run [Params.Validate]
// first; a Params with zero input or output nodes and a positive gate count
// is outside the contract.
package generator

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/cardstack/pkg/circuit"
)

const (
	inputX  = 0.1
	outputX = 0.9
	gateX   = 0.5

	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength   = 7
)

type options struct {
	rng     *rand.Rand
	uniform bool
	id      string
}

// Option configures [Generate].
type Option func(*options)

// WithSeed makes generation deterministic.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.rng = rand.New(rand.NewPCG(seed, seed^0xdeadbeef)) }
}

// WithUniformShuffle pairs matrix connections using a Fisher-Yates shuffle
// instead of the default random-comparator sort, which is not uniform.
func WithUniformShuffle() Option {
	return func(o *options) { o.uniform = true }
}

// WithID sets the card id instead of minting a random "card-xxxxxxx" one.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// Generate builds one card from p.
func Generate(p Params, opts ...Option) circuit.Card {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if o.id == "" {
		o.id = newID(o.rng)
	}

	card := circuit.Card{
		ID:          o.id,
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		Variant:     p.Variant,
		Height:      p.Height,
		Nodes:       nodes(p.InputNodes, p.OutputNodes),
		MeshPoints:  meshPoints(p.MeshPoints),
	}
	if p.Variant.HasMatrix() {
		card.Matrix = connections(o, p.InputNodes, p.OutputNodes, p.Connections)
	}
	if p.Variant.HasGates() {
		card.Gates = gates(o.rng, p.Gates, p.InputNodes, p.OutputNodes)
	}
	return card
}

// spacing returns the y coordinate of the i-th of n evenly spaced nodes.
func spacing(i, n int) float64 {
	return float64(i+1) / float64(n+1)
}

func nodes(in, out int) []circuit.Node {
	ns := make([]circuit.Node, 0, max(in, 0)+max(out, 0))
	for i := range in {
		ns = append(ns, circuit.Node{
			ID:          inputID(i),
			X:           inputX,
			Y:           spacing(i, in),
			Role:        circuit.RoleInput,
			Connections: []string{},
		})
	}
	for i := range out {
		ns = append(ns, circuit.Node{
			ID:          outputID(i),
			X:           outputX,
			Y:           spacing(i, out),
			Role:        circuit.RoleOutput,
			Connections: []string{},
		})
	}
	return ns
}

// connections pairs the first min(count, in, out) entries of independently
// shuffled input and output index lists. Excess requests are dropped.
func connections(o options, in, out, count int) []circuit.MatrixConnection {
	ins := indices(in)
	outs := indices(out)
	shuffle(o, ins)
	shuffle(o, outs)

	n := max(min(count, in, out), 0)
	conns := make([]circuit.MatrixConnection, n)
	for i := range n {
		conns[i] = circuit.MatrixConnection{
			FromX:  inputX,
			FromY:  spacing(ins[i], in),
			ToX:    outputX,
			ToY:    spacing(outs[i], out),
			Active: true,
		}
	}
	return conns
}

func shuffle(o options, xs []int) {
	if o.uniform {
		o.rng.Shuffle(len(xs), func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })
		return
	}
	// Sorting with a coin-flip comparator. The result is a permutation but
	// not a uniformly distributed one.
	slices.SortFunc(xs, func(a, b int) int {
		if o.rng.Float64() < 0.5 {
			return -1
		}
		return 1
	})
}

func gates(rng *rand.Rand, count, in, out int) []circuit.LogicGate {
	gs := make([]circuit.LogicGate, 0, max(count, 0))
	for i := range count {
		gs = append(gs, circuit.LogicGate{
			ID:      "gate-" + strconv.Itoa(i),
			Kind:    circuit.GateKinds[rng.IntN(len(circuit.GateKinds))],
			Inputs:  []string{inputID(i % in)},
			Outputs: []string{outputID(i % out)},
			X:       gateX,
			Y:       0.2 + float64(i)*0.6/float64(max(count, 1)),
		})
	}
	return gs
}

func meshPoints(count int) []circuit.MeshPoint {
	ps := make([]circuit.MeshPoint, 0, max(count, 0))
	for i := range count {
		ps = append(ps, circuit.MeshPoint{
			ID:   "mesh-" + strconv.Itoa(i),
			X:    0.2 + float64(i%3)*0.3,
			Y:    0.2 + float64(i/3)*0.3,
			Up:   []string{},
			Down: []string{},
		})
	}
	return ps
}

func indices(n int) []int {
	xs := make([]int, max(n, 0))
	for i := range xs {
		xs[i] = i
	}
	return xs
}

func newID(rng *rand.Rand) string {
	var b strings.Builder
	b.WriteString("card-")
	for range idLength {
		b.WriteByte(idAlphabet[rng.IntN(len(idAlphabet))])
	}
	return b.String()
}

func inputID(i int) string  { return "input-" + strconv.Itoa(i) }
func outputID(i int) string { return "output-" + strconv.Itoa(i) }
