package analysis

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/matzehuels/cardstack/pkg/circuit"
)

//go:embed algorithm.py.tmpl
var algorithmTemplate string

var tmpl = template.Must(template.New("algorithm").Funcs(template.FuncMap{
	"row": formatRow,
}).Parse(algorithmTemplate))

// Constants are the numeric parameters derived from a stack.
type Constants struct {
	KeyRounds         int    `json:"key_rounds"`
	MatrixSize        int    `json:"matrix_size"`
	PermutationRounds int    `json:"permutation_rounds"`
	CircuitSeed       string `json:"circuit_seed"`
}

// Algorithm is everything the generated document is rendered from.
type Algorithm struct {
	Constants  Constants `json:"constants"`
	Matrix     [][]int   `json:"matrix"`
	Operations []string  `json:"operations"`
}

// gateOps maps each gate kind to the byte operation it contributes.
var gateOps = map[circuit.GateKind]string{
	circuit.GateAND:    "result = (byte1 & byte2)",
	circuit.GateOR:     "result = (byte1 | byte2)",
	circuit.GateXOR:    "result = (byte1 ^ byte2)",
	circuit.GateNOT:    "result = (~byte1 & 0xFF)",
	circuit.GateNAND:   "result = (~(byte1 & byte2) & 0xFF)",
	circuit.GateNOR:    "result = (~(byte1 | byte2) & 0xFF)",
	circuit.GateBUFFER: "result = byte1",
}

// defaultOps stand in when the stack has no gates.
var defaultOps = []string{
	"result = (byte1 ^ byte2)",
	"result = ((result << 1) | (result >> 7)) & 0xFF",
}

// DeriveConstants computes the constants of s.
func DeriveConstants(s Summary) Constants {
	var seed strings.Builder
	for _, t := range s.CardTypes {
		seed.WriteString(string(t))
	}
	for _, c := range s.CardColors {
		seed.WriteString(c)
	}
	for _, g := range s.LogicGateTypes {
		seed.WriteString(string(g))
	}
	sum := sha256.Sum256([]byte(seed.String()))

	return Constants{
		KeyRounds:         clamp(s.NumCards+2, 2, 16),
		MatrixSize:        clamp(s.NumNodes/2, 4, 32),
		PermutationRounds: clamp(s.NumConnections/2, 1, 8),
		CircuitSeed:       hex.EncodeToString(sum[:])[:16],
	}
}

// ConnectionMatrix places every active connection into a size×size matrix.
// When there are fewer connections than rows, rows left all zero are filled
// from the seed bytes.
func ConnectionMatrix(conns []circuit.MatrixConnection, c Constants) [][]int {
	size := c.MatrixSize
	m := make([][]int, size)
	for i := range m {
		m[i] = make([]int, size)
	}
	for _, conn := range conns {
		row := mod(int(conn.FromX*100), size)
		col := mod(int(conn.FromY*100), size)
		// Explicit conversions keep the sum from being fused into an FMA.
		m[row][col] = mod(int(float64(conn.ToX*100)+float64(conn.ToY*100)), 256)
	}
	if len(conns) >= size {
		return m
	}

	seed := seedBytes(c.CircuitSeed)
	for i, row := range m {
		if rowSum(row) != 0 {
			continue
		}
		for j := range row {
			if row[j] == 0 {
				row[j] = seed[(i+j)%len(seed)]
			}
		}
	}
	return m
}

// Operations returns one byte operation per gate, in stack order.
func Operations(gates []circuit.LogicGate) []string {
	if len(gates) == 0 {
		return append([]string(nil), defaultOps...)
	}
	ops := make([]string, len(gates))
	for i, g := range gates {
		op, ok := gateOps[g.Kind]
		if !ok {
			op = gateOps[circuit.GateBUFFER]
		}
		ops[i] = op
	}
	return ops
}

// Build derives the algorithm parameters from a.
func Build(a Analysis) Algorithm {
	c := DeriveConstants(a.Summary)
	conns := make([]circuit.MatrixConnection, len(a.Connections))
	for i, l := range a.Connections {
		conns[i] = l.Item
	}
	gates := make([]circuit.LogicGate, len(a.Gates))
	for i, l := range a.Gates {
		gates[i] = l.Item
	}
	return Algorithm{
		Constants:  c,
		Matrix:     ConnectionMatrix(conns, c),
		Operations: Operations(gates),
	}
}

// Render writes the algorithm document.
func (alg Algorithm) Render() (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, alg); err != nil {
		return "", fmt.Errorf("render algorithm: %w", err)
	}
	return buf.String(), nil
}

// Generate analyzes cards and renders the algorithm document in one step.
func Generate(cards []circuit.Card) (string, Summary, error) {
	a := Analyze(cards)
	text, err := Build(a).Render()
	return text, a.Summary, err
}

func seedBytes(seed string) []int {
	out := make([]int, 0, len(seed)/2)
	for i := 0; i+2 <= len(seed); i += 2 {
		v, err := strconv.ParseUint(seed[i:i+2], 16, 8)
		if err != nil {
			continue
		}
		out = append(out, int(v))
	}
	if len(out) == 0 {
		out = append(out, 0)
	}
	return out
}

func formatRow(row []int) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func rowSum(row []int) int {
	s := 0
	for _, v := range row {
		s += v
	}
	return s
}

// mod is the non-negative remainder.
func mod(a, b int) int {
	return ((a % b) + b) % b
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
