package generator

import (
	"math"
	"regexp"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/cardstack/pkg/circuit"
	"github.com/matzehuels/cardstack/pkg/errors"
)

const eps = 1e-9

func TestNodeSpacing(t *testing.T) {
	for n := 1; n <= 8; n++ {
		p := DefaultParams()
		p.InputNodes, p.OutputNodes = n, n
		card := Generate(p, WithSeed(1))

		var ins, outs []float64
		for _, node := range card.Nodes {
			switch node.Role {
			case circuit.RoleInput:
				if node.X != 0.1 {
					t.Errorf("n=%d: input %s at x=%v", n, node.ID, node.X)
				}
				ins = append(ins, node.Y)
			case circuit.RoleOutput:
				if node.X != 0.9 {
					t.Errorf("n=%d: output %s at x=%v", n, node.ID, node.X)
				}
				outs = append(outs, node.Y)
			}
		}
		if len(ins) != n || len(outs) != n {
			t.Fatalf("n=%d: got %d inputs, %d outputs", n, len(ins), len(outs))
		}
		for i, y := range ins {
			want := float64(i+1) / float64(n+1)
			if math.Abs(y-want) > eps {
				t.Errorf("n=%d: input %d y=%v, want %v", n, i, y, want)
			}
			if y <= 0 || y >= 1 {
				t.Errorf("n=%d: input %d y=%v outside (0,1)", n, i, y)
			}
			if i > 0 && y <= ins[i-1] {
				t.Errorf("n=%d: input y not strictly increasing at %d", n, i)
			}
		}
	}
}

func TestNodeIDs(t *testing.T) {
	p := DefaultParams()
	p.InputNodes, p.OutputNodes = 2, 3
	card := Generate(p, WithSeed(1))

	var ids []string
	for _, n := range card.Nodes {
		ids = append(ids, n.ID)
		if n.Connections == nil || len(n.Connections) != 0 {
			t.Errorf("node %s connections = %#v, want empty", n.ID, n.Connections)
		}
	}
	want := []string{"input-0", "input-1", "output-0", "output-1", "output-2"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("node ids mismatch (-want +got):\n%s", diff)
	}
}

func TestConnectionCountBound(t *testing.T) {
	for _, uniform := range []bool{false, true} {
		for in := 1; in <= 6; in++ {
			for out := 1; out <= 6; out++ {
				for conns := 0; conns <= 8; conns++ {
					p := DefaultParams()
					p.Variant = circuit.VariantMatrix
					p.InputNodes, p.OutputNodes, p.Connections = in, out, conns

					opts := []Option{WithSeed(uint64(in*100 + out*10 + conns))}
					if uniform {
						opts = append(opts, WithUniformShuffle())
					}
					card := Generate(p, opts...)

					want := min(conns, in, out)
					if len(card.Matrix) != want {
						t.Fatalf("in=%d out=%d conns=%d: %d connections, want %d", in, out, conns, len(card.Matrix), want)
					}
					checkPairing(t, card, in, out)
				}
			}
		}
	}
}

// checkPairing asserts every connection joins a real input to a real output
// and no endpoint is used twice.
func checkPairing(t *testing.T, card circuit.Card, in, out int) {
	t.Helper()
	fromSeen := map[float64]bool{}
	toSeen := map[float64]bool{}
	for _, c := range card.Matrix {
		if !c.Active {
			t.Errorf("generated connection is inactive: %+v", c)
		}
		if c.FromX != 0.1 || c.ToX != 0.9 {
			t.Errorf("connection x = %v -> %v", c.FromX, c.ToX)
		}
		if !onGrid(c.FromY, in) || !onGrid(c.ToY, out) {
			t.Errorf("connection endpoint off the node grid: %+v", c)
		}
		if fromSeen[c.FromY] || toSeen[c.ToY] {
			t.Errorf("endpoint reused: %+v", c)
		}
		fromSeen[c.FromY] = true
		toSeen[c.ToY] = true
	}
}

func onGrid(y float64, n int) bool {
	for i := range n {
		if math.Abs(y-float64(i+1)/float64(n+1)) < eps {
			return true
		}
	}
	return false
}

func TestVariantCollections(t *testing.T) {
	tests := []struct {
		variant    circuit.Variant
		wantGates  bool
		wantMatrix bool
	}{
		{circuit.VariantLogic, true, false},
		{circuit.VariantMatrix, false, true},
		{circuit.VariantHybrid, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			p := DefaultParams()
			p.Variant = tt.variant
			p.Gates = 3
			card := Generate(p, WithSeed(7))

			if got := len(card.Gates) > 0; got != tt.wantGates {
				t.Errorf("gates populated = %v, want %v", got, tt.wantGates)
			}
			if got := len(card.Matrix) > 0; got != tt.wantMatrix {
				t.Errorf("matrix populated = %v, want %v", got, tt.wantMatrix)
			}
			if err := card.Check(); err != nil {
				t.Errorf("Check() = %v", err)
			}
			if refs := card.DanglingRefs(); len(refs) != 0 {
				t.Errorf("DanglingRefs() = %v", refs)
			}
		})
	}
}

func TestGates(t *testing.T) {
	p := DefaultParams()
	p.Variant = circuit.VariantLogic
	p.InputNodes, p.OutputNodes, p.Gates = 2, 3, 4
	card := Generate(p, WithSeed(3))

	if len(card.Gates) != 4 {
		t.Fatalf("len(Gates) = %d, want 4", len(card.Gates))
	}
	wantIn := []string{"input-0", "input-1", "input-0", "input-1"}
	wantOut := []string{"output-0", "output-1", "output-2", "output-0"}
	for i, g := range card.Gates {
		if g.ID != "gate-"+string(rune('0'+i)) {
			t.Errorf("gate %d id = %q", i, g.ID)
		}
		if !g.Kind.Valid() {
			t.Errorf("gate %d kind %q invalid", i, g.Kind)
		}
		if g.X != 0.5 {
			t.Errorf("gate %d x = %v", i, g.X)
		}
		wantY := 0.2 + float64(i)*0.6/4
		if math.Abs(g.Y-wantY) > eps {
			t.Errorf("gate %d y = %v, want %v", i, g.Y, wantY)
		}
		if g.Inputs[0] != wantIn[i] || g.Outputs[0] != wantOut[i] {
			t.Errorf("gate %d wired %v -> %v, want %s -> %s", i, g.Inputs, g.Outputs, wantIn[i], wantOut[i])
		}
	}
}

func TestGateKindsAllReachable(t *testing.T) {
	p := DefaultParams()
	p.Variant = circuit.VariantLogic
	p.Gates = 4

	seen := map[circuit.GateKind]bool{}
	for seed := range uint64(200) {
		for _, g := range Generate(p, WithSeed(seed)).Gates {
			seen[g.Kind] = true
		}
	}
	for _, k := range circuit.GateKinds {
		if !seen[k] {
			t.Errorf("gate kind %s never generated", k)
		}
	}
}

func TestMeshGrid(t *testing.T) {
	p := DefaultParams()
	p.MeshPoints = 7
	card := Generate(p, WithSeed(1))

	want := [][2]float64{{0.2, 0.2}, {0.5, 0.2}, {0.8, 0.2}, {0.2, 0.5}, {0.5, 0.5}, {0.8, 0.5}, {0.2, 0.8}}
	if len(card.MeshPoints) != len(want) {
		t.Fatalf("len(MeshPoints) = %d", len(card.MeshPoints))
	}
	for i, mp := range card.MeshPoints {
		if math.Abs(mp.X-want[i][0]) > eps || math.Abs(mp.Y-want[i][1]) > eps {
			t.Errorf("mesh %d at (%v,%v), want %v", i, mp.X, mp.Y, want[i])
		}
		if len(mp.Up) != 0 || len(mp.Down) != 0 {
			t.Errorf("mesh %d has cross-card references", i)
		}
	}

	p.MeshPoints = 0
	if got := Generate(p, WithSeed(1)).MeshPoints; got == nil || len(got) != 0 {
		t.Errorf("zero mesh points = %#v, want empty non-nil", got)
	}
}

func TestCardID(t *testing.T) {
	re := regexp.MustCompile(`^card-[0-9a-z]{7}$`)
	a := Generate(DefaultParams())
	b := Generate(DefaultParams())
	if !re.MatchString(a.ID) {
		t.Errorf("id %q does not match %s", a.ID, re)
	}
	if a.ID == b.ID {
		t.Errorf("two generated cards share id %q", a.ID)
	}
	if got := Generate(DefaultParams(), WithID("fixed")).ID; got != "fixed" {
		t.Errorf("WithID: id = %q", got)
	}
}

func TestSeedIsDeterministic(t *testing.T) {
	p := DefaultParams()
	p.Variant = circuit.VariantHybrid
	a := Generate(p, WithSeed(42))
	b := Generate(p, WithSeed(42))
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different cards:\n%s", diff)
	}
}

func TestShufflePermutes(t *testing.T) {
	for _, uniform := range []bool{false, true} {
		o := options{uniform: uniform}
		WithSeed(9)(&o)
		xs := indices(8)
		shuffle(o, xs)
		sorted := slices.Clone(xs)
		slices.Sort(sorted)
		if diff := cmp.Diff(indices(8), sorted); diff != "" {
			t.Errorf("uniform=%v: shuffle lost elements: %v", uniform, xs)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr bool
	}{
		{"defaults", func(*Params) {}, false},
		{"excess connections accepted", func(p *Params) { p.InputNodes, p.Connections = 2, 8 }, false},
		{"zero inputs", func(p *Params) { p.InputNodes = 0 }, true},
		{"too many outputs", func(p *Params) { p.OutputNodes = 9 }, true},
		{"negative connections", func(p *Params) { p.Connections = -1 }, true},
		{"too many mesh points", func(p *Params) { p.MeshPoints = 10 }, true},
		{"too many gates", func(p *Params) { p.Gates = 5 }, true},
		{"unknown variant", func(p *Params) { p.Variant = "analog" }, true},
		{"missing name", func(p *Params) { p.Name = "" }, true},
		{"flat card", func(p *Params) { p.Height = 0 }, true},
		{"tall card", func(p *Params) { p.Height = 0.6 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidParams) {
				t.Errorf("Validate() code = %s", errors.GetCode(err))
			}
		})
	}
}
