package circuit

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/cardstack/pkg/errors"
)

func hybridCard() Card {
	return Card{
		ID:          "hybrid-basic",
		Name:        "Hybrid Card",
		Description: "Card with both logic gates and matrix connections",
		Color:       "#6aa54a",
		Variant:     VariantHybrid,
		Height:      0.25,
		Nodes: []Node{
			{ID: "in1", X: 0.1, Y: 0.3, Role: RoleInput, Connections: []string{"gate1"}},
			{ID: "mid", X: 0.5, Y: 0.5, Role: RoleBidirectional, Connections: []string{"gate1"}},
			{ID: "out1", X: 0.9, Y: 0.3, Role: RoleOutput, Connections: []string{}},
		},
		Gates: []LogicGate{
			{ID: "gate1", Kind: GateAND, Inputs: []string{"in1"}, Outputs: []string{"mid"}, X: 0.3, Y: 0.5},
		},
		Matrix: []MatrixConnection{
			{FromX: 0.5, FromY: 0.5, ToX: 0.9, ToY: 0.3, Active: true},
			{FromX: 0.5, FromY: 0.5, ToX: 0.9, ToY: 0.7, Active: false},
		},
		MeshPoints: []MeshPoint{
			{ID: "mesh1", X: 0.1, Y: 0.3, Up: []string{"mesh2"}, Down: []string{}},
		},
	}
}

func TestVariantCollections(t *testing.T) {
	tests := []struct {
		variant    Variant
		wantGates  bool
		wantMatrix bool
	}{
		{VariantLogic, true, false},
		{VariantMatrix, false, true},
		{VariantHybrid, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			if got := tt.variant.HasGates(); got != tt.wantGates {
				t.Errorf("HasGates() = %v, want %v", got, tt.wantGates)
			}
			if got := tt.variant.HasMatrix(); got != tt.wantMatrix {
				t.Errorf("HasMatrix() = %v, want %v", got, tt.wantMatrix)
			}
			if !tt.variant.Valid() {
				t.Error("Valid() = false")
			}
		})
	}
	if Variant("analog").Valid() {
		t.Error("unknown variant should not be valid")
	}
}

func TestGateKinds(t *testing.T) {
	if len(GateKinds) != 7 {
		t.Fatalf("len(GateKinds) = %d, want 7", len(GateKinds))
	}
	for _, k := range GateKinds {
		if !k.Valid() {
			t.Errorf("%s should be valid", k)
		}
	}
	if GateKind("XNOR").Valid() {
		t.Error("XNOR is not a supported gate kind")
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := hybridCard()
	cp := orig.Clone()

	if diff := cmp.Diff(orig, cp); diff != "" {
		t.Fatalf("Clone() mismatch (-orig +clone):\n%s", diff)
	}

	cp.Nodes[0].Connections[0] = "changed"
	cp.Gates[0].Inputs[0] = "changed"
	cp.Matrix[0].Active = false
	cp.MeshPoints[0].Up[0] = "changed"

	if orig.Nodes[0].Connections[0] != "gate1" {
		t.Error("node connections share storage with clone")
	}
	if orig.Gates[0].Inputs[0] != "in1" {
		t.Error("gate inputs share storage with clone")
	}
	if !orig.Matrix[0].Active {
		t.Error("matrix connections share storage with clone")
	}
	if orig.MeshPoints[0].Up[0] != "mesh2" {
		t.Error("mesh up connections share storage with clone")
	}
}

func TestCloneKeepsAbsentCollectionsAbsent(t *testing.T) {
	c := hybridCard()
	c.Variant = VariantLogic
	c.Matrix = nil

	if got := c.Clone().Matrix; got != nil {
		t.Errorf("Clone().Matrix = %v, want nil", got)
	}
}

func TestActiveConnections(t *testing.T) {
	got := hybridCard().ActiveConnections()
	if len(got) != 1 {
		t.Fatalf("len(ActiveConnections()) = %d, want 1", len(got))
	}
	if got[0].ToY != 0.3 {
		t.Errorf("ActiveConnections()[0].ToY = %v, want 0.3", got[0].ToY)
	}
}

func TestCardJSONFieldNames(t *testing.T) {
	c := hybridCard()
	c.Variant = VariantMatrix
	c.Gates = nil

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"type":"matrix"`, `"matrixConnections"`, `"meshInteractionPoints"`, `"upConnections"`, `"fromX"`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON missing %s: %s", want, s)
		}
	}
	if strings.Contains(s, "logicGates") {
		t.Errorf("matrix card JSON should omit logicGates: %s", s)
	}
}

func TestCheckVariant(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Card)
		wantErr bool
	}{
		{"hybrid with both", func(*Card) {}, false},
		{"logic with matrix", func(c *Card) { c.Variant = VariantLogic }, true},
		{"matrix with gates", func(c *Card) { c.Variant = VariantMatrix }, true},
		{"logic without matrix", func(c *Card) { c.Variant = VariantLogic; c.Matrix = nil }, false},
		{"matrix with empty gates", func(c *Card) { c.Variant = VariantMatrix; c.Gates = []LogicGate{} }, false},
		{"unknown variant", func(c *Card) { c.Variant = "analog" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := hybridCard()
			tt.mutate(&c)
			err := c.CheckVariant()
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckVariant() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidVariant) {
				t.Errorf("CheckVariant() code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidVariant)
			}
		})
	}
}

func TestCheckBounds(t *testing.T) {
	c := hybridCard()
	if err := c.Check(); err != nil {
		t.Fatalf("Check() on valid card: %v", err)
	}

	c.Nodes[0].X = 1.2
	c.Height = 0
	err := c.CheckBounds()
	if err == nil {
		t.Fatal("CheckBounds() should fail")
	}
	msg := err.Error()
	if !strings.Contains(msg, `node "in1"`) || !strings.Contains(msg, "height") {
		t.Errorf("CheckBounds() error should mention node and height: %v", err)
	}
}

func TestDanglingRefs(t *testing.T) {
	c := hybridCard()
	if refs := c.DanglingRefs(); len(refs) != 0 {
		t.Fatalf("DanglingRefs() on consistent card = %v", refs)
	}

	c.Nodes[0].Connections = append(c.Nodes[0].Connections, "ghost")
	c.Gates[0].Outputs = []string{"nowhere"}

	got := c.DanglingRefs()
	want := []DanglingRef{
		{Owner: "in1", Field: "connections", Ref: "ghost"},
		{Owner: "gate1", Field: "outputs", Ref: "nowhere"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DanglingRefs() mismatch (-want +got):\n%s", diff)
	}
	if got[0].String() != "in1.connections -> ghost" {
		t.Errorf("String() = %q", got[0].String())
	}
}
