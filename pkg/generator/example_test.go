package generator_test

import (
	"fmt"

	"github.com/matzehuels/cardstack/pkg/circuit"
	"github.com/matzehuels/cardstack/pkg/generator"
)

func ExampleGenerate() {
	p := generator.DefaultParams()
	p.InputNodes, p.OutputNodes = 2, 3
	p.Connections = 5
	p.MeshPoints = 0
	p.Variant = circuit.VariantMatrix

	card := generator.Generate(p, generator.WithSeed(1), generator.WithID("card-example"))

	fmt.Println(card.ID, card.Variant)
	fmt.Println("nodes:", len(card.Nodes))
	fmt.Println("connections:", len(card.Matrix))
	fmt.Println("gates:", card.Gates == nil)
	for _, n := range card.Nodes[:2] {
		fmt.Printf("%s (%.1f, %.4f)\n", n.ID, n.X, n.Y)
	}
	// Output:
	// card-example matrix
	// nodes: 5
	// connections: 2
	// gates: true
	// input-0 (0.1, 0.3333)
	// input-1 (0.1, 0.6667)
}
