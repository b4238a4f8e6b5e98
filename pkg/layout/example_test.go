package layout_test

import (
	"fmt"

	"github.com/matzehuels/cardstack/pkg/circuit"
	"github.com/matzehuels/cardstack/pkg/layout"
)

func ExampleBuild() {
	l := layout.Build([]circuit.Card{
		{ID: "bottom", Height: 0.2},
		{ID: "top", Height: 0.15},
	})
	for _, s := range l.Slots {
		fmt.Printf("%s: %.2f..%.2f\n", s.CardID, s.Bottom, s.Top)
	}
	fmt.Printf("extent %.2f\n", l.Extent)
	// Output:
	// bottom: 0.00..0.20
	// top: 0.25..0.40
	// extent 0.40
}
