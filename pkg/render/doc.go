// Package render groups the output formats for card stacks.
//
// Two views are provided:
//
//   - [sink]: the 3D stack as the interactive viewer shows it, exported as
//     JSON, SVG, PNG or terminal text
//   - [schematic]: a Graphviz connectivity diagram of nodes, gates and mesh
//     links, one cluster per card
//
// Both start from the same card sequence, bottom to top:
//
//	s := sink.NewScene(cards)
//	png, err := sink.RenderPNG(s, sink.WithSize(1024, 768))
//
//	dot := schematic.ToDOT(cards, schematic.Options{Detailed: true})
//	svg, err := schematic.RenderSVG(ctx, dot)
//
// [sink]: github.com/matzehuels/cardstack/pkg/render/sink
// [schematic]: github.com/matzehuels/cardstack/pkg/render/schematic
package render
