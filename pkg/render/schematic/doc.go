// Package schematic renders a card stack as a Graphviz connectivity diagram.
//
// Where the 3D sinks show where things are, the schematic shows what is
// wired to what. Each stacked card becomes a cluster holding its nodes, gates
// and mesh points. Edges come from three places:
//
//   - gate wiring: input nodes into a gate, the gate into its outputs
//   - node connection lists and active matrix connections between nodes
//   - resolved mesh links between clusters, drawn dotted
//
// Identifiers that resolve to nothing are skipped, like every other renderer
// does with dangling references.
//
// # Usage
//
//	dot := schematic.ToDOT(cards, schematic.Options{})
//	svg, err := schematic.RenderSVG(ctx, dot)
//
// [RenderSVG] runs Graphviz in-process through [github.com/goccy/go-graphviz],
// so no external binaries are needed.
package schematic
