// Package circuit defines circuit cards and the stacks they are assembled into.
//
// # Cards
//
// A [Card] is a resolution-independent schematic: every node, gate and mesh
// point sits in the unit square [0,1]². Its [Variant] decides which optional
// collections are populated:
//
//   - [VariantLogic]: nodes, logic gates, mesh points
//   - [VariantMatrix]: nodes, matrix connections, mesh points
//   - [VariantHybrid]: all of the above
//
// The variant rule is a caller contract. It is not enforced when a card is
// built; [Card.CheckVariant] reports violations for imported data.
//
// # References
//
// Node connections and gate inputs/outputs name entities on the same card.
// Mesh up/down connections name points on other cards and are resolved only
// after stacking (see package mesh). Unresolvable references are tolerated
// everywhere: [Card.DanglingRefs] lists them, renderers skip them.
//
// # Stacks
//
// A [Stack] is ordered bottom-to-top. [Stack.Push] stores a deep copy of the
// card under a fresh placement identifier so one library card can appear
// several times without identifier collisions.
package circuit
