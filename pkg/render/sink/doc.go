// Package sink turns a projected card stack into output formats.
//
// A [Scene] bundles the stack layout, the primitive group of every card and,
// optionally, the resolved mesh links between cards. It is what the scene
// composer holds after a rebuild, so any sink can draw the same frame the
// interactive viewer shows.
//
// Sinks:
//
//   - [RenderJSON]: layout slots and primitive groups, indented
//   - [RenderSVG]: camera view, primitives in painter's order
//   - [RenderPNG]: the same view rasterized with fogleman/gg
//   - [RenderText]: a character-cell wireframe for terminals
//
// The view sinks share [Option]s. Without [WithCamera] they use the default
// perspective camera, raised to the middle of the stack:
//
//	s := sink.NewScene(cards)
//	svg := sink.RenderSVG(s, sink.WithSize(1024, 768), sink.WithLinks())
//
// Card colors are opaque tokens. Sinks parse them with go-colorful and fall
// back to grey for anything that is not a hex color.
package sink
