// Package pkg provides the core libraries for cardstack.
//
// # Overview
//
// Cardstack assembles circuit cards into a vertical stack and derives
// everything else from that stack: a layout, a 3D scene, renderings, and a
// textual algorithm produced by the finalize service. The pkg directory is
// organized by stage:
//
//  1. [circuit] - Card data model, the stack, and the preset [circuit/library]
//  2. [generator] - Procedural card synthesis from a parameter record
//  3. [layout], [geometry], [scene] - Stack offsets, world-space primitives,
//     the retained scene and its camera
//  4. [mesh] - Cross-card mesh link resolution
//  5. [session] - Single owner of one interactive stack
//  6. [finalize], [analysis] - Remote finalize client and the analysis behind
//     the service
//  7. [render] - JSON, SVG, PNG, text and Graphviz sinks
//  8. [cache], [history] - Service memoization and finalize history
//
// # Architecture
//
//	preset library / generator
//	         ↓
//	    circuit.Stack (push, remove, clear)
//	         ↓
//	    layout.Build → geometry.Project → scene.Composer
//	         ↓                                   ↓
//	    finalize.Client                     render sinks
//	         ↓
//	    analysis (service side) → algorithm text
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/cardstack/pkg/circuit/library"
//	    "github.com/matzehuels/cardstack/pkg/render/sink"
//	)
//
//	lib := library.Default()
//	and, _ := lib.Get("and-gate")
//	matrix, _ := lib.Get("matrix-basic")
//	svg := sink.RenderSVG(sink.NewScene([]circuit.Card{and, matrix}))
//
// [circuit]: https://pkg.go.dev/github.com/matzehuels/cardstack/pkg/circuit
// [circuit/library]: https://pkg.go.dev/github.com/matzehuels/cardstack/pkg/circuit/library
// [generator]: https://pkg.go.dev/github.com/matzehuels/cardstack/pkg/generator
// [layout]: https://pkg.go.dev/github.com/matzehuels/cardstack/pkg/layout
// [geometry]: https://pkg.go.dev/github.com/matzehuels/cardstack/pkg/geometry
// [scene]: https://pkg.go.dev/github.com/matzehuels/cardstack/pkg/scene
// [mesh]: https://pkg.go.dev/github.com/matzehuels/cardstack/pkg/mesh
// [session]: https://pkg.go.dev/github.com/matzehuels/cardstack/pkg/session
// [finalize]: https://pkg.go.dev/github.com/matzehuels/cardstack/pkg/finalize
// [analysis]: https://pkg.go.dev/github.com/matzehuels/cardstack/pkg/analysis
// [render]: https://pkg.go.dev/github.com/matzehuels/cardstack/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/cardstack/pkg/cache
// [history]: https://pkg.go.dev/github.com/matzehuels/cardstack/pkg/history
package pkg
