package schematic

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cardstack/pkg/circuit"
	"github.com/matzehuels/cardstack/pkg/geometry"
	"github.com/matzehuels/cardstack/pkg/mesh"
)

// Options configures schematic generation.
type Options struct {
	// Detailed adds schematic coordinates to node and gate labels.
	Detailed bool
}

// ToDOT converts a stack, bottom to top, to Graphviz DOT source.
func ToDOT(cards []circuit.Card, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph cardstack {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=12, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")

	edges := newEdgeSet(&buf)
	for i, c := range cards {
		writeCluster(&buf, i, c, opts)
	}
	buf.WriteString("\n")
	for i, c := range cards {
		writeWiring(edges, i, c)
	}

	for _, l := range mesh.Resolve(cards).Links {
		edges.add(qualify(l.From.CardIndex, l.From.PointID), qualify(l.To.CardIndex, l.To.PointID),
			"style=dotted, color="+quote(geometry.ColorMesh.Hex())+", constraint=false")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func qualify(card int, id string) string {
	return strconv.Itoa(card) + "/" + id
}

// dotEscaper escapes a string for a double-quoted DOT id. Newlines become
// the \n line break Graphviz understands; everything else passes through.
var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r\n", `\n`, "\n", `\n`, "\r", "")

func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

func writeCluster(buf *bytes.Buffer, i int, c circuit.Card, opts Options) {
	label := c.Name
	if label == "" {
		label = c.ID
	}
	fmt.Fprintf(buf, "\n  subgraph \"cluster_%d\" {\n", i)
	fmt.Fprintf(buf, "    label=%s;\n", quote(fmt.Sprintf("%d: %s (%s)", i, label, c.Variant)))
	fmt.Fprintf(buf, "    style=\"rounded,filled\";\n    fillcolor=%s;\n    color=%s;\n", quote("#1e1e1e"), quote(c.Color))
	buf.WriteString("    fontcolor=white;\n")

	for _, n := range c.Nodes {
		fmt.Fprintf(buf, "    %s [label=%s, shape=circle, style=filled, fillcolor=%s];\n",
			quote(qualify(i, n.ID)), quote(fmtLabel(n.ID, n.X, n.Y, opts.Detailed)), quote(geometry.RoleColor(n.Role).Hex()))
	}
	for _, g := range c.Gates {
		fmt.Fprintf(buf, "    %s [label=%s, shape=box, style=\"rounded,filled\", fillcolor=white];\n",
			quote(qualify(i, g.ID)), quote(fmtLabel(string(g.Kind), g.X, g.Y, opts.Detailed)))
	}
	for _, p := range c.MeshPoints {
		fmt.Fprintf(buf, "    %s [label=%s, shape=diamond, style=filled, fillcolor=%s, fontsize=9];\n",
			quote(qualify(i, p.ID)), quote(fmtLabel(p.ID, p.X, p.Y, opts.Detailed)), quote(geometry.ColorMesh.Hex()))
	}
	buf.WriteString("  }\n")
}

func fmtLabel(text string, x, y float64, detailed bool) string {
	if !detailed {
		return text
	}
	return fmt.Sprintf("%s\n(%.2f, %.2f)", text, x, y)
}

// writeWiring emits the edges inside one card.
func writeWiring(edges *edgeSet, i int, c circuit.Card) {
	known := make(map[string]bool)
	for _, n := range c.Nodes {
		known[n.ID] = true
	}
	for _, g := range c.Gates {
		known[g.ID] = true
	}

	for _, g := range c.Gates {
		for _, in := range g.Inputs {
			if known[in] {
				edges.add(qualify(i, in), qualify(i, g.ID), "")
			}
		}
		for _, out := range g.Outputs {
			if known[out] {
				edges.add(qualify(i, g.ID), qualify(i, out), "")
			}
		}
	}
	for _, n := range c.Nodes {
		for _, to := range n.Connections {
			if known[to] && !edges.linked(qualify(i, n.ID), qualify(i, to)) {
				edges.add(qualify(i, n.ID), qualify(i, to), "dir=none, style=dashed")
			}
		}
	}

	at := make(map[[2]float64]string)
	for _, n := range c.Nodes {
		at[[2]float64{n.X, n.Y}] = n.ID
	}
	for _, m := range c.ActiveConnections() {
		from, okF := at[[2]float64{m.FromX, m.FromY}]
		to, okT := at[[2]float64{m.ToX, m.ToY}]
		if okF && okT && from != to {
			edges.add(qualify(i, from), qualify(i, to), "dir=none, color="+quote("#b0a000"))
		}
	}
}

// edgeSet writes each edge once. A→B and B→A count as the same link.
type edgeSet struct {
	buf  *bytes.Buffer
	seen map[[2]string]bool
}

func newEdgeSet(buf *bytes.Buffer) *edgeSet {
	return &edgeSet{buf: buf, seen: make(map[[2]string]bool)}
}

func (s *edgeSet) linked(a, b string) bool {
	return s.seen[[2]string{a, b}] || s.seen[[2]string{b, a}]
}

func (s *edgeSet) add(from, to, attrs string) {
	if s.linked(from, to) {
		return
	}
	s.seen[[2]string{from, to}] = true
	if attrs == "" {
		fmt.Fprintf(s.buf, "  %s -> %s;\n", quote(from), quote(to))
		return
	}
	fmt.Fprintf(s.buf, "  %s -> %s [%s];\n", quote(from), quote(to), attrs)
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one that
// scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
