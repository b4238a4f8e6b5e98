// Package geometry turns a card and its stack offset into 3D primitives.
//
// A card's schematic lives in the unit square. Projection recenters it on the
// origin and scales it by [Footprint], so a schematic point (x, y) lands at
// world ((x-0.5)*2, h, (y-0.5)*2) for some height h that depends on the
// primitive:
//
//	nodes           top face     offset + height
//	connections     mid-plane    offset + height/2
//	mesh points     bottom face  offset
//
// With the fixed stack gap, the mesh layer of one card faces the node layer of
// the card below it.
package geometry

import (
	"fmt"

	"github.com/matzehuels/cardstack/pkg/circuit"
)

// Color is a 0xRRGGBB value.
type Color uint32

// Hex returns the CSS form "#rrggbb".
func (c Color) Hex() string { return fmt.Sprintf("#%06x", uint32(c)&0xffffff) }

// ===== Palette =====

const (
	ColorInput         Color = 0x4a90e2
	ColorOutput        Color = 0xe24a4a
	ColorBidirectional Color = 0x4ae29a
	ColorConnection    Color = 0xffff00
	ColorMesh          Color = 0xffffff
	ColorBackground    Color = 0x121212
)

// ===== Dimensions =====

const (
	// Footprint is the world-space side length of every card.
	Footprint = 2.0
	// Opacity is the translucency of card blocks.
	Opacity = 0.8

	NodeRadius   = 0.05
	NodeSegments = 16
	MeshRadius   = 0.03
	MeshSegments = 8
)

// RoleColor returns the marker color of a node role. Unknown roles share the
// bidirectional color.
func RoleColor(r circuit.Role) Color {
	switch r {
	case circuit.RoleInput:
		return ColorInput
	case circuit.RoleOutput:
		return ColorOutput
	default:
		return ColorBidirectional
	}
}

// World maps a schematic point at height h to world space.
func World(x, y, h float64) Vec3 {
	return Vec3{X: (x - 0.5) * Footprint, Y: h, Z: (y - 0.5) * Footprint}
}

// MarkerKind distinguishes node markers from mesh markers.
type MarkerKind string

const (
	MarkerNode MarkerKind = "node"
	MarkerMesh MarkerKind = "mesh"
)

// Box is a card block. Color is the card's opaque color token.
type Box struct {
	Center  Vec3    `json:"center"`
	Size    Vec3    `json:"size"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

// Min returns the corner with the smallest coordinates.
func (b Box) Min() Vec3 { return b.Center.Sub(b.Size.Scale(0.5)) }

// Max returns the corner with the largest coordinates.
func (b Box) Max() Vec3 { return b.Center.Add(b.Size.Scale(0.5)) }

// Corners returns the eight corners, bottom face first, each face in
// counter-clockwise order seen from above.
func (b Box) Corners() [8]Vec3 {
	lo, hi := b.Min(), b.Max()
	return [8]Vec3{
		{lo.X, lo.Y, lo.Z}, {hi.X, lo.Y, lo.Z}, {hi.X, lo.Y, hi.Z}, {lo.X, lo.Y, hi.Z},
		{lo.X, hi.Y, lo.Z}, {hi.X, hi.Y, lo.Z}, {hi.X, hi.Y, hi.Z}, {lo.X, hi.Y, hi.Z},
	}
}

// Faces lists the six faces as indices into Corners.
var Faces = [6][4]int{
	{0, 1, 2, 3}, // bottom
	{4, 5, 6, 7}, // top
	{0, 1, 5, 4}, // back
	{3, 2, 6, 7}, // front
	{0, 3, 7, 4}, // left
	{1, 2, 6, 5}, // right
}

// Marker is a sphere at a node or mesh point.
type Marker struct {
	ID       string     `json:"id"`
	Kind     MarkerKind `json:"kind"`
	Center   Vec3       `json:"center"`
	Radius   float64    `json:"radius"`
	Segments int        `json:"segments"`
	Color    Color      `json:"color"`
}

// Segment is a line through a card's mid-plane.
type Segment struct {
	From  Vec3  `json:"from"`
	To    Vec3  `json:"to"`
	Color Color `json:"color"`
}

// Group holds the primitives of one card.
type Group struct {
	CardID string    `json:"card_id"`
	Offset float64   `json:"offset"`
	Box    Box       `json:"box"`
	Nodes  []Marker  `json:"nodes"`
	Lines  []Segment `json:"lines"`
	Mesh   []Marker  `json:"mesh"`
}

// Primitives returns the number of primitives in g, the box included.
func (g Group) Primitives() int {
	return 1 + len(g.Nodes) + len(g.Lines) + len(g.Mesh)
}

// Project builds the primitive group of card placed at offset. Inactive
// connections are skipped. Dangling identifiers on the card do not matter:
// projection only reads coordinates.
func Project(card circuit.Card, offset float64) Group {
	top := offset + card.Height
	mid := offset + card.Height/2

	g := Group{
		CardID: card.ID,
		Offset: offset,
		Box: Box{
			Center:  Vec3{0, mid, 0},
			Size:    Vec3{Footprint, card.Height, Footprint},
			Color:   card.Color,
			Opacity: Opacity,
		},
		Nodes: make([]Marker, 0, len(card.Nodes)),
		Lines: make([]Segment, 0, len(card.Matrix)),
		Mesh:  make([]Marker, 0, len(card.MeshPoints)),
	}
	for _, n := range card.Nodes {
		g.Nodes = append(g.Nodes, Marker{
			ID:       n.ID,
			Kind:     MarkerNode,
			Center:   World(n.X, n.Y, top),
			Radius:   NodeRadius,
			Segments: NodeSegments,
			Color:    RoleColor(n.Role),
		})
	}
	for _, c := range card.Matrix {
		if !c.Active {
			continue
		}
		g.Lines = append(g.Lines, Segment{
			From:  World(c.FromX, c.FromY, mid),
			To:    World(c.ToX, c.ToY, mid),
			Color: ColorConnection,
		})
	}
	for _, p := range card.MeshPoints {
		g.Mesh = append(g.Mesh, Marker{
			ID:       p.ID,
			Kind:     MarkerMesh,
			Center:   World(p.X, p.Y, offset),
			Radius:   MeshRadius,
			Segments: MeshSegments,
			Color:    ColorMesh,
		})
	}
	return g
}
