package sink

import (
	"cmp"
	"slices"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/cardstack/pkg/geometry"
	"github.com/matzehuels/cardstack/pkg/scene"
)

type shapeKind int

const (
	shapeFace shapeKind = iota
	shapeLine
	shapeDot
)

// shape is a primitive flattened to viewport coordinates.
type shape struct {
	kind   shapeKind
	depth  float64
	pts    [][2]float64
	r      float64
	color  colorful.Color
	alpha  float64
	dashed bool
	glyph  rune
}

// faceShade darkens each box face, indexed like geometry.Faces.
var faceShade = [6]float64{0.5, 0, 0.25, 0.25, 0.35, 0.35}

var fallbackColor = colorful.Color{R: 0.5, G: 0.5, B: 0.5}

// parseColor reads a card color token.
func parseColor(token string) colorful.Color {
	c, err := colorful.Hex(token)
	if err != nil {
		return fallbackColor
	}
	return c
}

func rgb(c geometry.Color) colorful.Color {
	return colorful.Color{
		R: float64(c>>16&0xff) / 255,
		G: float64(c>>8&0xff) / 255,
		B: float64(c&0xff) / 255,
	}
}

// project flattens s through cam and orders the result far to near.
// Primitives with any point outside the clip range are dropped.
func project(s Scene, cam *scene.Camera, links bool) []shape {
	var out []shape

	for _, g := range s.Groups {
		base := parseColor(g.Box.Color)
		corners := g.Box.Corners()
		for i, f := range geometry.Faces {
			pts, depth, ok := projectAll(cam, corners[f[0]], corners[f[1]], corners[f[2]], corners[f[3]])
			if !ok {
				continue
			}
			out = append(out, shape{
				kind:  shapeFace,
				depth: depth,
				pts:   pts,
				color: base.BlendRgb(colorful.Color{}, faceShade[i]),
				alpha: g.Box.Opacity,
				glyph: '.',
			})
		}
		for _, l := range g.Lines {
			if sh, ok := line(cam, l.From, l.To, rgb(l.Color)); ok {
				sh.glyph = '='
				out = append(out, sh)
			}
		}
		for _, m := range g.Nodes {
			if sh, ok := dot(cam, m); ok {
				out = append(out, sh)
			}
		}
		for _, m := range g.Mesh {
			if sh, ok := dot(cam, m); ok {
				out = append(out, sh)
			}
		}
	}

	if links {
		for _, l := range s.Links {
			if l.From.CardIndex >= len(s.Layout.Slots) || l.To.CardIndex >= len(s.Layout.Slots) {
				continue
			}
			from := geometry.World(l.From.X, l.From.Y, s.Layout.Slots[l.From.CardIndex].Bottom)
			to := geometry.World(l.To.X, l.To.Y, s.Layout.Slots[l.To.CardIndex].Bottom)
			if sh, ok := line(cam, from, to, rgb(geometry.ColorMesh)); ok {
				sh.dashed = true
				sh.alpha = 0.6
				sh.glyph = ':'
				out = append(out, sh)
			}
		}
	}

	slices.SortStableFunc(out, func(a, b shape) int {
		return cmp.Compare(b.depth, a.depth)
	})
	return out
}

func projectAll(cam *scene.Camera, ps ...geometry.Vec3) ([][2]float64, float64, bool) {
	pts := make([][2]float64, len(ps))
	var sum float64
	for i, p := range ps {
		x, y, d, ok := cam.Project(p)
		if !ok {
			return nil, 0, false
		}
		pts[i] = [2]float64{x, y}
		sum += d
	}
	return pts, sum / float64(len(ps)), true
}

func line(cam *scene.Camera, from, to geometry.Vec3, c colorful.Color) (shape, bool) {
	pts, depth, ok := projectAll(cam, from, to)
	if !ok {
		return shape{}, false
	}
	return shape{kind: shapeLine, depth: depth, pts: pts, color: c, alpha: 1}, true
}

func dot(cam *scene.Camera, m geometry.Marker) (shape, bool) {
	x, y, depth, ok := cam.Project(m.Center)
	if !ok {
		return shape{}, false
	}
	return shape{
		kind:  shapeDot,
		depth: depth,
		pts:   [][2]float64{{x, y}},
		r:     max(m.Radius*cam.PixelScale(depth), 1),
		color: rgb(m.Color),
		alpha: 1,
		glyph: markerGlyph(m),
	}, true
}

func markerGlyph(m geometry.Marker) rune {
	if m.Kind == geometry.MarkerMesh {
		return '+'
	}
	switch m.Color {
	case geometry.ColorInput:
		return 'i'
	case geometry.ColorOutput:
		return 'o'
	default:
		return '*'
	}
}
