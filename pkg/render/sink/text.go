package sink

import (
	"math"
	"strings"
)

// Default text size in character cells.
const (
	DefaultTextCols = 60
	DefaultTextRows = 20
)

// RenderText draws s as a wireframe of characters. Box edges are '.', active
// connections '=', input nodes 'i', output nodes 'o', other nodes '*', mesh
// points '+' and mesh links ':'. Terminal cells are about twice as tall as
// they are wide, so the camera renders at double the row count.
func RenderText(s Scene, opts ...Option) string {
	o := newOptions(opts)
	cols, rows := o.width, o.height
	if cols <= 0 || rows <= 0 {
		cols, rows = DefaultTextCols, DefaultTextRows
	}
	cam := o.view(s.Layout.Extent, cols, rows*2)

	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
	}
	plot := func(x, y float64, r rune) {
		cx, cy := int(math.Floor(x)), int(math.Floor(y/2))
		if cx >= 0 && cx < cols && cy >= 0 && cy < rows {
			grid[cy][cx] = r
		}
	}
	stroke := func(a, b [2]float64, r rune) {
		a, b, ok := clip(a, b, float64(cols), float64(rows*2))
		if !ok {
			return
		}
		steps := int(math.Ceil(math.Max(math.Abs(b[0]-a[0]), math.Abs(b[1]-a[1])/2)))
		if steps == 0 {
			plot(a[0], a[1], r)
			return
		}
		for i := 0; i <= steps; i++ {
			t := float64(i) / float64(steps)
			plot(a[0]+(b[0]-a[0])*t, a[1]+(b[1]-a[1])*t, r)
		}
	}

	for _, sh := range project(s, cam, o.links) {
		switch sh.kind {
		case shapeFace:
			for i := range sh.pts {
				stroke(sh.pts[i], sh.pts[(i+1)%len(sh.pts)], sh.glyph)
			}
		case shapeLine:
			stroke(sh.pts[0], sh.pts[1], sh.glyph)
		case shapeDot:
			plot(sh.pts[0][0], sh.pts[0][1], sh.glyph)
		}
	}

	lines := make([]string, rows)
	for i, row := range grid {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}

// clip cuts the segment a-b to the rectangle [0,w]x[0,h] using Liang-Barsky.
// It reports false when nothing of the segment is inside or a coordinate is
// not finite.
func clip(a, b [2]float64, w, h float64) ([2]float64, [2]float64, bool) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	for _, v := range [...]float64{a[0], a[1], b[0], b[1], dx, dy} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return a, b, false
		}
	}

	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{{-dx, a[0]}, {dx, w - a[0]}, {-dy, a[1]}, {dy, h - a[1]}} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, r)
		}
	}
	return [2]float64{a[0] + t0*dx, a[1] + t0*dy}, [2]float64{a[0] + t1*dx, a[1] + t1*dy}, true
}
