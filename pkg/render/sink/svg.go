package sink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/cardstack/pkg/geometry"
	"github.com/matzehuels/cardstack/pkg/scene"
)

// RenderSVG draws s through the camera as an SVG document. Faces, lines and
// markers are emitted far to near so nearer primitives paint over farther
// ones.
func RenderSVG(s Scene, opts ...Option) []byte {
	o := newOptions(opts)
	w, h := o.width, o.height
	if w <= 0 || h <= 0 {
		w, h = scene.DefaultWidth, scene.DefaultHeight
	}
	cam := o.view(s.Layout.Extent, w, h)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n", w, h, w, h)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", geometry.ColorBackground.Hex())

	for _, sh := range project(s, cam, o.links) {
		switch sh.kind {
		case shapeFace:
			fmt.Fprintf(&buf, `  <polygon points="%s" fill="%s" fill-opacity="%.2f"/>`+"\n",
				svgPoints(sh.pts), sh.color.Hex(), sh.alpha)
		case shapeLine:
			dash := ""
			if sh.dashed {
				dash = ` stroke-dasharray="4 3"`
			}
			fmt.Fprintf(&buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-opacity="%.2f" stroke-width="1.5"%s/>`+"\n",
				sh.pts[0][0], sh.pts[0][1], sh.pts[1][0], sh.pts[1][1], sh.color.Hex(), sh.alpha, dash)
		case shapeDot:
			fmt.Fprintf(&buf, `  <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n",
				sh.pts[0][0], sh.pts[0][1], sh.r, sh.color.Hex())
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func svgPoints(pts [][2]float64) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = fmt.Sprintf("%.2f,%.2f", p[0], p[1])
	}
	return strings.Join(parts, " ")
}
