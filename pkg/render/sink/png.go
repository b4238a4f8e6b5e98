package sink

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"

	"github.com/matzehuels/cardstack/pkg/geometry"
	"github.com/matzehuels/cardstack/pkg/scene"
)

// RenderPNG rasterizes the same view as [RenderSVG].
func RenderPNG(s Scene, opts ...Option) ([]byte, error) {
	o := newOptions(opts)
	w, h := o.width, o.height
	if w <= 0 || h <= 0 {
		w, h = scene.DefaultWidth, scene.DefaultHeight
	}
	cam := o.view(s.Layout.Extent, w, h)

	dc := gg.NewContext(w, h)
	bg := rgb(geometry.ColorBackground)
	dc.SetRGB(bg.R, bg.G, bg.B)
	dc.Clear()
	dc.SetLineWidth(1.5)

	for _, sh := range project(s, cam, o.links) {
		dc.SetRGBA(sh.color.R, sh.color.G, sh.color.B, sh.alpha)
		switch sh.kind {
		case shapeFace:
			dc.MoveTo(sh.pts[0][0], sh.pts[0][1])
			for _, p := range sh.pts[1:] {
				dc.LineTo(p[0], p[1])
			}
			dc.ClosePath()
			dc.Fill()
		case shapeLine:
			if sh.dashed {
				dc.SetDash(4, 3)
			}
			dc.DrawLine(sh.pts[0][0], sh.pts[0][1], sh.pts[1][0], sh.pts[1][1])
			dc.Stroke()
			dc.SetDash()
		case shapeDot:
			dc.DrawCircle(sh.pts[0][0], sh.pts[0][1], sh.r)
			dc.Fill()
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
