package sink

import (
	"github.com/matzehuels/cardstack/pkg/circuit"
	"github.com/matzehuels/cardstack/pkg/geometry"
	"github.com/matzehuels/cardstack/pkg/layout"
	"github.com/matzehuels/cardstack/pkg/mesh"
	"github.com/matzehuels/cardstack/pkg/scene"
)

// Scene is everything a sink draws.
type Scene struct {
	Layout layout.Layout    `json:"layout"`
	Groups []geometry.Group `json:"groups"`
	Links  []mesh.Link      `json:"links,omitempty"`
}

// NewScene lays out and projects cards and resolves their mesh links.
func NewScene(cards []circuit.Card) Scene {
	l, groups := scene.Build(cards)
	return Scene{Layout: l, Groups: groups, Links: mesh.Resolve(cards).Links}
}

// Option configures the view sinks.
type Option func(*options)

type options struct {
	camera        *scene.Camera
	width, height int
	links         bool
}

// WithCamera renders through a copy of cam instead of the default camera.
func WithCamera(cam *scene.Camera) Option { return func(o *options) { o.camera = cam } }

// WithSize sets the output size: pixels for SVG and PNG, character cells for
// text.
func WithSize(width, height int) Option {
	return func(o *options) { o.width, o.height = width, height }
}

// WithLinks draws resolved mesh links as dashed lines between cards.
func WithLinks() Option { return func(o *options) { o.links = true } }

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// view returns the camera to draw through, sized to width × height.
func (o options) view(extent float64, width, height int) *scene.Camera {
	var cam scene.Camera
	if o.camera != nil {
		cam = *o.camera
	} else {
		cam = *scene.NewCamera()
		cam.Frame(extent)
		if extent > geometry.Footprint {
			cam.Zoom(extent / geometry.Footprint)
		}
	}
	cam.Resize(width, height)
	return &cam
}
