package scene

import (
	"math"

	"github.com/matzehuels/cardstack/pkg/geometry"
)

// Camera defaults.
const (
	DefaultFOV    = 75.0
	DefaultNear   = 0.1
	DefaultFar    = 1000.0
	DefaultWidth  = 800
	DefaultHeight = 600
)

// minPolar keeps orbiting away from the poles where the up vector degenerates.
const minPolar = 0.05

// Camera is a perspective camera looking at a target point.
type Camera struct {
	FOV       float64 // vertical field of view, degrees
	Near, Far float64
	Position  geometry.Vec3
	Target    geometry.Vec3
	Up        geometry.Vec3

	width, height int
	aspect        float64
}

// NewCamera returns a camera at (0, 2, 4) looking at the origin with a
// DefaultWidth × DefaultHeight viewport.
func NewCamera() *Camera {
	c := &Camera{
		FOV:      DefaultFOV,
		Near:     DefaultNear,
		Far:      DefaultFar,
		Position: geometry.Vec3{X: 0, Y: 2, Z: 4},
		Up:       geometry.Vec3{Y: 1},
	}
	c.Resize(DefaultWidth, DefaultHeight)
	return c
}

// Resize sets the viewport size and recomputes the aspect ratio.
// Non-positive sizes are ignored.
func (c *Camera) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.width, c.height = width, height
	c.aspect = float64(width) / float64(height)
}

// Viewport returns the current viewport size.
func (c Camera) Viewport() (width, height int) { return c.width, c.height }

// Aspect returns width / height of the viewport.
func (c Camera) Aspect() float64 { return c.aspect }

// basis returns the camera's forward, right and up unit vectors.
func (c *Camera) basis() (forward, right, up geometry.Vec3) {
	forward = c.Target.Sub(c.Position).Normalize()
	right = forward.Cross(c.Up).Normalize()
	up = right.Cross(forward)
	return forward, right, up
}

// Project maps a world point to viewport pixels, origin top left. depth is
// the distance along the view direction. ok is false for points outside the
// near and far planes.
func (c *Camera) Project(p geometry.Vec3) (x, y, depth float64, ok bool) {
	forward, right, up := c.basis()
	d := p.Sub(c.Position)
	depth = d.Dot(forward)
	if depth < c.Near || depth > c.Far {
		return 0, 0, depth, false
	}
	f := 1 / math.Tan(c.FOV*math.Pi/360)
	ndcX := d.Dot(right) * f / (c.aspect * depth)
	ndcY := d.Dot(up) * f / depth
	x = (ndcX + 1) / 2 * float64(c.width)
	y = (1 - ndcY) / 2 * float64(c.height)
	return x, y, depth, true
}

// PixelScale returns how many viewport pixels one world unit spans at the
// given depth.
func (c *Camera) PixelScale(depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	return float64(c.height) / 2 / (math.Tan(c.FOV*math.Pi/360) * depth)
}

// Orbit rotates the camera around its target by the given azimuth and polar
// deltas in radians, keeping its distance.
func (c *Camera) Orbit(dAzimuth, dPolar float64) {
	off := c.Position.Sub(c.Target)
	r := off.Len()
	if r == 0 {
		return
	}
	azimuth := math.Atan2(off.X, off.Z) + dAzimuth
	polar := math.Acos(off.Y/r) + dPolar
	polar = math.Max(minPolar, math.Min(math.Pi-minPolar, polar))
	c.Position = c.Target.Add(geometry.Vec3{
		X: r * math.Sin(polar) * math.Sin(azimuth),
		Y: r * math.Cos(polar),
		Z: r * math.Sin(polar) * math.Cos(azimuth),
	})
}

// Zoom scales the camera's distance to its target by factor.
func (c *Camera) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	c.Position = c.Target.Add(c.Position.Sub(c.Target).Scale(factor))
}

// Frame points the camera at the middle of a stack of the given extent.
func (c *Camera) Frame(extent float64) {
	delta := geometry.Vec3{Y: extent/2 - c.Target.Y}
	c.Target = c.Target.Add(delta)
	c.Position = c.Position.Add(delta)
}
