package argallery

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// defaultFOV is the vertical field of view used when none is configured.
const defaultFOV = 60 * math.Pi / 180

// Projection is a pinhole camera model mapping camera space to a viewport of
// Width by Height pixels. Cameras look down their local -Z axis with +Y up;
// screen Y grows downward.
type Projection struct {
	FOV    float64 // vertical field of view in radians
	Width  float64
	Height float64
	Near   float64 // points closer than Near are not projected
}

// valid reports whether the projection has a usable viewport.
func (p Projection) valid() bool {
	return p.Width > 0 && p.Height > 0 && p.FOV > 0 && p.FOV < math.Pi
}

// focal returns the focal length in pixels.
func (p Projection) focal() float64 {
	return p.Height / 2 / math.Tan(p.FOV/2)
}

// Ray returns the world-space ray through the screen point pt for a camera
// with the given world transform. It reports false when pt lies outside the
// viewport.
func (p Projection) Ray(camera Mat4, pt Vec2) (origin, dir r3.Vec, ok bool) {
	if !p.valid() || !(Rect{Width: p.Width, Height: p.Height}).Contains(pt.X, pt.Y) {
		return r3.Vec{}, r3.Vec{}, false
	}
	f := p.focal()
	local := r3.Vec{X: pt.X - p.Width/2, Y: p.Height/2 - pt.Y, Z: -f}
	origin = camera.Translation()
	dir = r3.Unit(camera.MulDir(local))
	return origin, dir, true
}

// Project maps a camera-space point to screen coordinates and returns its
// depth along the view direction. It reports false for points behind the
// near plane.
func (p Projection) Project(local r3.Vec) (pt Vec2, depth float64, ok bool) {
	near := p.Near
	if near <= 0 {
		near = 0.01
	}
	depth = -local.Z
	if depth < near {
		return Vec2{}, depth, false
	}
	f := p.focal()
	return Vec2{
		X: p.Width/2 + local.X*f/depth,
		Y: p.Height/2 - local.Y*f/depth,
	}, depth, true
}
