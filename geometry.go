package argallery

import (
	"image"

	"gonum.org/v1/gonum/spatial/r3"
)

// Geometry describes the shape a node draws, in the node's local space.
type Geometry interface {
	// Bounds returns the local-space axis-aligned bounding box.
	Bounds() (min, max r3.Vec)
	// Mesh returns triangles with texture coordinates in [0, 1].
	Mesh() Mesh
}

// Mesh is an indexed triangle list.
type Mesh struct {
	Positions []r3.Vec
	UVs       [][2]float64
	Indices   []uint16
}

// PlaneGeometry is a rectangle in the local XY plane, centered on the origin
// and facing +Z.
type PlaneGeometry struct {
	Width, Height float64
}

// Bounds implements Geometry.
func (p PlaneGeometry) Bounds() (min, max r3.Vec) {
	return r3.Vec{X: -p.Width / 2, Y: -p.Height / 2}, r3.Vec{X: p.Width / 2, Y: p.Height / 2}
}

// Mesh implements Geometry. Texture v runs top to bottom.
func (p PlaneGeometry) Mesh() Mesh {
	hw, hh := p.Width/2, p.Height/2
	return Mesh{
		Positions: []r3.Vec{
			{X: -hw, Y: hh}, {X: hw, Y: hh}, {X: hw, Y: -hh}, {X: -hw, Y: -hh},
		},
		UVs:     [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		Indices: []uint16{0, 3, 2, 0, 2, 1},
	}
}

// BoxGeometry is a cuboid centered on the origin. Width runs along X, Height
// along Y and Length along Z.
type BoxGeometry struct {
	Width, Height, Length float64
}

// Bounds implements Geometry.
func (b BoxGeometry) Bounds() (min, max r3.Vec) {
	h := r3.Vec{X: b.Width / 2, Y: b.Height / 2, Z: b.Length / 2}
	return r3.Scale(-1, h), h
}

// boxFaces lists each face as four corner sign triples, counter-clockwise
// when seen from outside.
var boxFaces = [6][4][3]float64{
	{{-1, 1, 1}, {-1, -1, 1}, {1, -1, 1}, {1, 1, 1}},     // +Z
	{{1, 1, -1}, {1, -1, -1}, {-1, -1, -1}, {-1, 1, -1}}, // -Z
	{{1, 1, 1}, {1, -1, 1}, {1, -1, -1}, {1, 1, -1}},     // +X
	{{-1, 1, -1}, {-1, -1, -1}, {-1, -1, 1}, {-1, 1, 1}}, // -X
	{{-1, 1, -1}, {-1, 1, 1}, {1, 1, 1}, {1, 1, -1}},     // +Y
	{{-1, -1, 1}, {-1, -1, -1}, {1, -1, -1}, {1, -1, 1}}, // -Y
}

// Mesh implements Geometry. Every face carries the full texture.
func (b BoxGeometry) Mesh() Mesh {
	hw, hh, hl := b.Width/2, b.Height/2, b.Length/2
	m := Mesh{
		Positions: make([]r3.Vec, 0, 24),
		UVs:       make([][2]float64, 0, 24),
		Indices:   make([]uint16, 0, 36),
	}
	uvs := [4][2]float64{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
	for _, face := range boxFaces {
		base := uint16(len(m.Positions))
		for i, c := range face {
			m.Positions = append(m.Positions, r3.Vec{X: c[0] * hw, Y: c[1] * hh, Z: c[2] * hl})
			m.UVs = append(m.UVs, uvs[i])
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// --- Material ---

// Material describes a surface: a flat color, optionally multiplied by a
// texture that repeats Tiling times along u and v.
type Material struct {
	Name    string
	Color   Color
	Texture image.Image
	Tiling  [2]float64
	// DoubleSided draws back faces too.
	DoubleSided bool
}

// NewColorMaterial returns an untextured material.
func NewColorMaterial(name string, c Color) *Material {
	return &Material{Name: name, Color: c, Tiling: [2]float64{1, 1}, DoubleSided: true}
}

// NewImageMaterial returns a material showing img once across the surface.
func NewImageMaterial(name string, img image.Image) *Material {
	return &Material{Name: name, Color: ColorWhite, Texture: img, Tiling: [2]float64{1, 1}, DoubleSided: true}
}
