package argallery

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/google/uuid"
)

const (
	gridCellSize   = 0.1 // meters per texture repeat
	gridTextureDim = 32  // pixels
)

// GridNode is the visual placeholder drawn over a detected wall, keyed 1:1 to
// a plane anchor by ID.
type GridNode struct {
	node   *Node
	anchor PlaneAnchor
}

// NewGridNode builds a grid matching the anchor's current extent.
func NewGridNode(anchor PlaneAnchor, tint Color) *GridNode {
	mat := &Material{
		Name:        "grid",
		Color:       tint,
		Texture:     gridTexture(),
		DoubleSided: true,
	}
	n := NewSolid("grid", NodeTypeGrid, nil, mat)
	n.AnchorID = anchor.ID
	// Planes are built in XY; lay this one into the anchor's XZ plane.
	n.Orientation = RotateX(-math.Pi / 2)
	g := &GridNode{node: n}
	g.Update(anchor)
	return g
}

// Node returns the grid's scene node.
func (g *GridNode) Node() *Node { return g.node }

// AnchorID returns the identity of the anchor this grid renders.
func (g *GridNode) AnchorID() uuid.UUID { return g.anchor.ID }

// Anchor returns the last anchor snapshot applied to the grid.
func (g *GridNode) Anchor() PlaneAnchor { return g.anchor }

// Extent returns the grid's current width and height.
func (g *GridNode) Extent() (width, height float64) {
	p := g.node.Geometry.(PlaneGeometry)
	return p.Width, p.Height
}

// Update refreshes the grid's geometry and position in place from a newer
// snapshot of the same anchor.
func (g *GridNode) Update(anchor PlaneAnchor) {
	g.anchor = anchor
	w, h := anchor.Extent.X, anchor.Extent.Z
	g.node.Geometry = PlaneGeometry{Width: w, Height: h}
	g.node.Material.Tiling = [2]float64{math.Max(w/gridCellSize, 1), math.Max(h/gridCellSize, 1)}
	g.node.SetPosition(anchor.Center)
}

var (
	gridTexOnce sync.Once
	gridTex     *image.NRGBA
)

// gridTexture returns the shared single-cell line texture.
func gridTexture() image.Image {
	gridTexOnce.Do(func() {
		gridTex = image.NewNRGBA(image.Rect(0, 0, gridTextureDim, gridTextureDim))
		line := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		fill := color.NRGBA{R: 255, G: 255, B: 255, A: 40}
		for y := 0; y < gridTextureDim; y++ {
			for x := 0; x < gridTextureDim; x++ {
				if x == 0 || y == 0 {
					gridTex.SetNRGBA(x, y, line)
				} else {
					gridTex.SetNRGBA(x, y, fill)
				}
			}
		}
	})
	return gridTex
}
