package argallery

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// buildFrame returns a group of four box segments bordering a w by h content
// plane with thickness t. The vertical segments span the content height; the
// horizontal ones are the same box turned a quarter about Z and lengthened by
// 2t so they cover the corners. All four share mat.
func buildFrame(w, h, t float64, mat *Material) *Node {
	frame := NewContainer("frame")

	side := BoxGeometry{Width: t, Height: h, Length: t}
	across := BoxGeometry{Width: t, Height: w + 2*t, Length: t}
	quarter := RotateZ(math.Pi / 2)

	segments := []struct {
		name string
		geom BoxGeometry
		pos  r3.Vec
		turn bool
	}{
		{"left", side, r3.Vec{X: -(w/2 + t/2)}, false},
		{"top", across, r3.Vec{Y: h/2 + t/2}, true},
		{"right", side, r3.Vec{X: w/2 + t/2}, false},
		{"bottom", across, r3.Vec{Y: -(h/2 + t/2)}, true},
	}
	for _, s := range segments {
		n := NewSolid(s.name, NodeTypeFrame, s.geom, mat)
		n.Position = s.pos
		if s.turn {
			n.Orientation = quarter
		}
		frame.AddChild(n)
	}
	return frame
}

// frameMaterial returns the material shared by one painting's frame.
func (c *Composer) frameMaterial() *Material {
	fc := c.ctx.cfg.Frame
	if c.frameTex == nil {
		return NewColorMaterial("frame", fc.Color)
	}
	m := NewImageMaterial("frame", c.frameTex)
	tiling := fc.Tiling
	if tiling <= 0 {
		tiling = 1
	}
	m.Tiling = [2]float64{1, tiling}
	return m
}
