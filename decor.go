package argallery

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/spatial/r3"
)

// buildDecorations returns a spinning group of four cubes sitting on the
// corners of a w by h content plane. Each call draws a fresh cube size and
// fresh spin rates.
func (c *Composer) buildDecorations(w, h float64) *Node {
	d := c.ctx.cfg.Decorations
	group := NewSolid("decorations", NodeTypeDecoration, nil, nil)
	size := d.Size.Lerp(c.rng.Float64())
	cube := BoxGeometry{Width: size, Height: size, Length: size}
	mat := c.decorMaterial()

	corners := [4]r3.Vec{
		{X: -w / 2, Y: h / 2},
		{X: w / 2, Y: h / 2},
		{X: w / 2, Y: -h / 2},
		{X: -w / 2, Y: -h / 2},
	}
	for i, p := range corners {
		n := NewSolid(fmt.Sprintf("cube%d", i), NodeTypeDecoration, cube, mat)
		n.Position = p
		group.AddChild(n)
		c.ctx.scene.AddSpin(NewSpin(n, c.randomRates()))
	}
	c.ctx.scene.AddSpin(NewSpin(group, c.randomRates()))
	return group
}

// randomRates draws per-axis angular rates with random signs.
func (c *Composer) randomRates() r3.Vec {
	rate := func() float64 {
		r := c.ctx.cfg.Decorations.Rate.Lerp(c.rng.Float64())
		if c.rng.IntN(2) == 0 {
			return -r
		}
		return r
	}
	return r3.Vec{X: rate(), Y: rate(), Z: rate()}
}

// decorMaterial textures the cubes with a snapshot of the current view, or
// falls back to the frame color when no snapshot is available.
func (c *Composer) decorMaterial() *Material {
	var snap image.Image
	if v := c.ctx.View(); v != nil {
		snap = v.Snapshot()
	}
	if snap == nil || snap.Bounds().Empty() {
		return NewColorMaterial("decoration", c.ctx.cfg.Frame.Color)
	}
	if n := c.ctx.cfg.Decorations.SnapshotSize; n > 0 {
		snap = downscale(snap, n)
	}
	return NewImageMaterial("decoration", snap)
}

// downscale resamples src into an n by n image.
func downscale(src image.Image, n int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, n, n))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
