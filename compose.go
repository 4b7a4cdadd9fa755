package argallery

import (
	"image"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// PaintingInfo is stored in a painting node's UserData.
type PaintingInfo struct {
	Width    float64 // content width in meters
	Height   float64 // content height in meters
	Mode     PlacementMode
	AnchorID uuid.UUID // zero for free-float placements
}

// PaintingInfoOf returns the info of a painting node.
func PaintingInfoOf(n *Node) (PaintingInfo, bool) {
	if n == nil || n.Type != NodeTypePainting {
		return PaintingInfo{}, false
	}
	info, ok := n.UserData.(PaintingInfo)
	return info, ok
}

// PaintingSize maps image pixel dimensions to a physical size whose shorter
// side is short. The longer pixel side maps to the longer physical side.
// Degenerate dimensions give a short by short square.
func PaintingSize(px image.Point, short float64) (width, height float64) {
	w, h := float64(px.X), float64(px.Y)
	if w <= 0 || h <= 0 {
		return short, short
	}
	if w >= h {
		return short * w / h, short
	}
	return short, short * h / w
}

// Composer builds painting node graphs and inserts them into the scene.
type Composer struct {
	ctx      *Context
	rng      *rand.Rand
	frameTex image.Image
}

// NewComposer creates a composer over ctx. Decoration randomness is seeded
// from the config seed, or randomly when it is zero.
func NewComposer(ctx *Context) *Composer {
	seed := ctx.cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Composer{
		ctx: ctx,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// SetFrameTexture sets the image tiled over frame segments. nil restores the
// flat frame color.
func (c *Composer) SetFrameTexture(img image.Image) {
	c.frameTex = img
}

// BuildPainting returns an unattached painting for img: the content plane,
// its frame and, when enabled, the decorations. A nil img gives a blank
// canvas.
func (c *Composer) BuildPainting(img image.Image) *Node {
	var px image.Point
	var mat *Material
	if img != nil {
		px = img.Bounds().Size()
		mat = NewImageMaterial("content", img)
	} else {
		mat = NewColorMaterial("content", ColorWhite)
	}
	w, h := PaintingSize(px, c.ctx.cfg.ShortSide)

	p := NewSolid("painting", NodeTypePainting, nil, nil)
	p.UserData = PaintingInfo{Width: w, Height: h}
	p.AddChild(NewSolid("content", NodeTypeContent, PlaneGeometry{Width: w, Height: h}, mat))
	if t := c.ctx.cfg.Frame.Thickness; t > 0 {
		p.AddChild(buildFrame(w, h, t, c.frameMaterial()))
	}
	if c.ctx.cfg.Decorations.Enabled {
		p.AddChild(c.buildDecorations(w, h))
	}
	return p
}

// PlaceOnWall inserts a painting of the selected image at the hit position,
// standing upright on the struck wall, and consumes grid. It returns nil
// without touching the scene when grid does not belong to the struck anchor.
func (c *Composer) PlaceOnWall(hit RaycastResult, grid *GridNode) *Node {
	if grid == nil || hit.Anchor == nil || grid.AnchorID() != hit.Anchor.ID {
		return nil
	}
	id := hit.Anchor.ID
	p := c.BuildPainting(c.ctx.Image())
	c.setInfo(p, PlaceOnWall, id)
	// Anchor space has the wall in XZ; the content plane lives in XY.
	p.SetOrientation(quat.Mul(hit.Anchor.Transform.Rotation(), RotateX(-math.Pi/2)))
	p.SetPosition(hit.Position())

	c.ctx.scene.Root().AddChild(p)
	c.ctx.tracker.Consume(id)
	c.ctx.setCurrent(p)
	c.firePlaced(p, PlaceOnWall, id)
	return p
}

// PlaceFreeFloat replaces the previous free-float painting with a new one of
// the selected image, placed in front of pov and facing the same way. Wall
// paintings are left in place.
func (c *Composer) PlaceFreeFloat(pov *Node) *Node {
	if pov == nil {
		return nil
	}
	if prev := c.ctx.FreeFloat(); prev != nil {
		c.Remove(prev)
	}
	p := c.BuildPainting(c.ctx.Image())
	c.setInfo(p, PlaceFreeFloat, uuid.Nil)
	p.SetPosition(pov.ConvertPosition(r3.Vec{Z: -c.ctx.cfg.FreeFloatDistance}, nil))
	p.SetOrientation(pov.WorldOrientation())

	c.ctx.scene.Root().AddChild(p)
	c.ctx.setCurrent(p)
	c.ctx.setFreeFloat(p)
	c.firePlaced(p, PlaceFreeFloat, uuid.Nil)
	return p
}

// Remove takes a painting out of the scene and disposes it. It reports false
// for nodes that are not live paintings.
func (c *Composer) Remove(p *Node) bool {
	if p == nil || p.IsDisposed() || p.Type != NodeTypePainting {
		return false
	}
	info, _ := PaintingInfoOf(p)
	c.ctx.scene.firePainting(EventRemoved, PaintingContext{
		Node:     p,
		Mode:     info.Mode,
		AnchorID: info.AnchorID,
		Position: p.WorldPosition(),
		Scale:    p.Scale,
	})
	if c.ctx.current == p {
		c.ctx.setCurrent(nil)
	}
	if c.ctx.float == p {
		c.ctx.setFreeFloat(nil)
	}
	p.Dispose()
	return true
}

func (c *Composer) setInfo(p *Node, mode PlacementMode, id uuid.UUID) {
	info, _ := p.UserData.(PaintingInfo)
	info.Mode = mode
	info.AnchorID = id
	p.UserData = info
}

func (c *Composer) firePlaced(p *Node, mode PlacementMode, id uuid.UUID) {
	c.ctx.scene.firePainting(EventPlaced, PaintingContext{
		Node:     p,
		Mode:     mode,
		AnchorID: id,
		Position: p.WorldPosition(),
		Scale:    p.Scale,
	})
}
