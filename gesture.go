package argallery

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// minPinchFactor bounds the per-event scale factor so a sharp pinch-in
// shrinks a painting without flipping it.
const minPinchFactor = 0.05

// PinchEvent is one update of a pinch gesture. Scale is the gesture's
// cumulative scale factor since it began.
type PinchEvent struct {
	Scale float64
	State GestureState
}

// Dispatcher routes taps to placement and pinches to the current painting's
// scale.
type Dispatcher struct {
	ctx       *Context
	composer  *Composer
	mode      PlacementMode
	lastScale float64
}

// NewDispatcher creates a dispatcher in the configured placement mode.
func NewDispatcher(ctx *Context, composer *Composer) *Dispatcher {
	return &Dispatcher{ctx: ctx, composer: composer, mode: ctx.cfg.Mode, lastScale: 1}
}

// Mode returns the placement mode taps use.
func (d *Dispatcher) Mode() PlacementMode { return d.mode }

// SetMode switches the placement mode.
func (d *Dispatcher) SetMode(m PlacementMode) { d.mode = m }

// Tap places a painting for a tap at pt and returns it. In wall mode the tap
// is raycast onto the tracked walls and nothing happens unless it strikes a
// wall that still has a grid. In free-float mode the painting is always
// placed in front of the camera.
func (d *Dispatcher) Tap(pt Vec2) *Node {
	view := d.ctx.View()
	if d.mode == PlaceFreeFloat {
		if view == nil {
			return nil
		}
		return d.composer.PlaceFreeFloat(view.PointOfView())
	}

	hit, ok := ResolveRaycast(view, d.ctx.Session(), pt)
	if !ok || hit.Anchor == nil {
		d.missed(pt, "no hit")
		return nil
	}
	grid := d.ctx.Tracker().Grid(hit.Anchor.ID)
	if grid == nil {
		d.missed(pt, "no grid for anchor "+hit.Anchor.ID.String())
		return nil
	}
	return d.composer.PlaceOnWall(hit, grid)
}

func (d *Dispatcher) missed(pt Vec2, why string) {
	debugf("tap at (%.0f, %.0f): %s", pt.X, pt.Y, why)
	d.ctx.scene.fireTapMissed(TapContext{Point: pt, Mode: d.mode})
}

// Pinch applies one pinch update to the current painting. Each update scales
// the painting by 1 plus the change in gesture scale since the previous
// update, so successive updates compound. The recorded factor restarts at 1
// when a gesture begins, ends or is cancelled; a cancelled update scales
// nothing.
func (d *Dispatcher) Pinch(ev PinchEvent) {
	switch ev.State {
	case GestureBegan:
		d.lastScale = 1
	case GestureCancelled:
		d.lastScale = 1
		return
	}
	delta := ev.Scale - d.lastScale
	d.lastScale = ev.Scale
	if ev.State == GestureEnded {
		d.lastScale = 1
	}

	p := d.ctx.Current()
	if p == nil {
		return
	}
	f := max(1+delta, minPinchFactor)
	p.SetScale(r3.Vec{X: p.Scale.X * f, Y: p.Scale.Y * f, Z: p.Scale.Z * f})

	info, _ := PaintingInfoOf(p)
	d.ctx.scene.firePainting(EventScaled, PaintingContext{
		Node:       p,
		Mode:       info.Mode,
		AnchorID:   info.AnchorID,
		Position:   p.WorldPosition(),
		Scale:      p.Scale,
		ScaleDelta: delta,
	})
}
