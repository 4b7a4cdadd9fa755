package argallery

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestTapPlacesOnWall(t *testing.T) {
	r := newTestRig(t, DefaultConfig())
	r.sim.SetCameraPose(r3.Vec{X: 1, Y: 2, Z: 10}, 0, 0)
	a := NewWallAnchor(r3.Vec{X: 1, Y: 2, Z: 3}, 0, 2, 2)
	r.sim.AddAnchor(a)

	p := r.dispatcher.Tap(screenCenter)
	if p == nil {
		t.Fatal("tap on a wall with a grid should place a painting")
	}
	assertVecNear(t, "position", p.WorldPosition(), r3.Vec{X: 1, Y: 2, Z: 3})
	// Content faces the wall normal, back towards the camera.
	facing := Rotate(p.WorldOrientation(), r3.Vec{Z: 1})
	assertVecNear(t, "facing", facing, a.Normal())
	if r.ctx.Tracker().Grid(a.ID) != nil {
		t.Error("the wall's grid should be consumed")
	}
	if r.sim.AnchorNode(a.ID).NumChildren() != 0 {
		t.Error("the consumed grid should leave the scene")
	}
}

func TestTapOnConsumedWallMisses(t *testing.T) {
	r := newTestRig(t, DefaultConfig())
	r.sim.AddAnchor(NewWallAnchor(r3.Vec{Z: -2}, 0, 2, 2))
	var missed []TapContext
	r.scene.OnTapMissed(func(ctx TapContext) { missed = append(missed, ctx) })

	if r.dispatcher.Tap(screenCenter) == nil {
		t.Fatal("first tap should place")
	}
	if r.dispatcher.Tap(screenCenter) != nil {
		t.Error("second tap on the same wall should place nothing")
	}
	if n := len(r.scene.Paintings()); n != 1 {
		t.Errorf("paintings = %d, want 1", n)
	}
	if len(missed) != 1 || missed[0].Point != screenCenter || missed[0].Mode != PlaceOnWall {
		t.Errorf("TapMissed contexts = %v", missed)
	}
}

func TestTapWithoutHitLeavesSceneUnchanged(t *testing.T) {
	r := newTestRig(t, DefaultConfig())
	r.sim.AddAnchor(NewWallAnchor(r3.Vec{X: 10, Z: -2}, 0, 1, 1))
	before := r.scene.Root().NumChildren()
	gridsBefore := r.ctx.Tracker().Len()
	var missed int
	r.scene.OnTapMissed(func(TapContext) { missed++ })

	if p := r.dispatcher.Tap(screenCenter); p != nil {
		t.Error("tap that hits nothing should place nothing")
	}
	if r.scene.Root().NumChildren() != before || r.ctx.Tracker().Len() != gridsBefore {
		t.Error("scene and grids should be unchanged")
	}
	if r.ctx.Current() != nil {
		t.Error("current painting should stay unset")
	}
	if missed != 1 {
		t.Errorf("TapMissed fired %d times, want 1", missed)
	}
}

func TestTapWhilePausedMisses(t *testing.T) {
	r := newTestRig(t, DefaultConfig())
	r.sim.AddAnchor(NewWallAnchor(r3.Vec{Z: -2}, 0, 2, 2))
	r.sim.Pause()
	if r.dispatcher.Tap(screenCenter) != nil {
		t.Error("paused session should not place")
	}
}

func TestTapFreeFloatIgnoresWalls(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = PlaceFreeFloat
	r := newTestRig(t, cfg)
	r.sim.AddAnchor(NewWallAnchor(r3.Vec{Z: -2}, 0, 2, 2))

	p := r.dispatcher.Tap(Vec2{X: 5, Y: 5})
	if p == nil {
		t.Fatal("free-float tap should always place")
	}
	assertVecNear(t, "position", p.WorldPosition(), r3.Vec{Z: -0.7})
	if r.ctx.Tracker().Len() != 1 {
		t.Error("free-float placement should not consume grids")
	}
}

func TestTapFreeFloatKeepsOnePainting(t *testing.T) {
	r := newTestRig(t, DefaultConfig())
	r.dispatcher.SetMode(PlaceFreeFloat)
	if r.dispatcher.Mode() != PlaceFreeFloat {
		t.Fatal("SetMode did not switch the mode")
	}
	var last *Node
	for i := 0; i < 3; i++ {
		last = r.dispatcher.Tap(screenCenter)
	}
	if got := r.scene.Paintings(); len(got) != 1 || got[0] != last {
		t.Errorf("paintings = %d, want only the last", len(got))
	}
}

func TestTapFreeFloatKeepsWallPaintings(t *testing.T) {
	r := newTestRig(t, DefaultConfig())
	r.sim.AddAnchor(NewWallAnchor(r3.Vec{Z: -2}, 0, 2, 2))
	wall := r.dispatcher.Tap(screenCenter)
	if wall == nil {
		t.Fatal("wall tap should place")
	}

	r.dispatcher.SetMode(PlaceFreeFloat)
	float1 := r.dispatcher.Tap(screenCenter)
	if wall.IsDisposed() {
		t.Fatal("free-float placement disposed the wall painting")
	}
	if n := len(r.scene.Paintings()); n != 2 {
		t.Errorf("paintings = %d, want 2", n)
	}
	if r.ctx.Current() != float1 {
		t.Error("the free-float painting should become the pinch target")
	}

	float2 := r.dispatcher.Tap(screenCenter)
	if !float1.IsDisposed() || wall.IsDisposed() {
		t.Error("a second free-float tap should replace only the free-float painting")
	}
	got := r.scene.Paintings()
	if len(got) != 2 || got[0] != wall || got[1] != float2 {
		t.Errorf("paintings = %d, want the wall painting and the latest free-float", len(got))
	}
}

func TestTapWallKeepsFreeFloatPainting(t *testing.T) {
	r := newTestRig(t, DefaultConfig())
	r.dispatcher.SetMode(PlaceFreeFloat)
	ff := r.dispatcher.Tap(screenCenter)

	r.sim.AddAnchor(NewWallAnchor(r3.Vec{Z: -2}, 0, 2, 2))
	r.dispatcher.SetMode(PlaceOnWall)
	wall := r.dispatcher.Tap(screenCenter)
	if wall == nil {
		t.Fatal("wall tap should place")
	}
	if ff.IsDisposed() {
		t.Error("wall placement should not remove the free-float painting")
	}
	if r.ctx.FreeFloat() != ff || r.ctx.Current() != wall {
		t.Error("free-float slot and pinch target are tracked separately")
	}
}

func TestPinchCompoundsIncrements(t *testing.T) {
	r := newTestRig(t, DefaultConfig())
	r.dispatcher.SetMode(PlaceFreeFloat)
	p := r.dispatcher.Tap(screenCenter)

	var deltas []float64
	r.scene.OnScaled(func(ctx PaintingContext) { deltas = append(deltas, ctx.ScaleDelta) })

	r.dispatcher.Pinch(PinchEvent{Scale: 1.0, State: GestureBegan})
	r.dispatcher.Pinch(PinchEvent{Scale: 1.1})
	r.dispatcher.Pinch(PinchEvent{Scale: 1.3})
	assertNear(t, "scale", p.Scale.X, 1.32)
	assertNear(t, "scale y", p.Scale.Y, 1.32)
	assertNear(t, "scale z", p.Scale.Z, 1.32)

	r.dispatcher.Pinch(PinchEvent{Scale: 1.3, State: GestureEnded})
	assertNear(t, "scale after end", p.Scale.X, 1.32)

	if len(deltas) != 4 {
		t.Fatalf("Scaled fired %d times, want 4", len(deltas))
	}
	assertNear(t, "delta 1", deltas[1], 0.1)
	assertNear(t, "delta 2", deltas[2], 0.2)
}

func TestPinchRestartsEachGesture(t *testing.T) {
	r := newTestRig(t, DefaultConfig())
	r.dispatcher.SetMode(PlaceFreeFloat)
	p := r.dispatcher.Tap(screenCenter)

	r.dispatcher.Pinch(PinchEvent{Scale: 1, State: GestureBegan})
	r.dispatcher.Pinch(PinchEvent{Scale: 2})
	r.dispatcher.Pinch(PinchEvent{Scale: 2, State: GestureEnded})
	r.dispatcher.Pinch(PinchEvent{Scale: 1, State: GestureBegan})
	r.dispatcher.Pinch(PinchEvent{Scale: 0.5})
	assertNear(t, "scale", p.Scale.X, 1)
}

func TestPinchCancelledScalesNothing(t *testing.T) {
	r := newTestRig(t, DefaultConfig())
	r.dispatcher.SetMode(PlaceFreeFloat)
	p := r.dispatcher.Tap(screenCenter)

	r.dispatcher.Pinch(PinchEvent{Scale: 1, State: GestureBegan})
	r.dispatcher.Pinch(PinchEvent{Scale: 1.5})
	r.dispatcher.Pinch(PinchEvent{Scale: 3, State: GestureCancelled})
	assertNear(t, "scale", p.Scale.X, 1.5)

	// The next update compounds from a fresh factor.
	r.dispatcher.Pinch(PinchEvent{Scale: 1.2})
	assertNear(t, "scale after cancel", p.Scale.X, 1.5*1.2)
}

func TestPinchSharpShrinkKeepsScalePositive(t *testing.T) {
	r := newTestRig(t, DefaultConfig())
	r.dispatcher.SetMode(PlaceFreeFloat)
	p := r.dispatcher.Tap(screenCenter)

	r.dispatcher.Pinch(PinchEvent{Scale: 1, State: GestureBegan})
	r.dispatcher.Pinch(PinchEvent{Scale: 3})
	r.dispatcher.Pinch(PinchEvent{Scale: 1.5})
	if p.Scale.X <= 0 || p.Scale.Y <= 0 || p.Scale.Z <= 0 {
		t.Fatalf("scale = %v, want all axes positive", p.Scale)
	}
	assertNear(t, "scale", p.Scale.X, 3*minPinchFactor)
}

func TestPinchWithoutPainting(t *testing.T) {
	r := newTestRig(t, DefaultConfig())
	var fired int
	r.scene.OnScaled(func(PaintingContext) { fired++ })
	r.dispatcher.Pinch(PinchEvent{Scale: 1, State: GestureBegan})
	r.dispatcher.Pinch(PinchEvent{Scale: 2})
	if fired != 0 {
		t.Errorf("Scaled fired %d times without a painting", fired)
	}
}

func TestPinchTargetsLatestWallPainting(t *testing.T) {
	r := newTestRig(t, DefaultConfig())
	r.sim.AddAnchor(NewWallAnchor(r3.Vec{Z: -2}, 0, 2, 2))
	r.sim.AddAnchor(NewWallAnchor(r3.Vec{Z: 2}, 0, 2, 2))
	first := r.dispatcher.Tap(screenCenter)

	r.sim.SetCameraPose(r3.Vec{}, 3.141592653589793, 0)
	second := r.dispatcher.Tap(screenCenter)
	if first == nil || second == nil {
		t.Fatal("both taps should place")
	}

	r.dispatcher.Pinch(PinchEvent{Scale: 1, State: GestureBegan})
	r.dispatcher.Pinch(PinchEvent{Scale: 2})
	assertNear(t, "first", first.Scale.X, 1)
	assertNear(t, "second", second.Scale.X, 2)
}
