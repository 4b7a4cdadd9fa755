package argallery

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

var testTint = Color{0.3, 0.8, 1, 0.6}

func TestPlaneTrackerIgnoresHorizontalPlanes(t *testing.T) {
	tr := NewPlaneTracker(NewScene(), testTint)
	anchorNode := NewContainer("anchor")
	if g := tr.OnPlaneDetected(anchorNode, NewFloorAnchor(r3.Vec{}, 2, 2)); g != nil {
		t.Error("horizontal plane should not get a grid")
	}
	if tr.Len() != 0 || anchorNode.NumChildren() != 0 {
		t.Errorf("Len = %d, children = %d, want 0, 0", tr.Len(), anchorNode.NumChildren())
	}
}

func TestPlaneTrackerCreatesGrid(t *testing.T) {
	s := NewScene()
	tr := NewPlaneTracker(s, testTint)
	var added []GridContext
	s.OnGridAdded(func(ctx GridContext) { added = append(added, ctx) })

	anchorNode := NewContainer("anchor")
	a := NewWallAnchor(r3.Vec{Z: -2}, 0, 2, 1.5)
	g := tr.OnPlaneDetected(anchorNode, a)
	if g == nil {
		t.Fatal("vertical plane should get a grid")
	}
	if g.Node().Parent != anchorNode {
		t.Error("grid should be attached under the anchor node")
	}
	if g.Node().Type != NodeTypeGrid || g.Node().AnchorID != a.ID {
		t.Error("grid node should be typed and keyed by the anchor")
	}
	w, h := g.Extent()
	assertNear(t, "width", w, 2)
	assertNear(t, "height", h, 1.5)
	assertNear(t, "tiling u", g.Node().Material.Tiling[0], 20)
	if g.Node().Material.Color != testTint {
		t.Errorf("tint = %v, want %v", g.Node().Material.Color, testTint)
	}
	if len(added) != 1 || added[0].AnchorID != a.ID || added[0].Width != 2 {
		t.Errorf("GridAdded contexts = %v", added)
	}
}

func TestPlaneTrackerOneGridPerAnchor(t *testing.T) {
	s := NewScene()
	tr := NewPlaneTracker(s, testTint)
	var updated int
	s.OnGridUpdated(func(GridContext) { updated++ })

	anchorNode := NewContainer("anchor")
	a := NewWallAnchor(r3.Vec{}, 0, 1, 1)
	first := tr.OnPlaneDetected(anchorNode, a)
	a.Extent = r3.Vec{X: 2, Z: 2}
	second := tr.OnPlaneDetected(anchorNode, a)

	if first != second {
		t.Error("repeated detection should return the existing grid")
	}
	if tr.Len() != 1 || anchorNode.NumChildren() != 1 {
		t.Errorf("Len = %d, children = %d, want 1, 1", tr.Len(), anchorNode.NumChildren())
	}
	if w, _ := first.Extent(); w != 2 {
		t.Errorf("width = %v, want 2 after refresh", w)
	}
	if updated != 1 {
		t.Errorf("GridUpdated fired %d times, want 1", updated)
	}
}

func TestPlaneTrackerUpdateInPlace(t *testing.T) {
	r := newTestRig(t, DefaultConfig())
	a := NewWallAnchor(r3.Vec{Z: -2}, 0, 1, 1)
	r.sim.AddAnchor(a)
	g := r.ctx.Tracker().Grid(a.ID)
	node := g.Node()

	a.Extent = r3.Vec{X: 3, Z: 2}
	a.Center = r3.Vec{X: 0.5, Z: -0.25}
	r.sim.UpdateAnchor(a)

	if r.ctx.Tracker().Grid(a.ID) != g || g.Node() != node {
		t.Fatal("update should keep the same grid and node")
	}
	w, h := g.Extent()
	assertNear(t, "width", w, 3)
	assertNear(t, "height", h, 2)
	assertVecNear(t, "position", node.Position, a.Center)
	if !sameRotation(node.Orientation, RotateX(-math.Pi/2)) {
		t.Error("grid orientation should stay flat in the anchor plane")
	}
	if g.Anchor().Extent != a.Extent {
		t.Error("grid should hold the latest anchor snapshot")
	}
}

func TestPlaneTrackerDropsUntrackedUpdate(t *testing.T) {
	s := NewScene()
	tr := NewPlaneTracker(s, testTint)
	var fired int
	s.OnGridUpdated(func(GridContext) { fired++ })
	s.OnGridAdded(func(GridContext) { fired++ })

	tr.OnPlaneUpdated(NewWallAnchor(r3.Vec{}, 0, 1, 1))
	if tr.Len() != 0 || fired != 0 {
		t.Errorf("Len = %d, fired = %d, want 0, 0", tr.Len(), fired)
	}
}

func TestPlaneTrackerRemoval(t *testing.T) {
	r := newTestRig(t, DefaultConfig())
	a := NewWallAnchor(r3.Vec{Z: -2}, 0, 1, 1)
	r.sim.AddAnchor(a)
	node := r.ctx.Tracker().Grid(a.ID).Node()

	var sawLive bool
	r.scene.OnGridRemoved(func(ctx GridContext) {
		sawLive = ctx.Node == node && !ctx.Node.IsDisposed()
	})
	r.sim.RemoveAnchor(a.ID)

	if r.ctx.Tracker().Len() != 0 {
		t.Errorf("Len = %d, want 0", r.ctx.Tracker().Len())
	}
	if !node.IsDisposed() {
		t.Error("grid node should be disposed")
	}
	if !sawLive {
		t.Error("GridRemoved should fire before the node is disposed")
	}
}

func TestPlaneTrackerConsume(t *testing.T) {
	s := NewScene()
	tr := NewPlaneTracker(s, testTint)
	a := NewWallAnchor(r3.Vec{}, 0, 1, 1)
	b := NewWallAnchor(r3.Vec{X: 3}, 0, 1, 1)
	tr.OnPlaneDetected(NewContainer("a"), a)
	gb := tr.OnPlaneDetected(NewContainer("b"), b)

	if !tr.Consume(a.ID) {
		t.Error("Consume should report true for a tracked anchor")
	}
	if tr.Consume(a.ID) {
		t.Error("second Consume should report false")
	}
	if tr.Consume(uuid.New()) {
		t.Error("Consume of an unknown anchor should report false")
	}
	if grids := tr.Grids(); len(grids) != 1 || grids[0] != gb {
		t.Errorf("Grids = %v, want only b", grids)
	}
}

func TestGridTextureShared(t *testing.T) {
	a := NewGridNode(NewWallAnchor(r3.Vec{}, 0, 1, 1), testTint)
	b := NewGridNode(NewWallAnchor(r3.Vec{}, 0, 1, 1), testTint)
	if a.Node().Material.Texture != b.Node().Material.Texture {
		t.Error("grids should share one texture")
	}
	if a.Node().Material == b.Node().Material {
		t.Error("grids should not share a material")
	}
}
