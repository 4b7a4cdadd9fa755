package argallery

import (
	"github.com/google/uuid"
)

// PlaneTracker keeps one GridNode per tracked vertical plane anchor. Grids are
// looked up by anchor identity with a linear scan; the number of walls in view
// is small.
type PlaneTracker struct {
	scene *Scene
	tint  Color
	grids []*GridNode
}

// NewPlaneTracker creates an empty tracker whose grids are drawn with tint and
// whose events fire on scene.
func NewPlaneTracker(scene *Scene, tint Color) *PlaneTracker {
	return &PlaneTracker{scene: scene, tint: tint}
}

// OnPlaneDetected creates the grid for a newly detected vertical anchor and
// attaches it under anchorNode, the runtime-owned node that follows the
// anchor. Non-vertical anchors are ignored. A repeated detection of a tracked
// ID refreshes the existing grid.
func (t *PlaneTracker) OnPlaneDetected(anchorNode *Node, anchor PlaneAnchor) *GridNode {
	if !anchor.IsVertical() {
		return nil
	}
	if g := t.Grid(anchor.ID); g != nil {
		t.refresh(g, anchor)
		return g
	}
	g := NewGridNode(anchor, t.tint)
	t.grids = append(t.grids, g)
	if anchorNode != nil {
		anchorNode.AddChild(g.node)
	}
	t.scene.fireGrid(EventGridAdded, g)
	return g
}

// OnPlaneUpdated refreshes the grid of a tracked vertical anchor in place.
// Updates for non-vertical or untracked anchors are dropped.
func (t *PlaneTracker) OnPlaneUpdated(anchor PlaneAnchor) {
	if !anchor.IsVertical() {
		return
	}
	g := t.Grid(anchor.ID)
	if g == nil {
		debugf("update for untracked anchor %s dropped", anchor.ID)
		return
	}
	t.refresh(g, anchor)
}

// OnPlaneRemoved drops the grid of an anchor the runtime stopped tracking.
func (t *PlaneTracker) OnPlaneRemoved(anchor PlaneAnchor) {
	t.remove(anchor.ID)
}

// Consume removes the grid for id after a painting was placed on its wall.
// It reports whether a grid was removed.
func (t *PlaneTracker) Consume(id uuid.UUID) bool {
	return t.remove(id)
}

// Grid returns the grid tracked for id, or nil.
func (t *PlaneTracker) Grid(id uuid.UUID) *GridNode {
	for _, g := range t.grids {
		if g.AnchorID() == id {
			return g
		}
	}
	return nil
}

// Grids returns the tracked grids. The returned slice MUST NOT be mutated.
func (t *PlaneTracker) Grids() []*GridNode {
	return t.grids
}

// Len returns the number of tracked grids.
func (t *PlaneTracker) Len() int {
	return len(t.grids)
}

func (t *PlaneTracker) refresh(g *GridNode, anchor PlaneAnchor) {
	g.Update(anchor)
	t.scene.fireGrid(EventGridUpdated, g)
}

func (t *PlaneTracker) remove(id uuid.UUID) bool {
	for i, g := range t.grids {
		if g.AnchorID() != id {
			continue
		}
		copy(t.grids[i:], t.grids[i+1:])
		t.grids[len(t.grids)-1] = nil
		t.grids = t.grids[:len(t.grids)-1]
		// Fire before disposal so handlers still see the node.
		t.scene.fireGrid(EventGridRemoved, g)
		g.node.Dispose()
		return true
	}
	return false
}
