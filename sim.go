package argallery

import (
	"image"
	"math"
	"slices"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// SimSession is a software tracking session and camera view. Anchors are
// added, moved and removed by the host (tests, scripts, the example program);
// raycasts intersect the camera ray with the anchor planes exactly. It
// implements both TrackingSession and View.
//
// Every anchor is reported to the delegate regardless of the configured
// plane detection; filtering is left to the consumer.
type SimSession struct {
	scene *Scene
	pov   *Node
	proj  Projection

	delegate SessionDelegate
	cfg      TrackingConfig
	running  bool
	clock    float64

	anchors []PlaneAnchor
	nodes   map[uuid.UUID]*Node

	snapshot func() image.Image
}

// NewSimSession creates a session over scene with a width by height viewport.
// The camera node is attached to the scene root at the origin, looking down
// -Z.
func NewSimSession(scene *Scene, width, height int) *SimSession {
	pov := NewCamera("pov")
	scene.Root().AddChild(pov)
	return &SimSession{
		scene: scene,
		pov:   pov,
		proj:  Projection{FOV: defaultFOV, Width: float64(width), Height: float64(height)},
		nodes: make(map[uuid.UUID]*Node),
	}
}

// --- TrackingSession ---

// Run starts (or restarts) tracking with cfg.
func (s *SimSession) Run(cfg TrackingConfig) {
	s.cfg = cfg
	s.running = true
}

// Pause stops tracking. Raycast queries fail until Run is called again.
func (s *SimSession) Pause() {
	s.running = false
}

// Running reports whether the session is tracking.
func (s *SimSession) Running() bool { return s.running }

// Config returns the configuration of the last Run.
func (s *SimSession) Config() TrackingConfig { return s.cfg }

// SetDelegate replaces the callback target. nil clears it.
func (s *SimSession) SetDelegate(d SessionDelegate) { s.delegate = d }

// Delegate returns the current callback target.
func (s *SimSession) Delegate() SessionDelegate { return s.delegate }

// Raycast intersects q with every anchor plane of matching alignment and
// returns the hits nearest first. Estimated-plane queries never hit.
func (s *SimSession) Raycast(q RaycastQuery) []RaycastResult {
	if q.Target == RaycastTargetEstimatedPlane {
		return nil
	}
	var hits []RaycastResult
	for i := range s.anchors {
		a := s.anchors[i]
		if a.Alignment != q.Alignment {
			continue
		}
		n := a.Normal()
		denom := r3.Dot(q.Direction, n)
		if math.Abs(denom) < 1e-9 {
			continue
		}
		t := r3.Dot(r3.Sub(a.Transform.Translation(), q.Origin), n) / denom
		if t < 0 {
			continue
		}
		hit := r3.Add(q.Origin, r3.Scale(t, q.Direction))
		if q.Target == RaycastTargetExistingPlaneGeometry {
			inv, ok := a.Transform.Inverse()
			if !ok || !a.containsLocal(inv.MulPoint(hit)) {
				continue
			}
		}
		hits = append(hits, RaycastResult{
			WorldTransform: Compose(hit, a.Transform.Rotation(), unitScale),
			Anchor:         &a,
			Distance:       t,
		})
	}
	slices.SortStableFunc(hits, func(x, y RaycastResult) int {
		switch {
		case x.Distance < y.Distance:
			return -1
		case x.Distance > y.Distance:
			return 1
		}
		return 0
	})
	return hits
}

// --- View ---

// RaycastQuery builds a query through pt from the current camera pose. It
// reports false while the session is not running or when pt is off screen.
func (s *SimSession) RaycastQuery(pt Vec2, target RaycastTarget, alignment Alignment) (RaycastQuery, bool) {
	if !s.running {
		return RaycastQuery{}, false
	}
	origin, dir, ok := s.proj.Ray(s.pov.WorldTransform(), pt)
	if !ok {
		return RaycastQuery{}, false
	}
	return RaycastQuery{Origin: origin, Direction: dir, Target: target, Alignment: alignment}, true
}

// PointOfView returns the camera node.
func (s *SimSession) PointOfView() *Node { return s.pov }

// Snapshot returns the image produced by the configured snapshotter, or nil.
func (s *SimSession) Snapshot() image.Image {
	if s.snapshot == nil {
		return nil
	}
	return s.snapshot()
}

// SetSnapshotter sets the function Snapshot delegates to.
func (s *SimSession) SetSnapshotter(fn func() image.Image) { s.snapshot = fn }

// Projection returns the camera projection.
func (s *SimSession) Projection() Projection { return s.proj }

// SetViewport resizes the viewport.
func (s *SimSession) SetViewport(width, height int) {
	s.proj.Width = float64(width)
	s.proj.Height = float64(height)
}

// SetFOV sets the vertical field of view in radians.
func (s *SimSession) SetFOV(fov float64) { s.proj.FOV = fov }

// --- Host controls ---

// SetCameraPose places the camera at position, turned yaw radians about the
// vertical and pitched pitch radians about its own X axis.
func (s *SimSession) SetCameraPose(position r3.Vec, yaw, pitch float64) {
	s.pov.SetPosition(position)
	s.pov.SetOrientation(Euler(r3.Vec{X: pitch, Y: yaw}))
}

// Step advances the session clock by dt seconds and reports a frame to the
// delegate while running.
func (s *SimSession) Step(dt float64) {
	if !s.running {
		return
	}
	s.clock += dt
	if s.delegate != nil {
		s.delegate.OnFrame(Frame{Timestamp: s.clock, Camera: s.pov.WorldTransform()})
	}
}

// AddAnchor starts tracking a, creates the node that follows it under the
// scene root and notifies the delegate. Adding an ID that is already tracked
// behaves like UpdateAnchor.
func (s *SimSession) AddAnchor(a PlaneAnchor) *Node {
	if node, ok := s.nodes[a.ID]; ok {
		s.UpdateAnchor(a)
		return node
	}
	node := &Node{Name: "anchor", Type: NodeTypeAnchor, AnchorID: a.ID}
	nodeDefaults(node)
	node.SetTransform(a.Transform)
	s.scene.Root().AddChild(node)
	s.anchors = append(s.anchors, a)
	s.nodes[a.ID] = node
	if s.delegate != nil {
		s.delegate.OnAnchorAdded(node, a)
	}
	return node
}

// UpdateAnchor replaces the snapshot of a tracked anchor and notifies the
// delegate. It reports false for an unknown ID.
func (s *SimSession) UpdateAnchor(a PlaneAnchor) bool {
	i := s.indexOf(a.ID)
	if i < 0 {
		return false
	}
	s.anchors[i] = a
	node := s.nodes[a.ID]
	node.SetTransform(a.Transform)
	if s.delegate != nil {
		s.delegate.OnAnchorUpdated(node, a)
	}
	return true
}

// RemoveAnchor stops tracking the anchor with the given ID, notifies the
// delegate and disposes the anchor node. It reports false for an unknown ID.
func (s *SimSession) RemoveAnchor(id uuid.UUID) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	a := s.anchors[i]
	s.anchors = slices.Delete(s.anchors, i, i+1)
	node := s.nodes[id]
	delete(s.nodes, id)
	if s.delegate != nil {
		s.delegate.OnAnchorRemoved(node, a)
	}
	node.Dispose()
	return true
}

// Anchors returns the tracked anchors in the order they were added.
func (s *SimSession) Anchors() []PlaneAnchor {
	return slices.Clone(s.anchors)
}

// AnchorNode returns the node following the anchor with the given ID, or nil.
func (s *SimSession) AnchorNode(id uuid.UUID) *Node {
	return s.nodes[id]
}

// Interrupt reports a tracking interruption to the delegate.
func (s *SimSession) Interrupt() {
	if s.delegate != nil {
		s.delegate.OnSessionInterrupted()
	}
}

// EndInterruption reports the end of a tracking interruption.
func (s *SimSession) EndInterruption() {
	if s.delegate != nil {
		s.delegate.OnSessionInterruptionEnded()
	}
}

// Fail stops the session and reports err to the delegate.
func (s *SimSession) Fail(err error) {
	s.running = false
	if s.delegate != nil {
		s.delegate.OnSessionFailed(err)
	}
}

func (s *SimSession) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.anchors, func(a PlaneAnchor) bool { return a.ID == id })
}
