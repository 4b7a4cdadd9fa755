package argallery

import (
	"image"

	"gonum.org/v1/gonum/spatial/r3"
)

// TrackingConfig configures a tracking session run.
type TrackingConfig struct {
	// PlaneDetection selects which plane alignment the session reports.
	PlaneDetection Alignment
}

// Frame is one camera-tracking update.
type Frame struct {
	Timestamp float64 // seconds since the session started
	Camera    Mat4    // camera world transform
}

// RaycastQuery is a world-space ray constrained to a target kind and plane
// alignment.
type RaycastQuery struct {
	Origin    r3.Vec
	Direction r3.Vec
	Target    RaycastTarget
	Alignment Alignment
}

// RaycastResult is one raycast hit.
type RaycastResult struct {
	// WorldTransform is the hit pose: the struck anchor's rotation at the hit
	// position.
	WorldTransform Mat4
	// Anchor is the plane anchor struck.
	Anchor *PlaneAnchor
	// Distance is the distance from the ray origin along the ray.
	Distance float64
}

// Position returns the world-space hit position.
func (r RaycastResult) Position() r3.Vec {
	return r.WorldTransform.Translation()
}

// TrackingSession is a live camera and plane tracking process. A session has
// at most one delegate; setting a new one replaces the old.
type TrackingSession interface {
	Run(cfg TrackingConfig)
	Pause()
	SetDelegate(d SessionDelegate)
	Delegate() SessionDelegate
	// Raycast returns the hits for q, nearest first.
	Raycast(q RaycastQuery) []RaycastResult
}

// SessionDelegate receives tracking callbacks. Anchor callbacks carry the
// runtime-owned node that follows the anchor along with its latest snapshot.
type SessionDelegate interface {
	OnAnchorAdded(node *Node, anchor PlaneAnchor)
	OnAnchorUpdated(node *Node, anchor PlaneAnchor)
	OnAnchorRemoved(node *Node, anchor PlaneAnchor)
	OnFrame(f Frame)
	OnSessionInterrupted()
	OnSessionInterruptionEnded()
	OnSessionFailed(err error)
}

// View is the rendered camera view of a session.
type View interface {
	// RaycastQuery builds a query through the screen point pt. It reports
	// false when no query can be built, for example when pt is off screen or
	// no frame has been tracked yet.
	RaycastQuery(pt Vec2, target RaycastTarget, alignment Alignment) (RaycastQuery, bool)
	// PointOfView returns the camera node.
	PointOfView() *Node
	// Snapshot returns the current rendered view, or nil.
	Snapshot() image.Image
}
