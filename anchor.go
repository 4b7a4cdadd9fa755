package argallery

import (
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// PlaneAnchor is a snapshot of a detected real-world plane. The anchor's local
// Y axis is the plane normal; the plane spans the local X and Z axes. Center
// and Extent are expressed in the anchor's own space, Extent.X being the
// width and Extent.Z the length of the detected region.
//
// Snapshots are immutable: an update delivers a new PlaneAnchor with the same
// ID.
type PlaneAnchor struct {
	ID        uuid.UUID
	Alignment Alignment
	Transform Mat4
	Center    r3.Vec
	Extent    r3.Vec
}

// NewPlaneAnchor returns an anchor with a fresh random identity.
func NewPlaneAnchor(alignment Alignment, transform Mat4, center, extent r3.Vec) PlaneAnchor {
	return PlaneAnchor{
		ID:        uuid.New(),
		Alignment: alignment,
		Transform: transform,
		Center:    center,
		Extent:    extent,
	}
}

// NewWallAnchor returns a vertical anchor at position whose normal points
// along the world direction (sin yaw, 0, cos yaw); yaw 0 faces +Z. The wall is
// width wide and height tall.
func NewWallAnchor(position r3.Vec, yaw, width, height float64) PlaneAnchor {
	return NewPlaneAnchor(AlignmentVertical, WallTransform(position, yaw), r3.Vec{}, r3.Vec{X: width, Z: height})
}

// WallTransform returns the anchor transform of a vertical plane at position
// whose normal points along (sin yaw, 0, cos yaw).
func WallTransform(position r3.Vec, yaw float64) Mat4 {
	// Rx(+90°) turns the anchor's Y (normal) onto +Z; the yaw then swings it
	// around the vertical.
	rot := quat.Mul(RotateY(yaw), RotateX(math.Pi/2))
	return Compose(position, rot, unitScale)
}

// NewFloorAnchor returns a horizontal anchor at position spanning width by
// length.
func NewFloorAnchor(position r3.Vec, width, length float64) PlaneAnchor {
	return NewPlaneAnchor(AlignmentHorizontal, Compose(position, identityQuat, unitScale), r3.Vec{}, r3.Vec{X: width, Z: length})
}

// Normal returns the plane normal in world space.
func (a PlaneAnchor) Normal() r3.Vec {
	return r3.Unit(a.Transform.MulDir(r3.Vec{Y: 1}))
}

// WorldCenter returns the center of the detected region in world space.
func (a PlaneAnchor) WorldCenter() r3.Vec {
	return a.Transform.MulPoint(a.Center)
}

// IsVertical reports whether the anchor is a wall.
func (a PlaneAnchor) IsVertical() bool {
	return a.Alignment == AlignmentVertical
}

// containsLocal reports whether an anchor-space point lies within the
// detected extent (the normal component is ignored).
func (a PlaneAnchor) containsLocal(p r3.Vec) bool {
	const eps = 1e-9
	return math.Abs(p.X-a.Center.X) <= a.Extent.X/2+eps &&
		math.Abs(p.Z-a.Center.Z) <= a.Extent.Z/2+eps
}
