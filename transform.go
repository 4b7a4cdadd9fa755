package argallery

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mat4 is a 4x4 affine matrix stored column-major, the layout AR runtimes use
// for anchor and camera transforms. Element (row, col) lives at m[col*4+row];
// the translation is m[12], m[13], m[14].
type Mat4 [16]float64

// Identity4 is the identity matrix.
var Identity4 = Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// identityQuat is the no-rotation orientation.
var identityQuat = quat.Number{Real: 1}

// unitScale is the default per-axis scale.
var unitScale = r3.Vec{X: 1, Y: 1, Z: 1}

// At returns the element at the given row and column.
func (m Mat4) At(row, col int) float64 {
	return m[col*4+row]
}

// Mul returns m * o.
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for c := 0; c < 4; c++ {
		for row := 0; row < 4; row++ {
			var s float64
			for k := 0; k < 4; k++ {
				s += m[k*4+row] * o[c*4+k]
			}
			r[c*4+row] = s
		}
	}
	return r
}

// MulPoint transforms a point (w = 1).
func (m Mat4) MulPoint(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12],
		Y: m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13],
		Z: m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14],
	}
}

// MulDir transforms a direction (w = 0); translation is ignored.
func (m Mat4) MulDir(d r3.Vec) r3.Vec {
	return r3.Vec{
		X: m[0]*d.X + m[4]*d.Y + m[8]*d.Z,
		Y: m[1]*d.X + m[5]*d.Y + m[9]*d.Z,
		Z: m[2]*d.X + m[6]*d.Y + m[10]*d.Z,
	}
}

// Translation returns the translation column.
func (m Mat4) Translation() r3.Vec {
	return r3.Vec{X: m[12], Y: m[13], Z: m[14]}
}

// Inverse returns the inverse of m. ok is false when m is singular, in which
// case the identity is returned.
func (m Mat4) Inverse() (inv Mat4, ok bool) {
	// gonum's Dense is row-major; feed it the transpose layout explicitly.
	data := make([]float64, 16)
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			data[row*4+col] = m.At(row, col)
		}
	}
	var d mat.Dense
	if err := d.Inverse(mat.NewDense(4, 4, data)); err != nil {
		return Identity4, false
	}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			inv[col*4+row] = d.At(row, col)
		}
	}
	return inv, true
}

// Compose builds T(pos) * R(rot) * S(scale).
func Compose(pos r3.Vec, rot quat.Number, scale r3.Vec) Mat4 {
	r := rotationMatrix(rot)
	s := [3]float64{scale.X, scale.Y, scale.Z}
	var m Mat4
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			m[col*4+row] = r[row][col] * s[col]
		}
	}
	m[12], m[13], m[14], m[15] = pos.X, pos.Y, pos.Z, 1
	return m
}

// Decompose splits an affine matrix without shear into translation, rotation
// and per-axis scale.
func (m Mat4) Decompose() (pos r3.Vec, rot quat.Number, scale r3.Vec) {
	pos = m.Translation()
	cols := [3]r3.Vec{
		{X: m[0], Y: m[1], Z: m[2]},
		{X: m[4], Y: m[5], Z: m[6]},
		{X: m[8], Y: m[9], Z: m[10]},
	}
	scale = r3.Vec{X: r3.Norm(cols[0]), Y: r3.Norm(cols[1]), Z: r3.Norm(cols[2])}
	var r [3][3]float64
	sc := [3]float64{scale.X, scale.Y, scale.Z}
	for col := 0; col < 3; col++ {
		inv := 0.0
		if sc[col] > 1e-12 {
			inv = 1 / sc[col]
		}
		r[0][col] = cols[col].X * inv
		r[1][col] = cols[col].Y * inv
		r[2][col] = cols[col].Z * inv
	}
	return pos, quatFromRotation(r), scale
}

// Rotation returns the rotation part of m as a unit quaternion.
func (m Mat4) Rotation() quat.Number {
	_, rot, _ := m.Decompose()
	return rot
}

// rotationMatrix converts a unit quaternion to a row-major 3x3 matrix.
func rotationMatrix(q quat.Number) [3][3]float64 {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return [3][3]float64{
		{1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y)},
		{2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x)},
		{2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y)},
	}
}

// quatFromRotation converts a row-major orthonormal 3x3 matrix to a unit
// quaternion (Shepperd's method).
func quatFromRotation(r [3][3]float64) quat.Number {
	var q quat.Number
	trace := r[0][0] + r[1][1] + r[2][2]
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = quat.Number{
			Real: 0.25 / s,
			Imag: (r[2][1] - r[1][2]) * s,
			Jmag: (r[0][2] - r[2][0]) * s,
			Kmag: (r[1][0] - r[0][1]) * s,
		}
	case r[0][0] > r[1][1] && r[0][0] > r[2][2]:
		s := 2 * math.Sqrt(1+r[0][0]-r[1][1]-r[2][2])
		q = quat.Number{
			Real: (r[2][1] - r[1][2]) / s,
			Imag: 0.25 * s,
			Jmag: (r[0][1] + r[1][0]) / s,
			Kmag: (r[0][2] + r[2][0]) / s,
		}
	case r[1][1] > r[2][2]:
		s := 2 * math.Sqrt(1+r[1][1]-r[0][0]-r[2][2])
		q = quat.Number{
			Real: (r[0][2] - r[2][0]) / s,
			Imag: (r[0][1] + r[1][0]) / s,
			Jmag: 0.25 * s,
			Kmag: (r[1][2] + r[2][1]) / s,
		}
	default:
		s := 2 * math.Sqrt(1+r[2][2]-r[0][0]-r[1][1])
		q = quat.Number{
			Real: (r[1][0] - r[0][1]) / s,
			Imag: (r[0][2] + r[2][0]) / s,
			Jmag: (r[1][2] + r[2][1]) / s,
			Kmag: 0.25 * s,
		}
	}
	return normalizeQuat(q)
}

// normalizeQuat returns q scaled to unit length; a zero quaternion becomes
// the identity.
func normalizeQuat(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n < 1e-12 {
		return identityQuat
	}
	return quat.Scale(1/n, q)
}

// AxisAngle returns the rotation of angle radians about axis.
func AxisAngle(axis r3.Vec, angle float64) quat.Number {
	if angle == 0 {
		return identityQuat
	}
	return quat.Number(r3.NewRotation(angle, axis))
}

// RotateX returns a rotation of angle radians about the X axis.
func RotateX(angle float64) quat.Number { return AxisAngle(r3.Vec{X: 1}, angle) }

// RotateY returns a rotation of angle radians about the Y axis.
func RotateY(angle float64) quat.Number { return AxisAngle(r3.Vec{Y: 1}, angle) }

// RotateZ returns a rotation of angle radians about the Z axis.
func RotateZ(angle float64) quat.Number { return AxisAngle(r3.Vec{Z: 1}, angle) }

// Euler returns the orientation for euler angles (radians) applied in the
// order Z (roll), X (pitch), Y (yaw) in the parent frame.
func Euler(angles r3.Vec) quat.Number {
	return quat.Mul(RotateY(angles.Y), quat.Mul(RotateX(angles.X), RotateZ(angles.Z)))
}

// Rotate applies the unit quaternion q to v.
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	return r3.Rotation(q).Rotate(v)
}

// --- Node transforms ---

// computeLocalTransform composes T(Position) * R(Orientation) * S(Scale).
func computeLocalTransform(n *Node) Mat4 {
	return Compose(n.Position, n.Orientation, n.Scale)
}

// updateWorldTransform recomputes cached world matrices. parentRecomputed
// forces recomputation of clean children whose parent moved.
func updateWorldTransform(n *Node, parentTransform Mat4, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		n.worldTransform = parentTransform.Mul(computeLocalTransform(n))
		n.transformDirty = false
	}
	for _, child := range n.children {
		updateWorldTransform(child, n.worldTransform, recompute)
	}
}

// --- Transform property setters ---

// SetPosition sets the node's local position and marks it dirty.
func (n *Node) SetPosition(p r3.Vec) {
	n.Position = p
	markSubtreeDirty(n)
}

// SetOrientation sets the node's local orientation and marks it dirty.
func (n *Node) SetOrientation(q quat.Number) {
	n.Orientation = normalizeQuat(q)
	markSubtreeDirty(n)
}

// SetScale sets the node's per-axis scale and marks it dirty.
func (n *Node) SetScale(s r3.Vec) {
	n.Scale = s
	markSubtreeDirty(n)
}

// SetTransform replaces position, orientation and scale with the
// decomposition of m.
func (n *Node) SetTransform(m Mat4) {
	n.Position, n.Orientation, n.Scale = m.Decompose()
	markSubtreeDirty(n)
}

// MarkDirty forces recomputation of the cached world transform on the next
// scene update. Useful after bulk-setting fields directly.
func (n *Node) MarkDirty() {
	markSubtreeDirty(n)
}

// LocalTransform returns the node's local matrix.
func (n *Node) LocalTransform() Mat4 {
	return computeLocalTransform(n)
}

// WorldTransform walks the parent chain and returns the node's current world
// matrix. Unlike the cached matrix used while rendering, it reflects edits
// made since the last Scene.Update.
func (n *Node) WorldTransform() Mat4 {
	local := computeLocalTransform(n)
	if n.Parent == nil {
		return local
	}
	return n.Parent.WorldTransform().Mul(local)
}

// WorldPosition returns the node's origin in world space.
func (n *Node) WorldPosition() r3.Vec {
	return n.WorldTransform().Translation()
}

// WorldOrientation returns the node's orientation in world space.
func (n *Node) WorldOrientation() quat.Number {
	return n.WorldTransform().Rotation()
}

// --- Coordinate conversion ---

// LocalToWorld converts a point in this node's space to world space.
func (n *Node) LocalToWorld(p r3.Vec) r3.Vec {
	return n.WorldTransform().MulPoint(p)
}

// WorldToLocal converts a world-space point to this node's space.
func (n *Node) WorldToLocal(p r3.Vec) r3.Vec {
	inv, _ := n.WorldTransform().Inverse()
	return inv.MulPoint(p)
}

// ConvertPosition converts a point from this node's space to the space of
// to. A nil to means world space.
func (n *Node) ConvertPosition(p r3.Vec, to *Node) r3.Vec {
	w := n.LocalToWorld(p)
	if to == nil {
		return w
	}
	return to.WorldToLocal(w)
}
