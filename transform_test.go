package argallery

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertVecNear(t *testing.T, name string, got, want r3.Vec) {
	t.Helper()
	if r3.Norm(r3.Sub(got, want)) > 1e-6 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMat4(t *testing.T, name string, got, want Mat4) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			t.Errorf("%s[%d] = %v, want %v", name, i, got[i], want[i])
		}
	}
}

// sameRotation reports whether two unit quaternions describe the same
// rotation (q and -q are equivalent).
func sameRotation(a, b quat.Number) bool {
	d := a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
	return math.Abs(math.Abs(d)-1) < 1e-6
}

// --- Mat4 ---

func TestMat4ColumnMajor(t *testing.T) {
	m := Compose(r3.Vec{X: 1, Y: 2, Z: 3}, identityQuat, unitScale)
	assertNear(t, "m[12]", m[12], 1)
	assertNear(t, "m[13]", m[13], 2)
	assertNear(t, "m[14]", m[14], 3)
	assertNear(t, "At(0,3)", m.At(0, 3), 1)
	assertNear(t, "At(3,3)", m.At(3, 3), 1)
}

func TestMat4MulIdentity(t *testing.T) {
	m := Compose(r3.Vec{X: 4, Y: -1, Z: 2}, RotateY(0.7), r3.Vec{X: 2, Y: 1, Z: 3})
	assertMat4(t, "id*m", Identity4.Mul(m), m)
	assertMat4(t, "m*id", m.Mul(Identity4), m)
}

func TestMat4MulTranslations(t *testing.T) {
	a := Compose(r3.Vec{X: 10, Y: 20}, identityQuat, unitScale)
	b := Compose(r3.Vec{X: 5, Y: 3, Z: 1}, identityQuat, unitScale)
	assertVecNear(t, "translation", a.Mul(b).Translation(), r3.Vec{X: 15, Y: 23, Z: 1})
}

func TestMat4Inverse(t *testing.T) {
	m := Compose(r3.Vec{X: 1, Y: 2, Z: 3}, quat.Mul(RotateY(0.4), RotateX(1.1)), r3.Vec{X: 2, Y: 0.5, Z: 1})
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("Inverse reported singular")
	}
	assertMat4(t, "m*inv", m.Mul(inv), Identity4)
}

func TestMat4InverseSingular(t *testing.T) {
	m := Compose(r3.Vec{}, identityQuat, r3.Vec{X: 1, Y: 0, Z: 1})
	inv, ok := m.Inverse()
	if ok {
		t.Fatal("expected singular matrix")
	}
	assertMat4(t, "fallback", inv, Identity4)
}

func TestMulDirIgnoresTranslation(t *testing.T) {
	m := Compose(r3.Vec{X: 100, Y: 100, Z: 100}, identityQuat, unitScale)
	assertVecNear(t, "dir", m.MulDir(r3.Vec{Z: 1}), r3.Vec{Z: 1})
}

// --- Compose / Decompose ---

func TestComposeDecomposeRoundTrip(t *testing.T) {
	pos := r3.Vec{X: -1, Y: 0.5, Z: 7}
	rot := quat.Mul(RotateY(1.2), RotateX(-0.3))
	scale := r3.Vec{X: 2, Y: 3, Z: 0.5}

	gotPos, gotRot, gotScale := Compose(pos, rot, scale).Decompose()
	assertVecNear(t, "pos", gotPos, pos)
	assertVecNear(t, "scale", gotScale, scale)
	if !sameRotation(gotRot, rot) {
		t.Errorf("rot = %v, want %v", gotRot, rot)
	}
}

func TestDecomposeLargeRotation(t *testing.T) {
	// Exercises the non-trace branch of the matrix-to-quaternion conversion.
	rot := RotateZ(math.Pi - 0.01)
	_, got, _ := Compose(r3.Vec{}, rot, unitScale).Decompose()
	if !sameRotation(got, rot) {
		t.Errorf("rot = %v, want %v", got, rot)
	}
}

// --- Rotations ---

func TestRotateYMapsZToX(t *testing.T) {
	assertVecNear(t, "Ry(90)*Z", Rotate(RotateY(math.Pi/2), r3.Vec{Z: 1}), r3.Vec{X: 1})
}

func TestRotateXMapsYToZ(t *testing.T) {
	assertVecNear(t, "Rx(90)*Y", Rotate(RotateX(math.Pi/2), r3.Vec{Y: 1}), r3.Vec{Z: 1})
}

func TestRotateZMapsXToY(t *testing.T) {
	assertVecNear(t, "Rz(90)*X", Rotate(RotateZ(math.Pi/2), r3.Vec{X: 1}), r3.Vec{Y: 1})
}

func TestEulerOrder(t *testing.T) {
	angles := r3.Vec{X: 0.3, Y: 0.9, Z: -0.4}
	want := quat.Mul(quat.Mul(RotateY(angles.Y), RotateX(angles.X)), RotateZ(angles.Z))
	if !sameRotation(Euler(angles), want) {
		t.Errorf("Euler = %v, want %v", Euler(angles), want)
	}
}

// --- Node transforms ---

func TestWorldTransformParentChild(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)

	parent.SetPosition(r3.Vec{X: 1, Y: 2, Z: 3})
	parent.SetOrientation(RotateY(math.Pi / 2))
	child.SetPosition(r3.Vec{Z: 1})

	assertVecNear(t, "child world", child.WorldPosition(), r3.Vec{X: 2, Y: 2, Z: 3})
}

func TestWorldTransformScaleInherited(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)
	parent.SetScale(r3.Vec{X: 2, Y: 2, Z: 2})
	child.SetPosition(r3.Vec{X: 1})

	assertVecNear(t, "child world", child.WorldPosition(), r3.Vec{X: 2})
}

func TestLocalToWorldAndBack(t *testing.T) {
	n := NewContainer("n")
	n.SetPosition(r3.Vec{X: 5, Y: -2})
	n.SetOrientation(RotateX(0.6))

	p := r3.Vec{X: 0.3, Y: 0.2, Z: -1}
	assertVecNear(t, "round trip", n.WorldToLocal(n.LocalToWorld(p)), p)
}

func TestConvertPositionBetweenNodes(t *testing.T) {
	a := NewContainer("a")
	b := NewContainer("b")
	a.SetPosition(r3.Vec{X: 1})
	b.SetPosition(r3.Vec{X: 3})

	assertVecNear(t, "a->b", a.ConvertPosition(r3.Vec{}, b), r3.Vec{X: -2})
	assertVecNear(t, "a->world", a.ConvertPosition(r3.Vec{Z: 1}, nil), r3.Vec{X: 1, Z: 1})
}

func TestSetTransformDecomposes(t *testing.T) {
	n := NewContainer("n")
	rot := RotateY(0.25)
	n.SetTransform(Compose(r3.Vec{Y: 4}, rot, r3.Vec{X: 2, Y: 2, Z: 2}))

	assertVecNear(t, "Position", n.Position, r3.Vec{Y: 4})
	assertVecNear(t, "Scale", n.Scale, r3.Vec{X: 2, Y: 2, Z: 2})
	if !sameRotation(n.Orientation, rot) {
		t.Errorf("Orientation = %v, want %v", n.Orientation, rot)
	}
}

func TestSceneUpdateCachesWorldTransform(t *testing.T) {
	s := NewScene()
	n := NewContainer("n")
	s.Root().AddChild(n)
	n.SetPosition(r3.Vec{X: 7})
	s.Update(0)

	assertVecNear(t, "cached", n.worldTransform.Translation(), r3.Vec{X: 7})
	if n.transformDirty {
		t.Error("node should be clean after Update")
	}
}
