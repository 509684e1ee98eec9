package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := n.Dot(n)
	if abs(length-1.0) > 0.0001 {
		t.Errorf("Normalized quaternion length squared should be 1, got %v", length)
	}
}

func TestQuatSlerp(t *testing.T) {
	q1 := QuatIdentity()
	q2 := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, float32(math.Pi/2))

	// At t=0, should equal q1
	result0 := q1.Slerp(q2, 0)
	if abs(result0.W-q1.W) > 0.001 {
		t.Errorf("Slerp at t=0 should equal q1")
	}

	// At t=1, should equal q2
	result1 := q1.Slerp(q2, 1)
	if abs(result1.W-q2.W) > 0.001 {
		t.Errorf("Slerp at t=1 should equal q2")
	}

	// At t=0.5, should be halfway: 45 degrees
	result5 := q1.Slerp(q2, 0.5)
	expectedW := float32(math.Cos(math.Pi / 8))
	if abs(result5.W-expectedW) > 0.01 {
		t.Errorf("Slerp at t=0.5: expected W ~%v, got %v", expectedW, result5.W)
	}
}

func TestQuatSlerpShortestPath(t *testing.T) {
	// q2 is negated: same rotation, opposite hemisphere. Slerp must not
	// take the long way around.
	q1 := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, 0.1)
	q2 := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, 0.3).Neg()

	mid := q1.Slerp(q2, 0.5)
	want := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, 0.2)

	if abs(abs(mid.Dot(want))-1) > 0.001 {
		t.Errorf("Slerp took the long path: got %v, want %v up to sign", mid, want)
	}
}

func TestQuatToMat4(t *testing.T) {
	// Identity quaternion should produce identity matrix
	m := QuatIdentity().ToMat4()

	matNear(t, m, Identity(), 0.0001)
}

func TestQuatFromAxisAngle(t *testing.T) {
	// 90 degrees around Y axis
	q := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, float32(math.Pi/2))

	expectedW := float32(math.Cos(math.Pi / 4))
	expectedY := float32(math.Sin(math.Pi / 4))

	if abs(q.W-expectedW) > 0.001 {
		t.Errorf("QuatFromAxisAngle W: expected %v, got %v", expectedW, q.W)
	}
	if abs(q.Y-expectedY) > 0.001 {
		t.Errorf("QuatFromAxisAngle Y: expected %v, got %v", expectedY, q.Y)
	}
}

func TestQuatMul(t *testing.T) {
	// Two 45-degree rotations around Y combine to 90 degrees
	half := QuatFromAxisAngle(Vec3{Y: 1}, float32(math.Pi/4))
	full := QuatFromAxisAngle(Vec3{Y: 1}, float32(math.Pi/2))

	got := half.Mul(half)
	if abs(abs(got.Dot(full))-1) > 0.001 {
		t.Errorf("Quat.Mul: got %v, want %v up to sign", got, full)
	}
}
