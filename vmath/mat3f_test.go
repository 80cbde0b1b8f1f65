package vmath

import (
	"math"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// TestVecMulIdentity verifies identity orientation leaves offsets unchanged
func TestVecMulIdentity(t *testing.T) {
	v := Vec3F{3, -4, 5}
	got := Identity3F().VecMul(v)
	if got != v {
		t.Errorf("Expected %v, got %v", v, got)
	}
}

// TestVecMulIsTransposeOfMulVec verifies VecMul undoes MulVec for rotations
func TestVecMulIsTransposeOfMulVec(t *testing.T) {
	m := RotateY3F(math.Pi / 3)
	v := Vec3F{1, 2, 3}

	back := m.VecMul(m.MulVec(v))
	if !near(back.X, v.X) || !near(back.Y, v.Y) || !near(back.Z, v.Z) {
		t.Errorf("Expected round trip to %v, got %v", v, back)
	}
}

// TestRotateYQuarterTurn verifies a quarter turn maps world +X onto local +Z
func TestRotateYQuarterTurn(t *testing.T) {
	m := RotateY3F(math.Pi / 2)
	got := m.VecMul(Vec3F{1, 0, 0})
	if !near(got.X, 0) || !near(got.Z, 1) {
		t.Errorf("Expected (0,0,1), got %v", got)
	}
}

// TestNormalizeZero verifies the zero vector is preserved
func TestNormalizeZero(t *testing.T) {
	if got := V3FNormalize(Vec3F{}); got != (Vec3F{}) {
		t.Errorf("Expected zero vector, got %v", got)
	}
	if !IsZero(V3FMag(Vec3F{1e-12, 0, 0})) {
		t.Error("Expected tiny magnitude to be treated as zero")
	}
}
