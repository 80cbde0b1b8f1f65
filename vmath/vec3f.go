package vmath

import (
	"math"
)

// Vec3F is a float64 3D vector used for world-space positions
type Vec3F struct {
	X, Y, Z float64
}

func V3FAdd(a, b Vec3F) Vec3F {
	return Vec3F{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func V3FSub(a, b Vec3F) Vec3F {
	return Vec3F{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func V3FDot(a, b Vec3F) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func V3FMagSq(v Vec3F) float64 {
	return V3FDot(v, v)
}

func V3FMag(v Vec3F) float64 {
	return math.Sqrt(V3FMagSq(v))
}

// V3FNormalize returns the unit vector, zero vector stays zero
func V3FNormalize(v Vec3F) Vec3F {
	mag := V3FMag(v)
	if mag == 0 {
		return Vec3F{}
	}
	inv := 1.0 / mag
	return Vec3F{v.X * inv, v.Y * inv, v.Z * inv}
}

// IsZero reports whether f is within Epsilon of zero
func IsZero(f float64) bool {
	return math.Abs(f) < Epsilon
}

// Epsilon is the tolerance used by IsZero
const Epsilon = 1e-9
