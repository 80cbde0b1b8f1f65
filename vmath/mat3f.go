package vmath

import "math"

// Mat3F is a row-major 3x3 rotation matrix
// Columns are the body's right, up and back axes in world space
type Mat3F [9]float64

// Identity3F returns the identity orientation
func Identity3F() Mat3F {
	return Mat3F{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// MulVec returns m * v
func (m Mat3F) MulVec(v Vec3F) Vec3F {
	return Vec3F{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		Z: m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// VecMul returns v * m (row vector times matrix), i.e. transpose(m) * v
// For a rotation this maps a world-space offset into the body's local frame
func (m Mat3F) VecMul(v Vec3F) Vec3F {
	return Vec3F{
		X: v.X*m[0] + v.Y*m[3] + v.Z*m[6],
		Y: v.X*m[1] + v.Y*m[4] + v.Z*m[7],
		Z: v.X*m[2] + v.Y*m[5] + v.Z*m[8],
	}
}

// RotateY3F returns a rotation of angle radians about the Y axis
func RotateY3F(angle float64) Mat3F {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat3F{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	}
}
