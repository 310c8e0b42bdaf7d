// Package geom provides the 3D primitives shared by every site law:
// vectors, segment distances, and charge-axis angles.
package geom

import "math"

// Vec3 is a point or direction in 3D space. Units are metres throughout
// the engine; callers convert from mm at the ingest boundary.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + u.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{v.X + u.X, v.Y + u.Y, v.Z + u.Z}
}

// Sub returns v - u.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{v.X - u.X, v.Y - u.Y, v.Z - u.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of v and u.
func (v Vec3) Dot(u Vec3) float64 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

// NormSq returns the squared length of v.
func (v Vec3) NormSq() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Norm returns the length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.NormSq())
}

// Normalize returns v scaled to unit length, or the zero vector when v is
// numerically zero.
func (v Vec3) Normalize() Vec3 {
	n := v.Norm()
	if n < eps {
		return Vec3{}
	}
	return v.Scale(1 / n)
}

// Dist returns the Euclidean distance between v and u.
func (v Vec3) Dist(u Vec3) float64 {
	return v.Sub(u).Norm()
}

// DistSq returns the squared distance between v and u. Preferred for
// culling pre-checks where the root is not needed.
func (v Vec3) DistSq(u Vec3) float64 {
	return v.Sub(u).NormSq()
}

// eps is the threshold below which a vector length is treated as zero.
const eps = 1e-12
