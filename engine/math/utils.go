package math

import "golang.org/x/exp/constraints"

// Clamp limits f to [low, high].
func Clamp[T constraints.Ordered](f, low, high T) T {
	return min(max(f, low), high)
}

// Lerp blends a towards b by t; t is not clamped.
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// LerpVec4 blends every component of a towards b.
func LerpVec4(a, b Vec4, t float32) Vec4 {
	return Vec4{
		X: Lerp(a.X, b.X, t),
		Y: Lerp(a.Y, b.Y, t),
		Z: Lerp(a.Z, b.Z, t),
		W: Lerp(a.W, b.W, t),
	}
}
