// Package math provides the vector and rotation types used by decoded levels.
package math

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}
