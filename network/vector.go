package network

import "math"

// Vector is a position in the 3-D simulated space.
type Vector struct {
	X, Y, Z float64
}

// DistanceTo returns the Euclidean distance between two positions.
func (v Vector) DistanceTo(other Vector) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
