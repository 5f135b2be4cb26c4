package physics

import "math"

// Bounds is the walkable rectangle, given as half-extents around the origin.
type Bounds struct {
	HalfX float64
	HalfZ float64
}

func Square(half float64) Bounds {
	return Bounds{HalfX: half, HalfZ: half}
}

func (b Bounds) Contains(x, z float64) bool {
	return math.Abs(x) <= b.HalfX && math.Abs(z) <= b.HalfZ
}

// Clamp limits x and z independently.
func (b Bounds) Clamp(x, z float64) (float64, float64) {
	return clamp(x, -b.HalfX, b.HalfX), clamp(z, -b.HalfZ, b.HalfZ)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
