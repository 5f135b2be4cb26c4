package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Heading convention: yaw 0 faces -z (the forward key) and grows clockwise
// seen from above, so yaw pi/2 faces +x.

// Heading returns the unit facing vector for yaw.
func Heading(yaw float64) mgl64.Vec3 {
	return mgl64.Vec3{math.Sin(yaw), 0, -math.Cos(yaw)}
}

// YawOf returns the yaw that faces along the planar displacement (dx, dz).
func YawOf(dx, dz float64) float64 {
	return math.Atan2(dx, -dz)
}

// NormalizeAngle wraps v into (-pi, pi].
func NormalizeAngle(v float64) float64 {
	v = math.Mod(v, 2*math.Pi)
	if v <= -math.Pi {
		v += 2 * math.Pi
	} else if v > math.Pi {
		v -= 2 * math.Pi
	}
	return v
}

// SignedAngleDelta is the shortest signed rotation from -> to.
func SignedAngleDelta(from, to float64) float64 {
	return NormalizeAngle(to - from)
}

// LerpAngle moves current toward target along the shortest arc by fraction.
func LerpAngle(current, target, fraction float64) float64 {
	if fraction >= 1 {
		return NormalizeAngle(target)
	}
	if fraction <= 0 {
		return current
	}
	return NormalizeAngle(current + SignedAngleDelta(current, target)*fraction)
}
