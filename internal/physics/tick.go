package physics

import (
	"math"

	"github.com/Versifine/knights/internal/body"
	"github.com/Versifine/knights/internal/input"
	"github.com/Versifine/knights/internal/terrain"
)

type FacingPolicy string

const (
	// FacingSnap snaps to the discrete facing of a single-axis move and turns
	// smoothly on true diagonals.
	FacingSnap FacingPolicy = "snap"
	// FacingSmooth always turns by a fixed fraction of the remaining arc.
	FacingSmooth FacingPolicy = "smooth"
	// FacingDirect faces the displacement immediately.
	FacingDirect FacingPolicy = "direct"
)

func (p FacingPolicy) Valid() bool {
	switch p {
	case FacingSnap, FacingSmooth, FacingDirect:
		return true
	}
	return false
}

type Params struct {
	MoveSpeed  float64
	FootOffset float64
	TurnLerp   float64
	Bounds     Bounds
	Facing     FacingPolicy
	// NormalizeDiagonal scales diagonal moves to MoveSpeed. Off by default:
	// diagonal moves are faster than axial ones.
	NormalizeDiagonal bool
}

func DefaultParams() Params {
	return Params{
		MoveSpeed:  DefaultMoveSpeed,
		FootOffset: DefaultFootOffset,
		TurnLerp:   DefaultTurnLerp,
		Bounds:     Square(DefaultWorldBound),
		Facing:     FacingSnap,
	}
}

// MovementTick advances the avatar by one frame of input. A nil avatar is a
// no-op (the model has not loaded yet).
func MovementTick(a *body.Avatar, in input.Snapshot, p Params, field terrain.HeightField) {
	if a == nil {
		return
	}

	dx, dz := desiredMoveVector(in, p.MoveSpeed)
	if p.NormalizeDiagonal && dx != 0 && dz != 0 {
		dx /= math.Sqrt2
		dz /= math.Sqrt2
	}

	if dx != 0 || dz != 0 {
		x, z := p.Bounds.Clamp(a.Position.X()+dx, a.Position.Z()+dz)
		a.Position[0] = x
		a.Position[2] = z
		a.Yaw = resolveFacing(a.Yaw, dx, dz, p)
	}

	// Glue to the ground every frame, even standing still.
	a.Position[1] = terrain.HeightAt(field, a.Position.X(), a.Position.Z()) + p.FootOffset
}

// desiredMoveVector sums the held directions; opposing keys cancel.
func desiredMoveVector(in input.Snapshot, speed float64) (float64, float64) {
	var dx, dz float64
	if in.Forward {
		dz -= speed
	}
	if in.Backward {
		dz += speed
	}
	if in.Left {
		dx -= speed
	}
	if in.Right {
		dx += speed
	}
	return dx, dz
}

func resolveFacing(yaw, dx, dz float64, p Params) float64 {
	target := YawOf(dx, dz)
	switch p.Facing {
	case FacingDirect:
		return target
	case FacingSmooth:
		return LerpAngle(yaw, target, p.TurnLerp)
	default:
		movingX := math.Abs(dx) > AngleTolerance
		movingZ := math.Abs(dz) > AngleTolerance
		if movingX != movingZ {
			return snapFacing(dx, dz)
		}
		return LerpAngle(yaw, target, p.TurnLerp)
	}
}

func snapFacing(dx, dz float64) float64 {
	switch {
	case dz < 0:
		return 0
	case dz > 0:
		return math.Pi
	case dx > 0:
		return math.Pi / 2
	default:
		return -math.Pi / 2
	}
}
