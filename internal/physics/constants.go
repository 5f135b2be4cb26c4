package physics

const (
	DefaultMoveSpeed  = 0.3
	DefaultWorldBound = 90.0
	DefaultFootOffset = 0.0
	DefaultTurnLerp   = 0.15

	// AngleTolerance treats smaller displacements as no movement on that axis.
	AngleTolerance = 1e-12
)
