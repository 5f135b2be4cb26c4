package window

import (
	"fmt"
	"image/color"

	"github.com/Versifine/knights/internal/camera"
	"github.com/Versifine/knights/internal/frontend"
	"github.com/Versifine/knights/internal/game"
	"github.com/Versifine/knights/internal/input"
)

// Controller is the session surface the window drives.
type Controller interface {
	frontend.Sim
	SetCameraMode(m camera.Mode) bool
	OrbitCamera(dAzimuth, dPolar float64)
	ZoomCamera(steps float64)
}

type Options struct {
	Title    string
	Width    int
	Height   int
	TickRate int
	Bindings input.Bindings
}

func statusText(snap game.Snapshot) string {
	if !snap.HasAvatar {
		return fmt.Sprintf("frame %d  loading...", snap.Frame)
	}
	return fmt.Sprintf("frame %d  pos (%.1f, %.1f)  yaw %.2f  %s\ncamera %s  bolts %d  enemies %d\nWASD move  Space attack  F fire  C camera  Q/E/R/V orbit  Z/X zoom  Esc quit",
		snap.Frame,
		snap.Avatar.Position.X(), snap.Avatar.Position.Z(),
		snap.Avatar.Yaw,
		snap.Attack,
		snap.CameraMode,
		len(snap.Projectiles),
		len(snap.Enemies),
	)
}

// lerpColor blends a toward b by t in [0, 1].
func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t) }
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}
