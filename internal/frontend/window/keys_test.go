package window

import (
	"image/color"
	"strings"
	"testing"

	"github.com/Versifine/knights/internal/camera"
	"github.com/Versifine/knights/internal/game"
	"github.com/Versifine/knights/internal/input"
)

type edgeLog []string

func (l *edgeLog) OnKeyEdge(a input.Action, pressed bool) {
	sign := "-"
	if pressed {
		sign = "+"
	}
	*l = append(*l, sign+a.String())
}

func TestRouterSharedAction(t *testing.T) {
	var log edgeLog
	r := NewRouter(&log, input.DefaultBindings())

	r.Key("w", true)
	r.Key("up", true)
	r.Key("w", false)
	if got := strings.Join(log, " "); got != "+forward" {
		t.Fatalf("after releasing one of two keys edges=%q", got)
	}
	r.Key("up", false)
	if got := strings.Join(log, " "); got != "+forward -forward" {
		t.Fatalf("edges=%q", got)
	}
}

func TestRouterIgnoresRepeatsAndUnbound(t *testing.T) {
	var log edgeLog
	r := NewRouter(&log, nil)

	r.Key("space", true)
	r.Key("space", true)
	r.Key("k", true)
	r.Key("d", false)
	if got := strings.Join(log, " "); got != "+attack" {
		t.Fatalf("edges=%q", got)
	}
}

func TestRouterReleaseAll(t *testing.T) {
	var log edgeLog
	r := NewRouter(&log, nil)
	r.Key("a", true)
	r.Key("f", true)
	r.ReleaseAll()

	got := strings.Join(log, " ")
	if !strings.Contains(got, "-left") || !strings.Contains(got, "-fire") {
		t.Fatalf("edges=%q", got)
	}
	if len(r.held) != 0 {
		t.Fatalf("held=%v", r.held)
	}
}

func TestCameraGesture(t *testing.T) {
	held := map[string]bool{keyOrbitRight: true, keyOrbitUp: true, keyZoomIn: true}
	g := cameraGesture(func(name string) bool { return held[name] })
	if g.dAzimuth != orbitStep || g.dPolar != -orbitStep || g.zoom != zoomStep {
		t.Fatalf("gesture=%+v", g)
	}

	none := cameraGesture(func(string) bool { return false })
	if !none.zero() {
		t.Fatalf("idle gesture=%+v", none)
	}

	opposed := cameraGesture(func(name string) bool { return name == keyZoomIn || name == keyZoomOut })
	if !opposed.zero() {
		t.Fatalf("opposed zoom gesture=%+v", opposed)
	}
}

func TestStatusText(t *testing.T) {
	if got := statusText(game.Snapshot{Frame: 4}); got != "frame 4  loading..." {
		t.Fatalf("statusText=%q", got)
	}
	got := statusText(game.Snapshot{Frame: 9, HasAvatar: true, CameraMode: camera.ModeOrbit})
	if !strings.HasPrefix(got, "frame 9  pos (0.0, 0.0)  yaw 0.00  idle\ncamera orbit") {
		t.Fatalf("statusText=%q", got)
	}
}

func TestLerpColor(t *testing.T) {
	a := color.RGBA{R: 0, G: 100, B: 200, A: 0x10}
	b := color.RGBA{R: 200, G: 100, B: 0, A: 0x10}
	tests := []struct {
		t    float64
		want color.RGBA
	}{
		{0, color.RGBA{R: 0, G: 100, B: 200, A: 0xff}},
		{0.5, color.RGBA{R: 100, G: 100, B: 100, A: 0xff}},
		{1, color.RGBA{R: 200, G: 100, B: 0, A: 0xff}},
	}
	for _, tt := range tests {
		if got := lerpColor(a, b, tt.t); got != tt.want {
			t.Errorf("lerpColor(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}
