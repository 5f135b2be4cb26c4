// Package window runs the session in a desktop window drawn with ebiten.
package window

import (
	"github.com/Versifine/knights/internal/frontend"
	"github.com/Versifine/knights/internal/input"
)

const (
	orbitStep = 0.03
	zoomStep  = 0.5

	keyCameraToggle = "c"
	keyOrbitLeft    = "q"
	keyOrbitRight   = "e"
	keyOrbitUp      = "r"
	keyOrbitDown    = "v"
	keyZoomIn       = "z"
	keyZoomOut      = "x"
)

// Router turns per-key press and release edges into action edges. Several
// keys may share an action; the action is released when the last one goes up.
type Router struct {
	sink     frontend.EdgeSink
	bindings input.Bindings
	held     map[input.Action]int
	down     map[string]bool
}

func NewRouter(sink frontend.EdgeSink, bindings input.Bindings) *Router {
	if bindings == nil {
		bindings = input.DefaultBindings()
	}
	return &Router{
		sink:     sink,
		bindings: bindings,
		held:     make(map[input.Action]int),
		down:     make(map[string]bool),
	}
}

func (r *Router) Key(name string, pressed bool) {
	a, ok := r.bindings.Lookup(name)
	if !ok || r.down[name] == pressed {
		return
	}
	r.down[name] = pressed
	if pressed {
		r.held[a]++
		if r.held[a] == 1 {
			r.sink.OnKeyEdge(a, true)
		}
		return
	}
	r.held[a]--
	if r.held[a] <= 0 {
		delete(r.held, a)
		r.sink.OnKeyEdge(a, false)
	}
}

// ReleaseAll lifts every key still down, e.g. when the window loses focus.
func (r *Router) ReleaseAll() {
	for name, down := range r.down {
		if down {
			r.Key(name, false)
		}
	}
}

// gesture is the camera motion requested by the keys held this frame.
type gesture struct {
	dAzimuth float64
	dPolar   float64
	zoom     float64
}

func (g gesture) zero() bool {
	return g.dAzimuth == 0 && g.dPolar == 0 && g.zoom == 0
}

func cameraGesture(held func(name string) bool) gesture {
	var g gesture
	if held(keyOrbitLeft) {
		g.dAzimuth -= orbitStep
	}
	if held(keyOrbitRight) {
		g.dAzimuth += orbitStep
	}
	if held(keyOrbitUp) {
		g.dPolar -= orbitStep
	}
	if held(keyOrbitDown) {
		g.dPolar += orbitStep
	}
	if held(keyZoomIn) {
		g.zoom += zoomStep
	}
	if held(keyZoomOut) {
		g.zoom -= zoomStep
	}
	return g
}
