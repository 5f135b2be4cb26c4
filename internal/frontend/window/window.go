//go:build cgo

package window

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"time"

	"github.com/Versifine/knights/internal/body"
	"github.com/Versifine/knights/internal/camera"
	"github.com/Versifine/knights/internal/enemy"
	"github.com/Versifine/knights/internal/frontend"
	"github.com/Versifine/knights/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	colorBackground = color.RGBA{R: 0x1e, G: 0x2a, B: 0x14, A: 0xff}
	colorGrid       = color.RGBA{R: 0x3a, G: 0x5f, B: 0x0b, A: 0x60}
	colorAvatar     = color.RGBA{R: 0xdd, G: 0xdd, B: 0xee, A: 0xff}
	colorAttack     = color.RGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff}
	colorFallback   = color.RGBA{R: 0x8b, G: 0x45, B: 0x13, A: 0xff}
	colorProjectile = color.RGBA{R: 0x40, G: 0xe0, B: 0xff, A: 0xff}
	colorPatrol     = color.RGBA{R: 0xe0, G: 0xc0, B: 0x20, A: 0xff}
	colorFollowing  = color.RGBA{R: 0xff, G: 0x50, B: 0x30, A: 0xff}
	colorIdle       = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	colorLowland    = color.RGBA{R: 0x1e, G: 0x3a, B: 0x10, A: 0xff}
	colorHighland   = color.RGBA{R: 0x7a, G: 0x8a, B: 0x4a, A: 0xff}
)

// groundCells is the shading resolution per side of the map.
const groundCells = 64

var ebitenKeys = map[string]ebiten.Key{
	"a": ebiten.KeyA, "b": ebiten.KeyB, "c": ebiten.KeyC, "d": ebiten.KeyD,
	"e": ebiten.KeyE, "f": ebiten.KeyF, "g": ebiten.KeyG, "h": ebiten.KeyH,
	"i": ebiten.KeyI, "j": ebiten.KeyJ, "k": ebiten.KeyK, "l": ebiten.KeyL,
	"m": ebiten.KeyM, "n": ebiten.KeyN, "o": ebiten.KeyO, "p": ebiten.KeyP,
	"q": ebiten.KeyQ, "r": ebiten.KeyR, "s": ebiten.KeyS, "t": ebiten.KeyT,
	"u": ebiten.KeyU, "v": ebiten.KeyV, "w": ebiten.KeyW, "x": ebiten.KeyX,
	"y": ebiten.KeyY, "z": ebiten.KeyZ,
	"up":    ebiten.KeyArrowUp,
	"down":  ebiten.KeyArrowDown,
	"left":  ebiten.KeyArrowLeft,
	"right": ebiten.KeyArrowRight,
	"space": ebiten.KeySpace,
}

type windowGame struct {
	ctx    context.Context
	sim    Controller
	router *Router
	dt     time.Duration
	width  int
	height int
	snap   game.Snapshot
	shade  []float64
}

// Run opens the window and blocks until it is closed, Esc is pressed or ctx
// ends. ebiten owns the main loop, so one Update is one session frame.
func Run(ctx context.Context, sim Controller, opts Options) error {
	if opts.TickRate <= 0 {
		opts.TickRate = 60
	}
	g := &windowGame{
		ctx:    ctx,
		sim:    sim,
		router: NewRouter(sim, opts.Bindings),
		dt:     time.Second / time.Duration(opts.TickRate),
		width:  opts.Width,
		height: opts.Height,
	}

	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetTPS(opts.TickRate)
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}

func (g *windowGame) Update() error {
	if g.ctx.Err() != nil || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.router.ReleaseAll()
		slog.Debug("Window closing")
		return ebiten.Termination
	}
	if !ebiten.IsFocused() {
		g.router.ReleaseAll()
	}

	for name, key := range ebitenKeys {
		switch {
		case inpututil.IsKeyJustPressed(key):
			g.router.Key(name, true)
		case inpututil.IsKeyJustReleased(key):
			g.router.Key(name, false)
		}
	}

	if inpututil.IsKeyJustPressed(ebitenKeys[keyCameraToggle]) {
		next := camera.ModeOrbit
		if g.snap.CameraMode == camera.ModeOrbit {
			next = camera.ModeFollow
		}
		g.sim.SetCameraMode(next)
	}
	gest := cameraGesture(func(name string) bool { return ebiten.IsKeyPressed(ebitenKeys[name]) })
	if !gest.zero() {
		g.sim.OrbitCamera(gest.dAzimuth, gest.dPolar)
		g.sim.ZoomCamera(gest.zoom)
	}

	g.sim.Tick(g.dt)
	g.snap = g.sim.Snapshot()
	return nil
}

func (g *windowGame) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	snap := g.snap
	proj := frontend.Projector{Bound: snap.Bound, W: g.width, H: g.height}
	if snap.Bound <= 0 {
		ebitenutil.DebugPrintAt(screen, "loading...", 8, 8)
		return
	}

	g.drawGround(screen, snap.Bound)

	cell := float64(g.width) / (2 * snap.Bound)
	for v := -snap.Bound; v <= snap.Bound; v += 10 {
		x := float32((v + snap.Bound) * cell)
		y := float32((v + snap.Bound) * float64(g.height) / (2 * snap.Bound))
		vector.StrokeLine(screen, x, 0, x, float32(g.height), 1, colorGrid, false)
		vector.StrokeLine(screen, 0, y, float32(g.width), y, 1, colorGrid, false)
	}

	for _, e := range snap.Enemies {
		col, row, ok := proj.ToScreen(e.Position.X(), e.Position.Z())
		if !ok {
			continue
		}
		clr := colorPatrol
		switch e.State {
		case enemy.StateFollowing:
			clr = colorFollowing
		case enemy.StateIdle:
			clr = colorIdle
		}
		size := float32(e.Scale * cell)
		vector.DrawFilledRect(screen, float32(col)-size/2, float32(row)-size/2, size, size, clr, false)
	}

	for _, p := range snap.Projectiles {
		if col, row, ok := proj.ToScreen(p.Position.X(), p.Position.Z()); ok {
			vector.DrawFilledCircle(screen, float32(col), float32(row), 3, colorProjectile, true)
		}
	}

	if snap.HasAvatar {
		g.drawAvatar(screen, proj, snap, cell)
	}

	ebitenutil.DebugPrintAt(screen, statusText(snap), 8, 8)
}

// drawGround fills the map with the terrain mesh shaded by height. Flat
// analytic fields have no mesh and keep the plain background.
func (g *windowGame) drawGround(screen *ebiten.Image, bound float64) {
	src, ok := g.sim.(frontend.GroundSource)
	if !ok {
		return
	}
	grid := frontend.Projector{Bound: bound, W: groundCells, H: groundCells}
	if g.shade == nil {
		g.shade = frontend.GroundShade(src.Ground(), grid)
	}
	cw := float32(g.width) / groundCells
	ch := float32(g.height) / groundCells
	for row := 0; row < grid.H; row++ {
		for col := 0; col < grid.W; col++ {
			s := g.shade[row*grid.W+col]
			if s < 0 {
				continue
			}
			vector.DrawFilledRect(screen, float32(col)*cw, float32(row)*ch, cw+1, ch+1, lerpColor(colorLowland, colorHighland, s), false)
		}
	}
}

func (g *windowGame) drawAvatar(screen *ebiten.Image, proj frontend.Projector, snap game.Snapshot, cell float64) {
	col, row, ok := proj.ToScreen(snap.Avatar.Position.X(), snap.Avatar.Position.Z())
	if !ok {
		return
	}
	clr := colorAvatar
	switch {
	case snap.Attack == body.Attacking:
		clr = colorAttack
	case snap.Fallback:
		clr = colorFallback
	}
	radius := float32(math.Max(snap.Avatar.Scale*cell, 4))
	cx, cy := float32(col), float32(row)
	vector.DrawFilledCircle(screen, cx, cy, radius, clr, true)

	// heading: yaw 0 points up the screen
	hx := cx + float32(math.Sin(snap.Avatar.Yaw))*radius*2
	hy := cy - float32(math.Cos(snap.Avatar.Yaw))*radius*2
	vector.StrokeLine(screen, cx, cy, hx, hy, 2, clr, true)
}

func (g *windowGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}
