// Package terminal renders a top-down map of the session with tcell.
package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Versifine/knights/internal/body"
	"github.com/Versifine/knights/internal/enemy"
	"github.com/Versifine/knights/internal/frontend"
	"github.com/Versifine/knights/internal/game"
	"github.com/Versifine/knights/internal/input"
	"github.com/gdamore/tcell/v2"
)

var (
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleAvatar     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleAttack     = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0xff, 0x00, 0x00)).Bold(true)
	styleFallback   = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0x8b, 0x45, 0x13))
	styleProjectile = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	stylePatrol     = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleFollowing  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleIdle       = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleGround     = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0x3a, 0x5f, 0x0b))
)

// View is a terminal frontend. Terminals only report key presses, so held
// actions are synthesized with a Pulser.
type View struct {
	sim      frontend.Sim
	screen   tcell.Screen
	bindings input.Bindings
	pulser   *frontend.Pulser
	tickRate int

	shade    []float64
	shadeFor frontend.Projector
}

func NewView(sim frontend.Sim, screen tcell.Screen, bindings input.Bindings, tickRate int, movePulse time.Duration) *View {
	if bindings == nil {
		bindings = input.DefaultBindings()
	}
	if tickRate <= 0 {
		tickRate = 60
	}
	return &View{
		sim:      sim,
		screen:   screen,
		bindings: bindings,
		pulser:   frontend.NewPulser(sim, movePulse),
		tickRate: tickRate,
	}
}

// Open creates and initializes the real terminal screen.
func Open() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	return screen, nil
}

// Run draws frames until ctx ends or Esc/Ctrl-C is pressed. It finalizes the
// screen on return.
func (v *View) Run(ctx context.Context) error {
	defer v.screen.Fini()

	ticker := time.NewTicker(time.Second / time.Duration(v.tickRate))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-eventChan:
			if !v.handleEvent(ev, time.Now()) {
				v.pulser.ReleaseAll()
				slog.Debug("Terminal view closed by user")
				return nil
			}
		case now := <-ticker.C:
			v.pulser.Expire(now)
			v.sim.Tick(now.Sub(last))
			last = now
			v.draw(v.sim.Snapshot())
		}
	}
}

// handleEvent reports false once the view should close.
func (v *View) handleEvent(ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		name, ok := keyName(ev)
		if !ok {
			return true
		}
		if a, ok := v.bindings.Lookup(name); ok {
			v.pulser.Press(a, now)
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func keyName(ev *tcell.EventKey) (string, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return "up", true
	case tcell.KeyDown:
		return "down", true
	case tcell.KeyLeft:
		return "left", true
	case tcell.KeyRight:
		return "right", true
	case tcell.KeyRune:
		if ev.Rune() == ' ' {
			return "space", true
		}
		return string(ev.Rune()), true
	}
	return "", false
}

func (v *View) draw(snap game.Snapshot) {
	v.screen.Clear()
	w, h := v.screen.Size()
	if w <= 0 || h <= 1 {
		v.screen.Show()
		return
	}

	proj := frontend.Projector{Bound: snap.Bound, W: w, H: h - 1}
	v.drawGround(proj)

	for _, e := range snap.Enemies {
		col, row, ok := proj.ToScreen(e.Position.X(), e.Position.Z())
		if !ok {
			continue
		}
		glyph, style := 'e', stylePatrol
		switch e.State {
		case enemy.StateFollowing:
			glyph, style = 'E', styleFollowing
		case enemy.StateIdle:
			style = styleIdle
		}
		v.screen.SetContent(col, row, glyph, nil, style)
	}

	for _, p := range snap.Projectiles {
		if col, row, ok := proj.ToScreen(p.Position.X(), p.Position.Z()); ok {
			v.screen.SetContent(col, row, '*', nil, styleProjectile)
		}
	}

	if snap.HasAvatar {
		if col, row, ok := proj.ToScreen(snap.Avatar.Position.X(), snap.Avatar.Position.Z()); ok {
			style := styleAvatar
			switch {
			case snap.Attack == body.Attacking:
				style = styleAttack
			case snap.Fallback:
				style = styleFallback
			}
			v.screen.SetContent(col, row, frontend.HeadingGlyph(snap.Avatar.Yaw), nil, style)
		}
	}

	v.drawText(0, h-1, w, statusText(snap), styleStatus)
	v.screen.Show()
}

var groundRamp = []rune{'.', ':', '-', '=', '+', '#'}

// drawGround shades the terrain mesh by height when the sim exposes one and
// otherwise marks every fifth cell so motion is visible on an empty field.
func (v *View) drawGround(proj frontend.Projector) {
	if shade := v.groundShade(proj); shade != nil {
		for row := 0; row < proj.H; row++ {
			for col := 0; col < proj.W; col++ {
				s := shade[row*proj.W+col]
				if s < 0 {
					continue
				}
				i := min(int(s*float64(len(groundRamp))), len(groundRamp)-1)
				v.screen.SetContent(col, row, groundRamp[i], nil, styleGround)
			}
		}
		return
	}
	for row := 0; row < proj.H; row += 2 {
		for col := 0; col < proj.W; col += 5 {
			v.screen.SetContent(col, row, '·', nil, styleGround)
		}
	}
}

// groundShade caches the shade grid until the screen or map size changes.
func (v *View) groundShade(proj frontend.Projector) []float64 {
	src, ok := v.sim.(frontend.GroundSource)
	if !ok {
		return nil
	}
	if v.shade == nil || v.shadeFor != proj {
		v.shade = frontend.GroundShade(src.Ground(), proj)
		v.shadeFor = proj
	}
	return v.shade
}

func (v *View) drawText(x, y, w int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= w {
			return
		}
		v.screen.SetContent(col, y, r, nil, style)
		col++
	}
	for ; col < w; col++ {
		v.screen.SetContent(col, y, ' ', nil, style)
	}
}

func statusText(snap game.Snapshot) string {
	if !snap.HasAvatar {
		return fmt.Sprintf(" frame %d | loading...", snap.Frame)
	}
	return fmt.Sprintf(" frame %d | x %.1f z %.1f yaw %.2f | %s | cam %s | bolts %d | enemies %d | Esc quits",
		snap.Frame,
		snap.Avatar.Position.X(), snap.Avatar.Position.Z(), snap.Avatar.Yaw,
		snap.Attack,
		snap.CameraMode,
		len(snap.Projectiles),
		len(snap.Enemies),
	)
}
