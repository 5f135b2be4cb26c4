package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Versifine/knights/internal/camera"
	"github.com/Versifine/knights/internal/enemy"
	"github.com/Versifine/knights/internal/frontend"
	"github.com/Versifine/knights/internal/game"
	"github.com/Versifine/knights/internal/input"
	"golang.org/x/term"
)

const (
	defaultTickRate  = 60
	defaultMovePulse = 180 * time.Millisecond
)

// Controller is the session surface the console drives, including the
// debug commands.
type Controller interface {
	frontend.Sim
	Teleport(x, z float64) bool
	SetCameraMode(m camera.Mode) bool
	OrbitCamera(dAzimuth, dPolar float64)
	ZoomCamera(steps float64)
	SetEnemyState(st enemy.State)
}

type Console struct {
	sim      Controller
	bindings input.Bindings
	pulser   *frontend.Pulser
	tickRate int

	in  io.Reader
	out io.Writer
	now func() time.Time

	mu          sync.Mutex
	commandMode bool
	commandBuf  []rune
	statusWidth int
	quit        bool
}

func NewConsole(sim Controller, bindings input.Bindings, tickRate int, movePulse time.Duration) *Console {
	if bindings == nil {
		bindings = input.DefaultBindings()
	}
	if tickRate <= 0 {
		tickRate = defaultTickRate
	}
	if movePulse <= 0 {
		movePulse = defaultMovePulse
	}
	return &Console{
		sim:      sim,
		bindings: bindings,
		pulser:   frontend.NewPulser(sim, movePulse),
		tickRate: tickRate,
		in:       os.Stdin,
		out:      os.Stdout,
		now:      time.Now,
	}
}

// Start reads keys until ctx ends, Ctrl-C is pressed or input closes.
func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.sim == nil {
		return fmt.Errorf("console session is nil")
	}

	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("set terminal raw mode: %w", err)
		}
		defer func() {
			_ = term.Restore(fd, oldState)
			fmt.Fprint(c.out, "\r\n")
		}()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprint(c.out, "[knights] console started (W/A/S/D or arrows move, Space attack, F fire, X release, : command, Ctrl-C quit)\r\n")

	go frontend.Loop(ctx, c.sim, c.tickRate,
		func(now time.Time) { c.pulser.Expire(now) },
		c.renderStatusLine,
	)

	reader := bufio.NewReader(c.in)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		b, err := reader.ReadByte()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		}
		if !c.handleKey(reader, b) {
			c.pulser.ReleaseAll()
			return nil
		}
	}
}

// handleKey reports false once the console should stop.
func (c *Console) handleKey(reader *bufio.Reader, b byte) bool {
	if c.isCommandMode() {
		c.handleCommandByte(b)
		return !c.quitRequested()
	}

	switch b {
	case 3: // Ctrl-C in raw mode
		return false
	case ':':
		c.enterCommandMode()
		return true
	case 'x', 'X':
		c.pulser.ReleaseAll()
		return true
	case 27: // ESC + arrow sequence
		next, err := reader.ReadByte()
		if err != nil || next != '[' {
			return true
		}
		arrow, err := reader.ReadByte()
		if err != nil {
			return true
		}
		switch arrow {
		case 'A':
			c.press("up")
		case 'B':
			c.press("down")
		case 'C':
			c.press("right")
		case 'D':
			c.press("left")
		}
		return true
	case ' ':
		c.press("space")
		return true
	}
	if b >= 32 && b <= 126 {
		c.press(string(rune(b)))
	}
	return true
}

func (c *Console) press(key string) {
	a, ok := c.bindings.Lookup(key)
	if !ok {
		return
	}
	c.pulser.Press(a, c.now())
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	fmt.Fprint(c.out, "\r\n:")
}

func (c *Console) handleCommandByte(b byte) {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		fmt.Fprint(c.out, "\r\n")
		if cmd != "" {
			c.executeCommand(cmd)
		}
		return
	case 27: // ESC cancel command mode
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		fmt.Fprint(c.out, "\r\n[knights] command cancelled\r\n")
		return
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s ", buf)
		fmt.Fprintf(c.out, "\r:%s", buf)
		return
	default:
		if b < 32 || b > 126 {
			return
		}
		c.mu.Lock()
		c.commandBuf = append(c.commandBuf, rune(b))
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s", buf)
	}
}

func (c *Console) executeCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "state", "snap":
		fmt.Fprintf(c.out, "[knights] %s\r\n", c.sim.Snapshot().String())
	case "tp":
		if len(parts) != 3 {
			fmt.Fprint(c.out, "[knights] usage: :tp <x> <z>\r\n")
			return
		}
		x, err1 := strconv.ParseFloat(parts[1], 64)
		z, err2 := strconv.ParseFloat(parts[2], 64)
		if err1 != nil || err2 != nil {
			fmt.Fprint(c.out, "[knights] invalid tp args\r\n")
			return
		}
		if !c.sim.Teleport(x, z) {
			fmt.Fprint(c.out, "[knights] avatar not loaded\r\n")
			return
		}
		fmt.Fprintf(c.out, "[knights] teleported to (%.3f, %.3f)\r\n", x, z)
	case "attack":
		c.pulser.Press(input.Attack, c.now())
	case "fire":
		c.pulser.Press(input.Fire, c.now())
	case "cam":
		if len(parts) != 2 || !c.sim.SetCameraMode(camera.Mode(parts[1])) {
			fmt.Fprint(c.out, "[knights] usage: :cam follow|orbit\r\n")
			return
		}
		fmt.Fprintf(c.out, "[knights] camera mode %s\r\n", parts[1])
	case "orbit":
		if len(parts) != 3 {
			fmt.Fprint(c.out, "[knights] usage: :orbit <azimuth> <polar>\r\n")
			return
		}
		da, err1 := strconv.ParseFloat(parts[1], 64)
		dp, err2 := strconv.ParseFloat(parts[2], 64)
		if err1 != nil || err2 != nil {
			fmt.Fprint(c.out, "[knights] invalid orbit args\r\n")
			return
		}
		c.sim.OrbitCamera(da, dp)
	case "zoom":
		if len(parts) != 2 {
			fmt.Fprint(c.out, "[knights] usage: :zoom <steps>\r\n")
			return
		}
		steps, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			fmt.Fprint(c.out, "[knights] invalid zoom args\r\n")
			return
		}
		c.sim.ZoomCamera(steps)
	case "freeze":
		c.sim.SetEnemyState(enemy.StateIdle)
		slog.Debug("enemies frozen")
	case "unfreeze":
		c.sim.SetEnemyState(enemy.StatePatrol)
		slog.Debug("enemies released")
	case "quit", "q":
		c.mu.Lock()
		c.quit = true
		c.mu.Unlock()
	default:
		fmt.Fprintf(c.out, "[knights] unknown command: %s\r\n", parts[0])
	}
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, "[knights] keys:\r\n")
	for _, a := range input.Actions() {
		keys := c.bindings.Keys(a)
		if len(keys) == 0 {
			continue
		}
		sort.Strings(keys)
		fmt.Fprintf(c.out, "  %s: %s\r\n", a, strings.Join(keys, ", "))
	}
	fmt.Fprint(c.out, "  x: release all keys\r\n")
	fmt.Fprint(c.out, "  : enter command mode\r\n")
	fmt.Fprint(c.out, "[knights] commands:\r\n")
	fmt.Fprint(c.out, "  :tp <x> <z>\r\n")
	fmt.Fprint(c.out, "  :attack\r\n")
	fmt.Fprint(c.out, "  :fire\r\n")
	fmt.Fprint(c.out, "  :cam follow|orbit\r\n")
	fmt.Fprint(c.out, "  :orbit <azimuth> <polar>\r\n")
	fmt.Fprint(c.out, "  :zoom <steps>\r\n")
	fmt.Fprint(c.out, "  :freeze / :unfreeze\r\n")
	fmt.Fprint(c.out, "  :state\r\n")
	fmt.Fprint(c.out, "  :quit\r\n")
	fmt.Fprint(c.out, "  :help\r\n")
}

func (c *Console) renderStatusLine(snap game.Snapshot) {
	c.mu.Lock()
	if c.commandMode {
		c.mu.Unlock()
		return
	}
	width := c.statusWidth
	c.mu.Unlock()

	line := statusLine(snap)
	padding := ""
	if width > len(line) {
		padding = strings.Repeat(" ", width-len(line))
	}
	fmt.Fprintf(c.out, "\r%s%s", line, padding)

	c.mu.Lock()
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
	c.mu.Unlock()
}

func statusLine(snap game.Snapshot) string {
	if !snap.HasAvatar {
		return fmt.Sprintf("[F:%d | loading...]", snap.Frame)
	}
	following := 0
	for _, e := range snap.Enemies {
		if e.State == enemy.StateFollowing {
			following++
		}
	}
	return fmt.Sprintf(
		"[F:%d | FWD:%s BCK:%s LFT:%s RGT:%s | ATK:%s | X:%.2f Y:%.2f Z:%.2f YAW:%.2f | CAM:%s | PRJ:%d | ENM:%d/%d]",
		snap.Frame,
		boolLabel(snap.Input.Forward),
		boolLabel(snap.Input.Backward),
		boolLabel(snap.Input.Left),
		boolLabel(snap.Input.Right),
		snap.Attack,
		snap.Avatar.Position.X(),
		snap.Avatar.Position.Y(),
		snap.Avatar.Position.Z(),
		snap.Avatar.Yaw,
		snap.CameraMode,
		len(snap.Projectiles),
		following,
		len(snap.Enemies),
	)
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

func (c *Console) quitRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quit
}

func boolLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
