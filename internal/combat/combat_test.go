package combat

import (
	"testing"
	"time"

	"github.com/Versifine/knights/internal/asset"
	"github.com/Versifine/knights/internal/body"
	"github.com/Versifine/knights/internal/clock"
	"github.com/go-gl/mathgl/mgl64"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newKnight() *body.Avatar {
	return body.New(&asset.Renderable{Parts: []asset.Part{
		{ID: "torso", Appearance: asset.Appearance{Color: 0x3366cc, Opacity: 1}},
		{ID: "cape", Appearance: asset.Appearance{Color: 0x22aa44, Opacity: 0.6}},
	}}, mgl64.Vec3{}, 1.2)
}

func TestTriggerAppliesEffect(t *testing.T) {
	sched := clock.NewScheduler()
	c := NewController(DefaultParams(), sched)
	a := newKnight()

	if !c.Trigger(a, epoch) {
		t.Fatalf("Trigger() = false on idle avatar")
	}
	if a.Attack != body.Attacking || !c.Active() {
		t.Fatalf("avatar not attacking after trigger")
	}
	if a.Scale != 1.2*1.3 {
		t.Fatalf("scale=%v want %v", a.Scale, 1.2*1.3)
	}
	for _, p := range a.Parts() {
		if p.Color != DefaultImpactColor {
			t.Fatalf("part %s color=%06x want ff0000", p.ID, p.Color)
		}
	}
	cape, _ := a.Appearance("cape")
	if cape.Opacity != 0.6 {
		t.Fatalf("impact should keep opacity, got %v", cape.Opacity)
	}
	if sched.Pending() != 1 {
		t.Fatalf("pending=%d want 1 restore", sched.Pending())
	}
}

func TestReentrantTriggerIsIgnored(t *testing.T) {
	sched := clock.NewScheduler()
	c := NewController(DefaultParams(), sched)
	a := newKnight()
	before := a.Parts()

	c.Trigger(a, epoch)
	if c.Trigger(a, epoch.Add(200*time.Millisecond)) {
		t.Fatalf("second trigger inside the effect window should be a no-op")
	}
	if c.Cycles() != 1 || sched.Pending() != 1 {
		t.Fatalf("cycles=%d pending=%d want 1/1", c.Cycles(), sched.Pending())
	}
	if a.Scale != 1.2*1.3 {
		t.Fatalf("scale compounded: %v", a.Scale)
	}

	sched.Fire(epoch.Add(500 * time.Millisecond))

	if a.Scale != 1.2 || a.Attack != body.Idle || c.Active() {
		t.Fatalf("not restored: scale=%v attack=%s", a.Scale, a.Attack)
	}
	after := a.Parts()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("part %d = %+v want %+v", i, after[i], before[i])
		}
	}
}

func TestRestoreWaitsForWallClock(t *testing.T) {
	sched := clock.NewScheduler()
	c := NewController(DefaultParams(), sched)
	a := newKnight()
	c.Trigger(a, epoch)

	sched.Fire(epoch.Add(499 * time.Millisecond))
	if !c.Active() {
		t.Fatalf("restored before duration elapsed")
	}
	sched.Fire(epoch.Add(500 * time.Millisecond))
	if c.Active() {
		t.Fatalf("not restored at duration")
	}
}

func TestNewCycleAfterRestore(t *testing.T) {
	sched := clock.NewScheduler()
	c := NewController(DefaultParams(), sched)
	a := newKnight()
	var starts, ends int
	c.OnStart = func(*body.Avatar, time.Time) { starts++ }
	c.OnEnd = func(*body.Avatar, time.Time) { ends++ }

	c.Trigger(a, epoch)
	sched.Fire(epoch.Add(time.Second))
	if !c.Trigger(a, epoch.Add(time.Second)) {
		t.Fatalf("trigger after restore should start a new cycle")
	}
	sched.Fire(epoch.Add(2 * time.Second))

	if starts != 2 || ends != 2 || c.Cycles() != 2 {
		t.Fatalf("starts=%d ends=%d cycles=%d want 2/2/2", starts, ends, c.Cycles())
	}
	if a.Scale != 1.2 {
		t.Fatalf("scale=%v want 1.2", a.Scale)
	}
}

func TestTriggerWithoutAvatar(t *testing.T) {
	sched := clock.NewScheduler()
	c := NewController(DefaultParams(), sched)
	if c.Trigger(nil, epoch) {
		t.Fatalf("Trigger(nil) = true")
	}
	if sched.Pending() != 0 || c.Cycles() != 0 {
		t.Fatalf("nil avatar scheduled work")
	}
}
