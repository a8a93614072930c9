package game

import (
	"context"
	"fmt"
	"time"

	"github.com/pthm-cable/collider/bridge"
	"github.com/pthm-cable/collider/components"
	"github.com/pthm-cable/collider/telemetry"
)

// Command is a user request delivered by the front-end.
type Command uint8

const (
	CmdNone          Command = iota
	CmdNewSimulation         // N
	CmdReportRates           // F
	CmdToggleMode            // P
	CmdOrbit                 // O
	CmdQuit                  // Q / Esc
)

// View is what a front-end needs to draw one frame. Spheres is reused
// between frames.
type View struct {
	Spheres []components.Sphere
	Scale   float64
	Mode    Mode
	Status  string
	Tick    int64
	Frame   bridge.FrameResult
}

// Frontend displays the pool and supplies user commands. Commands must not
// block; it returns whatever arrived since the previous call.
type Frontend interface {
	Commands() []Command
	Render(v View) error
}

// Apply executes one command. It reports whether the driver should stop.
func (g *Game) Apply(cmd Command) (quit bool) {
	switch cmd {
	case CmdNewSimulation:
		g.NewSimulation()
	case CmdReportRates:
		g.LogRates()
	case CmdToggleMode:
		g.ToggleMode()
	case CmdOrbit:
		g.Orbit()
	case CmdQuit:
		return true
	}
	return false
}

// View returns the current frame contents.
func (g *Game) View() View {
	g.viewBuf = g.pool.StateInto(g.viewBuf[:0])
	return View{
		Spheres: g.viewBuf,
		Scale:   g.cfg.Sim.Scale,
		Mode:    g.mode,
		Status:  g.Status(),
		Tick:    g.tick,
		Frame:   g.lastFrame,
	}
}

// Status is the one-line summary shown by the front-end.
func (g *Game) Status() string {
	return fmt.Sprintf("| %s | %s", telemetry.FormatElapsedShort(g.now().Sub(g.simStart)), g.mode)
}

// RunOptions bounds a Run.
type RunOptions struct {
	MaxTicks int64 // stop after this many ticks (0 = unlimited)
}

// Run drives the game at the configured logic rate until ctx is done, the
// front-end asks to quit, or MaxTicks is reached. Logic advances every
// tick; rendering is skipped on ticks where the render budget has not
// elapsed. fe may be nil for headless runs.
func (g *Game) Run(ctx context.Context, fe Frontend, opts RunOptions) error {
	ticker := time.NewTicker(g.cfg.Derived.TickInterval)
	defer ticker.Stop()

	throttle := newRenderThrottle(g.cfg.Loop.MaxFPS, g.cfg.Loop.LogicRate)
	statusEvery := time.Duration(g.cfg.Loop.TitleInterval * float64(time.Second))
	var status string
	var nextStatus time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if fe != nil {
			for _, cmd := range fe.Commands() {
				if g.Apply(cmd) {
					return nil
				}
			}
		}

		now := g.now()
		var render func()
		var renderErr error
		if fe != nil && throttle.due(now) {
			if !now.Before(nextStatus) {
				status = g.Status()
				nextStatus = now.Add(statusEvery)
			}
			render = func() {
				v := g.View()
				v.Status = status
				renderErr = fe.Render(v)
			}
		}

		g.step(render)
		if renderErr != nil {
			return fmt.Errorf("rendering frame: %w", renderErr)
		}

		if opts.MaxTicks > 0 && g.tick >= opts.MaxTicks {
			return nil
		}
	}
}

// renderThrottle decides which logic ticks also render.
type renderThrottle struct {
	budget time.Duration // zero renders every tick
	last   time.Time
}

func newRenderThrottle(maxFPS, logicRate float64) *renderThrottle {
	t := &renderThrottle{}
	if maxFPS > 0 && maxFPS < logicRate {
		t.budget = time.Duration(float64(time.Second) / maxFPS)
	}
	return t
}

func (t *renderThrottle) due(now time.Time) bool {
	if t.budget == 0 {
		return true
	}
	if !t.last.IsZero() && now.Sub(t.last) < t.budget {
		return false
	}
	t.last = now
	return true
}
