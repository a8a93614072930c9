// Package game owns the simulation context: the sphere pool, its random
// state, the mode controller and the fixed-rate driver loop.
package game

import (
	"log/slog"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/collider/bridge"
	"github.com/pthm-cable/collider/components"
	"github.com/pthm-cable/collider/config"
	"github.com/pthm-cable/collider/pool"
	"github.com/pthm-cable/collider/systems"
	"github.com/pthm-cable/collider/telemetry"
)

// Options configures a Game.
type Options struct {
	Seed      int64          // first simulation's seed (0 = entropy)
	Mode      Mode           // initial mode
	OutputDir string         // CSV + config snapshot directory (empty = disabled)
	LogStats  bool           // log window stats via slog
	Channel   bridge.Channel // predictor hand-off (nil = files from config)

	// SeedSource overrides EntropySeed.
	SeedSource func() (int64, error)
}

// Game holds the complete simulation state.
type Game struct {
	cfg  *config.Config
	opts Options

	pool *pool.Pool
	rng  *rand.Rand
	seed int64
	mode Mode

	reference *systems.ReferenceSystem
	bridge    *bridge.Bridge

	perf      *telemetry.PerfCollector
	rates     *telemetry.RateCounter
	collector *telemetry.Collector
	output    *telemetry.OutputManager

	now         func() time.Time
	simStart    time.Time
	tick        int64
	simulations int

	lastFrame     bridge.FrameResult
	publishWarned bool

	viewBuf  []components.Sphere
	radiiBuf []float64
}

// NewGame creates a game and starts its first simulation.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	if opts.SeedSource == nil {
		opts.SeedSource = EntropySeed
	}
	ch := opts.Channel
	if ch == nil {
		ch = bridge.NewFileChannel(cfg.Bridge.InputPath, cfg.Bridge.ResultPath)
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}

	params := systems.ParamsFromConfig(cfg)
	g := &Game{
		cfg:       cfg,
		opts:      opts,
		pool:      pool.New(cfg.Sim.Capacity),
		mode:      opts.Mode,
		reference: systems.NewReferenceSystem(params),
		bridge:    bridge.New(ch, bridge.OptionsFromConfig(cfg)),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		rates:     telemetry.NewRateCounter(time.Duration(cfg.Loop.RatesMinInterval * float64(time.Second))),
		collector: telemetry.NewCollector(cfg.Derived.StatsWindowTicks, cfg.Derived.TickInterval.Seconds()),
		output:    output,
		now:       time.Now,
	}

	g.NewSimulation()
	return g, nil
}

// NewSimulation ends the running simulation, if any, reseeds the random
// state and resets the pool. A fixed starting seed makes every later seed
// derive from the previous simulation's generator.
func (g *Game) NewSimulation() {
	if g.simulations > 0 {
		g.EndSimulation()
	}

	switch {
	case g.simulations == 0 && g.opts.Seed != 0:
		g.seed = g.opts.Seed
	case g.opts.Seed != 0:
		g.seed = g.rng.Int63()
	default:
		g.seed = seedOrFallback(g.opts.SeedSource)
	}
	g.rng = rand.New(rand.NewSource(g.seed))

	g.pool.Reset(g.rng)
	g.simStart = g.now()
	g.simulations++
	g.publishWarned = false
	g.lastFrame = bridge.FrameResult{}
	g.collector.RecordSimulation()

	slog.Info("sim start", "seed", g.seed, "mode", g.mode.String(), "spheres", g.pool.Len())
}

// EndSimulation logs how long the current simulation ran.
func (g *Game) EndSimulation() {
	elapsed := g.now().Sub(g.simStart)
	slog.Info("sim end",
		"seed", g.seed,
		"time_taken", telemetry.FormatElapsed(elapsed),
		"seconds", elapsed.Seconds(),
		"tick", g.tick,
	)
}

// SetMode switches the mode controller. Leaving learned mode clears every
// collision flag.
func (g *Game) SetMode(m Mode) {
	if m == g.mode {
		return
	}
	if g.mode == ModeLearned {
		g.pool.ClearFlags()
	}
	g.mode = m

	state := "OFF"
	if m == ModeLearned {
		state = "ON"
	}
	slog.Info("neural sim", "state", state, "time_taken", telemetry.FormatElapsed(g.now().Sub(g.simStart)))
}

// ToggleMode flips between reference and learned mode.
func (g *Game) ToggleMode() {
	if g.mode == ModeLearned {
		g.SetMode(ModeReference)
	} else {
		g.SetMode(ModeLearned)
	}
}

// Orbit moves every sphere just outside the unit ball.
func (g *Game) Orbit() {
	g.pool.Orbit(g.rng)
	slog.Info("orbit", "tick", g.tick)
}

// LogRates logs average frame and logic rates since the last report.
// Requests arriving too soon after the previous report are ignored.
func (g *Game) LogRates() {
	r, ok := g.rates.Report()
	if !ok {
		return
	}
	slog.Info("rates", "fps", r.FPS, "lps", r.LPS, "window_sec", r.Elapsed.Seconds())
}

// Tick advances the simulation by one logic tick without rendering.
func (g *Game) Tick() {
	g.step(nil)
}

// step runs one logic tick. render, if non-nil, is timed as part of it.
func (g *Game) step(render func()) {
	g.perf.StartTick()

	switch g.mode {
	case ModeReference:
		g.perf.StartPhase(telemetry.PhasePhysics)
		g.collector.RecordStep(g.reference.Step(g.pool, nil))
	case ModeLearned:
		g.perf.StartPhase(telemetry.PhaseBridge)
		res, err := g.bridge.Tick(g.pool)
		if err != nil && !g.publishWarned {
			slog.Warn("bridge publish failed", "error", err)
			g.publishWarned = true
		}
		g.collector.RecordFrame(res, err)
		g.lastFrame = res
	}

	if render != nil {
		g.perf.StartPhase(telemetry.PhaseRender)
		render()
		g.perf.RecordFrame()
		g.rates.Frame()
	}

	g.perf.EndTick()
	g.tick++
	g.rates.Tick()
	g.flushTelemetry()
}

// Close ends the running simulation and flushes output files.
func (g *Game) Close() error {
	g.EndSimulation()
	return g.output.Close()
}

// Pool returns the sphere pool.
func (g *Game) Pool() *pool.Pool { return g.pool }

// Mode returns the active mode.
func (g *Game) Mode() Mode { return g.mode }

// Seed returns the current simulation's seed.
func (g *Game) Seed() int64 { return g.seed }

// TickCount returns logic ticks run since the game was created.
func (g *Game) TickCount() int64 { return g.tick }

// Simulations returns how many simulations have been started.
func (g *Game) Simulations() int { return g.simulations }

// LastFrame returns the most recent bridge outcome.
func (g *Game) LastFrame() bridge.FrameResult { return g.lastFrame }

// Perf returns the performance collector.
func (g *Game) Perf() *telemetry.PerfCollector { return g.perf }

func (g *Game) radii() []float64 {
	g.radiiBuf = g.radiiBuf[:0]
	for i := 0; i < g.pool.Len(); i++ {
		pos, _, _ := g.pool.Get(i)
		g.radiiBuf = append(g.radiiBuf, r3.Norm(pos.Vec()))
	}
	return g.radiiBuf
}
