package game

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/collider/config"
)

type stubChannel struct {
	published [][]byte
	result    []byte
}

func (c *stubChannel) Publish(record []byte) error {
	c.published = append(c.published, append([]byte(nil), record...))
	return nil
}

func (c *stubChannel) Fetch() ([]byte, error) {
	if c.result == nil {
		return nil, errors.New("no result")
	}
	return c.result, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Loop.LogicRate = 1000
	cfg.Loop.MaxFPS = 2000
	cfg.ComputeDerived()
	return cfg
}

func newTestGame(t *testing.T, opts Options) *Game {
	t.Helper()
	if opts.Channel == nil {
		opts.Channel = &stubChannel{}
	}
	g, err := NewGame(testConfig(t), opts)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

func TestFixedSeedIsDeterministic(t *testing.T) {
	a := newTestGame(t, Options{Seed: 42})
	b := newTestGame(t, Options{Seed: 42})

	if a.Seed() != 42 {
		t.Errorf("Seed = %d, want 42", a.Seed())
	}
	for i := 0; i < 300; i++ {
		a.Tick()
		b.Tick()
	}
	sa, sb := a.Pool().State(), b.Pool().State()
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("sphere %d diverged: %+v vs %+v", i, sa[i], sb[i])
		}
	}
}

func TestNewSimulationReseeds(t *testing.T) {
	a := newTestGame(t, Options{Seed: 7})
	b := newTestGame(t, Options{Seed: 7})
	first := a.Pool().State()

	a.NewSimulation()
	b.NewSimulation()

	if a.Seed() == 7 {
		t.Error("second simulation reused the starting seed")
	}
	if a.Seed() != b.Seed() {
		t.Errorf("derived seeds differ: %d vs %d", a.Seed(), b.Seed())
	}
	if a.Simulations() != 2 {
		t.Errorf("Simulations = %d, want 2", a.Simulations())
	}

	second := a.Pool().State()
	same := true
	for i := range first {
		if first[i] != second[i] {
			same = false
		}
		if second[i].Hit {
			t.Errorf("sphere %d flagged after reset", i)
		}
		if r := r3.Norm(second[i].Pos.Vec()); r > 1 {
			t.Errorf("sphere %d outside ball after reset: %v", i, r)
		}
	}
	if same {
		t.Error("pool unchanged by new simulation")
	}
}

func TestEntropySeedFallback(t *testing.T) {
	calls := 0
	g := newTestGame(t, Options{SeedSource: func() (int64, error) {
		calls++
		return 0, errors.New("entropy unavailable")
	}})
	if calls != 1 {
		t.Errorf("seed source called %d times, want 1", calls)
	}
	if g.Seed() == 0 {
		t.Error("fallback seed is zero")
	}
	g.Tick()
}

func TestEntropySeed(t *testing.T) {
	seed, err := EntropySeed()
	if err != nil {
		t.Fatal(err)
	}
	if seed < 0 {
		t.Errorf("seed %d is negative", seed)
	}
}

func TestToggleModeClearsFlags(t *testing.T) {
	g := newTestGame(t, Options{Seed: 1})

	g.ToggleMode()
	if g.Mode() != ModeLearned {
		t.Fatalf("mode = %v, want NEURAL", g.Mode())
	}
	for i := 0; i < 3; i++ {
		_, _, hit := g.Pool().Get(i)
		hit.Hit = true
	}

	g.ToggleMode()
	if g.Mode() != ModeReference {
		t.Fatalf("mode = %v, want CPU", g.Mode())
	}
	if n := g.Pool().FlaggedCount(); n != 0 {
		t.Errorf("%d flags survived leaving learned mode", n)
	}
}

func TestLearnedTickWithoutPrediction(t *testing.T) {
	ch := &stubChannel{}
	g := newTestGame(t, Options{Seed: 3, Mode: ModeLearned, Channel: ch})
	before := g.Pool().State()

	for i := 0; i < 5; i++ {
		g.Tick()
	}

	if len(ch.published) != 5 {
		t.Fatalf("published %d records, want 5", len(ch.published))
	}
	if got := len(ch.published[0]); got != 16*6*4 {
		t.Errorf("record is %d bytes, want %d", got, 16*6*4)
	}
	after := g.Pool().State()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("sphere %d moved without a prediction", i)
		}
	}
	if g.LastFrame().Status.String() != "absent" {
		t.Errorf("last frame = %v, want absent", g.LastFrame().Status)
	}
}

func TestApplyCommands(t *testing.T) {
	tests := []struct {
		name  string
		cmd   Command
		quit  bool
		check func(t *testing.T, g *Game)
	}{
		{"quit", CmdQuit, true, nil},
		{"none", CmdNone, false, nil},
		{"rates", CmdReportRates, false, nil},
		{"new simulation", CmdNewSimulation, false, func(t *testing.T, g *Game) {
			if g.Simulations() != 2 {
				t.Errorf("Simulations = %d, want 2", g.Simulations())
			}
		}},
		{"toggle", CmdToggleMode, false, func(t *testing.T, g *Game) {
			if g.Mode() != ModeLearned {
				t.Errorf("mode = %v, want NEURAL", g.Mode())
			}
		}},
		{"orbit", CmdOrbit, false, func(t *testing.T, g *Game) {
			for i, s := range g.Pool().State() {
				r := r3.Norm(s.Pos.Vec())
				if r < 1.2-1e-9 || r >= 1.5 {
					t.Errorf("sphere %d at radius %v, want [1.2, 1.5)", i, r)
				}
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t, Options{Seed: 11})
			if quit := g.Apply(tt.cmd); quit != tt.quit {
				t.Errorf("Apply(%d) quit = %v, want %v", tt.cmd, quit, tt.quit)
			}
			if tt.check != nil {
				tt.check(t, g)
			}
		})
	}
}

func TestTelemetryOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	cfg := testConfig(t)
	cfg.Telemetry.StatsWindow = 0.01 // 10 ticks at 1000 lps
	cfg.ComputeDerived()

	g, err := NewGame(cfg, Options{Seed: 5, OutputDir: dir, Channel: &stubChannel{}})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 30; i++ {
		g.Tick()
	}
	if err := g.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("telemetry.csv has %d lines, want header + 3 windows", len(lines))
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot missing: %v", err)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeReference, false},
		{"0", ModeReference, false},
		{"1", ModeLearned, false},
		{"2", ModeLearned, false},
		{"neural", ModeLearned, false},
		{"CPU", ModeReference, false},
		{"fast", ModeReference, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
