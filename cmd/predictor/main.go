// Package main is a stand-in for the external predictor. It watches the
// bridge input record, answers each state with one tick of reference
// physics, and writes the resulting positions as the result record.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/collider/bridge"
	"github.com/pthm-cable/collider/components"
	"github.com/pthm-cable/collider/config"
	"github.com/pthm-cable/collider/pool"
	"github.com/pthm-cable/collider/record"
	"github.com/pthm-cable/collider/systems"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	poll := flag.Duration("poll", time.Millisecond, "Interval between input checks")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ch := bridge.NewFileChannel(cfg.Bridge.InputPath, cfg.Bridge.ResultPath)
	pr := newPredictor(ch, cfg)

	slog.Info("predictor started", "input", ch.InputPath, "result", ch.ResultPath, "poll", poll.String())

	ticker := time.NewTicker(*poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("predictor stopped", "answered", pr.answered, "rejected", pr.rejected)
			return
		case <-ticker.C:
		}
		if _, err := pr.poll(); err != nil {
			slog.Warn("predictor poll failed", "error", err)
		}
	}
}

// inputSource is the predictor side of a bridge.FileChannel.
type inputSource interface {
	TakeInput() ([]byte, error)
	PutResult(record []byte) error
}

type predictor struct {
	ch    inputSource
	pool  *pool.Pool
	ref   *systems.ReferenceSystem
	state []components.Sphere

	inputFloats int
	floats      []float32
	out         []byte

	answered int
	rejected int
}

func newPredictor(ch inputSource, cfg *config.Config) *predictor {
	n := cfg.Sim.Capacity
	return &predictor{
		ch:          ch,
		pool:        pool.New(n),
		ref:         systems.NewReferenceSystem(systems.ParamsFromConfig(cfg)),
		state:       make([]components.Sphere, n),
		inputFloats: cfg.Derived.InputFloats,
		floats:      make([]float32, 0, cfg.Derived.InputFloats),
		out:         make([]byte, 0, cfg.Derived.ResultFloats*record.FloatSize),
	}
}

// poll answers one pending input record. It reports whether a result was
// written; a missing input is not an error.
func (pr *predictor) poll() (bool, error) {
	data, err := pr.ch.TakeInput()
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("taking input: %w", err)
	}

	pr.floats, err = record.Decode(pr.floats, data, pr.inputFloats)
	if err != nil {
		pr.rejected++
		return false, err
	}
	for i := range pr.state {
		f := pr.floats[i*6 : i*6+6]
		pr.state[i] = components.Sphere{
			Pos: components.Position{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])},
			Dir: components.Direction{X: float64(f[3]), Y: float64(f[4]), Z: float64(f[5])},
		}
	}
	if err := pr.pool.Load(pr.state); err != nil {
		return false, err
	}

	pr.ref.Step(pr.pool, nil)

	pr.out = bridge.AppendPositions(pr.out[:0], pr.pool)
	if err := pr.ch.PutResult(pr.out); err != nil {
		return false, err
	}
	pr.answered++
	return true, nil
}
