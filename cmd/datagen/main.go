// Package main is the batch dataset generator. It runs reference physics
// headless from a random start, records a (state, next position) sample
// per sphere per tick until its buffers are full, appends them to the
// shared dataset files and exits. Many instances may run at once against
// the same files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/pthm-cable/collider/components"
	"github.com/pthm-cable/collider/config"
	"github.com/pthm-cable/collider/dataset"
	"github.com/pthm-cable/collider/game"
	"github.com/pthm-cable/collider/pool"
	"github.com/pthm-cable/collider/systems"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = entropy)")
	samples := flag.Int("samples", 0, "Ticks to record (0 = use config)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *samples > 0 {
		cfg.Dataset.Samples = *samples
		cfg.ComputeDerived()
	}

	if err := run(cfg, game.ResolveSeed(*seed)); err != nil {
		line, rerr := dataset.Report(cfg.Dataset.ReportPath, reportMessage(err))
		slog.Error("dataset generation failed", "error", err, "report", line)
		if rerr != nil {
			slog.Error("failed to write report", "path", cfg.Dataset.ReportPath, "error", rerr)
		}
		// The report file, not the exit status, signals the failure.
		os.Exit(0)
	}
}

func run(cfg *config.Config, seed int64) error {
	start := time.Now()
	slog.Info("dataset generation start",
		"seed", seed,
		"samples", cfg.Dataset.Samples,
		"spheres", cfg.Sim.Capacity,
		"primary", cfg.Dataset.PrimaryPath,
		"secondary", cfg.Dataset.SecondaryPath,
	)

	w, err := generate(cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}

	res, err := w.Flush()
	if err != nil {
		return err
	}

	slog.Info("dataset flushed",
		"primary_bytes", res.PrimaryBytes,
		"secondary_bytes", res.SecondaryBytes,
		"lock_attempts", res.LockAttempts,
		"lock_wait_ms", res.LockWait.Milliseconds(),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return nil
}

// generate fills a writer from a fresh simulation seeded by rng.
func generate(cfg *config.Config, rng *rand.Rand) (*dataset.Writer, error) {
	p := pool.New(cfg.Sim.Capacity)
	p.Reset(rng)

	ref := systems.NewReferenceSystem(systems.ParamsFromConfig(cfg))
	w := dataset.NewWriter(dataset.OptionsFromConfig(cfg))

	var recErr error
	record := func(_ int, pre components.Sphere, post components.Position) {
		if recErr == nil {
			recErr = w.Record(pre, post)
		}
	}
	for !w.Full() {
		ref.Step(p, record)
		if recErr != nil {
			return nil, recErr
		}
	}
	return w, nil
}

func reportMessage(err error) string {
	var cw *dataset.CorruptWriteError
	if errors.As(err, &cw) {
		return fmt.Sprintf("Just wrote corrupted bytes to %s! (wrote %d of %d bytes).", cw.Path, cw.Wrote, cw.Want)
	}
	return fmt.Sprintf("Dataset flush failed: %v.", err)
}
