// Package main shuffles a generated dataset. Rows of the primary and
// secondary files are permuted together, NaNs are replaced with zero and
// the shuffled pair is written next to the originals.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/pthm-cable/collider/config"
	"github.com/pthm-cable/collider/dataset"
	"github.com/pthm-cable/collider/game"
	"github.com/pthm-cable/collider/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "Shuffle seed (0 = entropy)")
	suffix := flag.String("suffix", "_shuffled", "Suffix inserted before .dat in output names")
	inPlace := flag.Bool("in-place", false, "Overwrite the input files")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	out := outputPaths{
		primary:   withSuffix(cfg.Dataset.PrimaryPath, *suffix),
		secondary: withSuffix(cfg.Dataset.SecondaryPath, *suffix),
	}
	if *inPlace {
		out = outputPaths{primary: cfg.Dataset.PrimaryPath, secondary: cfg.Dataset.SecondaryPath}
	}

	if err := run(cfg, game.ResolveSeed(*seed), out, os.Stdout); err != nil {
		slog.Error("shuffle failed", "error", err)
		os.Exit(1)
	}
}

type outputPaths struct {
	primary, secondary string
}

func run(cfg *config.Config, seed int64, out outputPaths, stats io.Writer) error {
	start := time.Now()

	s, err := dataset.LoadSamples(cfg.Dataset.PrimaryPath, cfg.Dataset.SecondaryPath)
	if err != nil {
		return err
	}
	if s.Rows()%cfg.Sim.Capacity != 0 {
		slog.Warn("row count is not a whole number of ticks", "rows", s.Rows(), "spheres", cfg.Sim.Capacity)
	}
	slog.Info("dataset loaded", "rows", s.Rows(), "ticks", s.Rows()/cfg.Sim.Capacity, "seed", seed)

	s.Shuffle(rand.New(rand.NewSource(seed)))
	if n := s.ZeroNaNs(); n > 0 {
		slog.Warn("replaced NaN values", "count", n)
	}

	if err := s.Write(out.primary, out.secondary); err != nil {
		return err
	}

	if err := writeColumnStats(stats, s.ColumnStats()); err != nil {
		return err
	}
	slog.Info("dataset shuffled",
		"primary", out.primary,
		"secondary", out.secondary,
		"time_taken", telemetry.FormatElapsed(time.Since(start)),
	)
	return nil
}

func writeColumnStats(w io.Writer, cols []dataset.ColumnStat) error {
	if _, err := fmt.Fprintf(w, "%-8s %12s %12s\n", "column", "mean", "std"); err != nil {
		return err
	}
	for _, c := range cols {
		if _, err := fmt.Fprintf(w, "%-8s %12.6f %12.6f\n", c.Name, c.Mean, c.Std); err != nil {
			return err
		}
	}
	return nil
}

// withSuffix turns "dataset_x.dat" into "dataset_x<suffix>.dat".
func withSuffix(path, suffix string) string {
	if base, ok := strings.CutSuffix(path, ".dat"); ok {
		return base + suffix + ".dat"
	}
	return path + suffix
}
