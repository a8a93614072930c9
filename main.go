package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pthm-cable/collider/config"
	"github.com/pthm-cable/collider/display"
	"github.com/pthm-cable/collider/game"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without the terminal display")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	logFile := flag.String("log-file", "collider.log", "Log destination while the display is active")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed for the first simulation (0 = entropy)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [msaa] [maxfps] [mode]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	mode, err := applyArgs(cfg, flag.Args())
	if err != nil {
		slog.Error("invalid arguments", "error", err)
		flag.Usage()
		os.Exit(2)
	}

	var logOut io.Writer = os.Stdout
	if !*headless {
		f, err := os.OpenFile(*logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			slog.Error("failed to open log file", "path", *logFile, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, game.Options{
		Seed:      *seed,
		Mode:      mode,
		OutputDir: *outputDir,
		LogStats:  *logStats,
	}, *headless, *maxTicks); err != nil {
		slog.Error("collider stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts game.Options, headless bool, maxTicks int64) error {
	g, err := game.NewGame(cfg, opts)
	if err != nil {
		return err
	}
	defer g.Close()

	slog.Info("starting collider",
		"mode", opts.Mode.String(),
		"headless", headless,
		"msaa", cfg.Loop.MSAA,
		"max_fps", cfg.Loop.MaxFPS,
		"logic_rate", cfg.Loop.LogicRate,
		"max_ticks", maxTicks,
	)

	var fe game.Frontend
	if !headless {
		term, err := display.New()
		if err != nil {
			return fmt.Errorf("opening terminal: %w", err)
		}
		defer term.Close()
		fe = term
	}

	return g.Run(ctx, fe, game.RunOptions{MaxTicks: maxTicks})
}

// applyArgs reads the positional arguments: antialiasing samples, render
// rate cap and initial mode, each optional. The sample count is recorded
// in the config but has no effect on terminal output.
func applyArgs(cfg *config.Config, args []string) (game.Mode, error) {
	if len(args) > 3 {
		return game.ModeReference, fmt.Errorf("expected at most 3 arguments, got %d", len(args))
	}
	if len(args) >= 1 {
		msaa, err := strconv.Atoi(args[0])
		if err != nil {
			return game.ModeReference, fmt.Errorf("msaa: %w", err)
		}
		cfg.Loop.MSAA = msaa
	}
	if len(args) >= 2 {
		fps, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return game.ModeReference, fmt.Errorf("maxfps: %w", err)
		}
		cfg.Loop.MaxFPS = fps
	}
	if len(args) >= 3 {
		return game.ParseMode(args[2])
	}
	return game.ModeReference, nil
}
