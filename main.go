package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config)")
	generations := flag.Int("generations", 0, "Generations to simulate (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, snapshots and the config")
	records := flag.String("records", "", "Directory of community records for configuration tokens")
	listen := flag.String("listen", "", "Address for the websocket endpoint (empty = use config)")
	logDB := flag.String("log-db", "", "SQLite file for log records (empty = use config)")
	chart := flag.Bool("chart", false, "Write counts.png to the output dir when the run ends")
	snapshots := flag.Bool("snapshots", false, "Save a snapshot at every bookmark")
	startFrom := flag.String("start-from", "", "Snapshot whose rows replace the starting matrix")
	stepInterval := flag.Duration("step-interval", 0, "Headless playback interval (0 = use config cycle time)")
	script := flag.String("script", "", "Headless commands separated by ',' or ';' (default \"reset,forward\")")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if *generations > 0 {
		cfg.Simulation.Generations = *generations
	}
	if *outputDir != "" {
		cfg.Telemetry.OutputDir = *outputDir
	}
	if *listen != "" {
		cfg.Notify.Listen = *listen
	}
	if *logDB != "" {
		cfg.LogStore.Path = *logDB
	}
	cfg.Telemetry.Chart = cfg.Telemetry.Chart || *chart
	cfg.Telemetry.Snapshots = cfg.Telemetry.Snapshots || *snapshots

	opts := game.Options{
		Config:       cfg,
		Headless:     *headless,
		StepInterval: *stepInterval,
		RecordsDir:   *records,
		StartFrom:    *startFrom,
	}

	if *headless {
		os.Exit(runHeadless(opts, splitScript(*script)))
	}

	// Graphical mode
	width, height := cfg.Screen.Width, cfg.Screen.Height
	if width <= 0 || height <= 0 {
		width, height = game.ScreenWidth, game.ScreenHeight
	}
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(width), int32(height), "Meadow")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.New(opts)
	if err != nil {
		slog.Error("failed to build game", "error", err)
		return
	}
	defer func() {
		if err := g.Unload(); err != nil {
			slog.Warn("unload failed", "error", err)
		}
	}()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()
	}
}

func runHeadless(opts game.Options, script []string) int {
	g, err := game.New(opts)
	if err != nil {
		slog.Error("failed to build game", "error", err)
		return 1
	}
	defer g.Unload()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	slog.Info("starting headless run",
		"generations", opts.Config.Simulation.Generations,
		"seed", opts.Config.Simulation.Seed,
		"step_interval", opts.StepInterval,
	)
	if err := g.RunHeadless(ctx, script); err != nil {
		slog.Error("headless run failed", "error", err)
		return 1
	}
	slog.Info("headless run finished", "elapsed", time.Since(start).Round(time.Millisecond))
	return 0
}

// splitScript splits a command list on commas and semicolons, dropping blanks.
func splitScript(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
