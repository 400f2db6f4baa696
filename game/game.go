// Package game hosts the meadow: it wires the simulator, playback controller, scene,
// telemetry and notification sinks together and runs them headless or in a window.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pthm-cable/meadow/command"
	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/logstore"
	"github.com/pthm-cable/meadow/notify"
	"github.com/pthm-cable/meadow/playback"
	"github.com/pthm-cable/meadow/scene"
	"github.com/pthm-cable/meadow/succession"
	"github.com/pthm-cable/meadow/telemetry"
)

// Game holds the complete application state.
type Game struct {
	cfg  *config.Config
	opts Options

	scene    *scene.Scene
	ctrl     *playback.Controller
	runner   *playback.Runner // nil in graphical mode
	dispatch *command.Dispatcher
	recorder *telemetry.Recorder
	timer    *telemetry.StepTimer

	// Sinks
	output *telemetry.OutputManager
	store  *logstore.Store
	hub    *notify.Hub
	feed   *notify.Feed
	alerts notify.Multi
	server *http.Server

	// Commands from websocket clients, drained by the loop that owns the controller
	remote chan string

	// Environment of the active configuration, for the inspector
	env   succession.Environment
	model *succession.Model

	view *view // nil when headless
}

// New builds a game from opts. Call Unload when done.
func New(opts Options) (*Game, error) {
	if opts.Config == nil {
		return nil, errors.New("game: no config")
	}
	cfg := opts.Config.Clone()

	if opts.StartFrom != "" {
		snap, err := telemetry.LoadSnapshot(opts.StartFrom)
		if err != nil {
			return nil, err
		}
		matrix, err := snap.StartingMatrix(cfg.Grid.Width, cfg.Grid.Height)
		if err != nil {
			return nil, err
		}
		cfg.StartingMatrix = matrix
		slog.Info("starting from snapshot", "path", opts.StartFrom, "generation", snap.Generation)
	}

	sim, err := command.NewSimulator(cfg)
	if err != nil {
		return nil, fmt.Errorf("building simulator: %w", err)
	}

	g := &Game{
		cfg:    cfg,
		opts:   opts,
		feed:   notify.NewFeed(8),
		timer:  telemetry.NewStepTimer(120),
		remote: make(chan string, 16),
		scene:  scene.New(scene.Options{Natural: cfg.Grid.Natural, Seed: cfg.Terrain.Seed}),
	}
	if err := g.setupTelemetry(); err != nil {
		g.Unload()
		return nil, err
	}

	g.ctrl = playback.NewController(sim, g.scene, g.recorder, playbackOptions(cfg))

	var exec command.Executor = playback.Inline{Ctrl: g.ctrl}
	if opts.Headless {
		interval := cycleTime(cfg)
		if opts.StepInterval > 0 {
			interval = opts.StepInterval
		}
		g.runner = playback.NewRunner(g.ctrl, interval)
		g.runner.SetTimer(g.timer)
		exec = g.runner
	}

	var records config.RecordSource
	if opts.RecordsDir != "" {
		records = config.DirRecordSource{Dir: opts.RecordsDir}
	}
	g.dispatch = command.NewDispatcher(exec, cfg, records, g.alerts)
	g.dispatch.OnConfig(g.applyConfig)
	g.refreshEnvironment()

	if !opts.Headless {
		g.view = newView(g)
	}
	g.serve()
	return g, nil
}

func playbackOptions(cfg *config.Config) playback.Options {
	return playback.Options{Generations: cfg.Simulation.Generations, Seed: cfg.Simulation.Seed}
}

// Config returns the active configuration.
func (g *Game) Config() *config.Config { return g.cfg }

// Execute runs one text command. Failures are reported through alerts as well.
func (g *Game) Execute(ctx context.Context, text string) error {
	return g.dispatch.Handle(ctx, text)
}

// Alerts returns the most recent alerts, oldest first.
func (g *Game) Alerts() []string { return g.feed.Recent() }

// enqueue hands a remote command to the loop owning the controller.
func (g *Game) enqueue(text string) {
	select {
	case g.remote <- text:
	default:
		slog.Warn("command queue full, dropping command", "text", text)
	}
}

// drainRemote executes queued remote commands without blocking.
func (g *Game) drainRemote(ctx context.Context) {
	for {
		select {
		case text := <-g.remote:
			if err := g.Execute(ctx, text); err != nil {
				slog.Debug("remote command failed", "text", text, "error", err)
			}
		default:
			return
		}
	}
}

// applyConfig follows a configuration installed by a command.
func (g *Game) applyConfig(cfg *config.Config) {
	g.cfg = cfg
	g.recorder.SetNames(cfg.Derived.SpeciesNames)
	g.output.SetSpecies(len(cfg.Species))
	if err := g.output.WriteConfig(cfg); err != nil {
		slog.Warn("writing config failed", "error", err)
	}
	if g.store != nil {
		g.store.SetSimulation(newSimID())
	}
	g.refreshEnvironment()
	if g.view != nil {
		g.view.configure(g)
	}
}

// refreshEnvironment rebuilds the environment model used by the inspector.
func (g *Game) refreshEnvironment() {
	g.env = g.cfg.Environment()
	g.model = succession.NewModel(g.cfg.Params(), g.env)
}

// serve starts the websocket endpoint when one is configured.
func (g *Game) serve() {
	if g.hub == nil {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/ws", g.hub)
	g.server = &http.Server{
		Addr:              g.cfg.Notify.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("websocket server failed", "addr", g.cfg.Notify.Listen, "error", err)
		}
	}()
	slog.Info("websocket endpoint listening", "addr", g.cfg.Notify.Listen, "path", "/ws")
}

// Unload releases every resource. Safe to call on a partially built game.
func (g *Game) Unload() error {
	var errs []error
	if g.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		errs = append(errs, g.server.Shutdown(ctx))
		cancel()
	}
	if g.hub != nil {
		errs = append(errs, g.hub.Close())
	}
	if g.view != nil {
		g.finishRun()
		g.view.unload()
	}
	if g.store != nil {
		errs = append(errs, g.store.Close())
	}
	errs = append(errs, g.output.Close())
	return errors.Join(errs...)
}
