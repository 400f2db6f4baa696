package game

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pthm-cable/meadow/logstore"
	"github.com/pthm-cable/meadow/notify"
	"github.com/pthm-cable/meadow/telemetry"
)

// setupTelemetry opens the configured sinks and builds the recorder feeding them.
func (g *Game) setupTelemetry() error {
	cfg := g.cfg
	var sinks telemetry.MultiLog

	if dir := cfg.Telemetry.OutputDir; dir != "" {
		om, err := telemetry.NewOutputManager(dir, len(cfg.Species))
		if err != nil {
			return err
		}
		g.output = om
		if err := om.WriteConfig(cfg); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		sinks = append(sinks, om)
		slog.Info("writing output", "dir", dir)
	}

	if path := cfg.LogStore.Path; path != "" {
		simID := cfg.LogStore.SimID
		if simID == "" {
			simID = newSimID()
		}
		st, err := logstore.Open(path, simID, cfg.LogStore.RegionTag)
		if err != nil {
			return err
		}
		g.store = st
		sinks = append(sinks, st)
		slog.Info("storing log records", "path", path, "sim_id", simID, "region_tag", cfg.LogStore.RegionTag)
	}

	g.alerts = notify.Multi{notify.SlogAlerts{}, g.feed}
	if cfg.Notify.Listen != "" {
		g.hub = notify.NewHub()
		g.hub.OnCommand(g.enqueue)
		g.alerts = append(g.alerts, g.hub)
	}

	var log telemetry.LogSink
	if len(sinks) > 0 {
		log = sinks
	}
	g.recorder = telemetry.NewRecorder(cfg.Derived.SpeciesNames, log, g.alerts)
	g.recorder.SetOutput(g.output, cfg.Telemetry.Snapshots)
	if g.hub != nil {
		g.recorder.AddPublisher(g.hub)
	}
	return nil
}

// newSimID names a simulation in the log store.
func newSimID() string {
	return fmt.Sprintf("sim-%d", time.Now().UnixNano())
}

// finishRun writes the end-of-run artifacts: step timing and the counts chart.
func (g *Game) finishRun() {
	if g.output == nil {
		return
	}
	stats := g.timer.Stats()
	stats.LogStats()
	if err := g.output.WritePerf(stats, g.ctrl.Current()); err != nil {
		slog.Warn("writing perf failed", "error", err)
	}

	h := g.ctrl.History()
	if !g.cfg.Telemetry.Chart || h == nil {
		return
	}
	path := filepath.Join(g.output.Dir(), "counts.png")
	if err := g.writeChart(path); err != nil {
		slog.Warn("writing chart failed", "path", path, "error", err)
		return
	}
	slog.Info("wrote chart", "path", path)
}

func (g *Game) writeChart(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	colors := make([]string, len(g.cfg.Species)+1)
	for i, sp := range g.cfg.Species {
		colors[i+1] = sp.Color
	}
	if err := telemetry.WriteChart(g.ctrl.History(), g.cfg.Derived.SpeciesNames, colors, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
