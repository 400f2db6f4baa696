package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/playback"
	"github.com/pthm-cable/meadow/succession"
	"github.com/pthm-cable/meadow/telemetry"
)

// Executor runs a function against the controller on the goroutine that owns it.
// playback.Runner and playback.Inline implement it.
type Executor interface {
	Do(ctx context.Context, fn func(*playback.Controller) error) error
}

// Dispatcher applies commands and reports the outcome through alerts.
type Dispatcher struct {
	exec     Executor
	alerts   telemetry.AlertSink
	records  config.RecordSource
	cfg      *config.Config
	onConfig func(*config.Config)
}

// NewDispatcher creates a dispatcher for the controller behind exec. cfg is the active
// configuration; records may be nil, in which case tokens are rejected.
func NewDispatcher(exec Executor, cfg *config.Config, records config.RecordSource, alerts telemetry.AlertSink) *Dispatcher {
	return &Dispatcher{exec: exec, cfg: cfg, records: records, alerts: alerts}
}

// OnConfig installs a callback run after a new configuration has been installed.
func (d *Dispatcher) OnConfig(fn func(*config.Config)) { d.onConfig = fn }

// Config returns the active configuration.
func (d *Dispatcher) Config() *config.Config { return d.cfg }

// Handle parses and executes one text command.
func (d *Dispatcher) Handle(ctx context.Context, text string) error {
	cmd, err := Parse(text)
	if err != nil {
		d.alert("Invalid command...")
		return err
	}
	return d.Execute(ctx, cmd)
}

// Execute runs a parsed command.
func (d *Dispatcher) Execute(ctx context.Context, cmd Command) error {
	slog.Debug("command", "kind", cmd.Kind.String(), "generation", cmd.Generation, "token", cmd.Token)

	switch cmd.Kind {
	case Reset:
		d.alert("Reset...")
		if err := d.exec.Do(ctx, func(c *playback.Controller) error { return c.Reset(ctx) }); err != nil {
			d.alert(fmt.Sprintf("Reset failed: %v", err))
			return err
		}
		return nil

	case Forward:
		return d.report(d.exec.Do(ctx, func(c *playback.Controller) error { return c.Forward() }), "Forward...")

	case Reverse:
		return d.report(d.exec.Do(ctx, func(c *playback.Controller) error { return c.Reverse() }), "Reverse...")

	case Stop:
		return d.report(d.exec.Do(ctx, func(c *playback.Controller) error { return c.Stop() }), "Stop...")

	case Clear:
		return d.report(d.exec.Do(ctx, func(c *playback.Controller) error {
			if c.History() == nil {
				return playback.ErrNotSimulated
			}
			c.Clear()
			return nil
		}), "Clear...")

	case StepForward, StepBackward, StepTo:
		var act playback.Action
		err := d.exec.Do(ctx, func(c *playback.Controller) error {
			var err error
			switch cmd.Kind {
			case StepForward:
				act, err = c.Step(1)
			case StepBackward:
				act, err = c.Step(-1)
			default:
				act, err = c.StepTo(cmd.Generation)
			}
			return err
		})
		if err != nil {
			return d.report(err, "")
		}
		if act.Boundary {
			d.alert(fmt.Sprintf("Generation %d is the limit of the simulation...", act.Generation))
		}
		return nil

	case Now:
		var text string
		err := d.exec.Do(ctx, func(c *playback.Controller) error {
			h, g, err := c.Now()
			if err != nil {
				return err
			}
			text = telemetry.Compute(h, g, nil).Text(d.cfg.Derived.SpeciesNames)
			return nil
		})
		return d.report(err, text)

	case Configure:
		return d.configure(ctx, cmd.Token)
	}
	return fmt.Errorf("%w: kind %d", ErrInvalidCommand, cmd.Kind)
}

// configure loads a record and installs it. Any failure leaves the active configuration in place.
func (d *Dispatcher) configure(ctx context.Context, token string) error {
	if d.records == nil {
		d.alert("Invalid command...")
		return fmt.Errorf("%w: no record source for %q", ErrInvalidCommand, token)
	}
	rec, err := d.records.Record(token)
	if err != nil {
		if errors.Is(err, config.ErrUnknownRecord) {
			d.alert("Invalid command...")
		} else {
			d.alert(fmt.Sprintf("Could not load configuration %s: %v", token, err))
		}
		return err
	}
	next, err := d.cfg.ApplyRecord(rec)
	if err != nil {
		d.alert(fmt.Sprintf("Configuration %s rejected: %v", rec.ID, err))
		return err
	}
	sim, err := NewSimulator(next)
	if err != nil {
		d.alert(fmt.Sprintf("Configuration %s rejected: %v", rec.ID, err))
		return err
	}

	opts := playback.Options{Generations: next.Simulation.Generations, Seed: next.Simulation.Seed}
	if err := d.exec.Do(ctx, func(c *playback.Controller) error {
		c.Reconfigure(sim, opts)
		return nil
	}); err != nil {
		return err
	}
	d.cfg = next
	if d.onConfig != nil {
		d.onConfig(next)
	}
	slog.Info("configuration installed", "record", rec.ID, "species", len(next.Species),
		"width", next.Grid.Width, "height", next.Grid.Height)
	d.alert(fmt.Sprintf("Loaded configuration %s. Use reset to simulate...", rec.ID))
	return nil
}

// report alerts ok on success, or the user-facing form of err.
func (d *Dispatcher) report(err error, ok string) error {
	switch {
	case err == nil:
		if ok != "" {
			d.alert(ok)
		}
	case errors.Is(err, playback.ErrNotSimulated):
		d.alert("Not simulated yet. Use reset first...")
	case errors.Is(err, playback.ErrAlreadyRunning):
		d.alert("Already running...")
	case errors.Is(err, playback.ErrAlreadyStopped):
		d.alert("Already stopped...")
	default:
		d.alert(fmt.Sprintf("Command failed: %v", err))
	}
	return err
}

func (d *Dispatcher) alert(text string) {
	if d.alerts != nil {
		d.alerts.Alert(text)
	}
}

// NewSimulator builds a driver for cfg that logs its progress.
func NewSimulator(cfg *config.Config) (*succession.Driver, error) {
	d, err := succession.NewDriver(cfg.Params(), cfg.Environment())
	if err != nil {
		return nil, err
	}
	d.OnProgress(func(done, total int) {
		slog.Info("simulation progress", "done", done, "total", total)
	})
	return d, nil
}
