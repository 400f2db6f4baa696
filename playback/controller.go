// Package playback replays a simulated history through a render sink, one generation at a time.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pthm-cable/meadow/succession"
)

var (
	// ErrNotSimulated is returned by playback commands issued before the first successful Reset.
	ErrNotSimulated = errors.New("not simulated yet")
	// ErrAlreadyRunning is returned when playback is already running in the requested direction.
	ErrAlreadyRunning = errors.New("already running")
	// ErrAlreadyStopped is returned by Stop when playback is not running.
	ErrAlreadyStopped = errors.New("already stopped")
)

// State is the playback state.
type State int

const (
	Stopped State = iota
	SteppingForward
	SteppingBackward
)

func (s State) String() string {
	switch s {
	case SteppingForward:
		return "forward"
	case SteppingBackward:
		return "backward"
	default:
		return "stopped"
	}
}

// Handle identifies a rendered plant.
type Handle uint64

// RenderSink materializes plants.
type RenderSink interface {
	CreatePlant(x, y int, s succession.Species) (Handle, error)
	DestroyPlant(h Handle) error
}

// StatsRecorder observes visualized generations.
type StatsRecorder interface {
	Visualized(h *succession.History, g int)
	Cleared()
}

// Simulator produces complete histories.
type Simulator interface {
	Run(ctx context.Context, generations int, seed int64) (*succession.History, error)
}

// Action describes the outcome of a step.
type Action struct {
	Stepped    bool // A generation was visualized
	Generation int  // Current generation after the step
	Boundary   bool // The first or last generation stopped playback
}

// Options configures a Controller.
type Options struct {
	Generations int
	Seed        int64 // 0 = time-based on every reset
}

// Controller owns the displayed state and the current-generation pointer.
// It is not safe for concurrent use; the Runner serializes access to it.
type Controller struct {
	sim   Simulator
	sink  RenderSink
	stats StatsRecorder
	opts  Options

	hist    *succession.History
	state   State
	current int

	displayed []succession.Species
	handles   []Handle
	rendered  []bool
}

// NewController creates a controller. stats may be nil.
func NewController(sim Simulator, sink RenderSink, stats StatsRecorder, opts Options) *Controller {
	if stats == nil {
		stats = nopStats{}
	}
	return &Controller{sim: sim, sink: sink, stats: stats, opts: opts}
}

func (c *Controller) State() State { return c.state }
func (c *Controller) Current() int { return c.current }

// History returns the simulated history, or nil before the first Reset.
func (c *Controller) History() *succession.History { return c.hist }

// Displayed returns the species currently materialized at cell index i.
func (c *Controller) Displayed(i int) succession.Species {
	if i >= len(c.displayed) {
		return succession.Gap
	}
	return c.displayed[i]
}

// Reset runs a fresh simulation, clears the display, and shows generation 0.
// A failed run leaves the previous history and display untouched.
func (c *Controller) Reset(ctx context.Context) error {
	seed := c.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	start := time.Now()
	hist, err := c.sim.Run(ctx, c.opts.Generations, seed)
	if err != nil {
		return fmt.Errorf("simulating: %w", err)
	}
	slog.Info("simulation complete",
		"generations", hist.Generations(),
		"seed", seed,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	c.state = Stopped
	c.Clear()
	c.hist = hist
	n := hist.Width() * hist.Height()
	c.displayed = make([]succession.Species, n)
	c.handles = make([]Handle, n)
	c.rendered = make([]bool, n)
	c.visualize(0)
	return nil
}

// Reconfigure stops playback, clears the display, and installs a new simulator.
// The old history is dropped; the next Reset simulates with the new parameters.
func (c *Controller) Reconfigure(sim Simulator, opts Options) {
	c.state = Stopped
	c.Clear()
	c.sim = sim
	c.opts = opts
	c.hist = nil
	c.current = 0
	c.displayed, c.handles, c.rendered = nil, nil, nil
}

// Forward starts automatic stepping toward the last generation.
func (c *Controller) Forward() error {
	return c.run(SteppingForward)
}

// Reverse starts automatic stepping toward generation 0.
func (c *Controller) Reverse() error {
	return c.run(SteppingBackward)
}

func (c *Controller) run(dir State) error {
	if c.hist == nil {
		return ErrNotSimulated
	}
	if c.state == dir {
		return ErrAlreadyRunning
	}
	c.state = dir
	return nil
}

// Stop halts automatic stepping. The display stays at the last visualized generation.
func (c *Controller) Stop() error {
	if c.hist == nil {
		return ErrNotSimulated
	}
	if c.state == Stopped {
		return ErrAlreadyStopped
	}
	c.state = Stopped
	return nil
}

// Clear destroys every rendered plant and empties the display. The history is kept.
func (c *Controller) Clear() {
	for i, ok := range c.rendered {
		if !ok {
			continue
		}
		if err := c.sink.DestroyPlant(c.handles[i]); err != nil {
			slog.Warn("destroy plant failed", "cell", i, "error", err)
		}
		c.rendered[i] = false
	}
	clear(c.displayed)
	c.stats.Cleared()
}

// Step visualizes the generation delta steps away from the current one.
// Leaving the history halts playback and reports the boundary instead.
func (c *Controller) Step(delta int) (Action, error) {
	if c.hist == nil {
		return Action{}, ErrNotSimulated
	}
	next := c.current + delta
	if next < 0 || next >= c.hist.Generations() {
		c.state = Stopped
		return Action{Generation: c.current, Boundary: true}, nil
	}
	c.visualize(next)
	return Action{Stepped: true, Generation: next}, nil
}

// StepTo visualizes generation g, clamped to the history. A clamped target halts playback.
func (c *Controller) StepTo(g int) (Action, error) {
	if c.hist == nil {
		return Action{}, ErrNotSimulated
	}
	last := c.hist.Generations() - 1
	clamped := max(0, min(g, last))
	if clamped != g {
		c.state = Stopped
	}
	c.visualize(clamped)
	return Action{Stepped: true, Generation: clamped, Boundary: clamped != g}, nil
}

// Now returns the history and the generation on display.
func (c *Controller) Now() (*succession.History, int, error) {
	if c.hist == nil {
		return nil, 0, ErrNotSimulated
	}
	return c.hist, c.current, nil
}

// Tick advances one generation in the running direction. It does nothing while stopped.
func (c *Controller) Tick() (Action, error) {
	switch c.state {
	case SteppingForward:
		return c.Step(1)
	case SteppingBackward:
		return c.Step(-1)
	}
	return Action{Generation: c.current}, nil
}

// visualize makes the display match generation g, touching only cells that changed.
// The display table is updated even when the sink fails.
func (c *Controller) visualize(g int) {
	grid := c.hist.Generation(g)
	w := c.hist.Width()
	for i, want := range grid {
		if c.displayed[i] == want {
			continue
		}
		if c.rendered[i] {
			if err := c.sink.DestroyPlant(c.handles[i]); err != nil {
				slog.Warn("destroy plant failed", "cell", i, "error", err)
			}
			c.rendered[i] = false
		}
		if want.IsOccupied() {
			h, err := c.sink.CreatePlant(i%w, i/w, want)
			if err != nil {
				slog.Warn("create plant failed", "x", i%w, "y", i/w, "species", want, "error", err)
			} else {
				c.handles[i] = h
				c.rendered[i] = true
			}
		}
		c.displayed[i] = want
	}
	c.current = g
	c.stats.Visualized(c.hist, g)
}

type nopStats struct{}

func (nopStats) Visualized(*succession.History, int) {}
func (nopStats) Cleared() {}
