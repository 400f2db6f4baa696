package playback

import (
	"context"
	"log/slog"
	"time"

	"github.com/pthm-cable/meadow/telemetry"
)

// Runner owns a Controller on a single goroutine and ticks it at a fixed interval.
// The timer is re-armed only after a step has finished, so steps never overlap.
type Runner struct {
	ctrl     *Controller
	interval time.Duration
	cmds     chan func(*Controller)
	onStep   func(Action)
	timer    *telemetry.StepTimer
}

// NewRunner creates a runner stepping ctrl every interval.
func NewRunner(ctrl *Controller, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Runner{
		ctrl:     ctrl,
		interval: interval,
		cmds:     make(chan func(*Controller)),
	}
}

// OnStep installs a callback invoked after every tick that stepped or hit a boundary.
// It runs on the runner goroutine.
func (r *Runner) OnStep(fn func(Action)) { r.onStep = fn }

// SetTimer installs a step timer. Only ticks that step or stop at a boundary are recorded.
func (r *Runner) SetTimer(t *telemetry.StepTimer) { r.timer = t }

// Do runs fn on the runner goroutine between ticks and waits for its result.
func (r *Runner) Do(ctx context.Context, fn func(*Controller) error) error {
	done := make(chan error, 1)
	cmd := func(c *Controller) { done <- fn(c) }
	select {
	case r.cmds <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes ticks and commands until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	timer := time.NewTimer(r.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-r.cmds:
			cmd(r.ctrl)
		case <-timer.C:
			r.tick()
			timer.Reset(r.interval)
		}
	}
}

func (r *Runner) tick() {
	if r.timer != nil {
		r.timer.Begin()
		r.timer.Enter(telemetry.PhaseVisualize)
	}
	act, err := r.ctrl.Tick()
	if err != nil {
		slog.Warn("playback tick failed", "error", err)
	}
	if !act.Stepped && !act.Boundary {
		return
	}
	if r.timer != nil {
		r.timer.Enter(telemetry.PhaseNotify)
	}
	if r.onStep != nil {
		r.onStep(act)
	}
	if r.timer != nil {
		r.timer.End()
	}
}

// Inline runs commands directly on the caller's goroutine. Use it when the caller
// already owns the controller, such as a render loop.
type Inline struct {
	Ctrl *Controller
}

func (i Inline) Do(ctx context.Context, fn func(*Controller) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(i.Ctrl)
}
