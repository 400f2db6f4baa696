package game

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pthm-cable/meadow/playback"
)

// DefaultScript resets and plays forward to the last generation.
var DefaultScript = []string{"reset", "forward"}

// RunHeadless executes the script, then keeps stepping until playback stops.
// With a websocket endpoint it instead keeps serving remote commands until ctx ends.
// Step timing and the chart are written when it returns.
func (g *Game) RunHeadless(ctx context.Context, script []string) error {
	if g.runner == nil {
		return errors.New("game: not built for headless mode")
	}
	if len(script) == 0 {
		script = DefaultScript
	}
	defer g.finishRun()

	stopped := make(chan struct{}, 1)
	g.runner.OnStep(func(act playback.Action) {
		g.stepped(act)
		if act.Boundary {
			select {
			case stopped <- struct{}{}:
			default:
			}
		}
	})

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.runner.Run(runCtx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	for _, line := range script {
		if err := g.Execute(runCtx, line); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("script command failed", "command", line, "error", err)
		}
	}

	serving := g.hub != nil
	for {
		running, err := g.running(runCtx)
		if err != nil {
			if serving && ctx.Err() != nil {
				return nil
			}
			return err
		}
		if !running && !serving {
			return nil
		}

		select {
		case <-ctx.Done():
			if serving {
				return nil
			}
			return ctx.Err()
		case <-stopped:
		case text := <-g.remote:
			if err := g.Execute(runCtx, text); err != nil {
				slog.Debug("remote command failed", "text", text, "error", err)
			}
		}
	}
}

// running reports whether playback is stepping on its own.
func (g *Game) running(ctx context.Context) (bool, error) {
	var running bool
	err := g.runner.Do(ctx, func(c *playback.Controller) error {
		running = c.State() != playback.Stopped
		return nil
	})
	return running, err
}
