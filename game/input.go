package game

import (
	"context"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/ui"
)

// Playback keys and the command each issues.
var commandKeys = []struct {
	key     int32
	command string
}{
	{rl.KeyR, "reset"},
	{rl.KeyF, "forward"},
	{rl.KeyB, "reverse"},
	{rl.KeySpace, "stop"},
	{rl.KeyComma, "-"},
	{rl.KeyPeriod, "+"},
	{rl.KeyC, "clear"},
	{rl.KeyN, "now"},
}

const (
	minCycle = 20 * time.Millisecond
	maxCycle = 5 * time.Second
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput(ctx context.Context) {
	v := g.view
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	// Typing into the command box must not trigger shortcuts
	if !v.controls.Editing() {
		for _, ck := range commandKeys {
			if rl.IsKeyPressed(ck.key) {
				if err := g.Execute(ctx, ck.command); err != nil {
					slog.Debug("key command failed", "command", ck.command, "error", err)
				}
			}
		}
		if key := rl.GetKeyPressed(); key != 0 {
			v.overlays.HandleKeyPress(key)
		}
		if rl.IsKeyPressed(rl.KeyLeftBracket) {
			g.setCycle(v.cycle / 2)
		}
		if rl.IsKeyPressed(rl.KeyRightBracket) {
			g.setCycle(v.cycle * 2)
		}
		g.handleCameraInput()
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		m := rl.GetMousePosition()
		if v.overlays.IsEnabled(ui.OverlayControls) && v.controls.Contains(m.X, m.Y) {
			return
		}
		x, y, ok := v.camera.CellAt(m.X, m.Y)
		v.selected.x, v.selected.y, v.selected.ok = x, y, ok
		if ok {
			v.overlays.SetEnabled(ui.OverlayInspector, true)
		}
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		v.selected.ok = false
	}
}

// setCycle changes the playback interval of the window.
func (g *Game) setCycle(d time.Duration) {
	d = min(max(d, minCycle), maxCycle)
	g.view.cycle = d
	g.view.ticker.SetInterval(d)
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.view.screenW && h == g.view.screenH {
		return
	}
	g.view.resize(w, h)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	cam := g.view.camera

	// Pan speed scales inversely with zoom
	panSpeed := float32(8.0) / cam.Zoom

	if rl.IsKeyDown(rl.KeyRight) {
		cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		cam.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		cam.Pan(0, -panSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		cam.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		cam.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		cam.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		cam.Reset()
	}
}
