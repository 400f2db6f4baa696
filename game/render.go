package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/camera"
	"github.com/pthm-cable/meadow/playback"
	"github.com/pthm-cable/meadow/renderer"
	"github.com/pthm-cable/meadow/succession"
	"github.com/pthm-cable/meadow/telemetry"
	"github.com/pthm-cable/meadow/ui"
)

const keyLegend = "[R]eset [F]orward [B]ack [Space] stop [,/.] step [C]lear [N]ow  [[/]] speed  arrows/wheel camera  click inspect"

// view holds the graphical state. It requires an open raylib window.
type view struct {
	camera   *camera.Camera
	terrain  *renderer.TerrainRenderer
	plants   *renderer.PlantRenderer
	overlays *ui.OverlayRegistry
	ticker   *playback.FrameTicker

	hud       *ui.HUD
	alerts    *ui.AlertPanel
	inspector *ui.CellInspector
	perf      *ui.PerfPanel
	controls  *ui.ControlsPanel

	names  []string
	colors []rl.Color // Indexed 0..S
	cycle  time.Duration

	hist     *succession.History // History the terrain was last marked for
	selected struct {
		x, y int
		ok   bool
	}
	screenW, screenH float32
}

func newView(g *Game) *view {
	cfg := g.cfg
	w, h := float32(cfg.Screen.Width), float32(cfg.Screen.Height)
	if w <= 0 || h <= 0 {
		w, h = ScreenWidth, ScreenHeight
	}
	v := &view{
		terrain:   renderer.NewTerrainRenderer(),
		plants:    renderer.NewPlantRenderer(renderer.Palette{}),
		overlays:  ui.NewOverlayRegistry(),
		ticker:    playback.NewFrameTicker(cycleTime(cfg)),
		hud:       ui.NewHUD(panelMargin, panelMargin, panelWidth),
		alerts:    ui.NewAlertPanel(560),
		inspector: ui.NewCellInspector(int32(w)-panelWidth-panelMargin, panelMargin, panelWidth),
		perf:      ui.NewPerfPanel(panelMargin, panelMargin, panelWidth),
		controls:  ui.NewControlsPanel(int32(w)-panelWidth-panelMargin, panelMargin, panelWidth),
		screenW:   w,
		screenH:   h,
	}
	v.configure(g)
	return v
}

// configure rebuilds everything that depends on the grid and species roster.
func (v *view) configure(g *Game) {
	cfg := g.cfg
	cell := float32(cfg.Screen.CellPixels)
	if cell <= 0 {
		cell = 12
	}
	v.camera = camera.New(v.screenW, v.screenH, cfg.Grid.Width, cfg.Grid.Height, cell)

	hex := make([]string, len(cfg.Species)+1)
	for i, sp := range cfg.Species {
		hex[i+1] = sp.Color
	}
	palette := renderer.NewPalette(hex)
	v.plants.SetPalette(palette)
	v.colors = make([]rl.Color, len(hex))
	for k := 1; k < len(hex); k++ {
		v.colors[k] = palette.Color(succession.Occupied(k))
	}
	v.names = cfg.Derived.SpeciesNames

	v.terrain.Bake(g.env, cfg.Grid.Width, cfg.Grid.Height)
	v.hist = nil
	v.selected.ok = false
	v.cycle = cycleTime(cfg)
	v.ticker.SetInterval(v.cycle)
}

func (v *view) resize(w, h float32) {
	v.screenW, v.screenH = w, h
	v.camera.Resize(w, h)
	v.inspector.SetPosition(int32(w)-panelWidth-panelMargin, panelMargin)
	v.controls.SetPosition(int32(w)-panelWidth-panelMargin, panelMargin)
}

func (v *view) unload() {
	v.terrain.Unload()
}

// Update handles input, remote commands and playback for one frame.
func (g *Game) Update() {
	ctx := context.Background()
	v := g.view

	g.handleInput(ctx)
	g.drainRemote(ctx)

	dt := time.Duration(float64(rl.GetFrameTime()) * float64(time.Second))
	if v.ticker.Advance(dt) {
		g.timer.Begin()
		g.timer.Enter(telemetry.PhaseVisualize)
		act, err := g.ctrl.Tick()
		if err != nil {
			slog.Warn("playback tick failed", "error", err)
		}
		if act.Stepped || act.Boundary {
			g.timer.Enter(telemetry.PhaseNotify)
			g.stepped(act)
			g.timer.End()
		}
	}
	g.timer.Frame()

	if h := g.ctrl.History(); h != v.hist {
		v.hist = h
		v.terrain.Bake(g.env, g.cfg.Grid.Width, g.cfg.Grid.Height)
		v.terrain.MarkPermanent(h)
	}
}

// stepped reports automatic playback reaching either end of the history.
func (g *Game) stepped(act playback.Action) {
	if act.Boundary {
		g.alerts.Alert(fmt.Sprintf("Generation %d is the limit of the simulation...", act.Generation))
	}
}

// Draw renders the meadow and its panels.
func (g *Game) Draw() {
	v := g.view

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 16, G: 18, B: 16, A: 255})

	if v.overlays.IsEnabled(ui.OverlayTerrain) {
		v.terrain.Draw(v.camera)
	}
	if v.overlays.IsEnabled(ui.OverlayGridLines) {
		g.drawGridLines()
	}
	v.plants.Draw(g.scene, v.camera)
	if v.selected.ok {
		v.plants.DrawSelection(v.camera, v.selected.x, v.selected.y)
	}

	g.drawPanels()
	rl.EndDrawing()
}

func (g *Game) drawPanels() {
	v := g.view
	left := int32(panelMargin)

	if v.overlays.IsEnabled(ui.OverlayHUD) {
		data := ui.HUDData{
			Title:      "Meadow",
			State:      g.ctrl.State().String(),
			Generation: -1,
			CycleTime:  v.cycle.Seconds(),
			FPS:        rl.GetFPS(),
			Names:      v.names,
			Colors:     v.colors,
		}
		if h := g.ctrl.History(); h != nil {
			data.Generations = h.Generations()
			if last := g.recorder.Last(); last != nil {
				data.Generation = last.Generation
				data.Stats = last
			}
		}
		left = v.hud.Draw(data) + panelMargin
	}
	if v.overlays.IsEnabled(ui.OverlayPerf) {
		v.perf.SetPosition(panelMargin, left)
		v.perf.Draw(g.timer.Stats())
	}

	right := int32(panelMargin)
	if v.overlays.IsEnabled(ui.OverlayControls) {
		v.controls.SetPosition(int32(v.screenW)-panelWidth-panelMargin, right)
		if cmd := v.controls.Draw(v.overlays); cmd != "" {
			g.Execute(context.Background(), cmd)
		}
		right = int32(v.screenH) // Controls take the column; the inspector moves left
	}
	if v.overlays.IsEnabled(ui.OverlayInspector) && v.selected.ok {
		if cv, ok := g.cellView(v.selected.x, v.selected.y); ok {
			x := int32(v.screenW) - panelWidth - panelMargin
			y := int32(panelMargin)
			if right > panelMargin {
				x -= panelWidth + panelMargin
			}
			v.inspector.SetPosition(x, y)
			v.inspector.Draw(cv)
		}
	}

	if v.overlays.IsEnabled(ui.OverlayAlerts) {
		v.alerts.Draw(g.feed.Recent(), int32(v.screenH))
	}
	v.hud.DrawKeyLegend(int32(v.screenH), keyLegend)
}

func (g *Game) drawGridLines() {
	v := g.view
	cam := v.camera
	line := rl.Color{R: 0, G: 0, B: 0, A: 60}
	x0, y0 := cam.WorldToScreen(0, 0)
	x1, y1 := cam.WorldToScreen(cam.WorldW(), cam.WorldH())
	for x := 0; x <= cam.Cols; x++ {
		sx, _ := cam.WorldToScreen(float32(x)*cam.CellSize, 0)
		rl.DrawLineV(rl.Vector2{X: sx, Y: y0}, rl.Vector2{X: sx, Y: y1}, line)
	}
	for y := 0; y <= cam.Rows; y++ {
		_, sy := cam.WorldToScreen(0, float32(y)*cam.CellSize)
		rl.DrawLineV(rl.Vector2{X: x0, Y: sy}, rl.Vector2{X: x1, Y: sy}, line)
	}
}
