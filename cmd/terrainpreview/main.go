// Terrain preview tool - interactive visualization of the procedural environment with sliders.
//
// Usage: go run ./cmd/terrainpreview -config meadow.yaml -out terrain.yaml
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/meadow/camera"
	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/renderer"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 600
	panelWidth   = windowWidth - previewSize - 30
)

var mapNames = []string{"gradient x", "gradient y", "patches"}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	outPath := flag.String("out", "terrain.yaml", "Where the Save button writes the full config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	initial := cfg.Terrain

	rl.InitWindow(windowWidth, windowHeight, "Terrain Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	cam := camera.New(previewSize, previewSize, cfg.Grid.Width, cfg.Grid.Height, 8)
	terrain := renderer.NewTerrainRenderer()
	defer terrain.Unload()

	needsRegen := true
	var stats regionStats
	status := ""

	for !rl.WindowShouldClose() {
		if needsRegen {
			env := cfg.Environment()
			terrain.Bake(env, cfg.Grid.Width, cfg.Grid.Height)
			stats = measure(cfg)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		terrain.Draw(cam)
		rl.DrawRectangleLines(0, 0, previewSize, previewSize, rl.DarkGray)

		statsY := int32(previewSize + 15)
		rl.DrawText(fmt.Sprintf("Plantable: %.1f%%  Underwater: %.1f%%  Outside: %.1f%%",
			stats.pct(stats.plantable), stats.pct(stats.underwater), stats.pct(stats.outside)), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Elevation %.1f .. %.1f  Water %.1f", stats.minElev, stats.maxElev, cfg.Terrain.WaterLevel),
			15, statsY+20, 16, rl.DarkGray)
		if status != "" {
			rl.DrawText(status, 15, statsY+40, 14, rl.Gray)
		}

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)
		rl.DrawText("Terrain Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		t := &cfg.Terrain
		changed := false
		slider := func(label, format string, v *float64, lo, hi float64) {
			rl.DrawText(label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			nv := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				"", "",
				float32(*v), float32(lo), float32(hi),
			)
			rl.DrawText(fmt.Sprintf(format, *v), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if float64(nv) != float64(float32(*v)) {
				*v = float64(nv)
				changed = true
			}
			panelY += 35
		}
		intSlider := func(label string, v *int, lo, hi int) {
			f := float64(*v)
			slider(label, "%.0f", &f, float64(lo), float64(hi))
			if int(f) != *v {
				*v = int(f)
				changed = true
			}
		}

		slider("Scale (noise frequency)", "%.4f", &t.Scale, 0.001, 0.05)
		intSlider("Octaves", &t.Octaves, 1, 8)
		slider("Water level", "%.1f", &t.WaterLevel, 0, 80)
		slider("Elevation min", "%.1f", &t.ElevationMin, 0, 80)
		slider("Elevation max", "%.1f", &t.ElevationMax, 0, 120)
		slider("Region size", "%.0f", &t.RegionSize, 16, 512)
		seed := float64(t.Seed)
		slider("Seed", "%.0f", &seed, 0, 99999)
		t.Seed = int64(seed)

		rl.DrawLine(int32(panelX), int32(panelY), int32(panelX)+int32(panelWidth)-20, int32(panelY), rl.LightGray)
		panelY += 15
		for _, m := range []struct {
			label string
			v     *int
		}{{"Salinity", &t.SalinityMap}, {"Drainage", &t.DrainageMap}, {"Fertility", &t.FertilityMap}} {
			rl.DrawText(m.label, int32(panelX), int32(panelY+8), 14, rl.Gray)
			if gui.Button(rl.Rectangle{X: panelX + 90, Y: panelY, Width: 160, Height: 28}, mapName(*m.v)) {
				*m.v = (*m.v + 1) % len(mapNames)
				changed = true
			}
			panelY += 34
		}
		panelY += 10

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			t.Seed = int64(rl.GetRandomValue(0, 99999))
			changed = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			*t = initial
			changed = true
		}
		panelY += 40
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 250, Height: 30}, "Save "+*outPath) {
			if err := cfg.WriteYAML(*outPath); err != nil {
				status = "save failed: " + err.Error()
			} else {
				status = "saved " + *outPath
			}
		}
		if changed {
			needsRegen = true
		}

		rl.DrawText("Press C to copy the terrain YAML to the clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			if text, err := terrainYAML(cfg.Terrain); err == nil {
				rl.SetClipboardText(text)
				status = "copied terrain section"
			}
		}

		rl.EndDrawing()
	}
}

// regionStats counts cell categories over the grid.
type regionStats struct {
	cells, plantable, underwater, outside int
	minElev, maxElev                      float64
}

func (s regionStats) pct(n int) float64 {
	if s.cells == 0 {
		return 0
	}
	return float64(n) / float64(s.cells) * 100
}

func measure(cfg *config.Config) regionStats {
	env := cfg.Environment()
	s := regionStats{cells: cfg.Grid.Width * cfg.Grid.Height, minElev: 1e9, maxElev: -1e9}
	for y := range cfg.Grid.Height {
		for x := range cfg.Grid.Width {
			if !env.InBounds(x, y) {
				s.outside++
				continue
			}
			e := env.Elevation(x, y)
			s.minElev = min(s.minElev, e)
			s.maxElev = max(s.maxElev, e)
			if env.WaterLevel(x, y) >= e {
				s.underwater++
			} else {
				s.plantable++
			}
		}
	}
	if s.minElev > s.maxElev {
		s.minElev, s.maxElev = 0, 0
	}
	return s
}

// terrainYAML renders the terrain section as it appears in a config file.
func terrainYAML(t config.TerrainConfig) (string, error) {
	data, err := yaml.Marshal(map[string]config.TerrainConfig{"terrain": t})
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func mapName(pattern int) string {
	if pattern < 0 || pattern >= len(mapNames) {
		return mapNames[len(mapNames)-1]
	}
	return mapNames[pattern]
}
