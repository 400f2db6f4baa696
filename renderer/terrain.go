package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/camera"
	"github.com/pthm-cable/meadow/succession"
)

var (
	soilColor  = rl.Color{R: 110, G: 92, B: 62, A: 255}
	waterColor = rl.Color{R: 40, G: 90, B: 150, A: 255}
	voidColor  = rl.Color{R: 12, G: 12, B: 16, A: 255}
)

// TerrainRenderer draws the ground under the meadow: soil shaded by elevation
// and fertility, flooded cells as water, and permanent cells dark.
// Colors are baked once per configuration.
type TerrainRenderer struct {
	cols, rows int
	cells      []rl.Color
	ground     []bool // Dry in-bounds cells
}

// NewTerrainRenderer creates an empty terrain renderer.
func NewTerrainRenderer() *TerrainRenderer {
	return &TerrainRenderer{}
}

// Bake computes cell colors from the environment of a cols x rows grid.
func (r *TerrainRenderer) Bake(env succession.Environment, cols, rows int) {
	r.cols, r.rows = cols, rows
	r.cells = make([]rl.Color, cols*rows)
	r.ground = make([]bool, cols*rows)

	lo, hi := 0.0, 0.0
	first := true
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if !env.InBounds(x, y) {
				continue
			}
			e := env.Elevation(x, y)
			if first || e < lo {
				lo = e
			}
			if first || e > hi {
				hi = e
			}
			first = false
		}
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			i := y*cols + x
			if !env.InBounds(x, y) {
				r.cells[i] = voidColor
				continue
			}
			e := env.Elevation(x, y)
			if w := env.WaterLevel(x, y); w >= e {
				// Deeper water is darker
				depth := float32((w - e) / span)
				r.cells[i] = Shade(waterColor, 1.0-min(depth, 1)*0.5)
				continue
			}
			_, _, fertility := env.Soil(x, y)
			height := float32((e - lo) / span)
			c := Shade(soilColor, 0.7+height*0.5)
			// Fertile ground leans green
			c.G = Shade(rl.Color{G: c.G}, 1+float32(fertility)*0.25).G
			r.cells[i] = c
			r.ground[i] = true
		}
	}
}

// MarkPermanent darkens dry cells that are permanent in the first generation of h.
func (r *TerrainRenderer) MarkPermanent(h *succession.History) {
	if h == nil || h.Width() != r.cols || h.Height() != r.rows {
		return
	}
	for y := 0; y < r.rows; y++ {
		for x := 0; x < r.cols; x++ {
			i := y*r.cols + x
			if r.ground[i] && h.Status(0, x, y).IsPermanent() {
				r.cells[i] = PermanentColor
			}
		}
	}
}

// Draw renders the visible cells.
func (r *TerrainRenderer) Draw(cam *camera.Camera) {
	size := cam.CellSize * cam.Zoom
	for y := 0; y < r.rows; y++ {
		for x := 0; x < r.cols; x++ {
			if !cam.CellVisible(x, y) {
				continue
			}
			sx, sy := cam.WorldToScreen(float32(x)*cam.CellSize, float32(y)*cam.CellSize)
			// Overdraw by a pixel to hide seams between cells
			rl.DrawRectangleV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: size + 1, Y: size + 1}, r.cells[y*r.cols+x])
		}
	}
}

// Unload frees resources.
func (r *TerrainRenderer) Unload() {
	r.cells = nil
	r.ground = nil
}
