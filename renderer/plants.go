package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/camera"
	"github.com/pthm-cable/meadow/components"
)

// PlantSource iterates the plants on display.
type PlantSource interface {
	Each(fn func(components.Plot, components.Plant))
}

// PlantRenderer draws plants as discs inside their cells.
type PlantRenderer struct {
	palette Palette
}

// NewPlantRenderer creates a plant renderer.
func NewPlantRenderer(palette Palette) *PlantRenderer {
	return &PlantRenderer{palette: palette}
}

// SetPalette replaces the species colors.
func (r *PlantRenderer) SetPalette(p Palette) { r.palette = p }

// Palette returns the species colors.
func (r *PlantRenderer) Palette() Palette { return r.palette }

// Draw renders every visible plant.
func (r *PlantRenderer) Draw(plants PlantSource, cam *camera.Camera) {
	radius := cam.CellSize * cam.Zoom * 0.38
	plants.Each(func(plot components.Plot, plant components.Plant) {
		if !cam.CellVisible(plot.X, plot.Y) {
			return
		}
		wx, wy := cam.CellCenter(plot.X, plot.Y)
		wx += plant.OffsetX * cam.CellSize * 0.5
		wy += plant.OffsetY * cam.CellSize * 0.5
		sx, sy := cam.WorldToScreen(wx, wy)

		c := r.palette.Color(plant.Species)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, radius, c)
		if radius >= 4 {
			rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, radius, Shade(c, 0.6))
		}
	})
}

// DrawSelection outlines cell (x, y).
func (r *PlantRenderer) DrawSelection(cam *camera.Camera, x, y int) {
	sx, sy := cam.WorldToScreen(float32(x)*cam.CellSize, float32(y)*cam.CellSize)
	size := cam.CellSize * cam.Zoom
	rl.DrawRectangleLinesEx(rl.Rectangle{X: sx, Y: sy, Width: size, Height: size}, 2, rl.Yellow)
}
