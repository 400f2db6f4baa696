// Package environment provides the physical landscape the meadow grows on.
package environment

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Soil map patterns.
const (
	MapGradientX = iota // Rises west to east
	MapGradientY        // Rises south to north
	MapPatches          // Noise patches
)

// Layout places grid cells in the region.
type Layout struct {
	XOrigin, YOrigin float64
	Spacing          float64
}

// Position returns the region coordinates of cell (x, y).
func (l Layout) Position(x, y int) (float64, float64) {
	return l.XOrigin + float64(x)*l.Spacing, l.YOrigin + float64(y)*l.Spacing
}

// TerrainParams configures procedural terrain generation.
type TerrainParams struct {
	Seed         int64
	RegionSize   float64
	WaterLevel   float64
	ElevationMin float64
	ElevationMax float64
	Scale        float64
	Octaves      int
	SalinityMap  int
	DrainageMap  int
	FertilityMap int
}

// Terrain is a procedural environment built on opensimplex noise layers.
type Terrain struct {
	layout    Layout
	params    TerrainParams
	elevation opensimplex.Noise
	salinity  opensimplex.Noise
	drainage  opensimplex.Noise
	fertility opensimplex.Noise
}

// NewTerrain creates a terrain for the given cell layout.
func NewTerrain(layout Layout, params TerrainParams) *Terrain {
	if params.Scale <= 0 {
		params.Scale = 0.01
	}
	return &Terrain{
		layout:    layout,
		params:    params,
		elevation: opensimplex.NewNormalized(params.Seed),
		salinity:  opensimplex.NewNormalized(params.Seed + 1),
		drainage:  opensimplex.NewNormalized(params.Seed + 2),
		fertility: opensimplex.NewNormalized(params.Seed + 3),
	}
}

// InBounds reports whether cell (x, y) lies within the region.
func (t *Terrain) InBounds(x, y int) bool {
	px, py := t.layout.Position(x, y)
	size := t.params.RegionSize
	return px >= 0 && py >= 0 && px < size && py < size
}

// Elevation returns ground height at cell (x, y).
func (t *Terrain) Elevation(x, y int) float64 {
	px, py := t.layout.Position(x, y)
	s := t.params.Scale
	n := fbm(t.elevation, px*s, py*s, t.params.Octaves)
	return t.params.ElevationMin + n*(t.params.ElevationMax-t.params.ElevationMin)
}

// WaterLevel returns the water surface height; it is flat across the region.
func (t *Terrain) WaterLevel(x, y int) float64 {
	return t.params.WaterLevel
}

// Soil returns salinity, drainage and fertility at cell (x, y).
func (t *Terrain) Soil(x, y int) (salinity, drainage, fertility float64) {
	px, py := t.layout.Position(x, y)
	return t.layer(t.salinity, t.params.SalinityMap, px, py),
		t.layer(t.drainage, t.params.DrainageMap, px, py),
		t.layer(t.fertility, t.params.FertilityMap, px, py)
}

func (t *Terrain) layer(n opensimplex.Noise, pattern int, px, py float64) float64 {
	size := t.params.RegionSize
	if size <= 0 {
		size = 1
	}
	switch pattern {
	case MapGradientX:
		return clamp01(px / size)
	case MapGradientY:
		return clamp01(py / size)
	default:
		s := t.params.Scale * 2
		return clamp01(n.Eval2(px*s, py*s))
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
