package succession

import "math"

// ElevationScale converts elevation into the unit scale used by soil values.
const ElevationScale = 50.0

// Environment supplies the physical attributes of each grid cell.
type Environment interface {
	// InBounds reports whether the cell lies inside the playable region.
	InBounds(x, y int) bool
	Elevation(x, y int) float64
	WaterLevel(x, y int) float64
	// Soil returns salinity, drainage and fertility, each in [0,1].
	Soil(x, y int) (salinity, drainage, fertility float64)
}

// Clamp01 clamps v to [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 1:
		return 1
	}
	return v
}

// AgeHealth declines linearly from 1 at age 0 to 0 at the lifespan.
func AgeHealth(age, lifespan int) float64 {
	if lifespan <= 0 {
		return 0
	}
	return Clamp01(float64(lifespan-age) / float64(lifespan))
}

// AltitudeHealth scores an elevation against an optimum on the soil scale.
func AltitudeHealth(elevation, optimum, sensitivity float64) float64 {
	return SoilHealth(elevation/ElevationScale, optimum, sensitivity)
}

// SoilHealth scores one soil component. Sensitivity <= 0 ignores the factor.
func SoilHealth(actual, optimum, sensitivity float64) float64 {
	if !(sensitivity > 0) {
		return 1
	}
	return Clamp01(1 - math.Abs(optimum-actual)*sensitivity)
}

type cellEnv struct {
	elevation                     float64
	salinity, drainage, fertility float64
}

// Model evaluates survival probabilities against a cached environment.
type Model struct {
	species []SpeciesParams
	width   int
	cells   []cellEnv
}

// NewModel samples env once per cell.
func NewModel(params Params, env Environment) *Model {
	w, h := params.Width, params.Height
	m := &Model{
		species: params.Species,
		width:   w,
		cells:   make([]cellEnv, w*h),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sal, drn, fer := env.Soil(x, y)
			m.cells[y*w+x] = cellEnv{
				elevation: env.Elevation(x, y),
				salinity:  sal,
				drainage:  drn,
				fertility: fer,
			}
		}
	}
	return m
}

// SurvivalProbability is the product of age, altitude and soil health.
// Gap and Permanent never survive.
func (m *Model) SurvivalProbability(s Species, age, x, y int) float64 {
	i, ok := s.Index()
	if !ok || i > len(m.species) {
		return 0
	}
	sp := &m.species[i-1]
	c := &m.cells[y*m.width+x]
	return AgeHealth(age, sp.Lifespan) *
		AltitudeHealth(c.elevation, sp.Altitude.Optimum, sp.Altitude.Sensitivity) *
		SoilHealth(c.salinity, sp.Salinity.Optimum, sp.Salinity.Sensitivity) *
		SoilHealth(c.drainage, sp.Drainage.Optimum, sp.Drainage.Sensitivity) *
		SoilHealth(c.fertility, sp.Fertility.Optimum, sp.Fertility.Sensitivity)
}
