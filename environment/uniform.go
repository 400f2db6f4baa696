package environment

// Uniform is a flat, homogeneous environment. Cells listed in Flooded sit below water.
type Uniform struct {
	Width, Height int
	Ground        float64
	Water         float64
	Salinity      float64
	Drainage      float64
	Fertility     float64
	Flooded       map[[2]int]bool
}

func (u *Uniform) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < u.Width && y < u.Height
}

func (u *Uniform) Elevation(x, y int) float64 {
	if u.Flooded[[2]int{x, y}] {
		return u.Water - 1
	}
	return u.Ground
}

func (u *Uniform) WaterLevel(x, y int) float64 { return u.Water }

func (u *Uniform) Soil(x, y int) (salinity, drainage, fertility float64) {
	return u.Salinity, u.Drainage, u.Fertility
}
