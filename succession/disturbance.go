package succession

import "math/rand"

// Disturb samples one disturbance event per plantable cell with probability rate.
// Draws are taken in cell order; Permanent cells are never disturbed and consume no draw.
func Disturb(rng *rand.Rand, grid []Species, rate float64, dst []bool) []bool {
	if cap(dst) < len(grid) {
		dst = make([]bool, len(grid))
	}
	dst = dst[:len(grid)]
	for i, s := range grid {
		if s.IsPermanent() {
			dst[i] = false
			continue
		}
		dst[i] = rng.Float64() < rate
	}
	return dst
}
