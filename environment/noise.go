package environment

import "github.com/ojrac/opensimplex-go"

// fbm sums octaves of normalized opensimplex noise with halving amplitude.
// The result stays in [0, 1].
func fbm(n opensimplex.Noise, x, y float64, octaves int) float64 {
	if octaves < 1 {
		octaves = 1
	}
	var sum, norm float64
	amp, freq := 1.0, 1.0
	for i := 0; i < octaves; i++ {
		sum += amp * n.Eval2(x*freq, y*freq)
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	return clamp01(sum / norm)
}
