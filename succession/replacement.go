package succession

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Weights split replacement pressure between the neighborhood, the whole region,
// and seed arriving from outside the area.
type Weights struct {
	Local    float64
	Global   float64
	Baseline float64
}

// DefaultWeights returns the reference weighting.
func DefaultWeights() Weights {
	return Weights{Local: 0.80, Global: 0.1995, Baseline: 0.0005}
}

// Validate requires non-negative weights summing to at most 1.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Local, w.Global, w.Baseline} {
		if math.IsNaN(v) || v < 0 {
			return fmt.Errorf("%w: negative or NaN weight in %+v", ErrInvalidParams, w)
		}
	}
	if sum := w.Local + w.Global + w.Baseline; sum > 1+1e-9 {
		return fmt.Errorf("%w: weights sum to %g, want <= 1", ErrInvalidParams, sum)
	}
	return nil
}

// ReplacementProbabilities fills dst[k] with the chance that species k takes a cell
// currently held by defender. counts are the current generation's species counts.
// dst[0] is always 0.
func ReplacementProbabilities(defender Species, neighbors, counts []int, totalActive int, matrix [][]float64, w Weights, dst []float64) []float64 {
	dst[0] = 0
	col := int(defender)
	for k := 1; k < len(dst); k++ {
		local := float64(neighbors[k]) / NeighborhoodSize
		var global float64
		if totalActive > 0 {
			global = float64(counts[k]) / float64(totalActive)
		}
		dst[k] = matrix[k][col]*(w.Local*local+w.Global*global) + w.Baseline
	}
	return dst
}

// SelectSpecies picks the species whose cumulative interval [c(k-1), c(k)) contains r,
// building intervals over p[1..S] in increasing species order.
// It reports false when r lies beyond the last interval, meaning no replacement.
func SelectSpecies(p []float64, r float64) (Species, bool) {
	if len(p) < 2 {
		return Gap, false
	}
	return selectInto(make([]float64, len(p)-1), p, r)
}

func selectInto(cum, p []float64, r float64) (Species, bool) {
	floats.CumSum(cum, p[1:])
	for i, c := range cum {
		if r < c {
			return Occupied(i + 1), true
		}
	}
	return Gap, false
}
