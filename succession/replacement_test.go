package succession

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestSelectSpecies(t *testing.T) {
	p := []float64{0, 0.2, 0.3, 0.1}

	tests := []struct {
		name   string
		r      float64
		want   Species
		wantOK bool
	}{
		{"start of first interval", 0, 1, true},
		{"inside first interval", 0.19, 1, true},
		{"upper bound is exclusive", 0.2, 2, true},
		{"inside second interval", 0.49, 2, true},
		{"third interval", 0.55, 3, true},
		{"beyond last interval", 0.61, Gap, false},
		{"near one", 0.999, Gap, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectSpecies(p, tt.r)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("SelectSpecies(%v, %v) = (%v, %v), want (%v, %v)", p, tt.r, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSelectSpeciesZeroWidthIntervals(t *testing.T) {
	p := []float64{0, 0, 0.5, 0}
	if got, ok := SelectSpecies(p, 0); got != 2 || !ok {
		t.Errorf("SelectSpecies = (%v, %v), want (2, true)", got, ok)
	}
	if _, ok := SelectSpecies([]float64{0, 0, 0}, 0); ok {
		t.Error("all-zero probabilities selected a species")
	}
}

func TestSelectSpeciesDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := []float64{0, 0.1, 0.25, 0.05, 0.3}
	for i := 0; i < 1000; i++ {
		r := rng.Float64()
		a, okA := SelectSpecies(p, r)
		b, okB := SelectSpecies(p, r)
		if a != b || okA != okB {
			t.Fatalf("SelectSpecies not deterministic for r=%v: (%v,%v) vs (%v,%v)", r, a, okA, b, okB)
		}
	}
}

func TestReplacementProbabilities(t *testing.T) {
	matrix := [][]float64{
		{0, 0, 0},
		{0.5, 0, 0.2},
		{1, 0.4, 0},
	}
	w := Weights{Local: 0.8, Global: 0.1, Baseline: 0.01}
	neighbors := []int{4, 2, 2}
	counts := []int{50, 30, 20}

	got := ReplacementProbabilities(Occupied(1), neighbors, counts, 100, matrix, w, make([]float64, 3))

	if got[0] != 0 {
		t.Errorf("P[0] = %v, want 0", got[0])
	}
	// M[1][1] = 0 leaves only the baseline.
	if math.Abs(got[1]-0.01) > 1e-12 {
		t.Errorf("P[1] = %v, want 0.01", got[1])
	}
	want2 := 0.4*(0.8*2.0/8+0.1*20.0/100) + 0.01
	if math.Abs(got[2]-want2) > 1e-12 {
		t.Errorf("P[2] = %v, want %v", got[2], want2)
	}
}

func TestReplacementProbabilitiesNoActiveCells(t *testing.T) {
	matrix := [][]float64{{0, 0}, {1, 1}}
	w := DefaultWeights()
	got := ReplacementProbabilities(Gap, []int{0, 8}, []int{0, 0}, 0, matrix, w, make([]float64, 2))
	want := 0.8 + w.Baseline
	if math.IsNaN(got[1]) || math.Abs(got[1]-want) > 1e-12 {
		t.Errorf("P[1] = %v, want %v", got[1], want)
	}
}

// A 4x4 grid with a single species-1 plant: only gaps next to it can be colonised.
func TestColonisationNeedsNeighbor(t *testing.T) {
	const w, h = 4, 4
	grid := make([]Species, w*h)
	grid[0] = Occupied(1) // (0,0)

	matrix := [][]float64{
		{0, 0},
		{1.0, 0},
	}
	weights := Weights{Local: 0.8}
	counts := []int{w*h - 1, 1}

	neighbors := make([]int, 2)
	probs := make([]float64, 2)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !grid[y*w+x].IsGap() {
				continue
			}
			NeighborCounts(grid, w, h, x, y, neighbors)
			ReplacementProbabilities(Gap, neighbors, counts, w*h, matrix, weights, probs)
			adjacent := x <= 1 && y <= 1
			switch {
			case adjacent && probs[1] <= 0:
				t.Errorf("gap (%d,%d) next to species 1 has P[1] = %v, want > 0", x, y, probs[1])
			case !adjacent && probs[1] != 0:
				t.Errorf("gap (%d,%d) with no species-1 neighbor has P[1] = %v, want 0", x, y, probs[1])
			}
		}
	}
}

func TestWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		w       Weights
		wantErr bool
	}{
		{"reference", DefaultWeights(), false},
		{"all zero", Weights{}, false},
		{"sum above one", Weights{Local: 0.9, Global: 0.2}, true},
		{"negative", Weights{Local: -0.1}, true},
		{"nan", Weights{Global: math.NaN()}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.w.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidParams) {
				t.Errorf("error %v does not wrap ErrInvalidParams", err)
			}
		})
	}
}
