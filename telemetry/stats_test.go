package telemetry

import (
	"context"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/pthm-cable/meadow/environment"
	"github.com/pthm-cable/meadow/succession"
)

// simulate runs a small two-species meadow with one flooded corner.
func simulate(t *testing.T, gens int) *succession.History {
	t.Helper()
	const w, h = 6, 5
	p := succession.Params{
		Width:  w,
		Height: h,
		Species: []succession.SpeciesParams{
			{Name: "moss", Lifespan: 20},
			{Name: "grass", Lifespan: 20},
		},
		Replacement: [][]float64{
			{0, 0, 0},
			{0.4, 0, 0.2},
			{0.4, 0.2, 0},
		},
		Weights:        succession.DefaultWeights(),
		Disturbance:    0.02,
		StartingMatrix: "012012012012012012012012012012",
	}
	env := &environment.Uniform{
		Width: w, Height: h, Ground: 25,
		Flooded: map[[2]int]bool{{0, 0}: true},
	}
	d, err := succession.NewDriver(p, env)
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}
	hist, err := d.Run(context.Background(), gens, 7)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return hist
}

func TestCompute(t *testing.T) {
	h := simulate(t, 20)

	first := Compute(h, 0, nil)
	if first.TotalActive != 29 {
		t.Errorf("TotalActive = %d, want 29", first.TotalActive)
	}
	if first.Delta != nil {
		t.Errorf("Delta = %v, want nil without a previous generation", first.Delta)
	}
	// Flooded (0,0) was '0' in the matrix and is now permanent: 9 gaps, 10 of each species.
	if want := []int{9, 10, 10}; !slices.Equal(first.Counts, want) {
		t.Errorf("Counts = %v, want %v", first.Counts, want)
	}

	var pct float64
	for _, p := range first.Percent {
		pct += p
	}
	if math.Abs(pct-100) > 1e-9 {
		t.Errorf("percentages sum to %v, want 100", pct)
	}
	if math.Abs(first.Occupancy-20.0/29) > 1e-9 {
		t.Errorf("Occupancy = %v", first.Occupancy)
	}
	if math.Abs(first.Diversity-math.Log(2)) > 1e-9 {
		t.Errorf("Diversity = %v, want ln 2", first.Diversity)
	}

	second := Compute(h, 1, &first)
	for k := range second.Counts {
		if second.Delta[k] != second.Counts[k]-first.Counts[k] {
			t.Errorf("Delta[%d] = %d, want %d", k, second.Delta[k], second.Counts[k]-first.Counts[k])
		}
	}
}

func TestComputeCopiesCounts(t *testing.T) {
	h := simulate(t, 3)
	s := Compute(h, 0, nil)
	s.Counts[0] = -1
	if h.Counts(0)[0] == -1 {
		t.Error("Compute aliased the history's counts")
	}
}

func TestRowAndText(t *testing.T) {
	s := GenerationStats{
		Generation: 12,
		Counts:     []int{3, 4, 5},
		Percent:    []float64{25, 33.3, 41.7},
		Delta:      []int{0, -1, 1},
	}
	if got, want := s.Row(), []string{"12", "4", "5"}; !slices.Equal(got, want) {
		t.Errorf("Row() = %v, want %v", got, want)
	}

	text := s.Text([]string{"gap", "moss"})
	for _, want := range []string{"Generation 12:", "gap 3", "moss 4", "species_2 5", "+1", "-1"} {
		if !strings.Contains(text, want) {
			t.Errorf("Text() = %q, missing %q", text, want)
		}
	}
}

func TestSummary(t *testing.T) {
	s := GenerationStats{
		Generation:  4,
		TotalActive: 10,
		Counts:      []int{2, 6, 2},
		Percent:     []float64{20, 60, 20},
		Occupancy:   0.8,
		Dominant:    1,
	}
	sum := s.Summary()
	if sum.Gaps != 2 || sum.Occupied != 8 || sum.DominantShare != 60 {
		t.Errorf("Summary() = %+v", sum)
	}

	empty := GenerationStats{TotalActive: 4, Counts: []int{4, 0}, Percent: []float64{100, 0}}
	if got := empty.Summary(); got.Dominant != 0 || got.DominantShare != 0 {
		t.Errorf("empty meadow summary = %+v", got)
	}
}
