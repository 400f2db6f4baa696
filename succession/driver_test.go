package succession

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/pthm-cable/meadow/environment"
)

// testParams returns a valid parameter set with environment effects switched off.
func testParams(w, h, s int) Params {
	species := make([]SpeciesParams, s)
	for i := range species {
		species[i] = SpeciesParams{Lifespan: 10}
	}
	matrix := make([][]float64, s+1)
	for k := range matrix {
		matrix[k] = make([]float64, s+1)
		if k == 0 {
			continue
		}
		for j := range matrix[k] {
			if j != k {
				matrix[k][j] = 0.3
			}
		}
	}
	return Params{
		Width:       w,
		Height:      h,
		Species:     species,
		Replacement: matrix,
		Weights:     DefaultWeights(),
		Disturbance: 0.01,
	}
}

func testEnv(w, h int) *environment.Uniform {
	return &environment.Uniform{Width: w, Height: h, Ground: 25, Water: 0}
}

func runDriver(t *testing.T, p Params, env Environment, gens int, seed int64) *History {
	t.Helper()
	d, err := NewDriver(p, env)
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}
	h, err := d.Run(context.Background(), gens, seed)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return h
}

func TestDriverInvariants(t *testing.T) {
	const w, h, gens = 12, 9, 60
	env := testEnv(w, h)
	env.Flooded = map[[2]int]bool{{3, 4}: true, {0, 0}: true}
	p := testParams(w, h, 5)
	p.StartingMatrix = strings.Repeat("R", 20) + "N" + strings.Repeat("R", 10) + "3"

	hist := runDriver(t, p, env, gens, 42)

	if got, want := hist.TotalActive(), w*h-3; got != want {
		t.Fatalf("TotalActive = %d, want %d", got, want)
	}
	if got := hist.Status(0, 3, 4); !got.IsPermanent() {
		t.Errorf("flooded cell at generation 0 = %v, want permanent", got)
	}
	if got := hist.Status(0, 20%w, 20/w); !got.IsPermanent() {
		t.Errorf("N cell at generation 0 = %v, want permanent", got)
	}
	if got := hist.Status(0, 31%w, 31/w); got != Occupied(3) {
		t.Errorf("explicit starting cell = %v, want species_3", got)
	}

	first := hist.Generation(0)
	for g := 0; g < gens; g++ {
		grid := hist.Generation(g)
		for i, s := range grid {
			if s.IsPermanent() != first[i].IsPermanent() {
				t.Fatalf("generation %d cell %d permanence changed: %v -> %v", g, i, first[i], s)
			}
			if s < Permanent || int(s) > 5 {
				t.Fatalf("generation %d cell %d holds out-of-range species %d", g, i, s)
			}
		}

		sum := 0
		recount := make([]int, 6)
		for _, s := range grid {
			if !s.IsPermanent() {
				recount[s]++
			}
		}
		for _, c := range hist.Counts(g) {
			sum += c
		}
		if sum != hist.TotalActive() {
			t.Fatalf("generation %d counts sum to %d, want %d", g, sum, hist.TotalActive())
		}
		if !slices.Equal(recount, hist.Counts(g)) {
			t.Fatalf("generation %d counts %v, grid holds %v", g, hist.Counts(g), recount)
		}
	}

	for g := 0; g < gens; g++ {
		if got := hist.Status(g, 3, 4); got != Permanent {
			t.Fatalf("flooded cell at generation %d = %v", g, got)
		}
	}
}

func TestDriverDeterministic(t *testing.T) {
	p := testParams(10, 10, 4)
	a := runDriver(t, p, testEnv(10, 10), 40, 99)
	b := runDriver(t, p, testEnv(10, 10), 40, 99)
	c := runDriver(t, p, testEnv(10, 10), 40, 100)

	same := true
	for g := 0; g < 40; g++ {
		if !slices.Equal(a.Generation(g), b.Generation(g)) {
			t.Fatalf("generation %d differs between runs with the same seed", g)
		}
		if !slices.Equal(a.Generation(g), c.Generation(g)) {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical histories")
	}
	if a.Seed() != 99 {
		t.Errorf("Seed() = %d, want 99", a.Seed())
	}
}

func TestDriverColonisationScenario(t *testing.T) {
	p := testParams(4, 4, 1)
	p.Replacement = [][]float64{{0, 0}, {1.0, 0}}
	p.Weights = Weights{Local: 0.8}
	p.Disturbance = 0
	p.Species[0].Lifespan = 1000
	p.StartingMatrix = "1000" + "0000" + "0000" + "0000"

	hist := runDriver(t, p, testEnv(4, 4), 2, 5)

	if got := hist.Status(1, 0, 0); got != Occupied(1) {
		t.Errorf("founder = %v after one generation, want species_1", got)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if x <= 1 && y <= 1 {
				continue
			}
			if got := hist.Status(1, x, y); got != Gap {
				t.Errorf("cell (%d,%d) without species-1 neighbor became %v", x, y, got)
			}
		}
	}
}

func TestDriverLifespanScenario(t *testing.T) {
	p := testParams(1, 1, 2)
	p.Species[1].Lifespan = 1
	p.Replacement = [][]float64{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}}
	p.Weights = Weights{}
	p.Disturbance = 0
	p.StartingMatrix = "2"

	hist := runDriver(t, p, testEnv(1, 1), 3, 11)

	// ageHealth(0,1) = 1: the first survival check always passes.
	if got := hist.Status(1, 0, 0); got != Occupied(2) {
		t.Fatalf("generation 1 = %v, want species_2", got)
	}
	// ageHealth(1,1) = 0: the individual dies on the next check.
	if got := hist.Status(2, 0, 0); got != Gap {
		t.Fatalf("generation 2 = %v, want gap", got)
	}
}

func TestDriverAllPermanent(t *testing.T) {
	p := testParams(3, 3, 2)
	p.StartingMatrix = strings.Repeat("N", 9)
	hist := runDriver(t, p, testEnv(3, 3), 5, 1)
	if hist.TotalActive() != 0 {
		t.Fatalf("TotalActive = %d, want 0", hist.TotalActive())
	}
	for g := 0; g < 5; g++ {
		for _, s := range hist.Generation(g) {
			if !s.IsPermanent() {
				t.Fatalf("generation %d has plantable cell %v", g, s)
			}
		}
	}
}

func TestDriverProgress(t *testing.T) {
	p := testParams(4, 4, 2)
	p.ProgressInterval = 10
	d, err := NewDriver(p, testEnv(4, 4))
	if err != nil {
		t.Fatal(err)
	}
	var calls [][2]int
	d.OnProgress(func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})
	if _, err := d.Run(context.Background(), 35, 3); err != nil {
		t.Fatal(err)
	}
	want := [][2]int{{10, 35}, {20, 35}, {30, 35}, {35, 35}}
	if !slices.Equal(calls, want) {
		t.Errorf("progress calls = %v, want %v", calls, want)
	}
}

func TestDriverCancelled(t *testing.T) {
	d, err := NewDriver(testParams(4, 4, 2), testEnv(4, 4))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h, err := d.Run(ctx, 10, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if h != nil {
		t.Error("cancelled run returned a history")
	}
}

func TestDriverHistoryTooLarge(t *testing.T) {
	p := testParams(100, 100, 2)
	p.MaxHistoryCells = 50_000
	d, err := NewDriver(p, testEnv(100, 100))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Run(context.Background(), 6, 1); !errors.Is(err, ErrHistoryTooLarge) {
		t.Fatalf("Run() error = %v, want ErrHistoryTooLarge", err)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero width", func(p *Params) { p.Width = 0 }},
		{"no species", func(p *Params) { p.Species = nil }},
		{"zero lifespan", func(p *Params) { p.Species[0].Lifespan = 0 }},
		{"short matrix", func(p *Params) { p.Replacement = p.Replacement[:2] }},
		{"gap row nonzero", func(p *Params) { p.Replacement[0][1] = 0.1 }},
		{"probability above one", func(p *Params) { p.Replacement[1][0] = 1.5 }},
		{"disturbance above one", func(p *Params) { p.Disturbance = 2 }},
		{"unknown start code", func(p *Params) { p.StartingMatrix = "RRX" }},
		{"start species beyond roster", func(p *Params) { p.StartingMatrix = "4" }},
		{"start matrix too long", func(p *Params) { p.StartingMatrix = strings.Repeat("R", 17) }},
	}

	if err := testParams(4, 4, 3).Validate(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams(4, 4, 3)
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("Validate() = %v, want ErrInvalidParams", err)
			}
		})
	}
}

func TestDriverOutOfRegionCellsArePermanent(t *testing.T) {
	const w, h = 8, 6
	env := environment.NewTerrain(environment.Layout{Spacing: 10}, environment.TerrainParams{
		Seed:         3,
		RegionSize:   50,
		ElevationMin: 10,
		ElevationMax: 20,
		Scale:        0.02,
		Octaves:      2,
		SalinityMap:  environment.MapPatches,
	})
	hist := runDriver(t, testParams(w, h, 2), env, 5, 11)

	if got, want := hist.TotalActive(), 5*5; got != want {
		t.Errorf("TotalActive = %d, want %d", got, want)
	}
	for g := range hist.Generations() {
		for y := range h {
			for x := range w {
				outside := x >= 5 || y >= 5
				if got := hist.Status(g, x, y); got.IsPermanent() != outside {
					t.Fatalf("generation %d cell (%d,%d) = %v, outside region %v", g, x, y, got, outside)
				}
			}
		}
	}
}
