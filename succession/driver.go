package succession

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
)

// ProgressFunc is notified as generations complete.
type ProgressFunc func(done, total int)

// Driver precomputes complete trajectories.
type Driver struct {
	params   Params
	env      Environment
	progress ProgressFunc
}

// NewDriver validates params and returns a driver for them.
func NewDriver(params Params, env Environment) (*Driver, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.ProgressInterval == 0 {
		params.ProgressInterval = DefaultProgressInterval
	}
	return &Driver{params: params, env: env}, nil
}

// Params returns the parameters the driver runs with.
func (d *Driver) Params() Params { return d.params }

// OnProgress installs a progress callback.
func (d *Driver) OnProgress(fn ProgressFunc) { d.progress = fn }

// Run simulates the given number of generations from seed. It blocks until the whole
// history is populated; cancellation is checked between generations and returns ctx.Err().
func (d *Driver) Run(ctx context.Context, generations int, seed int64) (*History, error) {
	p := d.params
	hist, err := NewHistory(p.Width, p.Height, p.SpeciesCount(), generations, p.MaxHistoryCells)
	if err != nil {
		return nil, err
	}
	hist.seed = seed

	rng := rand.New(rand.NewSource(seed))
	hist.totalActive = d.seedGrid(rng, hist.Generation(0), hist.Counts(0))

	model := NewModel(p, d.env)
	engine := NewEngine(p, model, rng, hist.totalActive)

	slog.Debug("simulation started",
		"width", p.Width,
		"height", p.Height,
		"generations", generations,
		"seed", seed,
		"active_cells", hist.totalActive,
	)

	for g := 0; g+1 < generations; g++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("simulation cancelled at generation %d: %w", g, err)
		}
		engine.Step(hist.Generation(g), hist.Generation(g+1), hist.Counts(g), hist.Counts(g+1))
		if done := g + 2; d.progress != nil && done%p.ProgressInterval == 0 && done < generations {
			d.progress(done, generations)
		}
	}
	if d.progress != nil {
		d.progress(generations, generations)
	}
	return hist, nil
}

// seedGrid fills generation 0 and returns the number of plantable cells.
// Cells out of bounds or below water are permanent regardless of the starting matrix.
func (d *Driver) seedGrid(rng *rand.Rand, grid []Species, counts []int) int {
	p := d.params
	s := p.SpeciesCount()
	active := 0
	for i := range grid {
		x, y := i%p.Width, i/p.Width
		if !d.env.InBounds(x, y) || d.env.Elevation(x, y) < d.env.WaterLevel(x, y) {
			grid[i] = Permanent
			continue
		}

		code := rune(randomCode)
		if i < len(p.StartingMatrix) {
			code = rune(p.StartingMatrix[i])
		}
		sp, _ := startCode(code, s)
		if code == randomCode {
			sp = Species(rng.Intn(s + 1))
		}
		grid[i] = sp
		if sp.IsPermanent() {
			continue
		}
		counts[sp]++
		active++
	}
	return active
}
