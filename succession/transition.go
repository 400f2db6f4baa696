package succession

import "math/rand"

// Engine advances the grid one generation at a time.
// It owns the random source and the per-cell ages; ages are never recorded in the history.
type Engine struct {
	width, height int
	totalActive   int
	matrix        [][]float64
	weights       Weights
	disturbance   float64
	model         *Model
	rng           *rand.Rand

	ages      []int
	disturbed []bool
	neighbors []int
	probs     []float64
	cum       []float64
}

// NewEngine creates an engine for a grid with totalActive plantable cells.
func NewEngine(params Params, model *Model, rng *rand.Rand, totalActive int) *Engine {
	s := params.SpeciesCount()
	cells := params.Width * params.Height
	return &Engine{
		width:       params.Width,
		height:      params.Height,
		totalActive: totalActive,
		matrix:      params.Replacement,
		weights:     params.Weights,
		disturbance: params.Disturbance,
		model:       model,
		rng:         rng,
		ages:        make([]int, cells),
		disturbed:   make([]bool, cells),
		neighbors:   make([]int, s+1),
		probs:       make([]float64, s+1),
		cum:         make([]float64, s),
	}
}

// Age returns the current age of the individual at cell index i.
func (e *Engine) Age(i int) int { return e.ages[i] }

// Step writes the generation following cur into next and tallies it into nextCounts.
// curCounts must hold the species counts of cur.
func (e *Engine) Step(cur, next []Species, curCounts, nextCounts []int) {
	clear(nextCounts)
	e.disturbed = Disturb(e.rng, cur, e.disturbance, e.disturbed)

	w := e.width
	for i, s := range cur {
		if s.IsPermanent() {
			next[i] = Permanent
			continue
		}
		if e.disturbed[i] {
			next[i] = Gap
			e.ages[i] = 0
			nextCounts[Gap]++
			continue
		}

		x, y := i%w, i/w
		NeighborCounts(cur, w, e.height, x, y, e.neighbors)

		defender := Gap
		if s.IsOccupied() {
			survival := e.model.SurvivalProbability(s, e.ages[i], x, y)
			if e.rng.Float64() <= survival {
				defender = s
			}
		}

		ReplacementProbabilities(defender, e.neighbors, curCounts, e.totalActive, e.matrix, e.weights, e.probs)
		winner, replaced := selectInto(e.cum, e.probs, e.rng.Float64())

		switch {
		case replaced:
			next[i] = winner
			e.ages[i] = 0
		case defender.IsOccupied():
			next[i] = s
			e.ages[i]++
		default:
			next[i] = Gap
			e.ages[i] = 0
		}
		nextCounts[next[i]]++
	}
}
