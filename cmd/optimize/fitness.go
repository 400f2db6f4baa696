package main

import (
	"context"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/succession"
	"github.com/pthm-cable/meadow/telemetry"
)

// FitnessEvaluator runs simulations and scores the resulting communities.
type FitnessEvaluator struct {
	params      *ParamVector
	generations int
	seeds       []int64
	baseConfig  *config.Config

	// Target occupied-species shares, indexed 0..S-1 and summing to 1. Nil scores coexistence.
	target []float64

	mu          sync.Mutex
	lastQuality float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, generations int, seeds []int64, baseCfg *config.Config, target []float64) *FitnessEvaluator {
	if target != nil {
		target = append([]float64(nil), target...)
		if sum := floats.Sum(target); sum > 0 {
			floats.Scale(1/sum, target)
		}
	}
	return &FitnessEvaluator{
		params:      params,
		generations: generations,
		seeds:       seeds,
		baseConfig:  baseCfg,
		target:      target,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Fraction of each run, counted from the end, that is scored.
const scoredTail = 0.25

// Evaluate computes fitness for raw parameter values (lower = better).
// Failed runs score +Inf.
func (fe *FitnessEvaluator) Evaluate(ctx context.Context, x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	params := cfg.Params()
	env := cfg.Environment()

	qualities := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			qualities[idx] = math.NaN()
			d, err := succession.NewDriver(params, env)
			if err != nil {
				return
			}
			h, err := d.Run(ctx, fe.generations, s)
			if err != nil {
				return
			}
			qualities[idx] = fe.computeQuality(h)
		}(i, seed)
	}
	wg.Wait()

	for _, q := range qualities {
		if math.IsNaN(q) {
			return math.Inf(1)
		}
	}
	quality := stat.Mean(qualities, nil)

	fe.mu.Lock()
	fe.lastQuality = quality
	fe.mu.Unlock()
	return -quality
}

// computeQuality scores the tail of a run in [0, 1].
func (fe *FitnessEvaluator) computeQuality(h *succession.History) float64 {
	last := h.Generations() - 1
	from := last - int(float64(last)*scoredTail)

	var scores, occupied []float64
	for g := from; g <= last; g++ {
		s := telemetry.Compute(h, g, nil)
		shares := occupiedShares(s.Counts)
		if shares == nil {
			scores = append(scores, 0)
			occupied = append(occupied, 0)
			continue
		}
		occupied = append(occupied, s.Occupancy)
		if fe.target != nil {
			scores = append(scores, matchScore(shares, fe.target))
		} else {
			scores = append(scores, evenness(s.Diversity, len(shares)))
		}
	}

	// Penalize communities that keep swinging over the scored tail
	stability := math.Exp(-cv(occupied) * cv(occupied))
	return clamp01(stat.Mean(scores, nil) * stability)
}

// occupiedShares returns the share of each species 1..S among occupied cells, or nil when none are.
func occupiedShares(counts []int) []float64 {
	shares := make([]float64, len(counts)-1)
	for k := range shares {
		shares[k] = float64(counts[k+1])
	}
	sum := floats.Sum(shares)
	if sum == 0 {
		return nil
	}
	floats.Scale(1/sum, shares)
	return shares
}

// matchScore is 1 for identical share vectors and falls toward 0 with their distance.
func matchScore(shares, target []float64) float64 {
	if len(shares) != len(target) {
		return 0
	}
	// L1 distance between two distributions is at most 2
	return 1 - floats.Distance(shares, target, 1)/2
}

// evenness normalizes Shannon diversity by its maximum for s species.
func evenness(diversity float64, s int) float64 {
	if s < 2 {
		return 0
	}
	return diversity / math.Log(float64(s))
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
