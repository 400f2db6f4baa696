package succession

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is wrapped by every parameter validation failure.
var ErrInvalidParams = errors.New("invalid succession parameters")

// DefaultProgressInterval is the number of generations between progress notifications.
const DefaultProgressInterval = 1000

// Tolerance is an environmental optimum and how strongly deviation from it reduces health.
type Tolerance struct {
	Optimum     float64
	Sensitivity float64
}

// SpeciesParams holds the per-species model parameters.
type SpeciesParams struct {
	Name      string
	Lifespan  int
	Altitude  Tolerance
	Salinity  Tolerance
	Drainage  Tolerance
	Fertility Tolerance
}

// Params is everything the driver needs to run one simulation.
type Params struct {
	Width, Height int
	Species       []SpeciesParams

	// Replacement[replacer][defender], both indexed 0..S. Row 0 must be zero.
	Replacement [][]float64

	Weights     Weights
	Disturbance float64

	// Row-major starting codes, row 0 is y=0. Padded with 'R' when short.
	StartingMatrix string

	ProgressInterval int
	MaxHistoryCells  int64
}

// SpeciesCount returns S, the number of occupied species.
func (p Params) SpeciesCount() int { return len(p.Species) }

// Validate reports the first inconsistency in p.
func (p Params) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidParams, p.Width, p.Height)
	}
	s := len(p.Species)
	if s < 1 || s > MaxSpecies {
		return fmt.Errorf("%w: %d species, want 1..%d", ErrInvalidParams, s, MaxSpecies)
	}
	for i, sp := range p.Species {
		if sp.Lifespan < 1 {
			return fmt.Errorf("%w: species %d lifespan %d", ErrInvalidParams, i+1, sp.Lifespan)
		}
	}
	if len(p.Replacement) != s+1 {
		return fmt.Errorf("%w: replacement matrix has %d rows, want %d", ErrInvalidParams, len(p.Replacement), s+1)
	}
	for k, row := range p.Replacement {
		if len(row) != s+1 {
			return fmt.Errorf("%w: replacement row %d has %d values, want %d", ErrInvalidParams, k, len(row), s+1)
		}
		for j, v := range row {
			if math.IsNaN(v) || v < 0 || v > 1 {
				return fmt.Errorf("%w: replacement[%d][%d] = %g outside [0,1]", ErrInvalidParams, k, j, v)
			}
			if k == 0 && v != 0 {
				return fmt.Errorf("%w: gap row of replacement matrix must be zero", ErrInvalidParams)
			}
		}
	}
	if err := p.Weights.Validate(); err != nil {
		return err
	}
	if math.IsNaN(p.Disturbance) || p.Disturbance < 0 || p.Disturbance > 1 {
		return fmt.Errorf("%w: disturbance %g outside [0,1]", ErrInvalidParams, p.Disturbance)
	}
	if len(p.StartingMatrix) > p.Width*p.Height {
		return fmt.Errorf("%w: starting matrix has %d cells, grid has %d", ErrInvalidParams, len(p.StartingMatrix), p.Width*p.Height)
	}
	for i, c := range p.StartingMatrix {
		if _, ok := startCode(c, s); !ok {
			return fmt.Errorf("%w: starting matrix cell %d: invalid code %q", ErrInvalidParams, i, c)
		}
	}
	if p.ProgressInterval < 0 {
		return fmt.Errorf("%w: progress interval %d", ErrInvalidParams, p.ProgressInterval)
	}
	return nil
}

// randomCode is the starting code for a uniformly random species 0..S.
const randomCode = 'R'

// startCode maps a starting matrix character to its species.
// The random code reports (Gap, true) and is resolved by the caller.
func startCode(c rune, species int) (Species, bool) {
	switch {
	case c == randomCode:
		return Gap, true
	case c == 'N':
		return Permanent, true
	case c >= '0' && c <= '9' && int(c-'0') <= species:
		return Species(c - '0'), true
	}
	return Gap, false
}
