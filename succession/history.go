package succession

import (
	"errors"
	"fmt"
)

// ErrHistoryTooLarge is returned when a history cannot be allocated.
var ErrHistoryTooLarge = errors.New("generation history too large")

// DefaultMaxHistoryCells caps generations*width*height when no limit is configured.
const DefaultMaxHistoryCells int64 = 1 << 28

// History is the complete simulated trajectory: one species per cell per generation,
// stored as a flat buffer indexed g*W*H + y*W + x, plus per-generation species counts.
// It is read-only once returned by the Driver and may be shared freely.
type History struct {
	width, height int
	generations   int
	species       int
	totalActive   int
	seed          int64

	status []Species
	counts []int
}

// NewHistory allocates a history for the given shape. It fails with ErrHistoryTooLarge
// instead of returning a partially usable table.
func NewHistory(width, height, species, generations int, maxCells int64) (h *History, err error) {
	if width <= 0 || height <= 0 || generations <= 0 || species < 0 {
		return nil, fmt.Errorf("%w: invalid shape %dx%d, %d generations, %d species",
			ErrInvalidParams, width, height, generations, species)
	}
	if maxCells <= 0 {
		maxCells = DefaultMaxHistoryCells
	}
	if int64(width) > maxCells/int64(height) {
		return nil, fmt.Errorf("%w: %dx%d grid exceeds limit of %d cells", ErrHistoryTooLarge, width, height, maxCells)
	}
	cells := int64(width) * int64(height)
	if int64(generations) > maxCells/cells {
		return nil, fmt.Errorf("%w: %d generations of %d cells exceed limit of %d",
			ErrHistoryTooLarge, generations, cells, maxCells)
	}
	total := cells * int64(generations)

	defer func() {
		if r := recover(); r != nil {
			h = nil
			err = fmt.Errorf("%w: allocating %d cells: %v", ErrHistoryTooLarge, total, r)
		}
	}()

	return &History{
		width:       width,
		height:      height,
		generations: generations,
		species:     species,
		status:      make([]Species, total),
		counts:      make([]int, generations*(species+1)),
	}, nil
}

func (h *History) Width() int       { return h.width }
func (h *History) Height() int      { return h.height }
func (h *History) Generations() int { return h.generations }

// SpeciesCount returns S; counts rows have S+1 entries.
func (h *History) SpeciesCount() int { return h.species }

// TotalActive is the number of plantable cells, constant over the run.
func (h *History) TotalActive() int { return h.totalActive }

// Seed is the random seed the history was simulated with.
func (h *History) Seed() int64 { return h.seed }

// Status returns the species at (x, y) in generation g.
func (h *History) Status(g, x, y int) Species {
	return h.status[g*h.width*h.height+y*h.width+x]
}

// Generation returns the row-major grid of generation g. The slice aliases the history
// and must not be modified.
func (h *History) Generation(g int) []Species {
	n := h.width * h.height
	return h.status[g*n : (g+1)*n : (g+1)*n]
}

// Counts returns the species counts of generation g, indexed 0..S. The slice aliases
// the history and must not be modified.
func (h *History) Counts(g int) []int {
	n := h.species + 1
	return h.counts[g*n : (g+1)*n : (g+1)*n]
}
