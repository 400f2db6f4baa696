package telemetry

import "github.com/pthm-cable/meadow/succession"

// CellHistory summarizes what one cell held over generations 0..Generation.
type CellHistory struct {
	X, Y       int
	Generation int
	Species    succession.Species

	// Since is the first generation of the current uninterrupted run of Species.
	Since int
	// Changes counts generations whose value differs from the previous one.
	Changes int
	// Share is the fraction of generations each value held the cell, indexed 0 (gap) .. S.
	// Nil for permanent cells.
	Share []float64
}

// InspectCell walks the history of cell (x, y) up to generation g.
func InspectCell(h *succession.History, g, x, y int) CellHistory {
	c := CellHistory{X: x, Y: y, Generation: g, Species: h.Status(g, x, y)}
	if c.Species.IsPermanent() {
		return c
	}

	held := make([]int, h.SpeciesCount()+1)
	prev := h.Status(0, x, y)
	held[prev]++
	for i := 1; i <= g; i++ {
		s := h.Status(i, x, y)
		held[s]++
		if s != prev {
			c.Changes++
			c.Since = i
		}
		prev = s
	}

	c.Share = make([]float64, len(held))
	for k, n := range held {
		c.Share[k] = float64(n) / float64(g+1)
	}
	return c
}
