// Package succession implements the multi-species succession model: per-cell suitability,
// neighborhood competition, disturbance, and the full-trajectory simulation driver.
package succession

import "fmt"

// Species is the value held by one grid cell.
// Permanent cells are fixed at setup; Gap cells are plantable but empty.
type Species int8

const (
	// Permanent marks a non-plantable cell (underwater, out of bounds, or N in the starting matrix).
	Permanent Species = -1
	// Gap marks an empty plantable cell.
	Gap Species = 0
)

// MaxSpecies bounds the roster so every species has a single-digit starting matrix code.
const MaxSpecies = 9

// Occupied returns the species with roster index i (1-based).
func Occupied(i int) Species {
	return Species(i)
}

func (s Species) IsPermanent() bool { return s == Permanent }
func (s Species) IsGap() bool       { return s == Gap }
func (s Species) IsOccupied() bool  { return s > Gap }
func (s Species) IsPlantable() bool { return s >= Gap }

// Index returns the roster index of an occupied species.
func (s Species) Index() (int, bool) {
	if !s.IsOccupied() {
		return 0, false
	}
	return int(s), true
}

func (s Species) String() string {
	switch {
	case s.IsPermanent():
		return "permanent"
	case s.IsGap():
		return "gap"
	default:
		return fmt.Sprintf("species_%d", int(s))
	}
}

// Code returns the starting matrix character that reproduces s.
func (s Species) Code() byte {
	if s.IsPermanent() {
		return 'N'
	}
	return '0' + byte(s)
}
