package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/meadow/succession"
)

func TestInspectCell(t *testing.T) {
	h := simulate(t, 30)

	t.Run("permanent", func(t *testing.T) {
		c := InspectCell(h, 29, 0, 0)
		if !c.Species.IsPermanent() || c.Share != nil || c.Changes != 0 {
			t.Errorf("InspectCell(flooded) = %+v", c)
		}
	})

	t.Run("generation zero", func(t *testing.T) {
		// (1,0) is '1' in the starting matrix.
		c := InspectCell(h, 0, 1, 0)
		if c.Species != succession.Occupied(1) || c.Since != 0 || c.Changes != 0 {
			t.Errorf("InspectCell(gen 0) = %+v", c)
		}
		if c.Share[1] != 1 {
			t.Errorf("Share = %v, want all of generation 0 held by species 1", c.Share)
		}
	})

	for x := 1; x < h.Width(); x++ {
		c := InspectCell(h, 29, x, 2)

		changes, since := 0, 0
		for g := 1; g <= 29; g++ {
			if h.Status(g, x, 2) != h.Status(g-1, x, 2) {
				changes++
				since = g
			}
		}
		if c.Species != h.Status(29, x, 2) || c.Changes != changes || c.Since != since {
			t.Errorf("cell (%d,2) = %+v, want changes %d since %d", x, c, changes, since)
		}

		sum := 0.0
		for _, s := range c.Share {
			sum += s
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("cell (%d,2) shares sum to %v", x, sum)
		}
	}
}
