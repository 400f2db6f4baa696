package game

import (
	"github.com/pthm-cable/meadow/succession"
	"github.com/pthm-cable/meadow/telemetry"
	"github.com/pthm-cable/meadow/ui"
)

// cellView gathers the inspector contents for cell (x, y) at the displayed generation.
// It reports false when nothing is displayed or the cell lies outside the history.
func (g *Game) cellView(x, y int) (ui.CellView, bool) {
	h := g.ctrl.History()
	cur := g.ctrl.Current()
	if h == nil || cur < 0 || x < 0 || y < 0 || x >= h.Width() || y >= h.Height() {
		return ui.CellView{}, false
	}

	view := ui.CellView{
		History:  telemetry.InspectCell(h, cur, x, y),
		InBounds: g.env.InBounds(x, y),
		Names:    g.view.names,
		Colors:   g.view.colors,
	}
	view.Elevation = g.env.Elevation(x, y)
	view.Water = g.env.WaterLevel(x, y)
	view.Salinity, view.Drainage, view.Fertility = g.env.Soil(x, y)

	if view.InBounds {
		view.Habitat = make([]float64, h.SpeciesCount()+1)
		for k := 1; k <= h.SpeciesCount(); k++ {
			view.Habitat[k] = g.model.SurvivalProbability(succession.Occupied(k), 0, x, y)
		}
	}
	return view, true
}
