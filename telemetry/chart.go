package telemetry

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pthm-cable/meadow/succession"
)

// ErrChartTooShort is returned for histories with fewer than two generations.
var ErrChartTooShort = errors.New("chart needs at least two generations")

// WriteChart renders species counts over generations as a PNG, one line per species.
// names and colors are indexed 0..S; colors are #rrggbb strings and may be shorter than names.
func WriteChart(h *succession.History, names, colors []string, w io.Writer) error {
	gens := h.Generations()
	if gens < 2 {
		return ErrChartTooShort
	}

	xs := make([]float64, gens)
	for g := range xs {
		xs[g] = float64(g)
	}

	var series []chart.Series
	for k := 1; k <= h.SpeciesCount(); k++ {
		ys := make([]float64, gens)
		for g := range ys {
			ys[g] = float64(h.Counts(g)[k])
		}
		name := succession.Occupied(k).String()
		if k < len(names) {
			name = names[k]
		}
		style := chart.Style{StrokeWidth: 2.0}
		if k < len(colors) && colors[k] != "" {
			style.StrokeColor = drawing.ColorFromHex(strings.TrimPrefix(colors[k], "#"))
		}
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
			Style:   style,
		})
	}

	graph := chart.Chart{
		Width:  1024,
		Height: 400,
		XAxis: chart.XAxis{
			Name:  "generation",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "plants",
			Style: chart.Style{FontSize: 10.0},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}
