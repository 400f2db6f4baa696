package telemetry

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/meadow/succession"
)

// GenerationStats summarizes one visualized generation.
type GenerationStats struct {
	Generation  int
	TotalActive int

	// Indexed 0 (gaps) .. S
	Counts  []int
	Percent []float64
	Delta   []int // Change since the previously visualized generation; nil for the first

	Occupancy float64 // Share of plantable cells holding a plant
	Diversity float64 // Shannon entropy (nats) over occupied species
	Dominant  int     // Most abundant species, 0 when the meadow is empty
}

// Compute builds the stats of generation g. prev is the previously visualized
// generation's stats, or nil.
func Compute(h *succession.History, g int, prev *GenerationStats) GenerationStats {
	counts := append([]int(nil), h.Counts(g)...)
	total := h.TotalActive()

	s := GenerationStats{
		Generation:  g,
		TotalActive: total,
		Counts:      counts,
		Percent:     make([]float64, len(counts)),
	}

	occupied := 0
	for k, c := range counts {
		if total > 0 {
			s.Percent[k] = float64(c) / float64(total) * 100
		}
		if k > 0 {
			occupied += c
			if c > 0 && (s.Dominant == 0 || c > counts[s.Dominant]) {
				s.Dominant = k
			}
		}
	}
	if total > 0 {
		s.Occupancy = float64(occupied) / float64(total)
	}
	if occupied > 0 {
		p := make([]float64, len(counts)-1)
		for k := range p {
			p[k] = float64(counts[k+1]) / float64(occupied)
		}
		s.Diversity = stat.Entropy(p)
	}

	if prev != nil && len(prev.Counts) == len(counts) {
		s.Delta = make([]int, len(counts))
		for k := range counts {
			s.Delta[k] = counts[k] - prev.Counts[k]
		}
	}
	return s
}

// Row returns the persisted log line: generation followed by the species 1..S counts.
func (s GenerationStats) Row() []string {
	row := make([]string, 0, len(s.Counts))
	row = append(row, strconv.Itoa(s.Generation))
	for _, c := range s.Counts[1:] {
		row = append(row, strconv.Itoa(c))
	}
	return row
}

// Text formats the stats as a one-line human summary. names is indexed 0..S.
func (s GenerationStats) Text(names []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generation %d:", s.Generation)
	for k, c := range s.Counts {
		name := fmt.Sprintf("species_%d", k)
		if k < len(names) {
			name = names[k]
		}
		fmt.Fprintf(&b, " %s %d (%.1f%%", name, c, s.Percent[k])
		if s.Delta != nil {
			fmt.Fprintf(&b, ", %+d", s.Delta[k])
		}
		b.WriteString(")")
	}
	return b.String()
}

// Summary flattens the stats for stats.csv.
func (s GenerationStats) Summary() GenerationSummary {
	sum := GenerationSummary{
		Generation:  s.Generation,
		TotalActive: s.TotalActive,
		Occupancy:   s.Occupancy,
		Diversity:   s.Diversity,
		Dominant:    s.Dominant,
	}
	if len(s.Counts) > 0 {
		sum.Gaps = s.Counts[0]
		sum.Occupied = s.TotalActive - s.Counts[0]
	}
	if s.Dominant > 0 {
		sum.DominantShare = s.Percent[s.Dominant]
	}
	return sum
}

// GenerationSummary is the fixed-width per-generation record written to stats.csv.
type GenerationSummary struct {
	Generation    int     `csv:"generation"`
	TotalActive   int     `csv:"total_active"`
	Gaps          int     `csv:"gaps"`
	Occupied      int     `csv:"occupied"`
	Occupancy     float64 `csv:"occupancy"`
	Diversity     float64 `csv:"diversity"`
	Dominant      int     `csv:"dominant"`
	DominantShare float64 `csv:"dominant_pct"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("generation", s.Generation),
		slog.Int("total_active", s.TotalActive),
		slog.Float64("occupancy", s.Occupancy),
		slog.Float64("diversity", s.Diversity),
		slog.Int("dominant", s.Dominant),
	}
	for k, c := range s.Counts {
		attrs = append(attrs, slog.Int("count_"+strconv.Itoa(k), c))
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs the generation stats using slog.
func (s GenerationStats) LogStats() {
	slog.Info("generation", "stats", s)
}
