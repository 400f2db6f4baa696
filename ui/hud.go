package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/telemetry"
)

// HUDData holds all the data needed to render the community panel.
type HUDData struct {
	Title       string
	State       string
	Generation  int // -1 when nothing is displayed
	Generations int // 0 before the first reset
	CycleTime   float64
	FPS         int32

	// Indexed 0 (gaps) .. S. Stats is nil when nothing is displayed.
	Names  []string
	Colors []rl.Color
	Stats  *telemetry.GenerationStats
}

// HUD renders the community heads-up display.
type HUD struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD(x, y, width int32) *HUD {
	return &HUD{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Draw renders the HUD and returns its bottom edge.
func (h *HUD) Draw(data HUDData) int32 {
	r := h.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	inner := h.width - padding*2

	rows := int32(4)
	if data.Stats != nil {
		rows += int32(len(data.Stats.Counts)) + 2
	}
	height := padding*2 + 24 + rows*(lineHeight+2)
	r.DrawPanel(h.x, h.y, h.width, height)

	x := h.x + padding
	y := h.y + padding
	rl.DrawText(data.Title, x, y, 20, rl.White)
	y += 24

	gen := "-"
	if data.Generation >= 0 {
		gen = fmt.Sprintf("%d / %d", data.Generation, data.Generations-1)
	}
	y = r.DrawLabelValue(x, y, "Generation", gen)
	y = r.DrawLabelValue(x, y, "State", data.State)
	y = r.DrawLabelValue(x, y, "Cycle", fmt.Sprintf("%.2fs", data.CycleTime))
	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d", data.FPS))

	if data.Stats == nil {
		return h.y + height
	}
	s := data.Stats
	y += 4
	y = r.DrawSectionHeader(x, y, "Community")
	for k, c := range s.Counts {
		label := fmt.Sprintf("%s %d", nameAt(data.Names, k), c)
		fill := r.Theme.BarFill
		if k < len(data.Colors) && k > 0 {
			fill = data.Colors[k]
		} else if k == 0 {
			fill = rl.Gray
		}
		y = r.DrawBar(x, y, label, float32(s.Percent[k]/100), inner, fill)
	}
	r.DrawLabelValue(x, y, "Diversity", fmt.Sprintf("%.3f", s.Diversity))
	return h.y + height
}

func nameAt(names []string, k int) string {
	if k < len(names) && names[k] != "" {
		return names[k]
	}
	if k == 0 {
		return "gap"
	}
	return fmt.Sprintf("species_%d", k)
}

// DrawKeyLegend renders the key legend at the bottom of the screen.
func (h *HUD) DrawKeyLegend(screenHeight int32, legend string) {
	rl.DrawText(legend, 10, screenHeight-20, 12, rl.Gray)
}

// AlertPanel renders the most recent alerts, newest last.
type AlertPanel struct {
	renderer *Renderer
	width    int32
}

// NewAlertPanel creates an alert panel.
func NewAlertPanel(width int32) *AlertPanel {
	return &AlertPanel{renderer: NewRenderer(), width: width}
}

// Draw renders lines anchored to the bottom-left corner, above the key legend.
func (a *AlertPanel) Draw(lines []string, screenHeight int32) {
	if len(lines) == 0 {
		return
	}
	r := a.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	height := padding*2 + int32(len(lines))*lineHeight
	y := screenHeight - 28 - height
	r.DrawPanel(10, y, a.width, height)

	maxChars := int((a.width - padding*2) / 6)
	y += padding
	for i, line := range lines {
		if len(line) > maxChars && maxChars > 3 {
			line = line[:maxChars-3] + "..."
		}
		color := r.Theme.LabelColor
		if i == len(lines)-1 {
			color = rl.White
		}
		rl.DrawText(line, 10+padding, y, r.Theme.FontSize, color)
		y += lineHeight
	}
}

// PerfPanel renders step timing.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.StepStats) int32 {
	r := p.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	height := padding*2 + 20 + 4*lineHeight + int32(len(stats.PhasePct))*lineHeight
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + padding
	y := p.y + padding
	rl.DrawText("Step Timing", x, y, 16, rl.White)
	y += 20

	y = r.DrawLabelValue(x, y, "Steps", fmt.Sprintf("%d", stats.Steps))
	y = r.DrawLabelValue(x, y, "Mean", fmt.Sprintf("%.0fus +/- %.0f", stats.MeanUS, stats.StdUS))
	y = r.DrawLabelValue(x, y, "Range", fmt.Sprintf("%.0f..%.0fus", stats.MinUS, stats.MaxUS))
	y = r.DrawLabelValue(x, y, "Steps/s", fmt.Sprintf("%.1f", stats.StepsPerSec))
	for i, pct := range stats.PhasePct {
		color := r.Theme.LabelColor
		if pct > 50 {
			color = rl.Orange
		}
		rl.DrawText(fmt.Sprintf("%-10s %5.1f%%", telemetry.Phase(i).String(), pct), x, y, r.Theme.FontSize, color)
		y += lineHeight
	}
	return p.y + height
}
