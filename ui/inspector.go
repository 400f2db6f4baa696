package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/telemetry"
)

// CellView holds everything the inspector shows about one cell.
type CellView struct {
	History telemetry.CellHistory

	InBounds  bool
	Elevation float64
	Water     float64
	Salinity  float64
	Drainage  float64
	Fertility float64

	// Habitat is the survival probability of a new plant, indexed 1..S (index 0 unused).
	Habitat []float64

	// Indexed 0 (gaps) .. S
	Names  []string
	Colors []rl.Color
}

// CellInspector renders the selected cell panel.
type CellInspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewCellInspector creates a new inspector panel.
func NewCellInspector(x, y, width int32) *CellInspector {
	return &CellInspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the inspector position.
func (ins *CellInspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the panel for the given cell and returns its bottom edge.
func (ins *CellInspector) Draw(view CellView) int32 {
	return ins.renderer.DrawPanelDescriptor(ins.x, ins.y, ins.describe(view), view)
}

func cell(data any) CellView { return data.(CellView) }

func plantable(data any) bool { return !cell(data).History.Species.IsPermanent() }

// describe builds the panel layout; the species rows depend on the roster size.
func (ins *CellInspector) describe(view CellView) PanelDescriptor {
	site := SectionDescriptor{
		ID:    "site",
		Title: "Site",
		Fields: []FieldDescriptor{
			{ID: "cell", Label: "Cell", Widget: WidgetText, TextGetter: func(d any) string {
				h := cell(d).History
				return fmt.Sprintf("(%d, %d)", h.X, h.Y)
			}},
			{ID: "holds", Label: "Holds", Widget: WidgetText, TextGetter: func(d any) string {
				v := cell(d)
				if v.History.Species.IsPermanent() {
					if !v.InBounds {
						return "outside region"
					}
					if v.Water >= v.Elevation {
						return "underwater"
					}
					return "permanent"
				}
				return nameAt(v.Names, int(v.History.Species))
			}},
			{ID: "swatch", Label: "Color", Widget: WidgetColorSwatch, Visible: func(d any) bool {
				return cell(d).History.Species.IsOccupied()
			}, ColorGetter: func(d any) rl.Color {
				v := cell(d)
				if k := int(v.History.Species); k < len(v.Colors) {
					return v.Colors[k]
				}
				return rl.Gray
			}},
			{ID: "since", Label: "Since gen", Widget: WidgetText, Format: "%.0f", Visible: plantable, Getter: func(d any) float32 {
				return float32(cell(d).History.Since)
			}},
			{ID: "changes", Label: "Changes", Widget: WidgetText, Format: "%.0f", Visible: plantable, Getter: func(d any) float32 {
				return float32(cell(d).History.Changes)
			}},
		},
	}

	env := SectionDescriptor{
		ID:      "environment",
		Title:   "Environment",
		Visible: func(d any) bool { return cell(d).InBounds },
		Fields: []FieldDescriptor{
			{ID: "elevation", Label: "Elevation", Widget: WidgetText, Format: "%.1f", Getter: func(d any) float32 {
				return float32(cell(d).Elevation)
			}},
			{ID: "water", Label: "Water", Widget: WidgetText, Format: "%.1f", Getter: func(d any) float32 {
				return float32(cell(d).Water)
			}},
			{ID: "salinity", Label: "Salinity", Widget: WidgetBar, Getter: func(d any) float32 {
				return float32(cell(d).Salinity)
			}},
			{ID: "drainage", Label: "Drainage", Widget: WidgetBar, Getter: func(d any) float32 {
				return float32(cell(d).Drainage)
			}},
			{ID: "fertility", Label: "Fertility", Widget: WidgetBar, Getter: func(d any) float32 {
				return float32(cell(d).Fertility)
			}},
		},
	}

	habitat := SectionDescriptor{ID: "habitat", Title: "Habitat", Visible: plantable}
	occupancy := SectionDescriptor{ID: "occupancy", Title: "Time held", Visible: plantable}
	for k := range view.History.Share {
		color := func(d any) rl.Color {
			if v := cell(d); k < len(v.Colors) && k > 0 {
				return v.Colors[k]
			}
			return rl.Gray
		}
		occupancy.Fields = append(occupancy.Fields, FieldDescriptor{
			ID: fmt.Sprintf("share_%d", k), Label: nameAt(view.Names, k), Widget: WidgetBar,
			Getter:      func(d any) float32 { return float32(cell(d).History.Share[k]) },
			ColorGetter: color,
		})
		if k == 0 || k >= len(view.Habitat) {
			continue
		}
		habitat.Fields = append(habitat.Fields, FieldDescriptor{
			ID: fmt.Sprintf("habitat_%d", k), Label: nameAt(view.Names, k), Widget: WidgetBar,
			Getter:      func(d any) float32 { return float32(cell(d).Habitat[k]) },
			ColorGetter: color,
		})
	}

	return PanelDescriptor{
		ID:       "cell_inspector",
		Title:    fmt.Sprintf("Generation %d", view.History.Generation),
		Sections: []SectionDescriptor{site, env, habitat, occupancy},
		Width:    ins.width,
	}
}
