package ui

import (
	"fmt"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// playbackButtons are laid out two per row; each issues the command it names.
var playbackButtons = []struct {
	label   string
	command string
}{
	{"Reset", "reset"},
	{"Clear", "clear"},
	{"Forward", "forward"},
	{"Reverse", "reverse"},
	{"Stop", "stop"},
	{"Now", "now"},
	{"< Step", "-"},
	{"Step >", "+"},
}

// ControlsPanel renders playback buttons, a command line and overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32

	input   string
	editing bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Contains reports whether a screen point lies on the panel as last drawn.
func (c *ControlsPanel) Contains(x, y float32) bool {
	return x >= float32(c.x) && x < float32(c.x+c.width) && y >= float32(c.y) && y < float32(c.y+c.height)
}

// Editing reports whether the command line has keyboard focus.
func (c *ControlsPanel) Editing() bool { return c.editing }

// Draw renders the panel and returns the command issued this frame, if any.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) string {
	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	inner := c.width - padding*2
	buttonH := int32(24)
	half := (inner - 6) / 2

	rows := int32((len(playbackButtons) + 1) / 2)
	toggles := int32(len(overlays.All()) + len(overlays.Categories()))
	c.height = padding*3 + lineHeight + 4 + rows*(buttonH+4) + buttonH + 8 + toggles*lineHeight
	r.DrawPanel(c.x, c.y, c.width, c.height)

	y := c.y + padding
	rl.DrawText("Playback", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	var issued string
	for i, b := range playbackButtons {
		bx := c.x + padding
		if i%2 == 1 {
			bx += half + 6
		}
		bounds := rl.Rectangle{X: float32(bx), Y: float32(y), Width: float32(half), Height: float32(buttonH)}
		if gui.Button(bounds, b.label) {
			issued = b.command
		}
		if i%2 == 1 {
			y += buttonH + 4
		}
	}

	// Command line: step <n>, a configuration token, or any playback keyword.
	boxW := inner - 56
	if gui.TextBox(rl.Rectangle{X: float32(c.x + padding), Y: float32(y), Width: float32(boxW), Height: float32(buttonH)}, &c.input, 64, c.editing) {
		c.editing = !c.editing
		if !c.editing && strings.TrimSpace(c.input) != "" {
			issued = strings.TrimSpace(c.input)
			c.input = ""
		}
	}
	if gui.Button(rl.Rectangle{X: float32(c.x + padding + boxW + 6), Y: float32(y), Width: 50, Height: float32(buttonH)}, "Send") {
		if cmd := strings.TrimSpace(c.input); cmd != "" {
			issued = cmd
			c.input = ""
		}
		c.editing = false
	}
	y += buttonH + 8

	for _, cat := range overlays.Categories() {
		rl.DrawText(strings.ToUpper(cat[:1])+cat[1:], c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight
		for _, desc := range overlays.ByCategory(cat) {
			c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), inner)
			y += lineHeight
		}
	}

	return issued
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}
