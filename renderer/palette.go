package renderer

import (
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pthm-cable/meadow/succession"
)

// Fallback colors for species without a configured color.
var fallbackColors = []rl.Color{
	{R: 120, G: 180, B: 80, A: 255},
	{R: 200, G: 170, B: 60, A: 255},
	{R: 80, G: 140, B: 170, A: 255},
	{R: 190, G: 90, B: 140, A: 255},
	{R: 150, G: 110, B: 70, A: 255},
}

// PermanentColor fills cells that can never hold a plant.
var PermanentColor = rl.Color{R: 28, G: 30, B: 34, A: 255}

// Palette maps species to draw colors.
type Palette struct {
	colors []rl.Color // Indexed 0..S; index 0 is unused
}

// NewPalette builds a palette from #rrggbb strings indexed 1..S (index 0 ignored).
func NewPalette(hex []string) Palette {
	p := Palette{colors: make([]rl.Color, len(hex))}
	for k := 1; k < len(hex); k++ {
		p.colors[k] = ParseColor(hex[k], fallbackColors[(k-1)%len(fallbackColors)])
	}
	return p
}

// Color returns the fill color of a species.
func (p Palette) Color(s succession.Species) rl.Color {
	if s.IsPermanent() {
		return PermanentColor
	}
	k, ok := s.Index()
	if !ok {
		return rl.Blank
	}
	if k < len(p.colors) {
		return p.colors[k]
	}
	return fallbackColors[(k-1)%len(fallbackColors)]
}

// ParseColor parses #rrggbb or #rgb, returning fallback for anything else.
func ParseColor(s string, fallback rl.Color) rl.Color {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 3 {
		return fallback
	}
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return fallback
		}
	}
	c := drawing.ColorFromHex(hex)
	return rl.Color{R: c.R, G: c.G, B: c.B, A: 255}
}

// Shade scales the RGB channels of c by f, saturating at 255.
func Shade(c rl.Color, f float32) rl.Color {
	ch := func(v uint8) uint8 {
		x := float32(v) * f
		if x > 255 {
			return 255
		}
		if x < 0 {
			return 0
		}
		return uint8(x)
	}
	return rl.Color{R: ch(c.R), G: ch(c.G), B: ch(c.B), A: c.A}
}
