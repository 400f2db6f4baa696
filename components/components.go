// Package components defines ECS components for the rendered meadow.
package components

import "github.com/pthm-cable/meadow/succession"

// Plot is the grid cell an entity is planted in.
type Plot struct {
	X, Y int
}

// Plant is a rendered plant. The offset is the jitter applied in natural placement,
// in cell units within [-0.5, 0.5).
type Plant struct {
	Species          succession.Species
	OffsetX, OffsetY float32
}
