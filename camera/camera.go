// Package camera provides a 2D camera for viewing the meadow grid.
package camera

// Camera controls the viewport into the meadow.
// The meadow is bounded: the camera center is clamped to the meadow
// and zooming out stops once the whole grid fits on screen.
type Camera struct {
	// Position is the camera center in world pixels
	X, Y float32

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Grid layout in world pixels
	Cols, Rows int
	CellSize   float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centered on a cols x rows grid of cellSize pixel cells.
func New(viewportW, viewportH float32, cols, rows int, cellSize float32) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		Cols:      cols,
		Rows:      rows,
		CellSize:  cellSize,
		MaxZoom:   8.0,
	}
	c.updateMinZoom()
	c.Reset()
	return c
}

// WorldW returns the meadow width in world pixels.
func (c *Camera) WorldW() float32 { return float32(c.Cols) * c.CellSize }

// WorldH returns the meadow height in world pixels.
func (c *Camera) WorldH() float32 { return float32(c.Rows) * c.CellSize }

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// CellCenter returns the world position of the center of cell (x, y).
func (c *Camera) CellCenter(x, y int) (wx, wy float32) {
	return (float32(x) + 0.5) * c.CellSize, (float32(y) + 0.5) * c.CellSize
}

// CellAt returns the grid cell under a screen position.
func (c *Camera) CellAt(sx, sy float32) (x, y int, ok bool) {
	wx, wy := c.ScreenToWorld(sx, sy)
	if wx < 0 || wy < 0 {
		return 0, 0, false
	}
	x = int(wx / c.CellSize)
	y = int(wy / c.CellSize)
	if x >= c.Cols || y >= c.Rows {
		return 0, 0, false
	}
	return x, y, true
}

// CellVisible reports whether any part of cell (x, y) is on screen.
func (c *Camera) CellVisible(x, y int) bool {
	minX, minY, maxX, maxY := c.VisibleWorldBounds()
	x0, y0 := float32(x)*c.CellSize, float32(y)*c.CellSize
	return x0+c.CellSize >= minX && x0 <= maxX && y0+c.CellSize >= minY && y0 <= maxY
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.updateMinZoom()
	c.SetZoom(c.Zoom)
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset centers the camera and fits the whole meadow on screen.
func (c *Camera) Reset() {
	c.X = c.WorldW() / 2
	c.Y = c.WorldH() / 2
	c.Zoom = c.MinZoom
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

// updateMinZoom picks the zoom at which the whole grid just fits.
func (c *Camera) updateMinZoom() {
	w, h := c.WorldW(), c.WorldH()
	if w <= 0 || h <= 0 {
		c.MinZoom = 1
		return
	}
	c.MinZoom = min(c.ViewportW/w, c.ViewportH/h)
	if c.MinZoom > c.MaxZoom {
		c.MaxZoom = c.MinZoom
	}
}

// clampCenter keeps the view over the meadow. When the meadow is narrower
// than the view along an axis, it stays centered along that axis.
func (c *Camera) clampCenter() {
	c.X = clampAxis(c.X, c.ViewportW/(2*c.Zoom), c.WorldW())
	c.Y = clampAxis(c.Y, c.ViewportH/(2*c.Zoom), c.WorldH())
}

func clampAxis(center, half, size float32) float32 {
	if 2*half >= size {
		return size / 2
	}
	return clamp(center, half, size-half)
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
