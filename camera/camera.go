// Package camera maps between screen pixels and world coordinates.
package camera

// Camera controls the viewport into the simulation world.
// World +Y points up; screen +Y points down.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// World rectangle the view is kept inside
	OriginX, OriginY float32
	WorldW, WorldH   float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centered on the world rectangle with 1:1 zoom.
func New(viewportW, viewportH, originX, originY, worldW, worldH float32) *Camera {
	c := &Camera{
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		OriginX:   originX,
		OriginY:   originY,
		WorldW:    worldW,
		WorldH:    worldH,
		MaxZoom:   4.0,
	}
	c.MinZoom = c.fitZoom()
	c.Reset()
	return c
}

// fitZoom is the smallest zoom at which the viewport stays inside the world.
func (c *Camera) fitZoom() float32 {
	z := c.ViewportW / c.WorldW
	if zy := c.ViewportH / c.WorldH; zy > z {
		z = zy
	}
	return z
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 - (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y - (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// InWorld reports whether a world point lies inside the world rectangle.
func (c *Camera) InWorld(wx, wy float32) bool {
	return wx >= c.OriginX && wx <= c.OriginX+c.WorldW &&
		wy >= c.OriginY && wy <= c.OriginY+c.WorldH
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = c.fitZoom()
	c.SetZoom(c.Zoom)
}

// SetWorld replaces the world rectangle, keeping the view inside it.
func (c *Camera) SetWorld(originX, originY, worldW, worldH float32) {
	c.OriginX, c.OriginY = originX, originY
	c.WorldW, c.WorldH = worldW, worldH
	c.MinZoom = c.fitZoom()
	c.SetZoom(c.Zoom)
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx / c.Zoom
	c.Y -= dy / c.Zoom
	c.constrain()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.constrain()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset centers the camera on the world at the smallest zoom that fills the viewport.
func (c *Camera) Reset() {
	c.X = c.OriginX + c.WorldW/2
	c.Y = c.OriginY + c.WorldH/2
	c.Zoom = clamp(1.0, c.MinZoom, c.MaxZoom)
	c.constrain()
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

// constrain keeps the visible area inside the world rectangle.
func (c *Camera) constrain() {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	c.X = clampSpan(c.X, c.OriginX+halfW, c.OriginX+c.WorldW-halfW)
	c.Y = clampSpan(c.Y, c.OriginY+halfH, c.OriginY+c.WorldH-halfH)
}

// clampSpan clamps x to [lo, hi], or centers it when the span is inverted.
func clampSpan(x, lo, hi float32) float32 {
	if lo > hi {
		return (lo + hi) / 2
	}
	return clamp(x, lo, hi)
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
