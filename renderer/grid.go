// Package renderer draws simulation state with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidsand/camera"
	"github.com/pthm-cable/fluidsand/systems"
)

// GridOverlay selects what the grid renderer shades open cells by.
type GridOverlay int

const (
	OverlayNone GridOverlay = iota
	OverlayPressure
	OverlayDivergence
)

func (o GridOverlay) String() string {
	switch o {
	case OverlayPressure:
		return "pressure"
	case OverlayDivergence:
		return "divergence"
	}
	return "none"
}

// Next cycles to the following overlay.
func (o GridOverlay) Next() GridOverlay {
	return (o + 1) % 3
}

// GridRenderer draws painted cells and an optional scalar overlay.
type GridRenderer struct {
	Overlay GridOverlay
	Scale   float32 // Overlay value mapped to full intensity
}

// NewGridRenderer creates a renderer with no overlay.
func NewGridRenderer() *GridRenderer {
	return &GridRenderer{Scale: 1}
}

// Draw renders every visible cell of g.
func (r *GridRenderer) Draw(g *systems.Grid, cam *camera.Camera) {
	half := g.Region.CellSize / 2
	size := g.Region.CellSize * cam.Zoom

	for i := 0; i < g.Len(); i++ {
		c := g.Region.IndexToTranslationUnchecked(i)
		if !cam.IsVisible(c.X, c.Y, half*1.5) {
			continue
		}

		var color rl.Color
		switch g.Kind[i] {
		case systems.CellSolid, systems.CellFluid:
			color = rl.Color(g.Color[i])
		default:
			var ok bool
			if color, ok = r.overlayColor(g, i); !ok {
				continue
			}
		}

		sx, sy := cam.WorldToScreen(c.X-half, c.Y+half)
		rl.DrawRectangleV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: size, Y: size}, color)
	}
}

// overlayColor shades positive values red and negative values blue.
func (r *GridRenderer) overlayColor(g *systems.Grid, i int) (rl.Color, bool) {
	var v float32
	switch r.Overlay {
	case OverlayPressure:
		v = g.Pressure[i]
	case OverlayDivergence:
		v = g.Divergence[i]
	default:
		return rl.Color{}, false
	}

	t := min(abs32(v)/r.Scale, 1)
	if t < 0.02 {
		return rl.Color{}, false
	}
	a := uint8(t * 160)
	if v > 0 {
		return rl.Color{R: 220, G: 60, B: 40, A: a}, true
	}
	return rl.Color{R: 40, G: 90, B: 220, A: a}, true
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
