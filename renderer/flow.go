package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidsand/camera"
	"github.com/pthm-cable/fluidsand/systems"
)

// FlowRenderer draws a grid's velocity field as short line segments.
type FlowRenderer struct {
	Enabled bool
	Length  float32 // World units drawn per unit of speed
	Color   rl.Color
}

// NewFlowRenderer creates a disabled flow renderer.
func NewFlowRenderer() *FlowRenderer {
	return &FlowRenderer{
		Length: 0.2,
		Color:  rl.Color{R: 50, G: 100, B: 130, A: 200},
	}
}

// Draw renders one segment per non-solid cell, starting at the cell center.
func (r *FlowRenderer) Draw(g *systems.Grid, cam *camera.Camera) {
	if !r.Enabled {
		return
	}
	maxLen := g.Region.CellSize

	for i := 0; i < g.Len(); i++ {
		if g.Kind[i] == systems.CellSolid {
			continue
		}
		v := g.Velocity[i]
		if v.LenSq() < 1e-6 {
			continue
		}
		c := g.Region.IndexToTranslationUnchecked(i)
		if !cam.IsVisible(c.X, c.Y, maxLen) {
			continue
		}

		d := v.Scale(r.Length)
		if l := d.Len(); l > maxLen {
			d = d.Scale(maxLen / l)
		}
		x0, y0 := cam.WorldToScreen(c.X, c.Y)
		x1, y1 := cam.WorldToScreen(c.X+d.X, c.Y+d.Y)
		rl.DrawLineEx(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, 1.5, r.Color)
	}
}
