package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidsand/camera"
	"github.com/pthm-cable/fluidsand/sim"
)

// ParticleRenderer renders SPH particles, tinted by density.
type ParticleRenderer struct {
	Base        rl.Color // Colour at rest density
	Pinned      rl.Color
	Radius      float32
	RestDensity float32
}

// NewParticleRenderer creates a particle renderer.
func NewParticleRenderer(base rl.Color, radius, restDensity float32) *ParticleRenderer {
	return &ParticleRenderer{
		Base:        base,
		Pinned:      rl.Color{R: 120, G: 120, B: 120, A: 255},
		Radius:      radius,
		RestDensity: restDensity,
	}
}

// Draw renders all particles.
func (r *ParticleRenderer) Draw(particles []sim.ParticleSnapshot, cam *camera.Camera) {
	size := r.Radius * cam.Zoom
	if size < 1 {
		size = 1
	}

	for i := range particles {
		p := &particles[i]
		if !cam.IsVisible(p.X, p.Y, r.Radius) {
			continue
		}

		color := r.Pinned
		if !p.Pinned {
			color = r.densityColor(p.Density)
		}
		sx, sy := cam.WorldToScreen(p.X, p.Y)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, size, color)
	}
}

// densityColor brightens compressed particles and fades sparse ones.
func (r *ParticleRenderer) densityColor(rho float32) rl.Color {
	ratio := float32(1)
	if r.RestDensity > 0 {
		ratio = rho / r.RestDensity
	}
	c := r.Base
	if ratio > 1 {
		t := min(ratio-1, 1)
		c.R = uint8(float32(c.R) + (255-float32(c.R))*t*0.6)
		c.G = uint8(float32(c.G) + (255-float32(c.G))*t*0.6)
		c.A = uint8(float32(c.A) + (255-float32(c.A))*t)
	} else {
		c.A = uint8(float32(c.A) * (0.4 + 0.6*max(ratio, 0)))
	}
	return c
}
