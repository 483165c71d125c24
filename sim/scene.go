package sim

import (
	"math/rand"

	"github.com/pthm-cable/fluidsand/systems"
)

// PopulateDamBreak queues the starting scene: a solid floor and, depending on
// the mode, a jittered block of particles or a band of moving fluid cells in
// the left third of the world.
func PopulateDamBreak(s *Sim, rng *rand.Rand) {
	cfg := s.cfg
	g := s.Grid(MainRegion)
	region := g.Region
	cell := region.CellSize

	// Floor
	for col := 0; col < region.Cols; col++ {
		s.Enqueue(SpawnSolid{
			Region:   MainRegion,
			Position: region.IndexToTranslationUnchecked(col),
			Color:    cfg.Derived.SolidColor,
		})
	}

	width := cfg.Derived.WorldW32 / 3
	height := cfg.Derived.WorldH32 / 2
	base := systems.Vec2{X: region.Origin.X + cell, Y: region.Origin.Y + cell}

	switch s.mode {
	case ModeSPH:
		spacing := float32(cfg.Particles.Spacing)
		jitter := spacing * 0.05
		for y := base.Y; y < base.Y+height; y += spacing {
			for x := base.X; x < base.X+width; x += spacing {
				p := systems.Vec2{
					X: x + (rng.Float32()*2-1)*jitter,
					Y: y + (rng.Float32()*2-1)*jitter,
				}
				s.Enqueue(SpawnParticle{Position: p})
			}
		}

	case ModeGrid:
		vel := systems.Vec2{X: float32(cfg.Tools.FluidVelX), Y: float32(cfg.Tools.FluidVelY)}
		for y := base.Y; y < base.Y+height; y += cell {
			for x := base.X; x < base.X+width; x += cell {
				s.Enqueue(SpawnFluid{
					Region:   MainRegion,
					Position: systems.Vec2{X: x, Y: y},
					Color:    cfg.Derived.FluidColor,
					Velocity: vel,
				})
			}
		}
	}
}
