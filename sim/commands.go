package sim

import (
	"image/color"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fluidsand/systems"
)

// Command is a state change requested from outside the tick.
// Commands are queued by Enqueue and applied in order at the start of the next tick.
type Command interface {
	apply(s *Sim)
}

// SpawnSolid turns the grid cell nearest to Position into an obstacle.
type SpawnSolid struct {
	Region   RegionID
	Position systems.Vec2
	Color    color.RGBA
}

// SpawnFluid paints the grid cell nearest to Position as fluid with an initial velocity.
// Grid mode only.
type SpawnFluid struct {
	Region   RegionID
	Position systems.Vec2
	Color    color.RGBA
	Velocity systems.Vec2
}

// SpawnParticle creates a particle at rest together with its density sensor.
// SPH mode only.
type SpawnParticle struct {
	Position systems.Vec2
	Pinned   bool
}

// DespawnParticle removes a particle and its sensor.
type DespawnParticle struct {
	Entity ecs.Entity
}

// DespawnParticlesNear removes every particle within Radius of Position.
type DespawnParticlesNear struct {
	Position systems.Vec2
	Radius   float32
}

// SetMode switches the solver run by subsequent ticks.
type SetMode struct {
	Mode Mode
}

// Resize rebuilds the main region to cover a new world size.
// The old grid is discarded together with its obstacles.
type Resize struct {
	Width, Height float32
}

// Enqueue queues a command for the next tick. Safe for concurrent use.
func (s *Sim) Enqueue(cmds ...Command) {
	s.mu.Lock()
	s.pending = append(s.pending, cmds...)
	s.mu.Unlock()
}

// applyCommands drains the queue. Runs at the start of a tick, before any solver pass.
func (s *Sim) applyCommands() {
	s.mu.Lock()
	cmds := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, c := range cmds {
		c.apply(s)
	}
}

func (c SpawnSolid) apply(s *Sim) {
	g := s.Grid(c.Region)
	if g == nil {
		slog.Debug("spawn solid: unknown region", "region", c.Region)
		return
	}
	if !g.Region.Contains(c.Position) {
		slog.Debug("spawn solid: outside region", "x", c.Position.X, "y", c.Position.Y)
		return
	}
	g.MarkSolidAt(c.Position, c.Color)
}

func (c SpawnFluid) apply(s *Sim) {
	if s.mode != ModeGrid {
		slog.Debug("spawn fluid: not in grid mode", "mode", s.mode)
		return
	}
	g := s.Grid(c.Region)
	if g == nil {
		slog.Debug("spawn fluid: unknown region", "region", c.Region)
		return
	}
	if !g.SetFluid(c.Position, c.Color, c.Velocity) {
		slog.Debug("spawn fluid: outside region or solid", "x", c.Position.X, "y", c.Position.Y)
	}
}

func (c SpawnParticle) apply(s *Sim) {
	if s.mode != ModeSPH {
		slog.Debug("spawn particle: not in sph mode", "mode", s.mode)
		return
	}
	s.spawnParticle(c.Position, c.Pinned)
}

func (c DespawnParticle) apply(s *Sim) {
	s.despawnParticle(c.Entity)
}

func (c DespawnParticlesNear) apply(s *Sim) {
	for _, e := range s.particlesNear(c.Position, c.Radius) {
		s.despawnParticle(e)
	}
}

func (c SetMode) apply(s *Sim) {
	if !c.Mode.Valid() {
		slog.Debug("set mode: unknown mode", "mode", c.Mode)
		return
	}
	if c.Mode != s.mode {
		slog.Info("solver mode changed", "from", s.mode, "to", c.Mode, "tick", s.tick)
	}
	s.mode = c.Mode
}

func (c Resize) apply(s *Sim) {
	cols, rows, ok := s.gridSize(c.Width, c.Height)
	if !ok {
		slog.Debug("resize: empty, non-finite or over cell limit",
			"width", c.Width, "height", c.Height, "limit", s.cfg.World.MaxCells)
		return
	}
	s.rebuildWorld(c.Width, c.Height, cols, rows)
	slog.Info("world resized", "width", c.Width, "height", c.Height, "cols", cols, "rows", rows)
}
