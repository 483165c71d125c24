package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fluidsand/components"
)

// Bounds represents the simulation box in world coordinates.
type Bounds struct {
	MinX, MinY float32
	MaxX, MaxY float32
}

// PhysicsSystem integrates particle positions from their velocities.
// It stands in for the rigid-body engine: walls and solid cells reflect
// particles, nothing else is resolved.
type PhysicsSystem struct {
	filter      *ecs.Filter3[components.Position, components.Velocity, components.Particle]
	bounds      Bounds
	restitution float32
	grid        *Grid
}

// NewPhysicsSystem creates a new physics system.
func NewPhysicsSystem(w *ecs.World, bounds Bounds, restitution float32) *PhysicsSystem {
	return &PhysicsSystem{
		filter:      ecs.NewFilter3[components.Position, components.Velocity, components.Particle](w),
		bounds:      bounds,
		restitution: restitution,
	}
}

// SetGrid sets the obstacle grid particles collide with. Nil disables solid collisions.
func (s *PhysicsSystem) SetGrid(g *Grid) {
	s.grid = g
}

// SetBounds replaces the simulation box.
func (s *PhysicsSystem) SetBounds(b Bounds) {
	s.bounds = b
}

// Update moves every free particle by velocity * dt.
func (s *PhysicsSystem) Update(dt float32) {
	query := s.filter.Query()
	for query.Next() {
		pos, vel, p := query.Get()
		if p.Pinned {
			continue
		}
		s.step(pos, vel, p.Radius, dt)
	}
}

// step advances one particle, resolving each axis separately so a particle
// sliding along a wall keeps its tangential motion.
func (s *PhysicsSystem) step(pos *components.Position, vel *components.Velocity, radius, dt float32) {
	// X axis
	nx := pos.X + vel.X*dt
	if s.grid != nil && s.grid.IsSolidAt(Vec2{nx, pos.Y}) {
		vel.X *= -s.restitution
	} else {
		pos.X = nx
	}

	// Y axis
	ny := pos.Y + vel.Y*dt
	if s.grid != nil && s.grid.IsSolidAt(Vec2{pos.X, ny}) {
		vel.Y *= -s.restitution
	} else {
		pos.Y = ny
	}

	// Box walls (bounce slightly)
	if pos.X < s.bounds.MinX+radius {
		pos.X = s.bounds.MinX + radius
		if vel.X < 0 {
			vel.X *= -s.restitution
		}
	}
	if pos.X > s.bounds.MaxX-radius {
		pos.X = s.bounds.MaxX - radius
		if vel.X > 0 {
			vel.X *= -s.restitution
		}
	}
	if pos.Y < s.bounds.MinY+radius {
		pos.Y = s.bounds.MinY + radius
		if vel.Y < 0 {
			vel.Y *= -s.restitution
		}
	}
	if pos.Y > s.bounds.MaxY-radius {
		pos.Y = s.bounds.MaxY - radius
		if vel.Y > 0 {
			vel.Y *= -s.restitution
		}
	}
}
