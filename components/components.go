// Package components defines ECS components for the simulation.
package components

import "github.com/mlange-42/ark/ecs"

// Position represents an entity's world position.
type Position struct {
	X, Y float32
}

// Velocity represents an entity's velocity in world units per second.
type Velocity struct {
	X, Y float32
}

// Acceleration holds the acceleration accumulated by the last SPH tick.
type Acceleration struct {
	X, Y float32
}

// Density holds the SPH density estimate and the pressure derived from it.
type Density struct {
	Rho      float32
	Pressure float32
}

// Particle marks an entity as an SPH fluid sample.
// Every particle owns exactly one density sensor entity.
type Particle struct {
	Radius float32    // Collider radius
	Pinned bool       // Obstacle particle: contributes density, never moves
	Sensor ecs.Entity // Child entity carrying the overlap set
}

// Sensor is a circular trigger volume attached to a particle.
type Sensor struct {
	Radius float32
	Owner  ecs.Entity
}

// Overlaps lists the entities whose colliders intersect a sensor.
// Filled by the broad phase before every SPH tick.
type Overlaps struct {
	Entities []ecs.Entity
}
