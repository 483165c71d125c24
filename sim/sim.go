// Package sim owns the fluid simulation state and advances it one fixed tick at a time.
// It has no graphics dependencies; the game package drives it from the window loop
// and main drives it headless.
package sim

import (
	"log/slog"
	"math"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fluidsand/components"
	"github.com/pthm-cable/fluidsand/config"
	"github.com/pthm-cable/fluidsand/systems"
	"github.com/pthm-cable/fluidsand/telemetry"
)

// Mode selects which solver a tick runs.
type Mode string

const (
	ModeGrid Mode = "grid" // Eulerian grid solver
	ModeSPH  Mode = "sph"  // Particle solver
)

// Valid reports whether m names a solver.
func (m Mode) Valid() bool {
	return m == ModeGrid || m == ModeSPH
}

// RegionID addresses one grid owned by the simulation.
type RegionID int

const (
	MainRegion RegionID = 0  // Region created from the world config
	NoRegion   RegionID = -1 // Returned when a region cannot be added
)

// Publisher receives snapshots at the configured tick interval.
type Publisher interface {
	Publish(snap *Snapshot)
}

// Options configures a Sim beyond the config file.
type Options struct {
	LogStats  bool                     // Log window stats through slog
	Output    *telemetry.OutputManager // Nil disables CSV output
	Publisher Publisher                // Nil disables streaming
	Interval  int                      // Ticks between published snapshots (0 = config)
}

// Sim holds the complete simulation state.
type Sim struct {
	cfg   *config.Config
	world *ecs.World
	mode  Mode

	// Grids, indexed by RegionID
	grids []*systems.Grid

	pool    *systems.WorkerPool
	euler   *systems.EulerSolver
	sph     *systems.SPHSolver
	physics *systems.PhysicsSystem
	spatial *systems.SpatialGrid

	// Particle storage
	particleMap    *ecs.Map5[components.Position, components.Velocity, components.Acceleration, components.Density, components.Particle]
	particleFilter *ecs.Filter5[components.Position, components.Velocity, components.Acceleration, components.Density, components.Particle]
	sensorMap      *ecs.Map3[components.Position, components.Sensor, components.Overlaps]
	sensorFilter   *ecs.Filter3[components.Position, components.Sensor, components.Overlaps]
	posMap         *ecs.Map[components.Position]
	partMap        *ecs.Map[components.Particle]
	overlapsMap    *ecs.Map[components.Overlaps]
	particleCount  int

	// Per-tick scratch, reused across ticks
	scratch particleScratch

	// Commands waiting for the next tick
	mu      sync.Mutex
	pending []Command

	tick  int64
	input systems.TickInput

	// Last solver summaries
	lastEuler systems.EulerStats
	lastSPH   systems.SPHStats

	// Telemetry
	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager
	logStats  bool

	publisher Publisher
	interval  int
}

// New creates a simulation from cfg with an empty main region.
func New(cfg *config.Config, opts Options) *Sim {
	world := ecs.NewWorld()
	pool := systems.NewWorkerPool(cfg.Simulation.ParallelCutoff)

	s := &Sim{
		cfg:   cfg,
		world: world,
		mode:  Mode(cfg.Simulation.Mode),
		pool:  pool,
		euler: systems.NewEulerSolver(systems.EulerParams{
			Iterations: cfg.Euler.Iterations,
			Drag:       float32(cfg.Euler.Drag),
			Project:    cfg.Euler.Project,
		}, pool),
		sph: systems.NewSPHSolver(systems.SPHParams{
			H:            float32(cfg.SPH.SmoothingRadius),
			Mass:         float32(cfg.SPH.Mass),
			GasConstant:  float32(cfg.SPH.GasConstant),
			RestDensity:  float32(cfg.SPH.RestDensity),
			Viscosity:    float32(cfg.SPH.Viscosity),
			DensityFloor: float32(cfg.SPH.DensityFloor),
			MaxPairAccel: float32(cfg.SPH.MaxPairAccel),
		}, pool),
		physics: systems.NewPhysicsSystem(world, systems.Bounds{}, float32(cfg.Particles.Restitution)),

		particleMap:    ecs.NewMap5[components.Position, components.Velocity, components.Acceleration, components.Density, components.Particle](world),
		particleFilter: ecs.NewFilter5[components.Position, components.Velocity, components.Acceleration, components.Density, components.Particle](world),
		sensorMap:      ecs.NewMap3[components.Position, components.Sensor, components.Overlaps](world),
		sensorFilter:   ecs.NewFilter3[components.Position, components.Sensor, components.Overlaps](world),
		posMap:         ecs.NewMap[components.Position](world),
		partMap:        ecs.NewMap[components.Particle](world),
		overlapsMap:    ecs.NewMap[components.Overlaps](world),

		input: systems.TickInput{
			DT:      cfg.Derived.DT32,
			Gravity: systems.Vec2{X: float32(cfg.Simulation.GravityX), Y: float32(cfg.Simulation.GravityY)},
		},

		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		collector: telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Derived.DT32),
		output:    opts.Output,
		logStats:  opts.LogStats,
		publisher: opts.Publisher,
		interval:  opts.Interval,
	}
	if s.interval <= 0 {
		s.interval = cfg.Stream.Interval
	}
	if s.interval <= 0 {
		s.interval = 1
	}

	s.grids = []*systems.Grid{nil}
	s.rebuildWorld(cfg.Derived.WorldW32, cfg.Derived.WorldH32, cfg.Derived.GridCols, cfg.Derived.GridRows)

	return s
}

// gridSize returns the cell counts covering width x height. It reports false
// for sizes that are not finite and positive, or that would exceed world.max_cells.
func (s *Sim) gridSize(width, height float32) (cols, rows int, ok bool) {
	w, h := float64(width), float64(height)
	if !(w > 0 && h > 0) || math.IsInf(w, 1) || math.IsInf(h, 1) {
		return 0, 0, false
	}
	cell := s.cfg.World.CellSize
	c, r := math.Ceil(w/cell), math.Ceil(h/cell)
	if c*r > float64(s.cfg.World.MaxCells) {
		return 0, 0, false
	}
	return int(c), int(r), true
}

// rebuildWorld replaces the main region with a fresh cols x rows grid covering width x height.
// Obstacles and fluid painted into the previous grid are lost.
func (s *Sim) rebuildWorld(width, height float32, cols, rows int) {
	cell := s.cfg.Derived.CellSize32
	origin := systems.Vec2{X: float32(s.cfg.World.OriginX), Y: float32(s.cfg.World.OriginY)}

	g := systems.NewGrid(systems.NewRegion(origin, cols, rows, cell))
	s.grids[MainRegion] = g

	s.physics.SetGrid(g)
	s.physics.SetBounds(systems.Bounds{
		MinX: origin.X,
		MinY: origin.Y,
		MaxX: origin.X + width,
		MaxY: origin.Y + height,
	})

	// Buckets are at least one grid cell wide and match the sensor reach,
	// so a query scans 3x3 buckets
	reach := float32(max(s.cfg.SPH.SmoothingRadius+s.cfg.Particles.Radius, s.cfg.World.CellSize))
	s.spatial = systems.NewSpatialGrid(origin.X, origin.Y, width, height, reach)
}

// AddRegion adds an independent grid and returns its id.
// Extra regions run the grid solver alongside the main region but do not
// collide with particles. A region larger than world.max_cells is refused
// and NoRegion returned.
func (s *Sim) AddRegion(r systems.Region) RegionID {
	if float64(r.Cols)*float64(r.Rows) > float64(s.cfg.World.MaxCells) {
		slog.Debug("add region: over cell limit", "cols", r.Cols, "rows", r.Rows, "limit", s.cfg.World.MaxCells)
		return NoRegion
	}
	s.grids = append(s.grids, systems.NewGrid(r))
	return RegionID(len(s.grids) - 1)
}

// Grid returns the grid for id, or nil if the id is unknown.
func (s *Sim) Grid(id RegionID) *systems.Grid {
	if id < 0 || int(id) >= len(s.grids) {
		return nil
	}
	return s.grids[id]
}

// Step runs one fixed tick.
func (s *Sim) Step() {
	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseCommands)
	s.applyCommands()

	switch s.mode {
	case ModeSPH:
		s.perf.StartPhase(telemetry.PhaseBroadPhase)
		s.broadPhase()

		s.perf.StartPhase(telemetry.PhaseSPH)
		s.lastSPH = s.stepParticles()
		s.collector.RecordSkipped(s.lastSPH.Skipped)

		s.perf.StartPhase(telemetry.PhaseIntegrate)
		s.physics.Update(s.input.DT)

		s.collector.RecordGrid(s.gridSample(systems.EulerStats{}))

	case ModeGrid:
		s.perf.StartPhase(telemetry.PhaseEuler)
		for id, g := range s.grids {
			st := s.euler.Step(g, s.input)
			if RegionID(id) == MainRegion {
				s.lastEuler = st
			}
		}
		s.collector.RecordGrid(s.gridSample(s.lastEuler))
	}

	s.tick++

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()
	s.publish()

	s.perf.EndTick()
}

// Tick returns the number of completed ticks.
func (s *Sim) Tick() int64 {
	return s.tick
}

// Mode returns the active solver.
func (s *Sim) Mode() Mode {
	return s.mode
}

// ParticleCount returns the number of live particles.
func (s *Sim) ParticleCount() int {
	return s.particleCount
}

// LastEuler returns the summary of the most recent grid tick.
func (s *Sim) LastEuler() systems.EulerStats {
	return s.lastEuler
}

// LastSPH returns the summary of the most recent particle tick.
func (s *Sim) LastSPH() systems.SPHStats {
	return s.lastSPH
}

// SPHParams returns the particle solver settings.
func (s *Sim) SPHParams() systems.SPHParams {
	return s.sph.Params()
}

// Perf returns the tick timing collector.
func (s *Sim) Perf() *telemetry.PerfCollector {
	return s.perf
}

// Close stops the worker pool.
func (s *Sim) Close() {
	s.pool.Stop()
	slog.Debug("simulation closed", "tick", s.tick, "particles", s.particleCount)
}
