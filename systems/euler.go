package systems

import (
	"math"

	"gonum.org/v1/gonum/blas/blas32"
)

// EulerParams holds grid solver settings.
type EulerParams struct {
	Iterations int     // Jacobi iterations per tick, fixed rather than convergence-checked
	Drag       float32 // Quadratic drag coefficient
	Project    bool    // Subtract the pressure gradient after relaxation
}

// TickInput holds the per-tick inputs shared by both solvers.
type TickInput struct {
	DT      float32
	Gravity Vec2
}

// EulerStats summarizes the grid after a tick.
type EulerStats struct {
	FluidCells        int
	MaxDivergence     float32
	MeanAbsDivergence float32
	MeanPressure      float32
	KineticEnergy     float32
}

// EulerSolver advances a Grid by one tick: forces, divergence, pressure
// relaxation and gradient subtraction, each a separate parallel pass.
type EulerSolver struct {
	params EulerParams
	pool   *WorkerPool
}

// NewEulerSolver creates a grid solver. A nil pool runs every pass inline.
func NewEulerSolver(params EulerParams, pool *WorkerPool) *EulerSolver {
	return &EulerSolver{params: params, pool: pool}
}

// Params returns the solver settings.
func (s *EulerSolver) Params() EulerParams {
	return s.params
}

// Step runs one full tick on g.
func (s *EulerSolver) Step(g *Grid, in TickInput) EulerStats {
	s.ApplyForces(g, in)
	s.ComputeDivergence(g)
	s.RelaxPressure(g, s.params.Iterations)
	if s.params.Project {
		s.SubtractGradient(g)
	}
	return s.Stats(g)
}

// ApplyForces adds gravity and quadratic drag to every non-solid cell.
func (s *EulerSolver) ApplyForces(g *Grid, in TickInput) {
	dt := in.DT
	drag := s.params.Drag
	s.pool.Run(g.Len(), func(start, end int) {
		for i := start; i < end; i++ {
			if g.Kind[i] == CellSolid {
				continue
			}
			v := g.Velocity[i].Add(in.Gravity.Scale(dt))
			if drag > 0 {
				v = v.Sub(v.Scale(drag * v.Len() * dt))
			}
			g.Velocity[i] = v
		}
	})
}

// ComputeDivergence fills the divergence field from the current velocities.
// Missing neighbors contribute zero velocity; solid neighbors contribute the
// center cell's own velocity. Solid cells keep zero divergence.
func (s *EulerSolver) ComputeDivergence(g *Grid) {
	s.pool.Run(g.Len(), func(start, end int) {
		var near [4]Vec2
		for i := start; i < end; i++ {
			if g.Kind[i] == CellSolid {
				g.Divergence[i] = 0
				continue
			}
			for slot, n := range g.Neighbors[i] {
				switch {
				case n == NoNeighbor:
					near[slot] = Vec2{}
				case g.Kind[n] == CellSolid:
					near[slot] = g.Velocity[i]
				default:
					near[slot] = g.Velocity[n]
				}
			}
			g.Divergence[i] = divergence(near)
		}
	})
}

// RelaxPressure runs Jacobi iterations of the pressure Poisson equation.
// Every iteration reads only the live field and writes only the scratch
// buffer; the buffer is copied back once the whole pass has finished.
func (s *EulerSolver) RelaxPressure(g *Grid, iterations int) {
	n := g.Len()
	if n == 0 {
		return
	}
	live := blas32.Vector{N: n, Inc: 1, Data: g.Pressure}
	next := blas32.Vector{N: n, Inc: 1, Data: g.pressureNext}

	for it := 0; it < iterations; it++ {
		s.pool.Run(n, func(start, end int) {
			for i := start; i < end; i++ {
				if g.Kind[i] == CellSolid {
					g.pressureNext[i] = 0
					continue
				}
				sum := g.Pressure[g.neighborOrSelf(i, SlotTop)] +
					g.Pressure[g.neighborOrSelf(i, SlotLeft)] +
					g.Pressure[g.neighborOrSelf(i, SlotRight)] +
					g.Pressure[g.neighborOrSelf(i, SlotBottom)]
				g.pressureNext[i] = (sum - g.Divergence[i]) / 4
			}
		})
		blas32.Copy(next, live)
	}
}

// SubtractGradient removes the pressure gradient from every fluid velocity.
func (s *EulerSolver) SubtractGradient(g *Grid) {
	s.pool.Run(g.Len(), func(start, end int) {
		var near [4]float32
		for i := start; i < end; i++ {
			if g.Kind[i] == CellSolid {
				continue
			}
			for slot := range near {
				near[slot] = g.Pressure[g.neighborOrSelf(i, slot)]
			}
			g.Velocity[i] = g.Velocity[i].Sub(gradient(near))
		}
	})
}

// Stats summarizes the grid fields.
func (s *EulerSolver) Stats(g *Grid) EulerStats {
	n := g.Len()
	st := EulerStats{FluidCells: n - g.SolidCount()}
	if n == 0 {
		return st
	}

	div := blas32.Vector{N: n, Inc: 1, Data: g.Divergence}
	st.MaxDivergence = float32(math.Abs(float64(g.Divergence[blas32.Iamax(div)])))
	st.MeanAbsDivergence = blas32.Asum(div) / float32(n)

	var pressureSum, energy float32
	for i := 0; i < n; i++ {
		if g.Kind[i] == CellSolid {
			continue
		}
		pressureSum += g.Pressure[i]
		energy += 0.5 * g.Velocity[i].LenSq()
	}
	if st.FluidCells > 0 {
		st.MeanPressure = pressureSum / float32(st.FluidCells)
	}
	st.KineticEnergy = energy

	return st
}

// divergence of a 4-neighborhood ordered top, left, right, bottom.
func divergence(near [4]Vec2) float32 {
	return (near[SlotRight].X - near[SlotLeft].X) + (near[SlotTop].Y - near[SlotBottom].Y)
}

// gradient of a 4-neighborhood ordered top, left, right, bottom.
func gradient(near [4]float32) Vec2 {
	return Vec2{near[SlotRight] - near[SlotLeft], near[SlotTop] - near[SlotBottom]}
}
