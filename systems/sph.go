package systems

// SPHParams holds particle solver settings.
// Pressure uses the equation of state p = GasConstant * (rho - RestDensity).
type SPHParams struct {
	H            float32 // Smoothing radius, also the neighbor discovery radius
	Mass         float32
	GasConstant  float32
	RestDensity  float32
	Viscosity    float32
	DensityFloor float32 // Baseline density of an isolated particle, > 0
	MaxPairAccel float32 // Upper bound on one neighbor's contribution
}

// SPHParticle is the solver's dense view of one particle for a tick.
type SPHParticle struct {
	Pos      Vec2
	Vel      Vec2
	Acc      Vec2
	Rho      float32
	Pressure float32
	Pinned   bool // Obstacle particle: keeps density and pressure, never integrated
	Skip     bool // No valid neighbor feed this tick: left untouched
}

// SPHStats summarizes the particles after a tick.
type SPHStats struct {
	Particles   int
	Skipped     int
	MeanDensity float32
	MaxDensity  float32
	MaxSpeed    float32
}

// SPHSolver advances particles by one tick in three passes: density and
// pressure, acceleration, then velocity integration. Within a pass each
// particle writes only its own fields, and reads fields finished by an
// earlier pass, so passes are safe to split across workers.
type SPHSolver struct {
	params  SPHParams
	kernels Kernels
	pool    *WorkerPool
}

// NewSPHSolver creates a particle solver. A nil pool runs every pass inline.
func NewSPHSolver(params SPHParams, pool *WorkerPool) *SPHSolver {
	if params.DensityFloor <= 0 {
		params.DensityFloor = 1e-3
	}
	return &SPHSolver{
		params:  params,
		kernels: NewKernels(params.H, params.Mass),
		pool:    pool,
	}
}

// Params returns the solver settings.
func (s *SPHSolver) Params() SPHParams {
	return s.params
}

// Kernels returns the precomputed kernel constants.
func (s *SPHSolver) Kernels() Kernels {
	return s.kernels
}

// Step runs one full tick. neighbors[i] lists indices into ps that overlap
// particle i; entries equal to i are ignored.
func (s *SPHSolver) Step(ps []SPHParticle, neighbors [][]int32, in TickInput) SPHStats {
	s.ComputeDensity(ps, neighbors)
	s.ComputeAcceleration(ps, neighbors, in.Gravity)
	s.Integrate(ps, in.DT)
	return s.Stats(ps)
}

// ComputeDensity estimates density and pressure from neighbor proximity.
func (s *SPHSolver) ComputeDensity(ps []SPHParticle, neighbors [][]int32) {
	k := s.kernels
	floor := s.params.DensityFloor
	gas := s.params.GasConstant
	rest := s.params.RestDensity

	s.pool.Run(len(ps), func(start, end int) {
		for i := start; i < end; i++ {
			p := &ps[i]
			if p.Skip {
				continue
			}
			rho := floor
			for _, j := range neighbors[i] {
				if int(j) == i {
					continue
				}
				rho += k.DensityWeight(ps[j].Pos.Sub(p.Pos).LenSq())
			}
			p.Rho = rho
			p.Pressure = gas * (rho - rest)
		}
	})
}

// ComputeAcceleration accumulates gravity plus pairwise pressure and viscosity terms.
func (s *SPHSolver) ComputeAcceleration(ps []SPHParticle, neighbors [][]int32, gravity Vec2) {
	s.pool.Run(len(ps), func(start, end int) {
		for i := start; i < end; i++ {
			p := &ps[i]
			if p.Skip {
				continue
			}
			if p.Pinned {
				p.Acc = Vec2{}
				continue
			}
			acc := gravity
			for _, j := range neighbors[i] {
				if int(j) == i {
					continue
				}
				acc = acc.Add(s.pairAcceleration(p, &ps[j]))
			}
			p.Acc = acc
		}
	})
}

// pairAcceleration is the acceleration neighbor q imparts on p.
// The result is clamped to MaxPairAccel so near-coincident pairs cannot blow up.
func (s *SPHSolver) pairAcceleration(p, q *SPHParticle) Vec2 {
	k := s.kernels
	d := q.Pos.Sub(p.Pos)
	r := d.Len()
	if r >= k.H {
		return Vec2{}
	}

	// Both densities are floored, never zero
	rhoP := max(p.Rho, s.params.DensityFloor)
	rhoQ := max(q.Rho, s.params.DensityFloor)

	// Pressure pushes p away from q when the pair is compressed
	dir := d.NormalizeOrZero()
	pressMag := k.Mass * (p.Pressure + q.Pressure) / (2 * rhoQ) * k.SpikyGrad(r) / rhoP
	press := dir.Scale(-pressMag)

	// Viscosity pulls p's velocity toward q's
	viscMag := s.params.Viscosity * k.Mass / rhoQ * k.ViscosityLaplacian(r) / rhoP
	visc := q.Vel.Sub(p.Vel).Scale(viscMag)

	pair := press.Add(visc)
	if s.params.MaxPairAccel > 0 {
		pair = pair.ClampLen(s.params.MaxPairAccel)
	}
	return pair
}

// Integrate applies the accumulated acceleration to velocity.
// Position is left to the host integrator.
func (s *SPHSolver) Integrate(ps []SPHParticle, dt float32) {
	s.pool.Run(len(ps), func(start, end int) {
		for i := start; i < end; i++ {
			p := &ps[i]
			if p.Skip || p.Pinned {
				continue
			}
			p.Vel = p.Vel.Add(p.Acc.Scale(dt))
		}
	})
}

// Stats summarizes density and speed over the particles that were updated.
func (s *SPHSolver) Stats(ps []SPHParticle) SPHStats {
	st := SPHStats{Particles: len(ps)}
	var sum float32
	updated := 0
	for i := range ps {
		p := &ps[i]
		if p.Skip {
			st.Skipped++
			continue
		}
		updated++
		sum += p.Rho
		if p.Rho > st.MaxDensity {
			st.MaxDensity = p.Rho
		}
		if sp := p.Vel.Len(); sp > st.MaxSpeed {
			st.MaxSpeed = sp
		}
	}
	if updated > 0 {
		st.MeanDensity = sum / float32(updated)
	}
	return st
}
