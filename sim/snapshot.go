package sim

import "github.com/pthm-cable/fluidsand/systems"

// Snapshot is the per-tick output read by renderers and the stream server.
// It is a copy; holding it does not block the simulation.
type Snapshot struct {
	Tick      int64              `json:"tick"`
	Mode      Mode               `json:"mode"`
	Grid      *GridSnapshot      `json:"grid,omitempty"`
	Particles []ParticleSnapshot `json:"particles,omitempty"`
}

// GridSnapshot holds the main region's fields in index order.
type GridSnapshot struct {
	Cols       int       `json:"cols"`
	Rows       int       `json:"rows"`
	CellSize   float32   `json:"cell_size"`
	OriginX    float32   `json:"origin_x"`
	OriginY    float32   `json:"origin_y"`
	Kind       []int     `json:"kind"` // 0 open, 1 fluid, 2 solid
	VelX       []float32 `json:"vel_x"`
	VelY       []float32 `json:"vel_y"`
	Pressure   []float32 `json:"pressure"`
	Divergence []float32 `json:"divergence"`
}

// ParticleSnapshot is one particle's state.
type ParticleSnapshot struct {
	X       float32 `json:"x"`
	Y       float32 `json:"y"`
	VX      float32 `json:"vx"`
	VY      float32 `json:"vy"`
	Density float32 `json:"density"`
	Pinned  bool    `json:"pinned,omitempty"`
}

// Snapshot copies the current state. Call between ticks.
func (s *Sim) Snapshot() *Snapshot {
	snap := &Snapshot{
		Tick: s.tick,
		Mode: s.mode,
		Grid: snapshotGrid(s.grids[MainRegion]),
	}

	if s.particleCount > 0 {
		snap.Particles = make([]ParticleSnapshot, 0, s.particleCount)
	}
	query := s.particleFilter.Query()
	for query.Next() {
		pos, vel, _, dens, part := query.Get()
		snap.Particles = append(snap.Particles, ParticleSnapshot{
			X:       pos.X,
			Y:       pos.Y,
			VX:      vel.X,
			VY:      vel.Y,
			Density: dens.Rho,
			Pinned:  part.Pinned,
		})
	}
	return snap
}

func snapshotGrid(g *systems.Grid) *GridSnapshot {
	n := g.Len()
	gs := &GridSnapshot{
		Cols:       g.Region.Cols,
		Rows:       g.Region.Rows,
		CellSize:   g.Region.CellSize,
		OriginX:    g.Region.Origin.X,
		OriginY:    g.Region.Origin.Y,
		Kind:       make([]int, n),
		VelX:       make([]float32, n),
		VelY:       make([]float32, n),
		Pressure:   make([]float32, n),
		Divergence: make([]float32, n),
	}
	for i := 0; i < n; i++ {
		gs.Kind[i] = int(g.Kind[i])
		gs.VelX[i] = g.Velocity[i].X
		gs.VelY[i] = g.Velocity[i].Y
	}
	copy(gs.Pressure, g.Pressure)
	copy(gs.Divergence, g.Divergence)
	return gs
}
