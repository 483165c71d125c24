package sim

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fluidsand/components"
	"github.com/pthm-cable/fluidsand/systems"
)

// particleScratch holds per-tick buffers for the particle passes.
type particleScratch struct {
	ents      []ecs.Entity
	sensors   []ecs.Entity
	ps        []systems.SPHParticle
	neighbors [][]int32
	index     map[ecs.Entity]int32

	found   []systems.Neighbor
	orphans []ecs.Entity
}

// spawnParticle creates a particle entity and its density sensor.
// Positions outside the main region or inside an obstacle are refused.
func (s *Sim) spawnParticle(p systems.Vec2, pinned bool) (ecs.Entity, bool) {
	g := s.grids[MainRegion]
	if !g.Region.Contains(p) {
		slog.Debug("spawn particle: outside region", "x", p.X, "y", p.Y)
		return ecs.Entity{}, false
	}
	if g.IsSolidAt(p) {
		slog.Debug("spawn particle: inside obstacle", "x", p.X, "y", p.Y)
		return ecs.Entity{}, false
	}
	if limit := s.cfg.Particles.MaxCount; limit > 0 && s.particleCount >= limit {
		slog.Debug("spawn particle: particle limit reached", "limit", limit)
		return ecs.Entity{}, false
	}

	pos := components.Position{X: p.X, Y: p.Y}
	vel := components.Velocity{}
	acc := components.Acceleration{}
	dens := components.Density{Rho: s.sph.Params().DensityFloor}
	part := components.Particle{
		Radius: float32(s.cfg.Particles.Radius),
		Pinned: pinned,
	}
	e := s.particleMap.NewEntity(&pos, &vel, &acc, &dens, &part)

	sensorPos := pos
	sensor := components.Sensor{Radius: s.sph.Params().H, Owner: e}
	overlaps := components.Overlaps{}
	se := s.sensorMap.NewEntity(&sensorPos, &sensor, &overlaps)

	_, _, _, _, pp := s.particleMap.Get(e)
	pp.Sensor = se

	s.particleCount++
	return e, true
}

// despawnParticle removes a particle together with its sensor.
// Unknown or already removed entities are ignored.
func (s *Sim) despawnParticle(e ecs.Entity) bool {
	if !s.world.Alive(e) || !s.partMap.Has(e) {
		slog.Debug("despawn particle: not a live particle", "entity", e)
		return false
	}
	if sensor := s.partMap.Get(e).Sensor; s.world.Alive(sensor) {
		s.world.RemoveEntity(sensor)
	}
	s.world.RemoveEntity(e)
	s.particleCount--
	return true
}

// particlesNear collects particles within radius of p.
func (s *Sim) particlesNear(p systems.Vec2, radius float32) []ecs.Entity {
	var out []ecs.Entity
	rSq := radius * radius
	query := s.particleFilter.Query()
	for query.Next() {
		pos, _, _, _, _ := query.Get()
		d := systems.Vec2{X: pos.X, Y: pos.Y}.Sub(p)
		if d.LenSq() <= rSq {
			out = append(out, query.Entity())
		}
	}
	return out
}

// broadPhase rebuilds the spatial hash and fills every sensor's overlap set.
// A sensor overlaps a particle when the sensor circle and the particle's
// collider circle intersect. Sensors whose owner is gone are removed.
func (s *Sim) broadPhase() {
	s.spatial.Clear()
	query := s.particleFilter.Query()
	for query.Next() {
		pos, _, _, _, _ := query.Get()
		s.spatial.Insert(query.Entity(), pos.X, pos.Y)
	}

	colliderRadius := float32(s.cfg.Particles.Radius)
	orphans := s.scratch.orphans[:0]

	sq := s.sensorFilter.Query()
	for sq.Next() {
		pos, sensor, overlaps := sq.Get()
		overlaps.Entities = overlaps.Entities[:0]

		if !s.world.Alive(sensor.Owner) {
			orphans = append(orphans, sq.Entity())
			continue
		}

		// Sensors ride on their particle
		*pos = *s.posMap.Get(sensor.Owner)

		s.scratch.found = s.spatial.QueryRadiusInto(s.scratch.found[:0],
			pos.X, pos.Y, sensor.Radius+colliderRadius, sensor.Owner, s.posMap)
		for _, n := range s.scratch.found {
			overlaps.Entities = append(overlaps.Entities, n.E)
		}
	}

	for _, e := range orphans {
		slog.Debug("removing orphaned sensor", "entity", e)
		s.world.RemoveEntity(e)
	}
	s.scratch.orphans = orphans[:0]
}

// stepParticles snapshots every particle into a dense slice, resolves sensor
// overlap sets to slice indices, runs the solver and writes the results back.
// A particle without a live sensor is logged and skipped for the tick.
func (s *Sim) stepParticles() systems.SPHStats {
	sc := &s.scratch
	sc.ents = sc.ents[:0]
	sc.sensors = sc.sensors[:0]
	sc.ps = sc.ps[:0]
	if sc.index == nil {
		sc.index = make(map[ecs.Entity]int32)
	}
	clear(sc.index)

	query := s.particleFilter.Query()
	for query.Next() {
		pos, vel, acc, dens, part := query.Get()
		e := query.Entity()
		sc.index[e] = int32(len(sc.ps))
		sc.ents = append(sc.ents, e)
		sc.sensors = append(sc.sensors, part.Sensor)
		sc.ps = append(sc.ps, systems.SPHParticle{
			Pos:      systems.Vec2{X: pos.X, Y: pos.Y},
			Vel:      systems.Vec2{X: vel.X, Y: vel.Y},
			Acc:      systems.Vec2{X: acc.X, Y: acc.Y},
			Rho:      dens.Rho,
			Pressure: dens.Pressure,
			Pinned:   part.Pinned,
		})
	}

	n := len(sc.ps)
	for len(sc.neighbors) < n {
		sc.neighbors = append(sc.neighbors, nil)
	}
	nbrs := sc.neighbors[:n]

	for i, sensor := range sc.sensors {
		list := nbrs[i][:0]
		if !s.world.Alive(sensor) || !s.overlapsMap.Has(sensor) {
			slog.Error("particle has no density sensor", "entity", sc.ents[i], "sensor", sensor)
			sc.ps[i].Skip = true
			nbrs[i] = list
			continue
		}
		for _, e := range s.overlapsMap.Get(sensor).Entities {
			if j, ok := sc.index[e]; ok {
				list = append(list, j)
			}
		}
		nbrs[i] = list
	}

	stats := s.sph.Step(sc.ps, nbrs, s.input)

	for i, e := range sc.ents {
		p := &sc.ps[i]
		if p.Skip {
			continue
		}
		_, vel, acc, dens, _ := s.particleMap.Get(e)
		vel.X, vel.Y = p.Vel.X, p.Vel.Y
		acc.X, acc.Y = p.Acc.X, p.Acc.Y
		dens.Rho = p.Rho
		dens.Pressure = p.Pressure
	}

	return stats
}
