package sim

import (
	"log/slog"

	"github.com/pthm-cable/fluidsand/systems"
	"github.com/pthm-cable/fluidsand/telemetry"
)

// gridSample converts the main region's state for the collector.
func (s *Sim) gridSample(st systems.EulerStats) telemetry.GridSample {
	g := s.grids[MainRegion]
	return telemetry.GridSample{
		FluidCells:    g.Len() - g.SolidCount(),
		SolidCells:    g.SolidCount(),
		MaxDivergence: float64(st.MaxDivergence),
		MeanPressure:  float64(st.MeanPressure),
		KineticEnergy: float64(st.KineticEnergy),
	}
}

// particleSample collects the densities and peak speed of every particle
// updated by the last particle tick.
func (s *Sim) particleSample() telemetry.ParticleSample {
	var ps telemetry.ParticleSample
	if s.mode != ModeSPH {
		return ps
	}
	ps.Densities = make([]float64, 0, len(s.scratch.ps))
	for i := range s.scratch.ps {
		p := &s.scratch.ps[i]
		if p.Skip {
			continue
		}
		ps.Densities = append(ps.Densities, float64(p.Rho))
	}
	ps.MaxSpeed = float64(s.lastSPH.MaxSpeed)
	return ps
}

// flushTelemetry closes the stats window when it is due and fans it out to
// the log and the CSV files.
func (s *Sim) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, string(s.mode), s.particleCount, s.particleSample())
	perfStats := s.perf.Stats()

	if s.logStats {
		stats.LogStats()
		slog.Info("perf", "tick", s.tick, "perf", perfStats)
	}

	if s.output != nil {
		if err := s.output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.output.WritePerf(perfStats, s.tick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// publish hands a snapshot to the publisher every interval ticks.
func (s *Sim) publish() {
	if s.publisher == nil || s.tick%int64(s.interval) != 0 {
		return
	}
	s.publisher.Publish(s.Snapshot())
}
