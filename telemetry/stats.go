package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated fluid statistics for one window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Mode            string  `csv:"mode"`

	// Particles, sampled at window end
	Particles   int     `csv:"particles"`
	Skipped     int     `csv:"skipped"` // Particle updates skipped during the window
	DensityMean float64 `csv:"density_mean"`
	DensityStd  float64 `csv:"density_std"`
	DensityP10  float64 `csv:"density_p10"`
	DensityP50  float64 `csv:"density_p50"`
	DensityP90  float64 `csv:"density_p90"`
	MaxSpeed    float64 `csv:"max_speed"`

	// Grid, sampled at window end except MaxDivergence
	FluidCells    int     `csv:"fluid_cells"`
	SolidCells    int     `csv:"solid_cells"`
	MaxDivergence float64 `csv:"max_divergence"` // Largest seen during the window
	MeanPressure  float64 `csv:"mean_pressure"`
	KineticEnergy float64 `csv:"kinetic_energy"`
}

// Distribution summarizes a sample of values.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// Describe computes the mean, standard deviation and empirical deciles of values.
// An empty sample yields the zero Distribution.
func Describe(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	d := Distribution{
		P10: stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50: stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90: stat.Quantile(0.90, stat.Empirical, sorted, nil),
	}
	if len(sorted) > 1 {
		d.Mean, d.Std = stat.MeanStdDev(sorted, nil)
	} else {
		d.Mean = sorted[0]
	}
	return d
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.String("mode", s.Mode),
		slog.Int("particles", s.Particles),
		slog.Int("skipped", s.Skipped),
		slog.Float64("density_mean", s.DensityMean),
		slog.Float64("density_p50", s.DensityP50),
		slog.Float64("max_speed", s.MaxSpeed),
		slog.Int("fluid_cells", s.FluidCells),
		slog.Int("solid_cells", s.SolidCells),
		slog.Float64("max_divergence", s.MaxDivergence),
		slog.Float64("mean_pressure", s.MeanPressure),
		slog.Float64("kinetic_energy", s.KineticEnergy),
	)
}

// LogStats logs the window at info level.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
