package telemetry

import "math"

// GridSample is the grid state handed to the collector after an Euler tick.
type GridSample struct {
	FluidCells    int
	SolidCells    int
	MaxDivergence float64
	MeanPressure  float64
	KineticEnergy float64
}

// ParticleSample is the particle state handed to the collector at flush time.
type ParticleSample struct {
	Densities []float64 // One entry per updated particle
	MaxSpeed  float64
}

// Collector accumulates per-tick observations over fixed windows of simulated
// time and produces a WindowStats per window.
type Collector struct {
	windowTicks int64
	dt          float32

	windowStart int64
	skipped     int
	maxDiv      float64
	grid        GridSample
}

// NewCollector creates a collector.
// windowSec is the window length in simulated seconds, dt the seconds per tick.
func NewCollector(windowSec float64, dt float32) *Collector {
	ticks := int64(math.Round(windowSec / float64(dt)))
	if ticks < 1 {
		ticks = 1
	}
	return &Collector{windowTicks: ticks, dt: dt}
}

// RecordSkipped adds particle updates that were skipped this tick.
func (c *Collector) RecordSkipped(n int) {
	c.skipped += n
}

// RecordGrid stores the latest grid sample and tracks the window's peak divergence.
func (c *Collector) RecordGrid(g GridSample) {
	c.grid = g
	if g.MaxDivergence > c.maxDiv {
		c.maxDiv = g.MaxDivergence
	}
}

// ShouldFlush reports whether the current window is complete.
func (c *Collector) ShouldFlush(tick int64) bool {
	return tick-c.windowStart >= c.windowTicks
}

// Flush produces the stats for the window ending at tick and starts a new one.
func (c *Collector) Flush(tick int64, mode string, particles int, ps ParticleSample) WindowStats {
	d := Describe(ps.Densities)

	stats := WindowStats{
		WindowStartTick: c.windowStart,
		WindowEndTick:   tick,
		SimTimeSec:      float64(tick) * float64(c.dt),
		Mode:            mode,

		Particles:   particles,
		Skipped:     c.skipped,
		DensityMean: d.Mean,
		DensityStd:  d.Std,
		DensityP10:  d.P10,
		DensityP50:  d.P50,
		DensityP90:  d.P90,
		MaxSpeed:    ps.MaxSpeed,

		FluidCells:    c.grid.FluidCells,
		SolidCells:    c.grid.SolidCells,
		MaxDivergence: c.maxDiv,
		MeanPressure:  c.grid.MeanPressure,
		KineticEnergy: c.grid.KineticEnergy,
	}

	c.windowStart = tick
	c.skipped = 0
	c.maxDiv = 0

	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int64 {
	return c.windowTicks
}
