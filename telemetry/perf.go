package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase names for the simulation tick.
const (
	PhaseCommands   = "commands"
	PhaseBroadPhase = "broadphase"
	PhaseSPH        = "sph"
	PhaseIntegrate  = "integrate"
	PhaseEuler      = "euler"
	PhaseTelemetry  = "telemetry"
)

// Phases lists the tick phases in execution order.
var Phases = []string{PhaseCommands, PhaseBroadPhase, PhaseSPH, PhaseIntegrate, PhaseEuler, PhaseTelemetry}

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	TickDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks tick timings over a ring of the most recent ticks.
type PerfCollector struct {
	windowSize  int
	samples     []PerfSample
	writeIndex  int
	sampleCount int

	current    map[string]time.Duration
	tickStart  time.Time
	phaseStart time.Time
	phase      string

	// Frame timing (graphics mode)
	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize: windowSize,
		samples:    make([]PerfSample, windowSize),
		current:    make(map[string]time.Duration),
	}
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = make(map[string]time.Duration)
	p.phase = ""
}

// StartPhase closes the running phase, if any, and opens the next one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.phase != "" {
		p.current[p.phase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.phase = phase
}

// EndTick closes the last phase and stores the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	if p.phase != "" {
		p.current[p.phase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		TickDuration: now.Sub(p.tickStart),
		Phases:       p.current,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.phase = ""
}

// RecordFrame records the time since the previous rendered frame.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats holds aggregated timing over the window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P95TickDuration time.Duration

	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64 // Share of the average tick

	TicksPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the samples currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	out := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frame,
	}
	if p.frame > 0 {
		out.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.sampleCount == 0 {
		return out
	}

	ticks := make([]float64, p.sampleCount)
	phaseSum := make(map[string]time.Duration)
	var total time.Duration
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.TickDuration
		ticks[i] = float64(s.TickDuration)
		for phase, d := range s.Phases {
			phaseSum[phase] += d
		}
	}

	slices.Sort(ticks)
	out.MinTickDuration = time.Duration(ticks[0])
	out.MaxTickDuration = time.Duration(ticks[len(ticks)-1])
	out.P95TickDuration = time.Duration(stat.Quantile(0.95, stat.Empirical, ticks, nil))
	out.AvgTickDuration = total / time.Duration(p.sampleCount)

	for phase, sum := range phaseSum {
		avg := sum / time.Duration(p.sampleCount)
		out.PhaseAvg[phase] = avg
		if out.AvgTickDuration > 0 {
			out.PhasePct[phase] = float64(avg) / float64(out.AvgTickDuration) * 100
		}
	}
	if out.AvgTickDuration > 0 {
		out.TicksPerSecond = float64(time.Second) / float64(out.AvgTickDuration)
	}
	return out
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("p95_tick_us", s.P95TickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range sortedKeys(s.PhasePct) {
		attrs = append(attrs, slog.Float64(phase+"_pct", s.PhasePct[phase]))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is the flat perf.csv row.
type PerfStatsCSV struct {
	Tick          int64   `csv:"tick"`
	AvgTickUS     int64   `csv:"avg_tick_us"`
	MinTickUS     int64   `csv:"min_tick_us"`
	MaxTickUS     int64   `csv:"max_tick_us"`
	P95TickUS     int64   `csv:"p95_tick_us"`
	TicksPerSec   float64 `csv:"ticks_per_sec"`
	FPS           float64 `csv:"fps"`
	CommandsPct   float64 `csv:"commands_pct"`
	BroadPhasePct float64 `csv:"broadphase_pct"`
	SPHPct        float64 `csv:"sph_pct"`
	IntegratePct  float64 `csv:"integrate_pct"`
	EulerPct      float64 `csv:"euler_pct"`
	TelemetryPct  float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for tick.
func (s PerfStats) ToCSV(tick int64) PerfStatsCSV {
	return PerfStatsCSV{
		Tick:          tick,
		AvgTickUS:     s.AvgTickDuration.Microseconds(),
		MinTickUS:     s.MinTickDuration.Microseconds(),
		MaxTickUS:     s.MaxTickDuration.Microseconds(),
		P95TickUS:     s.P95TickDuration.Microseconds(),
		TicksPerSec:   s.TicksPerSecond,
		FPS:           s.FPS,
		CommandsPct:   s.PhasePct[PhaseCommands],
		BroadPhasePct: s.PhasePct[PhaseBroadPhase],
		SPHPct:        s.PhasePct[PhaseSPH],
		IntegratePct:  s.PhasePct[PhaseIntegrate],
		EulerPct:      s.PhasePct[PhaseEuler],
		TelemetryPct:  s.PhasePct[PhaseTelemetry],
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
