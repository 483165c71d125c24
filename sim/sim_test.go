package sim

import (
	"image/color"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fluidsand/config"
	"github.com/pthm-cable/fluidsand/systems"
	"github.com/pthm-cable/fluidsand/telemetry"
)

func testConfig(t *testing.T, mode Mode) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.Simulation.Mode = string(mode)
	return cfg
}

func newTestSim(t *testing.T, cfg *config.Config) *Sim {
	t.Helper()
	s := New(cfg, Options{})
	t.Cleanup(s.Close)
	return s
}

func particleEntities(s *Sim) []ecs.Entity {
	var out []ecs.Entity
	query := s.particleFilter.Query()
	for query.Next() {
		out = append(out, query.Entity())
	}
	return out
}

func sensorCount(s *Sim) int {
	n := 0
	query := s.sensorFilter.Query()
	for query.Next() {
		n++
	}
	return n
}

func TestCommandsApplyOnNextTick(t *testing.T) {
	s := newTestSim(t, testConfig(t, ModeSPH))

	s.Enqueue(SpawnParticle{Position: systems.Vec2{X: 200, Y: 200}})
	if s.ParticleCount() != 0 {
		t.Fatalf("ParticleCount() = %d before tick, want 0", s.ParticleCount())
	}

	s.Step()
	if s.ParticleCount() != 1 {
		t.Errorf("ParticleCount() = %d after tick, want 1", s.ParticleCount())
	}
	if sensorCount(s) != 1 {
		t.Errorf("sensor count = %d, want 1", sensorCount(s))
	}
	if s.Tick() != 1 {
		t.Errorf("Tick() = %d, want 1", s.Tick())
	}
}

func TestSpawnRefusals(t *testing.T) {
	solidAt := systems.Vec2{X: 301, Y: 301}

	tests := []struct {
		name string
		mode Mode
		cmds []Command
		want int
	}{
		{"outside world", ModeSPH, []Command{SpawnParticle{Position: systems.Vec2{X: -50, Y: 10}}}, 0},
		{"inside obstacle", ModeSPH, []Command{
			SpawnSolid{Region: MainRegion, Position: solidAt},
			SpawnParticle{Position: solidAt},
		}, 0},
		{"grid mode", ModeGrid, []Command{SpawnParticle{Position: systems.Vec2{X: 100, Y: 100}}}, 0},
		{"accepted", ModeSPH, []Command{SpawnParticle{Position: systems.Vec2{X: 100, Y: 100}}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSim(t, testConfig(t, tt.mode))
			s.Enqueue(tt.cmds...)
			s.Step()
			if s.ParticleCount() != tt.want {
				t.Errorf("ParticleCount() = %d, want %d", s.ParticleCount(), tt.want)
			}
		})
	}
}

func TestParticleLimit(t *testing.T) {
	cfg := testConfig(t, ModeSPH)
	cfg.Particles.MaxCount = 2
	s := newTestSim(t, cfg)

	for i := 0; i < 3; i++ {
		s.Enqueue(SpawnParticle{Position: systems.Vec2{X: 100 + float32(i)*200, Y: 300}})
	}
	s.Step()

	if s.ParticleCount() != 2 {
		t.Errorf("ParticleCount() = %d, want 2", s.ParticleCount())
	}
}

func TestSingleParticleAtRest(t *testing.T) {
	cfg := testConfig(t, ModeSPH)
	cfg.Simulation.GravityY = 0
	s := newTestSim(t, cfg)

	s.Enqueue(SpawnParticle{Position: systems.Vec2{X: 640, Y: 360}})
	s.Step()

	snap := s.Snapshot()
	if len(snap.Particles) != 1 {
		t.Fatalf("got %d particles, want 1", len(snap.Particles))
	}
	p := snap.Particles[0]
	if p.VX != 0 || p.VY != 0 {
		t.Errorf("velocity = (%v, %v), want (0, 0)", p.VX, p.VY)
	}
	if p.Density != float32(cfg.SPH.DensityFloor) {
		t.Errorf("density = %v, want floor %v", p.Density, cfg.SPH.DensityFloor)
	}
}

func TestSymmetricPairThroughBroadPhase(t *testing.T) {
	cfg := testConfig(t, ModeSPH)
	cfg.Simulation.GravityY = 0
	s := newTestSim(t, cfg)

	s.Enqueue(
		SpawnParticle{Position: systems.Vec2{X: 600, Y: 360}},
		SpawnParticle{Position: systems.Vec2{X: 640, Y: 360}},
	)
	s.Step()

	snap := s.Snapshot()
	if len(snap.Particles) != 2 {
		t.Fatalf("got %d particles, want 2", len(snap.Particles))
	}
	left, right := snap.Particles[0], snap.Particles[1]
	if left.X > right.X {
		left, right = right, left
	}

	if left.VX == 0 {
		t.Fatal("pair did not interact")
	}
	if math.Abs(float64(left.VX+right.VX)) > 1e-3 {
		t.Errorf("VX = %v and %v, want opposite", left.VX, right.VX)
	}
	if left.VY != 0 || right.VY != 0 {
		t.Errorf("VY = %v and %v, want 0", left.VY, right.VY)
	}
	if math.Abs(float64(left.Density-right.Density)) > 1e-6 {
		t.Errorf("densities %v and %v, want equal", left.Density, right.Density)
	}
}

func TestBroadPhaseOverlaps(t *testing.T) {
	s := newTestSim(t, testConfig(t, ModeSPH))

	s.Enqueue(
		SpawnParticle{Position: systems.Vec2{X: 300, Y: 300}},
		SpawnParticle{Position: systems.Vec2{X: 380, Y: 300}}, // within H + radius
		SpawnParticle{Position: systems.Vec2{X: 600, Y: 300}}, // far
	)
	s.applyCommands()
	s.broadPhase()

	ents := particleEntities(s)
	if len(ents) != 3 {
		t.Fatalf("got %d particles, want 3", len(ents))
	}

	counts := make(map[float32]int)
	for _, e := range ents {
		sensor := s.partMap.Get(e).Sensor
		counts[s.posMap.Get(e).X] = len(s.overlapsMap.Get(sensor).Entities)
	}

	want := map[float32]int{300: 1, 380: 1, 600: 0}
	for x, n := range want {
		if counts[x] != n {
			t.Errorf("particle at x=%v has %d overlaps, want %d", x, counts[x], n)
		}
	}
}

func TestMissingSensorSkipsParticle(t *testing.T) {
	s := newTestSim(t, testConfig(t, ModeSPH))

	s.Enqueue(SpawnParticle{Position: systems.Vec2{X: 640, Y: 360}})
	s.Step()

	e := particleEntities(s)[0]
	s.world.RemoveEntity(s.partMap.Get(e).Sensor)

	_, velBefore, _, densBefore, _ := s.particleMap.Get(e)
	vb, db := *velBefore, *densBefore

	s.Step()

	_, vel, _, dens, _ := s.particleMap.Get(e)
	if *vel != vb || *dens != db {
		t.Errorf("skipped particle updated: vel %+v -> %+v, density %+v -> %+v", vb, *vel, db, *dens)
	}
	if s.LastSPH().Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", s.LastSPH().Skipped)
	}
}

func TestDespawnRemovesSensor(t *testing.T) {
	s := newTestSim(t, testConfig(t, ModeSPH))

	s.Enqueue(
		SpawnParticle{Position: systems.Vec2{X: 200, Y: 200}},
		SpawnParticle{Position: systems.Vec2{X: 800, Y: 200}},
		SpawnParticle{Position: systems.Vec2{X: 810, Y: 210}},
	)
	s.Step()

	var first ecs.Entity
	for _, e := range particleEntities(s) {
		if s.posMap.Get(e).X < 500 {
			first = e
		}
	}
	s.Enqueue(DespawnParticle{Entity: first}, DespawnParticle{Entity: first})
	s.Step()

	if s.ParticleCount() != 2 || sensorCount(s) != 2 {
		t.Fatalf("particles=%d sensors=%d, want 2 and 2", s.ParticleCount(), sensorCount(s))
	}

	s.Enqueue(DespawnParticlesNear{Position: systems.Vec2{X: 805, Y: 190}, Radius: 60})
	s.Step()

	if s.ParticleCount() != 0 || sensorCount(s) != 0 {
		t.Errorf("particles=%d sensors=%d, want 0 and 0", s.ParticleCount(), sensorCount(s))
	}
}

func TestPinnedParticleStays(t *testing.T) {
	s := newTestSim(t, testConfig(t, ModeSPH))

	s.Enqueue(SpawnParticle{Position: systems.Vec2{X: 640, Y: 360}, Pinned: true})
	for i := 0; i < 10; i++ {
		s.Step()
	}

	p := s.Snapshot().Particles[0]
	if p.X != 640 || p.Y != 360 || p.VY != 0 {
		t.Errorf("pinned particle moved: %+v", p)
	}
}

func TestGridModeFluid(t *testing.T) {
	cfg := testConfig(t, ModeGrid)
	s := newTestSim(t, cfg)
	blue := color.RGBA{B: 255, A: 255}

	s.Enqueue(
		SpawnFluid{Region: MainRegion, Position: systems.Vec2{X: 300, Y: 300}, Color: blue, Velocity: systems.Vec2{X: 10}},
		SpawnSolid{Region: 7, Position: systems.Vec2{X: 300, Y: 300}},       // unknown region
		SpawnSolid{Region: MainRegion, Position: systems.Vec2{X: -5, Y: -5}}, // outside
	)
	s.Step()

	g := s.Grid(MainRegion)
	c, ok := g.CellAt(systems.Vec2{X: 300, Y: 300})
	if !ok || c.Kind != systems.CellFluid || c.Color != blue {
		t.Fatalf("cell = %+v, want painted fluid", c)
	}
	if c.Velocity == (systems.Vec2{X: 10}) {
		t.Errorf("velocity %v not advanced", c.Velocity)
	}
	if g.SolidCount() != 0 {
		t.Errorf("SolidCount() = %d, want 0", g.SolidCount())
	}
}

func TestSpawnFluidRefusedInSPHMode(t *testing.T) {
	s := newTestSim(t, testConfig(t, ModeSPH))
	s.Enqueue(SpawnFluid{Region: MainRegion, Position: systems.Vec2{X: 300, Y: 300}})
	s.Step()

	c, _ := s.Grid(MainRegion).CellAt(systems.Vec2{X: 300, Y: 300})
	if c.Kind != systems.CellOpen {
		t.Errorf("Kind = %v, want open", c.Kind)
	}
}

func TestResizeDropsObstacles(t *testing.T) {
	s := newTestSim(t, testConfig(t, ModeGrid))

	s.Enqueue(SpawnSolid{Region: MainRegion, Position: systems.Vec2{X: 60, Y: 60}})
	s.Step()
	if s.Grid(MainRegion).SolidCount() != 1 {
		t.Fatalf("SolidCount() = %d, want 1", s.Grid(MainRegion).SolidCount())
	}

	s.Enqueue(Resize{Width: 300, Height: 150})
	s.Step()

	g := s.Grid(MainRegion)
	if g.SolidCount() != 0 {
		t.Errorf("SolidCount() = %d after resize, want 0", g.SolidCount())
	}
	if g.Region.Cols != 10 || g.Region.Rows != 5 {
		t.Errorf("region = %dx%d, want 10x5", g.Region.Cols, g.Region.Rows)
	}
}

func TestResizeRejectsOversized(t *testing.T) {
	tests := []struct {
		name          string
		width, height float32
		wantCols      int
		wantRows      int
	}{
		{"huge", 1e20, 1e20, 43, 24},
		{"million square", 1e6, 1e6, 43, 24},
		{"infinite", float32(math.Inf(1)), 100, 43, 24},
		{"nan", float32(math.NaN()), 100, 43, 24},
		{"zero", 0, 100, 43, 24},
		{"negative", -30, 100, 43, 24},
		{"at limit", 300, 300, 10, 10},
		{"one row over limit", 300, 330, 43, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, ModeSPH)
			cfg.World.MaxCells = 100
			s := newTestSim(t, cfg)

			s.Enqueue(Resize{Width: tt.width, Height: tt.height})
			s.Step()

			r := s.Grid(MainRegion).Region
			if r.Cols != tt.wantCols || r.Rows != tt.wantRows {
				t.Errorf("region = %dx%d, want %dx%d", r.Cols, r.Rows, tt.wantCols, tt.wantRows)
			}
		})
	}
}

func TestSetMode(t *testing.T) {
	s := newTestSim(t, testConfig(t, ModeGrid))

	s.Enqueue(SetMode{Mode: "lattice"})
	s.Step()
	if s.Mode() != ModeGrid {
		t.Errorf("Mode() = %v after invalid switch, want grid", s.Mode())
	}

	s.Enqueue(SetMode{Mode: ModeSPH}, SpawnParticle{Position: systems.Vec2{X: 100, Y: 100}})
	s.Step()
	if s.Mode() != ModeSPH || s.ParticleCount() != 1 {
		t.Errorf("mode=%v particles=%d, want sph and 1", s.Mode(), s.ParticleCount())
	}
}

func TestAddRegion(t *testing.T) {
	s := newTestSim(t, testConfig(t, ModeGrid))

	id := s.AddRegion(systems.NewRegion(systems.Vec2{X: 2000, Y: 0}, 3, 3, 30))
	s.Enqueue(SpawnSolid{Region: id, Position: systems.Vec2{X: 2031, Y: 31}})
	s.Step()

	if !s.Grid(id).IsSolid(4) {
		t.Error("center cell of added region not solid")
	}
	if s.Grid(MainRegion).SolidCount() != 0 {
		t.Error("main region affected by command for added region")
	}

	big := s.AddRegion(systems.NewRegion(systems.Vec2{}, 1<<20, 1<<20, 30))
	if big != NoRegion || s.Grid(big) != nil {
		t.Errorf("AddRegion over limit = %d, want NoRegion", big)
	}
}

type countingPublisher struct {
	ticks []int64
}

func (p *countingPublisher) Publish(snap *Snapshot) {
	p.ticks = append(p.ticks, snap.Tick)
}

func TestPublishInterval(t *testing.T) {
	pub := &countingPublisher{}
	s := New(testConfig(t, ModeGrid), Options{Publisher: pub, Interval: 3})
	defer s.Close()

	for i := 0; i < 10; i++ {
		s.Step()
	}

	want := []int64{3, 6, 9}
	if len(pub.ticks) != len(want) {
		t.Fatalf("published at %v, want %v", pub.ticks, want)
	}
	for i := range want {
		if pub.ticks[i] != want[i] {
			t.Errorf("published at %v, want %v", pub.ticks, want)
		}
	}
}

func TestTelemetryOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := telemetry.NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	cfg := testConfig(t, ModeSPH)
	cfg.Telemetry.StatsWindow = 0.05 // 3 ticks
	s := New(cfg, Options{Output: om})
	s.Enqueue(SpawnParticle{Position: systems.Vec2{X: 300, Y: 300}})
	for i := 0; i < 7; i++ {
		s.Step()
	}
	s.Close()
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("reading telemetry.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 { // header + 2 windows
		t.Fatalf("telemetry.csv has %d lines, want 3:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "window_end,sim_time,mode,particles") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "3,") {
		t.Errorf("first window row %q, want window_end 3", lines[1])
	}
}

func TestPopulateDamBreak(t *testing.T) {
	for _, mode := range []Mode{ModeSPH, ModeGrid} {
		t.Run(string(mode), func(t *testing.T) {
			s := newTestSim(t, testConfig(t, mode))
			PopulateDamBreak(s, rand.New(rand.NewSource(1)))
			s.Step()

			g := s.Grid(MainRegion)
			if g.SolidCount() != g.Region.Cols {
				t.Errorf("SolidCount() = %d, want a full floor of %d", g.SolidCount(), g.Region.Cols)
			}
			switch mode {
			case ModeSPH:
				if s.ParticleCount() == 0 {
					t.Error("no particles spawned")
				}
			case ModeGrid:
				if c, _ := g.CellAt(systems.Vec2{X: 60, Y: 60}); c.Kind != systems.CellFluid {
					t.Errorf("cell at (60,60) kind %v, want fluid", c.Kind)
				}
			}
		})
	}
}
