package systems

import (
	"math"
	"math/rand"
	"testing"
)

func testSPHParams() SPHParams {
	return SPHParams{
		H:            80,
		Mass:         400,
		GasConstant:  200000,
		RestDensity:  1,
		Viscosity:    200,
		DensityFloor: 0.001,
		MaxPairAccel: 20000,
	}
}

func TestKernelsVanishAtRadius(t *testing.T) {
	k := NewKernels(80, 400)

	tests := []struct {
		name string
		got  float32
	}{
		{"density at H", k.DensityWeight(80 * 80)},
		{"density beyond H", k.DensityWeight(100 * 100)},
		{"spiky at H", k.SpikyGrad(80)},
		{"viscosity at H", k.ViscosityLaplacian(80)},
		{"viscosity beyond H", k.ViscosityLaplacian(81)},
	}
	for _, tt := range tests {
		if tt.got != 0 {
			t.Errorf("%s = %v, want 0", tt.name, tt.got)
		}
	}

	if w0, w1 := k.DensityWeight(0), k.DensityWeight(400); !(w0 > w1 && w1 > 0) {
		t.Errorf("density weight not decreasing: w(0)=%v w(20^2)=%v", w0, w1)
	}
}

func TestIsolatedDensityIsFloor(t *testing.T) {
	s := NewSPHSolver(testSPHParams(), nil)
	ps := []SPHParticle{{Pos: Vec2{X: 5, Y: 5}}}

	s.ComputeDensity(ps, [][]int32{nil})

	if ps[0].Rho != 0.001 {
		t.Errorf("Rho = %v, want floor 0.001", ps[0].Rho)
	}
	floor := float32(0.001)
	wantP := float32(200000) * (floor - 1)
	if ps[0].Pressure != wantP {
		t.Errorf("Pressure = %v, want %v", ps[0].Pressure, wantP)
	}
}

func TestSelfAndDistantNeighborsIgnored(t *testing.T) {
	s := NewSPHSolver(testSPHParams(), nil)
	ps := []SPHParticle{
		{Pos: Vec2{}},
		{Pos: Vec2{X: 500}}, // reported by the broad phase but outside H
	}

	s.ComputeDensity(ps, [][]int32{{0, 1}, {1, 0}})

	for i := range ps {
		if ps[i].Rho != 0.001 {
			t.Errorf("particle %d Rho = %v, want floor", i, ps[i].Rho)
		}
	}
}

func TestSingleParticleTick(t *testing.T) {
	s := NewSPHSolver(testSPHParams(), nil)
	ps := []SPHParticle{{Pos: Vec2{}}}

	st := s.Step(ps, [][]int32{nil}, TickInput{DT: 1.0 / 60})

	if ps[0].Vel != (Vec2{}) {
		t.Errorf("Vel = %v, want (0,0)", ps[0].Vel)
	}
	if ps[0].Rho != 0.001 {
		t.Errorf("Rho = %v, want floor 0.001", ps[0].Rho)
	}
	if st.Particles != 1 || st.Skipped != 0 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestPairAccelerationAntisymmetric(t *testing.T) {
	s := NewSPHSolver(testSPHParams(), nil)

	tests := []struct {
		name string
		a, b SPHParticle
	}{
		{
			name: "compressed, at rest",
			a:    SPHParticle{Pos: Vec2{X: -10}, Rho: 2, Pressure: 5000},
			b:    SPHParticle{Pos: Vec2{X: 10}, Rho: 2, Pressure: 5000},
		},
		{
			name: "stretched, diagonal",
			a:    SPHParticle{Pos: Vec2{X: 3, Y: -4}, Rho: 0.5, Pressure: -1000},
			b:    SPHParticle{Pos: Vec2{X: -3, Y: 4}, Rho: 0.5, Pressure: -1000},
		},
		{
			name: "opposing velocities",
			a:    SPHParticle{Pos: Vec2{Y: 20}, Vel: Vec2{X: 4}, Rho: 1, Pressure: 100},
			b:    SPHParticle{Pos: Vec2{Y: -20}, Vel: Vec2{X: -4}, Rho: 1, Pressure: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ab := s.pairAcceleration(&tt.a, &tt.b)
			ba := s.pairAcceleration(&tt.b, &tt.a)
			if sum := ab.Add(ba); sum.Len() > 1e-3*max(ab.Len(), 1) {
				t.Errorf("a<-b = %v, b<-a = %v, want negations", ab, ba)
			}
		})
	}
}

func TestSymmetricPairScenario(t *testing.T) {
	p := testSPHParams()
	p.RestDensity = 0 // any overlap is compression
	s := NewSPHSolver(p, nil)

	ps := []SPHParticle{
		{Pos: Vec2{X: -15}},
		{Pos: Vec2{X: 15}},
	}
	nbrs := [][]int32{{1}, {0}}

	s.ComputeDensity(ps, nbrs)
	if ps[0].Rho != ps[1].Rho || ps[0].Pressure != ps[1].Pressure {
		t.Fatalf("densities differ: %+v %+v", ps[0], ps[1])
	}
	if ps[0].Pressure <= 0 {
		t.Fatalf("Pressure = %v, want positive", ps[0].Pressure)
	}

	s.ComputeAcceleration(ps, nbrs, Vec2{})
	a0, a1 := ps[0].Acc, ps[1].Acc

	if math.Abs(float64(a0.Len()-a1.Len())) > 1e-3 {
		t.Errorf("|a0| = %v, |a1| = %v, want equal", a0.Len(), a1.Len())
	}
	if a0.Y != 0 || a1.Y != 0 {
		t.Errorf("acceleration leaves the joining line: %v %v", a0, a1)
	}
	if !(a0.X < 0 && a1.X > 0) {
		t.Errorf("pressure should push the pair apart: a0=%v a1=%v", a0, a1)
	}
}

func TestPairAccelerationClamped(t *testing.T) {
	p := testSPHParams()
	p.MaxPairAccel = 50
	s := NewSPHSolver(p, nil)

	a := SPHParticle{Pos: Vec2{}, Rho: 0.001, Pressure: 1e6}
	b := SPHParticle{Pos: Vec2{X: 0.5}, Rho: 0.001, Pressure: 1e6}

	if got := s.pairAcceleration(&a, &b).Len(); got > 50.001 {
		t.Errorf("|pair| = %v, want <= 50", got)
	}
}

func TestCoincidentParticlesStayFinite(t *testing.T) {
	s := NewSPHSolver(testSPHParams(), nil)
	ps := []SPHParticle{{Pos: Vec2{X: 1, Y: 1}}, {Pos: Vec2{X: 1, Y: 1}}}

	s.Step(ps, [][]int32{{1}, {0}}, TickInput{DT: 1.0 / 60, Gravity: Vec2{Y: -100}})

	for i, q := range ps {
		for _, v := range []float32{q.Vel.X, q.Vel.Y, q.Acc.X, q.Acc.Y, q.Rho, q.Pressure} {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				t.Fatalf("particle %d not finite: %+v", i, q)
			}
		}
	}
}

func TestViscosityPullsVelocitiesTogether(t *testing.T) {
	p := testSPHParams()
	p.GasConstant = 0
	s := NewSPHSolver(p, nil)

	ps := []SPHParticle{
		{Pos: Vec2{X: -10}, Vel: Vec2{Y: 10}},
		{Pos: Vec2{X: 10}, Vel: Vec2{Y: -10}},
	}
	s.Step(ps, [][]int32{{1}, {0}}, TickInput{DT: 1.0 / 60})

	if !(ps[0].Vel.Y < 10 && ps[1].Vel.Y > -10) {
		t.Errorf("velocities did not converge: %v %v", ps[0].Vel, ps[1].Vel)
	}
}

func TestPinnedAndSkippedParticles(t *testing.T) {
	s := NewSPHSolver(testSPHParams(), nil)
	ps := []SPHParticle{
		{Pos: Vec2{}, Pinned: true},
		{Pos: Vec2{X: 20}},
		{Pos: Vec2{X: 40}, Vel: Vec2{X: 7}, Rho: 9, Skip: true},
	}
	nbrs := [][]int32{{1, 2}, {0, 2}, {0, 1}}

	st := s.Step(ps, nbrs, TickInput{DT: 1.0 / 60, Gravity: Vec2{Y: -100}})

	if ps[0].Vel != (Vec2{}) || ps[0].Acc != (Vec2{}) {
		t.Errorf("pinned particle moved: %+v", ps[0])
	}
	if ps[0].Rho <= 0.001 {
		t.Errorf("pinned particle density %v, want above floor", ps[0].Rho)
	}
	if ps[2].Vel != (Vec2{X: 7}) || ps[2].Rho != 9 {
		t.Errorf("skipped particle changed: %+v", ps[2])
	}
	if st.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", st.Skipped)
	}
}

func TestSPHParallelMatchesSerial(t *testing.T) {
	build := func() ([]SPHParticle, [][]int32) {
		rng := rand.New(rand.NewSource(7))
		ps := make([]SPHParticle, 300)
		for i := range ps {
			ps[i].Pos = Vec2{X: rng.Float32() * 600, Y: rng.Float32() * 400}
			ps[i].Vel = Vec2{X: rng.Float32()*20 - 10}
		}
		return ps, bruteNeighbors(ps, 90)
	}
	in := TickInput{DT: 1.0 / 60, Gravity: Vec2{Y: -100}}

	serial, nbrs := build()
	NewSPHSolver(testSPHParams(), nil).Step(serial, nbrs, in)

	pool := NewWorkerPool(1)
	defer pool.Stop()
	parallel, nbrs := build()
	NewSPHSolver(testSPHParams(), pool).Step(parallel, nbrs, in)

	for i := range serial {
		if serial[i] != parallel[i] {
			t.Fatalf("particle %d differs: serial %+v parallel %+v", i, serial[i], parallel[i])
		}
	}
}

func bruteNeighbors(ps []SPHParticle, radius float32) [][]int32 {
	out := make([][]int32, len(ps))
	for i := range ps {
		for j := range ps {
			if i != j && ps[i].Pos.Sub(ps[j].Pos).Len() < radius {
				out[i] = append(out[i], int32(j))
			}
		}
	}
	return out
}
