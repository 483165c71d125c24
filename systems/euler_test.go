package systems

import (
	"image/color"
	"math"
	"testing"
)

func TestDivergenceUniformField(t *testing.T) {
	g := NewGrid(NewRegion(Vec2{}, 6, 5, 10))
	for i := range g.Velocity {
		g.Velocity[i] = Vec2{X: 3, Y: -2}
	}

	NewEulerSolver(EulerParams{}, nil).ComputeDivergence(g)

	for i := 0; i < g.Len(); i++ {
		col, row := g.Region.ColRow(i)
		interior := col > 0 && col < g.Region.Cols-1 && row > 0 && row < g.Region.Rows-1
		if interior && g.Divergence[i] != 0 {
			t.Errorf("interior cell %d divergence = %v, want 0", i, g.Divergence[i])
		}
	}
}

func TestDivergenceBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		setup func(g *Grid)
		index int
		want  float32
	}{
		{
			name: "missing neighbors read as zero",
			setup: func(g *Grid) {
				for i := range g.Velocity {
					g.Velocity[i] = Vec2{X: 1, Y: 1}
				}
			},
			index: 0,
			want:  2, // right.x - 0 + top.y - 0
		},
		{
			name: "solid neighbor reads as center",
			setup: func(g *Grid) {
				g.MarkSolid(5, color.RGBA{})
				g.Velocity[4] = Vec2{X: 1}
			},
			index: 4,
			want:  1, // right substitutes center.x = 1, left is 0
		},
		{
			name: "solid cell has no divergence",
			setup: func(g *Grid) {
				g.Velocity[3] = Vec2{X: -4}
				g.Velocity[5] = Vec2{X: 4}
				g.MarkSolid(4, color.RGBA{})
			},
			index: 4,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(NewRegion(Vec2{}, 3, 3, 30))
			tt.setup(g)
			NewEulerSolver(EulerParams{}, nil).ComputeDivergence(g)
			if got := g.Divergence[tt.index]; got != tt.want {
				t.Errorf("Divergence[%d] = %v, want %v", tt.index, got, tt.want)
			}
		})
	}
}

func TestRelaxPressureFixedPoint(t *testing.T) {
	g := NewGrid(NewRegion(Vec2{}, 8, 8, 10))
	g.MarkSolid(20, color.RGBA{})
	g.MarkSolid(21, color.RGBA{})

	NewEulerSolver(EulerParams{}, nil).RelaxPressure(g, 30)

	for i, p := range g.Pressure {
		if p != 0 {
			t.Errorf("Pressure[%d] = %v, want 0", i, p)
		}
	}
}

func TestRelaxPressureIsJacobi(t *testing.T) {
	// A single row: top and bottom are missing and substitute the center value.
	g := NewGrid(NewRegion(Vec2{}, 3, 1, 10))
	g.Divergence[1] = 4
	s := NewEulerSolver(EulerParams{}, nil)

	s.RelaxPressure(g, 1)
	want := []float32{0, -1, 0}
	for i := range want {
		if g.Pressure[i] != want[i] {
			t.Fatalf("after 1 iteration Pressure = %v, want %v", g.Pressure, want)
		}
	}

	// Gauss-Seidel would feed the updated left cell into the center cell (-1.5625).
	s.RelaxPressure(g, 1)
	want = []float32{-0.25, -1.5, -0.25}
	for i := range want {
		if g.Pressure[i] != want[i] {
			t.Fatalf("after 2 iterations Pressure = %v, want %v", g.Pressure, want)
		}
	}
}

func TestRelaxPressureSolidNeighbor(t *testing.T) {
	g := NewGrid(NewRegion(Vec2{}, 3, 1, 10))
	g.MarkSolid(2, color.RGBA{})
	g.Pressure[1] = 2
	g.Divergence[1] = 0

	NewEulerSolver(EulerParams{}, nil).RelaxPressure(g, 1)

	// top, bottom, right substitute center (2); left is cell 0 (0)
	if g.Pressure[1] != 1.5 {
		t.Errorf("Pressure[1] = %v, want 1.5", g.Pressure[1])
	}
	if g.Pressure[2] != 0 {
		t.Errorf("solid Pressure[2] = %v, want 0", g.Pressure[2])
	}
}

func TestSubtractGradient(t *testing.T) {
	g := NewGrid(NewRegion(Vec2{}, 3, 3, 10))
	g.Pressure[3] = 1 // left of center
	g.Pressure[5] = 4 // right
	g.Pressure[7] = 2 // top
	g.Pressure[1] = 5 // bottom

	NewEulerSolver(EulerParams{}, nil).SubtractGradient(g)

	want := Vec2{X: -(4 - 1), Y: -(2 - 5)}
	if g.Velocity[4] != want {
		t.Errorf("Velocity[4] = %v, want %v", g.Velocity[4], want)
	}
}

func TestApplyForces(t *testing.T) {
	tests := []struct {
		name    string
		drag    float32
		start   Vec2
		gravity Vec2
		dt      float32
		want    Vec2
	}{
		{"gravity only", 0, Vec2{}, Vec2{Y: -100}, 0.5, Vec2{Y: -50}},
		{"quadratic drag", 0.01, Vec2{X: 10}, Vec2{}, 1, Vec2{X: 9}},
		{"at rest no drag", 0.5, Vec2{}, Vec2{}, 1, Vec2{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(NewRegion(Vec2{}, 2, 1, 10))
			g.Velocity[0] = tt.start
			g.Velocity[1] = tt.start
			g.MarkSolid(1, color.RGBA{})

			s := NewEulerSolver(EulerParams{Drag: tt.drag}, nil)
			s.ApplyForces(g, TickInput{DT: tt.dt, Gravity: tt.gravity})

			if d := g.Velocity[0].Sub(tt.want).Len(); d > 1e-5 {
				t.Errorf("Velocity[0] = %v, want %v", g.Velocity[0], tt.want)
			}
			if g.Velocity[1] != (Vec2{}) {
				t.Errorf("solid cell moved: %v", g.Velocity[1])
			}
		})
	}
}

func TestEulerStepReducesDivergence(t *testing.T) {
	g := NewGrid(NewRegion(Vec2{}, 16, 16, 10))
	// A source in the middle: flow pointing outward from cell (8,8)
	c := 8*16 + 8
	g.Velocity[c+1] = Vec2{X: 5}
	g.Velocity[c-1] = Vec2{X: -5}
	g.Velocity[c+16] = Vec2{Y: 5}
	g.Velocity[c-16] = Vec2{Y: -5}

	s := NewEulerSolver(EulerParams{Iterations: 30, Project: true}, nil)
	s.ComputeDivergence(g)
	before := math.Abs(float64(g.Divergence[c]))

	s.Step(g, TickInput{DT: 1.0 / 60})
	s.ComputeDivergence(g)
	after := math.Abs(float64(g.Divergence[c]))

	if after >= before {
		t.Errorf("divergence at source %v -> %v, want a decrease", before, after)
	}
}

func TestEulerParallelMatchesSerial(t *testing.T) {
	build := func() *Grid {
		g := NewGrid(NewRegion(Vec2{}, 40, 30, 10))
		for i := range g.Velocity {
			g.Velocity[i] = Vec2{X: float32(i%7) - 3, Y: float32(i%5) - 2}
		}
		for i := 100; i < 140; i++ {
			g.MarkSolid(i, color.RGBA{})
		}
		return g
	}
	params := EulerParams{Iterations: 30, Drag: 0.01, Project: true}
	in := TickInput{DT: 1.0 / 60, Gravity: Vec2{Y: -100}}

	serial := build()
	NewEulerSolver(params, nil).Step(serial, in)

	pool := NewWorkerPool(1)
	defer pool.Stop()
	parallel := build()
	NewEulerSolver(params, pool).Step(parallel, in)

	for i := range serial.Pressure {
		if serial.Pressure[i] != parallel.Pressure[i] || serial.Velocity[i] != parallel.Velocity[i] {
			t.Fatalf("cell %d differs: serial p=%v v=%v, parallel p=%v v=%v",
				i, serial.Pressure[i], serial.Velocity[i], parallel.Pressure[i], parallel.Velocity[i])
		}
	}
}

func TestEulerStats(t *testing.T) {
	g := NewGrid(NewRegion(Vec2{}, 2, 2, 10))
	g.Divergence[0] = 1
	g.Divergence[1] = -3
	g.Pressure[0] = 2
	g.Pressure[1] = 4
	g.Velocity[0] = Vec2{X: 2}
	g.MarkSolid(3, color.RGBA{})

	st := NewEulerSolver(EulerParams{}, nil).Stats(g)

	if st.FluidCells != 3 {
		t.Errorf("FluidCells = %d, want 3", st.FluidCells)
	}
	if st.MaxDivergence != 3 {
		t.Errorf("MaxDivergence = %v, want 3", st.MaxDivergence)
	}
	if st.MeanAbsDivergence != 1 {
		t.Errorf("MeanAbsDivergence = %v, want 1", st.MeanAbsDivergence)
	}
	if st.MeanPressure != 2 {
		t.Errorf("MeanPressure = %v, want 2", st.MeanPressure)
	}
	if st.KineticEnergy != 2 {
		t.Errorf("KineticEnergy = %v, want 2", st.KineticEnergy)
	}
}
