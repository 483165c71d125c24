package game

import rl "github.com/gen2brain/raylib-go/raylib"

// Update handles input and runs the ticks owed for the elapsed frame time.
func (g *Game) Update() {
	g.handleInput()

	g.sim.Perf().RecordFrame()
	ticks := g.stepper.Advance(float64(rl.GetFrameTime()))
	if g.paused {
		return
	}
	for i := 0; i < ticks*g.stepsPerUpdate; i++ {
		g.sim.Step()
	}
}

// UpdateHeadless runs stepsPerUpdate ticks without touching raylib.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.sim.Step()
	}
}
