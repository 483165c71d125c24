package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidsand/sim"
	"github.com/pthm-cable/fluidsand/systems"
	"github.com/pthm-cable/fluidsand/tools"
	"github.com/pthm-cable/fluidsand/ui"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyE) {
		g.editor.Toggle()
	}
	if g.editor.Enabled {
		for i, key := range []int32{rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour} {
			if rl.IsKeyPressed(key) {
				g.editor.Select(tools.All[i])
			}
		}
	}

	if rl.IsKeyPressed(rl.KeyM) {
		g.toggleMode()
	}
	if rl.IsKeyPressed(rl.KeyO) {
		g.gridRenderer.Overlay = g.gridRenderer.Overlay.Next()
	}
	if rl.IsKeyPressed(rl.KeyV) {
		g.flowRenderer.Enabled = !g.flowRenderer.Enabled
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyI) {
		g.showInspector = !g.showInspector
	}

	g.handleCameraInput()
	g.handleEditorInput()
}

// toggleMode queues a switch to the other solver.
func (g *Game) toggleMode() {
	next := sim.ModeSPH
	if g.sim.Mode() == sim.ModeSPH {
		next = sim.ModeGrid
	}
	g.sim.Enqueue(sim.SetMode{Mode: next})
}

// handleResize follows window size changes. When the world tracks the
// screen, the main region is rebuilt to the new size.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	if g.cfg.World.Width == 0 && g.cfg.World.Height == 0 {
		g.sim.Enqueue(sim.Resize{Width: w, Height: h})
		g.camera.SetWorld(float32(g.cfg.World.OriginX), float32(g.cfg.World.OriginY), w, h)
	}
	g.camera.Resize(w, h)
	g.initPerfPanel()
	g.inspector = ui.NewInspector(10, int32(h)-180, 240)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	panSpeed := float32(8.0) / g.camera.Zoom

	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1.0 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handleEditorInput turns clicks on the world into commands.
// Clicks over the tool bar belong to the bar.
func (g *Game) handleEditorInput() {
	if !g.editor.Enabled {
		return
	}
	mouse := rl.GetMousePosition()
	if g.toolbar.Contains(mouse.X, mouse.Y) {
		return
	}
	wx, wy := g.camera.ScreenToWorld(mouse.X, mouse.Y)
	if !g.camera.InWorld(wx, wy) {
		return
	}
	at := systems.Vec2{X: wx, Y: wy}

	// Water drops one brush per click; the painting tools follow the cursor
	primary := rl.IsMouseButtonDown(rl.MouseButtonLeft)
	if g.editor.Tool == tools.Water {
		primary = rl.IsMouseButtonPressed(rl.MouseButtonLeft)
	}
	if primary {
		g.sim.Enqueue(g.editor.Apply(at)...)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		g.sim.Enqueue(g.editor.Erase(at)...)
	}
}
