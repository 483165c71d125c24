package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidsand/sim"
	"github.com/pthm-cable/fluidsand/systems"
	"github.com/pthm-cable/fluidsand/tools"
	"github.com/pthm-cable/fluidsand/ui"
)

const controlsText = "[Space] pause  [,/.] speed  [E] editor  [1-4] tool  [M] mode  [O] overlay  [V] flow  [P] perf  [I] inspect  [RMB] erase"

func (g *Game) initPerfPanel() {
	g.perfPanel = ui.NewPerfPanel(int32(g.screenWidth)-290, 10, 280)
}

// Draw renders the current state.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 12, G: 14, B: 18, A: 255})

	grid := g.sim.Grid(sim.MainRegion)
	g.gridRenderer.Draw(grid, g.camera)
	g.flowRenderer.Draw(grid, g.camera)

	snap := g.sim.Snapshot()
	g.particleRenderer.Draw(snap.Particles, g.camera)

	hudY := int32(10)
	if g.editor.Enabled {
		modeLabel := fmt.Sprintf("Mode: %s", g.sim.Mode())
		action := g.toolbar.Draw(g.editor.Tool, modeLabel)
		if action.Tool != g.editor.Tool {
			g.editor.Select(action.Tool)
		}
		if action.ToggleMode {
			g.toggleMode()
		}
		hudY = int32(g.toolbar.Bounds().Height) + 20
	}

	clients := -1
	if g.hub != nil {
		clients = g.hub.Clients()
	}
	g.hud.Draw(ui.HUDData{
		Tick:          g.sim.Tick(),
		Mode:          string(g.sim.Mode()),
		Particles:     g.sim.ParticleCount(),
		SolidCells:    grid.SolidCount(),
		MaxDivergence: g.sim.LastEuler().MaxDivergence,
		FPS:           rl.GetFPS(),
		Speed:         g.stepsPerUpdate,
		Paused:        g.paused,
		Editing:       g.editor.Enabled,
		Tool:          toolLabel(g.editor.Tool),
		Dropped:       g.stepper.Dropped(),
		Clients:       clients,
	}, hudY)

	if g.showPerf {
		g.perfPanel.Draw(g.sim.Perf().Stats())
	}
	if g.showInspector {
		mouse := rl.GetMousePosition()
		wx, wy := g.camera.ScreenToWorld(mouse.X, mouse.Y)
		if c, ok := grid.CellAt(systems.Vec2{X: wx, Y: wy}); ok {
			g.inspector.Draw(c)
		}
	}
	g.hud.DrawControls(int32(g.screenHeight), controlsText)

	rl.EndDrawing()
}

func toolLabel(t tools.Tool) string {
	if t == tools.None {
		return "none (1-4 to pick)"
	}
	return t.String()
}
