package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fluidsand/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Tick          int64
	Mode          string
	Particles     int
	SolidCells    int
	MaxDivergence float32
	FPS           int32
	Speed         int
	Paused        bool
	Editing       bool
	Tool          string
	Dropped       int64 // Ticks discarded by the catch-up cap
	Clients       int   // Stream clients, -1 when streaming is off
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the status lines below the tool bar.
func (h *HUD) Draw(d HUDData, y int32) {
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Mode: %s | Speed: %dx | FPS: %d", d.Tick, d.Mode, d.Speed, d.FPS),
		10, y, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Particles: %d | Solids: %d | Max div: %.3f", d.Particles, d.SolidCells, d.MaxDivergence),
		10, y+20, 16, rl.LightGray,
	)

	status := "Running"
	if d.Paused {
		status = "PAUSED"
	}
	if d.Editing {
		status += " | Tool: " + d.Tool
	} else {
		status += " | Editor off"
	}
	if d.Dropped > 0 {
		status += fmt.Sprintf(" | Dropped ticks: %d", d.Dropped)
	}
	if d.Clients >= 0 {
		status += fmt.Sprintf(" | Stream clients: %d", d.Clients)
	}
	rl.DrawText(status, 10, y+40, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders tick timing broken down by phase.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a perf panel anchored at (x, y).
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// Draw renders the panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	pad := r.Theme.Padding
	height := int32(len(telemetry.Phases)+4)*r.Theme.LineHeight + pad*2
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + pad
	y := r.DrawSectionHeader(x, p.y+pad, "Performance")
	y = r.DrawLabelValue(x, y, "Tick", fmt.Sprintf("%v (p95 %v)", stats.AvgTickDuration, stats.P95TickDuration))
	y = r.DrawLabelValue(x, y, "Rate", fmt.Sprintf("%.0f ticks/s", stats.TicksPerSecond))
	for _, phase := range telemetry.Phases {
		y = r.DrawBar(x, y, phase, float32(stats.PhasePct[phase]/100), p.width-pad*2)
	}
}
