// Package tools turns editor clicks into simulation commands.
package tools

import (
	"image/color"

	"github.com/pthm-cable/fluidsand/sim"
	"github.com/pthm-cable/fluidsand/systems"
)

// Tool is the active editor action.
type Tool int

const (
	None  Tool = iota
	Draw       // Paint obstacles
	Water      // Drop particles
	Fluid      // Paint moving fluid cells
)

// All lists the tools in tool bar order.
var All = []Tool{None, Draw, Water, Fluid}

func (t Tool) String() string {
	switch t {
	case Draw:
		return "Draw"
	case Water:
		return "Water"
	case Fluid:
		return "Fluid"
	}
	return "None"
}

// Settings holds what the tools spawn.
type Settings struct {
	SolidColor    color.RGBA
	FluidColor    color.RGBA
	FluidVelocity systems.Vec2
	Spacing       float32 // Lattice spacing of a water brush
	BrushSize     int     // Particles per brush side
	EraseRadius   float32
}

// Editor tracks whether editing is on and which tool is selected.
type Editor struct {
	Settings Settings
	Enabled  bool
	Tool     Tool
}

// NewEditor creates an enabled editor with no tool selected.
func NewEditor(s Settings) *Editor {
	if s.BrushSize < 1 {
		s.BrushSize = 1
	}
	return &Editor{Settings: s, Enabled: true}
}

// Toggle flips editing on or off and returns the new state.
func (e *Editor) Toggle() bool {
	e.Enabled = !e.Enabled
	return e.Enabled
}

// Select makes t the active tool.
func (e *Editor) Select(t Tool) {
	e.Tool = t
}

// Apply returns the commands for a primary click at a world position.
func (e *Editor) Apply(p systems.Vec2) []sim.Command {
	if !e.Enabled {
		return nil
	}
	s := e.Settings

	switch e.Tool {
	case Draw:
		return []sim.Command{sim.SpawnSolid{Region: sim.MainRegion, Position: p, Color: s.SolidColor}}

	case Fluid:
		return []sim.Command{sim.SpawnFluid{
			Region:   sim.MainRegion,
			Position: p,
			Color:    s.FluidColor,
			Velocity: s.FluidVelocity,
		}}

	case Water:
		n := s.BrushSize
		cmds := make([]sim.Command, 0, n*n)
		start := -float32(n-1) * s.Spacing / 2
		for row := 0; row < n; row++ {
			for col := 0; col < n; col++ {
				cmds = append(cmds, sim.SpawnParticle{Position: systems.Vec2{
					X: p.X + start + float32(col)*s.Spacing,
					Y: p.Y + start + float32(row)*s.Spacing,
				}})
			}
		}
		return cmds
	}
	return nil
}

// Erase returns the commands for a secondary click at a world position.
func (e *Editor) Erase(p systems.Vec2) []sim.Command {
	if !e.Enabled || e.Tool != Water {
		return nil
	}
	return []sim.Command{sim.DespawnParticlesNear{Position: p, Radius: e.Settings.EraseRadius}}
}
