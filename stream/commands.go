package stream

import (
	"encoding/json"
	"fmt"
	"image/color"

	"github.com/pthm-cable/fluidsand/sim"
	"github.com/pthm-cable/fluidsand/systems"
)

// Request is one edit command sent by a client as a JSON text message.
type Request struct {
	Type   string  `json:"type"`
	Region int     `json:"region,omitempty"`
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	VX     float32 `json:"vx,omitempty"`
	VY     float32 `json:"vy,omitempty"`
	Radius float32 `json:"radius,omitempty"`
	Pinned bool    `json:"pinned,omitempty"`
	Mode   string  `json:"mode,omitempty"`
	Width  float32 `json:"width,omitempty"`
	Height float32 `json:"height,omitempty"`
}

// Palette supplies the colours of cells painted by remote clients.
type Palette struct {
	Solid color.RGBA
	Fluid color.RGBA
}

// ParseRequest decodes a client message into a simulation command.
func ParseRequest(data []byte, pal Palette) (sim.Command, error) {
	var r Request
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	pos := systems.Vec2{X: r.X, Y: r.Y}
	switch r.Type {
	case "spawn_solid":
		return sim.SpawnSolid{Region: sim.RegionID(r.Region), Position: pos, Color: pal.Solid}, nil
	case "spawn_fluid":
		return sim.SpawnFluid{
			Region:   sim.RegionID(r.Region),
			Position: pos,
			Color:    pal.Fluid,
			Velocity: systems.Vec2{X: r.VX, Y: r.VY},
		}, nil
	case "spawn_particle":
		return sim.SpawnParticle{Position: pos, Pinned: r.Pinned}, nil
	case "despawn_near":
		if r.Radius <= 0 {
			return nil, fmt.Errorf("despawn_near: radius must be positive, got %v", r.Radius)
		}
		return sim.DespawnParticlesNear{Position: pos, Radius: r.Radius}, nil
	case "set_mode":
		m := sim.Mode(r.Mode)
		if !m.Valid() {
			return nil, fmt.Errorf("set_mode: unknown mode %q", r.Mode)
		}
		return sim.SetMode{Mode: m}, nil
	case "resize":
		if !(r.Width > 0 && r.Height > 0) {
			return nil, fmt.Errorf("resize: size must be positive, got %vx%v", r.Width, r.Height)
		}
		// The cell limit is enforced by the simulation when the resize is applied
		return sim.Resize{Width: r.Width, Height: r.Height}, nil
	}
	return nil, fmt.Errorf("unknown request type %q", r.Type)
}
