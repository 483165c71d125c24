// Package game wraps the simulation in a raylib window: fixed-rate stepping,
// input, the editor tool bar and drawing.
package game

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/fluidsand/camera"
	"github.com/pthm-cable/fluidsand/config"
	"github.com/pthm-cable/fluidsand/renderer"
	"github.com/pthm-cable/fluidsand/sim"
	"github.com/pthm-cable/fluidsand/stream"
	"github.com/pthm-cable/fluidsand/systems"
	"github.com/pthm-cable/fluidsand/telemetry"
	"github.com/pthm-cable/fluidsand/tools"
	"github.com/pthm-cable/fluidsand/ui"
)

// Options configures a game beyond the config file.
type Options struct {
	Seed           int64
	LogStats       bool
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
	Serve          string // Stream server address, overrides stream.address
	Empty          bool   // Start without the dam-break scene
}

// Game holds the complete game state.
type Game struct {
	cfg *config.Config
	sim *sim.Sim
	rng *rand.Rand

	stepper        *sim.Stepper
	stepsPerUpdate int
	paused         bool
	headless       bool

	output *telemetry.OutputManager
	hub    *stream.Hub
	server *stream.Server

	// Graphics, nil when headless
	camera           *camera.Camera
	gridRenderer     *renderer.GridRenderer
	flowRenderer     *renderer.FlowRenderer
	particleRenderer *renderer.ParticleRenderer
	toolbar          *ui.Toolbar
	hud              *ui.HUD
	perfPanel        *ui.PerfPanel
	inspector        *ui.Inspector
	showPerf         bool
	showInspector    bool

	editor *tools.Editor

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a game from the global config.
func NewGameWithOptions(opts Options) *Game {
	cfg := config.Cfg()

	g := &Game{
		cfg:            cfg,
		rng:            rand.New(rand.NewSource(opts.Seed)),
		stepper:        sim.NewStepper(cfg.Simulation.DT, cfg.Simulation.MaxCatchUp),
		stepsPerUpdate: max(opts.StepsPerUpdate, 1),
		headless:       opts.Headless,
		screenWidth:    float32(cfg.Screen.Width),
		screenHeight:   float32(cfg.Screen.Height),
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		slog.Error("failed to create output directory", "dir", opts.OutputDir, "error", err)
	}
	if output != nil {
		if err := output.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config snapshot", "error", err)
		}
		g.output = output
	}

	simOpts := sim.Options{
		LogStats: opts.LogStats,
		Output:   g.output,
	}

	addr := cfg.Stream.Address
	if opts.Serve != "" {
		addr = opts.Serve
	}
	if addr != "" {
		g.hub = stream.NewHub()
		simOpts.Publisher = g.hub
	}

	g.sim = sim.New(cfg, simOpts)

	if g.hub != nil {
		g.server = stream.NewServer(addr, g.hub, g.sim, stream.Palette{
			Solid: cfg.Derived.SolidColor,
			Fluid: cfg.Derived.FluidColor,
		})
		go func() {
			if err := g.server.ListenAndServe(); err != nil {
				slog.Error("stream server stopped", "error", err)
			}
		}()
	}

	g.editor = tools.NewEditor(tools.Settings{
		SolidColor:    cfg.Derived.SolidColor,
		FluidColor:    cfg.Derived.FluidColor,
		FluidVelocity: systems.Vec2{X: float32(cfg.Tools.FluidVelX), Y: float32(cfg.Tools.FluidVelY)},
		Spacing:       float32(cfg.Particles.Spacing),
		BrushSize:     cfg.Tools.BrushSize,
		EraseRadius:   float32(cfg.SPH.SmoothingRadius) / 2,
	})

	if !opts.Headless {
		g.initGraphics()
	}

	if !opts.Empty {
		sim.PopulateDamBreak(g.sim, g.rng)
	}

	slog.Info("game created",
		"mode", g.sim.Mode(),
		"cols", g.sim.Grid(sim.MainRegion).Region.Cols,
		"rows", g.sim.Grid(sim.MainRegion).Region.Rows,
		"headless", opts.Headless,
		"stream", addr,
	)
	return g
}

func (g *Game) initGraphics() {
	cfg := g.cfg
	g.camera = camera.New(g.screenWidth, g.screenHeight,
		float32(cfg.World.OriginX), float32(cfg.World.OriginY),
		cfg.Derived.WorldW32, cfg.Derived.WorldH32)
	g.gridRenderer = renderer.NewGridRenderer()
	g.flowRenderer = renderer.NewFlowRenderer()
	g.particleRenderer = renderer.NewParticleRenderer(cfg.Derived.WaterColor,
		float32(cfg.Particles.Radius), float32(cfg.SPH.RestDensity))
	g.toolbar = ui.NewToolbar(10, 10)
	g.hud = ui.NewHUD()
	g.inspector = ui.NewInspector(10, int32(g.screenHeight)-180, 240)
	g.initPerfPanel()
}

// Sim returns the underlying simulation.
func (g *Game) Sim() *sim.Sim {
	return g.sim
}

// Tick returns the number of completed simulation ticks.
func (g *Game) Tick() int64 {
	return g.sim.Tick()
}

// Unload stops the stream server and worker pool and flushes output files.
func (g *Game) Unload() {
	if g.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := g.server.Shutdown(ctx); err != nil {
			slog.Error("stream server shutdown failed", "error", err)
		}
		cancel()
	}
	g.sim.Close()
	if g.output != nil {
		if err := g.output.Close(); err != nil {
			slog.Error("failed to close output files", "error", err)
		}
	}
	slog.Info("game unloaded", "tick", g.sim.Tick(), "dropped_ticks", g.stepper.Dropped())
}
