// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"image/color"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Simulation SimulationConfig `yaml:"simulation"`
	Euler      EulerConfig      `yaml:"euler"`
	SPH        SPHConfig        `yaml:"sph"`
	Particles  ParticlesConfig  `yaml:"particles"`
	Tools      ToolsConfig      `yaml:"tools"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Stream     StreamConfig     `yaml:"stream"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the simulated region.
// The grid is sized to cover the world; a zero dimension falls back to the screen.
type WorldConfig struct {
	Width    int     `yaml:"width"`     // World width in world units (0 = use screen width)
	Height   int     `yaml:"height"`    // World height in world units (0 = use screen height)
	OriginX  float64 `yaml:"origin_x"`  // World position of cell 0
	OriginY  float64 `yaml:"origin_y"`
	CellSize float64 `yaml:"cell_size"` // Edge length of one grid cell
	MaxCells int     `yaml:"max_cells"` // Upper bound on cells in one grid, checked on resize
}

// SimulationConfig holds tick scheduling and shared forces.
type SimulationConfig struct {
	Mode           string  `yaml:"mode"`             // "grid" or "sph"
	DT             float64 `yaml:"dt"`               // Fixed tick length in seconds
	MaxCatchUp     int     `yaml:"max_catch_up"`     // Max ticks run for one frame
	GravityX       float64 `yaml:"gravity_x"`
	GravityY       float64 `yaml:"gravity_y"`
	ParallelCutoff int     `yaml:"parallel_cutoff"` // Below this element count passes run inline
}

// EulerConfig holds grid solver parameters.
type EulerConfig struct {
	Iterations int     `yaml:"iterations"` // Jacobi relaxation iterations per tick
	Drag       float64 `yaml:"drag"`       // Quadratic drag coefficient
	Project    bool    `yaml:"project"`    // Subtract the pressure gradient from velocity
}

// SPHConfig holds particle solver parameters.
type SPHConfig struct {
	SmoothingRadius float64 `yaml:"smoothing_radius"` // H
	Mass            float64 `yaml:"mass"`
	GasConstant     float64 `yaml:"gas_constant"`
	RestDensity     float64 `yaml:"rest_density"`
	Viscosity       float64 `yaml:"viscosity"`
	DensityFloor    float64 `yaml:"density_floor"`
	MaxPairAccel    float64 `yaml:"max_pair_accel"` // Clamp on a single pair's contribution
}

// ParticlesConfig holds host-side particle parameters.
type ParticlesConfig struct {
	Radius      float64 `yaml:"radius"`      // Collider radius
	Restitution float64 `yaml:"restitution"` // Velocity kept after hitting a wall
	Spacing     float64 `yaml:"spacing"`     // Lattice spacing for brush spawns and calibration
	MaxCount    int     `yaml:"max_count"`
}

// ToolsConfig holds editor tool settings.
type ToolsConfig struct {
	SolidColor []int   `yaml:"solid_color"` // RGBA
	FluidColor []int   `yaml:"fluid_color"`
	WaterColor []int   `yaml:"water_color"`
	FluidVelX  float64 `yaml:"fluid_vel_x"` // Initial velocity of painted fluid cells
	FluidVelY  float64 `yaml:"fluid_vel_y"`
	BrushSize  int     `yaml:"brush_size"`  // Particles per water click (square root)
}

// TelemetryConfig holds stats output settings.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Seconds per stats window
	PerfWindow  int     `yaml:"perf_window"`  // Ticks averaged by the perf collector
}

// StreamConfig holds snapshot streaming settings.
type StreamConfig struct {
	Address  string `yaml:"address"`  // Empty disables the server
	Interval int    `yaml:"interval"` // Ticks between broadcast snapshots
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	DT32       float32
	WorldW32   float32
	WorldH32   float32
	CellSize32 float32
	GridCols   int
	GridRows   int
	SolidColor color.RGBA
	FluidColor color.RGBA
	WaterColor color.RGBA
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	if n := cfg.Derived.GridCols * cfg.Derived.GridRows; n > cfg.World.MaxCells {
		return nil, fmt.Errorf("world: %dx%d grid has %d cells, over world.max_cells %d",
			cfg.Derived.GridCols, cfg.Derived.GridRows, n, cfg.World.MaxCells)
	}

	return cfg, nil
}

// validate rejects values the solvers cannot run with.
func (c *Config) validate() error {
	switch c.Simulation.Mode {
	case "grid", "sph":
	default:
		return fmt.Errorf("simulation.mode: unknown mode %q", c.Simulation.Mode)
	}
	if c.Simulation.DT <= 0 {
		return fmt.Errorf("simulation.dt: must be positive, got %v", c.Simulation.DT)
	}
	if c.World.CellSize <= 0 {
		return fmt.Errorf("world.cell_size: must be positive, got %v", c.World.CellSize)
	}
	if c.World.MaxCells <= 0 {
		return fmt.Errorf("world.max_cells: must be positive, got %d", c.World.MaxCells)
	}
	if c.SPH.SmoothingRadius <= 0 {
		return fmt.Errorf("sph.smoothing_radius: must be positive, got %v", c.SPH.SmoothingRadius)
	}
	if c.SPH.DensityFloor <= 0 {
		return fmt.Errorf("sph.density_floor: must be positive, got %v", c.SPH.DensityFloor)
	}
	if c.Euler.Iterations < 0 {
		return fmt.Errorf("euler.iterations: must not be negative, got %d", c.Euler.Iterations)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Simulation.DT)
	c.Derived.CellSize32 = float32(c.World.CellSize)

	// World dimensions default to screen size if not specified
	worldW := c.World.Width
	if worldW == 0 {
		worldW = c.Screen.Width
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = c.Screen.Height
	}
	c.Derived.WorldW32 = float32(worldW)
	c.Derived.WorldH32 = float32(worldH)

	// Enough cells to cover the world
	c.Derived.GridCols = int(math.Ceil(float64(worldW) / c.World.CellSize))
	c.Derived.GridRows = int(math.Ceil(float64(worldH) / c.World.CellSize))

	c.Derived.SolidColor = rgba(c.Tools.SolidColor, color.RGBA{R: 90, G: 70, B: 50, A: 255})
	c.Derived.FluidColor = rgba(c.Tools.FluidColor, color.RGBA{R: 40, G: 110, B: 220, A: 200})
	c.Derived.WaterColor = rgba(c.Tools.WaterColor, color.RGBA{R: 0, G: 0, B: 255, A: 77})
}

// rgba converts a 3 or 4 element channel list, falling back when malformed.
func rgba(v []int, fallback color.RGBA) color.RGBA {
	if len(v) != 3 && len(v) != 4 {
		return fallback
	}
	ch := [4]uint8{255, 255, 255, 255}
	for i, c := range v {
		ch[i] = uint8(min(max(c, 0), 255))
	}
	return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
