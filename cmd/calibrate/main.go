// Command calibrate fits the SPH particle mass so that a square lattice at
// the configured spacing sits at the rest density, and prints the result as a
// config fragment.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/fluidsand/config"
	"github.com/pthm-cable/fluidsand/systems"
)

// fragment is the part of the config calibrate rewrites.
type fragment struct {
	SPH struct {
		Mass float64 `yaml:"mass"`
	} `yaml:"sph"`
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	spacing := flag.Float64("spacing", 0, "Lattice spacing (0 = particles.spacing)")
	output := flag.String("output", "", "Write the fragment to this file instead of stdout")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *spacing <= 0 {
		*spacing = cfg.Particles.Spacing
	}

	params := systems.SPHParams{
		H:            float32(cfg.SPH.SmoothingRadius),
		Mass:         float32(cfg.SPH.Mass),
		GasConstant:  float32(cfg.SPH.GasConstant),
		RestDensity:  float32(cfg.SPH.RestDensity),
		Viscosity:    float32(cfg.SPH.Viscosity),
		DensityFloor: float32(cfg.SPH.DensityFloor),
		MaxPairAccel: float32(cfg.SPH.MaxPairAccel),
	}

	before := LatticeDensity(params, float32(*spacing))
	mass, err := FitMass(params, float32(*spacing))
	if err != nil {
		log.Fatal(err)
	}
	params.Mass = float32(mass)
	after := LatticeDensity(params, float32(*spacing))

	fmt.Fprintf(os.Stderr, "spacing=%.2f H=%.2f: density %.4f at mass %.2f -> %.4f at mass %.2f (rest %.4f)\n",
		*spacing, params.H, before, cfg.SPH.Mass, after, mass, params.RestDensity)

	var frag fragment
	frag.SPH.Mass = mass
	data, err := yaml.Marshal(&frag)
	if err != nil {
		log.Fatalf("failed to marshal fragment: %v", err)
	}

	if *output == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*output, data, 0644); err != nil {
		log.Fatalf("failed to write %s: %v", *output, err)
	}
}
