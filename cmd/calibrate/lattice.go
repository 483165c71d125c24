package main

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/fluidsand/systems"
)

// LatticeDensity returns the density the solver computes for a particle in
// the interior of a square lattice with the given spacing.
func LatticeDensity(params systems.SPHParams, spacing float32) float32 {
	reach := int(math.Ceil(float64(params.H / spacing)))
	side := 2*reach + 1

	ps := make([]systems.SPHParticle, 0, side*side)
	center := -1
	for row := -reach; row <= reach; row++ {
		for col := -reach; col <= reach; col++ {
			if row == 0 && col == 0 {
				center = len(ps)
			}
			ps = append(ps, systems.SPHParticle{Pos: systems.Vec2{
				X: float32(col) * spacing,
				Y: float32(row) * spacing,
			}})
		}
	}

	neighbors := make([][]int32, len(ps))
	for j := range ps {
		neighbors[center] = append(neighbors[center], int32(j))
	}

	solver := systems.NewSPHSolver(params, nil)
	solver.ComputeDensity(ps, neighbors)
	return ps[center].Rho
}

// FitMass finds the particle mass at which a lattice at spacing sits at the
// configured rest density. The search runs in log space so mass stays positive.
func FitMass(params systems.SPHParams, spacing float32) (float64, error) {
	if params.RestDensity <= params.DensityFloor {
		return 0, fmt.Errorf("rest density %v must exceed the density floor %v", params.RestDensity, params.DensityFloor)
	}
	rest := float64(params.RestDensity)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			p := params
			p.Mass = float32(math.Exp(x[0]))
			e := (float64(LatticeDensity(p, spacing)) - rest) / rest
			return e * e
		},
	}

	start := math.Log(float64(max(params.Mass, 1e-6)))
	result, err := optimize.Minimize(problem, []float64{start}, nil, &optimize.NelderMead{})
	if err != nil {
		return 0, fmt.Errorf("fitting mass: %w", err)
	}
	return math.Exp(result.X[0]), nil
}
