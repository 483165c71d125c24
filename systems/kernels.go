package systems

import "math"

// Kernels holds the 2D smoothing kernel constants for one smoothing radius and particle mass.
type Kernels struct {
	H       float32
	HSq     float32
	Poly6   float32 // mass * 4/(pi H^8), applied to (H^2 - r^2)^3
	Spiky   float32 // 30/(pi H^5), gradient magnitude applied to (H - r)^2
	ViscLap float32 // 40/(pi H^5), laplacian applied to (H - r)
	Mass    float32
}

// NewKernels precomputes kernel constants.
func NewKernels(h, mass float32) Kernels {
	h64 := float64(h)
	return Kernels{
		H:       h,
		HSq:     h * h,
		Poly6:   mass * float32(4/(math.Pi*math.Pow(h64, 8))),
		Spiky:   float32(30 / (math.Pi * math.Pow(h64, 5))),
		ViscLap: float32(40 / (math.Pi * math.Pow(h64, 5))),
		Mass:    mass,
	}
}

// DensityWeight returns the poly6 contribution at squared distance rSq.
// Zero at and beyond the smoothing radius.
func (k Kernels) DensityWeight(rSq float32) float32 {
	if rSq >= k.HSq {
		return 0
	}
	d := k.HSq - rSq
	return k.Poly6 * d * d * d
}

// SpikyGrad returns the spiky gradient magnitude at distance r.
func (k Kernels) SpikyGrad(r float32) float32 {
	if r >= k.H {
		return 0
	}
	d := k.H - r
	return k.Spiky * d * d
}

// ViscosityLaplacian returns the viscosity laplacian at distance r.
func (k Kernels) ViscosityLaplacian(r float32) float32 {
	if r >= k.H {
		return 0
	}
	return k.ViscLap * (k.H - r)
}
