package systems

import "math"

// Vec2 is a 2D vector in world units.
type Vec2 struct {
	X, Y float32
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// LenSq returns the squared length.
func (v Vec2) LenSq() float32 { return v.X*v.X + v.Y*v.Y }

// Len returns the Euclidean length.
func (v Vec2) Len() float32 { return float32(math.Sqrt(float64(v.LenSq()))) }

// NormalizeOrZero returns the unit vector along v, or zero when v is too short to have a direction.
func (v Vec2) NormalizeOrZero() Vec2 {
	l := v.Len()
	if l < minSeparation {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

// ClampLen limits the length of v to maxLen.
func (v Vec2) ClampLen(maxLen float32) Vec2 {
	lsq := v.LenSq()
	if lsq <= maxLen*maxLen {
		return v
	}
	return v.Scale(maxLen / float32(math.Sqrt(float64(lsq))))
}

// minSeparation is the distance below which two samples are treated as coincident.
const minSeparation = 1e-4

// roundHalfUp rounds to the nearest integer, halves away from zero for positive input.
func roundHalfUp(v float32) int {
	return int(math.Floor(float64(v) + 0.5))
}
