package domain

import "math"

// Vec is a 2D point or velocity on the pitch.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec {
	return Vec{X: v.X - o.X, Y: v.Y - o.Y}
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec {
	return Vec{X: v.X + o.X, Y: v.Y + o.Y}
}

// Scale returns v scaled by f.
func (v Vec) Scale(f float64) Vec {
	return Vec{X: v.X * f, Y: v.Y * f}
}

// Len returns the vector magnitude.
func (v Vec) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Unit returns the unit vector of v, or the zero vector when v has no length.
func (v Vec) Unit() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{}
	}
	return Vec{X: v.X / l, Y: v.Y / l}
}

// DistanceTo returns the euclidean distance between v and o.
func (v Vec) DistanceTo(o Vec) float64 {
	return v.Sub(o).Len()
}

// Clamp keeps both components within [min, max] per axis.
func (v Vec) Clamp(minX, maxX, minY, maxY float64) Vec {
	return Vec{
		X: clampFloat(v.X, minX, maxX),
		Y: clampFloat(v.Y, minY, maxY),
	}
}

func clampFloat(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
