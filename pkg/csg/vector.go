package csg

import "math"

// Vector is a 3D point or direction. All methods return new values.
type Vector struct {
	X, Y, Z float64
}

// V returns the vector (x, y, z).
func V(x, y, z float64) Vector {
	return Vector{X: x, Y: y, Z: z}
}

// Negated returns -v.
func (v Vector) Negated() Vector {
	return Vector{-v.X, -v.Y, -v.Z}
}

// Plus returns v + a.
func (v Vector) Plus(a Vector) Vector {
	return Vector{v.X + a.X, v.Y + a.Y, v.Z + a.Z}
}

// Minus returns v - a.
func (v Vector) Minus(a Vector) Vector {
	return Vector{v.X - a.X, v.Y - a.Y, v.Z - a.Z}
}

// Times returns v scaled by s.
func (v Vector) Times(s float64) Vector {
	return Vector{v.X * s, v.Y * s, v.Z * s}
}

// DividedBy returns v / s. Division by zero yields Inf or NaN components.
func (v Vector) DividedBy(s float64) Vector {
	return Vector{v.X / s, v.Y / s, v.Z / s}
}

// Dot returns the dot product v · a.
func (v Vector) Dot(a Vector) float64 {
	return v.X*a.X + v.Y*a.Y + v.Z*a.Z
}

// Cross returns the cross product v × a.
func (v Vector) Cross(a Vector) Vector {
	return Vector{
		v.Y*a.Z - v.Z*a.Y,
		v.Z*a.X - v.X*a.Z,
		v.X*a.Y - v.Y*a.X,
	}
}

// Lerp linearly interpolates from v towards a: v + (a-v)*t.
func (v Vector) Lerp(a Vector, t float64) Vector {
	return v.Plus(a.Minus(v).Times(t))
}

// Length returns the Euclidean length of v.
func (v Vector) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// Unit returns v / |v|. A zero vector produces NaN components; callers
// must not normalize degenerate vectors.
func (v Vector) Unit() Vector {
	return v.DividedBy(v.Length())
}

// IsFinite reports whether every component is neither NaN nor infinite.
func (v Vector) IsFinite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (v Vector) min(a Vector) Vector {
	return Vector{math.Min(v.X, a.X), math.Min(v.Y, a.Y), math.Min(v.Z, a.Z)}
}

func (v Vector) max(a Vector) Vector {
	return Vector{math.Max(v.X, a.X), math.Max(v.Y, a.Y), math.Max(v.Z, a.Z)}
}
