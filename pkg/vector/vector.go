package vector

import "math"

// Vector is a 2D vector.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Zero is the zero vector.
var Zero = Vector{}

func New(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

func (v Vector) Add(other Vector) Vector {
	return Vector{X: v.X + other.X, Y: v.Y + other.Y}
}

func (v Vector) Subtract(other Vector) Vector {
	return Vector{X: v.X - other.X, Y: v.Y - other.Y}
}

func (v Vector) Negate() Vector {
	return Vector{X: -v.X, Y: -v.Y}
}

// Multiply scales the vector by a scalar.
func (v Vector) Multiply(scalar float64) Vector {
	return Vector{X: v.X * scalar, Y: v.Y * scalar}
}

func (v Vector) Dot(other Vector) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the z component of the 3D cross product.
func (v Vector) Cross(other Vector) float64 {
	return v.X*other.Y - v.Y*other.X
}

// Rotate rotates the vector counter-clockwise by angle radians about the origin.
func (v Vector) Rotate(angle float64) Vector {
	sin, cos := math.Sincos(angle)
	return Vector{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

func (v Vector) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Unit returns the vector scaled to length 1.
// The zero vector has no direction and yields NaN components.
func (v Vector) Unit() Vector {
	return v.Multiply(1 / v.Length())
}

// Perpendicular returns the vector rotated clockwise by a quarter turn.
func (v Vector) Perpendicular() Vector {
	return Vector{X: v.Y, Y: -v.X}
}

func (v Vector) IsFinite() bool {
	return !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsNaN(v.X) && !math.IsNaN(v.Y)
}
