// Package shapes builds counter-clockwise vertex loops for common bodies.
package shapes

import (
	"fmt"
	"math"

	"github.com/cbodonnell/rigid2d/pkg/vector"
)

// Rectangle returns the four corners of an axis-aligned rectangle centered at center.
func Rectangle(center vector.Vector, width, height float64) []vector.Vector {
	hw, hh := width/2, height/2
	return []vector.Vector{
		{X: center.X - hw, Y: center.Y - hh},
		{X: center.X + hw, Y: center.Y - hh},
		{X: center.X + hw, Y: center.Y + hh},
		{X: center.X - hw, Y: center.Y + hh},
	}
}

// Oval approximates an axis-aligned ellipse with n vertices.
func Oval(center vector.Vector, radiusX, radiusY float64, n int) []vector.Vector {
	if n < 3 {
		panic(fmt.Sprintf("shapes: oval needs at least 3 points, got %d", n))
	}
	points := make([]vector.Vector, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		sin, cos := math.Sincos(angle)
		points[i] = vector.Vector{
			X: center.X + radiusX*cos,
			Y: center.Y + radiusY*sin,
		}
	}
	return points
}

// RegularPolygon returns n vertices on a circle of the given radius, first vertex on the +x axis.
func RegularPolygon(center vector.Vector, radius float64, n int) []vector.Vector {
	return Oval(center, radius, radius, n)
}

// Triangle returns an isosceles triangle with its apex pointing up the y axis.
func Triangle(center vector.Vector, base, height float64) []vector.Vector {
	return []vector.Vector{
		{X: center.X - base/2, Y: center.Y - height/3},
		{X: center.X + base/2, Y: center.Y - height/3},
		{X: center.X, Y: center.Y + 2*height/3},
	}
}

// IsCounterClockwise reports whether the loop has positive signed area.
func IsCounterClockwise(points []vector.Vector) bool {
	sum := 0.0
	n := len(points)
	for i := 0; i < n; i++ {
		sum += points[i].Cross(points[(i+1)%n])
	}
	return sum > 0
}

// IsConvex reports whether the loop is a simple convex polygon: every
// vertex lies on the inner side of every edge. Collinear vertices are allowed
// but the loop must turn somewhere.
func IsConvex(points []vector.Vector) bool {
	n := len(points)
	if n < 3 {
		return false
	}
	sign := 0.0
	for i := 0; i < n; i++ {
		a := points[i]
		edge := points[(i+1)%n].Subtract(a)
		for j := 0; j < n; j++ {
			side := edge.Cross(points[j].Subtract(a))
			if side == 0 {
				continue
			}
			if sign == 0 {
				sign = math.Copysign(1, side)
			} else if side*sign < 0 {
				return false
			}
		}
	}
	return sign != 0 && !windsTwice(points)
}

// windsTwice reports whether the loop's turning adds up to more than one
// revolution, as a convex outline traced twice does.
func windsTwice(points []vector.Vector) bool {
	n := len(points)
	total := 0.0
	for i := 0; i < n; i++ {
		a := points[(i+1)%n].Subtract(points[i])
		b := points[(i+2)%n].Subtract(points[(i+1)%n])
		total += math.Atan2(a.Cross(b), a.Dot(b))
	}
	return math.Abs(total) > 3*math.Pi
}
