package polygon

import (
	"fmt"
	"math"

	"github.com/cbodonnell/rigid2d/pkg/vector"
)

// Color is an RGB color with channels in [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Polygon is a mutable loop of vertices in counter-clockwise order
// with a linear velocity and a rotation about its centroid.
type Polygon struct {
	points        []vector.Vector
	velocity      vector.Vector
	rotationSpeed float64
	angle         float64
	color         Color
}

// New creates a polygon from a copy of points.
func New(points []vector.Vector, velocity vector.Vector, rotationSpeed float64, color Color) *Polygon {
	owned := make([]vector.Vector, len(points))
	copy(owned, points)
	return &Polygon{
		points:        owned,
		velocity:      velocity,
		rotationSpeed: rotationSpeed,
		color:         color,
	}
}

// Points returns a copy of the vertices.
func (p *Polygon) Points() []vector.Vector {
	points := make([]vector.Vector, len(p.points))
	copy(points, p.points)
	return points
}

// Len returns the number of vertices.
func (p *Polygon) Len() int {
	return len(p.points)
}

func (p *Polygon) Velocity() vector.Vector {
	return p.velocity
}

func (p *Polygon) SetVelocity(velocity vector.Vector) {
	p.velocity = velocity
}

func (p *Polygon) RotationSpeed() float64 {
	return p.rotationSpeed
}

func (p *Polygon) SetRotationSpeed(speed float64) {
	p.rotationSpeed = speed
}

// Rotation returns the absolute rotation angle. It is accumulated and never wrapped.
func (p *Polygon) Rotation() float64 {
	return p.angle
}

func (p *Polygon) Color() Color {
	return p.color
}

func (p *Polygon) SetColor(color Color) {
	p.color = color
}

// Translate moves every vertex by translation.
func (p *Polygon) Translate(translation vector.Vector) {
	for i := range p.points {
		p.points[i] = p.points[i].Add(translation)
	}
}

// Rotate rotates every vertex by angle radians about pivot.
func (p *Polygon) Rotate(angle float64, pivot vector.Vector) {
	for i := range p.points {
		p.points[i] = p.points[i].Subtract(pivot).Rotate(angle).Add(pivot)
	}
}

// Area returns the unsigned area from the shoelace formula.
// A degenerate polygon has zero area.
func (p *Polygon) Area() float64 {
	n := len(p.points)
	sum := 0.0
	for i := 0; i < n; i++ {
		a := p.points[i]
		b := p.points[(i+1)%n]
		sum += (b.X + a.X) * (b.Y - a.Y)
	}
	return 0.5 * math.Abs(sum)
}

// Centroid returns the area-weighted centroid.
// It panics if the polygon has fewer than 3 vertices or no area.
func (p *Polygon) Centroid() vector.Vector {
	n := len(p.points)
	if n < 3 {
		panic(fmt.Sprintf("polygon: centroid of %d vertices", n))
	}
	area := p.Area()
	if area == 0 || math.IsNaN(area) {
		panic(fmt.Sprintf("polygon: centroid of degenerate polygon with area %v", area))
	}

	cx, cy := 0.0, 0.0
	for i := 0; i < n; i++ {
		a := p.points[i]
		b := p.points[(i+1)%n]
		cross := a.Cross(b)
		cx += (a.X + b.X) * cross
		cy += (a.Y + b.Y) * cross
	}
	k := 1 / (6 * area)
	return vector.Vector{X: k * cx, Y: k * cy}
}

// SetCenter moves the polygon so that its centroid is at center.
func (p *Polygon) SetCenter(center vector.Vector) {
	p.Translate(center.Subtract(p.Centroid()))
}

// SetRotation rotates the polygon about its centroid to the absolute angle.
func (p *Polygon) SetRotation(angle float64) {
	p.Rotate(angle-p.angle, p.Centroid())
	p.angle = angle
}

// Advance moves the polygon along its velocity for dt, then spins it
// about its new centroid by rotationSpeed*dt.
func (p *Polygon) Advance(dt float64) {
	p.Translate(p.velocity.Multiply(dt))
	if p.rotationSpeed == 0 {
		return
	}
	angle := p.rotationSpeed * dt
	p.Rotate(angle, p.Centroid())
	p.angle += angle
}

// Bounds returns the corners of the axis-aligned bounding box.
func (p *Polygon) Bounds() (min vector.Vector, max vector.Vector) {
	if len(p.points) == 0 {
		return vector.Zero, vector.Zero
	}
	min, max = p.points[0], p.points[0]
	for _, v := range p.points[1:] {
		min.X = math.Min(min.X, v.X)
		min.Y = math.Min(min.Y, v.Y)
		max.X = math.Max(max.X, v.X)
		max.Y = math.Max(max.Y, v.Y)
	}
	return min, max
}

// Contains reports whether point lies inside the convex polygon or on its boundary.
func (p *Polygon) Contains(point vector.Vector) bool {
	n := len(p.points)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a := p.points[i]
		b := p.points[(i+1)%n]
		if b.Subtract(a).Cross(point.Subtract(a)) < 0 {
			return false
		}
	}
	return true
}
