// Package collisions detects overlap between convex bodies with the
// separating axis theorem and prunes candidate pairs with a resolv space.
package collisions

import (
	"fmt"
	"math"

	"github.com/cbodonnell/rigid2d/pkg/body"
	"github.com/cbodonnell/rigid2d/pkg/vector"
)

// Info is the result of a collision test. Axis is a unit vector and is only
// meaningful when Collided is true. Its sign is not normalized.
type Info struct {
	Collided bool          `json:"collided"`
	Axis     vector.Vector `json:"axis"`
}

// Find tests two bodies for overlap.
func Find(b1, b2 *body.Body) Info {
	return FindShapes(b1.Shape(), b2.Shape())
}

// FindShapes tests two convex vertex loops for overlap. Shapes that only
// touch are not colliding.
func FindShapes(s1, s2 []vector.Vector) Info {
	if len(s1) < 3 || len(s2) < 3 {
		panic(fmt.Sprintf("collisions: shapes need at least 3 vertices, got %d and %d", len(s1), len(s2)))
	}

	first, firstOverlap := minimumOverlap(s1, s2)
	if !first.Collided {
		return first
	}
	second, secondOverlap := minimumOverlap(s2, s1)
	if !second.Collided {
		return second
	}
	if firstOverlap < secondOverlap {
		return first
	}
	return second
}

// minimumOverlap projects both shapes onto the normal of every edge of
// edges and returns the axis with the smallest positive overlap. It stops at
// the first separating axis.
func minimumOverlap(edges, other []vector.Vector) (Info, float64) {
	best := Info{Collided: true}
	bestOverlap := math.Inf(1)

	n := len(edges)
	for i := 0; i < n; i++ {
		edge := edges[i].Subtract(edges[(i+1)%n])
		if edge.Length() == 0 {
			continue
		}
		axis := edge.Perpendicular().Unit()

		minA, maxA := project(edges, axis)
		minB, maxB := project(other, axis)
		overlap := math.Min(maxA, maxB) - math.Max(minA, minB)
		if overlap <= 0 {
			return Info{Collided: false}, 0
		}
		if overlap < bestOverlap {
			bestOverlap = overlap
			best.Axis = axis
		}
	}
	return best, bestOverlap
}

func project(shape []vector.Vector, axis vector.Vector) (float64, float64) {
	min := math.Inf(1)
	max := math.Inf(-1)
	for _, p := range shape {
		d := p.Dot(axis)
		min = math.Min(min, d)
		max = math.Max(max, d)
	}
	return min, max
}
