// Package forces registers the standard force creators on a scene.
package forces

import (
	"github.com/cbodonnell/rigid2d/pkg/body"
	"github.com/cbodonnell/rigid2d/pkg/scene"
	"github.com/cbodonnell/rigid2d/pkg/vector"
)

// MinDistance is the centroid separation below which gravity is skipped.
const MinDistance = 5.0

// CreateNewtonianGravity attracts b1 and b2 toward each other with
// strength G*m1*m2/d².
func CreateNewtonianGravity(s *scene.Scene, g float64, b1, b2 *body.Body) {
	s.AddBodiesForceCreator(func(interface{}) {
		displacement := b1.Centroid().Subtract(b2.Centroid())
		distance := displacement.Length()
		if distance <= MinDistance {
			return
		}
		magnitude := g * b1.Mass() * b2.Mass() / (distance * distance)
		force := displacement.Multiply(magnitude / distance)
		b2.AddForce(force)
		b1.AddForce(force.Negate())
	}, nil, []*body.Body{b1, b2})
}

// CreateSpring connects b1 and b2 with a zero-length spring of constant k.
func CreateSpring(s *scene.Scene, k float64, b1, b2 *body.Body) {
	s.AddBodiesForceCreator(func(interface{}) {
		force := b1.Centroid().Subtract(b2.Centroid()).Multiply(-k)
		b1.AddForce(force)
		b2.AddForce(force.Negate())
	}, nil, []*body.Body{b1, b2})
}

// CreateDrag applies a force of -gamma*v to b.
func CreateDrag(s *scene.Scene, gamma float64, b *body.Body) {
	s.AddBodiesForceCreator(func(interface{}) {
		b.AddForce(b.Velocity().Multiply(-gamma))
	}, nil, []*body.Body{b})
}

// CreateConstantForce applies a uniform acceleration field to b. Bodies with
// infinite mass are left alone.
func CreateConstantForce(s *scene.Scene, acceleration vector.Vector, b *body.Body) {
	s.AddBodiesForceCreator(func(interface{}) {
		if b.IsStatic() {
			return
		}
		b.AddForce(acceleration.Multiply(b.Mass()))
	}, nil, []*body.Body{b})
}
