package forces

import (
	"math"

	"github.com/cbodonnell/rigid2d/pkg/body"
	"github.com/cbodonnell/rigid2d/pkg/collisions"
	"github.com/cbodonnell/rigid2d/pkg/scene"
	"github.com/cbodonnell/rigid2d/pkg/vector"
)

// CollisionHandler responds to the start of an overlap between b1 and b2.
// axis is the unit collision axis; its sign is arbitrary.
type CollisionHandler func(b1, b2 *body.Body, axis vector.Vector, aux interface{}, forceConst float64)

type collisionAux struct {
	b1         *body.Body
	b2         *body.Body
	handler    CollisionHandler
	aux        interface{}
	forceConst float64
	colliding  bool
}

func (c *collisionAux) Free() {
	if f, ok := c.aux.(scene.Freer); ok {
		f.Free()
	}
	c.aux = nil
}

// CreateCollision calls handler once each time b1 and b2 start overlapping.
// The handler is not called again until the bodies have separated. aux is
// owned by the collision; if it implements scene.Freer it is freed along
// with it.
func CreateCollision(s *scene.Scene, b1, b2 *body.Body, handler CollisionHandler, aux interface{}, forceConst float64) {
	state := &collisionAux{
		b1:         b1,
		b2:         b2,
		handler:    handler,
		aux:        aux,
		forceConst: forceConst,
	}
	s.AddBodiesForceCreator(dispatchCollision, state, []*body.Body{b1, b2})
}

func dispatchCollision(aux interface{}) {
	c := aux.(*collisionAux)
	info := collisions.Find(c.b1, c.b2)
	if !info.Collided {
		c.colliding = false
		return
	}
	if c.colliding {
		return
	}
	c.colliding = true
	c.handler(c.b1, c.b2, info.Axis, c.aux, c.forceConst)
}

// DestructiveCollisionHandler removes both bodies.
func DestructiveCollisionHandler(b1, b2 *body.Body, _ vector.Vector, _ interface{}, _ float64) {
	b1.Remove()
	b2.Remove()
}

// CreateDestructiveCollision removes both bodies when they first touch.
func CreateDestructiveCollision(s *scene.Scene, b1, b2 *body.Body) {
	CreateCollision(s, b1, b2, DestructiveCollisionHandler, nil, 0)
}

// PhysicsCollisionHandler applies an impulse along axis with coefficient of
// restitution elasticity. A body with infinite mass receives no velocity
// change. Two infinite masses are left untouched.
func PhysicsCollisionHandler(b1, b2 *body.Body, axis vector.Vector, _ interface{}, elasticity float64) {
	m1, m2 := b1.Mass(), b2.Mass()
	var reducedMass float64
	switch {
	case math.IsInf(m1, 1) && math.IsInf(m2, 1):
		return
	case math.IsInf(m1, 1):
		reducedMass = m2
	case math.IsInf(m2, 1):
		reducedMass = m1
	default:
		reducedMass = m1 * m2 / (m1 + m2)
	}

	u1 := b1.Velocity().Dot(axis)
	u2 := b2.Velocity().Dot(axis)
	impulse := axis.Multiply(reducedMass * (1 + elasticity) * (u2 - u1))
	b1.AddImpulse(impulse)
	b2.AddImpulse(impulse.Negate())
}

// CreatePhysicsCollision makes b1 and b2 bounce off each other.
func CreatePhysicsCollision(s *scene.Scene, b1, b2 *body.Body, elasticity float64) {
	CreateCollision(s, b1, b2, PhysicsCollisionHandler, nil, elasticity)
}

// OneWayCollisionHandler bounces a falling b1 off b2 along the vertical
// component of axis. aux must be a float64 bounce speed: b1's vertical
// velocity is set to -speed before the elastic impulse, so landing on an
// immovable platform leaves it moving up at elasticity*speed. Rising bodies
// pass through.
func OneWayCollisionHandler(b1, b2 *body.Body, axis vector.Vector, aux interface{}, elasticity float64) {
	velocity := b1.Velocity()
	if velocity.Y >= 0 || axis.Y == 0 {
		return
	}
	speed := aux.(float64)
	b1.SetVelocity(vector.New(velocity.X, -speed))
	PhysicsCollisionHandler(b1, b2, vector.New(0, math.Copysign(1, axis.Y)), nil, elasticity)
}

// CreateOneWayCollision registers a platform b2 that b1 bounces off when
// landing from above.
func CreateOneWayCollision(s *scene.Scene, b1, b2 *body.Body, elasticity, bounceSpeed float64) {
	CreateCollision(s, b1, b2, OneWayCollisionHandler, bounceSpeed, elasticity)
}
