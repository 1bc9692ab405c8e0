package body

import (
	"fmt"
	"math"

	"github.com/cbodonnell/rigid2d/pkg/polygon"
	"github.com/cbodonnell/rigid2d/pkg/vector"
	"github.com/google/uuid"
)

// InfoFreer releases an application info payload when its body is destroyed.
type InfoFreer func(info interface{})

// Body is a rigid polygon with a mass and per-step force and impulse accumulators.
// A mass of math.Inf(1) makes the body immune to forces and impulses.
type Body struct {
	id      uuid.UUID
	poly    *polygon.Polygon
	mass    float64
	force   vector.Vector
	impulse vector.Vector
	removed bool
	freed   bool

	info      interface{}
	infoFreer InfoFreer
}

// New creates a body without an info payload.
func New(shape []vector.Vector, mass float64, color polygon.Color) *Body {
	return NewWithInfo(shape, mass, color, nil, nil)
}

// NewWithInfo creates a body that owns info. infoFreer may be nil,
// in which case the payload is left to the garbage collector.
// It panics if shape has fewer than 3 vertices or mass is not in (0, +Inf].
func NewWithInfo(shape []vector.Vector, mass float64, color polygon.Color, info interface{}, infoFreer InfoFreer) *Body {
	if len(shape) < 3 {
		panic(fmt.Sprintf("body: shape needs at least 3 vertices, got %d", len(shape)))
	}
	if !(mass > 0) {
		panic(fmt.Sprintf("body: mass must be positive, got %v", mass))
	}
	return &Body{
		id:        uuid.New(),
		poly:      polygon.New(shape, vector.Zero, 0, color),
		mass:      mass,
		info:      info,
		infoFreer: infoFreer,
	}
}

func (b *Body) ID() uuid.UUID {
	return b.id
}

// Polygon returns the owned polygon.
func (b *Body) Polygon() *polygon.Polygon {
	return b.poly
}

// Shape returns a copy of the current vertices.
func (b *Body) Shape() []vector.Vector {
	return b.poly.Points()
}

func (b *Body) Info() interface{} {
	return b.info
}

func (b *Body) Mass() float64 {
	return b.mass
}

// IsStatic reports whether the body has infinite mass.
func (b *Body) IsStatic() bool {
	return math.IsInf(b.mass, 1)
}

func (b *Body) Centroid() vector.Vector {
	return b.poly.Centroid()
}

func (b *Body) SetCentroid(centroid vector.Vector) {
	b.poly.SetCenter(centroid)
}

func (b *Body) Velocity() vector.Vector {
	return b.poly.Velocity()
}

func (b *Body) SetVelocity(velocity vector.Vector) {
	b.poly.SetVelocity(velocity)
}

func (b *Body) Rotation() float64 {
	return b.poly.Rotation()
}

func (b *Body) SetRotation(angle float64) {
	b.poly.SetRotation(angle)
}

func (b *Body) RotationSpeed() float64 {
	return b.poly.RotationSpeed()
}

func (b *Body) SetRotationSpeed(speed float64) {
	b.poly.SetRotationSpeed(speed)
}

func (b *Body) Color() polygon.Color {
	return b.poly.Color()
}

func (b *Body) SetColor(color polygon.Color) {
	b.poly.SetColor(color)
}

// Force returns the force accumulated since the last tick.
func (b *Body) Force() vector.Vector {
	return b.force
}

// Impulse returns the impulse accumulated since the last tick.
func (b *Body) Impulse() vector.Vector {
	return b.impulse
}

func (b *Body) AddForce(force vector.Vector) {
	b.force = b.force.Add(force)
}

func (b *Body) AddImpulse(impulse vector.Vector) {
	b.impulse = b.impulse.Add(impulse)
}

// Tick integrates the body over dt.
//
// The position advances with the average of the old and new velocities,
// while the stored velocity is the forward Euler result. Both accumulators
// are cleared afterwards.
func (b *Body) Tick(dt float64) {
	oldVelocity := b.poly.Velocity()
	impulseVelocity := b.impulse.Multiply(1 / b.mass)
	forceVelocity := b.force.Multiply(dt / b.mass)
	newVelocity := oldVelocity.Add(impulseVelocity).Add(forceVelocity)

	b.poly.SetVelocity(oldVelocity.Add(newVelocity).Multiply(0.5))
	b.poly.Advance(dt)

	b.poly.SetVelocity(newVelocity)
	b.force = vector.Zero
	b.impulse = vector.Zero
}

// Remove marks the body for removal on the next scene advance.
func (b *Body) Remove() {
	b.removed = true
}

func (b *Body) IsRemoved() bool {
	return b.removed
}

// Free releases the info payload through its freer. Only the owning scene
// calls Free; repeated calls do nothing.
func (b *Body) Free() {
	if b.freed {
		return
	}
	b.freed = true
	if b.infoFreer != nil {
		b.infoFreer(b.info)
	}
	b.info = nil
	b.infoFreer = nil
}
