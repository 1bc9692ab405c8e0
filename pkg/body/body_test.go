package body

import (
	"math"
	"testing"

	"github.com/cbodonnell/rigid2d/pkg/kinematic"
	"github.com/cbodonnell/rigid2d/pkg/polygon"
	"github.com/cbodonnell/rigid2d/pkg/shapes"
	"github.com/cbodonnell/rigid2d/pkg/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSquare(t *testing.T, center vector.Vector, mass float64) *Body {
	t.Helper()
	return New(shapes.Rectangle(center, 2, 2), mass, polygon.Color{R: 1})
}

func TestNew_preconditions(t *testing.T) {
	tests := []struct {
		name  string
		shape []vector.Vector
		mass  float64
	}{
		{name: "two vertices", shape: []vector.Vector{{X: 0, Y: 0}, {X: 1, Y: 0}}, mass: 1},
		{name: "zero mass", shape: shapes.Rectangle(vector.Zero, 1, 1), mass: 0},
		{name: "negative mass", shape: shapes.Rectangle(vector.Zero, 1, 1), mass: -1},
		{name: "NaN mass", shape: shapes.Rectangle(vector.Zero, 1, 1), mass: math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() { New(tt.shape, tt.mass, polygon.Color{}) })
		})
	}

	assert.NotPanics(t, func() { New(shapes.Rectangle(vector.Zero, 1, 1), math.Inf(1), polygon.Color{}) })
}

func TestBody_accessors(t *testing.T) {
	b := newSquare(t, vector.New(3, 4), 2)
	other := newSquare(t, vector.Zero, 2)

	assert.NotEqual(t, b.ID(), other.ID())
	assert.Equal(t, 2.0, b.Mass())
	assert.False(t, b.IsStatic())
	assert.Equal(t, polygon.Color{R: 1}, b.Color())
	assert.InDelta(t, 3, b.Centroid().X, 1e-12)
	assert.InDelta(t, 4, b.Centroid().Y, 1e-12)

	b.SetCentroid(vector.New(-1, -1))
	assert.InDelta(t, -1, b.Centroid().X, 1e-12)
	assert.InDelta(t, -1, b.Centroid().Y, 1e-12)

	b.SetVelocity(vector.New(1, 2))
	assert.Equal(t, vector.New(1, 2), b.Velocity())

	b.SetRotation(math.Pi / 2)
	assert.Equal(t, math.Pi/2, b.Rotation())

	b.SetColor(polygon.Color{G: 1})
	assert.Equal(t, polygon.Color{G: 1}, b.Color())

	shape := b.Shape()
	require.Len(t, shape, 4)
	shape[0] = vector.New(1000, 1000)
	assert.NotEqual(t, vector.New(1000, 1000), b.Shape()[0])
}

func TestBody_accumulators(t *testing.T) {
	b := newSquare(t, vector.Zero, 1)
	b.AddForce(vector.New(1, 0))
	b.AddForce(vector.New(2, 3))
	b.AddImpulse(vector.New(0, -1))
	b.AddImpulse(vector.New(0, -1))

	assert.Equal(t, vector.New(3, 3), b.Force())
	assert.Equal(t, vector.New(0, -2), b.Impulse())

	b.Tick(0.1)
	assert.Equal(t, vector.Zero, b.Force())
	assert.Equal(t, vector.Zero, b.Impulse())
}

func TestBody_Tick(t *testing.T) {
	tests := []struct {
		name         string
		mass         float64
		velocity     vector.Vector
		force        vector.Vector
		impulse      vector.Vector
		dt           float64
		wantVelocity vector.Vector
		wantMove     vector.Vector
	}{
		{
			name:         "no net force keeps velocity and moves by v*dt",
			mass:         1,
			velocity:     vector.New(3, -4),
			dt:           0.5,
			wantVelocity: vector.New(3, -4),
			wantMove:     vector.New(1.5, -2),
		},
		{
			name:         "constant force matches closed-form displacement",
			mass:         2,
			velocity:     vector.New(1, 0),
			force:        vector.New(0, -20),
			dt:           0.25,
			wantVelocity: kinematic.FinalVelocity(vector.New(1, 0), 0.25, vector.New(0, -10)),
			wantMove:     kinematic.Displacement(vector.New(1, 0), 0.25, vector.New(0, -10)),
		},
		{
			name:         "impulse changes velocity immediately",
			mass:         4,
			velocity:     vector.Zero,
			impulse:      vector.New(8, 0),
			dt:           1,
			wantVelocity: vector.New(2, 0),
			wantMove:     vector.New(1, 0),
		},
		{
			name:         "infinite mass ignores force and impulse",
			mass:         math.Inf(1),
			velocity:     vector.New(5, 0),
			force:        vector.New(1e9, -1e9),
			impulse:      vector.New(-1e6, 3),
			dt:           0.1,
			wantVelocity: vector.New(5, 0),
			wantMove:     vector.New(0.5, 0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newSquare(t, vector.New(10, 10), tt.mass)
			b.SetVelocity(tt.velocity)
			b.AddForce(tt.force)
			b.AddImpulse(tt.impulse)
			before := b.Centroid()

			b.Tick(tt.dt)

			assert.InDelta(t, tt.wantVelocity.X, b.Velocity().X, 1e-12)
			assert.InDelta(t, tt.wantVelocity.Y, b.Velocity().Y, 1e-12)
			moved := b.Centroid().Subtract(before)
			assert.InDelta(t, tt.wantMove.X, moved.X, 1e-9)
			assert.InDelta(t, tt.wantMove.Y, moved.Y, 1e-9)
		})
	}
}

func TestBody_TickStoresEulerVelocity(t *testing.T) {
	b := newSquare(t, vector.Zero, 1)
	b.AddForce(vector.New(10, 0))
	b.Tick(1)

	// position used the averaged velocity (5), stored velocity is the full Euler step (10)
	assert.Equal(t, vector.New(10, 0), b.Velocity())
	assert.InDelta(t, 5, b.Centroid().X, 1e-12)
}

func TestBody_Remove(t *testing.T) {
	b := newSquare(t, vector.Zero, 1)
	assert.False(t, b.IsRemoved())
	b.Remove()
	b.Remove()
	assert.True(t, b.IsRemoved())
}

func TestBody_Free(t *testing.T) {
	type tag struct{ name string }
	freed := 0
	var got interface{}
	b := NewWithInfo(shapes.Rectangle(vector.Zero, 1, 1), 1, polygon.Color{}, &tag{name: "bullet"}, func(info interface{}) {
		freed++
		got = info
	})

	assert.Equal(t, "bullet", b.Info().(*tag).name)
	b.Free()
	b.Free()

	assert.Equal(t, 1, freed)
	assert.Equal(t, "bullet", got.(*tag).name)
	assert.Nil(t, b.Info())

	noFreer := New(shapes.Rectangle(vector.Zero, 1, 1), 1, polygon.Color{})
	assert.NotPanics(t, noFreer.Free)
}
