package forces

import (
	"math"
	"testing"

	"github.com/cbodonnell/rigid2d/pkg/body"
	"github.com/cbodonnell/rigid2d/pkg/kinematic"
	"github.com/cbodonnell/rigid2d/pkg/polygon"
	"github.com/cbodonnell/rigid2d/pkg/scene"
	"github.com/cbodonnell/rigid2d/pkg/shapes"
	"github.com/cbodonnell/rigid2d/pkg/vector"
	"github.com/stretchr/testify/assert"
)

func newSquare(center vector.Vector, mass float64) *body.Body {
	return body.New(shapes.Rectangle(center, 1, 1), mass, polygon.Color{})
}

func newScene(bodies ...*body.Body) *scene.Scene {
	s := scene.New()
	for _, b := range bodies {
		s.AddBody(b)
	}
	return s
}

func assertVelocity(t *testing.T, want vector.Vector, b *body.Body) {
	t.Helper()
	assert.InDelta(t, want.X, b.Velocity().X, 1e-9, "vx")
	assert.InDelta(t, want.Y, b.Velocity().Y, 1e-9, "vy")
}

func TestCreateNewtonianGravity(t *testing.T) {
	tests := []struct {
		name       string
		separation float64
		wantV1     vector.Vector
		wantV2     vector.Vector
	}{
		{
			name:       "bodies attract",
			separation: 10,
			wantV1:     vector.New(1, 0),
			wantV2:     vector.New(-1, 0),
		},
		{
			name:       "closer than the minimum distance",
			separation: 1,
			wantV1:     vector.Zero,
			wantV2:     vector.Zero,
		},
		{
			name:       "exactly the minimum distance",
			separation: MinDistance,
			wantV1:     vector.Zero,
			wantV2:     vector.Zero,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b1 := newSquare(vector.Zero, 1e3)
			b2 := newSquare(vector.New(tt.separation, 0), 1e3)
			s := newScene(b1, b2)
			CreateNewtonianGravity(s, 1, b1, b2)

			s.Advance(0.1)
			assertVelocity(t, tt.wantV1, b1)
			assertVelocity(t, tt.wantV2, b2)
		})
	}
}

func TestCreateSpring(t *testing.T) {
	b1 := newSquare(vector.Zero, 1)
	b2 := newSquare(vector.New(3, 0), 1)
	s := newScene(b1, b2)
	CreateSpring(s, 2, b1, b2)

	s.Advance(0.5)
	assertVelocity(t, vector.New(3, 0), b1)
	assertVelocity(t, vector.New(-3, 0), b2)

	same := newSquare(vector.Zero, 1)
	other := newSquare(vector.Zero, 1)
	s = newScene(same, other)
	CreateSpring(s, 2, same, other)
	s.Advance(1)
	assertVelocity(t, vector.Zero, same)
}

func TestCreateDrag(t *testing.T) {
	moving := newSquare(vector.Zero, 2)
	moving.SetVelocity(vector.New(4, 0))
	resting := newSquare(vector.New(5, 0), 2)
	s := newScene(moving, resting)
	CreateDrag(s, 0.5, moving)
	CreateDrag(s, 0.5, resting)

	s.Advance(1)
	assertVelocity(t, vector.New(3, 0), moving)
	assertVelocity(t, vector.Zero, resting)
}

func TestCreateConstantForce(t *testing.T) {
	falling := newSquare(vector.Zero, 3)
	floor := newSquare(vector.New(0, -10), math.Inf(1))
	s := newScene(falling, floor)
	acceleration := vector.New(0, kinematic.Gravity)
	CreateConstantForce(s, acceleration, falling)
	CreateConstantForce(s, acceleration, floor)

	s.Advance(0.5)
	want := kinematic.Displacement(vector.Zero, 0.5, acceleration)
	assert.InDelta(t, want.Y, falling.Centroid().Y, 1e-9)
	assertVelocity(t, kinematic.FinalVelocity(vector.Zero, 0.5, acceleration), falling)
	assertVelocity(t, vector.Zero, floor)
}

func TestPhysicsCollision(t *testing.T) {
	tests := []struct {
		name       string
		m1, m2     float64
		v1, v2     vector.Vector
		elasticity float64
		wantV1     vector.Vector
		wantV2     vector.Vector
	}{
		{
			name:       "equal masses exchange velocities",
			m1:         1,
			m2:         1,
			v1:         vector.New(1, 0),
			v2:         vector.New(-1, 0),
			elasticity: 1,
			wantV1:     vector.New(-1, 0),
			wantV2:     vector.New(1, 0),
		},
		{
			name:       "perfectly inelastic equal masses stop",
			m1:         1,
			m2:         1,
			v1:         vector.New(1, 0),
			v2:         vector.New(-1, 0),
			elasticity: 0,
			wantV1:     vector.Zero,
			wantV2:     vector.Zero,
		},
		{
			name:       "infinite mass reflects the finite body",
			m1:         2,
			m2:         math.Inf(1),
			v1:         vector.New(3, 0),
			v2:         vector.Zero,
			elasticity: 1,
			wantV1:     vector.New(-3, 0),
			wantV2:     vector.Zero,
		},
		{
			name:       "two infinite masses are untouched",
			m1:         math.Inf(1),
			m2:         math.Inf(1),
			v1:         vector.New(1, 0),
			v2:         vector.New(-1, 0),
			elasticity: 1,
			wantV1:     vector.New(1, 0),
			wantV2:     vector.New(-1, 0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b1 := newSquare(vector.Zero, tt.m1)
			b2 := newSquare(vector.New(0.9, 0), tt.m2)
			b1.SetVelocity(tt.v1)
			b2.SetVelocity(tt.v2)
			s := newScene(b1, b2)
			CreatePhysicsCollision(s, b1, b2, tt.elasticity)

			s.Advance(0.01)
			assertVelocity(t, tt.wantV1, b1)
			assertVelocity(t, tt.wantV2, b2)
		})
	}
}

func TestCreateCollision_debounce(t *testing.T) {
	b1 := newSquare(vector.Zero, 1)
	b2 := newSquare(vector.New(0.9, 0), 1)
	s := newScene(b1, b2)

	calls := 0
	var axes []vector.Vector
	CreateCollision(s, b1, b2, func(_, _ *body.Body, axis vector.Vector, aux interface{}, forceConst float64) {
		calls++
		axes = append(axes, axis)
		assert.Equal(t, "aux", aux)
		assert.Equal(t, 2.5, forceConst)
	}, "aux", 2.5)

	for i := 0; i < 5; i++ {
		s.Advance(0.01)
	}
	assert.Equal(t, 1, calls, "continuous overlap fires once")

	b2.SetCentroid(vector.New(5, 0))
	s.Advance(0.01)
	assert.Equal(t, 1, calls)

	b2.SetCentroid(vector.New(0.9, 0))
	s.Advance(0.01)
	assert.Equal(t, 2, calls)
	for _, axis := range axes {
		assert.InDelta(t, 1, math.Abs(axis.X), 1e-12)
	}
}

type freeCounter struct {
	freed int
}

func (f *freeCounter) Free() {
	f.freed++
}

func TestCreateCollision_freesAux(t *testing.T) {
	b1 := newSquare(vector.Zero, 1)
	b2 := newSquare(vector.New(10, 0), 1)
	s := newScene(b1, b2)
	aux := &freeCounter{}
	CreateCollision(s, b1, b2, DestructiveCollisionHandler, aux, 0)

	b2.Remove()
	s.Advance(0.01)
	assert.Equal(t, 0, s.ForceCreators())
	assert.Equal(t, 1, aux.freed)
}

func TestCreateDestructiveCollision(t *testing.T) {
	bullet := newSquare(vector.Zero, 1)
	target := newSquare(vector.New(0.5, 0.5), 1)
	bystander := newSquare(vector.New(20, 0), 1)
	s := newScene(bullet, target, bystander)
	CreateDestructiveCollision(s, bullet, target)
	CreateDestructiveCollision(s, bullet, bystander)

	s.Advance(0.01)
	assert.Equal(t, 1, s.Bodies())
	assert.Same(t, bystander, s.GetBody(0))
	assert.Equal(t, 0, s.ForceCreators())
	assert.False(t, bystander.IsRemoved())
}

func TestCreateOneWayCollision(t *testing.T) {
	tests := []struct {
		name     string
		velocity vector.Vector
		want     vector.Vector
	}{
		{
			name:     "falling body bounces",
			velocity: vector.New(1, -3),
			want:     vector.New(1, 10),
		},
		{
			name:     "rising body passes through",
			velocity: vector.New(1, 3),
			want:     vector.New(1, 3),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tile := body.New(shapes.Rectangle(vector.Zero, 4, 1), math.Inf(1), polygon.Color{B: 1})
			player := newSquare(vector.New(0, 0.8), 1)
			player.SetVelocity(tt.velocity)
			s := newScene(player, tile)
			CreateOneWayCollision(s, player, tile, 1, 10)

			s.Advance(0.001)
			assertVelocity(t, tt.want, player)
			assertVelocity(t, vector.Zero, tile)
		})
	}
}
