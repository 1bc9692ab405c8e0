package kinematic

import (
	"testing"

	"github.com/cbodonnell/rigid2d/pkg/vector"
	"github.com/stretchr/testify/assert"
)

func TestDisplacement(t *testing.T) {
	tests := []struct {
		name string
		v0   vector.Vector
		time float64
		a    vector.Vector
		want vector.Vector
	}{
		{name: "at rest", v0: vector.Zero, time: 2, a: vector.Zero, want: vector.Zero},
		{name: "constant velocity", v0: vector.New(3, -1), time: 2, a: vector.Zero, want: vector.New(6, -2)},
		{name: "free fall", v0: vector.Zero, time: 1, a: vector.New(0, Gravity), want: vector.New(0, -4.9)},
		{name: "projectile", v0: vector.New(10, 10), time: 2, a: vector.New(0, -10), want: vector.New(20, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Displacement(tt.v0, tt.time, tt.a)
			assert.InDelta(t, tt.want.X, got.X, 1e-12)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-12)
		})
	}
}

func TestFinalVelocity(t *testing.T) {
	got := FinalVelocity(vector.New(10, 10), 2, vector.New(0, -10))
	assert.Equal(t, vector.New(10, -10), got)
}
