package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector_arithmetic(t *testing.T) {
	a := New(1, 2)
	b := New(3, -4)

	assert.Equal(t, New(4, -2), a.Add(b))
	assert.Equal(t, New(-2, 6), a.Subtract(b))
	assert.Equal(t, New(-1, -2), a.Negate())
	assert.Equal(t, New(2.5, 5), a.Multiply(2.5))
	assert.Equal(t, -5.0, a.Dot(b))
	assert.Equal(t, -10.0, a.Cross(b))
	assert.Equal(t, 5.0, b.Length())
}

func TestVector_Rotate(t *testing.T) {
	tests := []struct {
		name  string
		v     Vector
		angle float64
		want  Vector
	}{
		{name: "quarter turn", v: New(1, 0), angle: math.Pi / 2, want: New(0, 1)},
		{name: "half turn", v: New(1, 2), angle: math.Pi, want: New(-1, -2)},
		{name: "no turn", v: New(3, 4), angle: 0, want: New(3, 4)},
		{name: "negative quarter turn", v: New(0, 2), angle: -math.Pi / 2, want: New(2, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Rotate(tt.angle)
			assert.InDelta(t, tt.want.X, got.X, 1e-12)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-12)
		})
	}
}

func TestVector_UnitAndPerpendicular(t *testing.T) {
	u := New(0, -3).Unit()
	assert.Equal(t, New(0, -1), u)

	p := New(2, 5).Perpendicular()
	assert.Equal(t, New(5, -2), p)
	assert.Equal(t, 0.0, p.Dot(New(2, 5)))

	assert.True(t, New(1, 1).IsFinite())
	assert.False(t, Zero.Unit().IsFinite())
	assert.False(t, New(math.Inf(1), 0).IsFinite())
}
