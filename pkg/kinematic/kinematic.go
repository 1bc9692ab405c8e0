package kinematic

// This package includes closed-form constant-acceleration kinematics over vectors.

import (
	"github.com/cbodonnell/rigid2d/pkg/vector"
)

const (
	// Gravity is the standard surface gravity in m/s^2, pointing down the y axis.
	Gravity float64 = -9.8
)

// Displacement returns the displacement of an object given its initial velocity, time, and acceleration.
func Displacement(initialVelocity vector.Vector, time float64, acceleration vector.Vector) vector.Vector {
	return initialVelocity.Multiply(time).Add(acceleration.Multiply(0.5 * time * time))
}

// FinalVelocity returns the final velocity of an object given its initial velocity, time, and acceleration.
func FinalVelocity(initialVelocity vector.Vector, time float64, acceleration vector.Vector) vector.Vector {
	return initialVelocity.Add(acceleration.Multiply(time))
}
