// Package view holds the display-independent parts of the viewers: mapping
// a snapshot's world onto a screen and the sources snapshots come from.
package view

import (
	"math"

	"github.com/cbodonnell/rigid2d/pkg/messages"
	"github.com/cbodonnell/rigid2d/pkg/vector"
)

// Viewport maps world coordinates, y up, onto a screen, y down. The world
// keeps its aspect ratio and is centered on the screen.
type Viewport struct {
	origin  vector.Vector
	scale   float64
	offsetX float64
	offsetY float64
	height  float64
}

func NewViewport(world messages.World, screenWidth, screenHeight float64) Viewport {
	v := Viewport{origin: world.Origin, height: screenHeight}
	if !(world.Width > 0) || !(world.Height > 0) {
		v.scale = 1
		return v
	}
	v.scale = math.Min(screenWidth/world.Width, screenHeight/world.Height)
	v.offsetX = (screenWidth - world.Width*v.scale) / 2
	v.offsetY = (screenHeight - world.Height*v.scale) / 2
	return v
}

// Scale is the number of screen units per world unit.
func (v Viewport) Scale() float64 {
	return v.scale
}

func (v Viewport) ToScreen(p vector.Vector) (x, y float64) {
	x = (p.X-v.origin.X)*v.scale + v.offsetX
	y = v.height - ((p.Y-v.origin.Y)*v.scale + v.offsetY)
	return x, y
}

func (v Viewport) ToWorld(x, y float64) vector.Vector {
	return vector.New(
		(x-v.offsetX)/v.scale+v.origin.X,
		(v.height-y-v.offsetY)/v.scale+v.origin.Y,
	)
}
