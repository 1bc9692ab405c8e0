package view

import (
	"math"

	"github.com/cbodonnell/rigid2d/pkg/messages"
	"github.com/cbodonnell/rigid2d/pkg/polygon"
	"github.com/cbodonnell/rigid2d/pkg/vector"
)

// Empty marks a raster cell that no body covers.
const Empty = -1

// CellAspect is the height of a terminal cell relative to its width.
const CellAspect = 2

// Rasterize samples the snapshot at the center of each of cols x rows
// terminal cells. Each cell holds the index of the last body covering it
// or Empty.
func Rasterize(snapshot *messages.Snapshot, cols, rows int) [][]int {
	grid := make([][]int, rows)
	for r := range grid {
		grid[r] = make([]int, cols)
		for c := range grid[r] {
			grid[r][c] = Empty
		}
	}
	if snapshot == nil || cols <= 0 || rows <= 0 {
		return grid
	}

	viewport := NewViewport(snapshot.World, float64(cols), float64(rows*CellAspect))
	for i, b := range snapshot.Bodies {
		shape := polygon.New(b.Vertices, b.Velocity, 0, b.Color)
		min, max := shape.Bounds()
		// screen y grows downward, so max.Y gives the top row
		left, top := viewport.ToScreen(vector.New(min.X, max.Y))
		right, bottom := viewport.ToScreen(vector.New(max.X, min.Y))
		c0, c1 := clamp(math.Floor(left), cols), clamp(math.Floor(right)+1, cols)
		r0, r1 := clamp(math.Floor(top/CellAspect), rows), clamp(math.Floor(bottom/CellAspect)+1, rows)
		for r := r0; r < r1; r++ {
			for c := c0; c < c1; c++ {
				p := viewport.ToWorld(float64(c)+0.5, (float64(r)+0.5)*CellAspect)
				if shape.Contains(p) {
					grid[r][c] = i
				}
			}
		}
	}
	return grid
}

func clamp(f float64, n int) int {
	if !(f > 0) {
		return 0
	}
	if f > float64(n) {
		return n
	}
	return int(f)
}
