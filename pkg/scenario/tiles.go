package scenario

import (
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/cbodonnell/rigid2d/pkg/polygon"
	"github.com/cbodonnell/rigid2d/pkg/vector"
)

// TileTag is the default tag given to generated tiles.
const TileTag = "tile"

type TileRowsOptions struct {
	Seed       int64
	Rows       int
	PerRow     int
	Left       float64
	Width      float64
	BaseY      float64
	RowSpacing float64
	TileWidth  float64
	TileHeight float64
	// Jitter is the largest horizontal offset noise may apply to a tile.
	Jitter float64
	Tag    string
	Color  polygon.Color
}

// TileRows lays out rows of immovable platform tiles. Each row is spread
// evenly across the width and nudged sideways by Perlin noise, so the same
// seed always yields the same layout.
func TileRows(opts TileRowsOptions) []BodySpec {
	if opts.Rows <= 0 || opts.PerRow <= 0 {
		return nil
	}
	tag := opts.Tag
	if tag == "" {
		tag = TileTag
	}

	noise := perlin.NewPerlin(2, 2, 3, opts.Seed)
	slot := opts.Width / float64(opts.PerRow)
	minX := opts.Left + opts.TileWidth/2
	maxX := opts.Left + opts.Width - opts.TileWidth/2

	tiles := make([]BodySpec, 0, opts.Rows*opts.PerRow)
	for row := 0; row < opts.Rows; row++ {
		y := opts.BaseY + float64(row)*opts.RowSpacing
		for col := 0; col < opts.PerRow; col++ {
			sample := float64(row) + (float64(col)+0.5)/float64(opts.PerRow)
			x := opts.Left + (float64(col)+0.5)*slot + opts.Jitter*noise.Noise1D(sample)
			x = math.Max(minX, math.Min(maxX, x))
			tiles = append(tiles, BodySpec{
				Name: fmt.Sprintf("%s-%d-%d", tag, row, col),
				Shape: ShapeSpec{
					Kind:   ShapeRectangle,
					Width:  opts.TileWidth,
					Height: opts.TileHeight,
				},
				Mass:     Infinite,
				Color:    opts.Color,
				Position: vector.New(x, y),
				Tags:     []string{tag},
			})
		}
	}
	return tiles
}
