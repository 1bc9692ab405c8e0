package scenario

import (
	"github.com/cbodonnell/rigid2d/pkg/polygon"
	"github.com/cbodonnell/rigid2d/pkg/vector"
)

const (
	DemoWidth  = 800
	DemoHeight = 600

	demoGravity     = -900
	demoBounceSpeed = 700
)

// Demo is the built-in scenario: a player bouncing up a field of tiles, a
// pair of colliding balls, a spring-bound weight and an orbiting pair.
func Demo() *Scenario {
	sc := &Scenario{
		Name: "demo",
		World: World{
			Width:    DemoWidth,
			Height:   DemoHeight,
			CellSize: 32,
		},
	}

	sc.Bodies = append(sc.Bodies, BodySpec{
		Name:     "player",
		Shape:    ShapeSpec{Kind: ShapeOval, Radius: 15, RadiusY: 20, Sides: 24},
		Mass:     10,
		Color:    polygon.Color{R: 1, G: 1, B: 1},
		Position: vector.New(200, 520),
		Tags:     []string{"player"},
	})
	sc.Bodies = append(sc.Bodies, TileRows(TileRowsOptions{
		Seed:       7,
		Rows:       4,
		PerRow:     3,
		Left:       0,
		Width:      400,
		BaseY:      40,
		RowSpacing: 120,
		TileWidth:  80,
		TileHeight: 12,
		Jitter:     60,
		Color:      polygon.Color{B: 1},
	})...)

	sc.Bodies = append(sc.Bodies,
		BodySpec{
			Name:     "ball-left",
			Shape:    ShapeSpec{Kind: ShapeRegular, Radius: 20, Sides: 12},
			Mass:     5,
			Color:    polygon.Color{R: 1, G: 0.5},
			Position: vector.New(480, 500),
			Velocity: vector.New(80, 0),
			Tags:     []string{"ball"},
		},
		BodySpec{
			Name:          "ball-right",
			Shape:         ShapeSpec{Kind: ShapeRegular, Radius: 20, Sides: 12},
			Mass:          5,
			Color:         polygon.Color{R: 1, G: 0.5},
			Position:      vector.New(720, 500),
			Velocity:      vector.New(-80, 0),
			RotationSpeed: 1,
			Tags:          []string{"ball"},
		},
		BodySpec{
			Name:     "anchor",
			Shape:    ShapeSpec{Kind: ShapeTriangle, Width: 30, Height: 20},
			Mass:     Infinite,
			Color:    polygon.Color{G: 1},
			Position: vector.New(600, 400),
		},
		BodySpec{
			Name:     "weight",
			Shape:    ShapeSpec{Kind: ShapeRectangle, Width: 24, Height: 24},
			Mass:     2,
			Color:    polygon.Color{G: 0.8, B: 0.4},
			Position: vector.New(600, 300),
			Velocity: vector.New(60, 0),
		},
		BodySpec{
			Name:     "sun",
			Shape:    ShapeSpec{Kind: ShapeOval, Radius: 25, Sides: 20},
			Mass:     1e6,
			Color:    polygon.Color{R: 1, G: 0.9},
			Position: vector.New(600, 150),
		},
		BodySpec{
			Name:     "planet",
			Shape:    ShapeSpec{Kind: ShapeOval, Radius: 6, Sides: 12},
			Mass:     1,
			Color:    polygon.Color{R: 0.4, G: 0.6, B: 1},
			Position: vector.New(680, 150),
			Velocity: vector.New(0, 350),
		},
	)

	sc.Interactions = []InteractionSpec{
		{Kind: InteractionConstant, Bodies: []string{"player", "weight"}, Vector: vector.New(0, demoGravity)},
		{Kind: InteractionOneWay, Bodies: []string{"player", TagPrefix + TileTag}, Constant: 1, Speed: demoBounceSpeed},
		{Kind: InteractionPhysics, Bodies: []string{TagPrefix + "ball", TagPrefix + "ball"}, Constant: 1},
		{Kind: InteractionSpring, Bodies: []string{"anchor", "weight"}, Constant: 20},
		{Kind: InteractionDrag, Bodies: []string{"weight"}, Constant: 0.5},
		{Kind: InteractionGravity, Bodies: []string{"sun", "planet"}, Constant: 10},
	}
	return sc
}
