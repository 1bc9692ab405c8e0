package scenario

import (
	"fmt"
	"math"
	"strings"

	"github.com/cbodonnell/rigid2d/pkg/body"
	"github.com/cbodonnell/rigid2d/pkg/forces"
	"github.com/cbodonnell/rigid2d/pkg/polygon"
	"github.com/cbodonnell/rigid2d/pkg/scene"
	"github.com/cbodonnell/rigid2d/pkg/shapes"
	"github.com/cbodonnell/rigid2d/pkg/vector"
)

// MaxCoordinate bounds vertex coordinates and body speeds so that areas,
// centroids and snapshots stay finite.
const MaxCoordinate = 1e9

// Validate checks everything Build needs so that no kernel precondition can
// fail on a scenario that passes.
func Validate(sc *Scenario) error {
	if sc == nil {
		return fmt.Errorf("scenario is nil")
	}
	if !(sc.World.Width > 0) || !(sc.World.Height > 0) {
		return fmt.Errorf("world must have a positive width and height")
	}

	names := make(map[string]int, len(sc.Bodies))
	for i, spec := range sc.Bodies {
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("body %d (%s): %v", i, spec.Name, err)
		}
		if spec.Name == "" {
			continue
		}
		if strings.HasPrefix(spec.Name, TagPrefix) {
			return fmt.Errorf("body %d: name %q must not start with %q", i, spec.Name, TagPrefix)
		}
		if j, ok := names[spec.Name]; ok {
			return fmt.Errorf("body %d: name %q already used by body %d", i, spec.Name, j)
		}
		names[spec.Name] = i
	}

	for i, interaction := range sc.Interactions {
		if err := validateInteraction(sc, interaction); err != nil {
			return fmt.Errorf("interaction %d (%s): %v", i, interaction.Kind, err)
		}
	}
	return nil
}

func (spec BodySpec) Validate() error {
	mass := float64(spec.Mass)
	if !(mass > 0) {
		return fmt.Errorf("mass must be positive or \"inf\", got %v", mass)
	}
	if !spec.Position.IsFinite() || !spec.Velocity.IsFinite() {
		return fmt.Errorf("position and velocity must be finite")
	}
	if math.IsNaN(spec.Rotation) || math.IsInf(spec.Rotation, 0) ||
		math.IsNaN(spec.RotationSpeed) || math.IsInf(spec.RotationSpeed, 0) {
		return fmt.Errorf("rotation and rotation speed must be finite")
	}
	if spec.Velocity.Length() > MaxCoordinate {
		return fmt.Errorf("speed must not exceed %g", MaxCoordinate)
	}
	vertices, err := spec.Vertices()
	if err != nil {
		return err
	}
	return checkOutline(vertices)
}

// checkOutline rejects outlines the kernel cannot integrate: coordinates
// beyond MaxCoordinate and loops whose area is zero or not finite.
func checkOutline(vertices []vector.Vector) error {
	for i, v := range vertices {
		if !v.IsFinite() || math.Abs(v.X) > MaxCoordinate || math.Abs(v.Y) > MaxCoordinate {
			return fmt.Errorf("vertex %d %v is outside +/-%g", i, v, MaxCoordinate)
		}
	}
	area := polygon.New(vertices, vector.Zero, 0, polygon.Color{}).Area()
	if !(area > 0) || math.IsInf(area, 0) {
		return fmt.Errorf("outline area must be positive and finite, got %v", area)
	}
	return nil
}

// Vertices returns the body's counter-clockwise outline at its position.
func (spec BodySpec) Vertices() ([]vector.Vector, error) {
	s := spec.Shape
	center := spec.Position
	switch s.Kind {
	case ShapeRectangle:
		if !(s.Width > 0) || !(s.Height > 0) {
			return nil, fmt.Errorf("rect needs a positive width and height")
		}
		return shapes.Rectangle(center, s.Width, s.Height), nil
	case ShapeOval:
		radiusY := s.RadiusY
		if radiusY == 0 {
			radiusY = s.Radius
		}
		if !(s.Radius > 0) || !(radiusY > 0) {
			return nil, fmt.Errorf("oval needs a positive radius")
		}
		return shapes.Oval(center, s.Radius, radiusY, sidesOrDefault(s.Sides)), nil
	case ShapeRegular:
		if !(s.Radius > 0) {
			return nil, fmt.Errorf("regular needs a positive radius")
		}
		if s.Sides != 0 && s.Sides < 3 {
			return nil, fmt.Errorf("regular needs at least 3 sides, got %d", s.Sides)
		}
		return shapes.RegularPolygon(center, s.Radius, sidesOrDefault(s.Sides)), nil
	case ShapeTriangle:
		if !(s.Width > 0) || !(s.Height > 0) {
			return nil, fmt.Errorf("triangle needs a positive width and height")
		}
		return shapes.Triangle(center, s.Width, s.Height), nil
	case ShapePoints:
		if len(s.Points) < 3 {
			return nil, fmt.Errorf("points needs at least 3 vertices, got %d", len(s.Points))
		}
		points := make([]vector.Vector, len(s.Points))
		for i, p := range s.Points {
			if !p.IsFinite() {
				return nil, fmt.Errorf("vertex %d is not finite", i)
			}
			points[i] = p.Add(center)
		}
		if !shapes.IsConvex(points) || !shapes.IsCounterClockwise(points) {
			return nil, fmt.Errorf("points must form a convex counter-clockwise loop")
		}
		return points, nil
	default:
		return nil, fmt.Errorf("unknown shape kind %q", s.Kind)
	}
}

func sidesOrDefault(sides int) int {
	if sides < 3 {
		return DefaultOvalSides
	}
	return sides
}

// NewBody builds a body from a validated spec. Its info payload is a *Tag.
func (spec BodySpec) NewBody() (*body.Body, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	vertices, _ := spec.Vertices()
	tags := make([]string, len(spec.Tags))
	copy(tags, spec.Tags)
	b := body.NewWithInfo(vertices, float64(spec.Mass), spec.Color, &Tag{Name: spec.Name, Tags: tags}, nil)
	b.SetVelocity(spec.Velocity)
	if spec.Rotation != 0 {
		b.SetRotation(spec.Rotation)
	}
	b.SetRotationSpeed(spec.RotationSpeed)
	return b, nil
}

// Build validates sc and returns a scene holding its bodies and
// interactions, along with the named bodies.
func Build(sc *Scenario) (*scene.Scene, map[string]*body.Body, error) {
	if err := Validate(sc); err != nil {
		return nil, nil, fmt.Errorf("invalid scenario: %v", err)
	}

	s := scene.New()
	named := make(map[string]*body.Body)
	for i, spec := range sc.Bodies {
		b, err := spec.NewBody()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build body %d: %v", i, err)
		}
		s.AddBody(b)
		if spec.Name != "" {
			named[spec.Name] = b
		}
	}

	for i, interaction := range sc.Interactions {
		if err := Wire(s, interaction, nil); err != nil {
			return nil, nil, fmt.Errorf("failed to wire interaction %d: %v", i, err)
		}
	}
	return s, named, nil
}

// Wire registers interaction on s. When only is non-nil, only force
// creators involving that body are registered, which is how a body added to
// a running scene joins the scenario's existing interactions.
func Wire(s *scene.Scene, interaction InteractionSpec, only *body.Body) error {
	groups := make([][]*body.Body, len(interaction.Bodies))
	for i, selector := range interaction.Bodies {
		groups[i] = Select(s, selector)
	}

	switch interaction.Kind {
	case InteractionDrag, InteractionConstant:
		for _, group := range groups {
			for _, b := range group {
				if only != nil && b != only {
					continue
				}
				if interaction.Kind == InteractionDrag {
					forces.CreateDrag(s, interaction.Constant, b)
				} else {
					forces.CreateConstantForce(s, interaction.Vector, b)
				}
			}
		}
		return nil
	}

	if len(groups) != 2 {
		return fmt.Errorf("%s needs exactly 2 body selectors, got %d", interaction.Kind, len(groups))
	}
	seen := make(map[[2]*body.Body]bool)
	for _, b1 := range groups[0] {
		for _, b2 := range groups[1] {
			if b1 == b2 || seen[[2]*body.Body{b1, b2}] || seen[[2]*body.Body{b2, b1}] {
				continue
			}
			if only != nil && b1 != only && b2 != only {
				continue
			}
			seen[[2]*body.Body{b1, b2}] = true
			if err := wirePair(s, interaction, b1, b2); err != nil {
				return err
			}
		}
	}
	return nil
}

func wirePair(s *scene.Scene, interaction InteractionSpec, b1, b2 *body.Body) error {
	switch interaction.Kind {
	case InteractionGravity:
		if b1.IsStatic() || b2.IsStatic() {
			return fmt.Errorf("gravity needs finite masses")
		}
		forces.CreateNewtonianGravity(s, interaction.Constant, b1, b2)
	case InteractionSpring:
		forces.CreateSpring(s, interaction.Constant, b1, b2)
	case InteractionPhysics:
		forces.CreatePhysicsCollision(s, b1, b2, interaction.Constant)
	case InteractionDestructive:
		forces.CreateDestructiveCollision(s, b1, b2)
	case InteractionOneWay:
		forces.CreateOneWayCollision(s, b1, b2, interaction.Constant, interaction.Speed)
	default:
		return fmt.Errorf("unknown interaction kind %q", interaction.Kind)
	}
	return nil
}

// Select returns the live bodies of s matching selector, in scene order.
// Bodies without a *Tag payload never match.
func Select(s *scene.Scene, selector string) []*body.Body {
	var matched []*body.Body
	tag, byTag := strings.CutPrefix(selector, TagPrefix)
	s.Each(func(_ int, b *body.Body) {
		info, ok := b.Info().(*Tag)
		if !ok || b.IsRemoved() {
			return
		}
		if (byTag && info.HasTag(tag)) || (!byTag && info.Name == selector) {
			matched = append(matched, b)
		}
	})
	return matched
}

func validateInteraction(sc *Scenario, interaction InteractionSpec) error {
	switch interaction.Kind {
	case InteractionDrag, InteractionConstant:
		if len(interaction.Bodies) == 0 {
			return fmt.Errorf("needs at least one body selector")
		}
		if !interaction.Vector.IsFinite() {
			return fmt.Errorf("vector must be finite")
		}
	case InteractionGravity, InteractionSpring, InteractionPhysics, InteractionDestructive, InteractionOneWay:
		if len(interaction.Bodies) != 2 {
			return fmt.Errorf("needs exactly 2 body selectors, got %d", len(interaction.Bodies))
		}
	default:
		return fmt.Errorf("unknown interaction kind %q", interaction.Kind)
	}
	if math.IsNaN(interaction.Constant) || math.IsInf(interaction.Constant, 0) {
		return fmt.Errorf("constant must be finite")
	}

	for _, selector := range interaction.Bodies {
		if !selectsAny(sc, selector) {
			return fmt.Errorf("selector %q matches no body", selector)
		}
	}

	if interaction.Kind == InteractionGravity {
		for _, selector := range interaction.Bodies {
			for _, spec := range sc.Bodies {
				if specMatches(spec, selector) && math.IsInf(float64(spec.Mass), 1) {
					return fmt.Errorf("gravity needs finite masses, %q is immovable", spec.Name)
				}
			}
		}
	}
	return nil
}

func selectsAny(sc *Scenario, selector string) bool {
	for _, spec := range sc.Bodies {
		if specMatches(spec, selector) {
			return true
		}
	}
	return false
}

func specMatches(spec BodySpec, selector string) bool {
	if tag, ok := strings.CutPrefix(selector, TagPrefix); ok {
		for _, have := range spec.Tags {
			if have == tag {
				return true
			}
		}
		return false
	}
	return spec.Name != "" && spec.Name == selector
}
