package messages

import (
	"math"

	"github.com/cbodonnell/rigid2d/pkg/body"
	"github.com/cbodonnell/rigid2d/pkg/polygon"
	"github.com/cbodonnell/rigid2d/pkg/scenario"
	"github.com/cbodonnell/rigid2d/pkg/vector"
	"github.com/google/uuid"
)

// Snapshot is the observable state of a scene after one tick.
type Snapshot struct {
	Tick      int64       `json:"tick"`
	Timestamp int64       `json:"timestamp"`
	Scenario  string      `json:"scenario"`
	World     World       `json:"world"`
	Bodies    []BodyState `json:"bodies"`
	Contacts  []Contact   `json:"contacts"`
}

type World struct {
	Origin vector.Vector `json:"origin"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
}

// BodyState describes one body. Mass is nil for an immovable body.
type BodyState struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name,omitempty"`
	Tags     []string        `json:"tags,omitempty"`
	Centroid vector.Vector   `json:"centroid"`
	Velocity vector.Vector   `json:"velocity"`
	Rotation float64         `json:"rotation"`
	Mass     *float64        `json:"mass"`
	Color    polygon.Color   `json:"color"`
	Vertices []vector.Vector `json:"vertices"`
}

// Contact is a pair of bodies that overlapped at the end of a tick.
type Contact struct {
	A    uuid.UUID     `json:"a"`
	B    uuid.UUID     `json:"b"`
	Axis vector.Vector `json:"axis"`
}

func NewBodyState(b *body.Body) BodyState {
	state := BodyState{
		ID:       b.ID(),
		Centroid: b.Centroid(),
		Velocity: b.Velocity(),
		Rotation: b.Rotation(),
		Color:    b.Color(),
		Vertices: b.Shape(),
	}
	if mass := b.Mass(); !math.IsInf(mass, 1) {
		state.Mass = &mass
	}
	if tag, ok := b.Info().(*scenario.Tag); ok {
		state.Name = tag.Name
		state.Tags = append([]string(nil), tag.Tags...)
	}
	return state
}

// IsStatic reports whether the body has infinite mass.
func (s BodyState) IsStatic() bool {
	return s.Mass == nil
}

// Body returns the state of the body with the given id.
func (s *Snapshot) Body(id uuid.UUID) (BodyState, bool) {
	for _, b := range s.Bodies {
		if b.ID == id {
			return b, true
		}
	}
	return BodyState{}, false
}

// BodyByName returns the first body with the given name.
func (s *Snapshot) BodyByName(name string) (BodyState, bool) {
	for _, b := range s.Bodies {
		if b.Name == name {
			return b, true
		}
	}
	return BodyState{}, false
}

// Copy returns a deep copy of s.
func (s *Snapshot) Copy() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Bodies = make([]BodyState, len(s.Bodies))
	for i, b := range s.Bodies {
		bc := b
		if b.Mass != nil {
			mass := *b.Mass
			bc.Mass = &mass
		}
		bc.Tags = append([]string(nil), b.Tags...)
		bc.Vertices = append([]vector.Vector(nil), b.Vertices...)
		c.Bodies[i] = bc
	}
	if s.Contacts != nil {
		c.Contacts = make([]Contact, len(s.Contacts))
		copy(c.Contacts, s.Contacts)
	}
	return &c
}
