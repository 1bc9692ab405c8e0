// Package scene owns a set of bodies and the force creators acting on them.
package scene

import (
	"fmt"

	"github.com/cbodonnell/rigid2d/pkg/body"
	"github.com/google/uuid"
)

// ForceCreator is invoked once per Advance with the aux value it was
// registered with.
type ForceCreator func(aux interface{})

// Freer is implemented by aux values that hold resources. Free is called
// when the owning force creator is dropped from the scene.
type Freer interface {
	Free()
}

type forceCreatorEntry struct {
	creator ForceCreator
	aux     interface{}
	bodies  []*body.Body
}

func (e *forceCreatorEntry) subscribes(b *body.Body) bool {
	for _, sub := range e.bodies {
		if sub == b {
			return true
		}
	}
	return false
}

func (e *forceCreatorEntry) free() {
	if f, ok := e.aux.(Freer); ok {
		f.Free()
	}
	e.aux = nil
}

// Scene is not safe for concurrent use.
type Scene struct {
	bodies        []*body.Body
	forceCreators []*forceCreatorEntry
}

func New() *Scene {
	return &Scene{
		bodies:        make([]*body.Body, 0),
		forceCreators: make([]*forceCreatorEntry, 0),
	}
}

// Bodies returns the number of bodies in the scene.
func (s *Scene) Bodies() int {
	return len(s.bodies)
}

// GetBody panics if index is out of range.
func (s *Scene) GetBody(index int) *body.Body {
	s.checkIndex(index)
	return s.bodies[index]
}

// BodyByID returns the body with the given id, if present.
func (s *Scene) BodyByID(id uuid.UUID) (*body.Body, bool) {
	for _, b := range s.bodies {
		if b.ID() == id {
			return b, true
		}
	}
	return nil, false
}

// List returns a copy of the body slice in index order.
func (s *Scene) List() []*body.Body {
	out := make([]*body.Body, len(s.bodies))
	copy(out, s.bodies)
	return out
}

// Each calls fn for every body in index order.
func (s *Scene) Each(fn func(index int, b *body.Body)) {
	for i, b := range s.bodies {
		fn(i, b)
	}
}

func (s *Scene) AddBody(b *body.Body) {
	s.bodies = append(s.bodies, b)
}

// RemoveBody marks the body at index for removal on the next Advance.
// It panics if index is out of range.
func (s *Scene) RemoveBody(index int) {
	s.checkIndex(index)
	s.bodies[index].Remove()
}

// ForceCreators returns the number of registered force creators.
func (s *Scene) ForceCreators() int {
	return len(s.forceCreators)
}

// AddForceCreator registers a force creator that is not tied to any body.
// It lives until the scene is freed.
func (s *Scene) AddForceCreator(creator ForceCreator, aux interface{}) {
	s.AddBodiesForceCreator(creator, aux, nil)
}

// AddBodiesForceCreator registers a force creator that is dropped as soon as
// any of bodies is removed from the scene.
func (s *Scene) AddBodiesForceCreator(creator ForceCreator, aux interface{}, bodies []*body.Body) {
	subscribed := make([]*body.Body, len(bodies))
	copy(subscribed, bodies)
	s.forceCreators = append(s.forceCreators, &forceCreatorEntry{
		creator: creator,
		aux:     aux,
		bodies:  subscribed,
	})
}

// Advance runs every force creator in registration order, then walks the
// bodies from last to first, purging removed ones and ticking the rest.
func (s *Scene) Advance(dt float64) {
	for i := 0; i < len(s.forceCreators); i++ {
		fc := s.forceCreators[i]
		fc.creator(fc.aux)
	}

	for i := len(s.bodies) - 1; i >= 0; i-- {
		b := s.bodies[i]
		if !b.IsRemoved() {
			b.Tick(dt)
			continue
		}
		s.dropForceCreators(b)
		s.bodies = append(s.bodies[:i], s.bodies[i+1:]...)
		b.Free()
	}
}

// Free releases every force creator and body. The scene is empty afterwards.
func (s *Scene) Free() {
	for _, fc := range s.forceCreators {
		fc.free()
	}
	for _, b := range s.bodies {
		b.Free()
	}
	s.forceCreators = s.forceCreators[:0]
	s.bodies = s.bodies[:0]
}

func (s *Scene) dropForceCreators(b *body.Body) {
	kept := s.forceCreators[:0]
	for _, fc := range s.forceCreators {
		if fc.subscribes(b) {
			fc.free()
			continue
		}
		kept = append(kept, fc)
	}
	for i := len(kept); i < len(s.forceCreators); i++ {
		s.forceCreators[i] = nil
	}
	s.forceCreators = kept
}

func (s *Scene) checkIndex(index int) {
	if index < 0 || index >= len(s.bodies) {
		panic(fmt.Sprintf("scene: body index %d out of range [0, %d)", index, len(s.bodies)))
	}
}
