package messages

import (
	"fmt"

	"github.com/cbodonnell/rigid2d/pkg/scenario"
	"github.com/cbodonnell/rigid2d/pkg/vector"
	"github.com/google/uuid"
)

// Command types
const (
	CommandTypeSpawn    = "spawn"
	CommandTypeRemove   = "remove"
	CommandTypeImpulse  = "impulse"
	CommandTypeVelocity = "velocity"
)

// Command is a request to change a running scene.
type Command struct {
	Type   string             `json:"type"`
	BodyID uuid.UUID          `json:"bodyID"`
	Vector vector.Vector      `json:"vector"`
	Body   *scenario.BodySpec `json:"body,omitempty"`
}

// Validate checks that the command carries what its type needs.
func (c *Command) Validate() error {
	switch c.Type {
	case CommandTypeSpawn:
		if c.Body == nil {
			return fmt.Errorf("spawn command needs a body")
		}
		if err := c.Body.Validate(); err != nil {
			return fmt.Errorf("invalid body: %v", err)
		}
	case CommandTypeRemove:
		if c.BodyID == uuid.Nil {
			return fmt.Errorf("remove command needs a body id")
		}
	case CommandTypeImpulse, CommandTypeVelocity:
		if c.BodyID == uuid.Nil {
			return fmt.Errorf("%s command needs a body id", c.Type)
		}
		if !c.Vector.IsFinite() {
			return fmt.Errorf("%s command needs a finite vector", c.Type)
		}
	default:
		return fmt.Errorf("unknown command type %q", c.Type)
	}
	return nil
}
