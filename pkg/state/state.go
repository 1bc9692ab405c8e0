package state

import (
	"context"

	"github.com/cbodonnell/rigid2d/pkg/messages"
)

// StateManager provides shared access to the latest scene snapshot.
// Implementations must be thread-safe.
type StateManager interface {
	// Get returns a copy of the current snapshot.
	Get(ctx context.Context) (*messages.Snapshot, error)
	// Set sets the current snapshot.
	Set(ctx context.Context, snapshot *messages.Snapshot) error
}
