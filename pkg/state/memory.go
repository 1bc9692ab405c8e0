package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/cbodonnell/rigid2d/pkg/messages"
)

type InMemoryStateManager struct {
	lock     sync.RWMutex
	snapshot *messages.Snapshot
}

func NewInMemoryStateManager() *InMemoryStateManager {
	return &InMemoryStateManager{
		snapshot: &messages.Snapshot{
			Bodies:   make([]messages.BodyState, 0),
			Contacts: make([]messages.Contact, 0),
		},
	}
}

func (m *InMemoryStateManager) Get(ctx context.Context) (*messages.Snapshot, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.snapshot.Copy(), nil
}

func (m *InMemoryStateManager) Set(ctx context.Context, snapshot *messages.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is nil")
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	m.snapshot = snapshot.Copy()
	return nil
}
