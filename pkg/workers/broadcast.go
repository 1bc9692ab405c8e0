package workers

import (
	"context"
	"fmt"

	"github.com/cbodonnell/rigid2d/pkg/log"
	"github.com/cbodonnell/rigid2d/pkg/messages"
	"github.com/cbodonnell/rigid2d/pkg/network"
)

type BroadcastWorker struct {
	clientManager *network.ClientManager
	snapshotChan  <-chan *messages.Snapshot
}

type NewBroadcastWorkerOptions struct {
	ClientManager *network.ClientManager
	SnapshotChan  <-chan *messages.Snapshot
}

// NewBroadcastWorker creates a new BroadcastWorker.
// The worker reads snapshots published by the simulation loop
// and writes them to every connected client.
func NewBroadcastWorker(opts NewBroadcastWorkerOptions) *BroadcastWorker {
	return &BroadcastWorker{
		clientManager: opts.ClientManager,
		snapshotChan:  opts.SnapshotChan,
	}
}

func (w *BroadcastWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-w.snapshotChan:
			if !ok {
				return
			}
			if err := w.broadcastSnapshot(ctx, snapshot); err != nil {
				log.Error("Failed to broadcast snapshot: %v", err)
			}
		}
	}
}

func (w *BroadcastWorker) broadcastSnapshot(ctx context.Context, snapshot *messages.Snapshot) error {
	if w.clientManager.Count() == 0 {
		return nil
	}

	msg, err := messages.NewMessage(messages.MessageTypeSnapshot, snapshot)
	if err != nil {
		return fmt.Errorf("failed to create snapshot message: %v", err)
	}

	delivered, err := w.clientManager.Broadcast(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to broadcast tick %d: %v", snapshot.Tick, err)
	}
	log.Trace("Broadcast tick %d to %d clients", snapshot.Tick, delivered)

	return nil
}
