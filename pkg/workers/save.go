package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/rigid2d/pkg/log"
	"github.com/cbodonnell/rigid2d/pkg/repositories"
	"github.com/cbodonnell/rigid2d/pkg/state"
)

// DefaultSaveInterval is used when no positive interval is configured.
const DefaultSaveInterval = 10 * time.Second

type SaveSnapshotWorker struct {
	repository   repositories.Repository
	stateManager state.StateManager
	interval     time.Duration
}

type NewSaveSnapshotWorkerOptions struct {
	Repository   repositories.Repository
	StateManager state.StateManager
	Interval     time.Duration
}

// NewSaveSnapshotWorker creates a new SaveSnapshotWorker.
// The worker periodically saves the latest snapshot to the repository
// under the name of its scenario.
func NewSaveSnapshotWorker(opts NewSaveSnapshotWorkerOptions) *SaveSnapshotWorker {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultSaveInterval
	}
	return &SaveSnapshotWorker{
		repository:   opts.Repository,
		stateManager: opts.StateManager,
		interval:     interval,
	}
}

func (w *SaveSnapshotWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var lastTick int64 = -1
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lastTick = w.save(ctx, lastTick)
		}
	}
}

// save stores the current snapshot unless nothing has ticked since the
// last save and returns the tick of the latest stored snapshot.
func (w *SaveSnapshotWorker) save(ctx context.Context, lastTick int64) int64 {
	snapshot, err := w.stateManager.Get(ctx)
	if err != nil {
		log.Error("Failed to get current snapshot: %v", err)
		return lastTick
	}
	if snapshot.Tick == 0 || snapshot.Tick == lastTick {
		return lastTick
	}
	if err := w.repository.SaveSnapshot(ctx, snapshot); err != nil {
		log.Error("Failed to save snapshot: %v", err)
		return lastTick
	}
	log.Debug("Saved snapshot of %q at tick %d", snapshot.Scenario, snapshot.Tick)
	return snapshot.Tick
}
