package workers

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cbodonnell/rigid2d/pkg/messages"
	"github.com/cbodonnell/rigid2d/pkg/network"
	"github.com/cbodonnell/rigid2d/pkg/repositories"
	"github.com/cbodonnell/rigid2d/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

func TestBroadcastWorker(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clientManager := network.NewClientManager()
	server := httptest.NewServer(network.NewWSHandler(network.NewWSHandlerOptions{ClientManager: clientManager}))
	defer server.Close()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")
	require.Eventually(t, func() bool { return clientManager.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	snapshots := make(chan *messages.Snapshot, 1)
	worker := NewBroadcastWorker(NewBroadcastWorkerOptions{
		ClientManager: clientManager,
		SnapshotChan:  snapshots,
	})
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	snapshots <- &messages.Snapshot{Tick: 3, Scenario: "demo"}
	msg, err := network.ReadMessageFromWS(ctx, conn)
	require.NoError(t, err)
	snapshot := &messages.Snapshot{}
	require.NoError(t, messages.DecodePayload(msg, messages.MessageTypeSnapshot, snapshot))
	assert.Equal(t, int64(3), snapshot.Tick)
	assert.Equal(t, "demo", snapshot.Scenario)

	close(snapshots)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after the channel closed")
	}
}

func TestSaveSnapshotWorker_save(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		tick     int64
		lastTick int64
		saveErr  error
		wantSave bool
		wantTick int64
	}{
		{name: "new tick", tick: 5, lastTick: -1, wantSave: true, wantTick: 5},
		{name: "already saved", tick: 5, lastTick: 5, wantTick: 5},
		{name: "nothing ticked yet", tick: 0, lastTick: -1, wantTick: -1},
		{name: "save fails", tick: 6, lastTick: 5, saveErr: fmt.Errorf("disk full"), wantSave: true, wantTick: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stateManager := state.NewInMemoryStateManager()
			if tt.tick > 0 {
				require.NoError(t, stateManager.Set(ctx, &messages.Snapshot{Tick: tt.tick, Scenario: "demo"}))
			}
			repository := &repositories.MockRepository{}
			if tt.wantSave {
				repository.On("SaveSnapshot", mock.Anything, mock.MatchedBy(func(s *messages.Snapshot) bool {
					return s.Tick == tt.tick && s.Scenario == "demo"
				})).Return(tt.saveErr).Once()
			}

			worker := NewSaveSnapshotWorker(NewSaveSnapshotWorkerOptions{
				Repository:   repository,
				StateManager: stateManager,
				Interval:     time.Second,
			})
			assert.Equal(t, tt.wantTick, worker.save(ctx, tt.lastTick))
			repository.AssertExpectations(t)
		})
	}
}

func TestSaveSnapshotWorker_Start(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stateManager := state.NewInMemoryStateManager()
	require.NoError(t, stateManager.Set(ctx, &messages.Snapshot{Tick: 1, Scenario: "demo"}))

	saved := make(chan struct{}, 1)
	repository := &repositories.MockRepository{}
	repository.On("SaveSnapshot", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		select {
		case saved <- struct{}{}:
		default:
		}
	})

	worker := NewSaveSnapshotWorker(NewSaveSnapshotWorkerOptions{
		Repository:   repository,
		StateManager: stateManager,
		Interval:     5 * time.Millisecond,
	})
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	select {
	case <-saved:
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot was not saved")
	}
	cancel()
	<-done
	// the same tick is stored once
	repository.AssertNumberOfCalls(t, "SaveSnapshot", 1)
}

func TestNewSaveSnapshotWorker_interval(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		want     time.Duration
	}{
		{name: "configured", interval: time.Second, want: time.Second},
		{name: "zero", interval: 0, want: DefaultSaveInterval},
		{name: "negative", interval: -time.Second, want: DefaultSaveInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			worker := NewSaveSnapshotWorker(NewSaveSnapshotWorkerOptions{Interval: tt.interval})
			assert.Equal(t, tt.want, worker.interval)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			assert.NotPanics(t, func() { worker.Start(ctx) })
		})
	}
}
