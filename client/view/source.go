package view

import (
	"context"
	"fmt"

	"github.com/cbodonnell/rigid2d/client/network"
	"github.com/cbodonnell/rigid2d/pkg/log"
	"github.com/cbodonnell/rigid2d/pkg/messages"
	"github.com/cbodonnell/rigid2d/pkg/queue"
	"github.com/cbodonnell/rigid2d/pkg/scenario"
	"github.com/cbodonnell/rigid2d/pkg/simulation"
	"github.com/cbodonnell/rigid2d/pkg/state"
)

// Source feeds a viewer with snapshots and accepts its commands.
type Source interface {
	Snapshot(ctx context.Context) (*messages.Snapshot, error)
	// Step advances a local simulation by dt. Remote sources ignore it.
	Step(ctx context.Context, dt float64) error
	Send(ctx context.Context, command *messages.Command) error
	Close() error
}

// LocalSource runs a scenario in process.
type LocalSource struct {
	manager      *simulation.Manager
	stateManager *state.InMemoryStateManager
	commandQueue *queue.InMemoryQueue
}

func NewLocalSource(sc *scenario.Scenario) (*LocalSource, error) {
	s, _, err := scenario.Build(sc)
	if err != nil {
		return nil, fmt.Errorf("failed to build scenario: %v", err)
	}

	source := &LocalSource{
		stateManager: state.NewInMemoryStateManager(),
		commandQueue: queue.NewInMemoryQueue(0),
	}
	source.manager = simulation.NewManager(simulation.NewManagerOptions{
		Scenario:     sc,
		Scene:        s,
		CommandQueue: source.commandQueue,
		StateManager: source.stateManager,
	})
	if err := source.stateManager.Set(context.Background(), source.manager.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to set initial snapshot: %v", err)
	}
	return source, nil
}

func (s *LocalSource) Snapshot(ctx context.Context) (*messages.Snapshot, error) {
	return s.stateManager.Get(ctx)
}

func (s *LocalSource) Step(ctx context.Context, dt float64) error {
	return s.manager.Step(ctx, dt)
}

func (s *LocalSource) Send(ctx context.Context, command *messages.Command) error {
	if err := command.Validate(); err != nil {
		return fmt.Errorf("invalid command: %v", err)
	}
	return s.commandQueue.Enqueue(command)
}

func (s *LocalSource) Close() error {
	return nil
}

// RemoteSource mirrors a simulation server over a WebSocket.
type RemoteSource struct {
	client       *network.WSClient
	stateManager *state.InMemoryStateManager
	cancel       context.CancelFunc
	done         chan error
}

// NewRemoteSource connects to serverAddr and starts receiving snapshots.
func NewRemoteSource(ctx context.Context, serverAddr string) (*RemoteSource, error) {
	stateManager := state.NewInMemoryStateManager()
	client := network.NewWSClient(serverAddr, stateManager)
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	source := &RemoteSource{
		client:       client,
		stateManager: stateManager,
		cancel:       cancel,
		done:         make(chan error, 1),
	}
	go func() {
		err := client.HandleMessages(ctx)
		if err != nil {
			log.Error("Lost connection to %s: %v", serverAddr, err)
		}
		source.done <- err
	}()
	return source, nil
}

func (s *RemoteSource) Snapshot(ctx context.Context) (*messages.Snapshot, error) {
	select {
	case err := <-s.done:
		s.done <- err
		if err != nil {
			return nil, fmt.Errorf("connection closed: %v", err)
		}
		return nil, fmt.Errorf("connection closed")
	default:
	}
	return s.stateManager.Get(ctx)
}

func (s *RemoteSource) Step(ctx context.Context, dt float64) error {
	return nil
}

func (s *RemoteSource) Send(ctx context.Context, command *messages.Command) error {
	return s.client.SendCommand(ctx, command)
}

func (s *RemoteSource) Close() error {
	s.cancel()
	return s.client.Close()
}
