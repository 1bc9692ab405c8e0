// Package simulation drives a scene on a fixed tick and publishes snapshots.
package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/cbodonnell/rigid2d/pkg/body"
	"github.com/cbodonnell/rigid2d/pkg/collisions"
	"github.com/cbodonnell/rigid2d/pkg/log"
	"github.com/cbodonnell/rigid2d/pkg/messages"
	"github.com/cbodonnell/rigid2d/pkg/queue"
	"github.com/cbodonnell/rigid2d/pkg/scenario"
	"github.com/cbodonnell/rigid2d/pkg/scene"
	"github.com/cbodonnell/rigid2d/pkg/state"
)

const DefaultTickInterval = 16 * time.Millisecond

// Manager owns a scene. Only the goroutine running Start (or calling Step)
// touches it; everything else goes through the command queue, the state
// manager and the snapshot channel.
type Manager struct {
	scenario     *scenario.Scenario
	scene        *scene.Scene
	commandQueue queue.Queue
	stateManager state.StateManager
	snapshotChan chan<- *messages.Snapshot
	broadPhase   *collisions.BroadPhase
	tickInterval time.Duration
	tick         int64
}

// NewManagerOptions contains options for creating a new Manager.
type NewManagerOptions struct {
	// Scenario is the definition Scene was built from. Spawned bodies join
	// its interactions.
	Scenario     *scenario.Scenario
	Scene        *scene.Scene
	CommandQueue queue.Queue
	StateManager state.StateManager
	// SnapshotChan receives every snapshot unless it is full. Optional.
	SnapshotChan chan<- *messages.Snapshot
	// BroadPhase defaults to one sized from the scenario's world.
	BroadPhase   *collisions.BroadPhase
	TickInterval time.Duration
}

func NewManager(opts NewManagerOptions) *Manager {
	tickInterval := opts.TickInterval
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	sc := opts.Scenario
	if sc == nil {
		sc = &scenario.Scenario{}
	}
	broadPhase := opts.BroadPhase
	if broadPhase == nil && sc.World.Width > 0 && sc.World.Height > 0 {
		broadPhase = NewBroadPhase(sc.World)
	}
	return &Manager{
		scenario:     sc,
		scene:        opts.Scene,
		commandQueue: opts.CommandQueue,
		stateManager: opts.StateManager,
		snapshotChan: opts.SnapshotChan,
		broadPhase:   broadPhase,
		tickInterval: tickInterval,
	}
}

// NewBroadPhase sizes a broad phase to a scenario world.
func NewBroadPhase(world scenario.World) *collisions.BroadPhase {
	return collisions.NewBroadPhase(collisions.NewBroadPhaseOptions{
		Origin:   world.Origin,
		Width:    world.Width,
		Height:   world.Height,
		CellSize: world.CellSize,
	})
}

// Start runs the simulation loop until ctx is done.
func (m *Manager) Start(ctx context.Context) error {
	if m.scene == nil {
		return fmt.Errorf("simulation has no scene")
	}

	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()

	log.Info("Simulation %q started with %d bodies, ticking every %v", m.scenario.Name, m.scene.Bodies(), m.tickInterval)
	for {
		select {
		case <-ctx.Done():
			log.Info("Simulation stopped after %d ticks", m.tick)
			return nil
		case <-ticker.C:
			if err := m.Step(ctx, m.tickInterval.Seconds()); err != nil {
				log.Error("Failed to run simulation tick: %v", err)
			}
		}
	}
}

// Step applies pending commands, advances the scene by dt and publishes
// the resulting snapshot.
func (m *Manager) Step(ctx context.Context, dt float64) error {
	m.processCommands()
	m.scene.Advance(dt)
	m.tick++

	snapshot := m.Snapshot()
	if m.stateManager != nil {
		if err := m.stateManager.Set(ctx, snapshot); err != nil {
			return fmt.Errorf("failed to set state: %v", err)
		}
	}
	if m.snapshotChan != nil {
		select {
		case m.snapshotChan <- snapshot:
		default:
			log.Debug("Snapshot channel full, dropping tick %d", snapshot.Tick)
		}
	}
	return nil
}

// Snapshot describes the scene as of the last step.
func (m *Manager) Snapshot() *messages.Snapshot {
	bodies := m.scene.List()
	snapshot := &messages.Snapshot{
		Tick:      m.tick,
		Timestamp: time.Now().UnixMilli(),
		Scenario:  m.scenario.Name,
		World: messages.World{
			Origin: m.scenario.World.Origin,
			Width:  m.scenario.World.Width,
			Height: m.scenario.World.Height,
		},
		Bodies:   make([]messages.BodyState, 0, len(bodies)),
		Contacts: make([]messages.Contact, 0),
	}
	for _, b := range bodies {
		snapshot.Bodies = append(snapshot.Bodies, messages.NewBodyState(b))
	}
	if m.broadPhase != nil {
		for _, pair := range collisions.FindAll(m.broadPhase, bodies) {
			snapshot.Contacts = append(snapshot.Contacts, messages.Contact{
				A:    pair.A.ID(),
				B:    pair.B.ID(),
				Axis: pair.Info.Axis,
			})
		}
	}
	return snapshot
}

// Tick returns the number of completed steps.
func (m *Manager) Tick() int64 {
	return m.tick
}

func (m *Manager) processCommands() {
	if m.commandQueue == nil {
		return
	}
	for _, item := range m.commandQueue.ReadAllMessages() {
		command, ok := item.(*messages.Command)
		if !ok {
			log.Warn("Unexpected item in command queue: %T", item)
			continue
		}
		if err := m.applyCommand(command); err != nil {
			log.Warn("Failed to apply %s command: %v", command.Type, err)
		}
	}
}

func (m *Manager) applyCommand(command *messages.Command) error {
	if err := command.Validate(); err != nil {
		return err
	}

	if command.Type == messages.CommandTypeSpawn {
		b, err := command.Body.NewBody()
		if err != nil {
			return fmt.Errorf("failed to build body: %v", err)
		}
		m.scene.AddBody(b)
		for _, interaction := range m.scenario.Interactions {
			if err := scenario.Wire(m.scene, interaction, b); err != nil {
				log.Warn("Spawned body %s skipped a %s interaction: %v", b.ID(), interaction.Kind, err)
			}
		}
		log.Debug("Spawned body %s (%s)", b.ID(), command.Body.Name)
		return nil
	}

	b, err := m.findBody(command)
	if err != nil {
		return err
	}
	switch command.Type {
	case messages.CommandTypeRemove:
		b.Remove()
		log.Debug("Removed body %s", b.ID())
	case messages.CommandTypeImpulse:
		b.AddImpulse(command.Vector)
	case messages.CommandTypeVelocity:
		b.SetVelocity(command.Vector)
	}
	return nil
}

func (m *Manager) findBody(command *messages.Command) (*body.Body, error) {
	b, ok := m.scene.BodyByID(command.BodyID)
	if !ok || b.IsRemoved() {
		return nil, fmt.Errorf("body %s not found", command.BodyID)
	}
	return b, nil
}
