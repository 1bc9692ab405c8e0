package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/rigid2d/pkg/api"
	"github.com/cbodonnell/rigid2d/pkg/log"
	"github.com/cbodonnell/rigid2d/pkg/messages"
	"github.com/cbodonnell/rigid2d/pkg/network"
	"github.com/cbodonnell/rigid2d/pkg/queue"
	"github.com/cbodonnell/rigid2d/pkg/repositories"
	"github.com/cbodonnell/rigid2d/pkg/scenario"
	"github.com/cbodonnell/rigid2d/pkg/simulation"
	"github.com/cbodonnell/rigid2d/pkg/state"
	"github.com/cbodonnell/rigid2d/pkg/workers"
)

func main() {
	port := flag.Int("port", 8080, "HTTP port to listen on")
	tick := flag.Duration("tick", simulation.DefaultTickInterval, "Simulation tick interval")
	scenarioFlag := flag.String("scenario", "", "Scenario JSON file or the name of a stored scenario (default: built-in demo)")
	saveInterval := flag.Duration("save-interval", workers.DefaultSaveInterval, "Interval between snapshot saves")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	if *saveInterval <= 0 {
		panic(fmt.Sprintf("Save interval must be positive, got %v", *saveInterval))
	}
	if *tick <= 0 {
		panic(fmt.Sprintf("Tick interval must be positive, got %v", *tick))
	}

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connStr := os.Getenv("RIGID2D_DATABASE_URL")
	if connStr == "" {
		connStr = "sqlite://rigid2d.db"
	}
	repository, err := newRepository(ctx, connStr)
	if err != nil {
		panic(fmt.Sprintf("Failed to create repository: %v", err))
	}
	defer repository.Close(context.Background())

	sc, err := loadScenario(ctx, repository, *scenarioFlag)
	if err != nil {
		panic(fmt.Sprintf("Failed to load scenario: %v", err))
	}
	if err := repository.SaveScenario(ctx, sc); err != nil {
		log.Warn("Failed to store scenario %q: %v", sc.Name, err)
	}

	s, _, err := scenario.Build(sc)
	if err != nil {
		panic(fmt.Sprintf("Failed to build scenario: %v", err))
	}

	commandQueue := queue.NewInMemoryQueue(queue.QueueBufferSize)
	stateManager := state.NewInMemoryStateManager()
	clientManager := network.NewClientManager()

	snapshotChannelSize := 4
	snapshotChan := make(chan *messages.Snapshot, snapshotChannelSize)

	broadcastWorker := workers.NewBroadcastWorker(workers.NewBroadcastWorkerOptions{
		ClientManager: clientManager,
		SnapshotChan:  snapshotChan,
	})
	go broadcastWorker.Start(ctx)

	saveSnapshotWorker := workers.NewSaveSnapshotWorker(workers.NewSaveSnapshotWorkerOptions{
		Repository:   repository,
		StateManager: stateManager,
		Interval:     *saveInterval,
	})
	go saveSnapshotWorker.Start(ctx)

	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Port:          *port,
		Repository:    repository,
		StateManager:  stateManager,
		CommandQueue:  commandQueue,
		ClientManager: clientManager,
	})
	go apiServer.Start()

	manager := simulation.NewManager(simulation.NewManagerOptions{
		Scenario:     sc,
		Scene:        s,
		CommandQueue: commandQueue,
		StateManager: stateManager,
		SnapshotChan: snapshotChan,
		TickInterval: *tick,
	})

	stopSignal := make(chan os.Signal, 1)
	signal.Notify(stopSignal, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stopSignal
		log.Info("Received stop signal")
		cancel()
	}()

	log.Info("Starting simulation manager")
	if err := manager.Start(ctx); err != nil {
		panic(fmt.Sprintf("Failed to start simulation manager: %v", err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop API server: %v", err)
	}
	s.Free()
}

func newRepository(ctx context.Context, connStr string) (repositories.Repository, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %v", err)
	}

	switch u.Scheme {
	case "sqlite":
		return repositories.NewSQLiteRepository(ctx, u.Host+u.Path)
	case "postgres", "postgresql":
		return repositories.NewPostgresRepository(ctx, u.String())
	default:
		return nil, fmt.Errorf("unknown database type %s", u.Scheme)
	}
}

// loadScenario resolves the -scenario flag: empty is the demo, an existing
// file is decoded, anything else is looked up in the repository.
func loadScenario(ctx context.Context, repository repositories.Repository, name string) (*scenario.Scenario, error) {
	if name == "" {
		return scenario.Demo(), nil
	}
	if _, err := os.Stat(name); err == nil {
		return scenario.Load(name)
	}
	sc, err := repository.LoadScenario(ctx, name)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, fmt.Errorf("no scenario file or stored scenario named %q", name)
		}
		return nil, err
	}
	if err := scenario.Validate(sc); err != nil {
		return nil, fmt.Errorf("invalid stored scenario %q: %v", name, err)
	}
	return sc, nil
}
