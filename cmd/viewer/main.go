package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cbodonnell/rigid2d/client/game"
	"github.com/cbodonnell/rigid2d/client/view"
	"github.com/cbodonnell/rigid2d/pkg/log"
	"github.com/cbodonnell/rigid2d/pkg/scenario"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	scenarioPath := flag.String("scenario", "", "Scenario JSON file to run locally (default: built-in demo)")
	serverAddr := flag.String("server", "", "WebSocket URL of a simulation server to watch, e.g. ws://localhost:8080/ws")
	debug := flag.Bool("debug", false, "Show the debug overlay")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	var source view.Source
	if *serverAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		source, err = view.NewRemoteSource(ctx, *serverAddr)
		cancel()
		if err != nil {
			panic(fmt.Sprintf("Failed to connect to %s: %v", *serverAddr, err))
		}
	} else {
		sc, err := scenario.Load(*scenarioPath)
		if err != nil {
			panic(fmt.Sprintf("Failed to load scenario: %v", err))
		}
		log.Info("Running scenario %q with %d bodies", sc.Name, len(sc.Bodies))
		source, err = view.NewLocalSource(sc)
		if err != nil {
			panic(fmt.Sprintf("Failed to start scenario: %v", err))
		}
	}
	defer source.Close()

	g, err := game.NewGame(game.NewGameOptions{
		Debug:  *debug,
		Source: source,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create game: %v", err))
	}

	ebiten.SetWindowSize(game.DefaultScreenWidth, game.DefaultScreenHeight)
	ebiten.SetWindowTitle("rigid2d")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(g); err != nil {
		log.Error("Viewer stopped: %v", err)
	}
}
