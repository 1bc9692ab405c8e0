package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cbodonnell/rigid2d/client/view"
	"github.com/cbodonnell/rigid2d/pkg/log"
	"github.com/cbodonnell/rigid2d/pkg/messages"
	"github.com/cbodonnell/rigid2d/pkg/polygon"
	"github.com/cbodonnell/rigid2d/pkg/scenario"
	"github.com/cbodonnell/rigid2d/pkg/vector"
	"github.com/gdamore/tcell/v2"
)

const (
	playerName  = "player"
	playerSpeed = 250.0
)

type Terminal struct {
	screen tcell.Screen
	source view.Source
	tick   time.Duration
	paused bool
	status string
}

func NewTerminal(source view.Source, tick time.Duration) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}

	if err := screen.Init(); err != nil {
		return nil, err
	}

	return &Terminal{
		screen: screen,
		source: source,
		tick:   tick,
	}, nil
}

func (t *Terminal) run(ctx context.Context) error {
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-eventChan:
			if !t.handleInput(ctx, ev) {
				return nil
			}
		case <-ticker.C:
			if !t.paused {
				if err := t.source.Step(ctx, t.tick.Seconds()); err != nil {
					return fmt.Errorf("failed to step simulation: %v", err)
				}
			}
			snapshot, err := t.source.Snapshot(ctx)
			if err != nil {
				return fmt.Errorf("failed to get snapshot: %v", err)
			}
			t.draw(snapshot)
		}
	}
}

func (t *Terminal) handleInput(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			t.steer(ctx, -playerSpeed)
		case tcell.KeyRight:
			t.steer(ctx, playerSpeed)
		case tcell.KeyDown:
			t.steer(ctx, 0)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				t.paused = !t.paused
			case 'n':
				if t.paused {
					if err := t.source.Step(ctx, t.tick.Seconds()); err != nil {
						t.status = err.Error()
					}
				}
			case 's':
				t.spawn(ctx)
			}
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return true
}

func (t *Terminal) steer(ctx context.Context, vx float64) {
	snapshot, err := t.source.Snapshot(ctx)
	if err != nil {
		t.status = err.Error()
		return
	}
	player, ok := snapshot.BodyByName(playerName)
	if !ok {
		t.status = "no body named " + playerName
		return
	}
	if err := t.source.Send(ctx, &messages.Command{
		Type:   messages.CommandTypeVelocity,
		BodyID: player.ID,
		Vector: vector.New(vx, player.Velocity.Y),
	}); err != nil {
		t.status = err.Error()
	}
}

// spawn drops a ball from the top center of the world.
func (t *Terminal) spawn(ctx context.Context) {
	snapshot, err := t.source.Snapshot(ctx)
	if err != nil {
		t.status = err.Error()
		return
	}
	world := snapshot.World
	position := world.Origin.Add(vector.New(world.Width/2, world.Height*0.9))
	if err := t.source.Send(ctx, &messages.Command{
		Type: messages.CommandTypeSpawn,
		Body: &scenario.BodySpec{
			Shape:    scenario.ShapeSpec{Kind: scenario.ShapeOval, Radius: 12, RadiusY: 12},
			Mass:     5,
			Color:    polygon.Color{R: 0.9, G: 0.6, B: 0.2},
			Position: position,
			Tags:     []string{"ball"},
		},
	}); err != nil {
		t.status = err.Error()
	}
}

func (t *Terminal) draw(snapshot *messages.Snapshot) {
	t.screen.Clear()
	cols, rows := t.screen.Size()
	grid := view.Rasterize(snapshot, cols, rows-1)
	for r, row := range grid {
		for c, index := range row {
			if index == view.Empty {
				continue
			}
			b := snapshot.Bodies[index]
			glyph := '█'
			if b.IsStatic() {
				glyph = '▓'
			}
			t.screen.SetContent(c, r, glyph, nil, tcell.StyleDefault.Foreground(toTerminalColor(b.Color)))
		}
	}

	status := fmt.Sprintf(" %s  tick %d  bodies %d  contacts %d ", snapshot.Scenario, snapshot.Tick, len(snapshot.Bodies), len(snapshot.Contacts))
	if t.paused {
		status += " PAUSED "
	}
	if t.status != "" {
		status += " " + t.status
	}
	statusStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	for i, ch := range []rune(status) {
		if i >= cols {
			break
		}
		t.screen.SetContent(i, rows-1, ch, nil, statusStyle)
	}
	t.screen.Show()
}

func toTerminalColor(c polygon.Color) tcell.Color {
	return tcell.NewRGBColor(channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) int32 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return int32(v * 255)
}

func (t *Terminal) cleanup() {
	t.screen.Fini()
	if err := t.source.Close(); err != nil {
		log.Error("Failed to close source: %v", err)
	}
}

func main() {
	scenarioPath := flag.String("scenario", "", "Scenario JSON file to run locally (default: built-in demo)")
	serverAddr := flag.String("server", "", "WebSocket URL of a simulation server to watch")
	tick := flag.Duration("tick", 33*time.Millisecond, "Frame interval")
	logLevel := flag.String("log-level", "info", "Log level")
	logFile := flag.String("log-file", "", "File to log to (the terminal is taken by the view)")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse log level: %v\n", err)
		os.Exit(1)
	}
	var logOut io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	log.SetDefaultLogger(log.New(logOut, "", log.DefaultLoggerFlag, parsedLogLevel))

	ctx := context.Background()
	var source view.Source
	if *serverAddr != "" {
		source, err = view.NewRemoteSource(ctx, *serverAddr)
	} else {
		var sc *scenario.Scenario
		sc, err = scenario.Load(*scenarioPath)
		if err == nil {
			source, err = view.NewLocalSource(sc)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	terminal, err := NewTerminal(source, *tick)
	if err != nil {
		source.Close()
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer terminal.cleanup()

	if err := terminal.run(ctx); err != nil {
		log.Error("Terminal view stopped: %v", err)
	}
}
