package game

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/cbodonnell/rigid2d/client/input"
	"github.com/cbodonnell/rigid2d/client/view"
	"github.com/cbodonnell/rigid2d/pkg/log"
	"github.com/cbodonnell/rigid2d/pkg/messages"
	"github.com/cbodonnell/rigid2d/pkg/polygon"
	"github.com/cbodonnell/rigid2d/pkg/scenario"
	"github.com/cbodonnell/rigid2d/pkg/vector"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	ebitenvector "github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	DefaultScreenWidth  = 800
	DefaultScreenHeight = 600

	// PlayerName is the body the arrow keys steer.
	PlayerName = "player"
	// PlayerSpeed is the horizontal speed the arrow keys set.
	PlayerSpeed = 250.0
	// SpawnRadius is the radius of balls spawned with the mouse.
	SpawnRadius = 12.0
	SpawnMass   = 5.0
)

type GameMode int

const (
	GameModePlay GameMode = iota
	GameModePaused
	GameModeNetworkError
)

func (m GameMode) String() string {
	switch m {
	case GameModePlay:
		return "Play"
	case GameModePaused:
		return "Paused"
	case GameModeNetworkError:
		return "Network Error"
	}
	return "Unknown"
}

// Game implements ebiten.Game interface, which has Update, Draw and Layout methods.
type Game struct {
	// debug is a boolean value indicating whether debug mode is enabled.
	debug bool
	// source supplies snapshots and accepts commands.
	source view.Source
	// snapshot is the latest snapshot drawn.
	snapshot *messages.Snapshot
	// mode is the current game mode.
	mode GameMode
	// lastErr is shown in network error mode.
	lastErr error
	// screenWidth and screenHeight follow the window size.
	screenWidth  int
	screenHeight int
	// whitePixel is the source image for filled polygons.
	whitePixel *ebiten.Image
}

type NewGameOptions struct {
	Debug  bool
	Source view.Source
}

func NewGame(opts NewGameOptions) (*Game, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("a snapshot source is required")
	}

	whiteImage := ebiten.NewImage(3, 3)
	whiteImage.Fill(color.White)

	g := &Game{
		debug:        opts.Debug,
		source:       opts.Source,
		mode:         GameModePlay,
		screenWidth:  DefaultScreenWidth,
		screenHeight: DefaultScreenHeight,
		whitePixel:   whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
	}
	return g, nil
}

func (g *Game) Update() error {
	if input.IsQuitJustPressed() {
		return ebiten.Termination
	}
	if input.IsDebugJustPressed() {
		g.debug = !g.debug
	}
	if g.mode == GameModeNetworkError {
		return nil
	}

	ctx := context.Background()
	if err := g.handleInput(ctx); err != nil {
		log.Warn("Failed to handle input: %v", err)
	}

	step := g.mode == GameModePlay || (g.mode == GameModePaused && input.IsStepJustPressed())
	if step {
		if err := g.source.Step(ctx, 1.0/float64(ebiten.TPS())); err != nil {
			return fmt.Errorf("failed to step simulation: %v", err)
		}
	}

	snapshot, err := g.source.Snapshot(ctx)
	if err != nil {
		log.Error("Failed to get snapshot: %v", err)
		g.lastErr = err
		g.mode = GameModeNetworkError
		return nil
	}
	g.snapshot = snapshot
	return nil
}

func (g *Game) handleInput(ctx context.Context) error {
	if input.IsPauseJustPressed() {
		switch g.mode {
		case GameModePlay:
			g.mode = GameModePaused
		case GameModePaused:
			g.mode = GameModePlay
		}
	}
	if g.snapshot == nil {
		return nil
	}
	viewport := g.viewport()

	if input.IsSpawnJustPressed() {
		x, y := input.SpawnPosition()
		if err := g.source.Send(ctx, spawnCommand(viewport.ToWorld(float64(x), float64(y)))); err != nil {
			return fmt.Errorf("failed to spawn: %v", err)
		}
	}

	if input.IsRemoveJustPressed() {
		x, y := ebiten.CursorPosition()
		if b, ok := bodyAt(g.snapshot, viewport.ToWorld(float64(x), float64(y))); ok && !b.IsStatic() {
			if err := g.source.Send(ctx, &messages.Command{Type: messages.CommandTypeRemove, BodyID: b.ID}); err != nil {
				return fmt.Errorf("failed to remove %s: %v", b.ID, err)
			}
		}
	}

	return g.steerPlayer(ctx)
}

func (g *Game) steerPlayer(ctx context.Context) error {
	player, ok := g.snapshot.BodyByName(PlayerName)
	if !ok {
		return nil
	}
	vx := 0.0
	if input.IsLeftPressed() {
		vx -= PlayerSpeed
	}
	if input.IsRightPressed() {
		vx += PlayerSpeed
	}
	if vx == player.Velocity.X {
		return nil
	}
	return g.source.Send(ctx, &messages.Command{
		Type:   messages.CommandTypeVelocity,
		BodyID: player.ID,
		Vector: vector.New(vx, player.Velocity.Y),
	})
}

func spawnCommand(position vector.Vector) *messages.Command {
	return &messages.Command{
		Type: messages.CommandTypeSpawn,
		Body: &scenario.BodySpec{
			Shape:    scenario.ShapeSpec{Kind: scenario.ShapeOval, Radius: SpawnRadius, RadiusY: SpawnRadius},
			Mass:     SpawnMass,
			Color:    polygon.Color{R: 0.9, G: 0.6, B: 0.2},
			Position: position,
			Tags:     []string{"ball"},
		},
	}
}

// bodyAt returns the topmost body containing p.
func bodyAt(snapshot *messages.Snapshot, p vector.Vector) (messages.BodyState, bool) {
	for i := len(snapshot.Bodies) - 1; i >= 0; i-- {
		b := snapshot.Bodies[i]
		if polygon.New(b.Vertices, vector.Zero, 0, b.Color).Contains(p) {
			return b, true
		}
	}
	return messages.BodyState{}, false
}

func (g *Game) viewport() view.Viewport {
	return view.NewViewport(g.snapshot.World, float64(g.screenWidth), float64(g.screenHeight))
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0x10, G: 0x10, B: 0x18, A: 0xff})
	if g.mode == GameModeNetworkError {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("\n   %s: %v\n   Press Esc to quit", g.mode, g.lastErr))
		return
	}
	if g.snapshot == nil {
		return
	}

	viewport := g.viewport()
	for _, b := range g.snapshot.Bodies {
		g.drawBody(screen, viewport, b)
	}
	if g.debug {
		g.drawDebugOverlay(screen, viewport)
	}
	if g.mode == GameModePaused {
		ebitenutil.DebugPrintAt(screen, "PAUSED (space to resume, n to step)", 16, g.screenHeight-24)
	}
}

func (g *Game) drawBody(screen *ebiten.Image, viewport view.Viewport, b messages.BodyState) {
	if len(b.Vertices) < 3 {
		return
	}

	var path ebitenvector.Path
	for i, v := range b.Vertices {
		x, y := viewport.ToScreen(v)
		if i == 0 {
			path.MoveTo(float32(x), float32(y))
			continue
		}
		path.LineTo(float32(x), float32(y))
	}
	path.Close()

	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = float32(b.Color.R)
		vs[i].ColorG = float32(b.Color.G)
		vs[i].ColorB = float32(b.Color.B)
		vs[i].ColorA = 1
	}
	screen.DrawTriangles(vs, is, g.whitePixel, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

func (g *Game) drawDebugOverlay(screen *ebiten.Image, viewport view.Viewport) {
	for _, contact := range g.snapshot.Contacts {
		a, okA := g.snapshot.Body(contact.A)
		b, okB := g.snapshot.Body(contact.B)
		if !okA || !okB {
			continue
		}
		ax, ay := viewport.ToScreen(a.Centroid)
		bx, by := viewport.ToScreen(b.Centroid)
		ebitenvector.StrokeLine(screen, float32(ax), float32(ay), float32(bx), float32(by), 1, color.RGBA{R: 0xff, A: 0xff}, true)
	}
	for _, b := range g.snapshot.Bodies {
		x, y := viewport.ToScreen(b.Centroid)
		ebitenvector.DrawFilledCircle(screen, float32(x), float32(y), 2, color.White, true)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n   FPS: %0.1f", ebiten.ActualFPS()))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n   TPS: %0.1f", ebiten.ActualTPS()))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n   Scenario: %s", g.snapshot.Scenario))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n\n   Tick: %d", g.snapshot.Tick))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n\n\n   Bodies: %d Contacts: %d", len(g.snapshot.Bodies), len(g.snapshot.Contacts)))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	g.screenWidth = outsideWidth
	g.screenHeight = outsideHeight
	return outsideWidth, outsideHeight
}
