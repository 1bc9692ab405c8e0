package view

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cbodonnell/rigid2d/pkg/messages"
	"github.com/cbodonnell/rigid2d/pkg/network"
	"github.com/cbodonnell/rigid2d/pkg/scenario"
	"github.com/cbodonnell/rigid2d/pkg/shapes"
	"github.com/cbodonnell/rigid2d/pkg/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewport(t *testing.T) {
	world := messages.World{Origin: vector.New(-10, 0), Width: 20, Height: 10}

	tests := []struct {
		name      string
		screenW   float64
		screenH   float64
		world     vector.Vector
		wantX     float64
		wantY     float64
		wantScale float64
	}{
		{name: "bottom left", screenW: 200, screenH: 100, world: vector.New(-10, 0), wantX: 0, wantY: 100, wantScale: 10},
		{name: "top right", screenW: 200, screenH: 100, world: vector.New(10, 10), wantX: 200, wantY: 0, wantScale: 10},
		{name: "letterboxed vertically", screenW: 200, screenH: 200, world: vector.New(-10, 0), wantX: 0, wantY: 150, wantScale: 10},
		{name: "pillarboxed horizontally", screenW: 400, screenH: 100, world: vector.New(0, 5), wantX: 200, wantY: 50, wantScale: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewViewport(world, tt.screenW, tt.screenH)
			assert.Equal(t, tt.wantScale, v.Scale())
			x, y := v.ToScreen(tt.world)
			assert.InDelta(t, tt.wantX, x, 1e-9)
			assert.InDelta(t, tt.wantY, y, 1e-9)

			back := v.ToWorld(x, y)
			assert.InDelta(t, tt.world.X, back.X, 1e-9)
			assert.InDelta(t, tt.world.Y, back.Y, 1e-9)
		})
	}
}

func TestViewport_degenerateWorld(t *testing.T) {
	v := NewViewport(messages.World{}, 100, 100)
	assert.Equal(t, 1.0, v.Scale())
}

func TestRasterize(t *testing.T) {
	snapshot := &messages.Snapshot{
		World: messages.World{Width: 10, Height: 10},
		Bodies: []messages.BodyState{
			{Name: "floor", Vertices: shapes.Rectangle(vector.New(5, 1), 10, 2)},
			{Name: "box", Vertices: shapes.Rectangle(vector.New(5, 5), 2, 2)},
		},
	}

	// 10 columns and 5 rows of cells twice as tall as wide give one cell
	// per world unit across and two world units per row
	grid := Rasterize(snapshot, 10, 5)
	require.Len(t, grid, 5)
	for c := 0; c < 10; c++ {
		assert.Equal(t, 0, grid[4][c], "floor column %d", c)
		assert.Equal(t, Empty, grid[0][c], "sky column %d", c)
	}
	assert.Equal(t, 1, grid[2][4])
	assert.Equal(t, 1, grid[2][5])
	assert.Equal(t, Empty, grid[2][2])
	assert.Equal(t, Empty, grid[2][8])

	empty := Rasterize(nil, 3, 2)
	assert.Equal(t, [][]int{{Empty, Empty, Empty}, {Empty, Empty, Empty}}, empty)
}

func TestLocalSource(t *testing.T) {
	ctx := context.Background()
	source, err := NewLocalSource(scenario.Demo())
	require.NoError(t, err)
	defer source.Close()

	initial, err := source.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), initial.Tick)
	player, ok := initial.BodyByName("player")
	require.True(t, ok)

	require.NoError(t, source.Send(ctx, &messages.Command{
		Type:   messages.CommandTypeVelocity,
		BodyID: player.ID,
		Vector: vector.New(50, 0),
	}))
	require.NoError(t, source.Step(ctx, 1.0/60))

	next, err := source.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next.Tick)
	moved, ok := next.Body(player.ID)
	require.True(t, ok)
	assert.Greater(t, moved.Centroid.X, player.Centroid.X)

	assert.Error(t, source.Send(ctx, &messages.Command{Type: messages.CommandTypeRemove}))
}

func TestLocalSource_invalidScenario(t *testing.T) {
	_, err := NewLocalSource(&scenario.Scenario{})
	assert.Error(t, err)
}

func TestRemoteSource(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clientManager := network.NewClientManager()
	server := httptest.NewServer(network.NewWSHandler(network.NewWSHandlerOptions{ClientManager: clientManager}))
	defer server.Close()

	source, err := NewRemoteSource(ctx, "ws"+strings.TrimPrefix(server.URL, "http"))
	require.NoError(t, err)
	defer source.Close()
	require.Eventually(t, func() bool { return clientManager.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	msg, err := messages.NewMessage(messages.MessageTypeSnapshot, &messages.Snapshot{Tick: 77, Scenario: "remote"})
	require.NoError(t, err)
	_, err = clientManager.Broadcast(ctx, msg)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snapshot, err := source.Snapshot(ctx)
		return err == nil && snapshot.Tick == 77
	}, 2*time.Second, 10*time.Millisecond)
	assert.NoError(t, source.Step(ctx, 1))
}
