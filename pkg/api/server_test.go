package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cbodonnell/rigid2d/pkg/messages"
	"github.com/cbodonnell/rigid2d/pkg/network"
	"github.com/cbodonnell/rigid2d/pkg/queue"
	"github.com/cbodonnell/rigid2d/pkg/repositories"
	"github.com/cbodonnell/rigid2d/pkg/scenario"
	"github.com/cbodonnell/rigid2d/pkg/state"
	"github.com/cbodonnell/rigid2d/pkg/vector"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

type testAPI struct {
	handler       http.Handler
	repository    *repositories.MockRepository
	state         *state.InMemoryStateManager
	queue         *queue.InMemoryQueue
	clientManager *network.ClientManager
}

func newTestAPI(queueSize int) *testAPI {
	a := &testAPI{
		repository:    &repositories.MockRepository{},
		state:         state.NewInMemoryStateManager(),
		queue:         queue.NewInMemoryQueue(queueSize),
		clientManager: network.NewClientManager(),
	}
	a.handler = NewRouter(NewAPIServerOptions{
		Repository:    a.repository,
		StateManager:  a.state,
		CommandQueue:  a.queue,
		ClientManager: a.clientManager,
	})
	return a
}

func (a *testAPI) do(method, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthzAndCORS(t *testing.T) {
	a := newTestAPI(4)

	rec := a.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = a.do(http.MethodOptions, "/commands", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(http.MethodDelete, "/healthz", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_GetSnapshot(t *testing.T) {
	a := newTestAPI(4)
	require.NoError(t, a.state.Set(context.Background(), &messages.Snapshot{Tick: 12, Scenario: "demo"}))

	rec := a.do(http.MethodGet, "/snapshot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	snapshot := &messages.Snapshot{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), snapshot))
	assert.Equal(t, int64(12), snapshot.Tick)
	assert.Equal(t, "demo", snapshot.Scenario)
}

func TestRouter_PostCommand(t *testing.T) {
	id := uuid.New()
	valid, err := json.Marshal(&messages.Command{Type: messages.CommandTypeImpulse, BodyID: id, Vector: vector.New(1, 2)})
	require.NoError(t, err)

	tests := []struct {
		name       string
		queueSize  int
		prefill    int
		body       string
		wantStatus int
		wantQueued int
	}{
		{name: "accepted", queueSize: 4, body: string(valid), wantStatus: http.StatusAccepted, wantQueued: 1},
		{name: "malformed", queueSize: 4, body: "{", wantStatus: http.StatusBadRequest},
		{name: "invalid", queueSize: 4, body: `{"type":"teleport"}`, wantStatus: http.StatusBadRequest},
		{name: "queue full", queueSize: 1, prefill: 1, body: string(valid), wantStatus: http.StatusServiceUnavailable, wantQueued: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAPI(tt.queueSize)
			for i := 0; i < tt.prefill; i++ {
				require.NoError(t, a.queue.Enqueue("filler"))
			}

			rec := a.do(http.MethodPost, "/commands", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantQueued, a.queue.Size())
			if tt.wantStatus == http.StatusAccepted {
				command, ok := a.queue.Dequeue().(*messages.Command)
				require.True(t, ok)
				assert.Equal(t, id, command.BodyID)
				assert.Equal(t, vector.New(1, 2), command.Vector)
			}
		})
	}
}

func TestRouter_Scenarios(t *testing.T) {
	demo := scenario.Demo()
	encoded := &bytes.Buffer{}
	require.NoError(t, scenario.Encode(encoded, demo))

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		setup      func(r *repositories.MockRepository)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "list",
			method: http.MethodGet,
			path:   "/scenarios",
			setup: func(r *repositories.MockRepository) {
				r.On("ListScenarios", mock.Anything).Return([]string{"demo", "orbit"}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `["demo","orbit"]`,
		},
		{
			name:   "list fails",
			method: http.MethodGet,
			path:   "/scenarios",
			setup: func(r *repositories.MockRepository) {
				r.On("ListScenarios", mock.Anything).Return(nil, fmt.Errorf("disk on fire"))
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:   "get",
			method: http.MethodGet,
			path:   "/scenarios/demo",
			setup: func(r *repositories.MockRepository) {
				r.On("LoadScenario", mock.Anything, "demo").Return(demo, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "get missing",
			method: http.MethodGet,
			path:   "/scenarios/ghost",
			setup: func(r *repositories.MockRepository) {
				r.On("LoadScenario", mock.Anything, "ghost").Return(nil, &repositories.ErrNotFound{})
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "saved snapshot",
			method: http.MethodGet,
			path:   "/scenarios/demo/snapshot",
			setup: func(r *repositories.MockRepository) {
				r.On("LoadSnapshot", mock.Anything, "demo").Return(&messages.Snapshot{Tick: 12, Scenario: "demo"}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"tick":12,"timestamp":0,"scenario":"demo","world":{"origin":{"x":0,"y":0},"width":0,"height":0},"bodies":null,"contacts":null}`,
		},
		{
			name:   "saved snapshot missing",
			method: http.MethodGet,
			path:   "/scenarios/ghost/snapshot",
			setup: func(r *repositories.MockRepository) {
				r.On("LoadSnapshot", mock.Anything, "ghost").Return(nil, &repositories.ErrNotFound{})
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "saved snapshot fails",
			method: http.MethodGet,
			path:   "/scenarios/demo/snapshot",
			setup: func(r *repositories.MockRepository) {
				r.On("LoadSnapshot", mock.Anything, "demo").Return(nil, fmt.Errorf("disk on fire"))
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:   "put",
			method: http.MethodPut,
			path:   "/scenarios/demo",
			body:   encoded.String(),
			setup: func(r *repositories.MockRepository) {
				r.On("SaveScenario", mock.Anything, mock.MatchedBy(func(sc *scenario.Scenario) bool {
					return sc.Name == "demo" && len(sc.Bodies) == len(demo.Bodies)
				})).Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "put with mismatched name",
			method:     http.MethodPut,
			path:       "/scenarios/other",
			body:       encoded.String(),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "put invalid",
			method:     http.MethodPut,
			path:       "/scenarios/empty",
			body:       `{"world":{"width":0,"height":0}}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "put unknown field",
			method:     http.MethodPut,
			path:       "/scenarios/demo",
			body:       `{"gravity":9.8}`,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAPI(4)
			if tt.setup != nil {
				tt.setup(a.repository)
			}

			rec := a.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
			if tt.name == "get" {
				got, err := scenario.Decode(rec.Body)
				require.NoError(t, err)
				assert.Equal(t, demo, got)
			}
			a.repository.AssertExpectations(t)
		})
	}
}

func TestRouter_WebSocketCommands(t *testing.T) {
	a := newTestAPI(4)
	server := httptest.NewServer(a.handler)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	bad, err := messages.NewMessage(messages.MessageTypeCommand, &messages.Command{Type: messages.CommandTypeRemove})
	require.NoError(t, err)
	require.NoError(t, network.WriteMessageToWS(ctx, conn, bad))
	reply, err := network.ReadMessageFromWS(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, messages.MessageTypeError, reply.Type)

	good, err := messages.NewMessage(messages.MessageTypeCommand, &messages.Command{Type: messages.CommandTypeRemove, BodyID: uuid.New()})
	require.NoError(t, err)
	require.NoError(t, network.WriteMessageToWS(ctx, conn, good))
	require.Eventually(t, func() bool { return a.queue.Size() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, a.clientManager.Count())
}
