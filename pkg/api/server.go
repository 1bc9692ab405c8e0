package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/rigid2d/pkg/api/handlers"
	"github.com/cbodonnell/rigid2d/pkg/api/middleware"
	"github.com/cbodonnell/rigid2d/pkg/log"
	"github.com/cbodonnell/rigid2d/pkg/network"
	"github.com/cbodonnell/rigid2d/pkg/queue"
	"github.com/cbodonnell/rigid2d/pkg/repositories"
	"github.com/cbodonnell/rigid2d/pkg/state"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port          int
	TLS           *TLSConfig
	Repository    repositories.Repository
	StateManager  state.StateManager
	CommandQueue  queue.Queue
	ClientManager *network.ClientManager
}

// NewAPIServer creates a new http.Server for handling API requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: NewRouter(opts),
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// NewRouter builds the API routes. Scenario routes are only registered with
// a repository and /ws only with a client manager.
func NewRouter(opts NewAPIServerOptions) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.NewLoggingMiddleware())

	router.HandleFunc("/healthz", handlers.HandleHealthz()).Methods(http.MethodGet)
	router.HandleFunc("/snapshot", handlers.HandleGetSnapshot(opts.StateManager)).Methods(http.MethodGet)
	router.HandleFunc("/commands", handlers.HandlePostCommand(opts.CommandQueue)).Methods(http.MethodPost)

	if opts.Repository != nil {
		router.HandleFunc("/scenarios", handlers.HandleListScenarios(opts.Repository)).Methods(http.MethodGet)
		router.HandleFunc("/scenarios/{name}", handlers.HandleGetScenario(opts.Repository)).Methods(http.MethodGet)
		router.HandleFunc("/scenarios/{name}", handlers.HandlePutScenario(opts.Repository)).Methods(http.MethodPut)
		router.HandleFunc("/scenarios/{name}/snapshot", handlers.HandleGetSavedSnapshot(opts.Repository)).Methods(http.MethodGet)
	}

	if opts.ClientManager != nil {
		router.HandleFunc("/ws", network.NewWSHandler(network.NewWSHandlerOptions{
			ClientManager:  opts.ClientManager,
			MessageHandler: handlers.NewCommandMessageHandler(opts.CommandQueue),
		})).Methods(http.MethodGet)
	}

	return middleware.NewCORSMiddleware()(router)
}

// Start starts the APIServer
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
