package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/rigid2d/pkg/log"
	"github.com/cbodonnell/rigid2d/pkg/messages"
	"github.com/cbodonnell/rigid2d/pkg/queue"
	"github.com/cbodonnell/rigid2d/pkg/repositories"
	"github.com/cbodonnell/rigid2d/pkg/scenario"
	"github.com/cbodonnell/rigid2d/pkg/state"
	"github.com/gorilla/mux"
)

// MaxBodySize bounds request bodies.
const MaxBodySize = 1 << 20

func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func HandleGetSnapshot(stateManager state.StateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := stateManager.Get(r.Context())
		if err != nil {
			log.Error("failed to get snapshot: %v", err)
			http.Error(w, "Failed to get snapshot", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, snapshot)
	}
}

func HandlePostCommand(commandQueue queue.Queue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		command := &messages.Command{}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(command); err != nil {
			http.Error(w, fmt.Sprintf("Failed to decode command: %v", err), http.StatusBadRequest)
			return
		}
		if err := EnqueueCommand(commandQueue, command); err != nil {
			if errors.Is(err, queue.ErrQueueFull) {
				http.Error(w, "Command queue is full", http.StatusServiceUnavailable)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

// EnqueueCommand validates command and queues it for the simulation loop.
func EnqueueCommand(commandQueue queue.Queue, command *messages.Command) error {
	if err := command.Validate(); err != nil {
		return fmt.Errorf("invalid command: %v", err)
	}
	if err := commandQueue.Enqueue(command); err != nil {
		return fmt.Errorf("failed to enqueue command: %w", err)
	}
	return nil
}

func HandleListScenarios(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := repository.ListScenarios(r.Context())
		if err != nil {
			log.Error("failed to list scenarios: %v", err)
			http.Error(w, "Failed to list scenarios", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, names)
	}
}

func HandleGetScenario(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		sc, err := repository.LoadScenario(r.Context(), name)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Scenario not found", http.StatusNotFound)
				return
			}
			log.Error("failed to load scenario %s: %v", name, err)
			http.Error(w, "Failed to load scenario", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, sc)
	}
}

// HandleGetSavedSnapshot returns the last snapshot stored for a scenario.
func HandleGetSavedSnapshot(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		snapshot, err := repository.LoadSnapshot(r.Context(), name)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Snapshot not found", http.StatusNotFound)
				return
			}
			log.Error("failed to load snapshot for scenario %s: %v", name, err)
			http.Error(w, "Failed to load snapshot", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, snapshot)
	}
}

func HandlePutScenario(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		sc, err := scenario.Decode(http.MaxBytesReader(w, r.Body, MaxBodySize))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if sc.Name != "" && sc.Name != name {
			http.Error(w, fmt.Sprintf("Scenario name %q does not match %q", sc.Name, name), http.StatusBadRequest)
			return
		}
		sc.Name = name
		if err := scenario.Validate(sc); err != nil {
			http.Error(w, fmt.Sprintf("Invalid scenario: %v", err), http.StatusBadRequest)
			return
		}

		if err := repository.SaveScenario(r.Context(), sc); err != nil {
			log.Error("failed to save scenario %s: %v", name, err)
			http.Error(w, "Failed to save scenario", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}
