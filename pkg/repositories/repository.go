package repositories

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"

	"github.com/cbodonnell/rigid2d/pkg/messages"
	"github.com/cbodonnell/rigid2d/pkg/scenario"
)

//go:embed migrations
var migrationsFS embed.FS

type Repository interface {
	Close(ctx context.Context) error
	ListScenarios(ctx context.Context) ([]string, error)
	LoadScenario(ctx context.Context, name string) (*scenario.Scenario, error)
	SaveScenario(ctx context.Context, sc *scenario.Scenario) error
	SaveSnapshot(ctx context.Context, snapshot *messages.Snapshot) error
	LoadSnapshot(ctx context.Context, scenarioName string) (*messages.Snapshot, error)
}

// migrations returns the contents of the migrations for dialect in
// lexical order.
func migrations(dialect string) ([]string, error) {
	dir := "migrations/" + dialect
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	result := make([]string, 0, len(names))
	for _, name := range names {
		b, err := fs.ReadFile(migrationsFS, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %v", name, err)
		}
		result = append(result, string(b))
	}
	return result, nil
}

func encodeScenario(sc *scenario.Scenario) ([]byte, error) {
	if sc == nil {
		return nil, fmt.Errorf("scenario is nil")
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario has no name")
	}
	if err := scenario.Validate(sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %v", err)
	}
	buf := &bytes.Buffer{}
	if err := scenario.Encode(buf, sc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeScenario(b []byte) (*scenario.Scenario, error) {
	return scenario.Decode(bytes.NewReader(b))
}

func encodeSnapshot(snapshot *messages.Snapshot) ([]byte, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}
	b, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %v", err)
	}
	return b, nil
}

func decodeSnapshot(b []byte) (*messages.Snapshot, error) {
	snapshot := &messages.Snapshot{}
	if err := json.Unmarshal(b, snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %v", err)
	}
	return snapshot, nil
}
