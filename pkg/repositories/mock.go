package repositories

import (
	"context"

	"github.com/cbodonnell/rigid2d/pkg/messages"
	"github.com/cbodonnell/rigid2d/pkg/scenario"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a testify mock of Repository.
type MockRepository struct {
	mock.Mock
}

var _ Repository = (*MockRepository)(nil)

func (m *MockRepository) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRepository) ListScenarios(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func (m *MockRepository) LoadScenario(ctx context.Context, name string) (*scenario.Scenario, error) {
	args := m.Called(ctx, name)
	sc, _ := args.Get(0).(*scenario.Scenario)
	return sc, args.Error(1)
}

func (m *MockRepository) SaveScenario(ctx context.Context, sc *scenario.Scenario) error {
	args := m.Called(ctx, sc)
	return args.Error(0)
}

func (m *MockRepository) SaveSnapshot(ctx context.Context, snapshot *messages.Snapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockRepository) LoadSnapshot(ctx context.Context, scenarioName string) (*messages.Snapshot, error) {
	args := m.Called(ctx, scenarioName)
	snapshot, _ := args.Get(0).(*messages.Snapshot)
	return snapshot, args.Error(1)
}
