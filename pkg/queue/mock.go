package queue

import "github.com/stretchr/testify/mock"

// MockQueue is a testify mock of Queue.
type MockQueue struct {
	mock.Mock
}

var _ Queue = (*MockQueue)(nil)

func (m *MockQueue) Enqueue(item interface{}) error {
	args := m.Called(item)
	return args.Error(0)
}

func (m *MockQueue) Dequeue() interface{} {
	args := m.Called()
	return args.Get(0)
}

func (m *MockQueue) Size() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockQueue) ReadAllMessages() []interface{} {
	args := m.Called()
	items, _ := args.Get(0).([]interface{})
	return items
}

func (m *MockQueue) ClearQueue() {
	m.Called()
}
