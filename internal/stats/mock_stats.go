package stats

import (
	"time"

	"github.com/stretchr/testify/mock"
)

type MockStatsUpdater struct {
	mock.Mock
}

func (m *MockStatsUpdater) Incr(name string) {
	m.Called(name)
}
func (m *MockStatsUpdater) Decr(name string) {
	m.Called(name)
}
func (m *MockStatsUpdater) RegisterMetric(name string) {
	m.Called(name)
}
func (m *MockStatsUpdater) Get(name string) int64 {
	args := m.Called(name)
	return args.Get(0).(int64)
}
func (m *MockStatsUpdater) Uptime() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}
func (m *MockStatsUpdater) Run() {
	m.Called()
}
